package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
)

// Check reports whether a dependency is ready.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
	info   map[string]string
}

// NewHealthHandler creates the handler. info is echoed by Readyz (engine and
// fetcher names).
func NewHealthHandler(checks map[string]Check, info map[string]string) *HealthHandler {
	return &HealthHandler{checks: checks, info: info}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			checks[name] = "unhealthy: " + err.Error()
		} else {
			checks[name] = "ok"
		}
	}

	status := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]interface{}{
		"status": statusStr(status),
		"checks": checks,
		"info":   h.info,
	})
}

// TempDirWritable checks that temporary audio files can be created in dir.
func TempDirWritable(dir string) Check {
	return func(ctx context.Context) error {
		f, err := os.CreateTemp(dir, "readyz_*")
		if err != nil {
			return err
		}
		f.Close()
		return os.Remove(f.Name())
	}
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
