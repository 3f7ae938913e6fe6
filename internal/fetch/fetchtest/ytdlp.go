package fetchtest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// YTDLPScript writes an executable shell script standing in for yt-dlp and
// returns its path. The script keeps its arguments in $args, parses --output
// into $out and then runs body.
func YTDLPScript(t testing.TB, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake yt-dlp needs a POSIX shell")
	}

	script := `#!/bin/sh
args="$*"
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o|--output) out="$2"; shift ;;
  esac
  shift
done
` + body + "\n"

	path := filepath.Join(t.TempDir(), "yt-dlp")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake yt-dlp: %v", err)
	}
	return path
}
