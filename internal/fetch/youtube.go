package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
)

// YouTubeFetcher resolves streams with the pure-Go YouTube client and
// downloads the first audio-only format.
type YouTubeFetcher struct {
	transport http.RoundTripper
	timeout   time.Duration
}

// NewYouTubeFetcher creates a fetcher. A nil transport uses http.DefaultTransport.
func NewYouTubeFetcher(transport http.RoundTripper, timeout time.Duration) *YouTubeFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &YouTubeFetcher{transport: transport, timeout: timeout}
}

func (f *YouTubeFetcher) Name() string { return "youtube" }

func (f *YouTubeFetcher) Fetch(ctx context.Context, sourceURL, destPath string) Outcome {
	st := newStatusTransport(f.transport)
	client := youtube.Client{
		HTTPClient: &http.Client{Transport: st, Timeout: f.timeout},
	}

	video, err := client.GetVideoContext(ctx, sourceURL)
	if err != nil {
		return classifyYouTube(fmt.Errorf("resolve video: %w", err), st.lastStatus())
	}

	format, ok := audioOnly(video.Formats)
	if !ok {
		return NoAudioStream()
	}

	slog.Debug("selected audio stream",
		"video_id", video.ID,
		"itag", format.ItagNo,
		"mime", format.MimeType,
	)

	stream, _, err := client.GetStreamContext(ctx, video, format)
	if err != nil {
		return classifyYouTube(fmt.Errorf("open audio stream: %w", err), st.lastStatus())
	}
	defer stream.Close()

	if err := writeFile(destPath, stream); err != nil {
		return classifyYouTube(err, st.lastStatus())
	}
	return Success(destPath)
}

func classifyYouTube(err error, observed int) Outcome {
	var code youtube.ErrUnexpectedStatusCode
	if errors.As(err, &code) {
		observed = int(code)
	}
	return classify(err, observed)
}

// audioOnly returns the first format whose MIME type is audio/*.
func audioOnly(formats youtube.FormatList) (*youtube.Format, bool) {
	for i := range formats {
		if strings.HasPrefix(formats[i].MimeType, "audio/") {
			return &formats[i], true
		}
	}
	return nil, false
}

func writeFile(path string, r io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write audio file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close audio file: %w", err)
	}
	return nil
}
