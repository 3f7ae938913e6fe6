package fetch

import (
	"context"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

// YTDLPFetcher downloads the best audio-only format through the yt-dlp
// binary. It accepts every site yt-dlp supports.
type YTDLPFetcher struct {
	executable string
}

// NewYTDLPFetcher creates a fetcher. An empty executable lets go-ytdlp
// resolve yt-dlp from PATH.
func NewYTDLPFetcher(executable string) *YTDLPFetcher {
	return &YTDLPFetcher{executable: executable}
}

func (f *YTDLPFetcher) Name() string { return "ytdlp" }

func (f *YTDLPFetcher) Fetch(ctx context.Context, sourceURL, destPath string) Outcome {
	dl := ytdlp.New().
		Format("bestaudio").
		NoPlaylist().
		ForceOverwrites().
		NoPart().
		Output(destPath)
	if f.executable != "" {
		dl.SetExecutable(f.executable)
	}

	if _, err := dl.Run(ctx, sourceURL); err != nil {
		if isFormatUnavailable(err.Error()) {
			return NoAudioStream()
		}
		return classify(err, 0)
	}
	return Success(destPath)
}

func isFormatUnavailable(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "requested format is not available")
}
