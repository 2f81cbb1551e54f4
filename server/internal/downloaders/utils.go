package downloaders

import (
	"math"
	"regexp"

	"github.com/marcopiovanello/tubedrop/server/internal"
)

const (
	videoExt = "mp4"
	audioExt = "mp3"

	audioFormat = "bestaudio/best"
)

var formatByQuality = map[internal.Quality]string{
	internal.QualityHighest: "bestvideo+bestaudio/best",
	internal.QualityHigh:    "bestvideo[height<=720]+bestaudio/best[height<=720]/best",
	internal.QualityMedium:  "bestvideo[height<=480]+bestaudio/best[height<=480]/best",
	internal.QualityLow:     "bestvideo[height<=360]+bestaudio/best[height<=360]/best",
}

// FormatFor returns the yt-dlp format selector for q. Every capped selector
// falls back to the best available format.
func FormatFor(q internal.Quality) string {
	if f, ok := formatByQuality[q]; ok {
		return f
	}
	return formatByQuality[internal.QualityHighest]
}

// RE2's \s is ASCII only; the rest of the Unicode whitespace set is listed
// explicitly.
var notWordOrSpace = regexp.MustCompile(`[^\w\s\v\p{Zs}\x{2028}\x{2029}\x{feff}]`)

// SanitizeTitle replaces every rune that is neither an ASCII word character
// nor whitespace with an underscore.
func SanitizeTitle(title string) string {
	return notWordOrSpace.ReplaceAllString(title, "_")
}

func OutputFilename(title string, q internal.Quality, audioOnly bool) string {
	if audioOnly {
		return SanitizeTitle(title) + "_audio." + audioExt
	}
	return SanitizeTitle(title) + "_" + string(q) + "." + videoExt
}

// BuildOutput describes the file a download request produces inside dir.
// The quality is ignored for audio-only requests.
func BuildOutput(dir, title string, q internal.Quality, audioOnly bool) internal.DownloadOutput {
	out := internal.DownloadOutput{
		Path:      dir,
		Filename:  OutputFilename(title, q, audioOnly),
		AudioOnly: audioOnly,
	}

	if audioOnly {
		out.Format = audioFormat
	} else {
		out.Format = FormatFor(q)
	}

	return out
}

// ClampPercent rounds p and bounds it to [0, 100].
func ClampPercent(p float64) int {
	if math.IsNaN(p) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(p))))
}
