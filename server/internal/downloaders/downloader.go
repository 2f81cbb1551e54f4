package downloaders

import (
	"context"

	"github.com/marcopiovanello/tubedrop/server/internal"
)

// Downloader is the download half of the extraction capability. It fetches
// url into out and reports progress to observer until the file is complete.
// It returns the absolute path of the saved file.
type Downloader interface {
	Download(
		ctx context.Context,
		url string,
		out internal.DownloadOutput,
		observer internal.ProgressObserver,
	) (string, error)
}
