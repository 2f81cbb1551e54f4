package downloaders

import (
	"time"

	"github.com/marcopiovanello/tubedrop/server/internal"
)

// toEvent converts a raw progress sample into the event pushed to clients.
// Speed is the average since the download started, in bytes per second.
func toEvent(percent float64, downloaded, total int64, started, now time.Time) internal.ProgressEvent {
	ev := internal.ProgressEvent{
		Percent:     ClampPercent(percent),
		Transferred: downloaded,
		Total:       total,
	}

	if !started.IsZero() {
		if elapsed := now.Sub(started).Seconds(); elapsed > 0 {
			ev.Speed = float64(downloaded) / elapsed
		}
	}

	return ev
}
