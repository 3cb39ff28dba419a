package pomomo

import "fmt"

// FormatClock renders seconds as zero-padded MM:SS. Negative input renders 00:00.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
