// Package timefmt turns second counts into the clock strings used in
// transcript lines and generates collision-resistant output filenames.
package timefmt

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Seconds formats a second count for display: "H:MM:SS" when the hour
// component is nonzero (hours never zero-padded), otherwise "MM:SS".
// Fractional seconds are truncated and negative inputs clamp to zero.
func Seconds(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	total := int(sec)
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// OutputFilename returns a transcript filename derived from the given
// time plus a short random suffix, so concurrent runs started in the
// same second cannot collide.
func OutputFilename(now time.Time) string {
	return fmt.Sprintf("transcript_%s_%s.txt", now.Format("20060102_150405"), uuid.NewString()[:8])
}
