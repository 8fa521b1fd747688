package models

import "time"

// NormalizeTime replaces a missing (zero) timestamp with now().
// Stored documents written without a server timestamp decode as zero.
func NormalizeTime(t time.Time, now func() time.Time) time.Time {
	if t.IsZero() {
		return now()
	}
	return t
}
