package util

import "time"

var kst = time.FixedZone("KST", 9*60*60)

// FormatKST renders t in Korea Standard Time with the given layout.
func FormatKST(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(kst).Format(layout)
}
