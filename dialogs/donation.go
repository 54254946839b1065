package dialogs

import (
	"time"

	"github.com/electr1fy0/storyshelf/storage"
)

// DonationDelay is how long the library must be in use before the
// donation prompt is shown.
const DonationDelay = 14 * 24 * time.Hour

// CheckDonation reports whether the donation prompt should be shown now
// and marks it as shown. It fires at most once per library.
func CheckDonation(prefs *storage.Prefs, now time.Time) bool {
	if prefs.DonateShown {
		return false
	}
	if prefs.FirstRun.IsZero() {
		prefs.FirstRun = now
		return false
	}
	if now.Sub(prefs.FirstRun) < DonationDelay {
		return false
	}
	prefs.DonateShown = true
	return true
}
