package dialogs

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/electr1fy0/storyshelf/storage"
	"github.com/tailscale/hujson"
	"golang.org/x/mod/semver"
)

const UpdateCheckInterval = 24 * time.Hour

type Release struct {
	Version string `json:"version"`
	URL     string `json:"url"`
	Notes   string `json:"notes"`
}

type ReleaseSource interface {
	Latest() (Release, error)
}

// ManifestSource reads the newest release from a local JSON manifest,
// typically dropped next to the binary by a package manager.
type ManifestSource struct {
	Path string
}

func (m ManifestSource) Latest() (Release, error) {
	var r Release
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return r, fmt.Errorf("read release manifest: %w", err)
	}
	// manifests are hand-edited; allow comments and trailing commas
	data, err = hujson.Standardize(data)
	if err != nil {
		return r, fmt.Errorf("parse release manifest: %w", err)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("parse release manifest: %w", err)
	}
	return r, nil
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}

// CheckAppUpdate looks for a release newer than current at most once per
// UpdateCheckInterval. A release is offered once; LastUpdateSeen records it.
func CheckAppUpdate(prefs *storage.Prefs, current string, src ReleaseSource, now time.Time) (Release, bool, error) {
	if src == nil {
		return Release{}, false, nil
	}
	if !prefs.LastUpdateCheck.IsZero() && now.Sub(prefs.LastUpdateCheck) < UpdateCheckInterval {
		return Release{}, false, nil
	}
	prefs.LastUpdateCheck = now

	latest, err := src.Latest()
	if err != nil {
		return Release{}, false, err
	}

	lv, cv := canonical(latest.Version), canonical(current)
	if lv == "" {
		return Release{}, false, fmt.Errorf("release manifest: invalid version %q", latest.Version)
	}
	if cv != "" && semver.Compare(lv, cv) <= 0 {
		return Release{}, false, nil
	}
	if seen := canonical(prefs.LastUpdateSeen); seen != "" && semver.Compare(lv, seen) <= 0 {
		return Release{}, false, nil
	}
	prefs.LastUpdateSeen = latest.Version
	return latest, true, nil
}
