package storage

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/electr1fy0/storyshelf/story"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("story not found")

// Prefs holds the launch-check bookkeeping that lives with the library.
type Prefs struct {
	FirstRun        time.Time `json:"first_run"`
	DonateShown     bool      `json:"donate_shown"`
	LastUpdateCheck time.Time `json:"last_update_check"`
	LastUpdateSeen  string    `json:"last_update_seen,omitempty"`
}

type Library struct {
	Version int                       `json:"version"`
	Entries map[uuid.UUID]story.Story `json:"stories"`
	Prefs   Prefs                     `json:"prefs"`
}

func NewLibrary() *Library {
	return &Library{
		Version: 1,
		Entries: make(map[uuid.UUID]story.Story),
		Prefs:   Prefs{FirstRun: time.Now()},
	}
}

// Add stores s as a new entry. It never replaces an existing story: an
// ID that is missing or already taken is swapped for a fresh one.
func (l *Library) Add(s story.Story) story.Story {
	if _, taken := l.Entries[s.ID]; taken || s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.LastUpdate.IsZero() {
		s.LastUpdate = now
	}
	l.Entries[s.ID] = s
	return s
}

func (l *Library) Get(id uuid.UUID) (story.Story, bool) {
	s, ok := l.Entries[id]
	return s, ok
}

func (l *Library) Rename(id uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("rename %s: empty name", id)
	}
	s, ok := l.Entries[id]
	if !ok {
		return fmt.Errorf("rename %s: %w", id, ErrNotFound)
	}
	s.Name = name
	s.LastUpdate = time.Now()
	l.Entries[id] = s
	return nil
}

func (l *Library) SetBody(id uuid.UUID, body string) error {
	s, ok := l.Entries[id]
	if !ok {
		return fmt.Errorf("edit %s: %w", id, ErrNotFound)
	}
	s.Body = body
	s.LastUpdate = time.Now()
	l.Entries[id] = s
	return nil
}

func (l *Library) Delete(id uuid.UUID) bool {
	if _, ok := l.Entries[id]; ok {
		delete(l.Entries, id)
		return true
	}
	return false
}

// Stories returns every story in creation order. Callers wanting a
// presentation order sort the result themselves.
func (l *Library) Stories() []story.Story {
	out := make([]story.Story, 0, len(l.Entries))
	for _, s := range l.Entries {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b story.Story) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

// UniqueName appends _1, _2, ... until name is unused.
func (l *Library) UniqueName(name string) string {
	taken := make(map[string]bool, len(l.Entries))
	for _, s := range l.Entries {
		taken[s.Name] = true
	}
	candidate := name
	for i := 1; taken[candidate]; i++ {
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
	return candidate
}
