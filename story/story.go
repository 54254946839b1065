package story

import (
	"time"

	"github.com/google/uuid"
)

// Story is one user-authored narrative project in the library.
type Story struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Body       string    `json:"body"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastUpdate time.Time `json:"last_update"`
}

func New(name, body string) Story {
	now := time.Now()
	return Story{
		ID:         uuid.New(),
		Name:       name,
		Body:       body,
		CreatedAt:  now,
		LastUpdate: now,
	}
}
