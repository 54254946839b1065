package model

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/electr1fy0/storyshelf/dialogs"
	"github.com/electr1fy0/storyshelf/events"
	"github.com/electr1fy0/storyshelf/locale"
	"github.com/electr1fy0/storyshelf/storage"
	"github.com/electr1fy0/storyshelf/story"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type screen int

const (
	screenList screen = iota
	screenView
)

// modalState is the one modal that may be open at a time. Every modal
// leaves through the same close transition back to modalIdle.
type modalState int

const (
	modalIdle modalState = iota
	modalPrompt
	modalConfirm
	modalCustom
)

func (s modalState) String() string {
	switch s {
	case modalPrompt:
		return "prompt"
	case modalConfirm:
		return "confirm"
	case modalCustom:
		return "custom"
	}
	return "idle"
}

type listItem struct {
	story      story.Story
	dateFormat string
}

// Options configure the story list when it is mounted.
type Options struct {
	Vault      storage.Vault
	Library    *storage.Library // nil while the library is locked
	Passphrase string

	Locale     *locale.Locale
	Bus        *events.Bus
	Log        *zap.Logger
	Releases   dialogs.ReleaseSource
	Version    string
	DateFormat string
	// MarkdownStyle is a glamour standard style name; empty means auto.
	MarkdownStyle string

	// AppearFast skips the launch checks and the previously-editing handoff.
	AppearFast        bool
	PreviouslyEditing uuid.UUID

	Now func() time.Time
}

type Model struct {
	opts Options
	log  *zap.Logger
	say  *locale.Locale
	bus  *events.Bus
	sub  *events.Subscription

	lib        *storage.Library
	vault      storage.Vault
	passphrase string

	screen screen
	width  int
	height int

	list list.Model
	sort story.SortState

	modal   modalState
	prompt  events.PromptArgs
	input   textinput.Model
	confirm events.ConfirmArgs
	custom  customModal

	current     uuid.UUID
	viewContent string
	title       string

	status    string
	lastError string
	quitting  bool
}

// messages produced by modal callbacks and commands

type mountMsg struct{}

type unlockMsg struct{ passphrase string }

type createStoryMsg struct{ name string }

type renameStoryMsg struct {
	id   uuid.UUID
	name string
}

type deleteStoryMsg struct{ id uuid.UUID }

type importedMsg struct {
	path    string
	stories []story.Story
	err     error
}

type editedMsg struct {
	id   uuid.UUID
	path string
	err  error
}
