// Package events is the process-wide channel the story list and its
// collaborators use to signal each other without direct references.
//
// The set of events is closed: every event is one of the types in this
// file. Subscribers register for the kinds they care about and receive
// matching events in publish order through their own queue.
package events

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

type Kind int

const (
	KindPrompt Kind = iota + 1
	KindConfirm
	KindClose
	KindPreviouslyEditing
	KindFileDrop
	KindCustomModal
)

func (k Kind) String() string {
	switch k {
	case KindPrompt:
		return "prompt"
	case KindConfirm:
		return "confirm"
	case KindClose:
		return "close"
	case KindPreviouslyEditing:
		return "previously-editing"
	case KindFileDrop:
		return "file-drag-n-drop"
	case KindCustomModal:
		return "custom-modal"
	}
	return "unknown"
}

type Event interface {
	Kind() Kind
	sealed()
}

// PromptArgs configures the text prompt modal. OnSubmit runs on the UI
// loop with the entered value; the command it returns, if any, is run.
type PromptArgs struct {
	Message     string
	Default     string
	Placeholder string
	Secret      bool
	OnSubmit    func(value string) tea.Cmd
}

type ConfirmArgs struct {
	Message     string
	ButtonLabel string
	OnConfirm   func() tea.Cmd
}

type Prompt struct{ Args PromptArgs }

type Confirm struct{ Args ConfirmArgs }

type Close struct{}

type PreviouslyEditing struct{ StoryID uuid.UUID }

// FileDrop carries paths dropped (pasted) onto the list.
type FileDrop struct{ Paths []string }

// CustomModal asks the view to show a registered modal component.
// Data is passed through to the component untouched.
type CustomModal struct {
	Component string
	Data      any
}

func (Prompt) Kind() Kind            { return KindPrompt }
func (Confirm) Kind() Kind           { return KindConfirm }
func (Close) Kind() Kind             { return KindClose }
func (PreviouslyEditing) Kind() Kind { return KindPreviouslyEditing }
func (FileDrop) Kind() Kind          { return KindFileDrop }
func (CustomModal) Kind() Kind       { return KindCustomModal }

func (Prompt) sealed()            {}
func (Confirm) sealed()           {}
func (Close) sealed()             {}
func (PreviouslyEditing) sealed() {}
func (FileDrop) sealed()          {}
func (CustomModal) sealed()       {}
