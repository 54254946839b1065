package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/electr1fy0/storyshelf/dialogs"
	"github.com/electr1fy0/storyshelf/events"
	"github.com/electr1fy0/storyshelf/locale"
	"github.com/electr1fy0/storyshelf/storage"
)

// Registered custom modal components.
const (
	ComponentImport   = "story-import"
	ComponentDonation = "app-donation"
	ComponentUpdate   = "app-update"
)

// ImportData is the payload of the import component. ImmediateImport
// skips the path prompt and imports that file straight away.
type ImportData struct {
	ImmediateImport string
}

type customModal interface {
	Update(msg tea.Msg) (customModal, tea.Cmd)
	View() string
}

type componentFactory func(m *Model, data any) (customModal, tea.Cmd)

var components = map[string]componentFactory{
	ComponentImport:   newImportDialog,
	ComponentDonation: newDonationDialog,
	ComponentUpdate:   newUpdateDialog,
}

type importDialog struct {
	say   *locale.Locale
	input textinput.Model
	path  string
}

func newImportDialog(m *Model, data any) (customModal, tea.Cmd) {
	ti := textinput.New()
	ti.Placeholder = "path/to/story.md or archive.json"
	ti.CharLimit = 512
	ti.Width = 50
	ti.Focus()

	d := importDialog{say: m.say, input: ti}
	if payload, ok := data.(ImportData); ok && payload.ImmediateImport != "" {
		d.path = payload.ImmediateImport
		return d, importCmd(d.path)
	}
	return d, textinput.Blink
}

func (d importDialog) Update(msg tea.Msg) (customModal, tea.Cmd) {
	if d.path != "" {
		return d, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		path := strings.TrimSpace(d.input.Value())
		if path == "" {
			return d, nil
		}
		d.path = path
		return d, importCmd(path)
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

func (d importDialog) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(d.say.Say("Import")))
	s.WriteString("\n\n")
	if d.path != "" {
		s.WriteString("Importing " + d.path + "...")
		return s.String()
	}
	s.WriteString(d.input.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("enter: import  esc: cancel"))
	return s.String()
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

func importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		stories, err := storage.Import(expandHome(path))
		return importedMsg{path: path, stories: stories, err: err}
	}
}

// infoDialog shows a block of markdown until dismissed.
type infoDialog struct {
	bus   *events.Bus
	title string
	body  string
}

func (d infoDialog) Update(msg tea.Msg) (customModal, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "q", " ":
			d.bus.Publish(events.Close{})
		}
	}
	return d, nil
}

func (d infoDialog) View() string {
	return titleStyle.Render(d.title) + "\n\n" + d.body + "\n" + helpStyle.Render("enter: close")
}

const donationText = `storyshelf is free software built in spare time.

If it has been useful to you, please consider supporting its development.`

func newDonationDialog(m *Model, _ any) (customModal, tea.Cmd) {
	return infoDialog{
		bus:   m.bus,
		title: m.say.Say("Support storyshelf"),
		body:  renderStory(m.say.Say(donationText), m.width, m.opts.MarkdownStyle),
	}, nil
}

func newUpdateDialog(m *Model, data any) (customModal, tea.Cmd) {
	rel, _ := data.(dialogs.Release)
	md := fmt.Sprintf("A new version, **%s**, is available.\n\n%s", rel.Version, rel.Notes)
	if rel.URL != "" {
		md += "\n\n" + rel.URL
	}
	return infoDialog{
		bus:   m.bus,
		title: m.say.Say("Update available"),
		body:  renderStory(md, m.width, m.opts.MarkdownStyle),
	}, nil
}
