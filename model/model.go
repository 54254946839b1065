package model

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/electr1fy0/storyshelf/dialogs"
	"github.com/electr1fy0/storyshelf/events"
	"github.com/electr1fy0/storyshelf/locale"
	"github.com/electr1fy0/storyshelf/storage"
	"github.com/electr1fy0/storyshelf/story"
	"github.com/electr1fy0/storyshelf/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (i listItem) FilterValue() string { return i.story.Name }

func (i listItem) Title() string { return i.story.Name }

func (i listItem) Description() string {
	return "Updated: " + i.story.LastUpdate.Local().Format(i.dateFormat)
}

// New mounts the story list: it subscribes to the bus and sets up the
// default sort. Call Close when the program exits to release the
// subscription.
func New(opts Options) (Model, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus(opts.Log)
	}
	if opts.Locale == nil {
		l, err := locale.New("")
		if err != nil {
			return Model{}, err
		}
		opts.Locale = l
	}
	if opts.DateFormat == "" {
		opts.DateFormat = "2006-01-02 15:04"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()

	m := Model{
		opts:       opts,
		log:        opts.Log,
		say:        opts.Locale,
		bus:        opts.Bus,
		lib:        opts.Library,
		vault:      opts.Vault,
		passphrase: opts.Passphrase,
		list:       l,
		sort:       story.DefaultSortState(),
		input:      textinput.New(),
	}
	m.sub = m.bus.Subscribe(
		events.KindPrompt,
		events.KindConfirm,
		events.KindClose,
		events.KindCustomModal,
		events.KindFileDrop,
		events.KindPreviouslyEditing,
	)
	if m.lib != nil {
		m.refreshList(uuid.Nil)
	}
	return m, nil
}

// Close releases the bus subscription.
func (m Model) Close() {
	m.sub.Release()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.sub.Wait(),
		func() tea.Msg { return mountMsg{} },
	)
}

// mount runs once the library is available: title, launch checks, and
// the previously-editing handoff.
func (m *Model) mount() tea.Cmd {
	if m.lib == nil {
		m.requestUnlock("")
		return nil
	}
	m.refreshList(uuid.Nil)
	cmd := m.titleCmd()

	if m.opts.AppearFast {
		return cmd
	}

	now := m.opts.Now()
	if dialogs.CheckDonation(&m.lib.Prefs, now) {
		m.log.Info("showing donation prompt")
		m.bus.Publish(events.CustomModal{Component: ComponentDonation})
	} else {
		rel, ok, err := dialogs.CheckAppUpdate(&m.lib.Prefs, m.opts.Version, m.opts.Releases, now)
		if err != nil {
			m.log.Warn("update check failed", zap.Error(err))
		}
		if ok {
			m.log.Info("update available", zap.String("version", rel.Version))
			m.bus.Publish(events.CustomModal{Component: ComponentUpdate, Data: rel})
		}
	}
	m.persist()

	if m.opts.PreviouslyEditing != uuid.Nil {
		m.bus.Publish(events.PreviouslyEditing{StoryID: m.opts.PreviouslyEditing})
	}
	return cmd
}

func (m *Model) requestUnlock(reason string) {
	msg := "Enter passphrase to unlock the library:"
	if reason != "" {
		msg = reason + "\n" + msg
	}
	m.bus.Publish(events.Prompt{Args: events.PromptArgs{
		Message:     msg,
		Placeholder: "passphrase",
		Secret:      true,
		OnSubmit: func(v string) tea.Cmd {
			return func() tea.Msg { return unlockMsg{passphrase: v} }
		},
	}})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		if m.screen == screenView {
			if s, ok := m.lib.Get(m.current); ok {
				m.viewContent = renderStory(s.Body, m.width, m.opts.MarkdownStyle)
			}
		}
		return m, nil

	case events.Msg:
		cmd := m.handleEvent(msg.Event)
		return m, tea.Batch(cmd, msg.Sub.Wait())

	case mountMsg:
		return m, m.mount()

	case unlockMsg:
		lib, err := m.vault.Load(msg.passphrase)
		if err != nil {
			m.log.Warn("unlock failed", zap.Error(err))
			m.requestUnlock(err.Error())
			return m, nil
		}
		m.lib = lib
		m.passphrase = msg.passphrase
		m.setStatus(fmt.Sprintf("Unlocked library (%d stories)", len(lib.Entries)))
		return m, m.mount()
	}

	if m.lib == nil {
		// locked: only the unlock prompt and quit are live
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
			return m.quit()
		}
		if m.modal == modalPrompt {
			return m.updatePrompt(msg)
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case createStoryMsg:
		s := m.lib.Add(story.New(m.lib.UniqueName(msg.name), "# "+msg.name+"\n\n"))
		m.current = s.ID
		m.log.Info("story created", zap.Stringer("id", s.ID), zap.String("name", s.Name))
		m.setStatus("Added story: " + s.Name)
		return m, m.commit(s.ID)

	case renameStoryMsg:
		if err := m.lib.Rename(msg.id, msg.name); err != nil {
			m.setError(err)
			return m, nil
		}
		m.current = msg.id
		m.setStatus("Renamed to " + msg.name)
		return m, m.commit(msg.id)

	case deleteStoryMsg:
		s, _ := m.lib.Get(msg.id)
		if m.lib.Delete(msg.id) {
			m.log.Info("story deleted", zap.Stringer("id", msg.id))
			m.setStatus("Deleted: " + s.Name)
			if m.current == msg.id {
				m.current = uuid.Nil
				m.screen = screenList
			}
			return m, m.commit(uuid.Nil)
		}
		return m, nil

	case importedMsg:
		m.closeModal()
		if msg.err != nil {
			m.log.Warn("import failed", zap.String("path", msg.path), zap.Error(msg.err))
			m.setError(msg.err)
			return m, nil
		}
		focus := uuid.Nil
		for _, s := range msg.stories {
			s.Name = m.lib.UniqueName(s.Name)
			focus = m.lib.Add(s).ID
		}
		m.log.Info("stories imported", zap.String("path", msg.path), zap.Int("count", len(msg.stories)))
		m.setStatus(fmt.Sprintf("Imported %d stories from %s", len(msg.stories), msg.path))
		return m, m.commit(focus)

	case editedMsg:
		if msg.err != nil {
			m.setError(fmt.Errorf("editor failed: %w", msg.err))
			return m, tea.ClearScreen
		}
		body, err := utils.ReadAndRemove(msg.path)
		if err != nil {
			m.setError(err)
			return m, tea.ClearScreen
		}
		if err := m.lib.SetBody(msg.id, body); err != nil {
			m.setError(err)
			return m, tea.ClearScreen
		}
		m.current = msg.id
		if m.screen == screenView {
			m.viewContent = renderStory(body, m.width, m.opts.MarkdownStyle)
		}
		s, _ := m.lib.Get(msg.id)
		m.setStatus("Edited " + s.Name)
		return m, tea.Batch(m.commit(msg.id), tea.ClearScreen)
	}

	switch m.modal {
	case modalPrompt:
		return m.updatePrompt(msg)
	case modalConfirm:
		return m.updateConfirm(msg)
	case modalCustom:
		return m.updateCustom(msg)
	}

	if m.screen == screenView {
		return m.updateView(msg)
	}
	return m.updateList(msg)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.sub.Release()
	return m, tea.Quit
}

func (m *Model) handleEvent(e events.Event) tea.Cmd {
	switch e := e.(type) {
	case events.Prompt:
		m.prompt = e.Args
		ti := textinput.New()
		ti.Placeholder = e.Args.Placeholder
		ti.CharLimit = 256
		ti.Width = 40
		ti.SetValue(e.Args.Default)
		if e.Args.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		ti.Focus()
		m.input = ti
		m.modal = modalPrompt
		return textinput.Blink

	case events.Confirm:
		m.confirm = e.Args
		m.modal = modalConfirm

	case events.Close:
		m.modal = modalIdle
		m.custom = nil
		m.prompt = events.PromptArgs{}
		m.confirm = events.ConfirmArgs{}
		m.input.Blur()

	case events.CustomModal:
		factory, ok := components[e.Component]
		if !ok {
			m.log.Error("unknown modal component", zap.String("component", e.Component))
			m.setError(fmt.Errorf("unknown dialog %q", e.Component))
			return nil
		}
		c, cmd := factory(m, e.Data)
		m.custom = c
		m.modal = modalCustom
		return cmd

	case events.FileDrop:
		// one file at a time
		if len(e.Paths) == 0 {
			return nil
		}
		m.bus.Publish(events.CustomModal{
			Component: ComponentImport,
			Data:      ImportData{ImmediateImport: e.Paths[0]},
		})

	case events.PreviouslyEditing:
		if m.lib != nil && m.selectStory(e.StoryID) {
			m.current = e.StoryID
		}
	}
	return nil
}

// closeModal returns to idle immediately and tells other listeners.
func (m *Model) closeModal() {
	if m.modal == modalIdle {
		return
	}
	m.modal = modalIdle
	m.input.Blur()
	m.bus.Publish(events.Close{})
}

func (m Model) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			value := m.input.Value()
			onSubmit := m.prompt.OnSubmit
			m.closeModal()
			if onSubmit == nil {
				return m, nil
			}
			return m, onSubmit(value)
		case "esc":
			if m.lib == nil {
				return m, nil
			}
			m.closeModal()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y", "enter":
			onConfirm := m.confirm.OnConfirm
			m.closeModal()
			if onConfirm == nil {
				return m, nil
			}
			return m, onConfirm()
		case "n", "N", "esc":
			m.closeModal()
		}
	}
	return m, nil
}

func (m Model) updateCustom(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.closeModal()
		return m, nil
	}
	if m.custom == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.custom, cmd = m.custom.Update(msg)
	return m, cmd
}

func (m Model) updateView(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "q":
		return m.quit()
	case "b", "esc":
		m.screen = screenList
	case "e":
		return m, m.editCmd(m.current)
	case "d":
		m.confirmDelete(m.current)
	case "r":
		m.promptRename(m.current)
	}
	return m, nil
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	filtering := m.list.FilterState() == list.Filtering

	if isKey && key.Paste && !filtering {
		if paths := droppedFiles(string(key.Runes)); len(paths) > 0 {
			m.log.Debug("file dropped", zap.Strings("paths", paths))
			m.bus.Publish(events.FileDrop{Paths: paths})
			return m, nil
		}
	}

	if isKey && !filtering {
		switch key.String() {
		case "ctrl+c", "q":
			return m.quit()
		case "n":
			m.sort = story.SortByName(m.sort)
			m.refreshList(uuid.Nil)
			return m, nil
		case "t":
			m.sort = story.SortByDate(m.sort)
			m.refreshList(uuid.Nil)
			return m, nil
		case "a":
			m.bus.Publish(events.Prompt{Args: events.PromptArgs{
				Message:     m.say.Say("New story"),
				Placeholder: "Untitled Story",
				OnSubmit: func(v string) tea.Cmd {
					if v == "" {
						v = "Untitled Story"
					}
					return func() tea.Msg { return createStoryMsg{name: v} }
				},
			}})
			return m, nil
		case "r":
			if id, ok := m.selectedID(); ok {
				m.promptRename(id)
			}
			return m, nil
		case "d":
			if id, ok := m.selectedID(); ok {
				m.confirmDelete(id)
			}
			return m, nil
		case "i":
			m.bus.Publish(events.CustomModal{Component: ComponentImport, Data: ImportData{}})
			return m, nil
		case "x":
			dir := fmt.Sprintf("storyshelf_export_%d", m.opts.Now().Unix())
			n, err := storage.Export(m.lib, dir)
			if err != nil {
				m.setError(fmt.Errorf("export failed: %w", err))
				return m, nil
			}
			m.setStatus(fmt.Sprintf("Exported %d stories to %s/", n, dir))
			return m, nil
		case "e":
			if id, ok := m.selectedID(); ok {
				return m, m.editCmd(id)
			}
			return m, nil
		case "enter":
			if id, ok := m.selectedID(); ok {
				s, _ := m.lib.Get(id)
				m.current = id
				m.viewContent = renderStory(s.Body, m.width, m.opts.MarkdownStyle)
				m.screen = screenView
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) promptRename(id uuid.UUID) {
	s, ok := m.lib.Get(id)
	if !ok {
		return
	}
	m.bus.Publish(events.Prompt{Args: events.PromptArgs{
		Message: m.say.Say("Rename story"),
		Default: s.Name,
		OnSubmit: func(v string) tea.Cmd {
			return func() tea.Msg { return renameStoryMsg{id: id, name: v} }
		},
	}})
}

func (m *Model) confirmDelete(id uuid.UUID) {
	s, ok := m.lib.Get(id)
	if !ok {
		return
	}
	m.bus.Publish(events.Confirm{Args: events.ConfirmArgs{
		Message:     fmt.Sprintf("Delete story '%s'? (y/N)", s.Name),
		ButtonLabel: m.say.Say("Delete"),
		OnConfirm: func() tea.Cmd {
			return func() tea.Msg { return deleteStoryMsg{id: id} }
		},
	}})
}

func (m Model) editCmd(id uuid.UUID) tea.Cmd {
	s, ok := m.lib.Get(id)
	if !ok {
		return nil
	}
	cmd, path, err := utils.EditTempFile(s.Body)
	if err != nil {
		return func() tea.Msg { return editedMsg{id: id, err: err} }
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editedMsg{id: id, path: path, err: err}
	})
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.lastError = ""
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.lastError = err.Error()
}
