package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/electr1fy0/storyshelf/dialogs"
	"github.com/electr1fy0/storyshelf/events"
	"github.com/electr1fy0/storyshelf/storage"
	"github.com/electr1fy0/storyshelf/story"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 2, 10, 8, 30, 0, 0, time.UTC)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, opts Options, stories ...story.Story) Model {
	t.Helper()
	// an explicit vault without a library means "start locked"
	if opts.Vault.Path == "" {
		opts.Vault = storage.Vault{Path: filepath.Join(t.TempDir(), "library.json")}
		if opts.Library == nil {
			opts.Library = storage.NewLibrary()
			opts.Library.Prefs.FirstRun = now
		}
	}
	for _, s := range stories {
		opts.Library.Add(s)
	}
	opts.Now = func() time.Time { return now }

	m, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// drain feeds every queued bus event back through Update, the way the
// running program does via Subscription.Wait.
func drain(t *testing.T, m Model) Model {
	t.Helper()
	for {
		e, ok := m.sub.TryNext()
		if !ok {
			return m
		}
		m, _ = update(t, m, events.Msg{Event: e, Sub: m.sub})
	}
}

// run executes a command that produces a single message and feeds it back.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	return drain(t, m)
}

func sortedNames(m Model) []string {
	var out []string
	for _, s := range m.SortedStories() {
		out = append(out, s.Name)
	}
	return out
}

func shelf() []story.Story {
	return []story.Story{
		{Name: "Beacon", LastUpdate: now.Add(-2 * time.Hour)},
		{Name: "Atlas", LastUpdate: now.Add(-time.Hour)},
		{Name: "Cinder", LastUpdate: now.Add(-3 * time.Hour)},
	}
}

func TestSortKeys(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true}, shelf()...)
	assert.Equal(t, story.DefaultSortState(), m.sort)
	assert.Equal(t, []string{"Atlas", "Beacon", "Cinder"}, sortedNames(m))

	m, _ = update(t, m, key("n"))
	assert.Equal(t, story.SortState{Order: story.OrderName, Direction: story.Desc}, m.sort)
	assert.Equal(t, []string{"Cinder", "Beacon", "Atlas"}, sortedNames(m))

	m, _ = update(t, m, key("t"))
	assert.Equal(t, story.SortState{Order: story.OrderLastUpdate, Direction: story.Desc}, m.sort)
	assert.Equal(t, []string{"Atlas", "Beacon", "Cinder"}, sortedNames(m))

	m, _ = update(t, m, key("t"))
	assert.Equal(t, []string{"Cinder", "Beacon", "Atlas"}, sortedNames(m))

	m, _ = update(t, m, key("n"))
	assert.Equal(t, story.SortState{Order: story.OrderName, Direction: story.Asc}, m.sort)
}

func TestSortControlsView(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true}, shelf()...)
	v := m.View()
	assert.Contains(t, v, "Story name ▲")
	assert.Contains(t, v, "Last changed date")
	assert.Contains(t, v, "3 Stories")

	m, _ = update(t, m, key("t"))
	assert.Contains(t, m.View(), "Last changed date ▼")
}

func TestTitleLine(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true}, shelf()...)
	v := m.View()
	assert.Contains(t, v, "storyshelf: 3 Stories")
	assert.NotContains(t, v, "—")
}

func selectedName(t *testing.T, m Model) string {
	t.Helper()
	id, ok := m.selectedID()
	require.True(t, ok)
	s, ok := m.lib.Get(id)
	require.True(t, ok)
	return s.Name
}

func TestResortKeepsCursor(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true}, shelf()...)

	// view Atlas so it becomes the current story, then walk away from it
	m, _ = update(t, m, key("enter"))
	require.Equal(t, screenView, m.screen)
	m, _ = update(t, m, key("b"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, "Cinder", selectedName(t, m))

	for _, k := range []string{"t", "t", "n", "n"} {
		m, _ = update(t, m, key(k))
		assert.Equal(t, "Cinder", selectedName(t, m), "after %q", k)
	}
}

func TestDeleteLastRowClampsCursor(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true}, shelf()...)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, "Cinder", selectedName(t, m))

	m, _ = update(t, m, key("d"))
	m = drain(t, m)
	require.Equal(t, modalConfirm, m.modal)
	m, cmd := update(t, m, key("y"))
	m = run(t, m, cmd)

	assert.Equal(t, []string{"Atlas", "Beacon"}, sortedNames(m))
	assert.Equal(t, "Beacon", selectedName(t, m))
}

func TestAddStoryThroughPrompt(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true}, shelf()...)

	m, _ = update(t, m, key("a"))
	m = drain(t, m)
	require.Equal(t, modalPrompt, m.modal)

	m.input.SetValue("Driftwood")
	m, cmd := update(t, m, key("enter"))
	assert.Equal(t, modalIdle, m.modal)

	m = run(t, m, cmd)
	assert.Equal(t, modalIdle, m.modal)
	assert.Equal(t, []string{"Atlas", "Beacon", "Cinder", "Driftwood"}, sortedNames(m))
	assert.Equal(t, "4 Stories", m.title)

	id, ok := m.selectedID()
	require.True(t, ok)
	s, _ := m.lib.Get(id)
	assert.Equal(t, "Driftwood", s.Name)

	loaded, err := m.vault.Load("")
	require.NoError(t, err)
	assert.Len(t, loaded.Entries, 4)
}

func TestRenameThroughPrompt(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true}, shelf()...)
	m, _ = update(t, m, key("r"))
	m = drain(t, m)
	require.Equal(t, modalPrompt, m.modal)
	assert.Equal(t, "Atlas", m.input.Value())

	m.input.SetValue("Zenith")
	m, cmd := update(t, m, key("enter"))
	m = run(t, m, cmd)
	assert.Equal(t, []string{"Beacon", "Cinder", "Zenith"}, sortedNames(m))
}

func TestDeleteThroughConfirm(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true}, shelf()...)

	m, _ = update(t, m, key("d"))
	m = drain(t, m)
	require.Equal(t, modalConfirm, m.modal)
	assert.Contains(t, m.View(), "Delete story 'Atlas'?")

	m, cmd := update(t, m, key("y"))
	m = run(t, m, cmd)
	assert.Equal(t, modalIdle, m.modal)
	assert.Equal(t, []string{"Beacon", "Cinder"}, sortedNames(m))
	assert.Equal(t, "Deleted: Atlas", m.status)
}

func TestConfirmCancel(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true}, shelf()...)
	m, _ = update(t, m, key("d"))
	m = drain(t, m)
	m, cmd := update(t, m, key("n"))
	assert.Nil(t, cmd)
	m = drain(t, m)
	assert.Equal(t, modalIdle, m.modal)
	assert.Len(t, m.SortedStories(), 3)
}

func TestCloseEventClosesAnyModal(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true}, shelf()...)

	m.bus.Publish(events.Prompt{Args: events.PromptArgs{Message: "Name?"}})
	m = drain(t, m)
	require.Equal(t, modalPrompt, m.modal)

	m.bus.Publish(events.Close{})
	m = drain(t, m)
	assert.Equal(t, modalIdle, m.modal)

	m.bus.Publish(events.CustomModal{Component: ComponentImport})
	m = drain(t, m)
	require.Equal(t, modalCustom, m.modal)

	m, _ = update(t, m, key("esc"))
	m = drain(t, m)
	assert.Equal(t, modalIdle, m.modal)
	assert.Nil(t, m.custom)
}

func TestUnknownComponent(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true})
	m.bus.Publish(events.CustomModal{Component: "story-format-picker"})
	m = drain(t, m)
	assert.Equal(t, modalIdle, m.modal)
	assert.Contains(t, m.lastError, "story-format-picker")
}

func TestFileDropOpensImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "night train.md")
	require.NoError(t, os.WriteFile(path, []byte("# Night Train\n\nAll aboard."), 0o644))

	m := newTestModel(t, Options{AppearFast: true}, shelf()...)
	paste := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'" + path + "'"), Paste: true}
	m, _ = update(t, m, paste)
	m = drain(t, m)

	require.Equal(t, modalCustom, m.modal)
	d, ok := m.custom.(importDialog)
	require.True(t, ok)
	assert.Equal(t, path, d.path)

	m = run(t, m, importCmd(d.path))
	assert.Equal(t, modalIdle, m.modal)
	assert.Contains(t, sortedNames(m), "Night Train")
	assert.Empty(t, m.lastError)
}

func TestImportDialogPrompt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archive.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Atlas"},{"name":"Echo"}]`), 0o644))

	m := newTestModel(t, Options{AppearFast: true}, shelf()...)
	m, _ = update(t, m, key("i"))
	m = drain(t, m)
	require.Equal(t, modalCustom, m.modal)

	d := m.custom.(importDialog)
	d.input.SetValue(path)
	m.custom = d

	m, cmd := update(t, m, key("enter"))
	m = run(t, m, cmd)
	assert.Equal(t, []string{"Atlas", "Atlas_1", "Beacon", "Cinder", "Echo"}, sortedNames(m))
}

func TestImportFailureIsReported(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true})
	m.bus.Publish(events.CustomModal{Component: ComponentImport, Data: ImportData{ImmediateImport: "/does/not/exist.md"}})
	m = drain(t, m)
	m = run(t, m, importCmd("/does/not/exist.md"))
	assert.Equal(t, modalIdle, m.modal)
	assert.NotEmpty(t, m.lastError)
}

func TestPasteThatIsNotAFile(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true}, shelf()...)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("just some words"), Paste: true})
	m = drain(t, m)
	assert.Equal(t, modalIdle, m.modal)
}

func TestMount_PreviouslyEditingAndDonation(t *testing.T) {
	lib := storage.NewLibrary()
	lib.Prefs.FirstRun = now.Add(-30 * 24 * time.Hour)
	var target story.Story
	for _, s := range shelf() {
		added := lib.Add(s)
		if s.Name == "Cinder" {
			target = added
		}
	}

	m := newTestModel(t, Options{Library: lib, PreviouslyEditing: target.ID})
	m, cmd := update(t, m, mountMsg{})
	assert.NotNil(t, cmd, "title command")
	m = drain(t, m)

	id, ok := m.selectedID()
	require.True(t, ok)
	assert.Equal(t, target.ID, id)

	require.Equal(t, modalCustom, m.modal)
	assert.True(t, lib.Prefs.DonateShown)
	assert.Contains(t, m.custom.View(), "Support storyshelf")

	// donation fired, so no update check happened
	assert.True(t, lib.Prefs.LastUpdateCheck.IsZero())
}

type staticReleases struct{ rel dialogs.Release }

func (s staticReleases) Latest() (dialogs.Release, error) { return s.rel, nil }

func TestMount_UpdateCheck(t *testing.T) {
	m := newTestModel(t, Options{
		Version:  "1.0.0",
		Releases: staticReleases{dialogs.Release{Version: "1.2.0", Notes: "Faster sorting."}},
	}, shelf()...)

	m, _ = update(t, m, mountMsg{})
	m = drain(t, m)
	require.Equal(t, modalCustom, m.modal)
	assert.Contains(t, m.custom.View(), "Update available")

	// dismiss with enter: the dialog publishes close itself
	m, _ = update(t, m, key("enter"))
	m = drain(t, m)
	assert.Equal(t, modalIdle, m.modal)
}

func TestMount_AppearFastSkipsChecks(t *testing.T) {
	lib := storage.NewLibrary()
	lib.Prefs.FirstRun = now.Add(-30 * 24 * time.Hour)
	added := lib.Add(story.Story{Name: "Only"})

	m := newTestModel(t, Options{Library: lib, AppearFast: true, PreviouslyEditing: uuid.New()})
	m, _ = update(t, m, mountMsg{})
	m = drain(t, m)

	assert.Equal(t, modalIdle, m.modal)
	assert.False(t, lib.Prefs.DonateShown)
	id, _ := m.selectedID()
	assert.Equal(t, added.ID, id)
}

func TestLockedLibraryUnlock(t *testing.T) {
	vault := storage.Vault{Path: filepath.Join(t.TempDir(), "library.json")}
	lib := storage.NewLibrary()
	lib.Add(story.Story{Name: "Hidden"})
	require.NoError(t, vault.Save(lib, "open sesame"))

	m := newTestModel(t, Options{Vault: vault, AppearFast: true})
	m, _ = update(t, m, mountMsg{})
	m = drain(t, m)
	require.Equal(t, modalPrompt, m.modal)
	assert.True(t, m.prompt.Secret)

	// esc cannot dismiss the unlock prompt
	m, _ = update(t, m, key("esc"))
	assert.Equal(t, modalPrompt, m.modal)

	m.input.SetValue("wrong")
	m, cmd := update(t, m, key("enter"))
	m = run(t, m, cmd)
	require.Equal(t, modalPrompt, m.modal)
	assert.Nil(t, m.lib)
	assert.Contains(t, m.prompt.Message, "wrong passphrase")

	m.input.SetValue("open sesame")
	m, cmd = update(t, m, key("enter"))
	m = run(t, m, cmd)
	require.NotNil(t, m.lib)
	assert.Equal(t, modalIdle, m.modal)
	assert.Equal(t, []string{"Hidden"}, sortedNames(m))
	assert.Equal(t, "open sesame", m.passphrase)
}

func TestViewScreen(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true}, story.Story{Name: "Atlas", Body: "# Atlas\n\nMaps of nowhere."})
	m, _ = update(t, m, key("enter"))
	assert.Equal(t, screenView, m.screen)
	assert.Contains(t, m.viewContent, "Maps of nowhere")

	m, _ = update(t, m, key("b"))
	assert.Equal(t, screenList, m.screen)
}

func TestQuitReleasesSubscription(t *testing.T) {
	m := newTestModel(t, Options{AppearFast: true})
	m, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	_, ok := m.sub.Next()
	assert.False(t, ok)
}

func TestDroppedFiles(t *testing.T) {
	dir := t.TempDir()
	spaced := filepath.Join(dir, "a b.md")
	require.NoError(t, os.WriteFile(spaced, []byte("x"), 0o644))

	assert.Equal(t, []string{spaced}, droppedFiles("'"+spaced+"'"))
	assert.Equal(t, []string{spaced}, droppedFiles(`"`+spaced+`"`))
	assert.Equal(t, []string{spaced}, droppedFiles(filepath.Join(dir, `a\ b.md`)+"\n"))
	assert.Empty(t, droppedFiles(dir))
	assert.Empty(t, droppedFiles("hello world"))
}
