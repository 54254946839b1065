package model

import (
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/electr1fy0/storyshelf/story"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// refreshList rebuilds the list from the library in the current sort
// order. The cursor moves to focus when set, otherwise it stays on the
// story it was already on.
func (m *Model) refreshList(focus uuid.UUID) {
	if m.lib == nil {
		return
	}
	keep := focus
	if keep == uuid.Nil {
		keep, _ = m.selectedID()
	}

	sorted, err := story.SortedView(m.lib.Stories(), m.sort)
	if err != nil {
		// only reachable if sort state was corrupted; surface it loudly
		m.log.Error("sort failed", zap.Error(err))
		m.setError(err)
		return
	}

	items := make([]list.Item, 0, len(sorted))
	for _, s := range sorted {
		items = append(items, listItem{story: s, dateFormat: m.opts.DateFormat})
	}
	m.list.SetItems(items)
	if keep != uuid.Nil && m.selectStory(keep) {
		return
	}
	if n := len(items); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
}

func (m *Model) selectStory(id uuid.UUID) bool {
	for i, it := range m.list.Items() {
		if li, ok := it.(listItem); ok && li.story.ID == id {
			m.list.Select(i)
			return true
		}
	}
	return false
}

func (m Model) selectedID() (uuid.UUID, bool) {
	it := m.list.SelectedItem()
	if it == nil {
		return uuid.Nil, false
	}
	li, ok := it.(listItem)
	if !ok {
		return uuid.Nil, false
	}
	return li.story.ID, true
}

// SortedStories is the list's current presentation order.
func (m Model) SortedStories() []story.Story {
	items := m.list.Items()
	out := make([]story.Story, 0, len(items))
	for _, it := range items {
		if li, ok := it.(listItem); ok {
			out = append(out, li.story)
		}
	}
	return out
}

func (m *Model) persist() {
	if m.lib == nil {
		return
	}
	if err := m.vault.Save(m.lib, m.passphrase); err != nil {
		m.log.Error("save library failed", zap.String("path", m.vault.Path), zap.Error(err))
		m.setError(err)
	}
}

// commit saves, re-sorts and retitles after a story mutation, moving the
// cursor to focus when it is set.
func (m *Model) commit(focus uuid.UUID) tea.Cmd {
	m.persist()
	m.refreshList(focus)
	return m.titleCmd()
}

func (m Model) storyCountDesc() string {
	n := 0
	if m.lib != nil {
		n = len(m.lib.Entries)
	}
	return m.say.SayPlural("%d Story", "%d Stories", n)
}

// titleCmd keeps the terminal title in step with the story count.
func (m *Model) titleCmd() tea.Cmd {
	desc := m.storyCountDesc()
	if desc == m.title {
		return nil
	}
	m.title = desc
	return tea.SetWindowTitle(desc)
}

// droppedFiles extracts existing file paths from pasted text. Terminals
// paste a path (quoted or with escaped spaces) when a file is dropped.
func droppedFiles(pasted string) []string {
	var out []string
	for _, line := range strings.Split(pasted, "\n") {
		p := strings.TrimSpace(line)
		if len(p) >= 2 && (p[0] == '\'' || p[0] == '"') && p[len(p)-1] == p[0] {
			p = p[1 : len(p)-1]
		}
		p = strings.TrimPrefix(p, "file://")
		p = strings.ReplaceAll(p, `\ `, " ")
		if p == "" {
			continue
		}
		if info, err := os.Stat(expandHome(p)); err == nil && info.Mode().IsRegular() {
			out = append(out, p)
		}
	}
	return out
}
