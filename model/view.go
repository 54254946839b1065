package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/electr1fy0/storyshelf/story"
)

func (m Model) sortControls() string {
	arrow := "▲"
	if m.sort.Direction == story.Desc {
		arrow = "▼"
	}

	name := m.say.Say("Story name")
	date := m.say.Say("Last changed date")
	nameStyle, dateStyle := subtleStyle, subtleStyle
	switch m.sort.Order {
	case story.OrderName:
		nameStyle = activeStyle
		name += " " + arrow
	case story.OrderLastUpdate:
		dateStyle = activeStyle
		date += " " + arrow
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		nameStyle.Render("n: "+name),
		" ",
		dateStyle.Render("t: "+date),
	)
}

func (m Model) statusLine() string {
	status := m.status
	if m.width > 0 {
		status = ansi.Truncate(status, m.width, "…")
	}
	if status == "" {
		return ""
	}
	if m.lastError != "" {
		return "\n" + errorStyle.Render(status)
	}
	return "\n" + successStyle.Render(status)
}

func (m Model) modalView() string {
	switch m.modal {
	case modalPrompt:
		return modalStyle.Render(m.prompt.Message + "\n\n" + m.input.View() + "\n\n" +
			helpStyle.Render("enter: ok  esc: cancel"))
	case modalConfirm:
		label := m.confirm.ButtonLabel
		if label == "" {
			label = "confirm"
		}
		return modalStyle.Render(warningStyle.Render(m.confirm.Message) + "\n\n" +
			helpStyle.Render(fmt.Sprintf("y: %s  n/esc: cancel", strings.ToLower(label))))
	case modalCustom:
		if m.custom != nil {
			return modalStyle.Render(m.custom.View())
		}
	}
	return ""
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("storyshelf: " + m.storyCountDesc()))
	s.WriteString("\n\n")

	if m.modal != modalIdle {
		s.WriteString(m.modalView())
		s.WriteString(m.statusLine())
		return s.String()
	}

	if m.lib == nil {
		s.WriteString(helpStyle.Render("library locked  ctrl+c: quit"))
		s.WriteString(m.statusLine())
		return s.String()
	}

	switch m.screen {
	case screenList:
		s.WriteString(m.sortControls())
		s.WriteString("\n\n")
		s.WriteString(m.list.View())
		s.WriteString("\n")
		help := []string{"a:new", "r:rename", "d:delete", "e:edit", "enter:view", "i:import", "x:export", "/:filter", "q:quit"}
		s.WriteString(helpStyle.Render(strings.Join(help, "  ")))

	case screenView:
		name := ""
		if cur, ok := m.lib.Get(m.current); ok {
			name = cur.Name
		}
		s.WriteString(titleStyle.Render(name))
		s.WriteString("\n\n")
		s.WriteString(m.viewContent)
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("e:edit  r:rename  d:delete  b:back  q:quit"))
	}

	s.WriteString(m.statusLine())
	return s.String()
}
