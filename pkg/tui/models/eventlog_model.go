package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rsadaphule/buildwatch/pkg/events"
)

// EventLogModel shows the bounded activity log: command handling, build
// lifecycle, failures.
type EventLogModel struct {
	max     int
	entries []events.EventLogEntry

	width  int
	height int

	vp viewport.Model
}

func NewEventLogModel() EventLogModel {
	m := EventLogModel{max: 200}
	m.vp = viewport.New(0, 0)
	return m
}

func (m EventLogModel) WithSize(width, height int) EventLogModel {
	m.width, m.height = width, height
	m.vp.Width = width
	if height > 0 {
		m.vp.Height = height
	}
	m = m.refreshViewportContent()
	return m
}

func (m EventLogModel) Append(entry events.EventLogEntry) EventLogModel {
	m.entries = append(m.entries, entry)
	if len(m.entries) > m.max {
		m.entries = m.entries[len(m.entries)-m.max:]
	}
	m = m.refreshViewportContent()
	return m
}

func (m EventLogModel) Update(msg tea.Msg) (EventLogModel, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m EventLogModel) View() string {
	if len(m.entries) == 0 {
		return "no events yet"
	}
	return m.vp.View()
}

func (m EventLogModel) refreshViewportContent() EventLogModel {
	var b strings.Builder
	for _, e := range m.entries {
		b.WriteString(fmt.Sprintf("%s  %s\n", e.At.Format("15:04:05"), e.Text))
	}
	m.vp.SetContent(b.String())
	m.vp.GotoBottom()
	return m
}
