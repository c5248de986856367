package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rsadaphule/buildwatch/pkg/events"
	"github.com/rsadaphule/buildwatch/pkg/session"
	"github.com/rsadaphule/buildwatch/pkg/tui/styles"
)

// BuildModel renders the session: status, build id, and the log buffer in
// arrival order. It never reorders or deduplicates lines.
type BuildModel struct {
	theme styles.Theme

	status  string
	buildID string
	lines   []string

	width  int
	height int

	follow bool
	vp     viewport.Model
}

func NewBuildModel() BuildModel {
	m := BuildModel{theme: styles.DefaultTheme(), status: string(session.StatusIdle), follow: true}
	m.vp = viewport.New(0, 0)
	return m
}

func (m BuildModel) WithSize(width, height int) BuildModel {
	m.width, m.height = width, height
	m = m.resizeViewport()
	return m
}

func (m BuildModel) WithSnapshot(snap events.SessionSnapshotEvent) BuildModel {
	m.status = snap.Status
	m.buildID = snap.BuildID
	m.lines = snap.Lines
	m = m.refreshViewportContent()
	return m
}

func (m BuildModel) Update(msg tea.Msg) (BuildModel, tea.Cmd) {
	switch v := msg.(type) {
	case tea.KeyMsg:
		switch v.String() {
		case "f":
			m.follow = !m.follow
			if m.follow {
				m.vp.GotoBottom()
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m BuildModel) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	return b.String()
}

func (m BuildModel) header() string {
	badge := m.theme.StatusIdle.Render("● idle")
	switch m.status {
	case string(session.StatusRunning):
		badge = m.theme.StatusRunning.Render("● running")
	case string(session.StatusDone):
		badge = m.theme.StatusDone.Render("● done")
	}

	id := m.theme.TitleMuted.Render("no build")
	if m.buildID != "" {
		id = m.theme.Title.Render("build " + m.buildID)
	}

	count := m.theme.TitleMuted.Render(fmt.Sprintf("%d lines", len(m.lines)))
	return fmt.Sprintf("%s  %s  %s", badge, id, count)
}

func (m BuildModel) resizeViewport() BuildModel {
	w, h := m.width, m.height-2
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	m.vp.Width = w
	m.vp.Height = h
	m = m.refreshViewportContent()
	return m
}

func (m BuildModel) refreshViewportContent() BuildModel {
	m.vp.SetContent(strings.Join(m.lines, "\n"))
	if m.follow {
		m.vp.GotoBottom()
	}
	return m
}
