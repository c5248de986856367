package models

import (
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rsadaphule/buildwatch/pkg/events"
	"github.com/rsadaphule/buildwatch/pkg/session"
	"github.com/rsadaphule/buildwatch/pkg/tui"
)

type ViewID string

const (
	ViewBuild  ViewID = "build"
	ViewEvents ViewID = "events"
)

type RootModel struct {
	width  int
	height int

	active ViewID
	status string

	pub message.Publisher

	build    BuildModel
	eventLog EventLogModel
}

func NewRootModel(pub message.Publisher) RootModel {
	return RootModel{
		active:   ViewBuild,
		status:   string(session.StatusIdle),
		pub:      pub,
		build:    NewBuildModel(),
		eventLog: NewEventLogModel(),
	}
}

func (m RootModel) Init() tea.Cmd { return nil }

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		m.build = m.build.WithSize(v.Width, v.Height-3)
		m.eventLog = m.eventLog.WithSize(v.Width, v.Height-3)
		return m, nil
	case tea.KeyMsg:
		switch v.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			if m.active == ViewBuild {
				m.active = ViewEvents
			} else {
				m.active = ViewBuild
			}
			return m, nil
		case "s":
			// The control is disabled while a build is running; the session
			// owner rejects the command as well.
			if m.status == string(session.StatusRunning) {
				return m, nil
			}
			pub := m.pub
			return m, func() tea.Msg {
				_ = events.PublishStartBuild(pub, events.StartBuildRequest{})
				return nil
			}
		}
	case tui.SessionSnapshotMsg:
		m.status = v.Snapshot.Status
		m.build = m.build.WithSnapshot(v.Snapshot)
		return m, nil
	case tui.EventLogAppendMsg:
		m.eventLog = m.eventLog.Append(v.Entry)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.active {
	case ViewEvents:
		m.eventLog, cmd = m.eventLog.Update(msg)
	default:
		m.build, cmd = m.build.Update(msg)
	}
	return m, cmd
}

func (m RootModel) View() string {
	var b strings.Builder
	start := "s start build"
	if m.status == string(session.StatusRunning) {
		start = "s (disabled while running)"
	}
	b.WriteString(fmt.Sprintf("buildwatch [%s]  (%s, f follow, tab switch, q quit)\n\n", m.active, start))
	switch m.active {
	case ViewEvents:
		b.WriteString(m.eventLog.View())
	default:
		b.WriteString(m.build.View())
	}
	return b.String()
}
