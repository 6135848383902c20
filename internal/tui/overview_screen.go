package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ezzabuzaid/iworked/internal/app"
	"github.com/ezzabuzaid/iworked/internal/domain"
)

// OverviewModel is the home screen: week and day totals, financial
// position, the active timer, and the most recent entries.
type OverviewModel struct {
	app *app.App

	// Data
	weekHours     float64
	weekValue     float64
	todayHours    float64
	todayValue    float64
	outstanding   float64
	unbilled      float64
	activeTimer   *domain.ActiveTimer
	recentEntries []*domain.TimeEntry
	projectNames  map[int64]string

	loading bool
	err     error
}

type overviewDataMsg struct {
	weekHours     float64
	weekValue     float64
	todayHours    float64
	todayValue    float64
	outstanding   float64
	unbilled      float64
	activeTimer   *domain.ActiveTimer
	recentEntries []*domain.TimeEntry
	projectNames  map[int64]string
	err           error
}

// NewOverviewModel creates a new overview model
func NewOverviewModel(a *app.App) tea.Model {
	return &OverviewModel{
		app:          a,
		loading:      true,
		projectNames: make(map[int64]string),
	}
}

func (m *OverviewModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *OverviewModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		userID := m.app.UserID()
		msg := overviewDataMsg{
			projectNames: make(map[int64]string),
		}

		now := time.Now()

		// Week start (Monday)
		weekStart := now
		for weekStart.Weekday() != time.Monday {
			weekStart = weekStart.AddDate(0, 0, -1)
		}
		weekStart = time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, weekStart.Location())

		weekSummary, err := m.app.ReportService.GetPeriodSummary(ctx, userID, weekStart, now)
		if err != nil {
			msg.err = fmt.Errorf("week summary: %w", err)
			return msg
		}
		msg.weekHours = weekSummary.RoundedHours()
		msg.weekValue = weekSummary.RoundedValue()

		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		daySummary, err := m.app.ReportService.GetPeriodSummary(ctx, userID, dayStart, now)
		if err != nil {
			msg.err = fmt.Errorf("daily summary: %w", err)
			return msg
		}
		msg.todayHours = daySummary.RoundedHours()
		msg.todayValue = daySummary.RoundedValue()

		// Financial totals
		msg.outstanding, _ = m.app.ReportService.GetOutstandingTotal(ctx, userID)
		msg.unbilled, _ = m.app.ReportService.GetUnbilledTotal(ctx, userID)

		// Active timer
		activeTimer, err := m.app.TimerService.GetActiveTimer(ctx, userID)
		if err == nil && activeTimer != nil {
			msg.activeTimer = activeTimer
		}

		// Project names for the recent entries table
		projects, err := m.app.ProjectService.ListProjects(ctx, userID, nil)
		if err == nil {
			for _, p := range projects {
				msg.projectNames[p.ID] = p.Name
			}
		}

		// Recent entries (last 7 days)
		sevenDaysAgo := now.AddDate(0, 0, -7)
		entries, err := m.app.EntryService.ListEntries(ctx, userID, nil, &sevenDaysAgo, &now)
		if err == nil {
			msg.recentEntries = entries
		}

		return msg
	}
}

func (m *OverviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewDataMsg:
		m.loading = false
		m.err = msg.err
		m.weekHours = msg.weekHours
		m.weekValue = msg.weekValue
		m.todayHours = msg.todayHours
		m.todayValue = msg.todayValue
		m.outstanding = msg.outstanding
		m.unbilled = msg.unbilled
		m.activeTimer = msg.activeTimer
		m.recentEntries = msg.recentEntries
		m.projectNames = msg.projectNames
		if m.activeTimer != nil {
			return m, tickTimer()
		}
		return m, nil

	case TimerTickMsg:
		if m.activeTimer != nil {
			// Refresh timer state
			ctx := context.Background()
			t, err := m.app.TimerService.GetActiveTimer(ctx, m.app.UserID())
			if err == nil {
				m.activeTimer = t
			}
			return m, tickTimer()
		}
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *OverviewModel) View() string {
	if m.loading {
		return "Loading overview..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	var s string

	s += fmt.Sprintf(
		"  This Week:  %-12s  Value:        %s\n  Today:      %-12s  Value:        %s\n",
		formatHours(m.weekHours),
		formatMoney(m.weekValue),
		formatHours(m.todayHours),
		formatMoney(m.todayValue),
	)
	s += fmt.Sprintf(
		"  Unbilled:   %-12s  Outstanding:  %s\n",
		formatMoney(m.unbilled),
		formatMoney(m.outstanding),
	)

	// Active timer
	s += "\n"
	if m.activeTimer != nil {
		s += m.renderActiveTimer()
	} else {
		s += subtitleStyle.Render("  No active timer") + "\n"
	}

	// Recent entries
	s += "\n" + m.renderRecentEntries()

	return s
}

func (m *OverviewModel) renderActiveTimer() string {
	projectName := m.projectNames[m.activeTimer.ProjectID]
	if projectName == "" {
		projectName = fmt.Sprintf("Project #%d", m.activeTimer.ProjectID)
	}

	elapsed := m.activeTimer.Elapsed()
	h := int(elapsed.Hours())
	min := int(elapsed.Minutes()) % 60
	sec := int(elapsed.Seconds()) % 60
	timeStr := fmt.Sprintf("%02d:%02d:%02d", h, min, sec)

	var stateStyle lipgloss.Style
	if m.activeTimer.State() == domain.TimerStatePaused {
		stateStyle = timerPausedStyle
	} else {
		stateStyle = timerRunningStyle
	}

	return fmt.Sprintf("  Active Timer\n  %s %s - %s  [%s]\n",
		stateStyle.Render("●"),
		projectName,
		m.activeTimer.Note,
		timerValueStyle.Render(timeStr),
	)
}

func (m *OverviewModel) renderRecentEntries() string {
	header := "  Recent Entries (Last 7 Days)\n"
	if len(m.recentEntries) == 0 {
		return header + subtitleStyle.Render("  No recent entries") + "\n"
	}

	s := header
	limit := 8
	if len(m.recentEntries) < limit {
		limit = len(m.recentEntries)
	}

	// Entries arrive most recent first
	for i := 0; i < limit; i++ {
		entry := m.recentEntries[i]
		projectName := m.projectNames[entry.ProjectID]
		if projectName == "" {
			projectName = fmt.Sprintf("Project #%d", entry.ProjectID)
		}

		s += fmt.Sprintf("  %-7s %-20s %6s  %s\n",
			entry.StartedAt.Local().Format("Jan 2"),
			truncateStr(projectName, 20),
			formatHours(entry.Hours()),
			truncateStr(entry.Note, 30),
		)
	}

	return s
}
