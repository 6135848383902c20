package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ezzabuzaid/iworked/internal/app"
	"github.com/ezzabuzaid/iworked/internal/domain"
	"github.com/ezzabuzaid/iworked/internal/service"
)

type entryMode int

const (
	entryModeList          entryMode = iota
	entryModePickProject             // cursor-based project selection
	entryModeNew                     // text input form for entry details
	entryModeConfirmDelete           // y/n confirmation before delete
	entryModeEditNote                // inline note editing
)

// entry form field indices (after project is selected)
const (
	entryFieldDate = iota
	entryFieldStartTime
	entryFieldEndTime
	entryFieldNote
	entryFieldCount
)

// EntriesModel displays a scrollable list of time entries
type EntriesModel struct {
	app        *app.App
	entries    []*domain.TimeEntry
	projects   map[int64]*domain.Project
	cursor     int
	offset     int
	maxVisible int
	loading    bool
	err        error
	statusMsg  string

	// Form state
	mode          entryMode
	fields        []textinput.Model
	fieldFocus    int
	formProjects  []*domain.Project
	formProject   *domain.Project // selected project
	projectCursor int

	// Inline note editing
	noteInput textinput.Model
}

type entriesDataMsg struct {
	entries  []*domain.TimeEntry
	projects map[int64]*domain.Project
	err      error
}

type entrySavedMsg struct {
	err error
}

type entryProjectsMsg struct {
	projects []*domain.Project
	err      error
}

type entryDeletedMsg struct {
	err error
}

type entryNoteUpdatedMsg struct {
	err error
}

// IsCapturingInput returns true when the text form or delete confirmation is active
func (m *EntriesModel) IsCapturingInput() bool {
	return m.mode == entryModeNew || m.mode == entryModeConfirmDelete || m.mode == entryModeEditNote
}

// NewEntriesModel creates a new entries screen model
func NewEntriesModel(a *app.App) tea.Model {
	return &EntriesModel{
		app:        a,
		projects:   make(map[int64]*domain.Project),
		maxVisible: 15,
		loading:    true,
	}
}

func (m *EntriesModel) Init() tea.Cmd {
	return m.loadEntries()
}

func (m *EntriesModel) loadEntries() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		userID := m.app.UserID()

		end := time.Now()
		start := end.AddDate(0, 0, -30)

		entries, err := m.app.EntryService.ListEntries(ctx, userID, nil, &start, &end)
		if err != nil {
			return entriesDataMsg{err: err}
		}

		projects := make(map[int64]*domain.Project)
		all, err := m.app.ProjectService.ListProjects(ctx, userID, nil)
		if err == nil {
			for _, p := range all {
				projects[p.ID] = p
			}
		}

		return entriesDataMsg{
			entries:  entries,
			projects: projects,
		}
	}
}

func (m *EntriesModel) loadFormProjects() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		projects, err := m.app.ProjectService.ListProjects(ctx, m.app.UserID(), nil)
		if err != nil {
			return entryProjectsMsg{err: err}
		}
		return entryProjectsMsg{projects: projects}
	}
}

func (m *EntriesModel) selectProject(project *domain.Project) {
	m.formProject = project
	m.initForm()
	m.mode = entryModeNew
}

func (m *EntriesModel) initForm() {
	m.fields = make([]textinput.Model, entryFieldCount)

	// Date
	m.fields[entryFieldDate] = textinput.New()
	m.fields[entryFieldDate].Placeholder = "2006-01-02"
	m.fields[entryFieldDate].CharLimit = 10
	m.fields[entryFieldDate].Width = 15
	m.fields[entryFieldDate].SetValue(time.Now().Format("2006-01-02"))

	// Start time
	m.fields[entryFieldStartTime] = textinput.New()
	m.fields[entryFieldStartTime].Placeholder = "09:00"
	m.fields[entryFieldStartTime].CharLimit = 5
	m.fields[entryFieldStartTime].Width = 10

	// End time
	m.fields[entryFieldEndTime] = textinput.New()
	m.fields[entryFieldEndTime].Placeholder = "17:00"
	m.fields[entryFieldEndTime].CharLimit = 5
	m.fields[entryFieldEndTime].Width = 10

	// Note
	m.fields[entryFieldNote] = textinput.New()
	m.fields[entryFieldNote].Placeholder = "What did you work on?"
	m.fields[entryFieldNote].CharLimit = 200
	m.fields[entryFieldNote].Width = 50

	m.fieldFocus = entryFieldDate
	m.fields[entryFieldDate].Focus()
}

func (m *EntriesModel) saveEntry() tea.Cmd {
	project := m.formProject
	dateStr := m.fields[entryFieldDate].Value()
	startStr := m.fields[entryFieldStartTime].Value()
	endStr := m.fields[entryFieldEndTime].Value()
	note := m.fields[entryFieldNote].Value()

	return func() tea.Msg {
		ctx := context.Background()

		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return entrySavedMsg{err: fmt.Errorf("invalid date (use YYYY-MM-DD): %s", dateStr)}
		}

		startParts, err := time.Parse("15:04", startStr)
		if err != nil {
			return entrySavedMsg{err: fmt.Errorf("invalid start time (use HH:MM): %s", startStr)}
		}
		startTime := time.Date(date.Year(), date.Month(), date.Day(),
			startParts.Hour(), startParts.Minute(), 0, 0, time.Local)

		endParts, err := time.Parse("15:04", endStr)
		if err != nil {
			return entrySavedMsg{err: fmt.Errorf("invalid end time (use HH:MM): %s", endStr)}
		}
		endTime := time.Date(date.Year(), date.Month(), date.Day(),
			endParts.Hour(), endParts.Minute(), 0, 0, time.Local)

		// Duration bounds, overlap, and business hours are checked by the service
		_, err = m.app.EntryService.CreateEntry(ctx, m.app.UserID(), service.EntryInput{
			ProjectID: project.ID,
			StartedAt: startTime,
			EndedAt:   endTime,
			Note:      note,
		})
		if err != nil {
			return entrySavedMsg{err: err}
		}

		return entrySavedMsg{}
	}
}

func (m *EntriesModel) deleteEntry(id int64) tea.Cmd {
	return func() tea.Msg {
		err := m.app.EntryService.DeleteEntry(context.Background(), m.app.UserID(), id)
		return entryDeletedMsg{err: err}
	}
}

func (m *EntriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle project loading result, which arrives while still in list mode
	if msg, ok := msg.(entryProjectsMsg); ok {
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if len(msg.projects) == 0 {
			m.err = fmt.Errorf("no projects found; add one with 'iworked projects add'")
			return m, nil
		}
		m.formProjects = msg.projects
		m.projectCursor = 0
		// Skip picker if only one project
		if len(msg.projects) == 1 {
			m.selectProject(msg.projects[0])
			return m, m.fields[m.fieldFocus].Focus()
		}
		m.mode = entryModePickProject
		return m, nil
	}

	// Route messages based on mode
	switch m.mode {
	case entryModePickProject:
		return m.updatePickProject(msg)
	case entryModeNew:
		return m.updateForm(msg)
	case entryModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	case entryModeEditNote:
		return m.updateEditNote(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadEntries()

	case entriesDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.entries = msg.entries
			m.projects = msg.projects
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.maxVisible {
					m.offset = m.cursor - m.maxVisible + 1
				}
			}
		case msg.String() == "n":
			m.loading = true
			return m, m.loadFormProjects()
		case msg.String() == "enter":
			if len(m.entries) > 0 && m.cursor < len(m.entries) {
				entry := m.entries[m.cursor]
				if entry.IsLocked() {
					m.err = fmt.Errorf("cannot edit: entry is locked by an invoice")
					return m, nil
				}
				ti := textinput.New()
				ti.Placeholder = "Enter note..."
				ti.SetValue(entry.Note)
				ti.CharLimit = 200
				ti.Width = 50
				m.noteInput = ti
				m.mode = entryModeEditNote
				return m, m.noteInput.Focus()
			}
		case msg.String() == "d":
			if len(m.entries) > 0 && m.cursor < len(m.entries) {
				entry := m.entries[m.cursor]
				if entry.IsLocked() {
					m.err = fmt.Errorf("cannot delete: entry is locked by an invoice")
					return m, nil
				}
				m.mode = entryModeConfirmDelete
				return m, nil
			}
		}
	}

	return m, nil
}

func (m *EntriesModel) updatePickProject(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Back):
			m.mode = entryModeList
			m.formProjects = nil
			return m, nil
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.projectCursor > 0 {
				m.projectCursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.projectCursor < len(m.formProjects)-1 {
				m.projectCursor++
			}
		case key.Matches(msg, DefaultKeyMap.Select):
			if len(m.formProjects) > 0 {
				m.selectProject(m.formProjects[m.projectCursor])
				return m, m.fields[m.fieldFocus].Focus()
			}
		}
	}
	return m, nil
}

func (m *EntriesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entrySavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = entryModeList
		m.statusMsg = "Entry saved"
		m.loading = true
		return m, m.loadEntries()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = entryModePickProject
			m.err = nil
			// Go back to project picker (or list if only one project)
			if len(m.formProjects) <= 1 {
				m.mode = entryModeList
			}
			return m, nil

		case "tab", "down":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % entryFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "shift+tab", "up":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + entryFieldCount) % entryFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "enter":
			if m.fieldFocus == entryFieldCount-1 {
				return m, m.saveEntry()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case "ctrl+s":
			return m, m.saveEntry()
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *EntriesModel) updateEditNote(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entryNoteUpdatedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.mode = entryModeList
			return m, nil
		}
		m.mode = entryModeList
		m.statusMsg = "Note updated"
		m.loading = true
		return m, m.loadEntries()

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			entry := m.entries[m.cursor]
			note := m.noteInput.Value()
			return m, func() tea.Msg {
				_, err := m.app.EntryService.UpdateEntry(context.Background(), m.app.UserID(), entry.ID, service.EntryInput{Note: note})
				return entryNoteUpdatedMsg{err: err}
			}
		case "esc":
			m.mode = entryModeList
			return m, nil
		default:
			var cmd tea.Cmd
			m.noteInput, cmd = m.noteInput.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *EntriesModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entryDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.mode = entryModeList
			return m, nil
		}
		m.mode = entryModeList
		m.statusMsg = "Entry deleted"
		m.loading = true
		return m, m.loadEntries()

	case tea.KeyMsg:
		switch msg.String() {
		case "y":
			entry := m.entries[m.cursor]
			return m, m.deleteEntry(entry.ID)
		default:
			// Any other key cancels
			m.mode = entryModeList
			return m, nil
		}
	}
	return m, nil
}

func (m *EntriesModel) View() string {
	if m.loading {
		return "Loading entries..."
	}

	switch m.mode {
	case entryModePickProject:
		return m.viewPickProject()
	case entryModeNew:
		return m.viewForm()
	case entryModeConfirmDelete:
		return m.viewConfirmDelete()
	case entryModeEditNote:
		return m.viewEditNote()
	default:
		return m.viewList()
	}
}

func (m *EntriesModel) viewEditNote() string {
	entry := m.entries[m.cursor]
	date := entry.StartedAt.Local().Format("Jan 2")
	hours := formatHours(entry.Hours())

	var s string
	s += titleStyle.Render("Edit Note") + "\n\n"
	s += fmt.Sprintf("  %s  %s  %s\n\n", date, m.projectName(entry.ProjectID), hours)
	s += fmt.Sprintf("  Note: %s\n\n", m.noteInput.View())
	s += helpStyle.Render("  enter: save  esc: cancel") + "\n"
	return s
}

func (m *EntriesModel) viewConfirmDelete() string {
	entry := m.entries[m.cursor]
	date := entry.StartedAt.Local().Format("Jan 2")
	hours := formatHours(entry.Hours())
	note := truncateStr(entry.Note, 40)

	var s string
	s += titleStyle.Render("Delete Entry") + "\n\n"
	s += fmt.Sprintf("  %s  %s  %s  %s\n\n", date, m.projectName(entry.ProjectID), hours, note)
	s += lipgloss.NewStyle().Foreground(warningColor).Render("  Delete this entry? (y/n)") + "\n"
	return s
}

func (m *EntriesModel) viewList() string {
	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	var s string

	s += titleStyle.Render("Time Entries (Last 30 Days)") + "\n"

	if m.statusMsg != "" {
		s += lipgloss.NewStyle().Foreground(successColor).
			Render("  "+m.statusMsg) + "\n"
	}

	if len(m.entries) == 0 {
		s += "\n" + subtitleStyle.Render("  No time entries yet. Press 'n' to add one.")
		return s
	}

	// Summary
	totalHours, totalValue := m.calcTotals()
	s += subtitleStyle.Render(fmt.Sprintf(
		"  %d entries  |  %s total  |  %s value",
		len(m.entries), formatHours(totalHours), formatMoney(totalValue),
	)) + "\n\n"

	// Column header
	s += subtitleStyle.Render(fmt.Sprintf(
		"     %-7s  %-20s  %6s  %10s  %s",
		"Date", "Project", "Hours", "Amount", "Note",
	)) + "\n"

	// Entries
	end := m.offset + m.maxVisible
	if end > len(m.entries) {
		end = len(m.entries)
	}

	for i := m.offset; i < end; i++ {
		entry := m.entries[i]
		s += m.renderEntry(entry, i == m.cursor) + "\n"
	}

	// Scroll indicators
	if m.offset > 0 {
		s += subtitleStyle.Render("  ... more above") + "\n"
	}
	if end < len(m.entries) {
		s += subtitleStyle.Render("  ... more below") + "\n"
	}

	// Totals
	s += "\n" + lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("     %-7s  %-20s  %6s  %10s", "Total", "", formatHours(totalHours), formatMoney(totalValue)),
	) + "\n"

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new entry  enter: edit note  d: delete")

	return s
}

func (m *EntriesModel) viewPickProject() string {
	var s string
	s += titleStyle.Render("New Entry - Select Project") + "\n\n"

	for i, project := range m.formProjects {
		indicator := "  "
		if i == m.projectCursor {
			indicator = "> "
		}

		rate := fmt.Sprintf("$%.0f/hr", project.HourlyRate)
		projectLine := fmt.Sprintf("%s%-25s  %s", indicator, project.Name, rate)

		if i == m.projectCursor {
			s += lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Render(projectLine) + "\n"
		} else {
			s += projectLine + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: select  esc: cancel")

	return s
}

func (m *EntriesModel) viewForm() string {
	var s string

	projectName := ""
	if m.formProject != nil {
		projectName = m.formProject.Name
	}
	s += titleStyle.Render(fmt.Sprintf("New Entry - %s", projectName)) + "\n\n"

	labels := []string{"Date:", "Start Time:", "End Time:", "Note:"}
	for i, label := range labels {
		indicator := "  "
		if i == m.fieldFocus {
			indicator = "> "
		}
		labelStyle := subtitleStyle
		if i == m.fieldFocus {
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), m.fields[i].View())
	}

	if m.err != nil {
		s += lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: back")

	return s
}

func (m *EntriesModel) renderEntry(entry *domain.TimeEntry, selected bool) string {
	// Lock indicator
	lock := "  "
	if entry.IsLocked() {
		lock = "🔒"
	}

	date := entry.StartedAt.Local().Format("Jan 2")
	projectName := truncateStr(m.projectName(entry.ProjectID), 20)
	hours := formatHours(entry.Hours())
	amount := formatMoney(m.entryValue(entry))
	note := truncateStr(entry.Note, 35)

	line := fmt.Sprintf("%s %-7s  %-20s  %6s  %10s  %s",
		lock, date, projectName, hours, amount, note,
	)

	if selected {
		return "  " + selectedStyle.Render(line)
	}
	if entry.IsLocked() {
		return "  " + lipgloss.NewStyle().Foreground(mutedColor).Render(line)
	}
	return "  " + line
}

func (m *EntriesModel) projectName(id int64) string {
	if p, ok := m.projects[id]; ok {
		return p.Name
	}
	return fmt.Sprintf("Project #%d", id)
}

// entryValue prices an entry at its project's current rate
func (m *EntriesModel) entryValue(entry *domain.TimeEntry) float64 {
	p, ok := m.projects[entry.ProjectID]
	if !ok {
		return 0
	}
	return domain.Amount(entry.StartedAt, entry.EndedAt, p.HourlyRate)
}

func (m *EntriesModel) calcTotals() (float64, float64) {
	var totalHours, totalValue float64
	for _, entry := range m.entries {
		totalHours += entry.Hours()
		totalValue += m.entryValue(entry)
	}
	return domain.Round2(totalHours), domain.Round2(totalValue)
}
