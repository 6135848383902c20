package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ezzabuzaid/iworked/internal/app"
	"github.com/ezzabuzaid/iworked/internal/domain"
)

type invoiceViewMode int

const (
	invoiceViewList          invoiceViewMode = iota
	invoiceViewDetail                        // Viewing a single invoice
	invoiceViewGenPickClient                 // Step 1: pick client
	invoiceViewGenPeriod                     // Step 2: enter billing period
	invoiceViewPayAmount                     // Optional paid amount when marking paid
	invoiceViewConfirmDelete                 // y/n before deleting a draft
)

// invoice period form field indices
const (
	periodFieldFrom = iota
	periodFieldTo
	periodFieldCount
)

// InvoicesModel displays invoices in list and detail views
type InvoicesModel struct {
	app         *app.App
	mode        invoiceViewMode
	invoices    []*domain.Invoice
	clientNames map[int64]string
	cursor      int
	selected    *domain.Invoice
	loading     bool
	err         error
	statusMsg   string

	// Invoice generation state
	genClients  []*domain.Client
	genCursor   int
	genClient   *domain.Client
	genFields   []textinput.Model
	genFocus    int
	amountInput textinput.Model
}

// IsCapturingInput returns true when a text input or confirmation is active
func (m *InvoicesModel) IsCapturingInput() bool {
	return m.mode == invoiceViewGenPeriod || m.mode == invoiceViewPayAmount || m.mode == invoiceViewConfirmDelete
}

type invoicesDataMsg struct {
	invoices    []*domain.Invoice
	clientNames map[int64]string
	err         error
}

type invoiceDetailMsg struct {
	invoice *domain.Invoice
	err     error
}

// genClientsMsg carries the clients available for invoicing
type genClientsMsg struct {
	clients []*domain.Client
	err     error
}

// invoiceCreatedMsg signals invoice generation completed
type invoiceCreatedMsg struct {
	invoice *domain.Invoice
	err     error
}

// invoiceActionMsg reports the result of a status transition or deletion
type invoiceActionMsg struct {
	invoice *domain.Invoice
	action  string
	err     error
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App) tea.Model {
	return &InvoicesModel{
		app:         a,
		mode:        invoiceViewList,
		clientNames: make(map[int64]string),
		loading:     true,
	}
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		userID := m.app.UserID()

		invoices, err := m.app.InvoiceService.ListInvoices(ctx, userID, nil, nil)
		if err != nil {
			return invoicesDataMsg{err: err}
		}

		// Resolve client names, archived included so old invoices still label
		clientNames := make(map[int64]string)
		clients, err := m.app.ClientService.ListClients(ctx, userID, true)
		if err == nil {
			for _, c := range clients {
				clientNames[c.ID] = c.Name
			}
		}

		return invoicesDataMsg{invoices: invoices, clientNames: clientNames}
	}
}

func (m *InvoicesModel) loadDetail(id int64) tea.Cmd {
	return func() tea.Msg {
		invoice, err := m.app.InvoiceService.GetInvoice(context.Background(), m.app.UserID(), id)
		if err != nil {
			return invoiceDetailMsg{err: err}
		}
		return invoiceDetailMsg{invoice: invoice}
	}
}

func (m *InvoicesModel) loadGenClients() tea.Cmd {
	return func() tea.Msg {
		clients, err := m.app.ClientService.ListClients(context.Background(), m.app.UserID(), false)
		if err != nil {
			return genClientsMsg{err: err}
		}
		return genClientsMsg{clients: clients}
	}
}

func (m *InvoicesModel) initPeriodForm() {
	m.genFields = make([]textinput.Model, periodFieldCount)

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	m.genFields[periodFieldFrom] = textinput.New()
	m.genFields[periodFieldFrom].Placeholder = "2006-01-02"
	m.genFields[periodFieldFrom].CharLimit = 10
	m.genFields[periodFieldFrom].Width = 15
	m.genFields[periodFieldFrom].SetValue(monthStart.Format("2006-01-02"))

	m.genFields[periodFieldTo] = textinput.New()
	m.genFields[periodFieldTo].Placeholder = "2006-01-02"
	m.genFields[periodFieldTo].CharLimit = 10
	m.genFields[periodFieldTo].Width = 15
	m.genFields[periodFieldTo].SetValue(now.Format("2006-01-02"))

	m.genFocus = periodFieldFrom
	m.genFields[periodFieldFrom].Focus()
}

// createInvoice builds a draft from the client's unbilled entries in the period
func (m *InvoicesModel) createInvoice() tea.Cmd {
	client := m.genClient
	fromStr := m.genFields[periodFieldFrom].Value()
	toStr := m.genFields[periodFieldTo].Value()

	return func() tea.Msg {
		from, err := time.ParseInLocation("2006-01-02", fromStr, time.Local)
		if err != nil {
			return invoiceCreatedMsg{err: fmt.Errorf("invalid from date (use YYYY-MM-DD): %s", fromStr)}
		}
		to, err := time.ParseInLocation("2006-01-02", toStr, time.Local)
		if err != nil {
			return invoiceCreatedMsg{err: fmt.Errorf("invalid to date (use YYYY-MM-DD): %s", toStr)}
		}
		// The period covers the whole end day
		to = to.AddDate(0, 0, 1)

		invoice, err := m.app.InvoiceService.CreateInvoice(context.Background(), m.app.UserID(), client.ID, from, to)
		if err != nil {
			return invoiceCreatedMsg{err: err}
		}
		return invoiceCreatedMsg{invoice: invoice}
	}
}

func (m *InvoicesModel) markSent(id int64) tea.Cmd {
	return func() tea.Msg {
		invoice, err := m.app.InvoiceService.MarkSent(context.Background(), m.app.UserID(), id)
		return invoiceActionMsg{invoice: invoice, action: "sent", err: err}
	}
}

func (m *InvoicesModel) markPaid(id int64, amount *float64) tea.Cmd {
	return func() tea.Msg {
		invoice, err := m.app.InvoiceService.MarkPaid(context.Background(), m.app.UserID(), id, amount)
		return invoiceActionMsg{invoice: invoice, action: "paid", err: err}
	}
}

func (m *InvoicesModel) deleteInvoice(id int64) tea.Cmd {
	return func() tea.Msg {
		err := m.app.InvoiceService.DeleteInvoice(context.Background(), m.app.UserID(), id)
		return invoiceActionMsg{action: "deleted", err: err}
	}
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadInvoices()

	case invoicesDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.invoices = msg.invoices
			m.clientNames = msg.clientNames
		}
		return m, nil

	case invoiceDetailMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.selected = msg.invoice
		m.mode = invoiceViewDetail
		return m, nil

	case genClientsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.mode = invoiceViewList
			return m, nil
		}
		if len(msg.clients) == 0 {
			m.err = fmt.Errorf("no clients found; add one with 'iworked clients add'")
			m.mode = invoiceViewList
			return m, nil
		}
		m.genClients = msg.clients
		m.genCursor = 0
		m.mode = invoiceViewGenPickClient
		return m, nil

	case invoiceCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Invoice %s created (%s)", msg.invoice.InvoiceNumber, formatMoney(msg.invoice.Total()))
		m.mode = invoiceViewList
		m.genClients = nil
		m.genClient = nil
		m.loading = true
		return m, m.loadInvoices()

	case invoiceActionMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.mode = invoiceViewDetail
			return m, nil
		}
		if msg.action == "deleted" {
			m.statusMsg = "Invoice deleted, entries unlocked"
			m.selected = nil
			m.mode = invoiceViewList
			m.loading = true
			return m, m.loadInvoices()
		}
		// Re-read so the detail view shows lines alongside the new status
		m.statusMsg = fmt.Sprintf("Invoice %s marked %s", msg.invoice.InvoiceNumber, msg.action)
		m.mode = invoiceViewDetail
		m.loading = true
		return m, m.loadDetail(msg.invoice.ID)

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch m.mode {
		case invoiceViewList:
			return m.updateList(msg)
		case invoiceViewDetail:
			return m.updateDetail(msg)
		case invoiceViewGenPickClient:
			return m.updateGenPickClient(msg)
		case invoiceViewGenPeriod:
			return m.updateGenPeriod(msg)
		case invoiceViewPayAmount:
			return m.updatePayAmount(msg)
		case invoiceViewConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
	}

	// Forward non-key messages to the focused input (cursor blink, etc.)
	switch m.mode {
	case invoiceViewGenPeriod:
		var cmd tea.Cmd
		m.genFields[m.genFocus], cmd = m.genFields[m.genFocus].Update(msg)
		return m, cmd
	case invoiceViewPayAmount:
		var cmd tea.Cmd
		m.amountInput, cmd = m.amountInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		if len(m.invoices) > 0 {
			m.loading = true
			return m, m.loadDetail(m.invoices[m.cursor].ID)
		}
	case msg.String() == "n":
		m.loading = true
		m.err = nil
		m.statusMsg = ""
		return m, m.loadGenClients()
	}

	return m, nil
}

func (m *InvoicesModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	inv := m.selected
	if inv == nil {
		m.mode = invoiceViewList
		return m, nil
	}

	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = invoiceViewList
		m.selected = nil
	case msg.String() == "s":
		if inv.Status == domain.InvoiceStatusDraft {
			m.loading = true
			return m, m.markSent(inv.ID)
		}
		m.err = fmt.Errorf("only draft invoices can be sent")
	case msg.String() == "p":
		if inv.Status == domain.InvoiceStatusSent {
			ti := textinput.New()
			ti.Placeholder = fmt.Sprintf("%.2f", inv.Total())
			ti.CharLimit = 12
			ti.Width = 15
			m.amountInput = ti
			m.mode = invoiceViewPayAmount
			return m, m.amountInput.Focus()
		}
		m.err = fmt.Errorf("only sent invoices can be marked paid")
	case msg.String() == "d":
		if inv.Status == domain.InvoiceStatusDraft {
			m.mode = invoiceViewConfirmDelete
			return m, nil
		}
		m.err = fmt.Errorf("only draft invoices can be deleted")
	}
	return m, nil
}

func (m *InvoicesModel) updateGenPickClient(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = invoiceViewList
		m.genClients = nil
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.genCursor > 0 {
			m.genCursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.genCursor < len(m.genClients)-1 {
			m.genCursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		if len(m.genClients) > 0 {
			m.genClient = m.genClients[m.genCursor]
			m.initPeriodForm()
			m.mode = invoiceViewGenPeriod
			return m, m.genFields[m.genFocus].Focus()
		}
	}
	return m, nil
}

func (m *InvoicesModel) updateGenPeriod(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = invoiceViewGenPickClient
		m.err = nil
		return m, nil

	case "tab", "down", "shift+tab", "up":
		m.genFields[m.genFocus].Blur()
		m.genFocus = (m.genFocus + 1) % periodFieldCount
		return m, m.genFields[m.genFocus].Focus()

	case "enter":
		if m.genFocus == periodFieldCount-1 {
			m.loading = true
			return m, m.createInvoice()
		}
		m.genFields[m.genFocus].Blur()
		m.genFocus++
		return m, m.genFields[m.genFocus].Focus()
	}

	var cmd tea.Cmd
	m.genFields[m.genFocus], cmd = m.genFields[m.genFocus].Update(msg)
	return m, cmd
}

func (m *InvoicesModel) updatePayAmount(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = invoiceViewDetail
		return m, nil
	case "enter":
		var amount *float64
		if v := m.amountInput.Value(); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil || parsed < 0 {
				m.err = fmt.Errorf("invalid amount: %s", v)
				return m, nil
			}
			amount = &parsed
		}
		m.loading = true
		return m, m.markPaid(m.selected.ID, amount)
	}

	var cmd tea.Cmd
	m.amountInput, cmd = m.amountInput.Update(msg)
	return m, cmd
}

func (m *InvoicesModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		m.loading = true
		return m, m.deleteInvoice(m.selected.ID)
	default:
		// Any other key cancels
		m.mode = invoiceViewDetail
		return m, nil
	}
}

func (m *InvoicesModel) View() string {
	if m.loading {
		return "Loading..."
	}

	switch m.mode {
	case invoiceViewDetail:
		return m.viewDetail()
	case invoiceViewGenPickClient:
		return m.viewGenPickClient()
	case invoiceViewGenPeriod:
		return m.viewGenPeriod()
	case invoiceViewPayAmount:
		return m.viewPayAmount()
	case invoiceViewConfirmDelete:
		return m.viewConfirmDelete()
	default:
		return m.viewList()
	}
}

func (m *InvoicesModel) viewList() string {
	var s string
	s += titleStyle.Render("Invoices") + "\n\n"

	if m.statusMsg != "" {
		s += lipgloss.NewStyle().Foreground(successColor).
			Render("  "+m.statusMsg) + "\n\n"
	}

	if m.err != nil {
		s += lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	if len(m.invoices) == 0 && m.err == nil {
		s += subtitleStyle.Render("  No invoices yet. Press 'n' to generate one.")
		return s
	}

	// Header
	s += subtitleStyle.Render(fmt.Sprintf(
		"  %-14s  %-20s  %-22s  %s",
		"Number", "Client", "Period", "Status",
	)) + "\n"

	for i, inv := range m.invoices {
		period := fmt.Sprintf("%s - %s",
			inv.DateFrom.Format("Jan 02"),
			inv.DateTo.Format("Jan 02, 2006"),
		)

		invLine := fmt.Sprintf("  %-14s  %-20s  %-22s  %s",
			inv.InvoiceNumber,
			truncateStr(m.clientName(inv.ClientID), 20),
			period,
			statusBadge(inv.Status),
		)

		if i == m.cursor {
			s += selectedStyle.Render(invLine) + "\n"
		} else {
			s += invLine + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: view detail  n: new invoice")

	return s
}

func (m *InvoicesModel) viewDetail() string {
	inv := m.selected
	if inv == nil {
		return "No invoice selected"
	}

	var s string

	s += titleStyle.Render(fmt.Sprintf("Invoice %s", inv.InvoiceNumber)) + "\n\n"

	if m.statusMsg != "" {
		s += lipgloss.NewStyle().Foreground(successColor).
			Render("  "+m.statusMsg) + "\n\n"
	}

	s += fmt.Sprintf("  Client:   %s\n", m.clientName(inv.ClientID))
	s += fmt.Sprintf("  Period:   %s - %s\n",
		inv.DateFrom.Format("Jan 02, 2006"),
		inv.DateTo.Format("Jan 02, 2006"),
	)
	s += fmt.Sprintf("  Status:   %s\n", statusBadge(inv.Status))
	if inv.SentAt != nil {
		s += fmt.Sprintf("  Sent:     %s\n", inv.SentAt.Format("Jan 02, 2006"))
	}
	if inv.PaidAt != nil {
		s += fmt.Sprintf("  Paid:     %s", inv.PaidAt.Format("Jan 02, 2006"))
		if inv.PaidAmount != nil {
			s += fmt.Sprintf("  (%s)", formatMoney(*inv.PaidAmount))
		}
		s += "\n"
	}
	s += "\n"

	// Lines
	if len(inv.Lines) == 0 {
		s += subtitleStyle.Render("  No lines") + "\n"
	} else {
		s += subtitleStyle.Render(fmt.Sprintf(
			"  %-35s  %8s  %10s  %10s",
			"Description", "Hours", "Rate", "Amount",
		)) + "\n"

		for _, line := range inv.Lines {
			s += fmt.Sprintf("  %-35s  %8s  %10s  %10s\n",
				truncateStr(line.Description, 35),
				formatHours(line.Hours),
				formatMoney(line.Rate),
				formatMoney(line.Amount),
			)
		}
	}

	s += "\n"
	s += lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("  Total:  %10s", formatMoney(inv.Total())),
	) + "\n"

	if m.err != nil {
		s += "\n" + lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	s += "\n" + helpStyle.Render("  s: mark sent  p: mark paid  d: delete draft  esc: back")

	return s
}

func (m *InvoicesModel) viewGenPickClient() string {
	var s string
	s += titleStyle.Render("New Invoice - Select Client") + "\n\n"

	for i, client := range m.genClients {
		indicator := "  "
		if i == m.genCursor {
			indicator = "> "
		}

		clientLine := fmt.Sprintf("%s%s", indicator, client.Name)

		if i == m.genCursor {
			s += lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Render(clientLine) + "\n"
		} else {
			s += clientLine + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: select  esc: cancel")

	return s
}

func (m *InvoicesModel) viewGenPeriod() string {
	var s string

	s += titleStyle.Render(fmt.Sprintf("New Invoice - %s", m.genClient.Name)) + "\n\n"
	s += subtitleStyle.Render("  Unbilled entries in the period become one line per project.") + "\n\n"

	labels := []string{"From:", "To:"}
	for i, label := range labels {
		indicator := "  "
		if i == m.genFocus {
			indicator = "> "
		}
		labelStyle := subtitleStyle
		if i == m.genFocus {
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), m.genFields[i].View())
	}

	if m.err != nil {
		s += lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += lipgloss.NewStyle().Foreground(warningColor).Render(
		"  Creating the invoice locks the billed entries") + "\n"
	s += helpStyle.Render("  tab: next field  enter: create  esc: back")

	return s
}

func (m *InvoicesModel) viewPayAmount() string {
	inv := m.selected

	var s string
	s += titleStyle.Render(fmt.Sprintf("Mark %s Paid", inv.InvoiceNumber)) + "\n\n"
	s += fmt.Sprintf("  Invoice total: %s\n\n", formatMoney(inv.Total()))
	s += "  Paid amount (empty records no amount):\n"
	s += "  " + m.amountInput.View() + "\n"

	if m.err != nil {
		s += "\n" + lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	s += "\n" + helpStyle.Render("  enter: confirm  esc: cancel")

	return s
}

func (m *InvoicesModel) viewConfirmDelete() string {
	inv := m.selected

	var s string
	s += titleStyle.Render("Delete Invoice") + "\n\n"
	s += fmt.Sprintf("  %s  %s  %s\n\n", inv.InvoiceNumber, m.clientName(inv.ClientID), formatMoney(inv.Total()))
	s += lipgloss.NewStyle().Foreground(warningColor).Render(
		"  Delete this draft and unlock its entries? (y/n)") + "\n"
	return s
}

func (m *InvoicesModel) clientName(id int64) string {
	if name, ok := m.clientNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Client #%d", id)
}

// statusBadge renders an invoice status with color
func statusBadge(status domain.InvoiceStatus) string {
	switch status {
	case domain.InvoiceStatusDraft:
		return lipgloss.NewStyle().Foreground(mutedColor).Render("DRAFT")
	case domain.InvoiceStatusSent:
		return lipgloss.NewStyle().Foreground(warningColor).Render("SENT")
	case domain.InvoiceStatusPaid:
		return lipgloss.NewStyle().Foreground(successColor).Render("PAID")
	default:
		return string(status)
	}
}
