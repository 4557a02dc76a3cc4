package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

// Model defines the application state
type Model struct {
	roomList    list.Model
	tableView   table.Model
	tableDetail *TableDetail
	bill        *Bill
	textInput   textinput.Model
	spinner     spinner.Model
	client      *ApiClient
	currentView string
	currentRoom string
	currentID   int
	tables      []Table
	error       string
	notice      string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// Initialize the model
func initialModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	roomList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	roomList.Title = "Comandero"

	columns := []table.Column{
		{Title: "Table", Width: 12},
		{Title: "Status", Width: 12},
		{Title: "Items", Width: 8},
		{Title: "Subtotal", Width: 10},
	}
	tableView := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	ti := textinput.New()
	ti.Placeholder = "Staff PIN"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 30
	ti.EchoMode = textinput.EchoPassword

	return Model{
		roomList:    roomList,
		tableView:   tableView,
		spinner:     s,
		textInput:   ti,
		client:      NewApiClient(),
		currentView: "login",
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.currentView != "login" && m.currentView != "add_item" {
				return m, tea.Quit
			}
		case "enter":
			switch m.currentView {
			case "login":
				pin := m.textInput.Value()
				m.textInput.SetValue("")
				return m, doLogin(m.client, pin)
			case "rooms":
				if selected, ok := m.roomList.SelectedItem().(item); ok {
					m.currentRoom = selected.title
					m.currentView = "tables"
					return m, fetchTables(m.client, m.currentRoom)
				}
			case "tables":
				row := m.tableView.SelectedRow()
				if row != nil {
					if id, err := strconv.Atoi(strings.TrimPrefix(row[0], "Mesa ")); err == nil {
						m.currentID = id
						m.currentView = "table_detail"
						return m, fetchTableDetail(m.client, m.currentRoom, id)
					}
				}
			case "add_item":
				input := m.textInput.Value()
				m.textInput.SetValue("")
				m.currentView = "table_detail"
				return m, addItem(m.client, m.currentRoom, m.currentID, input)
			}
		case "esc":
			switch m.currentView {
			case "tables":
				m.currentView = "rooms"
				m.error = ""
			case "table_detail", "bill":
				m.currentView = "tables"
				m.error = ""
				return m, fetchTables(m.client, m.currentRoom)
			case "add_item":
				m.currentView = "table_detail"
			}
		case "n":
			if m.currentView == "table_detail" {
				m.currentView = "add_item"
				m.textInput.Placeholder = "name,quantity,price[,note[,guest]]"
				m.textInput.EchoMode = textinput.EchoNormal
				m.textInput.SetValue("")
				m.textInput.Focus()
				return m, nil
			}
		case "c":
			if m.currentView == "table_detail" {
				return m, commandTable(m.client, m.currentRoom, m.currentID)
			}
		case "b":
			if m.currentView == "table_detail" {
				m.currentView = "bill"
				return m, fetchBill(m.client, m.currentRoom, m.currentID)
			}
		case "p":
			if m.currentView == "bill" {
				return m, printBill(m.client, m.currentRoom, m.currentID)
			}
		case "x":
			if m.currentView == "table_detail" || m.currentView == "bill" {
				return m, closeTable(m.client, m.currentRoom, m.currentID)
			}
		case "r":
			if m.currentView == "tables" {
				return m, fetchTables(m.client, m.currentRoom)
			}
		}
	case loginMsg:
		m.currentView = "rooms"
		m.error = ""
		return m, fetchRooms(m.client)
	case roomsMsg:
		items := make([]list.Item, len(msg.rooms))
		for i, room := range msg.rooms {
			items[i] = item{title: room, desc: "Room"}
		}
		m.roomList.SetItems(items)
		m.roomList.SetSize(60, 20)
		return m, nil
	case tablesMsg:
		m.tables = msg.tables
		m.tableView.SetRows(convertTablesToRows(msg.tables))
		return m, nil
	case tableDetailMsg:
		m.tableDetail = &msg.detail
		m.notice = ""
		return m, nil
	case billMsg:
		m.bill = &msg.bill
		return m, nil
	case errorMsg:
		m.error = msg.err
		return m, nil
	case confirmMsg:
		m.error = ""
		m.notice = msg.message
		switch m.currentView {
		case "table_detail":
			return m, fetchTableDetail(m.client, m.currentRoom, m.currentID)
		case "bill":
			m.currentView = "tables"
			return m, fetchTables(m.client, m.currentRoom)
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "login", "add_item":
		m.textInput, cmd = m.textInput.Update(msg)
	case "rooms":
		m.roomList, cmd = m.roomList.Update(msg)
	case "tables":
		m.tableView, cmd = m.tableView.Update(msg)
	}

	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	switch m.currentView {
	case "login":
		view := titleStyle.Render("Comandero") + "\n\n"
		view += "Enter your staff PIN\n\n" + m.textInput.View() + "\n"
		if m.error != "" {
			view += "\n" + errorStyle.Render(m.error) + "\n"
		}
		return docStyle.Render(view)
	case "rooms":
		return docStyle.Render(m.roomList.View())
	case "tables":
		help := "\nPress 'enter' to open a table, 'r' to refresh, 'esc' to go back\n"
		if m.error != "" {
			help += errorStyle.Render(m.error) + "\n"
		}
		return docStyle.Render(titleStyle.Render("Room: "+m.currentRoom) + "\n\n" + m.tableView.View() + help)
	case "table_detail":
		if m.tableDetail == nil {
			return docStyle.Render("Loading...")
		}
		return docStyle.Render(tableDetailView(*m.tableDetail, m.error, m.notice))
	case "bill":
		if m.bill == nil {
			return docStyle.Render("Loading...")
		}
		return docStyle.Render(billView(m.currentRoom, m.currentID, *m.bill, m.error))
	case "add_item":
		help := "\nFormat: name,quantity,price[,note[,guest]]\nPress 'enter' to add, 'esc' to cancel\n"
		if m.error != "" {
			help += errorStyle.Render(m.error) + "\n"
		}
		return docStyle.Render(titleStyle.Render("Add Item") + "\n\n" + m.textInput.View() + help)
	default:
		return "Loading..."
	}
}

// Custom message types for the tea.Model
type loginMsg struct{}

type roomsMsg struct {
	rooms []string
}

type tablesMsg struct {
	tables []Table
}

type tableDetailMsg struct {
	detail TableDetail
}

type billMsg struct {
	bill Bill
}

type errorMsg struct {
	err string
}

type confirmMsg struct {
	message string
}

func doLogin(client *ApiClient, pin string) tea.Cmd {
	return func() tea.Msg {
		if err := client.Login(pin); err != nil {
			return errorMsg{err: fmt.Sprintf("Login failed: %v", err)}
		}
		return loginMsg{}
	}
}

func fetchRooms(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		rooms, err := client.GetRooms()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching rooms: %v", err)}
		}
		return roomsMsg{rooms: rooms}
	}
}

func fetchTables(client *ApiClient, room string) tea.Cmd {
	return func() tea.Msg {
		tables, err := client.GetTables(room)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching tables: %v", err)}
		}
		return tablesMsg{tables: tables}
	}
}

func fetchTableDetail(client *ApiClient, room string, tableID int) tea.Cmd {
	return func() tea.Msg {
		detail, err := client.GetTable(room, tableID)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching table: %v", err)}
		}
		return tableDetailMsg{detail: *detail}
	}
}

func fetchBill(client *ApiClient, room string, tableID int) tea.Cmd {
	return func() tea.Msg {
		bill, err := client.GetBill(room, tableID)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching bill: %v", err)}
		}
		return billMsg{bill: *bill}
	}
}

func addItem(client *ApiClient, room string, tableID int, input string) tea.Cmd {
	return func() tea.Msg {
		parts := strings.Split(input, ",")
		if len(parts) < 3 {
			return errorMsg{err: "Format: name,quantity,price[,note[,guest]]"}
		}

		name := strings.TrimSpace(parts[0])
		quantity, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return errorMsg{err: "Invalid quantity"}
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return errorMsg{err: "Invalid price"}
		}
		note := ""
		if len(parts) > 3 {
			note = strings.TrimSpace(parts[3])
		}
		guest := 1
		if len(parts) > 4 {
			if g, err := strconv.Atoi(strings.TrimSpace(parts[4])); err == nil {
				guest = g
			}
		}

		if err := client.AddItem(room, tableID, name, quantity, price, note, guest); err != nil {
			return errorMsg{err: fmt.Sprintf("Error adding item: %v", err)}
		}
		return confirmMsg{message: "Item added"}
	}
}

func commandTable(client *ApiClient, room string, tableID int) tea.Cmd {
	return func() tea.Msg {
		if err := client.Command(room, tableID); err != nil {
			return errorMsg{err: fmt.Sprintf("Error commanding: %v", err)}
		}
		return confirmMsg{message: "Pending items sent to kitchen"}
	}
}

func printBill(client *ApiClient, room string, tableID int) tea.Cmd {
	return func() tea.Msg {
		if err := client.PrintBill(room, tableID); err != nil {
			return errorMsg{err: fmt.Sprintf("Error printing bill: %v", err)}
		}
		return confirmMsg{message: "Bill printed"}
	}
}

func closeTable(client *ApiClient, room string, tableID int) tea.Cmd {
	return func() tea.Msg {
		if err := client.CloseTable(room, tableID); err != nil {
			return errorMsg{err: fmt.Sprintf("Error closing table: %v", err)}
		}
		return confirmMsg{message: "Table closed"}
	}
}

// convertTablesToRows converts floor tables to table widget rows
func convertTablesToRows(tables []Table) []table.Row {
	rows := make([]table.Row, len(tables))
	for i, t := range tables {
		subtotal := 0.0
		itemCount := 0
		for _, it := range t.Order {
			subtotal += float64(it.Quantity) * it.Price
			itemCount += it.Quantity
		}
		rows[i] = table.Row{
			fmt.Sprintf("Mesa %d", t.ID),
			t.Status,
			strconv.Itoa(itemCount),
			fmt.Sprintf("%.2f", subtotal),
		}
	}
	return rows
}

// tableDetailView creates a detailed view of a table's order
func tableDetailView(detail TableDetail, errText, notice string) string {
	t := detail.Table
	view := titleStyle.Render(fmt.Sprintf("Mesa %d (%s)", t.ID, t.Status)) + "\n\n"

	if len(t.Order) == 0 {
		view += "No items\n"
	} else {
		for i, it := range t.Order {
			age := time.Since(time.UnixMilli(it.Timestamp)).Round(time.Minute)
			view += fmt.Sprintf("%d. %s (x%d) %.2f - %s - guest %d - %s\n",
				i+1, it.Name, it.Quantity, it.Price, it.Status, it.Guest, age)
			if it.Note != "" {
				view += fmt.Sprintf("   Note: %s\n", it.Note)
			}
		}
	}

	if len(detail.Summary) > 0 {
		view += "\n" + infoStyle.Render("Summary") + "\n"
		for _, line := range detail.Summary {
			view += fmt.Sprintf("%d x %s\n", line.Quantity, line.Name)
		}
	}

	view += fmt.Sprintf("\nNext guest: %d\n", detail.NextGuest)
	view += "\nPress 'n' to add item, 'c' to command, 'b' for bill, 'x' to close, 'esc' to go back"
	if notice != "" {
		view += "\n" + successStyle.Render(notice)
	}
	if errText != "" {
		view += "\n" + errorStyle.Render(errText)
	}
	return view
}

// billView renders a computed bill
func billView(room string, tableID int, bill Bill, errText string) string {
	view := titleStyle.Render(fmt.Sprintf("Bill: %s / Mesa %d", room, tableID)) + "\n\n"
	view += fmt.Sprintf("Subtotal: %.2f\n", bill.Subtotal)
	view += fmt.Sprintf("Tip (%.0f%%): %.2f\n", bill.TipPercent, bill.Tip)
	view += fmt.Sprintf("Total: %.2f\n", bill.Total)

	if len(bill.Guests) > 0 {
		view += "\nPer guest:\n"
		for _, share := range bill.Guests {
			view += fmt.Sprintf("  Guest %d: %.2f\n", share.Guest, share.Subtotal)
		}
	}

	view += "\nPress 'p' to print the bill, 'x' to close the table, 'esc' to go back"
	if errText != "" {
		view += "\n" + errorStyle.Render(errText)
	}
	return view
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
