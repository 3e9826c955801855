package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pitchlog/notify"
	"pitchlog/recorder"
	"pitchlog/store"
)

type tickMsg time.Time

type tuiView int

const (
	viewCapture tuiView = iota
	viewHistory
	viewForm
)

type tuiModel struct {
	app           *app
	view          tuiView
	width, height int
	frame         int

	// capture
	input      string
	recording  bool
	recSeconds float64
	bins       []float64
	extracting bool

	// history
	query      string
	searchMode bool
	cursor     int

	// form
	draft    store.Draft
	fieldIdx int
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	faintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	recStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).Padding(0, 1)
)

var barLevels = []rune(" ▁▂▃▄▅▆▇█")

func NewTUIProgram(a *app) *tea.Program {
	return tea.NewProgram(tuiModel{app: a}, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spectrumMsg:
		m.bins = msg.Bins

	case recordingTickMsg:
		m.recSeconds = msg.Seconds

	case extractingMsg:
		m.recording = false
		m.bins = nil
		m.extracting = true

	case extractFailedMsg:
		m.extracting = false

	case draftProposedMsg:
		m.extracting = false
		m.input = ""
		m.app.wf.Propose(msg.Draft)
		m.view = viewCapture

	case notifyChangedMsg:
		// repaint; queue state is read in View
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.view {
	case viewCapture:
		return m.handleCaptureKey(msg)
	case viewHistory:
		return m.handleHistoryKey(msg)
	case viewForm:
		return m.handleFormKey(msg)
	}
	return m, nil
}

func (m tuiModel) handleCaptureKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if _, pending := m.app.wf.Pending(); pending {
		switch msg.String() {
		case "y", "enter":
			m.app.wf.Confirm()
		case "n", "esc":
			m.app.wf.Discard()
		case "e":
			d, _ := m.app.wf.Pending()
			m.draft = d
			m.fieldIdx = 0
			m.view = viewForm
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+r":
		if m.recording {
			m.app.recorder.Stop()
			m.recording = false
			m.bins = nil
		} else {
			m.app.recorder.Start()
			m.recording = m.app.recorder.State() == recorder.Recording
			m.recSeconds = 0
		}
	case "tab":
		m.view = viewHistory
		m.cursor = 0
	case "enter":
		text := strings.TrimSpace(m.input)
		if text != "" && !m.extracting && !m.recording {
			m.extracting = true
			m.app.extractText(text)
		}
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		case tea.KeySpace:
			m.input += " "
		}
	}
	return m, nil
}

func (m tuiModel) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchMode {
		switch msg.String() {
		case "enter", "esc":
			m.searchMode = false
		case "backspace":
			if len(m.query) > 0 {
				m.query = m.query[:len(m.query)-1]
			}
		default:
			switch msg.Type {
			case tea.KeyRunes:
				m.query += string(msg.Runes)
			case tea.KeySpace:
				m.query += " "
			}
		}
		m.cursor = 0
		return m, nil
	}

	records := m.visibleRecords()
	switch msg.String() {
	case "tab", "esc":
		m.view = viewCapture
	case "/":
		m.searchMode = true
		m.query = ""
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(records)-1 {
			m.cursor++
		}
	case "e":
		if m.cursor < len(records) {
			if m.app.wf.StartEdit(records[m.cursor].ID) {
				d, _ := m.app.wf.Pending()
				m.draft = d
				m.fieldIdx = 0
				m.view = viewForm
			}
		}
	case "d":
		if m.cursor < len(records) {
			m.app.store.Delete(records[m.cursor].ID)
			if m.cursor > 0 {
				m.cursor--
			}
		}
	case "n":
		m.draft = store.NewDraft(time.Now())
		m.draft.Date = time.Now().Format("2006-01-02")
		m.draft.Time = time.Now().Format("15:04")
		m.draft.FinalScore = "0 - 0"
		m.draft.Category = store.League
		m.draft.Rating = 5
		m.draft.MinutesPlayed = 90
		m.fieldIdx = 0
		m.view = viewForm
	case "c":
		m.app.copyCSV()
	}
	return m, nil
}

// form fields, in display order
var formLabels = []string{
	"Date", "Time", "Venue", "Opponent", "Teammates", "Final score",
	"Category", "Rating", "Minutes", "Goals", "Assist from", "Assists",
	"Scorer", "Notes",
}

var categories = []store.Category{store.League, store.Cup, store.Friendly, store.Tournament}

func (m tuiModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if _, editing := m.app.wf.Editing(); editing {
			m.app.wf.CancelEdit()
		}
		m.view = viewCapture
		return m, nil
	case "enter":
		m.app.wf.SetDraft(m.draft)
		m.app.wf.Confirm()
		m.view = viewCapture
		return m, nil
	case "up", "shift+tab":
		if m.fieldIdx > 0 {
			m.fieldIdx--
		}
		return m, nil
	case "down", "tab":
		if m.fieldIdx < len(formLabels)-1 {
			m.fieldIdx++
		}
		return m, nil
	case "left":
		m.adjustField(-1)
		return m, nil
	case "right":
		m.adjustField(+1)
		return m, nil
	case "backspace":
		if s := m.fieldString(); s != nil && len(*s) > 0 {
			*s = (*s)[:len(*s)-1]
		}
		return m, nil
	}
	if s := m.fieldString(); s != nil {
		switch msg.Type {
		case tea.KeyRunes:
			*s += string(msg.Runes)
		case tea.KeySpace:
			*s += " "
		}
	}
	return m, nil
}

// fieldString returns the text field under the cursor, nil for the
// numeric and enum fields (those adjust with left/right).
func (m *tuiModel) fieldString() *string {
	switch m.fieldIdx {
	case 0:
		return &m.draft.Date
	case 1:
		return &m.draft.Time
	case 2:
		return &m.draft.Venue
	case 3:
		return &m.draft.Opponent
	case 4:
		return &m.draft.Teammates
	case 5:
		return &m.draft.FinalScore
	case 10:
		return &m.draft.AssistFrom
	case 12:
		return &m.draft.Scorer
	case 13:
		return &m.draft.Notes
	}
	return nil
}

func (m *tuiModel) adjustField(delta int) {
	switch m.fieldIdx {
	case 6:
		idx := 0
		for i, c := range categories {
			if c == m.draft.Category {
				idx = i
			}
		}
		idx = (idx + delta + len(categories)) % len(categories)
		m.draft.Category = categories[idx]
	case 7:
		m.draft.Rating = clampInt(m.draft.Rating+delta, 1, 10)
	case 8:
		m.draft.MinutesPlayed = clampInt(m.draft.MinutesPlayed+delta, 0, 120)
	case 9:
		m.draft.Goals = clampInt(m.draft.Goals+delta, 0, 99)
	case 11:
		m.draft.Assists = clampInt(m.draft.Assists+delta, 0, 99)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m tuiModel) visibleRecords() []store.Record {
	if m.query != "" {
		return m.app.store.Search(m.query)
	}
	return m.app.store.List()
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var body string
	switch m.view {
	case viewCapture:
		body = m.renderCapture()
	case viewHistory:
		body = m.renderHistory()
	case viewForm:
		body = m.renderForm()
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body = lipgloss.NewStyle().Height(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m tuiModel) renderHeader() string {
	st := m.app.store.Stats()
	stats := fmt.Sprintf("%d matches · %d goals · %d assists · avg rating %.1f",
		st.Total, st.Goals, st.Assists, st.AvgRating)
	return titleStyle.Render("pitchlog") + "  " + dimStyle.Render(stats) + "\n"
}

func (m tuiModel) renderFooter() string {
	var lines []string
	for _, n := range m.app.queue.Active() {
		var style lipgloss.Style
		switch n.Severity {
		case notify.Error:
			style = errorStyle
		case notify.Success:
			style = successStyle
		default:
			style = infoStyle
		}
		lines = append(lines, style.Render("▪ "+n.Message))
	}

	var help string
	switch m.view {
	case viewCapture:
		if _, pending := m.app.wf.Pending(); pending {
			help = "y/enter confirm · e edit · n/esc discard"
		} else {
			help = "type report + enter · ctrl+r record · tab history · ctrl+c quit"
		}
	case viewHistory:
		help = "↑/↓ move · e edit · d delete · n new · / search · c copy csv · tab back"
	case viewForm:
		help = "↑/↓ field · type / ←→ adjust · enter save · esc cancel"
	}
	lines = append(lines, faintStyle.Render(help))
	lines = append(lines, faintStyle.Render(m.app.statusLine()))
	return strings.Join(lines, "\n")
}

func (m tuiModel) renderCapture() string {
	var b strings.Builder

	b.WriteString(labelStyle.Render("Describe your match:") + "\n")
	input := m.input
	if m.frame%10 < 5 {
		input += "▏"
	}
	b.WriteString(panelStyle.Width(min(m.width-4, 76)).Render(input) + "\n\n")

	switch {
	case m.recording:
		b.WriteString(recStyle.Render(fmt.Sprintf("● REC %.1fs", m.recSeconds)) + "\n")
		b.WriteString(barStyle.Render(renderBars(m.bins)) + "\n")
		b.WriteString(dimStyle.Render("ctrl+r to stop") + "\n")
	case m.extracting:
		dots := strings.Repeat(".", m.frame%4)
		b.WriteString(infoStyle.Render("analyzing"+dots) + "\n")
	default:
		b.WriteString(dimStyle.Render("○ ctrl+r to record a voice report") + "\n")
	}

	if d, pending := m.app.wf.Pending(); pending {
		b.WriteString("\n" + m.renderDraftPanel(d))
	}
	return b.String()
}

func renderBars(bins []float64) string {
	var b strings.Builder
	for _, v := range bins {
		idx := int(v * float64(len(barLevels)-1))
		if idx >= len(barLevels) {
			idx = len(barLevels) - 1
		}
		b.WriteRune(barLevels[idx])
		b.WriteRune(barLevels[idx])
	}
	return b.String()
}

func (m tuiModel) renderDraftPanel(d store.Draft) string {
	var b strings.Builder
	b.WriteString(selectedStyle.Render("Extracted match data") + "\n")
	row := func(label, value string) {
		if value != "" {
			b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", label)) +
				valueStyle.Render(value) + "\n")
		}
	}
	row("Date", d.Date+"  "+d.Time)
	row("Opponent", d.Opponent)
	row("Score", d.FinalScore)
	row("Venue", d.Venue)
	row("Category", string(d.Category))
	row("Stats", fmt.Sprintf("%d goals · %d assists · rating %d · %d min",
		d.Goals, d.Assists, d.Rating, d.MinutesPlayed))
	row("Teammates", d.Teammates)
	row("Notes", d.Notes)
	return panelStyle.Width(min(m.width-4, 76)).Render(b.String())
}

func (m tuiModel) renderHistory() string {
	var b strings.Builder

	if m.searchMode || m.query != "" {
		q := m.query
		if m.searchMode && m.frame%10 < 5 {
			q += "▏"
		}
		b.WriteString(labelStyle.Render("search: ") + valueStyle.Render(q) + "\n\n")
	}

	records := m.visibleRecords()
	if len(records) == 0 {
		b.WriteString(dimStyle.Render("no matches recorded") + "\n")
		return b.String()
	}

	visible := m.height - 8
	if visible < 3 {
		visible = 3
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	for i := start; i < len(records) && i < start+visible; i++ {
		r := records[i]
		line := fmt.Sprintf("%s  vs %-18s %-7s %-10s ★%-2d %dg %da",
			r.Date, truncate(r.Opponent, 18), r.FinalScore, r.Category,
			r.Rating, r.Goals, r.Assists)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("▶ "+line) + "\n")
		} else {
			b.WriteString(valueStyle.Render("  "+line) + "\n")
		}
	}
	return b.String()
}

func (m tuiModel) renderForm() string {
	var b strings.Builder
	title := "New match"
	if _, editing := m.app.wf.Editing(); editing {
		title = "Edit match"
	}
	b.WriteString(selectedStyle.Render(title) + "\n\n")

	values := []string{
		m.draft.Date, m.draft.Time, m.draft.Venue, m.draft.Opponent,
		m.draft.Teammates, m.draft.FinalScore, string(m.draft.Category),
		fmt.Sprintf("%d", m.draft.Rating),
		fmt.Sprintf("%d", m.draft.MinutesPlayed),
		fmt.Sprintf("%d", m.draft.Goals),
		m.draft.AssistFrom,
		fmt.Sprintf("%d", m.draft.Assists),
		m.draft.Scorer, m.draft.Notes,
	}
	for i, label := range formLabels {
		value := values[i]
		if i == m.fieldIdx {
			if m.frame%10 < 5 {
				value += "▏"
			}
			b.WriteString(selectedStyle.Render(fmt.Sprintf("▶ %-12s", label)) +
				valueStyle.Render(value) + "\n")
		} else {
			b.WriteString(labelStyle.Render(fmt.Sprintf("  %-12s", label)) +
				valueStyle.Render(value) + "\n")
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
