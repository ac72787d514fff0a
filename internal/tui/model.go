package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"labrag/internal/domain"
	"labrag/internal/service"
)

// Disclaimer is shown with every result.
const Disclaimer = "This app is for educational purposes only. Always consult a doctor for medical decisions."

// ReportPort is the TUI-facing subset of the report service.
type ReportPort interface {
	Interpret(ctx context.Context, req service.Request) (*service.Result, error)
}

// Loader reads an uploaded document from a path.
type Loader func(path string) (domain.Document, error)

type processedMsg struct {
	path   string
	result *service.Result
	err    error
}

type answeredMsg struct {
	result *service.Result
	err    error
}

// Model is the Bubble Tea model for the interpreter. It keeps only the
// current report path and the last result; every interaction re-runs the
// service from scratch.
type Model struct {
	ctx      context.Context
	service  ReportPort
	load     Loader
	input    textinput.Model
	viewport viewport.Model
	path     string
	pending  string
	result   *service.Result
	status   string
	busy     bool
	ready    bool
}

// New creates a new TUI model. A non-empty path is processed on start.
func New(ctx context.Context, svc ReportPort, load Loader, path string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 0
	m := Model{
		ctx:      ctx,
		service:  svc,
		load:     load,
		input:    ti,
		viewport: viewport.New(0, 0),
		pending:  path,
	}
	m.enterIdle("Upload a lab report: type the path to a PDF and press Enter.")
	return m
}

// Init initializes the model (text input cursor blink) and processes the
// initial report if one was given.
func (m Model) Init() tea.Cmd {
	if m.pending == "" {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.processCmd(m.pending))
}

// Update handles key, window and service events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 2 + qh + 1 // header, status+disclaimer, input box, spacer
		vh := msg.Height - reserved - rh
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh)
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case processedMsg:
		m.busy = false
		if msg.err != nil {
			m.enterIdle("Error: " + msg.err.Error())
			return m, nil
		}
		m.path = msg.path
		m.result = msg.result
		m.enterQuestion("Report processed. Here's what I found. Ask a question about your lab results.")
		return m, nil
	case answeredMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.result = msg.result
		m.input.Reset()
		m.status = "Answered. Ask another question or press ctrl+o for a new report."
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+o":
			m.path = ""
			m.result = nil
			m.enterIdle("Upload a lab report: type the path to a PDF and press Enter.")
			return m, nil
		case "enter":
			raw := m.input.Value()
			if strings.TrimSpace(raw) == "" {
				return m, nil
			}
			m.busy = true
			if m.path == "" {
				m.status = "Reading and processing your medical report..."
				return m, m.processCmd(strings.TrimSpace(raw))
			}
			m.status = "Thinking..."
			return m, m.askCmd(m.path, raw)
		case "up":
			m.viewport.ScrollUp(1)
			return m, nil
		case "down":
			m.viewport.ScrollDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the layout: header, results, input box, status and disclaimer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Medical Report Interpreter")
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	footer := disclaimerStyle.Render(Disclaimer)
	return header + "\n" + results + "\n" + input + "\n" + status + "\n" + footer
}

func (m *Model) enterIdle(status string) {
	m.input.Reset()
	m.input.Placeholder = "path/to/report.pdf"
	m.status = status
	m.viewport.SetContent(m.renderResult())
}

func (m *Model) enterQuestion(status string) {
	m.input.Reset()
	m.input.Placeholder = "Ask a question about your lab results"
	m.status = status
	m.viewport.SetContent(m.renderResult())
}

func (m Model) processCmd(path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := m.load(path)
		if err != nil {
			return processedMsg{path: path, err: err}
		}
		res, err := m.service.Interpret(m.ctx, service.Request{Document: doc})
		return processedMsg{path: path, result: res, err: err}
	}
}

func (m Model) askCmd(path, question string) tea.Cmd {
	return func() tea.Msg {
		doc, err := m.load(path)
		if err != nil {
			return answeredMsg{err: err}
		}
		res, err := m.service.Interpret(m.ctx, service.Request{Document: doc, Question: question})
		return answeredMsg{result: res, err: err}
	}
}

func (m Model) renderResult() string {
	if m.result == nil {
		return "No report loaded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", labelStyle.Render("Lab values"))
	b.WriteString(RenderLabs(m.result.Labs))
	if m.result.State() == service.StateAnswered {
		fmt.Fprintf(&b, "\n\n%s\n", labelStyle.Render("Q: "+m.result.Question))
		fmt.Fprintf(&b, "\n%s\n\n%s", labelStyle.Render("Explanation:"), m.result.Answer)
	}
	return b.String()
}

// RenderLabs formats extracted values one per line, in reference order.
func RenderLabs(labs domain.LabValues) string {
	if len(labs) == 0 {
		return "No recognized lab values found."
	}
	width := 0
	for _, l := range labs {
		width = max(width, len(l.Test))
	}
	lines := make([]string, len(labs))
	for i, l := range labs {
		lines[i] = fmt.Sprintf("%-*s  %s", width, l.Test, l.Value)
	}
	return strings.Join(lines, "\n")
}

var (
	resultBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	disclaimerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
