package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ytqa/internal/domain"
	"ytqa/internal/service"
	"ytqa/internal/youtube"
)

// QAPort is the TUI-facing subset of the QA service.
type QAPort interface {
	ProcessVideo(ctx context.Context, url, preferredLang string) (*domain.Transcript, error)
	Answer(ctx context.Context, question string) (string, error)
	Summary() string
	Preview() string
	History() []service.Exchange
	ClearHistory()
}

type phase int

const (
	phaseURL phase = iota
	phaseProcessing
	phaseChat
	phaseAnswering
)

type processedMsg struct {
	transcript *domain.Transcript
	err        error
}

type answerMsg struct {
	question string
	answer   string
	err      error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service  QAPort
	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	phase      phase
	langIdx    int
	transcript *domain.Transcript
	status     string
	ready      bool
	width      int
}

// New creates a new TUI model instance.
func New(svc QAPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Paste a YouTube URL and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		service:  svc,
		input:    ti,
		viewport: vp,
		spin:     sp,
		phase:    phaseURL,
		status:   "Enter a video URL. Tab cycles the preferred caption language.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header + summary, spacer, input frame, status
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderChat())
		return m, nil

	case spinner.TickMsg:
		if m.phase == phaseProcessing || m.phase == phaseAnswering {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case processedMsg:
		if msg.err != nil {
			m.phase = phaseURL
			m.status = errorTip(msg.err)
			return m, nil
		}
		m.phase = phaseChat
		m.transcript = msg.transcript
		m.input.Reset()
		m.input.Placeholder = "Ask about the video"
		if msg.transcript.Substituted() {
			m.status = fmt.Sprintf("Transcript ready in %s (requested %s was unavailable). Ask away.",
				youtube.DisplayName(msg.transcript.Language), youtube.DisplayName(msg.transcript.Requested))
		} else {
			m.status = fmt.Sprintf("Transcript ready in %s. Ask away.", youtube.DisplayName(msg.transcript.Language))
		}
		m.viewport.SetContent(m.renderChat())
		m.viewport.GotoBottom()
		return m, nil

	case answerMsg:
		m.phase = phaseChat
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = "Answered. Ask another question, or ctrl+n for a new video."
		}
		m.viewport.SetContent(m.renderChat())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "ctrl+n":
			return m.resetToURL(), nil
		case "ctrl+l":
			if m.phase == phaseChat {
				m.service.ClearHistory()
				m.status = "Chat cleared."
				m.viewport.SetContent(m.renderChat())
				return m, nil
			}
		case "tab":
			if m.phase == phaseURL {
				m.langIdx = (m.langIdx + 1) % len(youtube.CommonLanguages)
				return m, nil
			}
		case "shift+tab":
			if m.phase == phaseURL {
				m.langIdx = (m.langIdx - 1 + len(youtube.CommonLanguages)) % len(youtube.CommonLanguages)
				return m, nil
			}
		case "enter":
			return m.submit()
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	switch m.phase {
	case phaseURL:
		lang := youtube.CommonLanguages[m.langIdx].Code
		m.phase = phaseProcessing
		m.status = "Fetching transcript..."
		return m, tea.Batch(m.spin.Tick, processVideoCmd(m.service, text, lang))
	case phaseChat:
		m.phase = phaseAnswering
		m.status = "Thinking..."
		question := text
		m.input.Reset()
		return m, tea.Batch(m.spin.Tick, answerCmd(m.service, question))
	}
	return m, nil
}

func (m Model) resetToURL() Model {
	m.phase = phaseURL
	m.transcript = nil
	m.langIdx = 0
	m.input.Reset()
	m.input.Placeholder = "Paste a YouTube URL and press Enter"
	m.status = "Enter a video URL. Tab cycles the preferred caption language."
	m.viewport.SetContent(m.renderChat())
	return m
}

func processVideoCmd(svc QAPort, url, lang string) tea.Cmd {
	return func() tea.Msg {
		t, err := svc.ProcessVideo(context.Background(), url, lang)
		return processedMsg{transcript: t, err: err}
	}
}

func answerCmd(svc QAPort, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := svc.Answer(context.Background(), question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// View renders the TUI layout for the current phase.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("YouTube Transcript Q&A")

	var body, second string
	switch m.phase {
	case phaseURL:
		second = dimStyle.Render("Preferred language: " + m.langLabel() + "  (tab to change)")
		body = chatBoxStyle.Render(m.viewport.View())
	case phaseProcessing:
		second = dimStyle.Render("Preferred language: " + m.langLabel())
		body = chatBoxStyle.Render(m.spin.View() + " Extracting and indexing the transcript...")
	default:
		second = dimStyle.Render(m.service.Summary())
		body = chatBoxStyle.Render(m.viewport.View())
	}

	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + second + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) langLabel() string {
	l := youtube.CommonLanguages[m.langIdx]
	return fmt.Sprintf("%s (%s)", l.Name, l.Code)
}

func (m Model) renderChat() string {
	if m.transcript == nil {
		return "No video loaded yet.\n\nPaste a YouTube link below. Works with youtube.com/watch?v=... and youtu.be/... URLs."
	}
	var sb strings.Builder
	sb.WriteString(previewHeaderStyle.Render("Transcript preview"))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(m.service.Preview()))
	for _, ex := range m.service.History() {
		sb.WriteString("\n\n")
		sb.WriteString(questionStyle.Render("You: " + ex.Question))
		sb.WriteString("\n")
		sb.WriteString(answerStyle.Render(ex.Answer))
	}
	if m.phase == phaseAnswering {
		sb.WriteString("\n\n")
		sb.WriteString(m.spin.View() + " ...")
	}
	return sb.String()
}

// errorTip maps extraction failures to a short actionable status line.
func errorTip(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "available languages"):
		return "Error: " + msg + " Try tab to pick one of those languages."
	case strings.Contains(msg, "no captions"):
		return "Error: this video has no captions; try another video."
	case strings.Contains(msg, "invalid YouTube URL"):
		return "Error: that doesn't look like a YouTube URL."
	default:
		return "Error: " + msg
	}
}

var (
	chatBoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	answerStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	previewHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
