package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-dom/config"
	"github.com/wippyai/wasm-dom/dom"
	"github.com/wippyai/wasm-dom/event"
	"github.com/wippyai/wasm-dom/host"
	"github.com/wippyai/wasm-dom/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	targetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	canceledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	stderrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	consoleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444"))
)

const (
	frameTime    = 16 * time.Millisecond
	consoleLimit = 500
	chromeLines  = 6
)

type interactiveModel struct {
	err       error
	cfg       *config.Config
	rt        *runtime.Runtime
	lines     chan string
	console   []string
	last      string
	target    string
	viewport  viewport.Model
	pointer   pointer
	lastFrame time.Time
	events    int
	stepping  bool
	ready     bool
}

type loadedMsg struct {
	err error
	rt  *runtime.Runtime
}

type lineMsg string

type frameMsg time.Time

// lineWriter feeds log output into the console pane. Lines are dropped
// while the pane is behind.
type lineWriter chan string

func (w lineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		w.send(line)
	}
	return len(p), nil
}

func (w lineWriter) send(line string) {
	select {
	case w <- line:
	default:
	}
}

func (w lineWriter) Sync() error { return nil }

func newInteractiveModel(cfg *config.Config) *interactiveModel {
	return &interactiveModel{
		cfg:      cfg,
		lines:    make(chan string, 256),
		viewport: viewport.New(80, 10),
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.load, m.waitForLine)
}

func (m *interactiveModel) load() tea.Msg {
	ctx := context.Background()

	level, err := parseLevel(m.cfg.LogLevel)
	if err != nil {
		return loadedMsg{err: err}
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		lineWriter(m.lines),
		level,
	)
	logger := zap.New(core)
	setLoggers(logger)

	doc, err := m.cfg.LoadDocument()
	if err != nil {
		return loadedMsg{err: err}
	}
	rt, err := runtime.New(ctx, m.cfg, logger, doc, runtime.WithSink(func(s host.Stream, line string) {
		if s == host.Stderr {
			line = stderrStyle.Render(line)
		}
		lineWriter(m.lines).send(line)
	}))
	if err != nil {
		return loadedMsg{err: err}
	}
	if err := rt.LoadFile(ctx, m.cfg.Guest.Path); err != nil {
		rt.Close(ctx)
		return loadedMsg{err: err}
	}
	return loadedMsg{rt: rt}
}

func (m *interactiveModel) waitForLine() tea.Msg {
	return lineMsg(<-m.lines)
}

func frame() tea.Cmd {
	return tea.Tick(frameTime, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// pickTarget chooses where key and mouse events go: the first element of
// the document, or the window if there is none.
func pickTarget(doc *dom.Document) string {
	if ids := doc.ElementIDs(); len(ids) > 0 {
		return ids[0]
	}
	return dom.WindowID
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.rt != nil {
				m.rt.Close(context.Background())
			}
			return m, tea.Quit
		}
		if m.rt != nil {
			m.dispatch(m.target, keyEvent(msg))
		}

	case tea.MouseMsg:
		if m.rt != nil {
			for _, ev := range m.pointer.mouseEvents(msg) {
				m.dispatch(m.target, ev)
			}
		}

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = max(msg.Height-chromeLines-2, 3)
		m.ready = true
		if m.rt != nil {
			m.rt.Update(func(doc *dom.Document) {
				doc.Window().SetRect(dom.Rect{Width: float64(msg.Width), Height: float64(msg.Height)})
			})
			m.dispatch(dom.WindowID, event.New("resize", 0))
		}

	case tea.FocusMsg, tea.BlurMsg:
		if m.rt != nil {
			_, blurred := msg.(tea.BlurMsg)
			m.rt.Update(func(doc *dom.Document) { doc.SetHidden(blurred) })
			m.dispatch(dom.DocumentID, event.New("visibilitychange", event.Bubbles))
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.target = pickTarget(m.rt.Document())
		m.stepping = true
		m.lastFrame = time.Now()
		cmds = append(cmds, frame())

	case frameMsg:
		if m.rt != nil && m.stepping {
			now := time.Time(msg)
			more, err := m.rt.Step(context.Background(), float64(now.Sub(m.lastFrame))/float64(time.Millisecond))
			m.lastFrame = now
			if err != nil {
				m.appendLine(errorStyle.Render(err.Error()))
			}
			m.stepping = more && err == nil
			if m.stepping {
				cmds = append(cmds, frame())
			}
		}

	case lineMsg:
		m.appendLine(string(msg))
		cmds = append(cmds, m.waitForLine)
	}

	return m, tea.Batch(cmds...)
}

func (m *interactiveModel) dispatch(target string, ev *event.Event) {
	notCanceled, err := m.rt.Dispatch(context.Background(), target, ev)
	m.events++
	status := eventStyle.Render(ev.Type) + " -> " + targetStyle.Render(target)
	if !notCanceled {
		status += " " + canceledStyle.Render("canceled")
	}
	if err != nil {
		status += " " + errorStyle.Render(err.Error())
	}
	m.last = status
}

func (m *interactiveModel) appendLine(line string) {
	m.console = append(m.console, line)
	if len(m.console) > consoleLimit {
		m.console = m.console[len(m.console)-consoleLimit:]
	}
	m.viewport.SetContent(strings.Join(m.console, "\n"))
	m.viewport.GotoBottom()
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit.", m.err))
	}
	if m.rt == nil || !m.ready {
		return "Loading guest..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("wasm-dom"))
	b.WriteString(" ")
	b.WriteString(m.cfg.Guest.Path)
	b.WriteString(fmt.Sprintf("  width %d\n\n", m.cfg.Width))

	b.WriteString(fmt.Sprintf("target %s  listeners %d  events %d",
		targetStyle.Render(m.target), m.rt.Bridge().Registry().Len(), m.events))
	if m.stepping {
		b.WriteString("  " + eventStyle.Render("stepping"))
	}
	b.WriteString("\n")
	if m.last != "" {
		b.WriteString("last " + m.last)
	}
	b.WriteString("\n")

	b.WriteString(consoleStyle.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("keys, mouse and focus go to the guest • ctrl+c quit"))
	return b.String()
}

func runInteractive(cfg *config.Config) error {
	p := tea.NewProgram(newInteractiveModel(cfg),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	_, err := p.Run()
	return err
}
