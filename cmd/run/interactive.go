package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dop251/goja"

	"github.com/wippyai/tsload/engine"
	"github.com/wippyai/tsload/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	rt       *runtime.Runtime
	exports  *goja.Object
	cfg      config
	result   string
	items    []exportInfo
	input    textinput.Model
	selected int
	modules  int
	state    modelState
	loading  bool
}

type exportInfo struct {
	name     string
	typeName string
}

type modelState int

const (
	stateSelectExport modelState = iota
	stateInputArg
	stateShowResult
)

func newInteractiveModel(cfg config) *interactiveModel {
	return &interactiveModel{
		cfg:     cfg,
		state:   stateSelectExport,
		loading: true,
	}
}

type loadedMsg struct {
	err     error
	rt      *runtime.Runtime
	exports *goja.Object
	items   []exportInfo
	modules int
}

type resultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadEntry
}

// loadEntry loads the entry, reusing the runtime after a reset so the
// translator is not rebuilt.
func (m *interactiveModel) loadEntry() tea.Msg {
	rt := m.rt
	if rt == nil {
		var err error
		rt, err = newRuntime(context.Background(), m.cfg)
		if err != nil {
			return loadedMsg{err: err}
		}
	}

	exports, err := rt.Load(m.cfg.entry)
	if err != nil {
		return loadedMsg{err: err, rt: rt}
	}

	var items []exportInfo
	for _, name := range engine.ExportNames(exports) {
		items = append(items, exportInfo{name: name, typeName: engine.TypeOf(exports.Get(name))})
	}
	return loadedMsg{rt: rt, exports: exports, items: items, modules: rt.Len()}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateInputArg {
			switch msg.String() {
			case "ctrl+c":
				return m, m.quit()
			case "enter":
				return m, m.callSelected(m.input.Value())
			case "esc":
				m.state = stateSelectExport
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, m.quit()

		case "up", "k":
			if m.state == stateSelectExport && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectExport && m.selected < len(m.items)-1 {
				m.selected++
			}

		case "r":
			if m.rt == nil || m.loading {
				return m, nil
			}
			if err := m.rt.Reset(); err != nil {
				m.err = err
				return m, nil
			}
			m.loading = true
			m.err = nil
			m.state = stateSelectExport
			return m, m.loadEntry

		case "enter":
			switch m.state {
			case stateSelectExport:
				if len(m.items) == 0 {
					return m, nil
				}
				item := m.items[m.selected]
				if item.typeName == "function" {
					m.prepareInput(item)
					m.state = stateInputArg
					return m, textinput.Blink
				}
				return m, m.showSelected
			case stateShowResult:
				m.state = stateSelectExport
				m.result = ""
				m.err = nil
			}

		case "esc":
			if m.state == stateShowResult {
				m.state = stateSelectExport
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		m.loading = false
		m.rt = msg.rt
		if msg.err != nil {
			m.err = msg.err
			m.items = nil
			return m, nil
		}
		m.exports = msg.exports
		m.items = msg.items
		m.modules = msg.modules
		if m.selected >= len(m.items) {
			m.selected = 0
		}

	case resultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	return m, nil
}

func (m *interactiveModel) quit() tea.Cmd {
	if m.rt != nil {
		m.rt.Close(context.Background())
	}
	return tea.Quit
}

func (m *interactiveModel) prepareInput(item exportInfo) {
	ti := textinput.New()
	ti.Placeholder = "string"
	ti.Prompt = item.name + "("
	ti.Width = 40
	ti.Focus()
	m.input = ti
}

func (m *interactiveModel) showSelected() tea.Msg {
	item := m.items[m.selected]
	return resultMsg{result: engine.Stringify(m.rt.VM(), m.exports.Get(item.name))}
}

func (m *interactiveModel) callSelected(arg string) tea.Cmd {
	item := m.items[m.selected]
	return func() tea.Msg {
		fn, ok := goja.AssertFunction(m.exports.Get(item.name))
		if !ok {
			return resultMsg{err: fmt.Errorf("%s is not a function", item.name)}
		}
		v, err := fn(goja.Undefined(), m.rt.VM().ToValue(arg))
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{result: engine.Stringify(m.rt.VM(), v)}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("tsload"))
	b.WriteString(" ")
	b.WriteString(m.cfg.entry)
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString("Loading...")
		return b.String()
	}

	if m.err != nil && m.state != stateShowResult {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("r reload • q quit"))
		return b.String()
	}

	switch m.state {
	case stateSelectExport:
		fmt.Fprintf(&b, "%d modules loaded. Select an export:\n\n", m.modules)
		for i, item := range m.items {
			line := formatExport(item)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter inspect/call • r reload • q quit"))

	case stateInputArg:
		item := m.items[m.selected]
		fmt.Fprintf(&b, "Calling %s\n\n", funcStyle.Render(item.name))
		b.WriteString(m.input.View())
		b.WriteString(")\n\n")
		b.WriteString(helpStyle.Render("enter call • esc back"))

	case stateShowResult:
		item := m.items[m.selected]
		fmt.Fprintf(&b, "%s:\n\n", funcStyle.Render(item.name))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • r reload • q quit"))
	}

	return b.String()
}

func formatExport(item exportInfo) string {
	name := item.name
	if item.typeName == "function" {
		name = funcStyle.Render(name) + "()"
	}
	return name + ": " + typeStyle.Render(item.typeName)
}

func runInteractive(cfg config) error {
	if !isTerminal(os.Stdout) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
