package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jvmtools/classfile"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectModel struct {
	err      error
	cf       *classfile.ClassFile
	filename string
	rows     []poolRow
	jump     textinput.Model
	selected int
	offset   int
	height   int
	state    modelState
}

// poolRow is one selectable pool slot. Index 0 and Unused slots are not
// listed, so row position and pool index differ.
type poolRow struct {
	index int
	entry *classfile.Entry
}

type modelState int

const (
	stateBrowse modelState = iota
	stateJump
	stateDetail
)

type loadedMsg struct {
	err error
	cf  *classfile.ClassFile
}

func newInspectModel(filename string) *inspectModel {
	ti := textinput.New()
	ti.Placeholder = "index"
	ti.Prompt = "#"
	ti.Width = 8
	return &inspectModel{
		filename: filename,
		jump:     ti,
		height:   24,
	}
}

func (m *inspectModel) Init() tea.Cmd {
	return m.loadClass
}

func (m *inspectModel) loadClass() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	cf, err := classfile.ParseClass(data)
	if err != nil {
		return loadedMsg{err: err}
	}

	return loadedMsg{cf: cf}
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.cf = msg.cf
		for i, e := range msg.cf.Pool {
			if i == 0 || e.Kind == classfile.KindUnused {
				continue
			}
			m.rows = append(m.rows, poolRow{index: i, entry: e})
		}

	case tea.KeyMsg:
		if m.state == stateJump {
			return m.updateJump(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.rows)-1 {
				m.selected++
			}

		case "g":
			if m.state == stateBrowse {
				m.state = stateJump
				m.jump.SetValue("")
				m.jump.Focus()
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.rows) > 0 {
					m.state = stateDetail
				}
			case stateDetail:
				m.state = stateBrowse
			}

		case "esc":
			if m.state == stateDetail {
				m.state = stateBrowse
			}
		}
	}

	return m, nil
}

func (m *inspectModel) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.state = stateBrowse
		m.jump.Blur()
		return m, nil

	case "enter":
		if target, err := strconv.Atoi(m.jump.Value()); err == nil {
			m.selectIndex(target)
		}
		m.state = stateBrowse
		m.jump.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

// selectIndex moves the cursor to the row holding pool index target, or to
// the nearest row before it when target names an Unused slot.
func (m *inspectModel) selectIndex(target int) {
	for i, row := range m.rows {
		if row.index > target {
			break
		}
		m.selected = i
	}
}

func (m *inspectModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.cf == nil {
		return "Loading class file..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Class Inspector"))
	b.WriteString(" ")
	b.WriteString(m.cf.ThisClassName())
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse, stateJump:
		m.viewPool(&b)

	case stateDetail:
		m.viewDetail(&b)
	}

	return b.String()
}

func (m *inspectModel) viewPool(b *strings.Builder) {
	visible := m.height - 7
	if visible < 1 {
		visible = 1
	}
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+visible {
		m.offset = m.selected - visible + 1
	}

	end := m.offset + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.offset; i < end; i++ {
		row := m.rows[i]
		line := fmt.Sprintf("#%-4d %-18s %s", row.index, row.entry.Kind, entrySummary(row.entry))
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.state == stateJump {
		b.WriteString(m.jump.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter go • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select • g jump • enter detail • q quit"))
	}
}

func (m *inspectModel) viewDetail(b *strings.Builder) {
	row := m.rows[m.selected]
	e := row.entry

	b.WriteString(fmt.Sprintf("#%d %s\n\n", row.index, kindStyle.Render(e.Kind.String())))
	for _, line := range detailLines(e) {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter/esc back • q quit"))
}

// detailLines lists an entry's payload and outgoing references with their
// raw pool indices alongside the dereferenced values.
func detailLines(e *classfile.Entry) []string {
	switch e.Kind {
	case classfile.KindUtf8:
		return []string{
			fmt.Sprintf("text: %s", valueStyle.Render(fmt.Sprintf("%q", e.Utf8()))),
		}
	case classfile.KindInteger:
		return []string{fmt.Sprintf("value: %d (0x%08x)", e.Int, uint32(e.Int))}
	case classfile.KindFloat:
		return []string{fmt.Sprintf("value: %g", e.Float)}
	case classfile.KindLong:
		return []string{fmt.Sprintf("value: %d (0x%016x)", e.Long, uint64(e.Long))}
	case classfile.KindDouble:
		return []string{fmt.Sprintf("value: %g", e.Double)}
	case classfile.KindClassInfo:
		return []string{refLine("name", e.Name())}
	case classfile.KindString:
		return []string{refLine("value", e.Value())}
	case classfile.KindFieldRef, classfile.KindMethodRef, classfile.KindInterfaceMethodRef:
		return []string{
			refLine("class", e.Class()),
			refLine("name_and_type", e.NameAndType()),
		}
	case classfile.KindNameAndType:
		return []string{
			refLine("name", e.Name()),
			refLine("descriptor", e.Descriptor()),
		}
	case classfile.KindMethodHandle:
		return []string{
			fmt.Sprintf("kind: %s", e.RefKind),
			refLine("member", e.Member()),
		}
	case classfile.KindMethodType:
		return []string{refLine("descriptor", e.Descriptor())}
	case classfile.KindInvokeDynamic:
		return []string{
			fmt.Sprintf("bootstrap: #%d", e.BootstrapIndex),
			refLine("name_and_type", e.NameAndType()),
		}
	default:
		return nil
	}
}

func refLine(label string, r *classfile.Ref) string {
	return fmt.Sprintf("%s: #%d %s", label, r.Index(), valueStyle.Render(entrySummary(r.Target())))
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInspectModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
