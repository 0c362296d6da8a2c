// Package picker is an interactive port chooser.
package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/allbin/serialpipe/internal/discovery"
	"github.com/allbin/serialpipe/internal/portlist"
	"github.com/allbin/serialpipe/internal/tui/keys"
	"github.com/allbin/serialpipe/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/evertras/bubble-table/table"
)

var (
	ErrNoPorts   = errors.New("no ports found")
	ErrCancelled = errors.New("no port selected")
)

const (
	columnIndex        = "index"
	columnPort         = "port"
	columnType         = "type"
	columnIDs          = "ids"
	columnManufacturer = "manufacturer"
)

// Model lists ports and lets the user choose one
type Model struct {
	ports  []discovery.Descriptor
	table  table.Model
	keys   keys.PickerKeys
	help   help.Model
	chosen int
}

// New creates a picker over ports. ports must not be empty.
func New(ports []discovery.Descriptor) Model {
	columns := []table.Column{
		table.NewColumn(columnIndex, "#", 3),
		table.NewColumn(columnPort, "Port", 18),
		table.NewColumn(columnType, "Type", 16),
		table.NewColumn(columnIDs, "VID:PID", 10),
		table.NewFlexColumn(columnManufacturer, "Manufacturer", 1),
	}

	rows := make([]table.Row, 0, len(ports))
	for i, p := range ports {
		ids, manufacturer := "", ""
		if p.USB != nil {
			ids = fmt.Sprintf("%04x:%04x", p.USB.VendorID, p.USB.ProductID)
			manufacturer = p.USB.Manufacturer
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnIndex:        fmt.Sprintf("%d", i+1),
			columnPort:         p.Path,
			columnType:         table.NewStyledCell(portlist.PortClass(p.Path), styles.KindStyle(p.Kind == discovery.KindUSB)),
			columnIDs:          ids,
			columnManufacturer: manufacturer,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		WithBaseStyle(styles.TableBaseStyle).
		HighlightStyle(styles.TableHighlightStyle).
		WithTargetWidth(80).
		BorderRounded().
		Focused(true)

	return Model{
		ports:  ports,
		table:  t,
		keys:   keys.NewPickerKeys(),
		help:   help.New(),
		chosen: -1,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.table = m.table.WithTargetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Select):
			m.chosen = m.table.GetHighlightedRowIndex()
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Select a serial port"))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(styles.InfoStyle.Render(fmt.Sprintf("%d port(s)", len(m.ports))))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Chosen returns the selected port, if the user picked one
func (m Model) Chosen() (discovery.Descriptor, bool) {
	if m.chosen < 0 || m.chosen >= len(m.ports) {
		return discovery.Descriptor{}, false
	}
	return m.ports[m.chosen], true
}

// Run shows the picker reading keys from in and drawing on out, which
// should not be the stream a caller wants to print the result on
func Run(ctx context.Context, ports []discovery.Descriptor, in io.Reader, out io.Writer) (discovery.Descriptor, error) {
	if len(ports) == 0 {
		return discovery.Descriptor{}, ErrNoPorts
	}

	p := tea.NewProgram(New(ports),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return discovery.Descriptor{}, fmt.Errorf("picker failed: %w", err)
	}

	chosen, ok := final.(Model).Chosen()
	if !ok {
		return discovery.Descriptor{}, ErrCancelled
	}
	return chosen, nil
}
