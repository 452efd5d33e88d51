// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"waterfall/internal/audio"
	"waterfall/internal/dsp"
	applog "waterfall/internal/log"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// frameInterval paces view refreshes. Rows arrive slower than this, so a
// faster tick only wastes cycles.
const frameInterval = 33 * time.Millisecond

type viewMode int

const (
	waterfallView viewMode = iota
	barsView
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// WaterfallModel renders the scrolling spectrogram driven by a capture
// session. The model only reads pipeline snapshots; the audio callback
// keeps producing rows whether or not a frame is being drawn.
//
// Pressing "d" opens the device picker as an overlay screen; the selection
// is fed back to the session and takes effect on the next start.
type WaterfallModel struct {
	session *audio.CaptureSession

	width  int
	height int
	mode   viewMode
	picker *DeviceListModel
	err    error
}

func NewWaterfallModel(session *audio.CaptureSession) WaterfallModel {
	return WaterfallModel{session: session}
}

func (m WaterfallModel) Init() tea.Cmd {
	return tick()
}

func (m WaterfallModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.picker != nil {
			picker, cmd := m.picker.Update(msg)
			m.picker = &picker
			return m, cmd
		}

	case tickMsg:
		return m, tick()

	case deviceSelectedMsg:
		m.picker = nil
		m.err = m.session.SelectDevice(msg.id)
		return m, nil

	case pickerClosedMsg:
		m.picker = nil
		return m, nil

	case devicesMsg, errMsg:
		if m.picker != nil {
			picker, cmd := m.picker.Update(msg)
			m.picker = &picker
			return m, cmd
		}

	case tea.KeyMsg:
		if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
			if m.session.State() == audio.StateStreaming {
				m.session.Stop()
			}
			return m, tea.Quit
		}

		if m.picker != nil {
			picker, cmd := m.picker.Update(msg)
			m.picker = &picker
			return m, cmd
		}

		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("q"))):
			if m.session.State() == audio.StateStreaming {
				m.session.Stop()
			}
			return m, tea.Quit

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter", " "))):
			switch m.session.State() {
			case audio.StateStreaming:
				m.err = m.session.Stop()
			default:
				m.err = m.session.Start()
			}

		case key.Matches(msg, key.NewBinding(key.WithKeys("d"))):
			cmd := m.openPicker()
			return m, cmd

		case key.Matches(msg, key.NewBinding(key.WithKeys("r"))):
			m.session.Pipeline().Reset()

		case key.Matches(msg, key.NewBinding(key.WithKeys("b"))):
			if m.mode == waterfallView {
				m.mode = barsView
			} else {
				m.mode = waterfallView
			}
		}
	}

	return m, nil
}

// openPicker switches to the device list screen, sized to the current
// window, and kicks off device enumeration.
func (m *WaterfallModel) openPicker() tea.Cmd {
	picker := NewDeviceListModel()
	if m.width > 0 {
		picker, _ = picker.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	}
	m.picker = &picker
	return picker.Init()
}

func (m WaterfallModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.picker != nil {
		return m.picker.View()
	}

	title := titleStyle.Render("Spectral Waterfall")
	body := ""
	bodyHeight := m.height - 4
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	if m.mode == barsView {
		body = m.renderBars(bodyHeight)
	} else {
		body = m.renderWaterfall(bodyHeight)
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s", title, body, m.statusLine(), m.helpLine())
}

// renderWaterfall draws history rows oldest at the top, newest at the
// bottom, each cell a block colored by its mapped intensity. Rows wider
// than the terminal are sampled down to fit.
func (m WaterfallModel) renderWaterfall(height int) string {
	rows := m.session.Pipeline().Rows()

	var sb strings.Builder
	start := 0
	if len(rows) > height {
		start = len(rows) - height
	}
	for _, row := range rows[start:] {
		sb.WriteString(m.renderRow(row))
		sb.WriteString("\n")
	}
	for i := len(rows) - start; i < height; i++ {
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (m WaterfallModel) renderRow(row dsp.ColorRow) string {
	columns := m.width
	if columns <= 0 || len(row) == 0 {
		return ""
	}
	if columns > len(row) {
		columns = len(row)
	}

	var sb strings.Builder
	for col := 0; col < columns; col++ {
		cell := row[col*len(row)/columns]
		style := lipgloss.NewStyle().Foreground(
			lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", cell.R, cell.G, cell.B)))
		sb.WriteString(style.Render("█"))
	}
	return sb.String()
}

// renderBars draws the latest row as a vertical bar chart, one bucket per
// column, bar height proportional to mean intensity.
func (m WaterfallModel) renderBars(height int) string {
	latest := m.session.Pipeline().Latest()
	if len(latest) == 0 || height < 1 {
		if height > 1 {
			return strings.Repeat("\n", height-1)
		}
		return ""
	}

	columns := m.width
	if columns > len(latest) {
		columns = len(latest)
	}
	levels := dsp.AggregateRow(latest, columns)

	lines := make([]string, height)
	for line := 0; line < height; line++ {
		var sb strings.Builder
		threshold := float64(height-line) / float64(height)
		for _, level := range levels {
			if level >= threshold {
				sb.WriteString(highlightStyle.Render("█"))
			} else {
				sb.WriteString(" ")
			}
		}
		lines[line] = sb.String()
	}
	return strings.Join(lines, "\n")
}

func (m WaterfallModel) statusLine() string {
	p := m.session.Pipeline()
	status := fmt.Sprintf("state: %s  rows: %d  peak: %.3f",
		m.session.State(), p.RowCount(), p.Peak())
	if m.err != nil {
		status += dimStyle.Render(fmt.Sprintf("  error: %v", m.err))
	} else if last := m.session.LastError(); last != "" {
		status += dimStyle.Render("  last error: " + last)
	}
	return infoStyle.Render(status)
}

func (m WaterfallModel) helpLine() string {
	return dimStyle.Render("enter: start/stop • d: devices • r: reset • b: bars/waterfall • q: quit")
}

// StartWaterfallUI launches the visualization for an existing session.
// Log output is parked while the alternate screen is active so capture-path
// warnings do not corrupt the drawn frame.
func StartWaterfallUI(session *audio.CaptureSession) error {
	applog.SetOutput(io.Discard)
	defer applog.SetOutput(os.Stderr)

	p := tea.NewProgram(
		NewWaterfallModel(session),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
