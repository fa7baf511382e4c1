package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	drumkit "github.com/drumkit-audio/drumkit-go"
)

var slotOrder = []drumkit.Slot{drumkit.SlotKick, drumkit.SlotSnare, drumkit.SlotHiHat, drumkit.SlotTom}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Width(7)
	rulerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#7D56F4")).Foreground(lipgloss.Color("#FAFAFA"))
	playheadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type model struct {
	kit    *drumkit.Kit
	player *drumkit.Player

	cursorRow int
	cursorCol int
	err       error
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.kit.Stop()
			_ = m.player.Stop()
			return m, tea.Quit
		case "left", "h":
			if m.cursorCol > 0 {
				m.cursorCol--
			}
		case "right", "l":
			if m.cursorCol < drumkit.KitSteps-1 {
				m.cursorCol++
			}
		case "up", "k":
			if m.cursorRow > 0 {
				m.cursorRow--
			}
		case "down", "j":
			if m.cursorRow < len(slotOrder)-1 {
				m.cursorRow++
			}
		case " ":
			m.kit.ToggleStep(slotOrder[m.cursorRow], m.cursorCol)
		case "enter":
			m.kit.Trigger(slotOrder[m.cursorRow])
		case "p":
			return m.togglePlayback()
		case "r":
			m.kit.Reset()
		case "c":
			m.kit.ClearAll()
		case "d":
			m.kit.SetDefaultPatterns()
		case "+", "=":
			m.kit.SetBPM(m.kit.BPM() + 5)
		case "-", "_":
			m.kit.SetBPM(m.kit.BPM() - 5)
		case "[":
			m.kit.SetSwing(m.kit.Swing() - 0.05)
		case "]":
			m.kit.SetSwing(m.kit.Swing() + 0.05)
		}
	case tickMsg:
		if m.kit.Playing() {
			return m, tick()
		}
	}
	return m, nil
}

// togglePlayback opens the audio stream lazily on the first play so
// the grid can be edited without an audio device.
func (m model) togglePlayback() (tea.Model, tea.Cmd) {
	if m.kit.Playing() {
		m.kit.Stop()
		return m, nil
	}
	if !m.player.Playing() {
		if err := m.player.PlayKit(m.kit); err != nil {
			m.err = err
			return m, nil
		}
	}
	m.err = nil
	m.kit.Play()
	return m, tick()
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("beatgrid"))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render(""))
	for col := 0; col < drumkit.KitSteps; col++ {
		b.WriteString(rulerStyle.Render(fmt.Sprintf("%3d", col+1)))
	}
	b.WriteString("\n")

	playing := m.kit.Playing()
	for row, slot := range slotOrder {
		b.WriteString(labelStyle.Render(slot.Name()))
		playhead := -1
		if playing {
			playhead = m.kit.CurrentStep(slot)
		}
		for col := 0; col < drumkit.KitSteps; col++ {
			st := m.kit.Step(slot, col)
			glyph := "·"
			if st.Enabled {
				glyph = "●"
				if st.Velocity < 0.75 {
					glyph = "◉"
				}
			}
			style := inactiveStyle
			switch {
			case row == m.cursorRow && col == m.cursorCol:
				style = cursorStyle
			case col == playhead:
				style = playheadStyle
			case st.Enabled:
				style = activeStyle
			}
			b.WriteString(style.Render(" " + glyph + " "))
		}
		b.WriteString("\n")
	}

	state := "stopped"
	if playing {
		state = "playing"
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf("%s  bpm %.0f  swing %.2f", state, m.kit.BPM(), m.kit.Swing())))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("audio: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("arrows/hjkl move · space toggle · enter audition · p play/stop · r rewind"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("c clear · d default pattern · +/- tempo · [/] swing · q quit"))
	b.WriteString("\n")
	return b.String()
}

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		bpm        = flag.Float64("bpm", 120, "starting tempo")
		swing      = flag.Float64("swing", 0.5, "starting swing (0.5 = straight)")
	)
	flag.Parse()

	kit := drumkit.StandardKit(float64(*sampleRate))
	kit.SetBPM(*bpm)
	kit.SetSwing(*swing)

	player, err := drumkit.NewPlayer(drumkit.WithSampleRate(*sampleRate))
	if err != nil {
		log.Fatal(err)
	}

	if _, err := tea.NewProgram(model{kit: kit, player: player}).Run(); err != nil {
		log.Fatal(err)
	}
}
