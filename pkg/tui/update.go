package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"chaininsight/pkg/controller"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-6, 20)
		m.viewport.Height = max(msg.Height-16, 5)

	case controller.Event:
		m.applyEvent(msg)
		cmds = append(cmds, listenForEvents(m.sub))

	case actionDoneMsg:
		if m.inFlight > 0 {
			m.inFlight--
		}
		// Events can be dropped for slow subscribers; resync from the source.
		m.applyState(m.ctrl.State())
		log.Tracef("action %v done", msg.action)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case uiTickMsg:
		cmds = append(cmds, tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }))

	case clearStatusMsg:
		m.statusMessage = ""

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "q", "esc", "?":
			m.showHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "tab":
		m.setFocus(m.nextFocus(1))
		return m, nil
	case "shift+tab":
		m.setFocus(m.nextFocus(-1))
		return m, nil
	case "enter":
		return m, m.activate(m.focus)
	}

	if m.focus == ctlAddress {
		if msg.String() == "esc" {
			m.setFocus(ctlBalance)
			if !m.controlEnabled(ctlBalance) {
				m.setFocus(ctlConnect)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.addrInput, cmd = m.addrInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "c":
		return m, m.activate(ctlConnect)
	case "n":
		return m, m.activate(ctlToggle)
	case "b":
		return m, m.activate(ctlBlockStats)
	case "v":
		return m, m.activate(ctlBalance)
	case "a", "/":
		m.setFocus(ctlAddress)
	case "g":
		m.showGasGraph = !m.showGasGraph
	case "y":
		if m.state.Session == nil {
			m.statusMessage = "No wallet connected"
		} else if err := copyToClipboard(m.state.Session.Address); err != nil {
			m.statusMessage = "Failed to copy to clipboard"
		} else {
			m.statusMessage = "Wallet address copied to clipboard!"
		}
		return m, clearStatusAfter(2 * time.Second)
	case "o":
		if m.lastLink == "" {
			m.statusMessage = "No explorer link to open"
		} else if err := openURL(m.lastLink); err != nil {
			m.statusMessage = fmt.Sprintf("Failed to open browser: %v", err)
		} else {
			m.statusMessage = "Opened in browser"
		}
		return m, clearStatusAfter(2 * time.Second)
	case "up", "k", "down", "j", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}
