package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chaininsight/pkg/controller"
)

const maxGasHistory = 60

func listenForEvents(sub controller.Subscriber) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return ev
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// controlEnabled reports whether control i accepts activation. Block stats
// and balance need a wallet session.
func (m model) controlEnabled(i int) bool {
	switch i {
	case ctlBlockStats, ctlBalance:
		return m.state.Connected
	}
	return i >= 0 && i < numControls
}

// nextFocus moves focus by dir, skipping disabled controls.
func (m model) nextFocus(dir int) int {
	f := m.focus
	for i := 0; i < numControls; i++ {
		f = (f + dir + numControls) % numControls
		if m.controlEnabled(f) {
			return f
		}
	}
	return m.focus
}

func (m *model) setFocus(i int) {
	m.focus = i
	if i == ctlAddress {
		m.addrInput.Focus()
	} else {
		m.addrInput.Blur()
	}
}

// dispatch runs action on the controller off the UI goroutine. The display
// changes arrive as controller events.
func (m *model) dispatch(action controller.Action) tea.Cmd {
	ctrl := m.ctrl
	input := m.addrInput.Value()
	m.inFlight++
	return func() tea.Msg {
		ctrl.Dispatch(context.Background(), action, input)
		return actionDoneMsg{action: action}
	}
}

// activate presses control i if it is enabled.
func (m *model) activate(i int) tea.Cmd {
	if !m.controlEnabled(i) {
		return nil
	}
	switch i {
	case ctlConnect:
		return m.dispatch(controller.ActionConnect)
	case ctlToggle:
		return m.dispatch(controller.ActionToggle)
	case ctlBlockStats:
		return m.dispatch(controller.ActionBlockStats)
	case ctlAddress, ctlBalance:
		if !m.controlEnabled(ctlBalance) {
			return nil
		}
		return m.dispatch(controller.ActionBalance)
	}
	return nil
}

// applyState installs a new controller state and keeps focus valid.
func (m *model) applyState(s controller.State) {
	if s.Network.ChainID != m.gasChainID {
		m.gasHistory = nil
		m.gasChainID = s.Network.ChainID
	}
	m.state = s
	m.lastUpdate = s.Display.UpdatedAt
	m.viewport.SetContent(renderLines(s.Display.Lines))
	m.viewport.GotoTop()
	if !m.controlEnabled(m.focus) {
		m.setFocus(ctlConnect)
	}
}

func (m *model) applyEvent(ev controller.Event) {
	m.applyState(ev.State)
	if ev.Link != "" {
		m.lastLink = ev.Link
	}
	if ev.Type == controller.EventNetworkChanged {
		m.lastLink = ""
	}
	if ev.Block != nil && ev.State.Network.ChainID == m.gasChainID {
		m.gasHistory = append(m.gasHistory, float64(ev.Block.GasUsed))
		if len(m.gasHistory) > maxGasHistory {
			m.gasHistory = m.gasHistory[len(m.gasHistory)-maxGasHistory:]
		}
	}
}

func renderLines(lines []string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.HasPrefix(l, "Error: ") {
			out[i] = errStyle.Render(l)
		} else {
			out[i] = l
		}
	}
	return strings.Join(out, "\n")
}
