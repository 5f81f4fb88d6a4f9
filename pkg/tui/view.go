package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"chaininsight/pkg/utils"
)

func (m model) View() string {
	if m.showHelp {
		return m.viewHelp()
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.app.Name),
		subtleStyle.Render(subtitle),
	)

	net := m.state.Network
	status := fmt.Sprintf("Network: %s (chainId %d)", net.Label, net.ChainID)
	if s := m.state.Session; s != nil {
		addr := s.Address
		if m.width > 0 && m.width < 100 {
			addr = utils.ShortAddress(addr)
		}
		status += infoStyle.Render(fmt.Sprintf(" • Wallet: %s", addr))
	} else {
		status += subtleStyle.Render(" • Wallet: not connected")
	}

	pane := m.viewport.View()
	if m.viewport.Height == 0 {
		pane = renderLines(m.state.Display.Lines)
	}
	if m.state.Display.Pending || m.inFlight > 0 {
		pane = m.spinner.View() + " " + pane
	}
	paneWidth := 0
	if m.width > 4 {
		paneWidth = m.width - 4
	}
	output := boxStyle.Width(paneWidth).Render(pane)

	blocks := []string{header, "", m.viewControls(), status, output}
	if m.showGasGraph {
		blocks = append(blocks, m.viewGasGraph())
	}
	blocks = append(blocks, m.viewFooter())
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func (m model) viewControls() string {
	var items []string
	for i := 0; i < numControls; i++ {
		if i == ctlAddress {
			style := buttonStyle
			if m.focus == ctlAddress {
				style = focusedButtonStyle
			}
			items = append(items, style.Render(m.addrInput.View()))
			continue
		}
		style := buttonStyle
		switch {
		case !m.controlEnabled(i):
			style = disabledButtonStyle
		case m.focus == i:
			style = focusedButtonStyle
		}
		items = append(items, style.Render(controlLabels[i]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, items...)
}

func (m model) viewGasGraph() string {
	if len(m.gasHistory) < 2 {
		return subtleStyle.Render("Gas graph: query Block Stats at least twice on this network.")
	}
	width := 60
	if m.width > 20 {
		width = m.width - 20
	}
	graph := asciigraph.Plot(m.gasHistory,
		asciigraph.Height(8),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("Gas used, last %d block queries (%s)", len(m.gasHistory), m.state.Network.Label)),
	)
	return boxStyle.Render(graph)
}

func (m model) viewFooter() string {
	line := "tab/⇧tab:focus • enter:press • c:connect • n:network • b:block • a:address • v:balance • ?:help • q:quit"
	updated := ""
	if !m.lastUpdate.IsZero() {
		updated = fmt.Sprintf("Last updated %s • v%s", humanize.Time(m.lastUpdate), Version)
	}

	var footer string
	if m.width > 0 {
		footer = lipgloss.JoinVertical(lipgloss.Left,
			subtleStyle.Width(m.width).Render(utils.TruncateString(line, m.width)),
			subtleStyle.Render(updated),
		)
	} else {
		footer = subtleStyle.Render(line + "\n" + updated)
	}
	if m.statusMessage != "" {
		footer = lipgloss.JoinVertical(lipgloss.Left, infoStyle.Render(m.statusMessage), footer)
	}
	return footer
}

func (m model) viewHelp() string {
	rows := [][2]string{
		{"tab / shift+tab", "Move between controls"},
		{"enter", "Press focused control"},
		{"c", "Connect wallet"},
		{"n", "Toggle network (drops the wallet session)"},
		{"b", "Latest block stats (needs wallet)"},
		{"a or /", "Edit address field (esc to leave)"},
		{"v", "Check balance of field or wallet address"},
		{"y", "Copy wallet address"},
		{"o", "Open last explorer link"},
		{"g", "Toggle gas-used graph"},
		{"j/k", "Scroll output"},
		{"q", "Quit"},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-18s %s\n", r[0], r[1]))
	}
	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Help"),
		"",
		strings.TrimRight(b.String(), "\n"),
		"",
		subtleStyle.Render("? / esc / q to close"),
	))
	if m.width == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
