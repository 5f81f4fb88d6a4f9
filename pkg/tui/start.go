package tui

import (
	"chaininsight/pkg/config"
	"chaininsight/pkg/controller"

	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the interactive screen until the user quits.
func Start(ctrl *controller.Controller, app config.AppIdentity, version string) error {
	Version = version
	p := tea.NewProgram(
		initialModel(ctrl, app),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		log.Errorf("tui: %v", err)
		return err
	}
	return nil
}
