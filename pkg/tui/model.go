package tui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/juju/loggo/v2"

	"chaininsight/pkg/config"
	"chaininsight/pkg/controller"
)

var log = loggo.GetLogger("chaininsight.tui")

// Version is set by Start()
var Version = "dev"

const subtitle = "Wallet connection, Base chain validation, and real-time blockchain insights."

// Swapped out in tests.
var (
	openURL         = openBrowser
	copyToClipboard = clipboard.WriteAll
)

// Controls in display order.
const (
	ctlConnect = iota
	ctlToggle
	ctlBlockStats
	ctlAddress
	ctlBalance
	numControls
)

var controlLabels = [numControls]string{
	ctlConnect:    "Connect Wallet",
	ctlToggle:     "Toggle Network",
	ctlBlockStats: "Block Stats",
	ctlAddress:    "",
	ctlBalance:    "Check Balance",
}

// --- Messages ---

type clearStatusMsg struct{}
type uiTickMsg time.Time

// actionDoneMsg is returned once a dispatched action has finished.
type actionDoneMsg struct {
	action controller.Action
}

// --- Model ---

type model struct {
	ctrl       *controller.Controller
	sub        controller.Subscriber
	app        config.AppIdentity
	state      controller.State
	focus      int
	addrInput  textinput.Model
	spinner    spinner.Model
	viewport   viewport.Model
	width      int
	height     int
	inFlight   int
	lastUpdate time.Time
	lastLink   string

	statusMessage string
	showHelp      bool
	showGasGraph  bool
	gasHistory    []float64
	gasChainID    int64
}

func initialModel(ctrl *controller.Controller, app config.AppIdentity) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "0x… address"
	ti.Width = 44
	ti.CharLimit = 64

	state := ctrl.State()
	vp := viewport.New(0, 0)
	vp.SetContent(renderLines(state.Display.Lines))

	return model{
		ctrl:       ctrl,
		sub:        ctrl.Subscribe(),
		app:        app,
		state:      state,
		focus:      ctlConnect,
		addrInput:  ti,
		spinner:    s,
		viewport:   vp,
		lastUpdate: state.Display.UpdatedAt,
		gasChainID: state.Network.ChainID,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		listenForEvents(m.sub),
		m.spinner.Tick,
		tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }),
	)
}
