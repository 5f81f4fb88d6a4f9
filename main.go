package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/juju/loggo/v2"
	"github.com/mitchellh/go-homedir"

	"chaininsight/pkg/config"
	"chaininsight/pkg/controller"
	"chaininsight/pkg/models"
	"chaininsight/pkg/rpc"
	"chaininsight/pkg/server"
	"chaininsight/pkg/tui"
	"chaininsight/pkg/wallet"
)

// Version should be set during build
var Version = "dev"

var log = loggo.GetLogger("chaininsight")

const selfTestTimeout = 15 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the mode selected by args and returns the process exit code.
// Deferred cleanup runs before the caller exits.
func run(args []string) int {
	flags := flag.NewFlagSet("chaininsight", flag.ContinueOnError)
	testFlag := flags.Bool("t", false, "Test network endpoints and exit")
	testLongFlag := flags.Bool("test", false, "Test network endpoints and exit")
	jsonFlag := flags.Bool("json", false, "Output test results as JSON")
	configFlag := flags.String("config", "", "Path to configuration file")
	versionFlag := flags.Bool("version", false, "Print version and exit")
	serverFlag := flags.Bool("server", false, "Run in headless server mode")
	portFlag := flags.Int("port", 8080, "Port for API server")
	initFlag := flags.Bool("init", false, "Write a default configuration file and exit")
	restoreFlag := flags.Bool("restore", false, "Restore the newest configuration backup and exit")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *versionFlag {
		fmt.Printf("chaininsight version %s\n", Version)
		return 0
	}

	cfgInput := *configFlag
	if cfgInput == "" && flags.NArg() > 0 {
		cfgInput = flags.Arg(0)
	}
	path, err := config.GetConfigPath(cfgInput)
	if err != nil {
		fmt.Printf("Error determining config path: %v\n", err)
		return 1
	}

	if *initFlag {
		if err := config.SaveConfig(config.Default(), path); err != nil {
			fmt.Printf("Failed to write config: %v\n", err)
			return 1
		}
		fmt.Printf("Wrote default configuration to %s\n", path)
		return 0
	}

	if *restoreFlag {
		backup, err := config.RestoreLastBackup(path)
		if err != nil {
			fmt.Printf("Failed to restore config: %v\n", err)
			return 1
		}
		fmt.Printf("Restored %s from %s\n", path, backup)
		return 0
	}

	cfg, err := config.LoadConfigFromFile(path)
	if err != nil {
		fmt.Printf("Error loading config from %s: %v\n", path, err)
		return 1
	}

	if err := loggo.ConfigureLoggers(cfg.LogLevel); err != nil {
		fmt.Printf("Invalid log level %q: %v\n", cfg.LogLevel, err)
		return 1
	}

	if *testFlag || *testLongFlag {
		ctx, cancel := context.WithTimeout(context.Background(), selfTestTimeout)
		report := runSelfTest(ctx, path, cfg, rpc.DialEthClient)
		cancel()
		if *jsonFlag {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(report)
		} else {
			printReport(os.Stdout, report)
		}
		if !report.Healthy {
			return 1
		}
		return 0
	}

	// The alt screen owns the terminal; send log output to a file instead.
	if !*serverFlag {
		f, err := redirectLogs(cfg.LogFile)
		if err != nil {
			fmt.Printf("Error opening log file: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()
	}

	ctrl := newController(cfg)
	defer ctrl.Close()

	srv := server.NewServer(ctrl, nil)
	go func() {
		if err := srv.Start(*portFlag); err != nil {
			log.Errorf("server: %v", err)
		}
	}()

	if *serverFlag {
		fmt.Printf("Running in server mode on port %d...\n", *portFlag)
		select {} // Keep alive
	}

	if err := tui.Start(ctrl, cfg.App, Version); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		return 1
	}
	return 0
}

func newController(cfg config.Config) *controller.Controller {
	return controller.New(controller.Options{
		App:          cfg.App,
		Start:        cfg.StartDescriptor(),
		RPCOverrides: cfg.RPCOverrides,
		Wallets:      wallet.NewRPCFactory(cfg.WalletURL),
		Dial:         rpc.DialEthClient,
	})
}

// redirectLogs points the default loggo writer at the file named by path.
func redirectLogs(path string) (io.Closer, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(expanded, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	if _, err := loggo.ReplaceDefaultWriter(loggo.NewSimpleWriter(f, loggo.DefaultFormatter)); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// runSelfTest checks every configured network endpoint.
func runSelfTest(ctx context.Context, path string, cfg config.Config, dial rpc.Dialer) models.TestReport {
	report := models.TestReport{
		ConfigPath: path,
		WalletURL:  cfg.WalletURL,
		Healthy:    true,
	}
	for _, net := range cfg.Networks() {
		res := rpc.CheckEndpoint(ctx, net, dial)
		report.Endpoints = append(report.Endpoints, res)
		if res.Status != "ok" {
			report.Healthy = false
		}
		if res.ObservedChainID != 0 && res.ObservedChainID != res.ExpectedChainID {
			report.Mismatches = append(report.Mismatches, net.Key)
		}
	}
	return report
}

func printReport(w io.Writer, report models.TestReport) {
	fmt.Fprintf(w, "Testing configuration at: %s\n", report.ConfigPath)
	for _, r := range report.Endpoints {
		fmt.Fprintf(w, "  %s: %s ... ", r.Network, r.URL)
		if r.Status != "ok" {
			fmt.Fprintf(w, "Failed: %s\n", r.Error)
			continue
		}
		fmt.Fprintf(w, "OK (ChainID: %d, %dms) - Verified\n", r.ObservedChainID, r.LatencyMillis)
	}
	if len(report.Mismatches) > 0 {
		fmt.Fprintln(w, "\nWARNING: Chain ID mismatch detected!")
		for _, key := range report.Mismatches {
			fmt.Fprintf(w, " - %s\n", key)
		}
	}
	if report.Healthy {
		fmt.Fprintln(w, "All endpoints healthy.")
	}
}
