package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/juju/loggo/v2"
	"github.com/mitchellh/go-homedir"

	"chaininsight/pkg/network"
)

const ConfigFileName = ".chaininsight.json"

const (
	DefaultAppName    = "Blockchain Insight (Built for Base)"
	DefaultAppLogoURL = "https://base.org/favicon.ico"
	DefaultLogLevel   = "<root>=INFO"
	DefaultLogFile    = "~/.chaininsight.log"
)

var log = loggo.GetLogger("chaininsight.config")

// AppIdentity is presented to the wallet when connecting.
type AppIdentity struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}

// Config holds application-wide settings.
type Config struct {
	App          AppIdentity       `json:"app"`
	WalletURL    string            `json:"wallet_url,omitempty"`
	RPCOverrides map[string]string `json:"rpc_overrides,omitempty"`
	StartNetwork string            `json:"start_network,omitempty"`
	LogLevel     string            `json:"log_level"`
	LogFile      string            `json:"log_file"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		App: AppIdentity{
			Name:    DefaultAppName,
			LogoURL: DefaultAppLogoURL,
		},
		StartNetwork: network.Default().Key,
		LogLevel:     DefaultLogLevel,
		LogFile:      DefaultLogFile,
	}
}

// Networks returns the registry with configured RPC overrides applied.
func (c Config) Networks() []network.Descriptor {
	nets := network.Networks()
	for i := range nets {
		nets[i] = nets[i].WithRPC(c.RPCOverrides[nets[i].Key])
	}
	return nets
}

// StartDescriptor resolves StartNetwork, falling back to the default network.
func (c Config) StartDescriptor() network.Descriptor {
	d, err := network.ByKey(c.StartNetwork)
	if err != nil {
		d = network.Default()
	}
	return d.WithRPC(c.RPCOverrides[d.Key])
}

func GetConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return homedir.Expand(customPath)
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

func LoadConfigFromFile(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Debugf("no config at %v, using defaults", path)
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}

func LoadConfig(r io.Reader) (Config, error) {
	var raw struct {
		App          *AppIdentity      `json:"app"`
		WalletURL    string            `json:"wallet_url"`
		RPCOverrides map[string]string `json:"rpc_overrides"`
		StartNetwork string            `json:"start_network"`
		LogLevel     *string           `json:"log_level"`
		LogFile      *string           `json:"log_file"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if raw.App != nil {
		if strings.TrimSpace(raw.App.Name) != "" {
			cfg.App.Name = raw.App.Name
		}
		if strings.TrimSpace(raw.App.LogoURL) != "" {
			cfg.App.LogoURL = raw.App.LogoURL
		}
	}
	cfg.WalletURL = strings.TrimSpace(raw.WalletURL)
	if raw.StartNetwork != "" {
		cfg.StartNetwork = raw.StartNetwork
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.LogFile != nil {
		cfg.LogFile = *raw.LogFile
	}

	if len(raw.RPCOverrides) > 0 {
		cfg.RPCOverrides = make(map[string]string, len(raw.RPCOverrides))
		for k, v := range raw.RPCOverrides {
			if _, err := network.ByKey(k); err != nil {
				return Config{}, fmt.Errorf("rpc_overrides: %w", err)
			}
			cfg.RPCOverrides[strings.ToLower(k)] = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that cannot be defaulted.
func (c Config) Validate() error {
	if _, err := network.ByKey(c.StartNetwork); err != nil {
		return fmt.Errorf("validation failed: start_network: %w", err)
	}
	if strings.TrimSpace(c.App.Name) == "" {
		return fmt.Errorf("validation failed: app name is empty")
	}
	for k, v := range c.RPCOverrides {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("validation failed: rpc override for %s is empty", k)
		}
	}
	return nil
}

func SaveConfig(cfg Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if len(data) == 0 {
		return fmt.Errorf("validation failed: encoded configuration is empty")
	}

	// Create a backup of the existing file
	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
		input, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read existing config for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to write backup config: %w", err)
		}
		log.Infof("backed up %v to %v", path, backupPath)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func RestoreLastBackup(configPath string) (string, error) {
	matches, err := filepath.Glob(configPath + ".*.bak")
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no backup files found")
	}
	sort.Strings(matches)
	lastBackup := matches[len(matches)-1]

	data, err := os.ReadFile(lastBackup)
	if err != nil {
		return "", err
	}
	if _, err := LoadConfig(strings.NewReader(string(data))); err != nil {
		return "", fmt.Errorf("backup %s is not a valid config: %w", lastBackup, err)
	}
	return lastBackup, os.WriteFile(configPath, data, 0644)
}
