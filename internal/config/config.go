package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Store manages the runtime configuration shared by the client and the server.
type Store struct {
	path   string
	Config Data
}

// Data represents persisted settings.
type Data struct {
	Name           string   `json:"name"`
	ServerURL      string   `json:"server_url"`
	ListenAddr     string   `json:"listen_addr"`
	DBPath         string   `json:"db_path"`
	DownloadDir    string   `json:"download_dir"`
	RequestTimeout Duration `json:"request_timeout"`
	PopupLock      Duration `json:"popup_lock"`
}

const (
	defaultServerURL  = "http://127.0.0.1:8080"
	defaultListenAddr = "127.0.0.1:8080"
	defaultTimeout    = 10 * time.Second
	defaultPopupLock  = 300 * time.Millisecond
)

// Load retrieves the config from the default location, creating it with
// defaults if needed.
func Load() (*Store, error) {
	cfgPath, err := resolvePath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(cfgPath)
}

// LoadFrom is Load with an explicit file path.
func LoadFrom(cfgPath string) (*Store, error) {
	cfg := Data{}
	if _, err := os.Stat(cfgPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
		cfg = defaultConfig(filepath.Dir(cfgPath))
		if err := writeConfig(cfgPath, cfg); err != nil {
			return nil, err
		}
	} else {
		bytes, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(bytes, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	fillDefaults(&cfg, filepath.Dir(cfgPath))

	return &Store{path: cfgPath, Config: cfg}, nil
}

// Path returns the config file location.
func (s *Store) Path() string { return s.path }

// Dir returns the directory holding the config file; logs live next to it.
func (s *Store) Dir() string { return filepath.Dir(s.path) }

// Save writes the current config values to disk.
func (s *Store) Save() error {
	if s == nil {
		return errors.New("nil config store")
	}
	return writeConfig(s.path, s.Config)
}

func resolvePath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = os.Getenv("HOME")
		if base == "" {
			return "", fmt.Errorf("cannot resolve config directory: %w", err)
		}
	}
	return filepath.Join(base, "acctdesk", "config.json"), nil
}

func writeConfig(path string, cfg Data) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	bytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, bytes, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func defaultConfig(dir string) Data {
	cfg := Data{}
	fillDefaults(&cfg, dir)
	return cfg
}

func fillDefaults(cfg *Data, dir string) {
	if cfg.Name == "" {
		cfg.Name = defaultName()
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dir, "accounts.db")
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = defaultDownloadDir(dir)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = Duration(defaultTimeout)
	}
	if cfg.PopupLock <= 0 {
		cfg.PopupLock = Duration(defaultPopupLock)
	}
}

func defaultName() string {
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	if runtime.GOOS == "windows" {
		if name := os.Getenv("USERNAME"); name != "" {
			return name
		}
	}
	return "Account Desk User"
}

func defaultDownloadDir(fallback string) string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, "Downloads")
	}
	return filepath.Join(fallback, "downloads")
}
