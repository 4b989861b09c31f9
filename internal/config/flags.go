package config

import (
	"flag"
	"fmt"
	"time"
)

// ApplyFlags overlays command-line flags on the loaded values. Flags that
// are not given keep the file's values. Nothing is persisted.
//
//	-server string      backend base URL
//	-addr string        server listen address
//	-db string          SQLite database path
//	-downloads string   export destination directory
//	-timeout duration   per-request timeout
func (s *Store) ApplyFlags(name string, args []string) error {
	cfg := &s.Config
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "backend base URL")
	fs.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "address the server listens on")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.DownloadDir, "downloads", cfg.DownloadDir, "directory exports are saved to")
	timeout := fs.Duration("timeout", cfg.RequestTimeout.Std(), "request timeout")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if *timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", *timeout)
	}
	cfg.RequestTimeout = Duration(*timeout)
	return nil
}

// Timeout returns the request timeout.
func (s *Store) Timeout() time.Duration { return s.Config.RequestTimeout.Std() }
