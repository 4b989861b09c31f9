package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"acctdesk/internal/config"
	"acctdesk/internal/logging"
	"acctdesk/internal/transport"
	"acctdesk/internal/ui"
)

func main() {
	ctx := context.Background()

	cfgStore, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfgStore.ApplyFlags("acctdesk", os.Args[1:]); err != nil {
		log.Fatalf("flags: %v", err)
	}

	logger, closer, err := logging.OpenFile(filepath.Join(cfgStore.Dir(), "acctdesk.log"), slog.LevelInfo)
	if err != nil {
		log.Fatalf("open log: %v", err)
	}
	defer closer.Close()

	tr, err := transport.NewHTTP(cfgStore.Config.ServerURL, cfgStore.Timeout(), logger)
	if err != nil {
		log.Fatalf("transport: %v", err)
	}
	tr.WithUserAgent(userAgent())

	program := ui.NewProgram(ctx, tr, cfgStore, logger)
	if err := program.Run(); err != nil {
		log.Println("program terminated:", err)
		os.Exit(1)
	}
}

// userAgent names the platform so the server can pick a file encoding.
func userAgent() string {
	platform := runtime.GOOS
	if platform == "windows" {
		platform = "Windows"
	}
	return fmt.Sprintf("acctdesk/1.0 (%s)", platform)
}
