// Package export saves backend exports of rendered records and uploads
// account files to the backend.
package export

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"acctdesk/internal/account"
	"acctdesk/internal/element"
	"acctdesk/internal/logging"
	"acctdesk/internal/transport"
)

const (
	exportPath = "/accounts/export"

	exportFailedText = "Export failed"
)

var (
	// ErrNothingToExport is returned when the container holds no visible records.
	ErrNothingToExport = errors.New("nothing to export")
	// ErrUnsupportedFormat is returned for an unknown export type.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Format is an export type understood by the backend.
type Format string

const (
	TXT  Format = "txt"
	JSON Format = "json"
	CSV  Format = "csv"
)

// ParseFormat accepts the format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case TXT, JSON, CSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Filename is the name the export is saved under.
func (f Format) Filename() string { return "Accounts." + string(f) }

type request struct {
	IDs  []int64 `json:"accounts_ids"`
	Type Format  `json:"export_type"`
}

// Exporter exports every visible record rendered under its container.
type Exporter struct {
	container element.Element
	tr        transport.Transport
	dir       string
	notifier  account.Notifier
	log       logging.Logger
}

func New(container element.Element, tr transport.Transport, dir string, notifier account.Notifier, log logging.Logger) *Exporter {
	return &Exporter{container: container, tr: tr, dir: dir, notifier: notifier, log: log}
}

// Binder returns a factory that builds an Exporter per record base, for
// account.Deps.NewExporter.
func Binder(tr transport.Transport, dir string, notifier account.Notifier, log logging.Logger) func(element.Element) account.ExportBinder {
	return func(base element.Element) account.ExportBinder {
		return New(base, tr, dir, notifier, log)
	}
}

// BindButtons makes each button export in its format. Nil buttons are skipped.
func (e *Exporter) BindButtons(ctx context.Context, txt, json, csv element.Element) {
	for format, button := range map[Format]element.Element{TXT: txt, JSON: json, CSV: csv} {
		if button == nil {
			continue
		}
		button.Listen(element.Click, func(element.Event) {
			if _, err := e.Export(ctx, format); err != nil && !errors.Is(err, ErrNothingToExport) {
				e.log.Warn(ctx, "export", "format", format, "err", err)
			}
		})
	}
}

// IDs returns the ids of the visible records under the container in document
// order. Deleted records are hidden and therefore skipped.
func (e *Exporter) IDs() []int64 {
	if e.container == nil {
		return nil
	}
	var ids []int64
	for _, c := range e.container.QueryAll("." + account.ContainerClass) {
		if !element.Visible(c) {
			continue
		}
		id, err := account.ParseRecordID(c)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Export requests the export and writes it to the download directory,
// returning the saved path. Nothing is saved when the backend fails.
func (e *Exporter) Export(ctx context.Context, format Format) (string, error) {
	ids := e.IDs()
	if len(ids) == 0 {
		return "", ErrNothingToExport
	}
	resp, err := e.tr.Send(ctx, http.MethodPost, exportPath, request{IDs: ids, Type: format})
	if err := transport.Check(resp, err); err != nil {
		e.alert(exportFailedText)
		return "", fmt.Errorf("export %s: %w", format, err)
	}

	path := filepath.Join(e.dir, format.Filename())
	if err := save(path, resp.Body); err != nil {
		e.alert(exportFailedText)
		return "", err
	}
	e.log.Info(ctx, "export saved", "path", path, "accounts", len(ids))
	return path, nil
}

func (e *Exporter) alert(msg string) {
	if e.notifier != nil {
		e.notifier.Alert(msg)
	}
}

func save(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
