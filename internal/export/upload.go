package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"acctdesk/internal/account"
	"acctdesk/internal/logging"
	"acctdesk/internal/transport"
)

const (
	uploadPath  = "/accounts/upload"
	uploadField = "file"
)

// Uploader sends account files to the backend for bulk creation.
type Uploader struct {
	tr       transport.Transport
	notifier account.Notifier
	log      logging.Logger
}

func NewUploader(tr transport.Transport, notifier account.Notifier, log logging.Logger) *Uploader {
	return &Uploader{tr: tr, notifier: notifier, log: log}
}

// Upload posts the file at path and returns how many accounts were created.
// The user is told the result either way.
func (u *Uploader) Upload(ctx context.Context, path string) (int, error) {
	n, err := u.upload(ctx, path)
	if err != nil {
		u.log.Warn(ctx, "upload failed", "path", path, "err", err)
		u.alert(fmt.Sprintf("Upload failed: %v", err))
		return 0, err
	}
	u.log.Info(ctx, "upload done", "path", path, "created", n)
	u.alert(fmt.Sprintf("Uploaded accounts: %d", n))
	return n, nil
}

func (u *Uploader) upload(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	resp, err := u.tr.SendMultipart(ctx, uploadPath, uploadField, filepath.Base(path), f)
	if err := transport.Check(resp, err); err != nil {
		if msg := resp.ErrorMessage(); msg != "" {
			return 0, fmt.Errorf("%s: %w", msg, err)
		}
		return 0, err
	}
	var body struct {
		Created int `json:"created_accounts"`
	}
	if err := resp.JSON(&body); err != nil {
		return 0, err
	}
	return body.Created, nil
}

func (u *Uploader) alert(msg string) {
	if u.notifier != nil {
		u.notifier.Alert(msg)
	}
}
