package export_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acctdesk/internal/account"
	"acctdesk/internal/element"
	"acctdesk/internal/export"
	"acctdesk/internal/logging"
	"acctdesk/internal/page"
	"acctdesk/internal/transport/transporttest"
)

type alerts struct{ msgs []string }

func (a *alerts) Alert(msg string) { a.msgs = append(a.msgs, msg) }

func records() *page.Page {
	return page.Render([]page.Record{{ID: 3, Name: "a"}, {ID: 5, Name: "b"}, {ID: 9, Name: "c"}})
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, export.JSON, f)
	assert.Equal(t, "Accounts.json", f.Filename())

	_, err = export.ParseFormat("xml")
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)
}

func TestExport_SavesFile(t *testing.T) {
	p := records()
	element.Hide(p.Results.QueryAll("."+account.BaseClass)[1], true)

	fake := transporttest.OK("Name: a\n")
	dir := t.TempDir()
	al := &alerts{}
	ex := export.New(p.Results, fake, dir, al, logging.Nop())

	assert.Equal(t, []int64{3, 9}, ex.IDs(), "hidden records are not exported")

	path, err := ex.Export(context.Background(), export.TXT)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Accounts.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Name: a\n", string(data))

	require.Len(t, fake.Calls, 1)
	call := fake.Calls[0]
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/accounts/export", call.Path)
	assert.Equal(t, []int64{3, 9}, exportedIDs(t, call.Payload))
	assert.Empty(t, al.msgs)
}

func TestExport_FailureAlertsAndSavesNothing(t *testing.T) {
	dir := t.TempDir()
	al := &alerts{}
	ex := export.New(records().Results, transporttest.Failing(http.StatusBadRequest), dir, al, logging.Nop())

	_, err := ex.Export(context.Background(), export.JSON)
	require.Error(t, err)
	assert.Equal(t, []string{"Export failed"}, al.msgs)
	_, statErr := os.Stat(filepath.Join(dir, "Accounts.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExport_NothingToExport(t *testing.T) {
	fake := transporttest.OK("")
	ex := export.New(page.Render(nil).Results, fake, t.TempDir(), nil, logging.Nop())

	_, err := ex.Export(context.Background(), export.CSV)
	assert.ErrorIs(t, err, export.ErrNothingToExport)
	assert.Empty(t, fake.Calls)
}

func TestBinder_RecordButtonsExportOneRecord(t *testing.T) {
	p := records()
	fake := transporttest.OK("[]")
	dir := t.TempDir()
	_, err := account.NewRegistry(context.Background(), p.Root, account.Deps{
		Transport:   fake,
		Log:         logging.Nop(),
		RowTemplate: p.RowTemplate,
		NewExporter: export.Binder(fake, dir, nil, logging.Nop()),
	})
	require.NoError(t, err)

	second := p.Results.QueryAll("." + account.BaseClass)[1]
	second.Query("." + account.ExportJSONClass).Dispatch(element.Click)

	require.Len(t, fake.Calls, 1)
	assert.Equal(t, []int64{5}, exportedIDs(t, fake.Calls[0].Payload))
	assert.FileExists(t, filepath.Join(dir, "Accounts.json"))
}

func TestUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.txt")
	require.NoError(t, os.WriteFile(path, []byte("Name: Bob\n"), 0o600))

	fake := &transporttest.Fake{Status: http.StatusCreated, Body: []byte(`{"created_accounts":2}`)}
	al := &alerts{}
	n, err := export.NewUploader(fake, al, logging.Nop()).Upload(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"Uploaded accounts: 2"}, al.msgs)
	require.Len(t, fake.Calls, 1)
	assert.Equal(t, "/accounts/upload", fake.Calls[0].Path)
	assert.Equal(t, "file", fake.Calls[0].Field)
	assert.Equal(t, "accounts.txt", fake.Calls[0].Filename)
	assert.Equal(t, "Name: Bob\n", string(fake.Calls[0].Data))
}

func TestUpload_Failures(t *testing.T) {
	al := &alerts{}
	up := export.NewUploader(&transporttest.Fake{
		Status: http.StatusBadRequest,
		Body:   []byte(`{"error_message":"unsupported file type"}`),
	}, al, logging.Nop())

	path := filepath.Join(t.TempDir(), "accounts.doc")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	_, err := up.Upload(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = up.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
	assert.Len(t, al.msgs, 2)
}
