package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"acctdesk/internal/storage"
)

type errorBody struct {
	Message   string   `json:"error_message"`
	Locations []string `json:"error_locations,omitempty"`
}

type accountBody struct {
	ID   int64              `json:"id,omitempty"`
	Name string             `json:"name"`
	Data map[string]*string `json:"data"`
}

type exportBody struct {
	IDs  []int64 `json:"accounts_ids"`
	Type string  `json:"export_type"`
}

type uploadResult struct {
	Created int      `json:"created_accounts"`
	Skipped int      `json:"skipped_accounts"`
	Errors  []string `json:"errors,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]accountBody, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountBody{ID: a.ID, Name: a.Name, Data: a.Data})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body accountBody
	if !decode(w, r, &body) {
		return
	}
	a := &storage.Account{Name: body.Name, Data: body.Data}
	if err := s.store.Create(r.Context(), a); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountBody{ID: a.ID, Name: a.Name, Data: a.Data})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var body accountBody
	if !decode(w, r, &body) {
		return
	}
	if body.ID <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "account id required", "id")
		return
	}
	a := &storage.Account{ID: body.ID, Name: body.Name, Data: body.Data}
	if err := s.store.Update(r.Context(), a); err != nil {
		s.fail(w, r, err)
		return
	}
	stored, err := s.store.ByID(r.Context(), a.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accountBody{ID: stored.ID, Name: stored.Name, Data: stored.Data})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "malformed account id", "id")
		return
	}
	if err := s.store.SoftDelete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var body exportBody
	if !decode(w, r, &body) {
		return
	}
	format, err := storage.ParseFormat(body.Type)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "export_type")
		return
	}
	accounts, err := s.store.ByIDs(r.Context(), body.IDs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(accounts) == 0 {
		writeError(w, http.StatusNotFound, "Accounts not found", "accounts_ids")
		return
	}

	var buf bytes.Buffer
	if err := storage.WriteAccounts(&buf, format, accounts); err != nil {
		s.fail(w, r, err)
		return
	}
	enc := encodingFor(r)
	out, err := enc.encode(buf.Bytes())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.exported.WithLabelValues(string(format)).Add(float64(len(accounts)))

	filename := "Accounts." + string(format)
	w.Header().Set("Content-Type", contentType(format, enc.name))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required", "upload")
		return
	}
	defer file.Close()

	format, err := storage.FormatFromFilename(hdr.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file type: %q", hdr.Filename), "upload")
		return
	}
	res, err := s.store.ImportAccounts(r.Context(), format, encodingFor(r).decoder(format, file))
	if err != nil {
		s.log.Warn(r.Context(), "upload not recognized", "file", hdr.Filename, "err", err)
		writeError(w, http.StatusBadRequest, "Could not read the file", "upload")
		return
	}
	s.metrics.imported.Add(float64(res.Created))
	writeJSON(w, http.StatusOK, uploadResult{Created: res.Created, Skipped: res.Skipped, Errors: res.Errors})
}

// fail maps storage errors to statuses; anything unknown is a 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrAccountExists):
		writeError(w, http.StatusConflict, "Account already exists", "name")
	case errors.Is(err, storage.ErrInvalidAccount):
		writeError(w, http.StatusUnprocessableEntity, "Account name is required", "name")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Account not found", "id")
	default:
		s.log.Error(r.Context(), "request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body", "body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, locations ...string) {
	writeJSON(w, status, errorBody{Message: msg, Locations: locations})
}

func contentType(format storage.Format, charset string) string {
	switch format {
	case storage.FormatJSON:
		return "application/json; charset=" + charset
	case storage.FormatCSV:
		return "text/csv; charset=" + charset
	default:
		return "text/plain; charset=" + charset
	}
}
