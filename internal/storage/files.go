package storage

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Format is an account file format used for export and upload.
type Format string

const (
	FormatTXT  Format = "txt"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

const txtIndent = "    "

// ErrUnsupportedFormat is returned for file types the store cannot read or write.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTXT, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromFilename picks the format by file extension.
func FormatFromFilename(name string) (Format, error) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	return ParseFormat(name[i+1:])
}

// ImportResult summarizes an import operation.
type ImportResult struct {
	Created int
	Skipped int
	Errors  []string
}

// ImportAccounts parses r in the given format and creates every account it
// holds. Duplicates and nameless entries are skipped and reported.
func (s *Store) ImportAccounts(ctx context.Context, format Format, r io.Reader) (ImportResult, error) {
	result := ImportResult{}
	accounts, err := ReadAccounts(format, r)
	if err != nil {
		return result, err
	}
	for i, account := range accounts {
		if err := s.Create(ctx, &account); err != nil {
			result.Skipped++
			if errors.Is(err, ErrAccountExists) {
				result.Errors = append(result.Errors, fmt.Sprintf("entry %d: duplicate account '%s'", i+1, account.Name))
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d: %v", i+1, err))
			continue
		}
		result.Created++
	}
	return result, nil
}

// ReadAccounts decodes an account file.
func ReadAccounts(format Format, r io.Reader) ([]Account, error) {
	switch format {
	case FormatTXT:
		return readTXT(r)
	case FormatJSON:
		return readJSON(r)
	case FormatCSV:
		return readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteAccounts encodes accounts in the given format.
func WriteAccounts(w io.Writer, format Format, accounts []Account) error {
	switch format {
	case FormatTXT:
		return writeTXT(w, accounts)
	case FormatJSON:
		return writeJSON(w, accounts)
	case FormatCSV:
		return writeCSV(w, accounts)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// The text format is
//
//	Name: <name>
//	    <Key>:
//	        <value>
//
// repeated per account. Blank lines are ignored on read.
func writeTXT(w io.Writer, accounts []Account) error {
	bw := bufio.NewWriter(w)
	for _, a := range accounts {
		fmt.Fprintf(bw, "Name: %s\n", a.Name)
		for _, key := range sortedKeys(a.Data) {
			fmt.Fprintf(bw, "%s%s:\n%s%s\n", txtIndent, capitalize(key), txtIndent+txtIndent, deref(a.Data[key]))
		}
	}
	return bw.Flush()
}

// readTXT tells keys from values by indentation: a value line is indented
// twice, a key line once. A key followed by another key or a blank value
// line reads as nil.
func readTXT(r io.Reader) ([]Account, error) {
	var (
		accounts []Account
		current  *Account
		key      string
		haveKey  bool
	)
	setValue := func(v string) {
		if v == "" {
			current.Data[key] = nil
		} else {
			current.Data[key] = &v
		}
		haveKey = false
	}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Text()
		text := strings.TrimSpace(raw)
		if strings.HasPrefix(raw, "Name:") {
			if current != nil {
				if haveKey {
					setValue("")
				}
				accounts = append(accounts, *current)
			}
			current = &Account{Name: strings.TrimSpace(raw[len("Name:"):]), Data: map[string]*string{}}
			haveKey = false
			continue
		}
		valueLine := strings.HasPrefix(raw, txtIndent+txtIndent) || strings.HasPrefix(raw, "\t\t")
		if text == "" && !(valueLine && haveKey) {
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("line %d: detail before any Name line", line)
		}
		switch {
		case haveKey && (valueLine || !strings.HasSuffix(text, ":")):
			setValue(text)
		default:
			if haveKey {
				setValue("")
			}
			key = strings.TrimSuffix(text, ":")
			haveKey = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read txt: %w", err)
	}
	if current != nil {
		if haveKey {
			setValue("")
		}
		accounts = append(accounts, *current)
	}
	return accounts, nil
}

type fileAccount struct {
	Name string             `json:"name"`
	Data map[string]*string `json:"data"`
}

func writeJSON(w io.Writer, accounts []Account) error {
	out := make([]fileAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, fileAccount{Name: a.Name, Data: a.Data})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", txtIndent)
	return enc.Encode(out)
}

func readJSON(r io.Reader) ([]Account, error) {
	var in []fileAccount
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	accounts := make([]Account, 0, len(in))
	for _, a := range in {
		accounts = append(accounts, Account{Name: a.Name, Data: a.Data})
	}
	return accounts, nil
}

// CSV files carry a name column; every other column becomes a detail key.
func writeCSV(w io.Writer, accounts []Account) error {
	keySet := map[string]*string{}
	for _, a := range accounts {
		for k := range a.Data {
			keySet[k] = nil
		}
	}
	keys := sortedKeys(keySet)

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"name"}, keys...)); err != nil {
		return err
	}
	for _, a := range accounts {
		record := []string{a.Name}
		for _, k := range keys {
			record = append(record, deref(a.Data[k]))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readCSV(r io.Reader) ([]Account, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	nameIdx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "name") {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("csv missing 'name' column")
	}

	var accounts []Account
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if nameIdx >= len(record) {
			continue
		}
		a := Account{Name: strings.TrimSpace(record[nameIdx]), Data: map[string]*string{}}
		for i, h := range header {
			key := strings.TrimSpace(h)
			if i == nameIdx || key == "" || i >= len(record) {
				continue
			}
			if v := strings.TrimSpace(record[i]); v != "" {
				a.Data[key] = &v
			}
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func sortedKeys(m map[string]*string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
