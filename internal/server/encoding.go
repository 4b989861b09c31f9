package server

import (
	"io"
	"net/http"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"acctdesk/internal/storage"
)

// fileEncoding is the charset of exported and uploaded files. Windows clients
// get windows-1251, everyone else UTF-8.
type fileEncoding struct {
	name string
	enc  encoding.Encoding
}

var (
	utf8Files    = fileEncoding{name: "utf-8"}
	windowsFiles = fileEncoding{name: "windows-1251", enc: charmap.Windows1251}
)

// encodingFor matches "win" in any case. Darwin user agents are not Windows.
func encodingFor(r *http.Request) fileEncoding {
	ua := strings.ReplaceAll(strings.ToLower(r.UserAgent()), "darwin", "")
	if strings.Contains(ua, "win") {
		return windowsFiles
	}
	return utf8Files
}

func (e fileEncoding) encode(b []byte) ([]byte, error) {
	if e.enc == nil {
		return b, nil
	}
	return e.enc.NewEncoder().Bytes(b)
}

// decoder wraps r for reading. JSON uploads are always UTF-8.
func (e fileEncoding) decoder(format storage.Format, r io.Reader) io.Reader {
	if e.enc == nil || format == storage.FormatJSON {
		return r
	}
	return e.enc.NewDecoder().Reader(r)
}
