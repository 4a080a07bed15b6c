package qcew

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// DecodeReader wraps r so its bytes are transcoded from the named encoding
// to UTF-8. An empty name or any UTF-8 spelling returns r unchanged. Agency
// extracts still ship as latin-1 or windows-1252 often enough that the
// readers take the encoding as an option.
func DecodeReader(r io.Reader, encoding string) (io.Reader, error) {
	name := strings.TrimSpace(strings.ToLower(encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		return r, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, eris.Wrapf(err, "qcew: unsupported encoding %q", encoding)
	}
	return enc.NewDecoder().Reader(r), nil
}
