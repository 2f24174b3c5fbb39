package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"dashboard-service/internal/domain"
)

// Encoding selects the character set of a CSV download.
type Encoding string

const (
	EncodingUTF8    Encoding = "utf8"
	EncodingCP1252  Encoding = "cp1252"
	DefaultEncoding          = EncodingUTF8
)

// ParseEncoding maps a query value to an Encoding. Empty selects the default.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultEncoding, nil
	case "utf8", "utf-8":
		return EncodingUTF8, nil
	case "cp1252", "windows-1252", "latin1":
		return EncodingCP1252, nil
	}
	return "", fmt.Errorf("codificación no soportada: %q", s)
}

// WriteCSV writes every column and record of set. Characters outside
// Windows-1252 are replaced, not rejected.
func WriteCSV(w io.Writer, set *domain.RecordSet, enc Encoding) error {
	if set == nil {
		return domain.ErrNoWorkbook
	}

	var out io.Writer = w
	var closer io.Closer
	switch enc {
	case EncodingUTF8:
	case EncodingCP1252:
		tw := transform.NewWriter(w, encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()))
		out, closer = tw, tw
	default:
		return fmt.Errorf("codificación no soportada: %q", enc)
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(set.Columns); err != nil {
		return err
	}
	row := make([]string, len(set.Columns))
	for _, r := range set.Records {
		for i, c := range set.Columns {
			row[i] = domain.FormatValue(r.Get(c))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	if closer != nil {
		return closer.Close()
	}
	return nil
}
