// Package export serializes collected responses into a flat CSV
// download.
package export

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/quickform/quickform/model"
)

const timeLayout = "2006-01-02 15:04:05"

// CSV flattens responses into tabular text. "Submitted At" is always
// the first column; the rest are the union of answer labels actually
// present across the records, in first-seen order. A field nobody
// answered produces no column. Cells with no answer stay empty; file
// answers render as their URL; multi-choice answers join with "; ".
// Quoting and escaping follow standard CSV rules via encoding/csv.
func CSV(responses []model.Response) ([]byte, error) {
	header := []string{"Submitted At"}
	seen := map[string]bool{}
	for _, r := range responses {
		for _, a := range r.Responses {
			if !seen[a.Label] {
				seen[a.Label] = true
				header = append(header, a.Label)
			}
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	err := w.Write(header)
	if err != nil {
		return nil, err
	}

	for _, r := range responses {
		cells := make(map[string]string, len(r.Responses))
		for _, a := range r.Responses {
			cells[a.Label] = a.Value.String()
		}

		row := make([]string, len(header))
		row[0] = r.CreatedAt.UTC().Format(timeLayout)
		for i, label := range header[1:] {
			row[i+1] = cells[label]
		}

		err = w.Write(row)
		if err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// Filename names a download uniquely across repeated exports.
func Filename(now time.Time) string {
	return "form-responses-" + now.UTC().Format("2006-01-02T15-04-05Z") + ".csv"
}
