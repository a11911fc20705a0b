package snapshot

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyInput means the snapshot command produced no text at all.
	ErrEmptyInput = errors.New("snapshot output is empty")
	// ErrNoRecords means a header parsed but no data rows followed.
	ErrNoRecords = errors.New("no usable data in snapshot output")
)

// Record is one open-file entry, keyed by the column labels the
// snapshot command emitted (e.g. USER, CMD, PID, FD, R/W, MOUNT).
type Record map[string]string

// Parse turns raw tabular output into ordered records. The first line
// is the header; fields are separated by runs of whitespace. Rows
// shorter than the header pad the missing trailing columns with "",
// extra trailing values are dropped, and blank lines are skipped.
func Parse(raw []byte) ([]Record, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, ErrEmptyInput
	}

	lines := strings.Split(text, "\n")
	labels := strings.Fields(lines[0])

	var records []Record
	for _, line := range lines[1:] {
		values := strings.Fields(line)
		if len(values) == 0 {
			continue
		}
		rec := make(Record, len(labels))
		for i, label := range labels {
			if i < len(values) {
				rec[label] = values[i]
			} else {
				rec[label] = ""
			}
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}
