// Package sync reconciles the external registration feed against the local
// participant registry: it normalizes raw rows, resolves identity by email,
// applies create/update decisions row by row, and reports an aggregate
// summary. One bad row never aborts a batch.
package sync

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Rejection reasons for rows the normalizer cannot turn into a candidate.
var (
	ErrInsufficientColumns  = errors.New("insufficient columns")
	ErrUnparseableTimestamp = errors.New("unparseable timestamp")
)

// Accepted registration timestamp layouts, tried in order. The feed is a
// human-edited spreadsheet export, so both the US form export format and
// the ISO-ish one appear in the wild.
var timeLayouts = []string{
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
}

// CandidateRecord is a normalized, not-yet-persisted representation of one
// feed row. FieldsByHeader is the verbatim audit snapshot, cells keyed by
// their trimmed header label.
type CandidateRecord struct {
	RegisteredAt   time.Time
	FullName       string
	Email          string
	Phone          string
	FieldsByHeader map[string]string
}

// TrimHeaders returns the header labels with surrounding whitespace removed.
func TrimHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

// NormalizeRow validates one data row against the feed's positional
// contract: timestamp, name, and email at cells 0..2, phone optionally at
// cell 3. It is a pure transformation; no lookups, no side effects.
//
// The positional contract is inherited from the upstream form and is
// fragile against column reordering; the header-keyed snapshot is kept so
// every cell survives for later auditing regardless of position.
func NormalizeRow(headers []string, row []string) (*CandidateRecord, error) {

	if len(row) < 3 {
		return nil, fmt.Errorf("%w: got %d cells, need at least 3", ErrInsufficientColumns, len(row))
	}

	registeredAt, err := parseTimestamp(row[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnparseableTimestamp, row[0])
	}

	cand := &CandidateRecord{
		RegisteredAt:   registeredAt,
		FullName:       row[1],
		Email:          strings.TrimSpace(row[2]),
		FieldsByHeader: zipRow(headers, row),
	}
	if len(row) > 3 {
		cand.Phone = row[3]
	}

	return cand, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.New("unrecognized timestamp format")
}

func zipRow(headers []string, row []string) map[string]string {
	fields := make(map[string]string, len(headers))
	for i, header := range headers {
		if i >= len(row) {
			break
		}
		fields[header] = row[i]
	}
	return fields
}
