package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/regisync/regisync/internal/shared"
)

// ErrUnsupportedFormat is returned for feed files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported feed file format")

// FileSource reads the feed from a local .csv or .xlsx file, which is
// handy in development and for offline re-syncs from a downloaded export.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) FetchRows(ctx context.Context) ([][]string, error) {

	payload, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}

	switch ext := strings.ToLower(filepath.Ext(s.path)); ext {
	case ".csv":
		rows, err := parseCSV(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
		}
		return rows, nil
	case ".xlsx":
		rows, err := parseExcel(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseExcel(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	return rows, nil
}
