package feed

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// parseCSV decodes the payload into rows. Spreadsheet exports routinely
// carry a UTF-8 BOM and rows of varying width, so both are tolerated.
func parseCSV(payload []byte) ([][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	return records, nil
}
