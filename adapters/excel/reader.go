package excel

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Read reads back a download written by Write
func Read(r io.Reader, format Format) ([][]string, error) {
	switch format {
	case FormatCSV:
		records, err := csv.NewReader(r).ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		return records, nil
	case FormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open XLSX: %w", err)
		}
		defer f.Close()

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("unsupported download format: %s", format)
}
