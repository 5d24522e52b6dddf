package service

import (
	"bytes"
	"fmt"
	"strings"

	"catalog-backend/internal/domains/entity/model"

	"github.com/xuri/excelize/v2"
)

// ExtractRows converts uploaded workbook bytes into the first worksheet's
// rows as flat column-to-value maps. Row 1 is the header; headers are trimmed
// and lowercased so all downstream matching is case-insensitive. Missing
// cells default to "". A sheet with no data rows yields an empty slice so
// the validator can report "no data rows" instead of this failing.
func ExtractRows(data []byte) (*model.SheetData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrWorkbookParse, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", model.ErrWorkbookParse)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrWorkbookParse, err)
	}

	sheet := &model.SheetData{}
	if len(rows) == 0 {
		return sheet, nil
	}

	for _, h := range rows[0] {
		sheet.Columns = append(sheet.Columns, strings.TrimSpace(strings.ToLower(h)))
	}

	for i, record := range rows[1:] {
		raw := model.RawRow{
			Index: i + 2, // sheet row number; header is row 1
			Cells: make(map[string]string, len(sheet.Columns)),
		}
		for j, col := range sheet.Columns {
			if col == "" {
				continue
			}
			if j < len(record) {
				raw.Cells[col] = strings.TrimSpace(record[j])
			} else {
				raw.Cells[col] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, raw)
	}

	return sheet, nil
}
