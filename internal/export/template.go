package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/mileage-log/internal/domain"
)

// DefaultTemplate builds the stock mileage template: one "Sheet1" worksheet
// with column headers in row 3, panes frozen below them, and the data block
// starting at row 4. It is used when no TEMPLATE_PATH is configured and by
// cmd/template to write the file to disk.
func DefaultTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := DefaultLayout.Sheet
	if name := f.GetSheetName(0); name != sheet {
		if err := f.SetSheetName(name, sheet); err != nil {
			return nil, fmt.Errorf("export.DefaultTemplate: %w: %w", domain.ErrExport, err)
		}
	}

	widths := map[string]float64{"A": 15, "B": 40, "C": 12, "D": 50}
	for col, w := range widths {
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, fmt.Errorf("export.DefaultTemplate: %w: %w", domain.ErrExport, err)
		}
	}

	headers := []string{"Date", "Trip Description", "Miles", "Business Purpose (required)"}
	headerRow := DefaultLayout.FirstRow - 1
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, fmt.Errorf("export.DefaultTemplate: %w: %w", domain.ErrExport, err)
		}
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("export.DefaultTemplate: %w: %w", domain.ErrExport, err)
		}
	}
	if err := f.SetCellStr(sheet, "A1", "Name"); err != nil {
		return nil, fmt.Errorf("export.DefaultTemplate: %w: %w", domain.ErrExport, err)
	}

	topLeft, _ := excelize.CoordinatesToCellName(1, DefaultLayout.FirstRow)
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: topLeft,
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("export.DefaultTemplate: %w: %w", domain.ErrExport, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export.DefaultTemplate: %w: %w", domain.ErrExport, err)
	}
	return buf.Bytes(), nil
}
