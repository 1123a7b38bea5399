// Package export renders a month of travel entries into the fixed-layout
// mileage spreadsheet used for expense reporting.
//
// The template is an xlsx workbook whose first worksheet (or "Sheet1") has
// the traveler's name in B1 and a 29-row data block at A4:D32 with columns
// date, trip description, miles and business purpose.
package export

import (
	"bytes"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/mileage-log/internal/domain"
)

// Layout describes where the exporter writes inside the template.
type Layout struct {
	// Sheet is the preferred worksheet name; the first sheet is used when the
	// workbook has no sheet with this name.
	Sheet    string
	NameCell string
	// FirstRow and LastRow bound the data block, 1-indexed and inclusive.
	FirstRow int
	LastRow  int
}

// DefaultLayout matches the mileage template.
var DefaultLayout = Layout{
	Sheet:    "Sheet1",
	NameCell: "B1",
	FirstRow: 4,
	LastRow:  32,
}

// Capacity is the number of entry rows the data block holds.
func (l Layout) Capacity() int {
	return l.LastRow - l.FirstRow + 1
}

// Data block columns, 1-indexed.
const (
	colDate = iota + 1
	colTrip
	colMiles
	colPurpose
)

const (
	dateFormat  = "mm/dd/yyyy"
	milesFormat = "0.0"
)

// Exporter fills a copy of the template for every export. It keeps only the
// template bytes, so one Exporter can serve concurrent requests.
type Exporter struct {
	template []byte
	layout   Layout
}

// New returns an Exporter using DefaultLayout.
func New(template []byte) *Exporter {
	return NewWithLayout(template, DefaultLayout)
}

// NewWithLayout returns an Exporter for a template with a custom layout.
func NewWithLayout(template []byte, layout Layout) *Exporter {
	return &Exporter{template: template, layout: layout}
}

// Layout returns the exporter's layout.
func (x *Exporter) Layout() Layout { return x.layout }

// Export writes displayName and the ordered entries into a fresh copy of the
// template and returns the serialized workbook with its download filename.
//
// The data block is always cleared first. More entries than the block holds
// yields domain.ErrCapacityExceeded and nothing is serialized. Template and
// serialization failures wrap domain.ErrExport.
func (x *Exporter) Export(entries []domain.TravelEntry, displayName, month string) (domain.ExportArtifact, error) {
	f, err := excelize.OpenReader(bytes.NewReader(x.template))
	if err != nil {
		return domain.ExportArtifact{}, fmt.Errorf("export.Exporter.Export: %w: open template: %w", domain.ErrExport, err)
	}
	defer f.Close()

	sheet, err := x.pickSheet(f)
	if err != nil {
		return domain.ExportArtifact{}, fmt.Errorf("export.Exporter.Export: %w", err)
	}

	if err := f.SetCellStr(sheet, x.layout.NameCell, displayName); err != nil {
		return domain.ExportArtifact{}, fmt.Errorf("export.Exporter.Export: %w: name cell: %w", domain.ErrExport, err)
	}
	if err := x.clear(f, sheet); err != nil {
		return domain.ExportArtifact{}, fmt.Errorf("export.Exporter.Export: %w: clear: %w", domain.ErrExport, err)
	}

	if capacity := x.layout.Capacity(); len(entries) > capacity {
		return domain.ExportArtifact{}, fmt.Errorf(
			"export.Exporter.Export: %w: %d entries, the template holds %d rows (A%d:D%d)",
			domain.ErrCapacityExceeded, len(entries), capacity, x.layout.FirstRow, x.layout.LastRow)
	}

	if err := x.fill(f, sheet, entries); err != nil {
		return domain.ExportArtifact{}, fmt.Errorf("export.Exporter.Export: %w: write rows: %w", domain.ErrExport, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return domain.ExportArtifact{}, fmt.Errorf("export.Exporter.Export: %w: serialize: %w", domain.ErrExport, err)
	}

	return domain.ExportArtifact{
		Filename:    BuildFilename(displayName, month),
		ContentType: domain.XLSXContentType,
		Content:     buf.Bytes(),
	}, nil
}

func (x *Exporter) pickSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("%w: template worksheet not found", domain.ErrExport)
	}
	for _, name := range sheets {
		if name == x.layout.Sheet {
			return name, nil
		}
	}
	return sheets[0], nil
}

// clear empties the four data columns of every row in the data block.
func (x *Exporter) clear(f *excelize.File, sheet string) error {
	for row := x.layout.FirstRow; row <= x.layout.LastRow; row++ {
		for col := colDate; col <= colPurpose; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			if err := f.SetCellDefault(sheet, cell, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

// fill writes one entry per row starting at the first data row.
func (x *Exporter) fill(f *excelize.File, sheet string, entries []domain.TravelEntry) error {
	if len(entries) == 0 {
		return nil
	}

	dateFmt, milesFmt := dateFormat, milesFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return err
	}
	milesStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &milesFmt})
	if err != nil {
		return err
	}

	for i, e := range entries {
		row := x.layout.FirstRow + i
		cells := make([]string, colPurpose+1)
		for col := colDate; col <= colPurpose; col++ {
			if cells[col], err = excelize.CoordinatesToCellName(col, row); err != nil {
				return err
			}
		}

		if err := f.SetCellValue(sheet, cells[colDate], e.EntryDate); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cells[colDate], cells[colDate], dateStyle); err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cells[colTrip], e.Trip); err != nil {
			return err
		}
		if err := f.SetCellFloat(sheet, cells[colMiles], e.Miles, 1, 64); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cells[colMiles], cells[colMiles], milesStyle); err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cells[colPurpose], e.Purpose); err != nil {
			return err
		}
	}
	return nil
}

// LoadTemplate reads an xlsx template from path and checks that it opens
// and has at least one worksheet.
func LoadTemplate(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("export.LoadTemplate: %w: %w", domain.ErrExport, err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("export.LoadTemplate: %w: %s: %w", domain.ErrExport, path, err)
	}
	defer f.Close()
	if len(f.GetSheetList()) == 0 {
		return nil, fmt.Errorf("export.LoadTemplate: %w: %s has no worksheets", domain.ErrExport, path)
	}
	return b, nil
}
