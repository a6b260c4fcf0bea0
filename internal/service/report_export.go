package service

import (
	"bytes"
	"context"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/Shreehari27/Asset-Management/pkg/apperror"
)

// XLSXContentType is the media type of report downloads
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const oldAssetYears = 3

type column struct {
	header string
	width  float64
}

// sheet is a single-worksheet workbook with a bold header row
type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func newSheet(name string, columns []column) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, err
	}

	headers := make([]interface{}, len(columns))
	for i, c := range columns {
		headers[i] = c.header
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(name, col, col, c.width); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetSheetRow(name, "A1", &headers); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
		f.Close()
		return nil, err
	}
	return &sheet{f: f, name: name, row: 1}, nil
}

func (s *sheet) add(values ...interface{}) (int, error) {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return 0, err
	}
	return s.row, s.f.SetSheetRow(s.name, cell, &values)
}

func (s *sheet) highlight(row, columns int, style int) error {
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(columns, row)
	return s.f.SetCellStyle(s.name, first, last, style)
}

func (s *sheet) bytes() ([]byte, error) {
	defer s.f.Close()
	var buf bytes.Buffer
	if _, err := s.f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportError(err error) error {
	return apperror.Wrap(err, apperror.KindInternal, "Failed to build spreadsheet")
}

// StockSummaryXLSX exports grouped stock counts, one row per status
func (s *ReportService) StockSummaryXLSX(ctx context.Context, r DateRange) ([]byte, error) {
	rows, err := s.stockGroups(ctx, r)
	if err != nil {
		return nil, err
	}

	sh, err := newSheet("Stock Summary", []column{
		{"Lot Number", 15}, {"Asset Type", 20}, {"Brand", 20},
		{"Model", 25}, {"Status", 15}, {"Count", 10},
	})
	if err != nil {
		return nil, exportError(err)
	}
	for _, g := range rows {
		if _, err := sh.add(g.LotNumber, g.AssetType, g.AssetBrand, g.ModelName, string(g.Status), g.Count); err != nil {
			sh.f.Close()
			return nil, exportError(err)
		}
	}
	b, err := sh.bytes()
	if err != nil {
		return nil, exportError(err)
	}
	return b, nil
}

// ReorderLevelXLSX exports the reorder level summary
func (s *ReportService) ReorderLevelXLSX(ctx context.Context, r DateRange) ([]byte, error) {
	summary, err := s.ReorderLevel(ctx, r)
	if err != nil {
		return nil, err
	}

	sh, err := newSheet("Reorder Level Summary", []column{
		{"Asset Type", 25}, {"Available", 12}, {"Ready To Be Assigned", 22}, {"Total In Hand", 15},
	})
	if err != nil {
		return nil, exportError(err)
	}
	for _, row := range summary.Summary {
		if _, err := sh.add(row.AssetType, row.Available, row.ReadyToBeAssigned, row.TotalInHand); err != nil {
			sh.f.Close()
			return nil, exportError(err)
		}
	}
	b, err := sh.bytes()
	if err != nil {
		return nil, exportError(err)
	}
	return b, nil
}

// LotLedgerXLSX exports counts per lot, with cables split by cable type
func (s *ReportService) LotLedgerXLSX(ctx context.Context, r DateRange) ([]byte, error) {
	groups, err := s.stockGroups(ctx, r)
	if err != nil {
		return nil, err
	}

	type key struct{ lot, kind, brand, model string }
	counts := map[key]int64{}
	var keys []key
	for _, g := range groups {
		if g.LotNumber == "" {
			continue
		}
		k := key{g.LotNumber, classifiedType(g), g.AssetBrand, g.ModelName}
		if _, ok := counts[k]; !ok {
			keys = append(keys, k)
		}
		counts[k] += g.Count
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.lot != b.lot {
			return a.lot < b.lot
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		if a.brand != b.brand {
			return a.brand < b.brand
		}
		return a.model < b.model
	})

	sh, err := newSheet("Lot Ledger Summary", []column{
		{"Lot Number", 18}, {"Asset Type / Cable Type", 25}, {"Brand", 20}, {"Model Name", 25}, {"Count", 10},
	})
	if err != nil {
		return nil, exportError(err)
	}
	for _, k := range keys {
		if _, err := sh.add(k.lot, k.kind, k.brand, k.model, counts[k]); err != nil {
			sh.f.Close()
			return nil, exportError(err)
		}
	}
	b, err := sh.bytes()
	if err != nil {
		return nil, exportError(err)
	}
	return b, nil
}

// AgeAnalysisXLSX exports asset ages, highlighting assets three years or older
func (s *ReportService) AgeAnalysisXLSX(ctx context.Context, r DateRange) ([]byte, error) {
	rows, err := s.AgeAnalysis(ctx, r)
	if err != nil {
		return nil, err
	}

	columns := []column{
		{"Lot Number", 15}, {"Asset Code", 18}, {"Asset Type", 22}, {"Brand", 18}, {"Model", 22},
		{"Purchase Date", 18}, {"Age (Days)", 15}, {"Age (Months)", 15}, {"Age (Years)", 15}, {"Status", 15},
	}
	sh, err := newSheet("Age Analysis", columns)
	if err != nil {
		return nil, exportError(err)
	}
	old, err := sh.f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFCDD2"}, Pattern: 1},
	})
	if err != nil {
		sh.f.Close()
		return nil, exportError(err)
	}

	for _, a := range rows {
		n, err := sh.add(a.LotNumber, a.AssetCode, a.AssetType, a.AssetBrand, a.ModelName,
			a.PurchaseDate.String(), a.AgeDays, a.AgeMonths, a.AgeYears, a.Status)
		if err == nil && a.AgeYears >= oldAssetYears {
			err = sh.highlight(n, len(columns), old)
		}
		if err != nil {
			sh.f.Close()
			return nil, exportError(err)
		}
	}
	b, err := sh.bytes()
	if err != nil {
		return nil, exportError(err)
	}
	return b, nil
}
