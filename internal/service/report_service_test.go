package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/Shreehari27/Asset-Management/internal/model"
	"github.com/Shreehari27/Asset-Management/pkg/apperror"
)

// seedInventory adds two lots of stock plus a laptop charger and a scrapped mouse
func seedInventory(t *testing.T, db *gorm.DB) {
	t.Helper()
	assets := NewAssetService(db, time.UTC)
	result := assets.Add(bg, []AddAssetInput{
		{AssetCode: "M1", SerialNumber: "S-M1", AssetType: "Monitor", AssetBrand: "Dell", ModelName: "P24", PurchaseDate: "2020-01-10"},
		{AssetCode: "M2", SerialNumber: "S-M2", AssetType: "Monitor", AssetBrand: "Dell", ModelName: "P24", PurchaseDate: "2020-01-10", Status: "ready_to_be_assigned"},
		{AssetCode: "L1", SerialNumber: "S-L1", AssetType: "Windows Laptop", AssetBrand: "Lenovo", ModelName: "T14", PurchaseDate: "2024-02-01", ChargerSerial: "S-L1-CH"},
		{AssetCode: "K1", SerialNumber: "S-K1", AssetType: "Mouse", AssetBrand: "Logitech", ModelName: "M90", PurchaseDate: "2024-02-01"},
		{AssetType: "Cables", CableType: "HDMI CABLE", PurchaseDate: "2024-02-01"},
	})
	require.Empty(t, result.Skipped)

	_, err := NewScrapService(db, time.UTC).Scrap(bg, ScrapInput{AssetCode: "K1", ScrapDate: "2024-05-01"}, "IT01")
	require.NoError(t, err)
}

func newReportService(db *gorm.DB) *ReportService {
	svc := NewReportService(db, time.UTC)
	svc.now = fixedClock("2024-06-01T00:00:00Z")
	return svc
}

func TestReport_Dashboard(t *testing.T) {
	db := newTestDB(t)
	seedEmployee(t, db, "E001", "Asha", false)
	seedInventory(t, db)

	stats, err := newReportService(db).Dashboard(bg)
	require.NoError(t, err)
	assert.EqualValues(t, 6, stats.TotalAssets)
	assert.EqualValues(t, 4, stats.AvailableAssets)
	assert.EqualValues(t, 1, stats.ReadyToBeAssigned)
	assert.EqualValues(t, 1, stats.ScrappedAssets)
	assert.EqualValues(t, 1, stats.TotalEmployees)

	assert.NotContains(t, stats.AssetTypeSummary, model.TypeCharger)
	require.Contains(t, stats.AssetTypeSummary, model.TypeMonitor)
	assert.EqualValues(t, 2, stats.AssetTypeSummary[model.TypeMonitor].Total)
	require.Contains(t, stats.CableTypeSummary, "HDMI CABLE")
	assert.EqualValues(t, 1, stats.CableTypeSummary["HDMI CABLE"].Available)
}

func TestReport_StockAndReorder(t *testing.T) {
	db := newTestDB(t)
	seedInventory(t, db)
	svc := newReportService(db)

	summary, err := svc.StockSummary(bg, DateRange{})
	require.NoError(t, err)
	monitors := summary.Summary["LT10JAN2020"][model.TypeMonitor]["Dell"]["P24"]
	require.NotNil(t, monitors)
	assert.EqualValues(t, 1, monitors.Available)
	assert.EqualValues(t, 1, monitors.ReadyToBeAssigned)
	assert.NotContains(t, summary.Summary["LT01FEB2024"], model.TypeCharger)

	from := mustDate(t, "2024-01-01")
	reorder, err := svc.ReorderLevel(bg, DateRange{From: &from})
	require.NoError(t, err)
	types := map[string]ReorderRow{}
	for _, r := range reorder.Summary {
		types[r.AssetType] = r
	}
	assert.NotContains(t, types, model.TypeMonitor)
	assert.EqualValues(t, 1, types[model.TypeWindowsLaptop].TotalInHand)
	assert.EqualValues(t, 0, types[model.TypeMouse].TotalInHand)
}

func TestReport_InventoryAndTally(t *testing.T) {
	db := newTestDB(t)
	seedInventory(t, db)
	seedAsset(t, db, "X1", model.TypeOthers, model.StatusAvailable)
	svc := newReportService(db)

	inv, err := svc.InventorySummary(bg)
	require.NoError(t, err)
	require.Len(t, inv.LotStatistics, 2)
	assert.Equal(t, "LT01FEB2024", inv.LotStatistics[0].LotNumber)
	assert.EqualValues(t, 3, inv.LotStatistics[0].TotalItems)
	require.Len(t, inv.CableSummaries, 1)
	assert.Equal(t, "HDMI CABLE", inv.CableSummaries[0].CableType)

	tally, err := svc.Tally(bg)
	require.NoError(t, err)
	assert.EqualValues(t, 6, tally.TotalAssets)
	assert.EqualValues(t, 5, tally.LotSum)
	assert.False(t, tally.Balanced)
}

func TestReport_Ledger(t *testing.T) {
	db := newTestDB(t)
	seedEmployee(t, db, "E001", "Asha", false)
	seedAsset(t, db, "M100", model.TypeMonitor, model.StatusAvailable)
	seedAsset(t, db, "M100-CH", model.TypeCharger, model.StatusAvailable)
	assignments := NewAssignmentService(db, time.UTC)

	require.True(t, assignments.Assign(bg, []AssignRequest{monitorRequest("M100", "E001", "2024-01-10")}, "IT01")[0].OK())
	_, err := assignments.Return(bg, "M100", ReturnInput{ReturnDate: "2024-02-01"}, "IT01")
	require.NoError(t, err)
	_, err = NewScrapService(db, time.UTC).Scrap(bg, ScrapInput{AssetCode: "M100", ScrapDate: "2024-03-01", ScrapReason: "dead"}, "IT01")
	require.NoError(t, err)

	svc := newReportService(db)
	ledger, err := svc.Ledger(bg, "M100")
	require.NoError(t, err)
	require.Len(t, ledger.Movements, 3)
	assert.Equal(t, "Assigned", ledger.Movements[0].Action)
	assert.Equal(t, "Returned", ledger.Movements[1].Action)
	assert.Equal(t, "Scrapped", ledger.Movements[2].Action)
	assert.Equal(t, "dead", ledger.Movements[2].Remark)

	_, err = svc.Ledger(bg, "M100-CH")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestReport_AgeAnalysis(t *testing.T) {
	db := newTestDB(t)
	seedInventory(t, db)
	svc := newReportService(db)

	rows, err := svc.AgeAnalysis(bg, DateRange{})
	require.NoError(t, err)
	codes := map[string]AgeRow{}
	for _, r := range rows {
		codes[r.AssetCode] = r
	}
	assert.NotContains(t, codes, "K1")
	assert.NotContains(t, codes, "L1-CH")
	require.Contains(t, codes, "M1")
	assert.Equal(t, 1604, codes["M1"].AgeDays)
	assert.Equal(t, 4.4, codes["M1"].AgeYears)
}

func TestReport_Exports(t *testing.T) {
	db := newTestDB(t)
	seedInventory(t, db)
	svc := newReportService(db)

	cases := []struct {
		sheet  string
		export func() ([]byte, error)
	}{
		{"Stock Summary", func() ([]byte, error) { return svc.StockSummaryXLSX(bg, DateRange{}) }},
		{"Reorder Level Summary", func() ([]byte, error) { return svc.ReorderLevelXLSX(bg, DateRange{}) }},
		{"Lot Ledger Summary", func() ([]byte, error) { return svc.LotLedgerXLSX(bg, DateRange{}) }},
		{"Age Analysis", func() ([]byte, error) { return svc.AgeAnalysisXLSX(bg, DateRange{}) }},
	}
	for _, tc := range cases {
		t.Run(tc.sheet, func(t *testing.T) {
			data, err := tc.export()
			require.NoError(t, err)

			f, err := excelize.OpenReader(bytes.NewReader(data))
			require.NoError(t, err)
			defer f.Close()

			rows, err := f.GetRows(tc.sheet)
			require.NoError(t, err)
			require.Greater(t, len(rows), 1)
		})
	}
}

func TestReport_LotLedgerSplitsCables(t *testing.T) {
	db := newTestDB(t)
	seedInventory(t, db)

	data, err := newReportService(db).LotLedgerXLSX(bg, DateRange{})
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Lot Ledger Summary")
	require.NoError(t, err)
	var kinds []string
	for _, r := range rows[1:] {
		kinds = append(kinds, r[1])
	}
	assert.Contains(t, kinds, "HDMI CABLE")
	assert.NotContains(t, kinds, model.TypeCables)
	assert.NotContains(t, kinds, model.TypeCharger)
}
