package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shreehari27/Asset-Management/internal/model"
	"github.com/Shreehari27/Asset-Management/pkg/apperror"
)

func TestScrap_AvailableAsset(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "M100", model.TypeMonitor, model.StatusAvailable)
	svc := NewScrapService(db, time.UTC)
	svc.now = fixedClock("2024-06-30T08:00:00Z")

	record, err := svc.Scrap(bg, ScrapInput{AssetCode: "M100", ScrapReason: "Broken panel"}, "IT01")
	require.NoError(t, err)
	assert.Equal(t, model.StatusScrapped, record.Disposition)
	assert.Equal(t, "IT01", record.ScrappedBy)
	assert.Equal(t, "2024-06-30", record.ScrapDate.String())

	var snapshot model.Asset
	require.NoError(t, json.Unmarshal(record.Snapshot, &snapshot))
	assert.Equal(t, "M100", snapshot.AssetCode)
	assert.Equal(t, model.StatusAvailable, snapshot.Status)

	assert.Equal(t, model.StatusScrapped, loadAsset(t, db, "M100").Status)

	details, err := svc.Details(bg, "M100")
	require.NoError(t, err)
	assert.Equal(t, "Broken panel", details.ScrapReason)
}

func TestScrap_AssignedAssetIsRejected(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "M100", model.TypeMonitor, model.StatusAssigned)
	svc := NewScrapService(db, time.UTC)

	_, err := svc.Scrap(bg, ScrapInput{AssetCode: "M100", ScrapReason: "old"}, "IT01")
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "Only available assets can be scrapped", apperror.MessageOf(err))

	assert.EqualValues(t, 0, count(t, db, &model.ScrapRecord{}, "asset_code = ?", "M100"))
	assert.Equal(t, model.StatusAssigned, loadAsset(t, db, "M100").Status)
}

func TestScrap_RetireAndTerminalStates(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "M100", model.TypeMonitor, model.StatusAvailable)
	svc := NewScrapService(db, time.UTC)

	record, err := svc.Scrap(bg, ScrapInput{AssetCode: "M100", Disposition: "retired", ScrapDate: "2024-02-01"}, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRetired, record.Disposition)
	assert.Equal(t, "SYSTEM", record.ScrappedBy)
	assert.Equal(t, model.StatusRetired, loadAsset(t, db, "M100").Status)

	_, err = svc.Scrap(bg, ScrapInput{AssetCode: "M100"}, "IT01")
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = svc.Scrap(bg, ScrapInput{AssetCode: "NOPE"}, "IT01")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.Scrap(bg, ScrapInput{AssetCode: "M100", Disposition: "sold"}, "IT01")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Details(bg, "M200")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestScrap_StatsGroupByMonth(t *testing.T) {
	db := newTestDB(t)
	svc := NewScrapService(db, time.UTC)
	for _, c := range []struct{ code, date string }{
		{"A1", "2024-01-05"},
		{"A2", "2024-01-20"},
		{"A3", "2024-03-02"},
		{"A4", "2023-12-31"},
	} {
		seedAsset(t, db, c.code, model.TypeMouse, model.StatusAvailable)
		_, err := svc.Scrap(bg, ScrapInput{AssetCode: c.code, ScrapDate: c.date}, "IT01")
		require.NoError(t, err)
	}

	stats, err := svc.Stats(bg)
	require.NoError(t, err)
	assert.Equal(t, []ScrapStat{
		{Year: 2024, Month: 3, Count: 1},
		{Year: 2024, Month: 1, Count: 2},
		{Year: 2023, Month: 12, Count: 1},
	}, stats)

	list, err := svc.List(bg)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "A3", list[0].AssetCode)
}
