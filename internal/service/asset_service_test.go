package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Shreehari27/Asset-Management/internal/lifecycle"
	"github.com/Shreehari27/Asset-Management/internal/model"
	"github.com/Shreehari27/Asset-Management/pkg/apperror"
)

func TestGet_UnknownCodeReturnsNil(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssetService(db, time.UTC)

	asset, err := svc.Get(bg, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, asset)
}

func TestAdd_CablesAreNumberedSequentially(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssetService(db, time.UTC)

	result := svc.Add(bg, []AddAssetInput{
		{AssetType: "Cables", CableType: "hdmi cable"},
		{AssetType: "Cables", CableType: "LAN CABLE"},
	})

	require.Empty(t, result.Skipped)
	require.Len(t, result.Added, 2)
	assert.Equal(t, "C001", result.Added[0].AssetCode)
	assert.Equal(t, "C002", result.Added[1].AssetCode)
	assert.Equal(t, "N/A", result.Added[0].SerialNumber)

	cable := loadAsset(t, db, "C001")
	assert.Equal(t, "HDMI CABLE", cable.CableType)

	next := svc.Add(bg, []AddAssetInput{{AssetType: "Cables", CableType: "DP CABLE"}})
	require.Len(t, next.Added, 1)
	assert.Equal(t, "C003", next.Added[0].AssetCode)
}

func TestAdd_CableSequenceSkipsTakenCodes(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "C001", model.TypeCables, model.StatusAvailable)
	seedAsset(t, db, "C002", model.TypeCables, model.StatusAvailable)
	svc := NewAssetService(db, time.UTC)

	result := svc.Add(bg, []AddAssetInput{{AssetType: "Cables", CableType: "VGA CABLE"}})
	require.Len(t, result.Added, 1)
	assert.Equal(t, "C003", result.Added[0].AssetCode)
}

func TestAdd_CableSequenceSeededByAnotherWriter(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssetService(db, time.UTC)

	beforeFirst(t, db, "create", "sequences", func(tx *gorm.DB) {
		require.NoError(t, tx.Create(&model.Sequence{Name: lifecycle.CableSequence, Value: 4}).Error)
	})

	result := svc.Add(bg, []AddAssetInput{{AssetType: "Cables", CableType: "HDMI CABLE"}})

	require.Empty(t, result.Skipped)
	require.Len(t, result.Added, 1)
	assert.Equal(t, "C005", result.Added[0].AssetCode)

	var seq model.Sequence
	require.NoError(t, db.Where("name = ?", lifecycle.CableSequence).First(&seq).Error)
	assert.EqualValues(t, 5, seq.Value)
}

func TestSerialNumbersAreUnique(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "M100", model.TypeMonitor, model.StatusAvailable)

	dup := "SN-M100"
	err := db.Create(&model.Asset{AssetCode: "M101", SerialNumber: &dup, AssetType: model.TypeMonitor, Status: model.StatusAvailable}).Error
	assert.True(t, isDuplicate(err))

	na := lifecycle.NotApplicable
	for _, code := range []string{"C901", "C902"} {
		require.NoError(t, db.Create(&model.Asset{AssetCode: code, SerialNumber: &na, AssetType: model.TypeCables, Status: model.StatusAvailable}).Error)
	}
	for _, code := range []string{"K901", "K902"} {
		require.NoError(t, db.Create(&model.Asset{AssetCode: code, AssetType: model.TypeMouse, Status: model.StatusAvailable}).Error)
	}
}

func TestUpdate_SerialTakenConcurrentlyIsConflict(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "M200", model.TypeMonitor, model.StatusAvailable)
	svc := NewAssetService(db, time.UTC)

	serial := "NEW-SERIAL"
	beforeFirst(t, db, "update", "assets", func(tx *gorm.DB) {
		require.NoError(t, tx.Create(&model.Asset{
			AssetCode:    "M201",
			SerialNumber: &serial,
			AssetType:    model.TypeMonitor,
			Status:       model.StatusAvailable,
		}).Error)
	})

	_, err := svc.Update(bg, "M200", AssetUpdate{SerialNumber: &serial}, "IT01")
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "Serial number already belongs to another asset", apperror.MessageOf(err))
	stored := loadAsset(t, db, "M200")
	assert.Equal(t, "SN-M200", stored.Serial())
	assert.EqualValues(t, 0, count(t, db, &model.AssetModification{}, "asset_code = ?", "M200"))
}

func TestAdd_LaptopWithCharger(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssetService(db, time.UTC)

	result := svc.Add(bg, []AddAssetInput{{
		AssetCode:     "L100",
		SerialNumber:  "LAP-100",
		AssetType:     "Mac Laptop",
		AssetBrand:    "APPLE",
		ModelName:     "macbook air",
		ChargerSerial: "CHG-100",
		PurchaseDate:  "2025-01-05",
		Location:      "Pune",
		Status:        "ready_to_be_assigned",
	}})

	require.Empty(t, result.Skipped)
	require.Len(t, result.Added, 1)
	added := result.Added[0]
	assert.Equal(t, "L100-CH", added.ChargerCode)
	assert.Equal(t, "LT05JAN2025", added.LotNumber)

	laptop := loadAsset(t, db, "L100")
	assert.Equal(t, "Apple", laptop.AssetBrand)
	assert.Equal(t, "Macbook air", laptop.ModelName)
	assert.Equal(t, model.StatusReadyToBeAssigned, laptop.Status)

	charger := loadAsset(t, db, "L100-CH")
	assert.Equal(t, model.TypeCharger, charger.AssetType)
	assert.Equal(t, "LT05JAN2025", charger.LotNumber)
	assert.Equal(t, "Pune", charger.Location)
	require.NotNil(t, charger.ParentAssetCode)
	assert.Equal(t, "L100", *charger.ParentAssetCode)

	got, err := svc.Get(bg, "L100")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "CHG-100", got.ChargerSerial)
}

func TestAdd_ReportsSkippedItems(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "M100", model.TypeMonitor, model.StatusAvailable)
	svc := NewAssetService(db, time.UTC)

	result := svc.Add(bg, []AddAssetInput{
		{AssetCode: "M200", SerialNumber: "MON-200", AssetType: "Monitor"},
		{AssetCode: "X1", SerialNumber: "S1"},
		{AssetCode: "X2", SerialNumber: "S2", AssetType: "Toaster"},
		{AssetCode: "M100", SerialNumber: "OTHER", AssetType: "Monitor"},
		{AssetCode: "M300", SerialNumber: "SN-M100", AssetType: "Monitor"},
		{AssetCode: "M400", AssetType: "Monitor"},
		{AssetType: "Cables"},
		{AssetCode: "M500", SerialNumber: "MON-500", AssetType: "Monitor", Status: "assigned"},
	})

	require.Len(t, result.Added, 1)
	assert.Equal(t, "M200", result.Added[0].AssetCode)

	require.Len(t, result.Skipped, 7)
	kinds := make([]apperror.Kind, len(result.Skipped))
	for i, r := range result.Skipped {
		kinds[i] = r.Kind
	}
	assert.Equal(t, []apperror.Kind{
		apperror.KindValidation,
		apperror.KindValidation,
		apperror.KindConflict,
		apperror.KindConflict,
		apperror.KindValidation,
		apperror.KindValidation,
		apperror.KindValidation,
	}, kinds)
	assert.Equal(t, "Serial number SN-M100 already belongs to asset M100", result.Skipped[3].Error)
}

func TestUpdate_ChangesFieldsAndLogsModification(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "M100", model.TypeMonitor, model.StatusAvailable)
	svc := NewAssetService(db, time.UTC)
	svc.now = fixedClock("2024-05-01T10:00:00Z")

	brand := "hp"
	purchase := "2024-03-15"
	status := string(model.StatusReadyToBeAssigned)
	asset, err := svc.Update(bg, "M100", AssetUpdate{
		AssetBrand:   &brand,
		PurchaseDate: &purchase,
		Status:       &status,
	}, "IT01")
	require.NoError(t, err)
	assert.Equal(t, "Hp", asset.AssetBrand)
	assert.Equal(t, "LT15MAR2024", asset.LotNumber)
	assert.Equal(t, model.StatusReadyToBeAssigned, asset.Status)

	mods, err := svc.Modifications(bg, "M100")
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, "IT01", mods[0].ModifiedBy)
	assert.Equal(t, "2024-05-01", mods[0].ModificationDate.String())
	assert.Contains(t, mods[0].Modification, "asset_brand")
	assert.Contains(t, mods[0].Modification, "lot_number")
}

func TestUpdate_Rejections(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "M100", model.TypeMonitor, model.StatusAssigned)
	seedAsset(t, db, "M200", model.TypeMonitor, model.StatusAvailable)
	svc := NewAssetService(db, time.UTC)

	available := string(model.StatusAvailable)
	_, err := svc.Update(bg, "M100", AssetUpdate{Status: &available}, "IT01")
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	bogus := "lost"
	_, err = svc.Update(bg, "M200", AssetUpdate{Status: &bogus}, "IT01")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Update(bg, "M200", AssetUpdate{}, "IT01")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	taken := "SN-M100"
	_, err = svc.Update(bg, "M200", AssetUpdate{SerialNumber: &taken}, "IT01")
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = svc.Update(bg, "M999", AssetUpdate{Status: &available}, "IT01")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	assert.EqualValues(t, 0, count(t, db, &model.AssetModification{}, "1 = 1"))
	assert.Equal(t, model.StatusAssigned, loadAsset(t, db, "M100").Status)
}

func TestUpdate_TerminalAssetsAreFrozen(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "M100", model.TypeMonitor, model.StatusScrapped)
	seedAsset(t, db, "M200", model.TypeMonitor, model.StatusRetired)
	svc := NewAssetService(db, time.UTC)

	location := "Office-ECITY"
	for _, code := range []string{"M100", "M200"} {
		_, err := svc.Update(bg, code, AssetUpdate{Location: &location}, "IT01")
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err), code)
		assert.Empty(t, loadAsset(t, db, code).Location, code)
	}
	assert.EqualValues(t, 0, count(t, db, &model.AssetModification{}, "1 = 1"))
}

func TestAppendModification(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "M100", model.TypeMonitor, model.StatusAvailable)
	svc := NewAssetService(db, time.UTC)

	_, err := svc.AppendModification(bg, ModificationInput{AssetCode: "M100", Modification: "RAM upgraded", ModificationDate: "2024-01-02"}, "IT01")
	require.NoError(t, err)
	_, err = svc.AppendModification(bg, ModificationInput{AssetCode: "M100", Modification: "Screen replaced", ModificationDate: "2024-03-02"}, "IT02")
	require.NoError(t, err)

	mods, err := svc.Modifications(bg, "M100")
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, "Screen replaced", mods[0].Modification)
	assert.Equal(t, "RAM upgraded", mods[1].Modification)

	_, err = svc.AppendModification(bg, ModificationInput{AssetCode: "NOPE", Modification: "x"}, "IT01")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.AppendModification(bg, ModificationInput{AssetCode: "M100"}, "IT01")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
