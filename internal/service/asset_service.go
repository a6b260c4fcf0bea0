package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Shreehari27/Asset-Management/internal/lifecycle"
	"github.com/Shreehari27/Asset-Management/internal/model"
	"github.com/Shreehari27/Asset-Management/pkg/apperror"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
	"github.com/Shreehari27/Asset-Management/prometheus"
)

// AssetService owns the asset store: reads, bulk adds, edits and the
// modification log.
type AssetService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewAssetService(db *gorm.DB, loc *time.Location) *AssetService {
	return &AssetService{db: db, loc: loc, now: time.Now}
}

// AddAssetInput is one item of an add request
type AddAssetInput struct {
	AssetCode     string `json:"asset_code"`
	SerialNumber  string `json:"serial_number"`
	AssetType     string `json:"asset_type"`
	AssetBrand    string `json:"asset_brand"`
	ModelName     string `json:"model_name"`
	Processor     string `json:"processor"`
	CableType     string `json:"cable_type"`
	ChargerSerial string `json:"charger_serial"`
	WarrantyStart string `json:"warranty_start"`
	WarrantyEnd   string `json:"warranty_end"`
	PurchaseDate  string `json:"purchase_date"`
	Location      string `json:"location"`
	Status        string `json:"status"`
}

// AddedAsset describes a created asset and its charger, if any
type AddedAsset struct {
	AssetCode    string `json:"asset_code"`
	SerialNumber string `json:"serial_number"`
	AssetType    string `json:"asset_type"`
	LotNumber    string `json:"lot_number,omitempty"`
	ChargerCode  string `json:"charger_code,omitempty"`
}

// AddResult is the response of a bulk add
type AddResult struct {
	Added   []AddedAsset `json:"added"`
	Skipped []ItemResult `json:"skipped"`
}

// AssetUpdate carries the editable fields of an asset. Nil means unchanged.
type AssetUpdate struct {
	SerialNumber  *string `json:"serial_number"`
	AssetBrand    *string `json:"asset_brand"`
	ModelName     *string `json:"model_name"`
	Processor     *string `json:"processor"`
	CableType     *string `json:"cable_type"`
	WarrantyStart *string `json:"warranty_start"`
	WarrantyEnd   *string `json:"warranty_end"`
	PurchaseDate  *string `json:"purchase_date"`
	Location      *string `json:"location"`
	Status        *string `json:"status"`
}

// ModificationInput appends one free text entry to an asset's audit trail
type ModificationInput struct {
	AssetCode        string `json:"asset_code"`
	Modification     string `json:"modification"`
	ModificationDate string `json:"modification_date"`
}

// List returns every asset, newest first
func (s *AssetService) List(ctx context.Context) ([]model.Asset, error) {
	defer prometheus.TrackDBOperation("list_assets")()

	var assets []model.Asset
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&assets).Error; err != nil {
		return nil, apperror.Store(err, "Failed to retrieve assets")
	}
	return assets, nil
}

// Get returns the asset with the given code, or nil when the code is unknown.
// Laptops and mini desktops carry the serial of their linked charger.
func (s *AssetService) Get(ctx context.Context, code string) (*model.Asset, error) {
	defer prometheus.TrackDBOperation("get_asset")()

	db := s.db.WithContext(ctx)
	var asset model.Asset
	err := db.Where("asset_code = ?", code).First(&asset).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Store(err, "Failed to retrieve asset")
	}

	if lifecycle.HasCharger(asset.AssetType) {
		var charger model.Asset
		err := db.Where("parent_asset_code = ? AND asset_type = ?", code, model.TypeCharger).
			Order("id DESC").First(&charger).Error
		switch {
		case err == nil:
			asset.ChargerSerial = charger.Serial()
		case !isNotFound(err):
			return nil, apperror.Store(err, "Failed to retrieve charger")
		}
	}
	return &asset, nil
}

// Add creates assets one by one. Failed items are reported in Skipped and
// do not affect the others.
func (s *AssetService) Add(ctx context.Context, items []AddAssetInput) AddResult {
	log := logger.FromContext(ctx)
	result := AddResult{Added: []AddedAsset{}, Skipped: []ItemResult{}}

	for i, in := range items {
		if ctx.Err() != nil {
			for _, rest := range items[i:] {
				result.Skipped = append(result.Skipped, notProcessedResult(rest.AssetCode))
			}
			break
		}

		added, err := s.addOne(ctx, in)
		if err != nil {
			log.Warn("Asset skipped",
				zap.String("asset_code", in.AssetCode),
				zap.String("asset_type", in.AssetType),
				zap.Error(err))
			result.Skipped = append(result.Skipped, failureResult(in.AssetCode, err))
			continue
		}
		log.Info("Asset added",
			zap.String("asset_code", added.AssetCode),
			zap.String("asset_type", added.AssetType),
			zap.String("charger_code", added.ChargerCode))
		result.Added = append(result.Added, *added)
	}
	return result
}

func (s *AssetService) addOne(ctx context.Context, in AddAssetInput) (*AddedAsset, error) {
	assetType, ok := model.CanonicalAssetType(in.AssetType)
	if !ok {
		if strings.TrimSpace(in.AssetType) == "" {
			return nil, apperror.Validation("asset_type is required")
		}
		return nil, apperror.Validation("Invalid asset_type %q", in.AssetType)
	}

	asset := model.Asset{
		AssetCode:  strings.TrimSpace(in.AssetCode),
		AssetType:  assetType,
		AssetBrand: lifecycle.NormalizeName(in.AssetBrand),
		ModelName:  lifecycle.NormalizeName(in.ModelName),
		Processor:  strings.TrimSpace(in.Processor),
		Location:   strings.TrimSpace(in.Location),
		Status:     model.StatusAvailable,
	}

	switch model.Status(strings.TrimSpace(in.Status)) {
	case "", model.StatusAvailable:
	case model.StatusReadyToBeAssigned:
		asset.Status = model.StatusReadyToBeAssigned
	default:
		return nil, apperror.Validation("Invalid initial status %q", in.Status)
	}

	if lifecycle.IsCable(assetType) {
		cableType, ok := model.CanonicalCableType(in.CableType)
		if !ok {
			return nil, apperror.Validation("A valid cable_type is required for Cables")
		}
		asset.CableType = cableType
		asset.SerialNumber = strPtr(lifecycle.NotApplicable)
	} else {
		serial := strings.TrimSpace(in.SerialNumber)
		if asset.AssetCode == "" || serial == "" {
			return nil, apperror.Validation("asset_code and serial_number are required")
		}
		asset.SerialNumber = &serial
	}

	var err error
	if asset.WarrantyStart, err = model.ParseOptionalDate(in.WarrantyStart, s.loc); err != nil {
		return nil, apperror.Validation("Invalid warranty_start: %v", err)
	}
	if asset.WarrantyEnd, err = model.ParseOptionalDate(in.WarrantyEnd, s.loc); err != nil {
		return nil, apperror.Validation("Invalid warranty_end: %v", err)
	}
	if asset.PurchaseDate, err = model.ParseOptionalDate(in.PurchaseDate, s.loc); err != nil {
		return nil, apperror.Validation("Invalid purchase_date: %v", err)
	}
	if asset.PurchaseDate != nil {
		asset.LotNumber = lifecycle.LotNumber(*asset.PurchaseDate)
	}

	chargerSerial := strings.TrimSpace(in.ChargerSerial)
	withCharger := lifecycle.HasCharger(assetType) && chargerSerial != ""

	defer prometheus.TrackDBOperation("add_asset")()

	added := &AddedAsset{AssetType: assetType, LotNumber: asset.LotNumber}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if lifecycle.IsCable(assetType) {
			code, err := nextCableCode(tx)
			if err != nil {
				return err
			}
			asset.AssetCode = code
		} else {
			if err := ensureCodeFree(tx, asset.AssetCode); err != nil {
				return err
			}
			if err := ensureSerialFree(tx, asset.Serial()); err != nil {
				return err
			}
		}

		if err := tx.Create(&asset).Error; err != nil {
			if isDuplicate(err) {
				return apperror.Conflict("Asset %s or serial number %s already exists", asset.AssetCode, asset.Serial())
			}
			return apperror.Store(err, "Failed to create asset")
		}

		if withCharger {
			charger := chargerFor(asset, chargerSerial)
			if err := ensureCodeFree(tx, charger.AssetCode); err != nil {
				return err
			}
			if err := ensureSerialFree(tx, chargerSerial); err != nil {
				return err
			}
			if err := tx.Create(&charger).Error; err != nil {
				if isDuplicate(err) {
					return apperror.Conflict("Charger %s or serial number %s already exists", charger.AssetCode, chargerSerial)
				}
				return apperror.Store(err, "Failed to create charger")
			}
			added.ChargerCode = charger.AssetCode
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	added.AssetCode = asset.AssetCode
	added.SerialNumber = asset.Serial()
	return added, nil
}

// chargerFor builds the charger row provisioned with parent
func chargerFor(parent model.Asset, serial string) model.Asset {
	parentCode := parent.AssetCode
	return model.Asset{
		AssetCode:       lifecycle.ChargerCode(parent.AssetCode),
		SerialNumber:    &serial,
		AssetType:       model.TypeCharger,
		AssetBrand:      parent.AssetBrand,
		ParentAssetCode: &parentCode,
		WarrantyStart:   parent.WarrantyStart,
		WarrantyEnd:     parent.WarrantyEnd,
		PurchaseDate:    parent.PurchaseDate,
		LotNumber:       parent.LotNumber,
		Location:        parent.Location,
		Status:          parent.Status,
	}
}

func ensureCodeFree(tx *gorm.DB, code string) error {
	var n int64
	if err := tx.Model(&model.Asset{}).Where("asset_code = ?", code).Count(&n).Error; err != nil {
		return apperror.Store(err, "Failed to check asset code")
	}
	if n > 0 {
		return apperror.Conflict("Asset code %s already exists", code)
	}
	return nil
}

func ensureSerialFree(tx *gorm.DB, serial string) error {
	if serial == "" || serial == lifecycle.NotApplicable {
		return nil
	}
	var owner model.Asset
	err := tx.Select("asset_code").Where("serial_number = ?", serial).First(&owner).Error
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return apperror.Store(err, "Failed to check serial number")
	}
	return apperror.Conflict("Serial number %s already belongs to asset %s", serial, owner.AssetCode)
}

// nextCableCode draws the next free cable code from the cable sequence.
// The sequence is seeded from the number of existing cables on first use.
func nextCableCode(tx *gorm.DB) (string, error) {
	for {
		n, err := nextSequence(tx, lifecycle.CableSequence, func() (int64, error) {
			var count int64
			err := tx.Model(&model.Asset{}).Where("asset_type = ?", model.TypeCables).Count(&count).Error
			return count, err
		})
		if err != nil {
			return "", err
		}
		code := lifecycle.CableCode(n)
		var taken int64
		if err := tx.Model(&model.Asset{}).Where("asset_code = ?", code).Count(&taken).Error; err != nil {
			return "", apperror.Store(err, "Failed to check cable code")
		}
		if taken == 0 {
			return code, nil
		}
	}
}

// nextSequence increments the named counter and returns its new value.
// The row update holds a lock until the surrounding transaction ends. A
// missing row is seeded first; when another transaction seeds it at the same
// time, its row wins and the increment applies on top of it.
func nextSequence(tx *gorm.DB, name string, seed func() (int64, error)) (int64, error) {
	increment := func() (int64, error) {
		res := tx.Model(&model.Sequence{}).Where("name = ?", name).
			UpdateColumn("value", gorm.Expr("value + ?", 1))
		if res.Error != nil {
			return 0, apperror.Store(res.Error, "Failed to advance sequence")
		}
		return res.RowsAffected, nil
	}

	n, err := increment()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		start, err := seed()
		if err != nil {
			return 0, apperror.Store(err, "Failed to seed sequence")
		}
		err = tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&model.Sequence{Name: name, Value: start}).Error
		if err != nil {
			return 0, apperror.Store(err, "Failed to create sequence")
		}
		if n, err = increment(); err != nil {
			return 0, err
		}
		if n != 1 {
			return 0, apperror.New(apperror.KindInternal, "Sequence %s could not be advanced", name)
		}
	}

	var seq model.Sequence
	if err := tx.Where("name = ?", name).First(&seq).Error; err != nil {
		return 0, apperror.Store(err, "Failed to read sequence")
	}
	return seq.Value, nil
}

// Update applies an edit to an asset and records it in the modification log
func (s *AssetService) Update(ctx context.Context, code string, in AssetUpdate, actor string) (*model.Asset, error) {
	log := logger.FromContext(ctx)
	defer prometheus.TrackDBOperation("update_asset")()

	var asset model.Asset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_code = ?", code).First(&asset).Error; err != nil {
			if isNotFound(err) {
				return apperror.NotFound("Asset %s not found", code)
			}
			return apperror.Store(err, "Failed to retrieve asset")
		}
		if lifecycle.IsTerminal(asset.Status) {
			return apperror.Conflict("Asset %s is %s and can no longer be modified", code, asset.Status)
		}

		updates, changes, err := s.diff(tx, &asset, in)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return apperror.Validation("No fields to update")
		}

		res := tx.Model(&model.Asset{}).
			Where("asset_code = ? AND status = ?", code, asset.Status).
			Updates(updates)
		if res.Error != nil {
			if isDuplicate(res.Error) {
				return apperror.Conflict("Serial number already belongs to another asset")
			}
			return apperror.Store(res.Error, "Failed to update asset")
		}
		if res.RowsAffected != 1 {
			return apperror.Conflict("Asset %s changed concurrently, retry", code)
		}

		entry := model.AssetModification{
			AssetCode:        code,
			ModifiedBy:       actor,
			Modification:     "Updated " + strings.Join(changes, "; "),
			ModificationDate: today(s.now(), s.loc),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return apperror.Store(err, "Failed to record modification")
		}

		return tx.Where("asset_code = ?", code).First(&asset).Error
	})
	recordTransition(string(lifecycle.EvModify), err)
	if err != nil {
		return nil, apperror.Store(err, "Failed to update asset")
	}

	log.Info("Asset updated", zap.String("asset_code", code), zap.String("modified_by", actor))
	return &asset, nil
}

// diff turns an update into column changes and their readable descriptions
func (s *AssetService) diff(tx *gorm.DB, asset *model.Asset, in AssetUpdate) (map[string]interface{}, []string, error) {
	updates := map[string]interface{}{}
	var changes []string

	setText := func(column, old string, value *string, normalize func(string) string) {
		if value == nil {
			return
		}
		v := normalize(*value)
		if v == old {
			return
		}
		updates[column] = v
		changes = append(changes, fmt.Sprintf("%s: %q -> %q", column, old, v))
	}

	setText("asset_brand", asset.AssetBrand, in.AssetBrand, lifecycle.NormalizeName)
	setText("model_name", asset.ModelName, in.ModelName, lifecycle.NormalizeName)
	setText("processor", asset.Processor, in.Processor, strings.TrimSpace)
	setText("location", asset.Location, in.Location, strings.TrimSpace)

	if in.SerialNumber != nil && lifecycle.IsCable(asset.AssetType) {
		return nil, nil, apperror.Validation("Cables do not carry a serial number")
	}
	if in.SerialNumber != nil {
		serial := strings.TrimSpace(*in.SerialNumber)
		if serial == "" {
			return nil, nil, apperror.Validation("serial_number cannot be empty")
		}
		if serial != asset.Serial() {
			if err := ensureSerialFree(tx, serial); err != nil {
				return nil, nil, err
			}
			updates["serial_number"] = serial
			changes = append(changes, fmt.Sprintf("serial_number: %q -> %q", asset.Serial(), serial))
		}
	}

	if in.CableType != nil {
		if !lifecycle.IsCable(asset.AssetType) {
			return nil, nil, apperror.Validation("cable_type only applies to Cables")
		}
		ct, ok := model.CanonicalCableType(*in.CableType)
		if !ok {
			return nil, nil, apperror.Validation("Invalid cable_type %q", *in.CableType)
		}
		setText("cable_type", asset.CableType, &ct, strings.TrimSpace)
	}

	dates := []struct {
		column string
		old    *model.Date
		value  *string
	}{
		{"warranty_start", asset.WarrantyStart, in.WarrantyStart},
		{"warranty_end", asset.WarrantyEnd, in.WarrantyEnd},
		{"purchase_date", asset.PurchaseDate, in.PurchaseDate},
	}
	for _, d := range dates {
		if d.value == nil {
			continue
		}
		parsed, err := model.ParseDate(*d.value, s.loc)
		if err != nil {
			return nil, nil, apperror.Validation("Invalid %s: %v", d.column, err)
		}
		if d.old != nil && d.old.Equal(parsed.Time) {
			continue
		}
		updates[d.column] = parsed
		changes = append(changes, fmt.Sprintf("%s: %s -> %s", d.column, dateString(d.old), parsed))
		if d.column == "purchase_date" {
			lot := lifecycle.LotNumber(parsed)
			if lot != asset.LotNumber {
				updates["lot_number"] = lot
				changes = append(changes, fmt.Sprintf("lot_number: %q -> %q", asset.LotNumber, lot))
			}
		}
	}

	if in.Status != nil {
		to := model.Status(strings.TrimSpace(*in.Status))
		if !model.ValidStatus(to) {
			return nil, nil, apperror.Validation("Invalid status %q", to)
		}
		if !lifecycle.CanModifyStatus(asset.Status, to) {
			return nil, nil, apperror.Conflict("Status cannot be changed from %s to %s", asset.Status, to)
		}
		if to != asset.Status {
			updates["status"] = to
			changes = append(changes, fmt.Sprintf("status: %s -> %s", asset.Status, to))
		}
	}

	return updates, changes, nil
}

func dateString(d *model.Date) string {
	if d == nil {
		return "none"
	}
	return d.String()
}

// AppendModification adds a free text entry to the audit trail of an asset
func (s *AssetService) AppendModification(ctx context.Context, in ModificationInput, actor string) (*model.AssetModification, error) {
	code := strings.TrimSpace(in.AssetCode)
	text := strings.TrimSpace(in.Modification)
	if code == "" || text == "" {
		return nil, apperror.Validation("asset_code and modification are required")
	}

	date := today(s.now(), s.loc)
	if strings.TrimSpace(in.ModificationDate) != "" {
		d, err := model.ParseDate(in.ModificationDate, s.loc)
		if err != nil {
			return nil, apperror.Validation("Invalid modification_date: %v", err)
		}
		date = d
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&model.Asset{}).Where("asset_code = ?", code).Count(&n).Error; err != nil {
		return nil, apperror.Store(err, "Failed to retrieve asset")
	}
	if n == 0 {
		return nil, apperror.NotFound("Asset %s not found", code)
	}

	entry := model.AssetModification{
		AssetCode:        code,
		ModifiedBy:       actor,
		Modification:     text,
		ModificationDate: date,
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, apperror.Store(err, "Failed to record modification")
	}
	return &entry, nil
}

// Modifications lists the audit trail of an asset, newest first
func (s *AssetService) Modifications(ctx context.Context, code string) ([]model.AssetModification, error) {
	var rows []model.AssetModification
	err := s.db.WithContext(ctx).
		Where("asset_code = ?", code).
		Order("modification_date DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, apperror.Store(err, "Failed to retrieve modifications")
	}
	return rows, nil
}
