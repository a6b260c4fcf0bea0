package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Shreehari27/Asset-Management/internal/lifecycle"
	"github.com/Shreehari27/Asset-Management/internal/model"
	"github.com/Shreehari27/Asset-Management/pkg/apperror"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
	"github.com/Shreehari27/Asset-Management/prometheus"
)

// AssignmentService runs the assign and return transitions and serves
// reads over the assignment ledger.
type AssignmentService struct {
	db  *gorm.DB
	loc *time.Location
}

func NewAssignmentService(db *gorm.DB, loc *time.Location) *AssignmentService {
	return &AssignmentService{db: db, loc: loc}
}

// AssignRequest is one item of a bulk assign request. The assigning actor
// comes from the caller's identity and is not part of the body.
type AssignRequest struct {
	PsdID         string `json:"psd_id"`
	AssetCode     string `json:"asset_code"`
	SerialNumber  string `json:"serial_number"`
	AssetType     string `json:"asset_type"`
	AssetBrand    string `json:"asset_brand"`
	ModelName     string `json:"model_name"`
	Processor     string `json:"processor"`
	CableType     string `json:"cable_type"`
	EmpCode       string `json:"emp_code"`
	AssignDate    string `json:"assign_date"`
	AssignRemark  string `json:"assign_remark"`
	ChargerSerial string `json:"charger_serial"`
	WarrantyStart string `json:"warranty_start"`
	WarrantyEnd   string `json:"warranty_end"`
	Location      string `json:"location"`
}

// ReturnInput is the body of a return request
type ReturnInput struct {
	ReturnDate   string `json:"return_date"`
	ReturnRemark string `json:"return_remark"`
	Location     string `json:"location"`
}

// assignItem is a validated assign request
type assignItem struct {
	psdID         string
	assetCode     string
	serial        string
	assetType     string
	assetBrand    string
	modelName     string
	processor     string
	cableType     string
	parentCode    string
	empCode       string
	assignedBy    string
	assignDate    model.Date
	remark        string
	chargerSerial string
	warrantyStart *model.Date
	warrantyEnd   *model.Date
	location      string
}

// LedgerEntry is an assignment ledger row joined with asset and employee details
type LedgerEntry struct {
	ID           uint        `json:"id"`
	PsdID        string      `json:"psd_id"`
	AssetCode    string      `json:"asset_code"`
	EmpCode      string      `json:"emp_code"`
	EmpName      string      `json:"emp_name"`
	AssignedBy   string      `json:"assigned_by"`
	AssignDate   model.Date  `json:"assign_date"`
	AssignRemark string      `json:"assign_remark"`
	ReturnDate   *model.Date `json:"return_date,omitempty"`
	ReturnedTo   *string     `json:"returned_to,omitempty"`
	ReturnRemark *string     `json:"return_remark,omitempty"`
	AssetType    string      `json:"asset_type"`
	AssetBrand   string      `json:"asset_brand"`
	ModelName    string      `json:"model_name"`
	SerialNumber *string     `json:"serial_number"`
	Location     string      `json:"location"`
}

// Assign processes the requests in order. Each item succeeds or fails on
// its own; a successful laptop or mini desktop with a charger serial is
// followed by the result of its synthesized charger item.
func (s *AssignmentService) Assign(ctx context.Context, reqs []AssignRequest, actor string) []ItemResult {
	log := logger.FromContext(ctx)
	results := make([]ItemResult, 0, len(reqs))

	for i, req := range reqs {
		if ctx.Err() != nil {
			for _, rest := range reqs[i:] {
				results = append(results, notProcessedResult(rest.AssetCode))
			}
			log.Warn("Bulk assign interrupted", zap.Int("processed", i), zap.Int("total", len(reqs)))
			break
		}

		var storedType string
		item, err := s.prepare(req, actor)
		if err == nil {
			storedType, err = s.apply(ctx, item)
		}
		recordTransition(string(lifecycle.EvAssign), err)
		if err != nil {
			log.Warn("Assignment skipped",
				zap.String("asset_code", req.AssetCode),
				zap.String("emp_code", req.EmpCode),
				zap.Error(err))
			results = append(results, failureResult(strings.TrimSpace(req.AssetCode), err))
			continue
		}

		log.Info("Asset assigned",
			zap.String("asset_code", item.assetCode),
			zap.String("emp_code", item.empCode),
			zap.String("assigned_by", actor))
		results = append(results, successResult(item.assetCode, "Asset assigned successfully"))

		if !lifecycle.HasCharger(storedType) || item.chargerSerial == "" {
			continue
		}
		charger := item.charger()
		_, err = s.apply(ctx, charger)
		recordTransition(string(lifecycle.EvAssign), err)
		if err != nil {
			log.Warn("Charger assignment skipped",
				zap.String("asset_code", charger.assetCode),
				zap.Error(err))
			results = append(results, failureResult(charger.assetCode, err))
			continue
		}
		results = append(results, successResult(charger.assetCode, "Charger assigned successfully"))
	}
	return results
}

func (s *AssignmentService) prepare(req AssignRequest, actor string) (*assignItem, error) {
	item := &assignItem{
		psdID:         strings.TrimSpace(req.PsdID),
		assetCode:     strings.TrimSpace(req.AssetCode),
		serial:        strings.TrimSpace(req.SerialNumber),
		assetBrand:    lifecycle.NormalizeName(req.AssetBrand),
		modelName:     lifecycle.NormalizeName(req.ModelName),
		processor:     strings.TrimSpace(req.Processor),
		empCode:       strings.TrimSpace(req.EmpCode),
		assignedBy:    strings.TrimSpace(actor),
		remark:        strings.TrimSpace(req.AssignRemark),
		chargerSerial: strings.TrimSpace(req.ChargerSerial),
		location:      strings.TrimSpace(req.Location),
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"psd_id", item.psdID},
		{"asset_code", item.assetCode},
		{"asset_type", req.AssetType},
		{"emp_code", item.empCode},
		{"assigned_by", item.assignedBy},
		{"assign_date", req.AssignDate},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperror.Validation("Missing required fields: %s", strings.Join(missing, ", "))
	}

	assetType, ok := model.CanonicalAssetType(req.AssetType)
	if !ok {
		return nil, apperror.Validation("Invalid asset_type %q", req.AssetType)
	}
	item.assetType = assetType

	if lifecycle.IsCable(assetType) {
		item.serial = lifecycle.NotApplicable
		if ct, ok := model.CanonicalCableType(req.CableType); ok {
			item.cableType = ct
		}
	}

	var err error
	if item.assignDate, err = model.ParseDate(req.AssignDate, s.loc); err != nil {
		return nil, apperror.Validation("Invalid assign_date: %v", err)
	}
	if item.warrantyStart, err = model.ParseOptionalDate(req.WarrantyStart, s.loc); err != nil {
		return nil, apperror.Validation("Invalid warranty_start: %v", err)
	}
	if item.warrantyEnd, err = model.ParseOptionalDate(req.WarrantyEnd, s.loc); err != nil {
		return nil, apperror.Validation("Invalid warranty_end: %v", err)
	}
	return item, nil
}

// charger derives the dependent charger item of a laptop or mini desktop
func (it *assignItem) charger() *assignItem {
	return &assignItem{
		psdID:         it.psdID,
		assetCode:     lifecycle.ChargerCode(it.assetCode),
		serial:        it.chargerSerial,
		assetType:     model.TypeCharger,
		assetBrand:    it.assetBrand,
		parentCode:    it.assetCode,
		empCode:       it.empCode,
		assignedBy:    it.assignedBy,
		assignDate:    it.assignDate,
		remark:        lifecycle.ChargerRemark(it.assetCode),
		warrantyStart: it.warrantyStart,
		warrantyEnd:   it.warrantyEnd,
		location:      it.location,
	}
}

func (it *assignItem) newAsset() model.Asset {
	a := model.Asset{
		AssetCode:     it.assetCode,
		AssetType:     it.assetType,
		AssetBrand:    it.assetBrand,
		ModelName:     it.modelName,
		Processor:     it.processor,
		CableType:     it.cableType,
		WarrantyStart: it.warrantyStart,
		WarrantyEnd:   it.warrantyEnd,
		Location:      it.location,
		Status:        model.StatusAvailable,
	}
	if it.serial != "" {
		serial := it.serial
		a.SerialNumber = &serial
	}
	if it.parentCode != "" {
		parent := it.parentCode
		a.ParentAssetCode = &parent
	}
	return a
}

// apply runs lookup, creation, status swap and ledger inserts for one item
// in a single transaction. It returns the type of the asset as stored.
func (s *AssignmentService) apply(ctx context.Context, it *assignItem) (string, error) {
	defer prometheus.TrackDBOperation("assign_asset")()

	var assetType string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var employees int64
		if err := tx.Model(&model.Employee{}).Where("emp_code = ?", it.empCode).Count(&employees).Error; err != nil {
			return apperror.Store(err, "Failed to look up employee")
		}
		if employees == 0 {
			return apperror.NotFound("Employee %s not found", it.empCode)
		}

		var asset model.Asset
		err := tx.Where("asset_code = ?", it.assetCode).First(&asset).Error
		switch {
		case isNotFound(err):
			if err := ensureSerialFree(tx, it.serial); err != nil {
				return err
			}
			asset = it.newAsset()
			if err := tx.Create(&asset).Error; err != nil {
				if isDuplicate(err) {
					return apperror.Conflict("Asset %s or serial number %s was registered concurrently, retry", it.assetCode, it.serial)
				}
				return apperror.Store(err, "Failed to create asset")
			}
		case err != nil:
			return apperror.Store(err, "Failed to look up asset")
		default:
			if !lifecycle.CanAssign(asset.Status) {
				return apperror.Conflict("%s", lifecycle.RejectReason(it.assetCode, asset.Status, lifecycle.EvAssign))
			}
		}

		updates := map[string]interface{}{"status": model.StatusAssigned}
		if !lifecycle.IsCable(asset.AssetType) {
			if it.warrantyStart != nil {
				updates["warranty_start"] = *it.warrantyStart
			}
			if it.warrantyEnd != nil {
				updates["warranty_end"] = *it.warrantyEnd
			}
		}
		if it.location != "" {
			updates["location"] = it.location
		}

		res := tx.Model(&model.Asset{}).
			Where("asset_code = ? AND status IN ?", it.assetCode, lifecycle.SourcesFor(lifecycle.EvAssign, model.StatusAssigned)).
			Updates(updates)
		if res.Error != nil {
			return apperror.Store(res.Error, "Failed to update asset status")
		}
		if res.RowsAffected != 1 {
			return apperror.Conflict("Asset %s is currently assigned", it.assetCode)
		}

		active := model.AssignmentActive{
			PsdID:        it.psdID,
			AssetCode:    it.assetCode,
			EmpCode:      it.empCode,
			AssignedBy:   it.assignedBy,
			AssignDate:   it.assignDate,
			AssignRemark: it.remark,
		}
		if err := tx.Create(&active).Error; err != nil {
			if isDuplicate(err) {
				return apperror.Conflict("Asset %s is currently assigned", it.assetCode)
			}
			return apperror.Store(err, "Failed to record assignment")
		}

		history := model.AssignmentHistory{
			PsdID:        it.psdID,
			AssetCode:    it.assetCode,
			EmpCode:      it.empCode,
			AssignedBy:   it.assignedBy,
			AssignDate:   it.assignDate,
			AssignRemark: it.remark,
		}
		if err := tx.Create(&history).Error; err != nil {
			return apperror.Store(err, "Failed to record assignment history")
		}
		assetType = asset.AssetType
		return nil
	})
	return assetType, err
}

// Return closes the custody of an asset: the open history row is closed,
// the active row removed and the asset made available, all or nothing.
func (s *AssignmentService) Return(ctx context.Context, code string, in ReturnInput, actor string) (*model.AssignmentHistory, error) {
	log := logger.FromContext(ctx)
	defer prometheus.TrackDBOperation("return_asset")()

	code = strings.TrimSpace(code)
	if strings.TrimSpace(in.ReturnDate) == "" {
		return nil, apperror.Validation("return_date is required")
	}
	returnDate, err := model.ParseDate(in.ReturnDate, s.loc)
	if err != nil {
		return nil, apperror.Validation("Invalid return_date: %v", err)
	}
	remark := strings.TrimSpace(in.ReturnRemark)
	if remark == "" {
		remark = "Returned"
	}
	returnedTo := strings.TrimSpace(actor)

	var closed model.AssignmentHistory
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active model.AssignmentActive
		if err := tx.Where("asset_code = ?", code).First(&active).Error; err != nil {
			if isNotFound(err) {
				return apperror.NotFound("No active assignment found for asset %s", code)
			}
			return err
		}
		if returnDate.Before(active.AssignDate) {
			return apperror.Validation("return_date %s is before assign_date %s", returnDate, active.AssignDate)
		}

		err := tx.Where("asset_code = ? AND emp_code = ? AND return_date IS NULL", code, active.EmpCode).
			Order("id DESC").First(&closed).Error
		switch {
		case isNotFound(err):
			closed = model.AssignmentHistory{
				PsdID:        active.PsdID,
				AssetCode:    active.AssetCode,
				EmpCode:      active.EmpCode,
				AssignedBy:   active.AssignedBy,
				AssignDate:   active.AssignDate,
				AssignRemark: active.AssignRemark,
				ReturnDate:   &returnDate,
				ReturnedTo:   &returnedTo,
				ReturnRemark: &remark,
			}
			if err := tx.Create(&closed).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			closed.ReturnDate = &returnDate
			closed.ReturnedTo = &returnedTo
			closed.ReturnRemark = &remark
			res := tx.Model(&model.AssignmentHistory{}).
				Where("id = ? AND return_date IS NULL", closed.ID).
				Updates(map[string]interface{}{
					"return_date":   returnDate,
					"returned_to":   returnedTo,
					"return_remark": remark,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != 1 {
				return apperror.New(apperror.KindIntegrity, "History of asset %s was closed concurrently", code)
			}
		}

		if res := tx.Where("id = ?", active.ID).Delete(&model.AssignmentActive{}); res.Error != nil {
			return res.Error
		} else if res.RowsAffected != 1 {
			return apperror.New(apperror.KindIntegrity, "Active assignment of %s was removed concurrently", code)
		}

		updates := map[string]interface{}{"status": model.StatusAvailable}
		if loc := strings.TrimSpace(in.Location); loc != "" {
			updates["location"] = loc
		}
		res := tx.Model(&model.Asset{}).
			Where("asset_code = ? AND status IN ?", code, lifecycle.SourcesFor(lifecycle.EvReturn, model.StatusAvailable)).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return apperror.New(apperror.KindIntegrity, "Asset %s is not in assigned status", code)
		}
		return nil
	})
	recordTransition(string(lifecycle.EvReturn), err)
	if err != nil {
		switch apperror.KindOf(err) {
		case apperror.KindValidation, apperror.KindNotFound, apperror.KindIntegrity:
			return nil, err
		case apperror.KindTransient:
			log.Warn("Return interrupted", zap.String("asset_code", code), zap.Error(err))
			return nil, apperror.Store(err, "Return of asset "+code+" was interrupted, retry")
		}
		log.Error("Return transaction rolled back", zap.String("asset_code", code), zap.Error(err))
		return nil, apperror.Wrap(err, apperror.KindIntegrity, "Return of asset "+code+" could not be completed")
	}

	log.Info("Asset returned",
		zap.String("asset_code", code),
		zap.String("emp_code", closed.EmpCode),
		zap.String("returned_to", returnedTo))
	return &closed, nil
}

func (s *AssignmentService) ledgerQuery(ctx context.Context, table string) *gorm.DB {
	return s.db.WithContext(ctx).
		Table(table+" AS l").
		Select("l.*, e.name AS emp_name, a.asset_type, a.asset_brand, a.model_name, a.serial_number, a.location").
		Joins("LEFT JOIN assets a ON a.asset_code = l.asset_code").
		Joins("LEFT JOIN employees e ON e.emp_code = l.emp_code")
}

// Live lists every open assignment, newest first
func (s *AssignmentService) Live(ctx context.Context) ([]LedgerEntry, error) {
	var rows []LedgerEntry
	err := s.ledgerQuery(ctx, model.AssignmentActive{}.TableName()).
		Order("l.assign_date DESC, l.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.Store(err, "Failed to retrieve live assignments")
	}
	return rows, nil
}

// LiveForEmployee lists the open assignments held by one employee
func (s *AssignmentService) LiveForEmployee(ctx context.Context, empCode string) ([]LedgerEntry, error) {
	var rows []LedgerEntry
	err := s.ledgerQuery(ctx, model.AssignmentActive{}.TableName()).
		Where("l.emp_code = ?", empCode).
		Order("l.assign_date DESC, l.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.Store(err, "Failed to retrieve employee assignments")
	}
	return rows, nil
}

// History lists every ledger row, open and closed, newest first
func (s *AssignmentService) History(ctx context.Context) ([]LedgerEntry, error) {
	var rows []LedgerEntry
	err := s.ledgerQuery(ctx, model.AssignmentHistory{}.TableName()).
		Order("l.assign_date DESC, l.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.Store(err, "Failed to retrieve assignment history")
	}
	return rows, nil
}
