package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Shreehari27/Asset-Management/internal/lifecycle"
	"github.com/Shreehari27/Asset-Management/internal/model"
	"github.com/Shreehari27/Asset-Management/pkg/apperror"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
	"github.com/Shreehari27/Asset-Management/prometheus"
)

const (
	defaultScrapper = "SYSTEM"
	statsMonths     = 12
)

// ScrapService records terminal disposals and serves the scrap register
type ScrapService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewScrapService(db *gorm.DB, loc *time.Location) *ScrapService {
	return &ScrapService{db: db, loc: loc, now: time.Now}
}

// ScrapInput is the body of a scrap request
type ScrapInput struct {
	AssetCode   string `json:"asset_code"`
	ScrapReason string `json:"scrap_reason"`
	ScrapDate   string `json:"scrap_date"`
	Disposition string `json:"disposition"`
}

// ScrapStat is the number of disposals in one calendar month
type ScrapStat struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

// Scrap moves an available asset to a terminal status and snapshots it
func (s *ScrapService) Scrap(ctx context.Context, in ScrapInput, actor string) (*model.ScrapRecord, error) {
	log := logger.FromContext(ctx)
	defer prometheus.TrackDBOperation("scrap_asset")()

	code := strings.TrimSpace(in.AssetCode)
	if code == "" {
		return nil, apperror.Validation("asset_code is required")
	}

	event := lifecycle.EvScrap
	to := model.StatusScrapped
	switch model.Status(strings.TrimSpace(in.Disposition)) {
	case "", model.StatusScrapped:
	case model.StatusRetired:
		event, to = lifecycle.EvRetire, model.StatusRetired
	default:
		return nil, apperror.Validation("Invalid disposition %q", in.Disposition)
	}

	date := today(s.now(), s.loc)
	if strings.TrimSpace(in.ScrapDate) != "" {
		d, err := model.ParseDate(in.ScrapDate, s.loc)
		if err != nil {
			return nil, apperror.Validation("Invalid scrap_date: %v", err)
		}
		date = d
	}

	scrappedBy := strings.TrimSpace(actor)
	if scrappedBy == "" {
		scrappedBy = defaultScrapper
	}

	var record model.ScrapRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var asset model.Asset
		if err := tx.Where("asset_code = ?", code).First(&asset).Error; err != nil {
			if isNotFound(err) {
				return apperror.NotFound("Asset %s not found", code)
			}
			return apperror.Store(err, "Failed to look up asset")
		}
		if _, ok := lifecycle.TransitionFor(asset.Status, event); !ok {
			return apperror.Conflict("%s", lifecycle.RejectReason(code, asset.Status, event))
		}

		snapshot, err := json.Marshal(asset)
		if err != nil {
			return apperror.Wrap(err, apperror.KindInternal, "Failed to snapshot asset")
		}

		record = model.ScrapRecord{
			AssetCode:    asset.AssetCode,
			SerialNumber: asset.SerialNumber,
			AssetType:    asset.AssetType,
			AssetBrand:   asset.AssetBrand,
			ModelName:    asset.ModelName,
			Disposition:  to,
			Snapshot:     datatypes.JSON(snapshot),
			ScrapDate:    date,
			ScrapReason:  strings.TrimSpace(in.ScrapReason),
			ScrappedBy:   scrappedBy,
		}
		if err := tx.Create(&record).Error; err != nil {
			return apperror.Store(err, "Failed to record scrap")
		}

		res := tx.Model(&model.Asset{}).
			Where("asset_code = ? AND status IN ?", code, lifecycle.SourcesFor(event, to)).
			Update("status", to)
		if res.Error != nil {
			return apperror.Store(res.Error, "Failed to update asset status")
		}
		if res.RowsAffected != 1 {
			return apperror.Conflict("Only available assets can be scrapped")
		}
		return nil
	})
	recordTransition(string(event), err)
	if err != nil {
		log.Warn("Scrap rejected", zap.String("asset_code", code), zap.Error(err))
		return nil, err
	}

	log.Info("Asset scrapped",
		zap.String("asset_code", code),
		zap.String("disposition", string(to)),
		zap.String("scrapped_by", scrappedBy))
	return &record, nil
}

// List returns the scrap register, newest first
func (s *ScrapService) List(ctx context.Context) ([]model.ScrapRecord, error) {
	var rows []model.ScrapRecord
	err := s.db.WithContext(ctx).Order("scrap_date DESC, id DESC").Find(&rows).Error
	if err != nil {
		return nil, apperror.Store(err, "Failed to retrieve scrapped assets")
	}
	return rows, nil
}

// Details returns the latest scrap record of an asset
func (s *ScrapService) Details(ctx context.Context, code string) (*model.ScrapRecord, error) {
	var row model.ScrapRecord
	err := s.db.WithContext(ctx).Where("asset_code = ?", code).Order("id DESC").First(&row).Error
	if isNotFound(err) {
		return nil, apperror.NotFound("No scrap record found for asset %s", code)
	}
	if err != nil {
		return nil, apperror.Store(err, "Failed to retrieve scrap record")
	}
	return &row, nil
}

// Stats counts disposals per month for the most recent months with data
func (s *ScrapService) Stats(ctx context.Context) ([]ScrapStat, error) {
	var dates []model.Date
	err := s.db.WithContext(ctx).Model(&model.ScrapRecord{}).Pluck("scrap_date", &dates).Error
	if err != nil {
		return nil, apperror.Store(err, "Failed to retrieve scrap statistics")
	}

	counts := map[[2]int]int64{}
	for _, d := range dates {
		counts[[2]int{d.Year(), int(d.Month())}]++
	}

	stats := make([]ScrapStat, 0, len(counts))
	for k, n := range counts {
		stats = append(stats, ScrapStat{Year: k[0], Month: k[1], Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Year != stats[j].Year {
			return stats[i].Year > stats[j].Year
		}
		return stats[i].Month > stats[j].Month
	})
	if len(stats) > statsMonths {
		stats = stats[:statsMonths]
	}
	return stats, nil
}
