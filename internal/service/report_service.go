package service

import (
	"context"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/Shreehari27/Asset-Management/internal/lifecycle"
	"github.com/Shreehari27/Asset-Management/internal/model"
	"github.com/Shreehari27/Asset-Management/pkg/apperror"
	"github.com/Shreehari27/Asset-Management/prometheus"
)

// ReportService builds read-only rollups over the asset store and ledger.
// Chargers are counted with their parent and left out of every report
// except the dashboard totals.
type ReportService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewReportService(db *gorm.DB, loc *time.Location) *ReportService {
	return &ReportService{db: db, loc: loc, now: time.Now}
}

// StatusCounts is a per-status breakdown
type StatusCounts struct {
	Available         int64 `json:"available"`
	ReadyToBeAssigned int64 `json:"ready_to_be_assigned"`
	Assigned          int64 `json:"assigned"`
	Scrapped          int64 `json:"scrapped"`
	Retired           int64 `json:"retired"`
	Total             int64 `json:"total"`
}

func (c *StatusCounts) add(status model.Status, n int64) {
	switch status {
	case model.StatusAvailable:
		c.Available += n
	case model.StatusReadyToBeAssigned:
		c.ReadyToBeAssigned += n
	case model.StatusAssigned:
		c.Assigned += n
	case model.StatusScrapped:
		c.Scrapped += n
	case model.StatusRetired:
		c.Retired += n
	}
	c.Total += n
}

type DashboardStats struct {
	TotalAssets       int64                    `json:"totalAssets"`
	AssignedAssets    int64                    `json:"assignedAssets"`
	AvailableAssets   int64                    `json:"availableAssets"`
	ReadyToBeAssigned int64                    `json:"readyToBeAssigned"`
	ScrappedAssets    int64                    `json:"scrappedAssets"`
	RetiredAssets     int64                    `json:"retiredAssets"`
	TotalEmployees    int64                    `json:"totalEmployees"`
	AssetTypeSummary  map[string]*StatusCounts `json:"assetTypeSummary"`
	CableTypeSummary  map[string]*StatusCounts `json:"cableTypeSummary"`
}

// StockSummary nests counts as lot, type, brand, model
type StockSummary struct {
	GeneratedAt time.Time                                                   `json:"generated_at"`
	Summary     map[string]map[string]map[string]map[string]*StatusCounts `json:"summary"`
}

type ReorderRow struct {
	AssetType         string `json:"asset_type"`
	Available         int64  `json:"available"`
	ReadyToBeAssigned int64  `json:"ready_to_be_assigned"`
	TotalInHand       int64  `json:"total_in_hand"`
}

type ReorderLevel struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Summary     []ReorderRow `json:"summary"`
}

type LotStatistic struct {
	LotNumber       string           `json:"lot_number"`
	TotalItems      int64            `json:"total_items"`
	StatusBreakdown map[string]int64 `json:"status_breakdown"`
	AssetTypes      map[string]int64 `json:"asset_types"`
}

type CableSummary struct {
	CableType string `json:"cable_type"`
	StatusCounts
}

type InventorySummary struct {
	GeneratedAt    time.Time      `json:"generated_at"`
	LotStatistics  []LotStatistic `json:"lot_statistics"`
	CableSummaries []CableSummary `json:"cable_summary"`
}

type LotTotal struct {
	LotNumber  string `json:"lot_number"`
	TotalItems int64  `json:"total_items"`
}

// Tally compares the asset count with the sum over lots. Assets without a
// lot make it unbalanced.
type Tally struct {
	TotalAssets int64      `json:"totalAssets"`
	LotSum      int64      `json:"lotSum"`
	Balanced    bool       `json:"balanced"`
	Details     []LotTotal `json:"details"`
}

type Movement struct {
	Date    model.Date `json:"date"`
	Action  string     `json:"action"`
	EmpCode string     `json:"emp_code"`
	Remark  string     `json:"remark"`
}

type LedgerReport struct {
	AssetCode  string     `json:"asset_code"`
	AssetType  string     `json:"asset_type"`
	AssetBrand string     `json:"asset_brand"`
	ModelName  string     `json:"model_name"`
	Movements  []Movement `json:"movements"`
}

type AgeRow struct {
	LotNumber    string     `json:"lot_number"`
	AssetCode    string     `json:"asset_code"`
	AssetType    string     `json:"asset_type"`
	AssetBrand   string     `json:"asset_brand"`
	ModelName    string     `json:"model_name"`
	PurchaseDate model.Date `json:"purchase_date"`
	AgeDays      int        `json:"age_days"`
	AgeMonths    float64    `json:"age_months"`
	AgeYears     float64    `json:"age_years"`
	Status       string     `json:"status"`
}

// stockGroup is one grouped count of the stock query
type stockGroup struct {
	LotNumber  string
	AssetType  string
	CableType  string
	AssetBrand string
	ModelName  string
	Status     model.Status
	Count      int64
}

type labelCount struct {
	Label  string
	Status model.Status
	Count  int64
}

func (s *ReportService) assets(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&model.Asset{}).Where("asset_type <> ?", model.TypeCharger)
}

// Dashboard returns overall and per-type counts and refreshes the asset
// status gauge
func (s *ReportService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	defer prometheus.TrackDBOperation("dashboard")()
	db := s.db.WithContext(ctx)

	var totals []labelCount
	if err := db.Model(&model.Asset{}).Select("status, COUNT(*) AS count").Group("status").Scan(&totals).Error; err != nil {
		return nil, apperror.Store(err, "Failed to count assets")
	}

	stats := &DashboardStats{
		AssetTypeSummary: map[string]*StatusCounts{},
		CableTypeSummary: map[string]*StatusCounts{},
	}
	gauge := map[string]int64{}
	for _, st := range model.AllStatuses {
		gauge[string(st)] = 0
	}
	var all StatusCounts
	for _, t := range totals {
		all.add(t.Status, t.Count)
		gauge[string(t.Status)] += t.Count
	}
	stats.TotalAssets = all.Total
	stats.AssignedAssets = all.Assigned
	stats.AvailableAssets = all.Available
	stats.ReadyToBeAssigned = all.ReadyToBeAssigned
	stats.ScrappedAssets = all.Scrapped
	stats.RetiredAssets = all.Retired
	prometheus.UpdateAssetsByStatus(gauge)

	if err := db.Model(&model.Employee{}).Count(&stats.TotalEmployees).Error; err != nil {
		return nil, apperror.Store(err, "Failed to count employees")
	}

	var byType []labelCount
	if err := s.assets(ctx).Select("asset_type AS label, status, COUNT(*) AS count").
		Group("asset_type, status").Scan(&byType).Error; err != nil {
		return nil, apperror.Store(err, "Failed to count assets by type")
	}
	for _, r := range byType {
		bucket(stats.AssetTypeSummary, r.Label).add(r.Status, r.Count)
	}

	var byCable []labelCount
	if err := s.db.WithContext(ctx).Model(&model.Asset{}).
		Select("cable_type AS label, status, COUNT(*) AS count").
		Where("asset_type = ? AND cable_type IN ?", model.TypeCables, model.CableTypes).
		Group("cable_type, status").Scan(&byCable).Error; err != nil {
		return nil, apperror.Store(err, "Failed to count cables")
	}
	for _, r := range byCable {
		bucket(stats.CableTypeSummary, r.Label).add(r.Status, r.Count)
	}

	return stats, nil
}

func bucket(m map[string]*StatusCounts, key string) *StatusCounts {
	c, ok := m[key]
	if !ok {
		c = &StatusCounts{}
		m[key] = c
	}
	return c
}

func (s *ReportService) stockGroups(ctx context.Context, r DateRange) ([]stockGroup, error) {
	var rows []stockGroup
	err := r.apply(s.assets(ctx)).
		Select("lot_number, asset_type, cable_type, asset_brand, model_name, status, COUNT(*) AS count").
		Group("lot_number, asset_type, cable_type, asset_brand, model_name, status").
		Order("lot_number, asset_type, asset_brand, model_name").
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.Store(err, "Failed to build stock summary")
	}
	return rows, nil
}

func (s *ReportService) StockSummary(ctx context.Context, r DateRange) (*StockSummary, error) {
	rows, err := s.stockGroups(ctx, r)
	if err != nil {
		return nil, err
	}

	out := &StockSummary{
		GeneratedAt: s.now(),
		Summary:     map[string]map[string]map[string]map[string]*StatusCounts{},
	}
	for _, g := range rows {
		byType, ok := out.Summary[g.LotNumber]
		if !ok {
			byType = map[string]map[string]map[string]*StatusCounts{}
			out.Summary[g.LotNumber] = byType
		}
		byBrand, ok := byType[g.AssetType]
		if !ok {
			byBrand = map[string]map[string]*StatusCounts{}
			byType[g.AssetType] = byBrand
		}
		byModel, ok := byBrand[g.AssetBrand]
		if !ok {
			byModel = map[string]*StatusCounts{}
			byBrand[g.AssetBrand] = byModel
		}
		bucket(byModel, g.ModelName).add(g.Status, g.Count)
	}
	return out, nil
}

func (s *ReportService) ReorderLevel(ctx context.Context, r DateRange) (*ReorderLevel, error) {
	var rows []labelCount
	err := r.apply(s.assets(ctx)).
		Select("asset_type AS label, status, COUNT(*) AS count").
		Group("asset_type, status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.Store(err, "Failed to build reorder level summary")
	}

	byType := map[string]*ReorderRow{}
	for _, row := range rows {
		rr, ok := byType[row.Label]
		if !ok {
			rr = &ReorderRow{AssetType: row.Label}
			byType[row.Label] = rr
		}
		switch row.Status {
		case model.StatusAvailable:
			rr.Available += row.Count
		case model.StatusReadyToBeAssigned:
			rr.ReadyToBeAssigned += row.Count
		}
		rr.TotalInHand = rr.Available + rr.ReadyToBeAssigned
	}

	out := &ReorderLevel{GeneratedAt: s.now(), Summary: make([]ReorderRow, 0, len(byType))}
	for _, rr := range byType {
		out.Summary = append(out.Summary, *rr)
	}
	sort.Slice(out.Summary, func(i, j int) bool { return out.Summary[i].AssetType < out.Summary[j].AssetType })
	return out, nil
}

func (s *ReportService) InventorySummary(ctx context.Context) (*InventorySummary, error) {
	var lotRows []stockGroup
	err := s.assets(ctx).
		Select("lot_number, asset_type, status, COUNT(*) AS count").
		Where("lot_number IS NOT NULL AND lot_number <> ''").
		Group("lot_number, asset_type, status").
		Order("lot_number").
		Scan(&lotRows).Error
	if err != nil {
		return nil, apperror.Store(err, "Failed to build lot statistics")
	}

	out := &InventorySummary{
		GeneratedAt:    s.now(),
		LotStatistics:  []LotStatistic{},
		CableSummaries: []CableSummary{},
	}
	index := map[string]int{}
	for _, g := range lotRows {
		i, ok := index[g.LotNumber]
		if !ok {
			i = len(out.LotStatistics)
			index[g.LotNumber] = i
			out.LotStatistics = append(out.LotStatistics, LotStatistic{
				LotNumber:       g.LotNumber,
				StatusBreakdown: map[string]int64{},
				AssetTypes:      map[string]int64{},
			})
		}
		lot := &out.LotStatistics[i]
		lot.TotalItems += g.Count
		lot.StatusBreakdown[string(g.Status)] += g.Count
		lot.AssetTypes[g.AssetType] += g.Count
	}

	var cableRows []labelCount
	err = s.db.WithContext(ctx).Model(&model.Asset{}).
		Select("cable_type AS label, status, COUNT(*) AS count").
		Where("asset_type = ? AND cable_type IN ?", model.TypeCables, model.CableTypes).
		Group("cable_type, status").
		Order("cable_type").
		Scan(&cableRows).Error
	if err != nil {
		return nil, apperror.Store(err, "Failed to build cable summary")
	}
	cables := map[string]int{}
	for _, r := range cableRows {
		i, ok := cables[r.Label]
		if !ok {
			i = len(out.CableSummaries)
			cables[r.Label] = i
			out.CableSummaries = append(out.CableSummaries, CableSummary{CableType: r.Label})
		}
		out.CableSummaries[i].add(r.Status, r.Count)
	}
	return out, nil
}

func (s *ReportService) Tally(ctx context.Context) (*Tally, error) {
	out := &Tally{Details: []LotTotal{}}
	if err := s.assets(ctx).Count(&out.TotalAssets).Error; err != nil {
		return nil, apperror.Store(err, "Failed to count assets")
	}

	err := s.assets(ctx).
		Select("lot_number, COUNT(*) AS total_items").
		Where("lot_number IS NOT NULL AND lot_number <> ''").
		Group("lot_number").
		Order("lot_number").
		Scan(&out.Details).Error
	if err != nil {
		return nil, apperror.Store(err, "Failed to total lots")
	}
	for _, d := range out.Details {
		out.LotSum += d.TotalItems
	}
	out.Balanced = out.LotSum == out.TotalAssets
	return out, nil
}

// Ledger lists the movements of one asset in date order
func (s *ReportService) Ledger(ctx context.Context, code string) (*LedgerReport, error) {
	var asset model.Asset
	err := s.assets(ctx).Where("asset_code = ?", code).First(&asset).Error
	if isNotFound(err) {
		return nil, apperror.NotFound("Asset not found or is a Charger")
	}
	if err != nil {
		return nil, apperror.Store(err, "Failed to retrieve asset")
	}

	db := s.db.WithContext(ctx)
	var history []model.AssignmentHistory
	if err := db.Where("asset_code = ?", code).Order("id").Find(&history).Error; err != nil {
		return nil, apperror.Store(err, "Failed to retrieve assignment history")
	}
	var scraps []model.ScrapRecord
	if err := db.Where("asset_code = ?", code).Order("id").Find(&scraps).Error; err != nil {
		return nil, apperror.Store(err, "Failed to retrieve scrap records")
	}

	out := &LedgerReport{
		AssetCode:  asset.AssetCode,
		AssetType:  asset.AssetType,
		AssetBrand: asset.AssetBrand,
		ModelName:  asset.ModelName,
		Movements:  []Movement{},
	}
	for _, h := range history {
		out.Movements = append(out.Movements, Movement{
			Date: h.AssignDate, Action: "Assigned", EmpCode: h.EmpCode, Remark: h.AssignRemark,
		})
		if h.ReturnDate != nil {
			m := Movement{Date: *h.ReturnDate, Action: "Returned", EmpCode: h.EmpCode}
			if h.ReturnRemark != nil {
				m.Remark = *h.ReturnRemark
			}
			out.Movements = append(out.Movements, m)
		}
	}
	for _, sc := range scraps {
		out.Movements = append(out.Movements, Movement{
			Date: sc.ScrapDate, Action: "Scrapped", EmpCode: sc.ScrappedBy, Remark: sc.ScrapReason,
		})
	}
	sort.SliceStable(out.Movements, func(i, j int) bool {
		return out.Movements[i].Date.Before(out.Movements[j].Date)
	})
	return out, nil
}

// AgeAnalysis lists in-service assets with a purchase date and their age
func (s *ReportService) AgeAnalysis(ctx context.Context, r DateRange) ([]AgeRow, error) {
	var assets []model.Asset
	err := r.apply(s.assets(ctx)).
		Where("purchase_date IS NOT NULL AND status NOT IN ?", []model.Status{model.StatusScrapped, model.StatusRetired}).
		Order("lot_number, asset_type, asset_brand, model_name").
		Find(&assets).Error
	if err != nil {
		return nil, apperror.Store(err, "Failed to build age analysis")
	}

	asOf := today(s.now(), s.loc)
	rows := make([]AgeRow, 0, len(assets))
	for _, a := range assets {
		days := int(asOf.Sub(a.PurchaseDate.Time).Hours() / 24)
		rows = append(rows, AgeRow{
			LotNumber:    a.LotNumber,
			AssetCode:    a.AssetCode,
			AssetType:    a.AssetType,
			AssetBrand:   a.AssetBrand,
			ModelName:    a.ModelName,
			PurchaseDate: *a.PurchaseDate,
			AgeDays:      days,
			AgeMonths:    round1(float64(days) / 30),
			AgeYears:     round1(float64(days) / 365),
			Status:       string(a.Status),
		})
	}
	return rows, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// classifiedType reports cables by their cable type
func classifiedType(g stockGroup) string {
	if lifecycle.IsCable(g.AssetType) && g.CableType != "" {
		return g.CableType
	}
	return g.AssetType
}
