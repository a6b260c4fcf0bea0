package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Shreehari27/Asset-Management/internal/model"
	"github.com/Shreehari27/Asset-Management/pkg/apperror"
	"github.com/Shreehari27/Asset-Management/prometheus"
)

// ItemResult is the outcome of one item of a bulk request. Exactly one of
// Message and Error is set.
type ItemResult struct {
	AssetCode string        `json:"asset_code"`
	Message   string        `json:"message,omitempty"`
	Error     string        `json:"error,omitempty"`
	Kind      apperror.Kind `json:"kind,omitempty"`
}

// OK reports whether the item succeeded
func (r ItemResult) OK() bool {
	return r.Error == ""
}

func successResult(code, message string) ItemResult {
	return ItemResult{AssetCode: code, Message: message}
}

func failureResult(code string, err error) ItemResult {
	return ItemResult{
		AssetCode: code,
		Error:     apperror.MessageOf(err),
		Kind:      apperror.KindOf(err),
	}
}

func notProcessedResult(code string) ItemResult {
	return ItemResult{
		AssetCode: code,
		Error:     "not processed: request cancelled",
		Kind:      apperror.KindTransient,
	}
}

// resultLabel is the metrics label of an operation outcome
func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	return strings.ToLower(string(apperror.KindOf(err)))
}

func recordTransition(event string, err error) {
	prometheus.RecordTransition(event, resultLabel(err))
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate reports a unique constraint violation. Drivers translate it
// to gorm.ErrDuplicatedKey when TranslateError is enabled.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// DateRange filters reports by purchase date. Nil bounds are open.
type DateRange struct {
	From *model.Date
	To   *model.Date
}

func (r DateRange) apply(db *gorm.DB) *gorm.DB {
	if r.From != nil {
		db = db.Where("purchase_date >= ?", *r.From)
	}
	if r.To != nil {
		db = db.Where("purchase_date <= ?", *r.To)
	}
	return db
}

// today returns the current calendar date in loc
func today(now time.Time, loc *time.Location) model.Date {
	if loc == nil {
		loc = time.UTC
	}
	return model.NewDate(now.In(loc))
}

func strPtr(s string) *string {
	return &s
}
