package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Shreehari27/Asset-Management/internal/model"
)

// newTestDB opens a private in-memory database with every table migrated.
// A single connection keeps concurrent callers serialized.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func seedEmployee(t *testing.T, db *gorm.DB, code, name string, isIT bool) {
	t.Helper()
	require.NoError(t, db.Create(&model.Employee{
		EmpCode: code,
		Name:    name,
		Email:   code + "@example.com",
		IsIT:    isIT,
		Status:  EmployeeActive,
	}).Error)
}

func seedAsset(t *testing.T, db *gorm.DB, code, assetType string, status model.Status) model.Asset {
	t.Helper()
	serial := "SN-" + code
	a := model.Asset{
		AssetCode:    code,
		SerialNumber: &serial,
		AssetType:    assetType,
		AssetBrand:   "Dell",
		ModelName:    "P2422h",
		Status:       status,
	}
	require.NoError(t, db.Create(&a).Error)
	return a
}

func loadAsset(t *testing.T, db *gorm.DB, code string) model.Asset {
	t.Helper()
	var a model.Asset
	require.NoError(t, db.Where("asset_code = ?", code).First(&a).Error)
	return a
}

func count(t *testing.T, db *gorm.DB, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Where(query, args...).Count(&n).Error)
	return n
}

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s, time.UTC)
	require.NoError(t, err)
	return d
}

func fixedClock(s string) func() time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return ts }
}

var bg = context.Background()

// beforeFirst runs fn once, inside the transaction of the first create or
// update against table, just before that statement executes. It stands in
// for a competing writer whose change lands between a read and a write.
func beforeFirst(t *testing.T, db *gorm.DB, op, table string, fn func(tx *gorm.DB)) {
	t.Helper()
	fired := false
	hook := func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		fn(tx.Session(&gorm.Session{NewDB: true}))
	}

	name := "test:before_" + op + "_" + table
	var err error
	switch op {
	case "create":
		err = db.Callback().Create().Before("gorm:create").Register(name, hook)
	case "update":
		err = db.Callback().Update().Before("gorm:update").Register(name, hook)
	default:
		t.Fatalf("unsupported operation %q", op)
	}
	require.NoError(t, err)
}
