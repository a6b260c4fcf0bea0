package model

import (
	"time"

	"gorm.io/datatypes"
)

// ScrapRecord is a terminal disposal event with a snapshot of the asset as
// it was when scrapped
type ScrapRecord struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	AssetCode    string         `json:"asset_code" gorm:"type:varchar(64);index;not null"`
	SerialNumber *string        `json:"serial_number" gorm:"type:varchar(128)"`
	AssetType    string         `json:"asset_type" gorm:"type:varchar(64)"`
	AssetBrand   string         `json:"asset_brand" gorm:"type:varchar(100)"`
	ModelName    string         `json:"model_name" gorm:"type:varchar(100)"`
	Disposition  Status         `json:"disposition" gorm:"type:varchar(32);not null;default:'scrapped'"`
	Snapshot     datatypes.JSON `json:"snapshot"`
	ScrapDate    Date           `json:"scrap_date" gorm:"index;not null"`
	ScrapReason  string         `json:"scrap_reason" gorm:"type:text"`
	ScrappedBy   string         `json:"scrapped_by" gorm:"type:varchar(32);not null"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (ScrapRecord) TableName() string { return "asset_scrap" }

// AssetModification is one entry of the append-only per-asset audit trail
type AssetModification struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	AssetCode        string    `json:"asset_code" gorm:"type:varchar(64);index;not null"`
	ModifiedBy       string    `json:"modified_by" gorm:"type:varchar(32);not null"`
	Modification     string    `json:"modification" gorm:"type:text;not null"`
	ModificationDate Date      `json:"modification_date" gorm:"not null"`
	CreatedAt        time.Time `json:"created_at"`
}

func (AssetModification) TableName() string { return "asset_modifications" }
