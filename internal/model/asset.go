package model

import (
	"strings"
	"time"
)

// Status is the lifecycle state of an asset
type Status string

const (
	StatusAvailable         Status = "available"
	StatusReadyToBeAssigned Status = "ready_to_be_assigned"
	StatusAssigned          Status = "assigned"
	StatusScrapped          Status = "scrapped"
	StatusRetired           Status = "retired"
)

// AllStatuses lists every status in display order
var AllStatuses = []Status{
	StatusAvailable,
	StatusReadyToBeAssigned,
	StatusAssigned,
	StatusScrapped,
	StatusRetired,
}

// ValidStatus reports whether s is a known lifecycle status
func ValidStatus(s Status) bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Asset types
const (
	TypeMonitor          = "Monitor"
	TypeDesktop          = "Desktop"
	TypeMiniDesktop      = "Mini Desktop"
	TypeWindowsLaptop    = "Windows Laptop"
	TypeMacLaptop        = "Mac Laptop"
	TypeMouse            = "Mouse"
	TypeWirelessMouse    = "Wireless Mouse"
	TypeHeadset          = "Headset"
	TypeWirelessHeadset  = "Wireless Headset"
	TypeKeyboard         = "Keyboard"
	TypeWirelessKeyboard = "Wireless Keyboard"
	TypeUsbCamera        = "Usb Camera"
	TypeCables           = "Cables"
	TypeLaptopBag        = "Laptop Bag"
	TypeWifiDevice       = "Wifi Device"
	TypeDockingStation   = "Docking Station"
	TypeUPS              = "UPS"
	TypeModem            = "Jio/Airtel Modem"
	TypeCharger          = "Charger"
	TypeOthers           = "Others"
)

// AssetTypes is the fixed asset category vocabulary
var AssetTypes = []string{
	TypeMonitor, TypeDesktop, TypeMiniDesktop, TypeWindowsLaptop, TypeMacLaptop,
	TypeMouse, TypeWirelessMouse, TypeHeadset, TypeWirelessHeadset,
	TypeKeyboard, TypeWirelessKeyboard, TypeUsbCamera, TypeCables,
	TypeLaptopBag, TypeWifiDevice, TypeDockingStation, TypeUPS, TypeModem,
	TypeCharger, TypeOthers,
}

// CableTypes is the vocabulary of cable_type for Cables assets
var CableTypes = []string{
	"MONITOR POWER CABLE", "DESKTOP POWER CABLE", "LAPTOP POWER CABLE",
	"HDMI CABLE", "DP CABLE", "HDMI TO VGA CABLE", "VGA TO HDMI CABLE",
	"VGA CABLE", "WIFI EXTENDER", "POWER CABLE EXTENSION", "LAN CABLE",
}

// CanonicalAssetType matches s case-insensitively against AssetTypes.
// "modem" is accepted for the modem category.
func CanonicalAssetType(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "modem") {
		return TypeModem, true
	}
	for _, t := range AssetTypes {
		if strings.EqualFold(t, s) {
			return t, true
		}
	}
	return "", false
}

// CanonicalCableType matches s case-insensitively against CableTypes
func CanonicalCableType(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, t := range CableTypes {
		if strings.EqualFold(t, s) {
			return t, true
		}
	}
	return "", false
}

// Asset represents one physical, independently trackable item
type Asset struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	AssetCode       string    `json:"asset_code" gorm:"type:varchar(64);uniqueIndex;not null"`
	SerialNumber    *string   `json:"serial_number" gorm:"type:varchar(128);index:idx_assets_serial_number,unique,where:serial_number <> 'N/A'"`
	AssetType       string    `json:"asset_type" gorm:"type:varchar(64);index;not null"`
	AssetBrand      string    `json:"asset_brand" gorm:"type:varchar(100)"`
	ModelName       string    `json:"model_name" gorm:"type:varchar(100)"`
	Processor       string    `json:"processor" gorm:"type:varchar(100)"`
	CableType       string    `json:"cable_type,omitempty" gorm:"type:varchar(64)"`
	ParentAssetCode *string   `json:"parent_asset_code,omitempty" gorm:"type:varchar(64);index"`
	WarrantyStart   *Date     `json:"warranty_start"`
	WarrantyEnd     *Date     `json:"warranty_end"`
	PurchaseDate    *Date     `json:"purchase_date"`
	LotNumber       string    `json:"lot_number" gorm:"type:varchar(32);index"`
	Location        string    `json:"location" gorm:"type:varchar(64)"`
	Status          Status    `json:"status" gorm:"type:varchar(32);index;not null;default:'available'"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Derived on single-asset reads from the linked Charger row
	ChargerSerial string `json:"charger_serial,omitempty" gorm:"-"`
}

func (Asset) TableName() string { return "assets" }

// Serial returns the serial number or "" when none is recorded
func (a *Asset) Serial() string {
	if a.SerialNumber == nil {
		return ""
	}
	return *a.SerialNumber
}

// Sequence is a named atomic counter
type Sequence struct {
	Name  string `gorm:"primaryKey;type:varchar(64)"`
	Value int64  `gorm:"not null;default:0"`
}

func (Sequence) TableName() string { return "sequences" }

// All returns every persisted model, for migrations
func All() []interface{} {
	return []interface{}{
		&Asset{},
		&AssignmentActive{},
		&AssignmentHistory{},
		&ScrapRecord{},
		&AssetModification{},
		&Employee{},
		&UserLogin{},
		&PasswordResetOTP{},
		&Sequence{},
	}
}
