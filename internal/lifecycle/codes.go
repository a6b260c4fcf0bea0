package lifecycle

import (
	"fmt"
	"strings"

	"github.com/Shreehari27/Asset-Management/internal/model"
)

const (
	// NotApplicable is the serial number of non serialized items
	NotApplicable = "N/A"

	chargerSuffix = "-CH"

	// CableSequence names the counter behind cable codes
	CableSequence = "cable_code"
)

// LotNumber derives the lot from a purchase date, e.g. LT05JAN2025.
func LotNumber(d model.Date) string {
	return "LT" + strings.ToUpper(d.Format("02Jan2006"))
}

// CableCode formats the n-th cable code, e.g. C001.
func CableCode(n int64) string {
	return fmt.Sprintf("C%03d", n)
}

// ChargerCode is the code of the charger provisioned with a parent asset.
func ChargerCode(parent string) string {
	return parent + chargerSuffix
}

// HasCharger reports whether assets of this type ship with a tracked charger.
func HasCharger(assetType string) bool {
	switch assetType {
	case model.TypeWindowsLaptop, model.TypeMacLaptop, model.TypeMiniDesktop:
		return true
	}
	return false
}

func IsCable(assetType string) bool {
	return assetType == model.TypeCables
}

func IsCharger(assetType string) bool {
	return assetType == model.TypeCharger
}

// NormalizeName upper-cases the first letter and lower-cases the rest.
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// ChargerRemark is the assign remark of a synthesized charger item.
func ChargerRemark(parent string) string {
	return "Assigned along with " + parent
}
