package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Shreehari27/Asset-Management/internal/model"
)

func TestTransitionFor(t *testing.T) {
	tests := []struct {
		from  model.Status
		ev    Event
		to    model.Status
		allow bool
	}{
		{StatusNone, EvAssign, model.StatusAssigned, true},
		{model.StatusAvailable, EvAssign, model.StatusAssigned, true},
		{model.StatusReadyToBeAssigned, EvAssign, model.StatusAssigned, true},
		{model.StatusAssigned, EvAssign, "", false},
		{model.StatusScrapped, EvAssign, "", false},
		{model.StatusAssigned, EvReturn, model.StatusAvailable, true},
		{model.StatusAvailable, EvReturn, "", false},
		{model.StatusAvailable, EvScrap, model.StatusScrapped, true},
		{model.StatusAvailable, EvRetire, model.StatusRetired, true},
		{model.StatusAssigned, EvScrap, "", false},
		{model.StatusReadyToBeAssigned, EvScrap, "", false},
		{model.StatusScrapped, EvScrap, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.ev), func(t *testing.T) {
			tr, ok := TransitionFor(tt.from, tt.ev)
			assert.Equal(t, tt.allow, ok)
			if ok {
				assert.Equal(t, tt.to, tr.To)
			}
		})
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, IsTerminal(model.StatusScrapped))
	assert.True(t, IsTerminal(model.StatusRetired))
	assert.False(t, IsTerminal(model.StatusAvailable))
	assert.False(t, IsTerminal(model.StatusAssigned))
}

func TestSourcesFor(t *testing.T) {
	assert.ElementsMatch(t,
		[]model.Status{model.StatusAvailable, model.StatusReadyToBeAssigned},
		SourcesFor(EvAssign, model.StatusAssigned))
	assert.Equal(t, []model.Status{model.StatusAvailable}, SourcesFor(EvScrap, model.StatusScrapped))
}

func TestCanModifyStatus(t *testing.T) {
	assert.True(t, CanModifyStatus(model.StatusAvailable, model.StatusReadyToBeAssigned))
	assert.True(t, CanModifyStatus(model.StatusReadyToBeAssigned, model.StatusAvailable))
	assert.True(t, CanModifyStatus(model.StatusAssigned, model.StatusAssigned))
	assert.False(t, CanModifyStatus(model.StatusAssigned, model.StatusAvailable))
	assert.False(t, CanModifyStatus(model.StatusAvailable, model.StatusScrapped))
}

func TestRejectReason(t *testing.T) {
	assert.Equal(t, "Asset M100 is currently assigned", RejectReason("M100", model.StatusAssigned, EvAssign))
	assert.Equal(t, "Asset M100 is currently scrapped", RejectReason("M100", model.StatusScrapped, EvAssign))
	assert.Equal(t, "Only available assets can be scrapped", RejectReason("M100", model.StatusAssigned, EvScrap))
}

func TestLotNumber(t *testing.T) {
	d := model.NewDate(time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "LT05JAN2025", LotNumber(d))

	d = model.NewDate(time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "LT31DEC2024", LotNumber(d))
}

func TestCableCode(t *testing.T) {
	assert.Equal(t, "C001", CableCode(1))
	assert.Equal(t, "C042", CableCode(42))
	assert.Equal(t, "C1000", CableCode(1000))
}

func TestChargerHelpers(t *testing.T) {
	assert.Equal(t, "L1-CH", ChargerCode("L1"))
	assert.True(t, HasCharger(model.TypeWindowsLaptop))
	assert.True(t, HasCharger(model.TypeMacLaptop))
	assert.True(t, HasCharger(model.TypeMiniDesktop))
	assert.False(t, HasCharger(model.TypeDesktop))
	assert.Equal(t, "Assigned along with L1", ChargerRemark("L1"))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Dell", NormalizeName("DELL"))
	assert.Equal(t, "Thinkpad e14", NormalizeName(" thinkPad E14 "))
	assert.Equal(t, "", NormalizeName("  "))
}
