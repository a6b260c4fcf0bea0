package lifecycle

import (
	"fmt"

	"github.com/Shreehari27/Asset-Management/internal/model"
)

// Event is something that moves an asset between statuses.
type Event string

const (
	EvAssign Event = "assign"
	EvReturn Event = "return"
	EvScrap  Event = "scrap"
	EvRetire Event = "retire"
	EvModify Event = "modify"
)

// StatusNone stands for an asset code the store has never seen.
const StatusNone model.Status = ""

// Transition is a single allowed edge in the asset state machine.
type Transition struct {
	From  model.Status
	To    model.Status
	Event Event
}

var transitionsTable = []Transition{
	// Assign path
	{From: StatusNone, To: model.StatusAssigned, Event: EvAssign},
	{From: model.StatusAvailable, To: model.StatusAssigned, Event: EvAssign},
	{From: model.StatusReadyToBeAssigned, To: model.StatusAssigned, Event: EvAssign},

	// Return path
	{From: model.StatusAssigned, To: model.StatusAvailable, Event: EvReturn},

	// Terminal disposal
	{From: model.StatusAvailable, To: model.StatusScrapped, Event: EvScrap},
	{From: model.StatusAvailable, To: model.StatusRetired, Event: EvRetire},

	// Explicit status edits
	{From: model.StatusAvailable, To: model.StatusReadyToBeAssigned, Event: EvModify},
	{From: model.StatusReadyToBeAssigned, To: model.StatusAvailable, Event: EvModify},
}

// TransitionFor returns the allowed transition for a given status and event.
func TransitionFor(from model.Status, ev Event) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}

// SourcesFor lists every status from which ev is allowed to reach to.
// Used to build compare-and-swap updates.
func SourcesFor(ev Event, to model.Status) []model.Status {
	var out []model.Status
	for _, tr := range transitionsTable {
		if tr.Event == ev && tr.To == to && tr.From != StatusNone {
			out = append(out, tr.From)
		}
	}
	return out
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s model.Status) bool {
	for _, tr := range transitionsTable {
		if tr.From == s {
			return false
		}
	}
	return true
}

// CanAssign reports whether an asset in status s may be assigned.
func CanAssign(s model.Status) bool {
	_, ok := TransitionFor(s, EvAssign)
	return ok
}

// CanModifyStatus reports whether an explicit edit may move from to to.
// Leaving the status unchanged is always allowed.
func CanModifyStatus(from, to model.Status) bool {
	if from == to {
		return true
	}
	tr, ok := TransitionFor(from, EvModify)
	return ok && tr.To == to
}

// RejectReason is the human readable reason an event is not allowed
// from the asset's current status.
func RejectReason(code string, from model.Status, ev Event) string {
	switch ev {
	case EvAssign:
		return fmt.Sprintf("Asset %s is currently %s", code, from)
	case EvScrap, EvRetire:
		return "Only available assets can be scrapped"
	case EvReturn:
		return fmt.Sprintf("Asset %s is not assigned", code)
	default:
		return fmt.Sprintf("Asset %s cannot move from %s", code, from)
	}
}
