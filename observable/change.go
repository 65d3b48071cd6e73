package observable

import "fmt"

// ChangeKind identifies the shape of a notified structural change.
type ChangeKind int

const (
	// ChangeAdd reports a single appended element, carried in Change.Item.
	ChangeAdd ChangeKind = iota
	// ChangeAddRange reports a batch of appended elements, carried in
	// Change.Items.
	ChangeAddRange
	// ChangeRemove reports a removed element; Change.Index is the position
	// the element occupied before removal.
	ChangeRemove
	// ChangeReset reports that the list changed wholesale and consumers
	// should re-read it.
	ChangeReset
)

var changeKindNames = [...]string{
	ChangeAdd:      "add",
	ChangeAddRange: "add-range",
	ChangeRemove:   "remove",
	ChangeReset:    "reset",
}

func (k ChangeKind) String() string {
	if k < 0 || int(k) >= len(changeKindNames) {
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
	return changeKindNames[k]
}

// Change describes one notified structural change. Kind selects which of
// Item or Items is meaningful. Index is the pre-removal position for
// ChangeRemove and -1 for every other kind.
type Change[T any] struct {
	Kind  ChangeKind
	Item  T
	Items []T
	Index int
}

// Sink receives ordered change notifications from an ObservableList.
//
// Deliveries are serialized: a sink never observes two notifications
// concurrently or out of the order their mutations completed. A sink must
// not call back into the list from either method; with an immediate
// dispatcher a re-entrant mutation panics with ErrReentrantCall, and with a
// loop dispatcher it deadlocks against the blocked mutator.
type Sink[T any] interface {
	// Changed is invoked once per notified change.
	Changed(change Change[T])
	// CountChanged is invoked after Changed with the element count the list
	// had when the change was applied.
	CountChanged(count int)
}
