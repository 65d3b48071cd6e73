package observable_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/Fluttercom/ConcurrentObservable/observable"
)

func TestBatch_CoalescesToReset(t *testing.T) {
	l, sink := newRecordedList()

	l.BeginUpdate(false)
	for i := 0; i < 10; i++ {
		l.Add(i)
	}
	if changes, _ := sink.snapshot(); len(changes) != 0 {
		t.Fatalf("batched adds dispatched %d notifications before EndUpdate", len(changes))
	}
	if err := l.EndUpdate(false, nil); err != nil {
		t.Fatalf("EndUpdate: %v", err)
	}

	changes, counts := sink.snapshot()
	if len(changes) != 1 || changes[0].Kind != observable.ChangeReset {
		t.Fatalf("batch dispatched %v, want exactly one reset", changes)
	}
	if !slices.Equal(counts, []int{10}) {
		t.Errorf("counts = %v, want [10]", counts)
	}
	if l.Count() != 10 {
		t.Errorf("Count = %d, want 10", l.Count())
	}
}

func TestBatch_AddOnlySummary(t *testing.T) {
	l, sink := newRecordedList()

	l.BeginUpdate(false)
	l.Add(1)
	l.Add(2)
	l.Add(3)
	if err := l.EndUpdate(true, []int{1, 2, 3}); err != nil {
		t.Fatalf("EndUpdate: %v", err)
	}

	changes, _ := sink.snapshot()
	if len(changes) != 1 {
		t.Fatalf("batch dispatched %d notifications, want 1", len(changes))
	}
	if changes[0].Kind != observable.ChangeAddRange {
		t.Fatalf("batch dispatched %v, want add-range", changes[0].Kind)
	}
	if !slices.Equal(changes[0].Items, []int{1, 2, 3}) {
		t.Errorf("Items = %v, want [1 2 3]", changes[0].Items)
	}
}

func TestBatch_NestedFiresOnlyAtDepthZero(t *testing.T) {
	l, sink := newRecordedList()

	l.BeginUpdate(false)
	l.BeginUpdate(false)
	l.Add(1)
	if err := l.EndUpdate(false, nil); err != nil {
		t.Fatalf("inner EndUpdate: %v", err)
	}
	if changes, _ := sink.snapshot(); len(changes) != 0 {
		t.Fatalf("inner EndUpdate dispatched %d notifications, want 0", len(changes))
	}
	l.Add(2)
	if changes, _ := sink.snapshot(); len(changes) != 0 {
		t.Fatal("add between nested ends was not suppressed")
	}
	if err := l.EndUpdate(false, nil); err != nil {
		t.Fatalf("outer EndUpdate: %v", err)
	}

	changes, _ := sink.snapshot()
	if len(changes) != 1 || changes[0].Kind != observable.ChangeReset {
		t.Fatalf("outer EndUpdate dispatched %v, want one reset", changes)
	}
}

func TestEndUpdate_WithoutBegin(t *testing.T) {
	l := observable.New[int](nil)
	if err := l.EndUpdate(false, nil); !errors.Is(err, observable.ErrNoBatch) {
		t.Errorf("EndUpdate without Begin = %v, want ErrNoBatch", err)
	}
}

func TestIsBatching(t *testing.T) {
	l := observable.New[int](nil)
	if l.IsBatching() {
		t.Error("IsBatching = true before BeginUpdate")
	}
	l.BeginUpdate(false)
	if !l.IsBatching() {
		t.Error("IsBatching = false during a batch")
	}
	if err := l.EndUpdate(false, nil); err != nil {
		t.Fatalf("EndUpdate: %v", err)
	}
	if l.IsBatching() {
		t.Error("IsBatching = true after EndUpdate")
	}
}

func TestBatch_ExclusiveBlocksConcurrentAdd(t *testing.T) {
	l, sink := newRecordedList()

	l.BeginUpdate(true)
	l.Add(1) // owner edits pass through the held mutation lock

	added := make(chan struct{})
	go func() {
		l.Add(2)
		close(added)
	}()

	select {
	case <-added:
		t.Fatal("concurrent Add completed while the exclusive batch was held")
	case <-time.After(50 * time.Millisecond):
	}

	if err := l.EndUpdate(false, nil); err != nil {
		t.Fatalf("EndUpdate: %v", err)
	}

	select {
	case <-added:
	case <-time.After(time.Second):
		t.Fatal("concurrent Add did not proceed after EndUpdate")
	}

	if l.Count() != 2 {
		t.Errorf("Count = %d, want 2", l.Count())
	}

	// The batch's coalesced reset is ordered ahead of the unblocked add.
	changes, _ := sink.snapshot()
	if len(changes) != 2 {
		t.Fatalf("got %d notifications, want 2", len(changes))
	}
	if changes[0].Kind != observable.ChangeReset {
		t.Errorf("first notification = %v, want the batch reset", changes[0].Kind)
	}
	if changes[1].Kind != observable.ChangeAdd || changes[1].Item != 2 {
		t.Errorf("second notification = %v(%d), want add(2)", changes[1].Kind, changes[1].Item)
	}
}

func TestBatch_NestedExclusiveReentry(t *testing.T) {
	l, sink := newRecordedList()

	l.BeginUpdate(true)
	l.BeginUpdate(true) // owner re-enters without re-locking
	l.Add(1)
	if err := l.EndUpdate(false, nil); err != nil {
		t.Fatalf("inner EndUpdate: %v", err)
	}
	l.Add(2) // exclusive lock still held until the outer EndUpdate
	if err := l.EndUpdate(false, nil); err != nil {
		t.Fatalf("outer EndUpdate: %v", err)
	}

	changes, _ := sink.snapshot()
	if len(changes) != 1 || changes[0].Kind != observable.ChangeReset {
		t.Fatalf("nested exclusive batch dispatched %v, want one reset", changes)
	}

	// The lock must be released now: a plain Add completes.
	done := make(chan struct{})
	go func() {
		l.Add(3)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Add blocked after the exclusive batch ended")
	}
}
