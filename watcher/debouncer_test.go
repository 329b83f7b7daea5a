package watcher

import (
	"testing"
	"time"
)

const testInterval = 50 * time.Millisecond

func receiveBatch(t *testing.T, d *Debouncer, timeout time.Duration) ChangeSet {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(timeout):
		t.Fatal("timed out waiting for debouncer batch")
		return ChangeSet{}
	}
}

func equalPaths(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func Test_Debouncer_SingleWrite(t *testing.T) {
	d := NewDebouncer(testInterval)

	d.Add("main.js", OpWrite)

	batch := receiveBatch(t, d, 500*time.Millisecond)
	if !equalPaths(batch.Modified, []string{"main.js"}) {
		t.Errorf("expected main.js modified, got %+v", batch)
	}
	if len(batch.Added) != 0 || len(batch.Removed) != 0 {
		t.Errorf("expected only a modification, got %+v", batch)
	}
}

func Test_Debouncer_GroupsByKind(t *testing.T) {
	d := NewDebouncer(testInterval)

	d.Add("b.js", OpCreate)
	d.Add("a.js", OpCreate)
	d.Add("util.js", OpWrite)
	d.Add("old.js", OpRemove)
	d.Add("moved.js", OpRename)

	batch := receiveBatch(t, d, 500*time.Millisecond)
	if !equalPaths(batch.Added, []string{"a.js", "b.js"}) {
		t.Errorf("unexpected Added: %v", batch.Added)
	}
	if !equalPaths(batch.Modified, []string{"util.js"}) {
		t.Errorf("unexpected Modified: %v", batch.Modified)
	}
	if !equalPaths(batch.Removed, []string{"moved.js", "old.js"}) {
		t.Errorf("unexpected Removed: %v", batch.Removed)
	}
}

func Test_Debouncer_CreateThenWriteStaysAdded(t *testing.T) {
	d := NewDebouncer(testInterval)

	d.Add("main.js", OpCreate)
	d.Add("main.js", OpWrite)
	d.Add("main.js", OpWrite)

	batch := receiveBatch(t, d, 500*time.Millisecond)
	if !equalPaths(batch.Added, []string{"main.js"}) || len(batch.Modified) != 0 {
		t.Errorf("expected main.js added only, got %+v", batch)
	}
}

func Test_Debouncer_CreateThenRemoveCancels(t *testing.T) {
	d := NewDebouncer(testInterval)

	d.Add("tmp.js", OpCreate)
	d.Add("tmp.js", OpRemove)
	d.Add("keep.js", OpWrite)

	batch := receiveBatch(t, d, 500*time.Millisecond)
	if len(batch.Added) != 0 || len(batch.Removed) != 0 {
		t.Errorf("expected tmp.js to cancel out, got %+v", batch)
	}
	if !equalPaths(batch.Modified, []string{"keep.js"}) {
		t.Errorf("expected keep.js modified, got %+v", batch)
	}
}

func Test_Debouncer_RemoveThenCreateIsModified(t *testing.T) {
	d := NewDebouncer(testInterval)

	// Editors that save by replacing the file produce this sequence.
	d.Add("main.js", OpRemove)
	d.Add("main.js", OpCreate)

	batch := receiveBatch(t, d, 500*time.Millisecond)
	if !equalPaths(batch.Modified, []string{"main.js"}) || batch.Structural() {
		t.Errorf("expected main.js modified only, got %+v", batch)
	}
}

func Test_Debouncer_TimerReset(t *testing.T) {
	d := NewDebouncer(testInterval)

	d.Add("main.js", OpWrite)
	time.Sleep(testInterval / 2)
	d.Add("util.js", OpWrite)

	batch := receiveBatch(t, d, 500*time.Millisecond)
	if !equalPaths(batch.Modified, []string{"main.js", "util.js"}) {
		t.Errorf("expected both files in a single batch, got %+v", batch)
	}
}

func Test_ChangeSet_Predicates(t *testing.T) {
	if !(ChangeSet{}).Empty() {
		t.Error("expected zero ChangeSet to be empty")
	}
	if (ChangeSet{Modified: []string{"a"}}).Structural() {
		t.Error("expected modification-only batch to be non-structural")
	}
	if !(ChangeSet{Removed: []string{"a"}}).Structural() {
		t.Error("expected removal to be structural")
	}
}
