package watcher

import (
	"sort"
	"sync"
	"time"
)

// EventOp represents the type of file system operation.
type EventOp int

const (
	OpCreate EventOp = iota
	OpWrite
	OpRemove
	OpRename
)

// ChangeSet is one debounced batch of changes. Each path appears in at
// most one list, and lists are sorted.
type ChangeSet struct {
	Added    []string
	Modified []string
	Removed  []string
}

// Empty reports whether the batch carries no paths.
func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Removed) == 0
}

// Structural reports whether files appeared or disappeared, which can
// change the outcome of a resolution.
func (c ChangeSet) Structural() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0
}

type change int

const (
	changeNone change = iota
	changeAdded
	changeModified
	changeRemoved
)

// collapse folds a new operation into the pending change for one path.
// A file created inside the window stays Added when written to and
// vanishes when removed again; a removed file that comes back is Modified.
func collapse(pending change, op EventOp) change {
	var next change
	switch op {
	case OpCreate:
		next = changeAdded
	case OpWrite:
		next = changeModified
	case OpRemove, OpRename:
		next = changeRemoved
	}

	switch {
	case pending == changeAdded && next == changeModified:
		return changeAdded
	case pending == changeAdded && next == changeRemoved:
		return changeNone
	case pending == changeRemoved && next == changeAdded:
		return changeModified
	default:
		return next
	}
}

// Debouncer collects file system events and emits one ChangeSet after a
// quiet period.
type Debouncer struct {
	interval time.Duration
	pending  map[string]change
	mu       sync.Mutex
	timer    *time.Timer
	output   chan ChangeSet
}

// NewDebouncer creates a debouncer with the specified quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		pending:  make(map[string]change),
		output:   make(chan ChangeSet, 16),
	}
}

// Output returns the channel that receives batches.
func (d *Debouncer) Output() <-chan ChangeSet {
	return d.output
}

// Add records an event and restarts the quiet period.
func (d *Debouncer) Add(path string, op EventOp) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if next := collapse(d.pending[path], op); next == changeNone {
		delete(d.pending, path)
	} else {
		d.pending[path] = next
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) == 0 {
		return
	}

	var batch ChangeSet
	for path, c := range d.pending {
		switch c {
		case changeAdded:
			batch.Added = append(batch.Added, path)
		case changeModified:
			batch.Modified = append(batch.Modified, path)
		case changeRemoved:
			batch.Removed = append(batch.Removed, path)
		}
	}
	sort.Strings(batch.Added)
	sort.Strings(batch.Modified)
	sort.Strings(batch.Removed)

	d.pending = make(map[string]change)
	d.output <- batch
}
