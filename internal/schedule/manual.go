package schedule

import (
	"sort"
	"time"
)

// Manual is a virtual-clock scheduler. Nothing runs until Advance is called,
// which makes timing deterministic in tests.
type Manual struct {
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	due     time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManual creates a scheduler at virtual time zero
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc schedules fn at now+d
func (m *Manual) AfterFunc(d time.Duration, fn func()) Task {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTask{due: m.now + d, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// Now returns the elapsed virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Advance moves the clock forward by d and fires every due task ordered by
// due time, then scheduling order. Tasks scheduled by callbacks run in the
// same call if they fall due.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.due
		next.fired = true
		next.fn()
	}
	m.now = target
	m.compact()
}

// Pending returns how many tasks have neither fired nor been stopped.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.tasks {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(limit time.Duration) *manualTask {
	var candidates []*manualTask
	for _, t := range m.tasks {
		if !t.fired && !t.stopped && t.due <= limit {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].due != candidates[j].due {
			return candidates[i].due < candidates[j].due
		}
		return candidates[i].seq < candidates[j].seq
	})
	return candidates[0]
}

func (m *Manual) compact() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.fired && !t.stopped {
			live = append(live, t)
		}
	}
	m.tasks = live
}
