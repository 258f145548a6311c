package content

import (
	"sync"
	"time"
)

// Scheduler runs fn once after delay unless the returned cancel is called first.
type Scheduler interface {
	Schedule(fn func(), delay time.Duration) (cancel func())
}

// TimerScheduler schedules on wall-clock timers.
type TimerScheduler struct{}

// Schedule runs fn on its own goroutine after delay.
func (TimerScheduler) Schedule(fn func(), delay time.Duration) func() {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}

// ManualScheduler queues tasks until Flush is called.
type ManualScheduler struct {
	mu    sync.Mutex
	next  int
	tasks map[int]func()
	order []int
}

// NewManualScheduler creates an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]func())}
}

// Schedule queues fn; delay is ignored.
func (m *ManualScheduler) Schedule(fn func(), _ time.Duration) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.tasks[id] = fn
	m.order = append(m.order, id)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.tasks, id)
	}
}

// Pending returns the number of queued, uncancelled tasks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Flush runs queued tasks in scheduling order and returns how many ran.
func (m *ManualScheduler) Flush() int {
	m.mu.Lock()
	var run []func()
	for _, id := range m.order {
		if fn, ok := m.tasks[id]; ok {
			run = append(run, fn)
		}
	}
	m.tasks = make(map[int]func())
	m.order = nil
	m.mu.Unlock()

	for _, fn := range run {
		fn()
	}
	return len(run)
}
