package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Job is one periodic unit of work. Jobs run on the scheduler goroutine, one at
// a time, so a job never overlaps itself or any other job.
type Job func(ctx context.Context)

// Scheduler is a single-loop time wheel: one priority queue ordered by next
// fire time, one cancellable handle per id.
type Scheduler struct {
	clock clockwork.Clock
	log   *zap.Logger

	mu      sync.Mutex
	entries map[uuid.UUID]*entry
	queue   entryHeap
	wakeCh  chan struct{}
}

type entry struct {
	id     uuid.UUID
	period time.Duration
	next   time.Time
	job    Job
	index  int
}

// New creates a Scheduler driven by clock.
func New(clock clockwork.Clock, log *zap.Logger) *Scheduler {
	return &Scheduler{
		clock:   clock,
		log:     log,
		entries: make(map[uuid.UUID]*entry),
		wakeCh:  make(chan struct{}, 1),
	}
}

// Every runs job each period, first one period from now. An existing handle
// for id is replaced.
func (s *Scheduler) Every(id uuid.UUID, period time.Duration, job Job) {
	if period <= 0 {
		period = time.Second
	}
	s.mu.Lock()
	if old, ok := s.entries[id]; ok {
		heap.Remove(&s.queue, old.index)
	}
	e := &entry{id: id, period: period, next: s.clock.Now().Add(period), job: job}
	s.entries[id] = e
	heap.Push(&s.queue, e)
	s.mu.Unlock()

	s.wake()
}

// Cancel removes the handle for id. It reports whether one existed; calling it
// twice is harmless. A job that is already running finishes, but never fires again.
func (s *Scheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
		heap.Remove(&s.queue, e.index)
	}
	s.mu.Unlock()

	if ok {
		s.wake()
	}
	return ok
}

// Scheduled reports whether id has a live handle.
func (s *Scheduler) Scheduled(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// live reports whether e is still the handle registered for its id.
func (s *Scheduler) live(e *entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[e.id] == e
}

// Len is the number of live handles.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Scheduler) wake() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// Run drives the wheel until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		var (
			timer   clockwork.Timer
			timerCh <-chan time.Time
		)
		s.mu.Lock()
		if len(s.queue) > 0 {
			d := s.queue[0].next.Sub(s.clock.Now())
			if d < 0 {
				d = 0
			}
			timer = s.clock.NewTimer(d)
			timerCh = timer.Chan()
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			s.log.Info("scheduler stopping")
			return
		case <-s.wakeCh:
			if timer != nil {
				timer.Stop()
			}
			continue
		case <-timerCh:
		}

		s.runDue(ctx)
	}
}

// runDue fires every entry whose time has come. Each entry is rescheduled
// before its job runs, so a job may cancel its own handle.
func (s *Scheduler) runDue(ctx context.Context) {
	now := s.clock.Now()

	s.mu.Lock()
	var due []*entry
	for len(s.queue) > 0 && !s.queue[0].next.After(now) {
		e := s.queue[0]
		e.next = e.next.Add(e.period)
		if !e.next.After(now) {
			// Fell behind (slow job or suspended process): skip missed fires.
			e.next = now.Add(e.period)
		}
		heap.Fix(&s.queue, 0)
		due = append(due, e)
	}
	s.mu.Unlock()

	for _, e := range due {
		if ctx.Err() != nil {
			return
		}
		if !s.live(e) {
			continue
		}
		e.job(ctx)
	}
}

// entryHeap orders entries by next fire time.
type entryHeap []*entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].next.Before(h[j].next) }
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}
