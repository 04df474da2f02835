package telemetry

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Async forwards records to a Sink from a single worker goroutine. Records
// are dropped, and counted, when the buffer is full.
type Async struct {
	sink   Sink
	queue  chan func(Sink)
	logger *log.Logger

	dropped atomic.Int64
	closed  atomic.Bool
	mu      sync.RWMutex
	done    chan struct{}
}

// NewAsync starts a worker for sink with room for buffer pending records.
func NewAsync(sink Sink, buffer int, logger *log.Logger) *Async {
	if buffer <= 0 {
		buffer = DefaultConfig().Buffer
	}
	if logger == nil {
		logger = log.Default()
	}
	a := &Async{
		sink:   sink,
		queue:  make(chan func(Sink), buffer),
		logger: logger,
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for record := range a.queue {
		record(a.sink)
	}
}

func (a *Async) enqueue(record func(Sink)) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed.Load() {
		return
	}
	select {
	case a.queue <- record:
	default:
		n := a.dropped.Add(1)
		a.logger.Debug("Telemetry buffer full, record dropped", "dropped", n)
	}
}

// RecordClick queues c for the wrapped sink, or drops it when the buffer is full.
func (a *Async) RecordClick(c Click) {
	a.enqueue(func(s Sink) { s.RecordClick(c) })
}

// RecordReadAloud queues r for the wrapped sink.
func (a *Async) RecordReadAloud(r ReadAloud) {
	a.enqueue(func(s Sink) { s.RecordReadAloud(r) })
}

// RecordVoiceSearch queues v for the wrapped sink.
func (a *Async) RecordVoiceSearch(v VoiceSearch) {
	a.enqueue(func(s Sink) { s.RecordVoiceSearch(v) })
}

// Dropped returns how many records were dropped.
func (a *Async) Dropped() int64 {
	return a.dropped.Load()
}

// Close stops accepting records and waits for pending ones to be sent.
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed.Swap(true) {
		a.mu.Unlock()
		return
	}
	close(a.queue)
	a.mu.Unlock()
	<-a.done
}
