package editor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dialogtree/pkg/observability"
	"github.com/matzehuels/dialogtree/pkg/store"
)

const saveTimeout = 10 * time.Second

// saver writes snapshots on a single background goroutine. It holds at most
// one pending snapshot; enqueueing while one is pending replaces it, so a
// slow store only ever sees the newest state.
type saver struct {
	st      store.Store
	backend string
	logger  *log.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []byte
	has     bool
	busy    bool
	closed  bool
	failed  int
	done    chan struct{}
}

func newSaver(st store.Store, backend string, logger *log.Logger) *saver {
	s := &saver{
		st:      st,
		backend: backend,
		logger:  logger,
		done:    make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// enqueue schedules data for writing. It never blocks on the store.
func (s *saver) enqueue(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.has {
		observability.Store().OnSaveCoalesced(context.Background(), s.backend)
	}
	s.pending = data
	s.has = true
	s.cond.Broadcast()
}

func (s *saver) run() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for !s.has && !s.closed {
			s.cond.Wait()
		}
		if !s.has {
			s.mu.Unlock()
			return
		}
		data := s.pending
		s.pending, s.has, s.busy = nil, false, true
		s.mu.Unlock()

		err := s.write(data)

		s.mu.Lock()
		s.busy = false
		if err != nil {
			s.failed++
		}
		s.cond.Broadcast()
		s.mu.Unlock()
	}
}

func (s *saver) write(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	start := time.Now()
	err := s.st.Save(ctx, data)
	elapsed := time.Since(start)
	observability.Store().OnSave(ctx, s.backend, len(data), elapsed, err)
	if err != nil {
		s.logger.Warn("save failed", "backend", s.backend, "err", err)
		return err
	}
	s.logger.Debug("saved", "backend", s.backend, "bytes", len(data), "took", elapsed)
	return nil
}

// flush blocks until no snapshot is pending or being written.
func (s *saver) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.has || s.busy {
		s.cond.Wait()
	}
}

// close writes whatever is pending, then stops the writer.
func (s *saver) close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
	<-s.done
}

// failures returns how many writes have failed so far.
func (s *saver) failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}
