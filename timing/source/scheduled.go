package source

import (
	"log"
	"sync"
	"time"

	"github.com/matt-g-everett/ledtiming/timing"
)

// Scheduled is a TimingSource that ticks at a fixed period on its own
// goroutine. Its time base is the monotonic clock, counted from creation.
type Scheduled struct {
	listeners

	period time.Duration
	epoch  time.Time
	logger *log.Logger

	mu   sync.Mutex
	stop chan struct{}
}

// NewScheduled returns a source that ticks every period once initialized.
func NewScheduled(period time.Duration) *Scheduled {
	s := new(Scheduled)
	s.period = period
	s.epoch = time.Now()
	s.logger = log.Default()
	return s
}

// SetLogger sets where listener panics are logged.
func (s *Scheduled) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Period returns the tick period.
func (s *Scheduled) Period() time.Duration {
	return s.period
}

// Init starts the tick goroutine.
func (s *Scheduled) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return timing.ErrSourceInitialized
	}
	s.stop = make(chan struct{})
	go s.run(s.stop)
	return nil
}

// Dispose stops the tick goroutine. A tick already in progress completes.
func (s *Scheduled) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// Nanos returns the monotonic time since the source was created.
func (s *Scheduled) Nanos() int64 {
	return time.Since(s.epoch).Nanoseconds()
}

func (s *Scheduled) run(stop chan struct{}) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			s.safeFire()
		}
	}
}

func (s *Scheduled) safeFire() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("[source] tick listener panicked: %v", r)
		}
	}()
	s.fire(s, s.Nanos())
}

var _ timing.TimingSource = (*Scheduled)(nil)
