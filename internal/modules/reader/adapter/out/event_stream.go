package out

import (
	"sync"

	"atheneum/internal/modules/reader/domain"
)

const eventBuffer = 32

// eventStream delivers location events in order. When nobody drains it the
// oldest event is dropped so the latest position always gets through.
type eventStream struct {
	mu     sync.Mutex
	ch     chan domain.LocationEvent
	closed bool
}

func newEventStream() *eventStream {
	return &eventStream{ch: make(chan domain.LocationEvent, eventBuffer)}
}

func (s *eventStream) emit(ev domain.LocationEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- ev:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *eventStream) events() <-chan domain.LocationEvent {
	return s.ch
}

func (s *eventStream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// pager is the position and annotation state shared by the paged renderers.
type pager struct {
	mu          sync.Mutex
	stream      *eventStream
	count       int
	current     int
	annotations map[string]string
}

func newPager() *pager {
	return &pager{stream: newEventStream(), annotations: map[string]string{}}
}

// move clamps index into the document and returns the new position.
func (p *pager) move(index int) (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index >= p.count {
		index = p.count - 1
	}
	if index < 0 {
		index = 0
	}
	p.current = index
	return index, p.count
}

func (p *pager) position() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *pager) indexFor(fraction float64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fraction <= 0 || p.count == 0 {
		return 0
	}
	idx := int(fraction * float64(p.count))
	if idx >= p.count {
		idx = p.count - 1
	}
	return idx
}

func (p *pager) annotate(r, color string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.annotations[r] = color
}

func (p *pager) unannotate(r string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.annotations, r)
}

// Annotation reports the color drawn over r, if any.
func (p *pager) Annotation(r string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	color, ok := p.annotations[r]
	return color, ok
}
