// ABOUTME: Progress broadcaster for long-running model operations
// ABOUTME: New subscribers immediately receive the current value, not just updates
package embedding

import "sync"

// ErrorProgress is the sentinel percent emitted when an operation fails.
const ErrorProgress = -1

// ProgressFunc receives (percent, message) pairs. Percent is 0-100, or
// ErrorProgress on failure.
type ProgressFunc func(percent int, message string)

// Progress broadcasts load progress to subscribers. Safe for concurrent use.
type Progress struct {
	mu      sync.Mutex
	percent int
	message string
	subs    map[int]ProgressFunc
	nextID  int
}

// NewProgress creates a reporter in the initial (0, "") state.
func NewProgress() *Progress {
	return &Progress{subs: make(map[int]ProgressFunc)}
}

// Subscribe registers fn and immediately replays the current value to it.
// The returned function unsubscribes.
func (p *Progress) Subscribe(fn ProgressFunc) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	percent, message := p.percent, p.message
	p.mu.Unlock()

	fn(percent, message)

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Update sets the current progress and notifies all subscribers.
func (p *Progress) Update(percent int, message string) {
	p.mu.Lock()
	p.percent = percent
	p.message = message
	subs := make([]ProgressFunc, 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(percent, message)
	}
}

// Complete emits 100 with the given message.
func (p *Progress) Complete(message string) {
	p.Update(100, message)
}

// Error emits the sentinel negative progress with an "Error: " prefix.
func (p *Progress) Error(message string) {
	p.Update(ErrorProgress, "Error: "+message)
}

// Reset returns to the initial (0, "") state and notifies subscribers.
func (p *Progress) Reset() {
	p.Update(0, "")
}

// Current returns the latest (percent, message) pair.
func (p *Progress) Current() (int, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent, p.message
}
