package mock

import (
	"context"
	"sync"

	"github.com/examshield/proctor-agent/internal/detector"
	"github.com/examshield/proctor-agent/internal/domain"
)

// Provider implements detector.Detector for tests and development. It
// returns a configurable signal; the default is a single attentive face.
type Provider struct {
	mu     sync.Mutex
	signal detector.Signal
	err    error
	calls  int
}

// New creates a mock detector reporting one face looking at the screen.
func New() *Provider {
	return &Provider{
		signal: detector.Signal{FaceCount: 1},
	}
}

// SetSignal sets the signal returned by subsequent Detect calls.
func (p *Provider) SetSignal(sig detector.Signal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signal = sig
	p.err = nil
}

// SetError makes subsequent Detect calls fail.
func (p *Provider) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Calls returns how many Detect calls were made.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Detect returns the configured signal. Undersized frames are rejected the
// way a real provider would reject them.
func (p *Provider) Detect(ctx context.Context, frame []byte) (detector.Signal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++

	if len(frame) < 100 {
		return detector.Signal{}, domain.ErrInvalidFrame
	}
	if p.err != nil {
		return detector.Signal{}, p.err
	}
	return p.signal, nil
}
