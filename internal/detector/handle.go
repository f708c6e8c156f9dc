package detector

import (
	"context"
	"log/slog"
	"sync"

	"github.com/examshield/proctor-agent/internal/domain"
)

// Factory builds a detector. Construction may be slow (model download, SDK
// client setup), so it runs asynchronously behind a Handle.
type Factory func(ctx context.Context) (Detector, error)

// Handle is an explicit asynchronous initialization handle for a detector,
// injected as a constructor-time dependency. While not ready, Get returns
// ErrDetectorNotReady and no violations can be produced; monitoring and
// transport continue unaffected.
type Handle struct {
	mu       sync.Mutex
	detector Detector
	err      error
	ready    bool
	done     chan struct{}
	logger   *slog.Logger
}

// Init starts detector construction in the background and returns
// immediately.
func Init(ctx context.Context, factory Factory, logger *slog.Logger) *Handle {
	h := &Handle{
		done:   make(chan struct{}),
		logger: logger.With("component", "detector"),
	}

	go func() {
		defer close(h.done)

		d, err := factory(ctx)

		h.mu.Lock()
		defer h.mu.Unlock()

		if err != nil {
			// Initialization failure degrades gracefully: the handle
			// stays not-ready and the session keeps running.
			h.err = err
			h.logger.Error("detector initialization failed", "error", err)
			return
		}
		h.detector = d
		h.ready = true
		h.logger.Info("detector ready")
	}()

	return h
}

// Ready reports whether the detector finished initializing successfully.
func (h *Handle) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ready
}

// Err returns the initialization error, if any.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Get returns the detector, or ErrDetectorNotReady while initialization is
// pending or has failed.
func (h *Handle) Get() (Detector, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.ready {
		if h.err != nil {
			return nil, domain.ErrDetectorNotReady.WithError(h.err)
		}
		return nil, domain.ErrDetectorNotReady
	}
	return h.detector, nil
}

// Wait blocks until initialization finishes or ctx is cancelled.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return h.Err()
	}
}
