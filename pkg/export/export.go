// Package export hands composed surfaces to an image capturer.
//
// The [Bridge] is the only asynchronous part of branchdeck. A host calls
// [Bridge.Request] with the surface of the page currently shown; the bridge
// runs the [Capturer] in the background and delivers exactly one [Result]
// on the returned channel. Only one capture may be in flight per bridge. A
// second request while one is running fails immediately with
// [ErrCaptureInFlight].
//
// Failures are reported, never retried: a missing surface or a failing
// capturer yields a [*CaptureFailure] in Result.Err and the user may simply
// ask again. The bridge does not persist anything; writing the bytes is the
// host's job.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	errs "github.com/matzehuels/branchdeck/pkg/errors"
	"github.com/matzehuels/branchdeck/pkg/observability"
	"github.com/matzehuels/branchdeck/pkg/render/sink"
)

// ErrCaptureInFlight is returned when a capture is requested while the
// previous one has not completed.
var ErrCaptureInFlight = errors.New("a capture is already in progress")

// Capturer turns a surface into encoded image bytes.
type Capturer interface {
	Capture(ctx context.Context, s *sink.Surface) ([]byte, error)
}

// CapturerFunc adapts a function to [Capturer].
type CapturerFunc func(ctx context.Context, s *sink.Surface) ([]byte, error)

// Capture calls f(ctx, s).
func (f CapturerFunc) Capture(ctx context.Context, s *sink.Surface) ([]byte, error) {
	return f(ctx, s)
}

// formatter is implemented by capturers that know their output format.
type formatter interface {
	Format() string
}

// FormatOf returns the output format of c, "png" if c does not say.
func FormatOf(c Capturer) string {
	if f, ok := c.(formatter); ok {
		return f.Format()
	}
	return "png"
}

// Result is the outcome of one capture request. Exactly one of Data and Err
// is set.
type Result struct {
	ID       string
	Format   string
	Data     []byte
	Err      error
	Duration time.Duration
}

// CaptureFailure reports a capture that produced no image.
type CaptureFailure struct {
	RequestID string
	Cause     error
}

func (e *CaptureFailure) Error() string {
	return fmt.Sprintf("capture %s failed: %v", e.RequestID, e.Cause)
}

func (e *CaptureFailure) Unwrap() error { return e.Cause }

// Code maps the failure onto the CAPTURE_FAILED code.
func (e *CaptureFailure) Code() errs.Code { return errs.ErrCodeCaptureFailed }

// Bridge triggers captures of composed surfaces. The zero value is not
// usable; use [New].
type Bridge struct {
	capturer Capturer
	logger   *log.Logger
	busy     atomic.Bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger for capture progress. Nil discards.
func WithLogger(l *log.Logger) Option { return func(b *Bridge) { b.logger = l } }

// New returns a bridge that captures with c.
func New(c Capturer, opts ...Option) *Bridge {
	b := &Bridge{capturer: c}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	return b
}

// Format returns the output format of the bridge's capturer.
func (b *Bridge) Format() string { return FormatOf(b.capturer) }

// Busy reports whether a capture is in flight.
func (b *Bridge) Busy() bool { return b.busy.Load() }

// Request starts capturing s and returns a channel that receives exactly
// one Result and is then closed. A nil surface means nothing has been
// composed yet and is reported as a [*CaptureFailure].
//
// If a capture is already running, Request returns ErrCaptureInFlight and
// no channel.
func (b *Bridge) Request(ctx context.Context, s *sink.Surface) (<-chan Result, error) {
	if !b.busy.CompareAndSwap(false, true) {
		return nil, ErrCaptureInFlight
	}

	id := newRequestID()
	format := b.Format()
	out := make(chan Result, 1)

	go func() {
		start := time.Now()
		observability.Export().OnCaptureStart(ctx, id, format)
		b.logger.Debug("capture started", "id", id, "format", format)

		res := Result{ID: id, Format: format}
		if s == nil {
			res.Err = &CaptureFailure{RequestID: id, Cause: sink.ErrNoSurface}
		} else if data, err := b.capturer.Capture(ctx, s); err != nil {
			res.Err = &CaptureFailure{RequestID: id, Cause: err}
		} else {
			res.Data = data
		}
		res.Duration = time.Since(start)

		observability.Export().OnCaptureComplete(ctx, id, format, len(res.Data), res.Duration, res.Err)
		if res.Err != nil {
			b.logger.Warn("capture failed", "id", id, "err", res.Err)
		} else {
			b.logger.Debug("capture complete", "id", id, "bytes", len(res.Data), "duration", res.Duration)
		}
		b.busy.Store(false)
		out <- res
		close(out)
	}()
	return out, nil
}

// Capture is the synchronous form of Request: it waits for the result or
// for ctx to end.
func (b *Bridge) Capture(ctx context.Context, s *sink.Surface) (Result, error) {
	ch, err := b.Request(ctx, s)
	if err != nil {
		return Result{}, err
	}
	select {
	case res := <-ch:
		return res, res.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
