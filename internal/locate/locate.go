package locate

import (
	"context"
	"sync"
	"time"

	"github.com/vivatulum/mapkit/internal/logging"
	"github.com/vivatulum/mapkit/internal/venue"
)

// Options mirror the platform geolocation request options.
type Options struct {
	HighAccuracy bool
	MaxAge       time.Duration
	Timeout      time.Duration
}

// Sensor is the device geolocation capability. Implementations wrap the real
// platform API; tests substitute fakes.
type Sensor interface {
	// Current requests a one-shot position fix. It should honor ctx and the
	// Options timeout.
	Current(ctx context.Context, opts Options) (venue.UserLocation, error)

	// Watch emits continuous position updates on the returned channel until
	// ctx is cancelled, at which point the channel is closed.
	Watch(ctx context.Context, opts Options) (<-chan venue.UserLocation, error)
}

// Locator acquires and continuously updates the device's best-known position.
// It owns at most one live sensor watch; re-acquiring releases the previous
// watch before starting a new one.
type Locator struct {
	sensor  Sensor
	opts    Options
	timeout time.Duration
	log     logging.Logger

	mu          sync.Mutex
	watchCancel context.CancelFunc
	subs        map[int]func(venue.UserLocation)
	nextSub     int
}

// New creates a Locator. A nil sensor means the platform has no location
// capability; Acquire then resolves to nil immediately.
func New(sensor Sensor, opts Options, acquireTimeout time.Duration, log logging.Logger) *Locator {
	if log == nil {
		log = logging.Nop()
	}
	return &Locator{
		sensor:  sensor,
		opts:    opts,
		timeout: acquireTimeout,
		log:     log,
		subs:    make(map[int]func(venue.UserLocation)),
	}
}

// Subscribe registers fn to receive every position update from the live
// watch. Returns a cancel func.
func (l *Locator) Subscribe(fn func(venue.UserLocation)) func() {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

func (l *Locator) broadcast(loc venue.UserLocation) {
	l.mu.Lock()
	subs := make([]func(venue.UserLocation), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(loc)
	}
}

// Release cancels the live watch, if any.
func (l *Locator) Release() {
	l.mu.Lock()
	cancel := l.watchCancel
	l.watchCancel = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

type outcome struct {
	loc *venue.UserLocation
}

// Acquire races a one-shot fix and a continuous watch against the acquire
// timeout, and returns the first position to arrive or nil. Only the first
// resolution is honored. On success the watch stays live so updates keep
// flowing to subscribers; on timeout or failure the watch is released.
//
// Sensor errors (permission denied, unavailable) are non-fatal and resolve to
// nil; Acquire never returns an error.
func (l *Locator) Acquire(ctx context.Context) *venue.UserLocation {
	if l.sensor == nil {
		l.log.Debug("no location capability, resolving nil")
		return nil
	}

	// Only one live watch at a time.
	l.Release()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	l.mu.Lock()
	l.watchCancel = watchCancel
	l.mu.Unlock()

	// Buffered so late race participants never block; only the first
	// received value wins.
	first := make(chan outcome, 2)

	ch, err := l.sensor.Watch(watchCtx, l.opts)
	if err != nil {
		l.log.Warn("watch position failed", "error", err)
	} else {
		go func() {
			for loc := range ch {
				loc := loc
				select {
				case first <- outcome{loc: &loc}:
				default:
				}
				l.broadcast(loc)
			}
		}()
	}

	go func() {
		oneShotCtx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
		loc, err := l.sensor.Current(oneShotCtx, l.opts)
		if err != nil {
			l.log.Debug("current position failed", "error", err)
			select {
			case first <- outcome{loc: nil}:
			default:
			}
			return
		}
		select {
		case first <- outcome{loc: &loc}:
		default:
		}
	}()

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case o := <-first:
		if o.loc == nil {
			// The sensor reported failure before the timeout; no position
			// will arrive, so drop the watch.
			l.Release()
			return nil
		}
		return o.loc
	case <-timer.C:
		l.log.Debug("location acquisition timed out")
		l.Release()
		return nil
	case <-ctx.Done():
		l.Release()
		return nil
	}
}
