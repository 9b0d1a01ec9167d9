package locate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivatulum/mapkit/internal/venue"
)

// fakeSensor is a scriptable Sensor for tests.
type fakeSensor struct {
	currentDelay time.Duration
	currentLoc   venue.UserLocation
	currentErr   error

	watchInterval time.Duration
	watchLoc      venue.UserLocation
	watchErr      error

	watchCount atomic.Int32 // live watch goroutines
}

func (f *fakeSensor) Current(ctx context.Context, _ Options) (venue.UserLocation, error) {
	if f.currentDelay > 0 {
		select {
		case <-time.After(f.currentDelay):
		case <-ctx.Done():
			return venue.UserLocation{}, ctx.Err()
		}
	}
	if f.currentErr != nil {
		return venue.UserLocation{}, f.currentErr
	}
	return f.currentLoc, nil
}

func (f *fakeSensor) Watch(ctx context.Context, _ Options) (<-chan venue.UserLocation, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	ch := make(chan venue.UserLocation)
	f.watchCount.Add(1)
	go func() {
		defer close(ch)
		defer f.watchCount.Add(-1)
		ticker := time.NewTicker(f.watchInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case ch <- f.watchLoc:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func testOptions() Options {
	return Options{HighAccuracy: true, MaxAge: 30 * time.Second, Timeout: time.Second}
}

func TestLocator_Acquire_NilSensor(t *testing.T) {
	l := New(nil, testOptions(), 50*time.Millisecond, nil)

	loc := l.Acquire(context.Background())
	assert.Nil(t, loc)
}

func TestLocator_Acquire_Success(t *testing.T) {
	sensor := &fakeSensor{
		currentDelay:  5 * time.Millisecond,
		currentLoc:    venue.UserLocation{Lat: 20.21, Lng: -87.46, AccuracyMeters: 25},
		watchInterval: time.Hour, // watch never fires first
	}
	l := New(sensor, testOptions(), time.Second, nil)
	defer l.Release()

	loc := l.Acquire(context.Background())
	require.NotNil(t, loc)
	assert.Equal(t, 20.21, loc.Lat)
	assert.Equal(t, 25.0, loc.AccuracyMeters)
}

func TestLocator_Acquire_Timeout(t *testing.T) {
	sensor := &fakeSensor{
		currentDelay:  time.Hour,
		watchInterval: time.Hour,
	}
	l := New(sensor, testOptions(), 30*time.Millisecond, nil)

	start := time.Now()
	loc := l.Acquire(context.Background())
	elapsed := time.Since(start)

	assert.Nil(t, loc)
	assert.Less(t, elapsed, 500*time.Millisecond, "should resolve near the timeout, not hang")

	// Timeout releases the watch.
	assert.Eventually(t, func() bool {
		return sensor.watchCount.Load() == 0
	}, time.Second, 10*time.Millisecond, "watch should be released after timeout")
}

func TestLocator_Acquire_SensorDenied(t *testing.T) {
	sensor := &fakeSensor{
		currentErr:    errors.New("permission denied"),
		watchInterval: time.Hour,
	}
	l := New(sensor, testOptions(), time.Second, nil)

	loc := l.Acquire(context.Background())
	assert.Nil(t, loc, "denial resolves to nil, never an error")

	assert.Eventually(t, func() bool {
		return sensor.watchCount.Load() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestLocator_Acquire_WatchResolvesFirst(t *testing.T) {
	sensor := &fakeSensor{
		currentDelay:  time.Hour,
		watchInterval: 5 * time.Millisecond,
		watchLoc:      venue.UserLocation{Lat: 20.19, Lng: -87.44, AccuracyMeters: 60},
	}
	l := New(sensor, testOptions(), time.Second, nil)
	defer l.Release()

	loc := l.Acquire(context.Background())
	require.NotNil(t, loc)
	assert.Equal(t, 20.19, loc.Lat)
}

func TestLocator_Subscribe_ReceivesWatchUpdates(t *testing.T) {
	sensor := &fakeSensor{
		currentDelay:  time.Hour,
		watchInterval: 5 * time.Millisecond,
		watchLoc:      venue.UserLocation{Lat: 20.20, Lng: -87.45},
	}
	l := New(sensor, testOptions(), time.Second, nil)
	defer l.Release()

	var updates atomic.Int32
	cancel := l.Subscribe(func(venue.UserLocation) { updates.Add(1) })
	defer cancel()

	require.NotNil(t, l.Acquire(context.Background()))

	assert.Eventually(t, func() bool {
		return updates.Load() >= 3
	}, time.Second, 5*time.Millisecond, "subscriber should keep receiving updates after Acquire resolves")
}

func TestLocator_Acquire_ReleasesPriorWatch(t *testing.T) {
	sensor := &fakeSensor{
		currentDelay:  5 * time.Millisecond,
		currentLoc:    venue.UserLocation{Lat: 20.21, Lng: -87.46},
		watchInterval: time.Hour,
	}
	l := New(sensor, testOptions(), time.Second, nil)
	defer l.Release()

	require.NotNil(t, l.Acquire(context.Background()))
	require.NotNil(t, l.Acquire(context.Background()))

	assert.Eventually(t, func() bool {
		return sensor.watchCount.Load() <= 1
	}, time.Second, 10*time.Millisecond, "at most one live watch after re-acquire")
}

func TestLocator_Release_Idempotent(t *testing.T) {
	sensor := &fakeSensor{
		currentDelay:  5 * time.Millisecond,
		currentLoc:    venue.UserLocation{Lat: 20.21, Lng: -87.46},
		watchInterval: time.Hour,
	}
	l := New(sensor, testOptions(), time.Second, nil)

	require.NotNil(t, l.Acquire(context.Background()))
	l.Release()
	l.Release()

	assert.Eventually(t, func() bool {
		return sensor.watchCount.Load() == 0
	}, time.Second, 10*time.Millisecond)
}
