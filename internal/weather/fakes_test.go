package weather

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

func londonSnapshot() Snapshot {
	return Snapshot{
		City:        "London",
		Country:     "GB",
		Temperature: 15.2,
		FeelsLike:   13.8,
		Humidity:    75,
		Description: "light rain",
		WindSpeed:   5.5,
		ObservedAt:  time.Unix(1234567890, 0).UTC(),
		Units:       Metric,
	}
}

// fakeSource counts calls and returns canned data
type fakeSource struct {
	snap     Snapshot
	forecast Forecast
	err      error

	// gate, when set, blocks Current until closed
	gate chan struct{}

	currentCalls  atomic.Int32
	forecastCalls atomic.Int32
}

func (f *fakeSource) Current(ctx context.Context, city string, units Units) (Snapshot, error) {
	f.currentCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return Snapshot{}, f.err
	}
	s := f.snap
	s.City = city
	s.Units = units
	return s, nil
}

func (f *fakeSource) Forecast(ctx context.Context, city string, units Units) (Forecast, error) {
	f.forecastCalls.Add(1)
	if f.err != nil {
		return Forecast{}, f.err
	}
	fc := f.forecast
	fc.City = city
	fc.Units = units
	return fc, nil
}

// fakeModel counts calls and returns a canned insight
type fakeModel struct {
	insight Insight
	err     error
	calls   atomic.Int32
}

func (f *fakeModel) Generate(ctx context.Context, snap Snapshot) (Insight, error) {
	f.calls.Add(1)
	if f.err != nil {
		return Insight{}, f.err
	}
	return f.insight, nil
}

// recordingPublisher remembers published keys
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingPublisher) Publish(ctx context.Context, key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
}

func (r *recordingPublisher) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}
