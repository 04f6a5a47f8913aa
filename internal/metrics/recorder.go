package metrics

import "time"

// FlushReason labels why the content cache was emptied.
type FlushReason string

const (
	FlushScheduled FlushReason = "scheduled"
	FlushManual    FlushReason = "manual"
	FlushContent   FlushReason = "content_changed"
	FlushShutdown  FlushReason = "shutdown"
)

// AggregateLabel names the cached aggregates built from many documents.
type AggregateLabel string

const (
	AggregateIndex AggregateLabel = "index"
	AggregateFeed  AggregateLabel = "feed"
)

// Recorder defines observability hooks for cache and render activity.
// Implementations must tolerate concurrent calls.
type Recorder interface {
	IncCacheHit()
	IncCacheMiss()
	IncCacheEviction()
	IncCacheFlush(reason FlushReason)
	SetCacheEntries(n int)
	ObserveRenderDuration(d time.Duration, success bool)
	ObserveAggregateBuild(kind AggregateLabel, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncCacheHit()                                        {}
func (NoopRecorder) IncCacheMiss()                                       {}
func (NoopRecorder) IncCacheEviction()                                   {}
func (NoopRecorder) IncCacheFlush(FlushReason)                           {}
func (NoopRecorder) SetCacheEntries(int)                                 {}
func (NoopRecorder) ObserveRenderDuration(time.Duration, bool)           {}
func (NoopRecorder) ObserveAggregateBuild(AggregateLabel, time.Duration) {}
