// Package metrics defines the observability hooks the engine records during
// serving, corpus syncs and static builds. Components hold a Recorder and
// never know whether it forwards to Prometheus or drops everything; the
// default NoopRecorder keeps metrics optional without nil checks at every
// call site.
package metrics

import "time"

// ResultLabel enumerates operation result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFailed  ResultLabel = "failed"
)

// Recorder is implemented by metric backends. Implementations must tolerate
// nil receivers so injection stays optional.
type Recorder interface {
	// ObserveSyncDuration records one content sync (directory walk, parse,
	// render, index swap).
	ObserveSyncDuration(d time.Duration)
	IncSyncResult(result ResultLabel)
	// SetCorpusSize publishes the post and problem counts of the last sync.
	SetCorpusSize(posts, problems int)
	// SetNextPublish publishes the pubDatetime of the next scheduled post as
	// unix seconds, 0 when nothing is scheduled.
	SetNextPublish(t time.Time)

	ObserveRequestDuration(route, method string, status int, d time.Duration)
	IncCacheEvent(cache string, hit bool)

	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(result ResultLabel)
}

// NoopRecorder is the Recorder used when metrics are not configured.
type NoopRecorder struct{}

func (NoopRecorder) ObserveSyncDuration(time.Duration)                         {}
func (NoopRecorder) IncSyncResult(ResultLabel)                                 {}
func (NoopRecorder) SetCorpusSize(int, int)                                    {}
func (NoopRecorder) SetNextPublish(time.Time)                                  {}
func (NoopRecorder) ObserveRequestDuration(string, string, int, time.Duration) {}
func (NoopRecorder) IncCacheEvent(string, bool)                                {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                        {}
func (NoopRecorder) IncBuildOutcome(ResultLabel)                               {}
