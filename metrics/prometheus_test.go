package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_RecordsAndGathers(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveSyncDuration(120 * time.Millisecond)
	pr.IncSyncResult(ResultSuccess)
	pr.IncSyncResult(ResultSuccess)
	pr.IncSyncResult(ResultWarning)
	pr.SetCorpusSize(42, 3)
	pr.SetNextPublish(time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC))
	pr.ObserveRequestDuration("/posts/:slug/", "GET", 200, 5*time.Millisecond)
	pr.IncCacheEvent("posts", true)
	pr.IncCacheEvent("posts", false)
	pr.ObserveBuildDuration(2 * time.Second)
	pr.IncBuildOutcome(ResultSuccess)

	require.Equal(t, 2.0, testutil.ToFloat64(pr.syncResults.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(pr.syncResults.WithLabelValues("warning")))
	require.Equal(t, 42.0, testutil.ToFloat64(pr.corpusPosts))
	require.Equal(t, 3.0, testutil.ToFloat64(pr.corpusProblems))
	require.Equal(t, 1.0, testutil.ToFloat64(pr.cacheEvents.WithLabelValues("posts", "hit")))
	require.Equal(t, 1.0, testutil.ToFloat64(pr.cacheEvents.WithLabelValues("posts", "miss")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestPrometheusRecorder_NextPublishZeroTimeClearsGauge(t *testing.T) {
	pr := NewPrometheusRecorder(nil)

	pr.SetNextPublish(time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC))
	require.Positive(t, testutil.ToFloat64(pr.nextPublish))

	pr.SetNextPublish(time.Time{})
	require.Zero(t, testutil.ToFloat64(pr.nextPublish))
}

func TestPrometheusRecorder_NilReceiverIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveSyncDuration(time.Second)
	pr.IncSyncResult(ResultFailed)
	pr.SetCorpusSize(0, 0)
	pr.SetNextPublish(time.Now())
	pr.ObserveRequestDuration("/", "GET", 200, time.Millisecond)
	pr.IncCacheEvent("posts", true)
	pr.ObserveBuildDuration(time.Second)
	pr.IncBuildOutcome(ResultFailed)
}

func TestNoopRecorder_SatisfiesRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveSyncDuration(time.Second)
	r.IncSyncResult(ResultSuccess)
	r.SetCorpusSize(1, 0)
	r.SetNextPublish(time.Time{})
	r.ObserveRequestDuration("/", "GET", 404, time.Millisecond)
	r.IncCacheEvent("posts", false)
	r.ObserveBuildDuration(time.Second)
	r.IncBuildOutcome(ResultWarning)
}
