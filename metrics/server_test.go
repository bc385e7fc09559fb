package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cea-hpc/rbh-fsevents/dedup"
)

type fakeCollector struct {
	stats dedup.Stats
}

func (f *fakeCollector) Stats() dedup.Stats { return f.stats }

func TestServerExposesMetricsAndHealth(t *testing.T) {
	collector := &fakeCollector{stats: dedup.Stats{BatchesCut: 2, EventsCloned: 7, HighWaterMark: 4}}
	srv, err := NewServer("127.0.0.1:0", collector)
	require.NoError(t, err)

	go srv.Serve()
	defer srv.Shutdown(context.Background())

	base := "http://" + srv.Addr()

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "rbh_fsevents_batches_cut_total 2")
	assert.Contains(t, string(body), "rbh_fsevents_events_cloned_total 7")
	assert.Contains(t, string(body), "rbh_fsevents_ring_high_water_mark 4")
}
