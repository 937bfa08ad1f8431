package telemetry

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveCycle("filtered")
	m.ObserveEvaluation(time.Millisecond)
	m.ObserveAccept(3, 1.5)
	m.SetCorpusSize(1)
}

func TestMetrics_Observe(t *testing.T) {
	m := New()
	m.ObserveCycle("filtered")
	m.ObserveCycle("filtered")
	m.ObserveCycle("accepted")
	m.ObserveEvaluation(time.Microsecond)
	m.ObserveAccept(4, 0.25)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Cycles().WithLabelValues("filtered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles().WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evaluations))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.corpusSize))
	assert.Equal(t, 0.25, testutil.ToFloat64(m.bestDifference))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveCycle("solved")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Cycles().WithLabelValues("solved")))
}

func TestServer_ServesAndShutsDown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))

	m := New()
	m.ObserveAccept(2, 3)

	srv, err := Listen("127.0.0.1:0", m, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	var body string
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + srv.Addr() + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		body = string(data)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	assert.True(t, strings.Contains(body, "eqfuzz_corpus_size 2"), body)
	assert.True(t, strings.Contains(body, "eqfuzz_best_difference 3"), body)

	cancel()
	require.NoError(t, <-done)
}

func TestListen_RequiresMetrics(t *testing.T) {
	_, err := Listen("127.0.0.1:0", nil, nil)
	assert.Error(t, err)
}

func TestServer_CloseReleasesAddress(t *testing.T) {
	srv, err := Listen("127.0.0.1:0", New(), zap.NewNop())
	require.NoError(t, err)
	addr := srv.Addr()
	require.NoError(t, srv.Close())

	again, err := Listen(addr, New(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, again.Close())
}
