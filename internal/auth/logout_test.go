package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/paritbhardwaj019/pathosaathi/pkg/cache"
	"github.com/paritbhardwaj019/pathosaathi/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogout_GaugeTracksRegisteredSessionsOnly(t *testing.T) {
	// Asserts on the shared gauge, so no t.Parallel.
	mr := miniredis.RunT(t)
	store := cache.New(cache.Config{Addr: mr.Addr()}, zap.NewNop())
	s := &Service{sessions: store}

	ctx := context.Background()
	before := testutil.ToFloat64(prometheus.ActiveSessionsGauge)

	// Logging out a session that was never registered must not move the
	// gauge.
	s.Logout(ctx, "never-registered")
	assert.Equal(t, before, testutil.ToFloat64(prometheus.ActiveSessionsGauge))

	// A registered session decrements it exactly once.
	require.NoError(t, store.Set(ctx, sessionKey("sess-1"), "PS_ROOT:1", time.Minute))
	s.Logout(ctx, "sess-1")
	assert.Equal(t, before-1, testutil.ToFloat64(prometheus.ActiveSessionsGauge))

	// Repeating the logout finds nothing to remove.
	s.Logout(ctx, "sess-1")
	assert.Equal(t, before-1, testutil.ToFloat64(prometheus.ActiveSessionsGauge))
}
