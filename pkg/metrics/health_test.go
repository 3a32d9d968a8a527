package metrics

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/pkg/catalog"
)

func resetHealthChecker() {
	healthChecker = &HealthChecker{
		components: make(map[string]ComponentHealth),
		startTime:  time.Now(),
	}
}

func TestCollectHealthRegistersCatalogAndStore(t *testing.T) {
	resetHealthChecker()

	v, err := catalog.Open(t.TempDir(), catalog.Defaults{})
	require.NoError(t, err)
	defer v.Close()

	_, err = v.Create("users", catalog.Document)
	require.NoError(t, err)

	c := NewCollector(v, nil, nil)
	c.collect()

	health := GetHealth()
	require.Equal(t, "healthy", health.Status)
	require.Equal(t, "healthy", health.Components["catalog"])
	require.Equal(t, "healthy", health.Components["store"])
}

func TestReadinessReportsNotReadyWhenStoreIsClosed(t *testing.T) {
	resetHealthChecker()

	v, err := catalog.Open(t.TempDir(), catalog.Defaults{})
	require.NoError(t, err)

	c := NewCollector(v, nil, nil)
	c.collect()
	require.Equal(t, "ready", GetReadiness().Status)

	require.NoError(t, v.Close())
	c.collect()

	readiness := GetReadiness()
	require.Equal(t, "not_ready", readiness.Status)
	require.Contains(t, readiness.Components["store"], "not ready")
}

func TestHealthHandlerServesWiredComponents(t *testing.T) {
	resetHealthChecker()

	v := catalog.New(t.TempDir(), catalog.Defaults{})
	c := NewCollector(v, nil, nil)
	c.collect()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	HealthHandler()(w, req)

	var health HealthStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&health))
	require.Equal(t, "healthy", health.Status)
	require.Equal(t, "healthy", health.Components["catalog"])
}

func TestLivenessHandlerReportsAliveRegardlessOfComponents(t *testing.T) {
	resetHealthChecker()

	req := httptest.NewRequest("GET", "/live", nil)
	w := httptest.NewRecorder()
	LivenessHandler()(w, req)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Equal(t, "alive", response["status"])
}
