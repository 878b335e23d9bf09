package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyCheck() CheckResult {
	return CheckResult{Status: StatusHealthy, Message: "ok"}
}

func degradedCheck() CheckResult {
	return CheckResult{Status: StatusDegraded, Message: "limping"}
}

func unhealthyCheck() CheckResult {
	return CheckResult{Status: StatusUnhealthy, Message: "down"}
}

func TestCheckHealthAggregation(t *testing.T) {
	hc := NewHealthChecker("svc", "v1")
	status := hc.CheckHealth()
	assert.Equal(t, StatusHealthy, status.Status, "no checks means healthy")
	assert.Equal(t, "svc", status.Service)
	assert.Equal(t, "v1", status.Version)

	hc.AddCheck("a", healthyCheck)
	assert.Equal(t, StatusHealthy, hc.CheckHealth().Status)

	hc.AddCheck("b", degradedCheck)
	assert.Equal(t, StatusDegraded, hc.CheckHealth().Status)

	hc.AddCheck("c", unhealthyCheck)
	status = hc.CheckHealth()
	assert.Equal(t, StatusUnhealthy, status.Status, "unhealthy outranks degraded")
	assert.Len(t, status.Checks, 3)
	assert.Equal(t, "limping", status.Checks["b"].Message)
}

func TestCheckHealthUnknownStatusCountsAsUnhealthy(t *testing.T) {
	hc := NewHealthChecker("svc", "v1")
	hc.AddCheck("weird", func() CheckResult {
		return CheckResult{Status: "confused"}
	})
	assert.Equal(t, StatusUnhealthy, hc.CheckHealth().Status)
}

func TestHealthHandlerStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	serve := func(hc *HealthChecker) *httptest.ResponseRecorder {
		router := gin.New()
		router.GET("/health", hc.Handler())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		return w
	}

	hc := NewHealthChecker("svc", "v1")
	hc.AddCheck("a", healthyCheck)
	w := serve(hc)
	assert.Equal(t, http.StatusOK, w.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Equal(t, "svc", status.Service)
	assert.NotZero(t, status.Timestamp)

	// Degraded still serves traffic.
	hc.AddCheck("b", degradedCheck)
	assert.Equal(t, http.StatusOK, serve(hc).Code)

	hc.AddCheck("c", unhealthyCheck)
	assert.Equal(t, http.StatusServiceUnavailable, serve(hc).Code)
}

func TestConfigurationHealthCheck(t *testing.T) {
	check := ConfigurationHealthCheck(map[string]string{
		"SALT1": "set",
		"SALT2": "set",
	}, StatusUnhealthy)
	result := check()
	assert.Equal(t, StatusHealthy, result.Status)

	check = ConfigurationHealthCheck(map[string]string{
		"SALT1": "set",
		"SALT2": "",
	}, StatusUnhealthy)
	result = check()
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Contains(t, result.Message, "SALT2")
}

func TestConfigurationHealthCheckDegradedSeverity(t *testing.T) {
	check := ConfigurationHealthCheck(map[string]string{"SALT1": ""}, StatusDegraded)
	result := check()
	assert.Equal(t, StatusDegraded, result.Status)
	assert.Contains(t, result.Message, "SALT1")

	// A degraded config check degrades the service without failing it.
	hc := NewHealthChecker("svc", "v1")
	hc.AddCheck("salts", check)
	assert.Equal(t, StatusDegraded, hc.CheckHealth().Status)
}
