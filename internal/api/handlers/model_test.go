package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SammyBolger/NBA-Analytics/internal/models"
	"github.com/SammyBolger/NBA-Analytics/internal/providers"
	"github.com/SammyBolger/NBA-Analytics/internal/services"
	"github.com/SammyBolger/NBA-Analytics/pkg/database"
)

// MockModelProxy for testing
type MockModelProxy struct {
	mock.Mock
}

func (m *MockModelProxy) ModelHealth(ctx context.Context) (models.ModelHealth, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.ModelHealth), args.Error(1)
}

func (m *MockModelProxy) Retrain(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

// mapCache is an in-process ModelCache.
type mapCache map[string][]byte

func (c mapCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := c[key]
	if !ok {
		return services.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c mapCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c[key] = data
	return nil
}

func (c mapCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c, k)
	}
	return nil
}

func modelRouter(t *testing.T, proxy ModelProxy, cache ModelCache) (*gin.Engine, *database.DB) {
	db, err := database.NewMemory()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	t.Cleanup(func() { _ = db.Close() })

	h := NewModelHandler(proxy, cache, db, quietLogger())
	r := gin.New()
	r.Use(withUser(5))
	r.GET("/model/health", h.GetModelHealth)
	r.POST("/model/retrain", h.Retrain)
	return r, db
}

func TestGetModelHealthCaches(t *testing.T) {
	health := models.ModelHealth{Models: map[string]map[string]models.ModelMetric{
		"logistic": {"accuracy": {Value: 0.64, SampleSize: 820, TrainedAt: "2024-01-14"}},
	}}
	proxy := new(MockModelProxy)
	proxy.On("ModelHealth", mock.Anything).Return(health, nil).Once()

	cache := mapCache{}
	r, _ := modelRouter(t, proxy, cache)

	for i := 0; i < 2; i++ {
		w, body := doJSON(t, r, http.MethodGet, "/model/health", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, body["models"], "logistic")
	}
	proxy.AssertExpectations(t)
}

func TestGetModelHealthWithoutCache(t *testing.T) {
	proxy := new(MockModelProxy)
	proxy.On("ModelHealth", mock.Anything).Return(models.ModelHealth{}, nil)
	r, _ := modelRouter(t, proxy, nil)

	w, _ := doJSON(t, r, http.MethodGet, "/model/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"models": {}}`, w.Body.String())
}

func TestGetModelHealthUpstreamErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"breaker open", providers.ErrFeedUnavailable, http.StatusServiceUnavailable},
		{"bad gateway", &providers.APIError{StatusCode: http.StatusInternalServerError}, http.StatusBadGateway},
		{"unauthorized", &providers.APIError{StatusCode: http.StatusUnauthorized}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proxy := new(MockModelProxy)
			proxy.On("ModelHealth", mock.Anything).Return(models.ModelHealth{}, tt.err)
			r, _ := modelRouter(t, proxy, nil)

			w, _ := doJSON(t, r, http.MethodGet, "/model/health", "")
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRetrainRecordsRun(t *testing.T) {
	proxy := new(MockModelProxy)
	proxy.On("Retrain", mock.Anything).Return(json.RawMessage(`{"logistic": {"accuracy": 0.66}}`), nil)

	cache := mapCache{services.ModelHealthCacheKey(): []byte(`{"models": {}}`)}
	r, db := modelRouter(t, proxy, cache)

	w, body := doJSON(t, r, http.MethodPost, "/model/retrain", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "retrained", body["status"])
	assert.NotContains(t, cache, services.ModelHealthCacheKey())

	var runs []models.RetrainRun
	require.NoError(t, db.Find(&runs).Error)
	require.Len(t, runs, 1)
	assert.Equal(t, uint(5), runs[0].TriggeredBy)
	assert.JSONEq(t, `{"logistic": {"accuracy": 0.66}}`, string(runs[0].Results))
}
