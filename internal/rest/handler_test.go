package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"hybridRecommender/business/recommendation"
	"hybridRecommender/domain"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	outcome  domain.Outcome
	debug    domain.DebugRanking
	search   []domain.ProductInfo
	info     domain.ProductInfo
	err      error
	gotUser  string
	gotTopN  int
	gotTerm  string
	reloads  int
	logs     []domain.RecommendationLog
	gotLimit int
}

func (f *fakeService) RecommendForUser(_ context.Context, userID string, topN int) (domain.Outcome, error) {
	f.gotUser, f.gotTopN = userID, topN
	return f.outcome, f.err
}

func (f *fakeService) DebugRecommendForUser(_ context.Context, userID string, topN int) (domain.DebugRanking, error) {
	f.gotUser, f.gotTopN = userID, topN
	return f.debug, f.err
}

func (f *fakeService) Popular(_ context.Context, topN int) (domain.Outcome, error) {
	f.gotTopN = topN
	return f.outcome, f.err
}

func (f *fakeService) Similar(_ context.Context, productID string, topN int) (domain.Outcome, error) {
	f.gotUser, f.gotTopN = productID, topN
	return f.outcome, f.err
}

func (f *fakeService) Search(_ context.Context, term string) ([]domain.ProductInfo, error) {
	f.gotTerm = term
	return f.search, f.err
}

func (f *fakeService) ProductInfo(_ context.Context, productID string) (domain.ProductInfo, error) {
	f.gotUser = productID
	return f.info, f.err
}

func (f *fakeService) Reload(context.Context) (recommendation.ReloadStats, error) {
	f.reloads++
	return recommendation.ReloadStats{Version: "abc", Products: 4}, f.err
}

func (f *fakeService) ListRecent(_ context.Context, subject string, limit int) ([]domain.RecommendationLog, error) {
	f.gotUser, f.gotLimit = subject, limit
	return f.logs, f.err
}

func newTestServer(svc *fakeService) *echo.Echo {
	e := echo.New()
	reco := NewRecommendationHandler(svc, 0)
	products := NewProductHandler(svc)
	admin := NewAdminHandler(svc, svc)

	e.GET("/recommendations/users/:user_id", reco.RecommendForUser)
	e.GET("/recommendations/users/:user_id/debug", reco.DebugRecommendForUser)
	e.GET("/products/popular", products.Popular)
	e.GET("/products/search", products.Search)
	e.GET("/products/:id", products.GetProductInfo)
	e.GET("/products/:id/similar", products.Similar)
	e.POST("/admin/catalog/reload", admin.ReloadCatalog)
	e.GET("/admin/recommendation-logs", admin.ListRecommendationLogs)
	return e
}

func get(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func popularOutcome() domain.Outcome {
	return domain.Outcome{
		Requested:      domain.StrategyPersonalized,
		Strategy:       domain.StrategyPopular,
		Items:          []domain.ProductInfo{{ProductID: "1", ProductName: "Sony Headphone"}},
		FallbackReason: fmt.Errorf("rank for user: %w", domain.ErrUnknownUser),
	}
}

func TestRecommendForUser(t *testing.T) {
	svc := &fakeService{outcome: popularOutcome()}
	e := newTestServer(svc)

	rec := get(e, http.MethodGet, "/recommendations/users/42?n=5")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", svc.gotUser)
	assert.Equal(t, 5, svc.gotTopN)
	assert.Contains(t, rec.Body.String(), `"strategy":"popular"`)
	assert.NotContains(t, rec.Body.String(), "fallback_reason")

	rec = get(e, http.MethodGet, "/recommendations/users/42?debug=true")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, svc.gotTopN)
	assert.Contains(t, rec.Body.String(), "fallback_reason")
	assert.Contains(t, rec.Body.String(), domain.ErrUnknownUser.Error())
}

func TestRecommendForUser_BadQuery(t *testing.T) {
	e := newTestServer(&fakeService{})

	assert.Equal(t, http.StatusBadRequest, get(e, http.MethodGet, "/recommendations/users/42?n=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, http.MethodGet, "/recommendations/users/42?n=-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, http.MethodGet, "/recommendations/users/42?n=5000").Code)
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		path string
		want int
	}{
		{"catalog not ready", domain.ErrCatalogNotReady, "/products/search?q=sony", http.StatusServiceUnavailable},
		{"unknown user in debug", fmt.Errorf("encode: %w", domain.ErrUnknownUser), "/recommendations/users/9/debug", http.StatusNotFound},
		{"deadline", context.DeadlineExceeded, "/products/popular", http.StatusGatewayTimeout},
		{"context canceled", fmt.Errorf("context error: %w", context.Canceled), "/recommendations/users/9", http.StatusInternalServerError},
		{"anything else", errors.New("boom"), "/products/1", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestServer(&fakeService{err: tc.err})
			rec := get(e, http.MethodGet, tc.path)
			assert.Equal(t, tc.want, rec.Code)
			assert.Contains(t, rec.Body.String(), "message")
		})
	}
}

func TestProductEndpoints(t *testing.T) {
	svc := &fakeService{
		outcome: domain.Outcome{Requested: domain.StrategySimilar, Strategy: domain.StrategySimilar, Items: nil},
		search:  []domain.ProductInfo{{ProductID: "3", ProductName: "Bose Headphone"}},
		info:    domain.UnknownProduct("404"),
	}
	e := newTestServer(svc)

	rec := get(e, http.MethodGet, "/products/7/similar?n=3")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", svc.gotUser)
	assert.Equal(t, 3, svc.gotTopN)
	assert.Contains(t, rec.Body.String(), `"items":[]`)

	rec = get(e, http.MethodGet, "/products/search?q=Bose")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bose", svc.gotTerm)
	assert.Contains(t, rec.Body.String(), "Bose Headphone")

	rec = get(e, http.MethodGet, "/products/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(e, http.MethodGet, "/products/404")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.UnknownProductName)
}

func TestAdminEndpoints(t *testing.T) {
	svc := &fakeService{logs: []domain.RecommendationLog{{Subject: "42", Strategy: "popular"}}}
	e := newTestServer(svc)

	rec := get(e, http.MethodPost, "/admin/catalog/reload")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.reloads)
	assert.Contains(t, rec.Body.String(), `"version":"abc"`)

	rec = get(e, http.MethodGet, "/admin/recommendation-logs?subject=42&limit=10")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", svc.gotUser)
	assert.Equal(t, 10, svc.gotLimit)

	rec = get(e, http.MethodGet, "/admin/recommendation-logs?limit=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminReload_Failure(t *testing.T) {
	e := newTestServer(&fakeService{err: errors.New("connection refused")})

	rec := get(e, http.MethodPost, "/admin/catalog/reload")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
