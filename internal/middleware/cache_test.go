package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/config"
)

// routedContext builds a context the way echo's router would hand it to
// middleware: concrete URL in the request, route pattern on the context.
func routedContext(target, pattern string, userID uint64) echo.Context {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetPath(pattern)
	if userID != 0 {
		c.Set(CtxUserID, userID)
	}
	return c
}

func TestCacheKeySeparatesResourcesBehindOneRoute(t *testing.T) {
	cfg := config.LoadCacheConfig()
	const pattern = "/v1/projects/:project_id/report"

	k1 := cacheKeyFrom(cfg, routedContext("/v1/projects/1/report", pattern, 7))
	k2 := cacheKeyFrom(cfg, routedContext("/v1/projects/2/report", pattern, 7))
	if k1 == k2 {
		t.Fatalf("reports of two projects share cache key %s", k1)
	}
}

func TestCacheKeySeparatesCallers(t *testing.T) {
	cfg := config.LoadCacheConfig()
	const pattern = "/v1/projects/:project_id/report"

	k1 := cacheKeyFrom(cfg, routedContext("/v1/projects/1/report", pattern, 7))
	k2 := cacheKeyFrom(cfg, routedContext("/v1/projects/1/report", pattern, 8))
	if k1 == k2 {
		t.Fatalf("two callers share cache key %s for a personalized response", k1)
	}
	guest := cacheKeyFrom(cfg, routedContext("/v1/projects/1/report", pattern, 0))
	if guest == k1 || guest == k2 {
		t.Fatalf("guest key collides with an authenticated caller's key")
	}
}

func TestCacheKeyStableForSameCallerAndPath(t *testing.T) {
	cfg := config.LoadCacheConfig()
	const pattern = "/v1/projects/:project_id/report"

	k1 := cacheKeyFrom(cfg, routedContext("/v1/projects/1/report", pattern, 7))
	k2 := cacheKeyFrom(cfg, routedContext("/v1/projects/1/report", pattern, 7))
	if k1 != k2 {
		t.Fatalf("same caller and path produced different keys: %s vs %s", k1, k2)
	}
	withQuery := cacheKeyFrom(cfg, routedContext("/v1/projects/1/report?full=1", pattern, 7))
	if withQuery == k1 {
		t.Fatalf("query string ignored under the path_query strategy")
	}
}
