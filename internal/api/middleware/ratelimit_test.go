package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fullchaos-studio/devhealth/internal/entitlement"
	"github.com/fullchaos-studio/devhealth/internal/models"
)

func TestNewRateLimiter(t *testing.T) {
	t.Run("rejects bad period", func(t *testing.T) {
		if _, err := NewRateLimiter(10, "not-a-duration"); err == nil {
			t.Error("NewRateLimiter accepted a bad period")
		}
	})

	t.Run("accepts valid period", func(t *testing.T) {
		if _, err := NewRateLimiter(10, "1m"); err != nil {
			t.Errorf("NewRateLimiter error: %v", err)
		}
	})
}

func orgLimiterRouter(svc *entitlement.Service, user *models.User) *gin.Engine {
	r := gin.New()
	r.Use(userInjector(user))
	r.Use(NewOrgRateLimiter(svc, zerolog.Nop()).Middleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestOrgRateLimiter(t *testing.T) {
	get := func(r *gin.Engine) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("throttles at the resolved api_rate", func(t *testing.T) {
		store := entitlement.NewStaticStore()
		orgID := uuid.New()
		store.PutOrganization(&models.Organization{ID: orgID, Tier: "community"})
		store.PutLimitOverrides(orgID, map[string]int{"api_rate": 2})

		resolver := entitlement.NewResolver(entitlement.StandardCatalog(), zerolog.Nop())
		svc := entitlement.NewService(store, nil, resolver, zerolog.Nop())
		user := &models.User{ID: uuid.New(), Role: models.RoleMember, OrgID: orgID}
		r := orgLimiterRouter(svc, user)

		for i := 0; i < 2; i++ {
			if w := get(r); w.Code != http.StatusOK {
				t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
			}
		}
		w := get(r)
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("request 3 status = %d, want 429", w.Code)
		}
	})

	t.Run("unlimited orgs pass unthrottled", func(t *testing.T) {
		store := entitlement.NewStaticStore()
		orgID := uuid.New()
		store.PutOrganization(&models.Organization{ID: orgID, Tier: "enterprise"})

		resolver := entitlement.NewResolver(entitlement.StandardCatalog(), zerolog.Nop())
		svc := entitlement.NewService(store, nil, resolver, zerolog.Nop())
		user := &models.User{ID: uuid.New(), Role: models.RoleMember, OrgID: orgID}
		r := orgLimiterRouter(svc, user)

		for i := 0; i < 10; i++ {
			if w := get(r); w.Code != http.StatusOK {
				t.Fatalf("request %d status = %d, want 200 for unlimited", i+1, w.Code)
			}
		}
	})

	t.Run("anonymous requests pass through", func(t *testing.T) {
		store := entitlement.NewStaticStore()
		resolver := entitlement.NewResolver(entitlement.StandardCatalog(), zerolog.Nop())
		svc := entitlement.NewService(store, nil, resolver, zerolog.Nop())
		r := orgLimiterRouter(svc, nil)

		if w := get(r); w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})
}
