package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fullchaos-studio/devhealth/internal/entitlement"
	"github.com/fullchaos-studio/devhealth/internal/models"
)

func limitRouter(svc *entitlement.Service, user *models.User, name string, counter UsageCounter) *gin.Engine {
	r := gin.New()
	r.Use(userInjector(user))
	r.Use(RequireWithinLimit(svc, name, counter, zerolog.Nop()))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func staticCount(n int) UsageCounter {
	return func(context.Context, uuid.UUID) (int, error) {
		return n, nil
	}
}

func TestRequireWithinLimit(t *testing.T) {
	get := func(r *gin.Engine) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		r.ServeHTTP(w, req)
		return w
	}

	// Community tier: users limit is 5.
	svc, orgID := testEntitlementService(t, "community")
	user := &models.User{ID: uuid.New(), Role: models.RoleMember, OrgID: orgID}

	t.Run("under the limit passes", func(t *testing.T) {
		w := get(limitRouter(svc, user, "users", staticCount(3)))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("at the limit passes", func(t *testing.T) {
		w := get(limitRouter(svc, user, "users", staticCount(5)))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("over the limit returns 402 with context", func(t *testing.T) {
		w := get(limitRouter(svc, user, "users", staticCount(6)))
		if w.Code != http.StatusPaymentRequired {
			t.Fatalf("status = %d, want 402", w.Code)
		}

		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if body["error"] != "limit_exceeded" || body["limit"] != "users" {
			t.Errorf("body = %v, want limit_exceeded on users", body)
		}
		if body["maximum"] != float64(5) || body["current"] != float64(6) {
			t.Errorf("body = %v, want maximum 5 current 6", body)
		}
	})

	t.Run("unknown limit name fails closed", func(t *testing.T) {
		w := get(limitRouter(svc, user, "projects", staticCount(0)))
		if w.Code != http.StatusPaymentRequired {
			t.Fatalf("status = %d, want 402 for unknown limit", w.Code)
		}
	})

	t.Run("unlimited tier always passes", func(t *testing.T) {
		entSvc, entOrgID := testEntitlementService(t, "enterprise")
		entUser := &models.User{ID: uuid.New(), Role: models.RoleMember, OrgID: entOrgID}
		w := get(limitRouter(entSvc, entUser, "users", staticCount(1000000)))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 for unlimited", w.Code)
		}
	})

	t.Run("no user returns 401", func(t *testing.T) {
		w := get(limitRouter(svc, nil, "users", staticCount(0)))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})
}
