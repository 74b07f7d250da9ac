package middleware

import (
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

func init() {
	gin.SetMode(gin.TestMode)
}

func testEntitlementService(t *testing.T, tier string) (*entitlement.Service, uuid.UUID) {
	t.Helper()
	store := entitlement.NewStaticStore()
	orgID := uuid.New()
	store.PutOrganization(&models.Organization{ID: orgID, Name: "Test Org", Tier: tier})

	resolver := entitlement.NewResolver(entitlement.StandardCatalog(), zerolog.Nop())
	return entitlement.NewService(store, nil, resolver, zerolog.Nop()), orgID
}

// userInjector fakes the platform's authentication middleware.
func userInjector(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			SetUser(c, user)
		}
		c.Next()
	}
}

func TestRequireFeature(t *testing.T) {
	t.Run("allowed feature passes through", func(t *testing.T) {
		svc, orgID := testEntitlementService(t, "team")
		user := &models.User{ID: uuid.New(), Role: models.RoleMember, OrgID: orgID}

		r := gin.New()
		r.Use(userInjector(user))
		r.Use(RequireFeature(svc, "team_dashboard", zerolog.Nop()))
		r.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
	})

	t.Run("unlicensed feature returns 402 with upgrade context", func(t *testing.T) {
		svc, orgID := testEntitlementService(t, "community")
		user := &models.User{ID: uuid.New(), Role: models.RoleMember, OrgID: orgID}

		r := gin.New()
		r.Use(userInjector(user))
		r.Use(RequireFeature(svc, "sso", zerolog.Nop()))
		r.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusPaymentRequired {
			t.Fatalf("status = %d, want 402: %s", w.Code, w.Body.String())
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if body["error"] != "feature_not_licensed" {
			t.Errorf("error = %q, want feature_not_licensed", body["error"])
		}
		if body["required_tier"] != "enterprise" {
			t.Errorf("required_tier = %q, want enterprise", body["required_tier"])
		}
		if body["current_tier"] != "community" {
			t.Errorf("current_tier = %q, want community", body["current_tier"])
		}
	})

	t.Run("no user returns 401", func(t *testing.T) {
		svc, _ := testEntitlementService(t, "team")

		r := gin.New()
		r.Use(RequireFeature(svc, "team_dashboard", zerolog.Nop()))
		r.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("unknown org returns 500", func(t *testing.T) {
		svc, _ := testEntitlementService(t, "team")
		user := &models.User{ID: uuid.New(), Role: models.RoleMember, OrgID: uuid.New()}

		r := gin.New()
		r.Use(userInjector(user))
		r.Use(RequireFeature(svc, "team_dashboard", zerolog.Nop()))
		r.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", w.Code)
		}
	})
}
