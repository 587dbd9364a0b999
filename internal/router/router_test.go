package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rentbroker/internal/config"
	"rentbroker/internal/models"
	"rentbroker/internal/services"
	th "rentbroker/internal/testhelpers"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testConfig = config.Config{
	JWTSecret:          "router-test-secret",
	JWTTTL:             time.Hour,
	BcryptCost:         4,
	CORSAllowedOrigins: []string{"*"},
}

type api struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
}

func newAPI(t *testing.T) *api {
	gdb := th.NewDB(t)
	return &api{t: t, db: gdb, handler: SetupRouter(gdb, testConfig, zerolog.Nop())}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// tokenFor signs a token for a fixture user without going through login.
func (a *api) tokenFor(u *models.User) string {
	token, _, err := services.NewTokenService(testConfig.JWTSecret, testConfig.JWTTTL, zerolog.Nop()).Issue(u)
	require.NoError(a.t, err)
	return token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["code"]
}

func (a *api) register(name string, role models.Role) string {
	a.t.Helper()

	rec := a.do("POST", "/api/auth/register", "", map[string]any{
		"email": name + "@example.com", "username": name, "password": "correct-horse",
		"firstname": "First", "lastname": "Last", "role": role,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do("POST", "/api/auth/login", "", map[string]string{"username_or_email": name, "password": "correct-horse"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.AuthResponse](a.t, rec).Token
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	rec := a.do("GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestAuthenticationFailures(t *testing.T) {
	a := newAPI(t)

	rec := a.do("GET", "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", errorCode(t, rec))

	rec = a.do("GET", "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", errorCode(t, rec))

	expired := services.NewTokenService(testConfig.JWTSecret, -time.Minute, zerolog.Nop())
	token, _, err := expired.Issue(th.CreateUser(t, a.db, "tina", models.RoleTenant))
	require.NoError(t, err)
	rec = a.do("GET", "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "expired_token", errorCode(t, rec))

	rec = a.do("POST", "/api/auth/login", "", map[string]string{"username_or_email": "tina", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", errorCode(t, rec))
}

func TestPropertyApprovalFlow(t *testing.T) {
	a := newAPI(t)
	ownerToken := a.register("olga", models.RoleOwner)
	tenantToken := a.register("tina", models.RoleTenant)
	adminToken := a.tokenFor(th.CreateUser(t, a.db, "ada", models.RoleAdmin))

	listing := map[string]any{
		"title": "Sunny apartment", "description": "Two rooms near the metro", "address": "12 Ermou Street",
		"city": "Athens", "price": 950, "bedrooms": 2, "bathrooms": 1, "size": 65, "type": "APARTMENT",
	}

	rec := a.do("POST", "/api/properties", tenantToken, listing)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))

	rec = a.do("POST", "/api/properties", ownerToken, listing)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	property := decode[models.Property](t, rec)
	assert.Equal(t, models.PropertyStatusPending, property.Status)

	rec = a.do("GET", "/api/properties", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, rec)["total_elements"])

	rec = a.do("GET", fmt.Sprintf("/api/properties/%d", property.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do("GET", "/api/properties/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["total_elements"])

	approve := fmt.Sprintf("/api/properties/%d/approve", property.ID)
	rec = a.do("POST", approve, ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do("POST", approve, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do("POST", approve, adminToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_exists", errorCode(t, rec))

	rec = a.do("GET", "/api/properties?city=athens&minPrice=900", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["total_elements"])

	rec = a.do("GET", "/api/properties?sortBy=password", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do("GET", "/api/properties?minPrice=cheap", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplicationFlow(t *testing.T) {
	a := newAPI(t)
	ownerToken := a.register("olga", models.RoleOwner)
	tenantToken := a.register("tina", models.RoleTenant)
	adminToken := a.tokenFor(th.CreateUser(t, a.db, "ada", models.RoleAdmin))

	var owner models.User
	require.NoError(t, a.db.Preload("RoleRows").Where("username = ?", "olga").First(&owner).Error)
	var tenant models.User
	require.NoError(t, a.db.Where("username = ?", "tina").First(&tenant).Error)
	p := th.CreateProperty(t, a.db, &owner, models.PropertyStatusApproved)

	body := map[string]any{"property_id": p.ID, "message": "We would love to move in"}
	rec := a.do("POST", "/api/applications", tenantToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do("POST", fmt.Sprintf("/api/users/%d/verify", tenant.ID), ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do("POST", fmt.Sprintf("/api/users/%d/verify", tenant.ID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = a.do("POST", "/api/applications", tenantToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	app := decode[models.RentalApplication](t, rec)

	rec = a.do("POST", "/api/applications", tenantToken, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do("GET", "/api/applications/owner?status=pending", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["total_elements"])

	rec = a.do("POST", fmt.Sprintf("/api/applications/%d/approve", app.ID), ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.ApplicationStatusApproved, decode[models.RentalApplication](t, rec).Status)

	rec = a.do("POST", fmt.Sprintf("/api/applications/%d/reject", app.ID), ownerToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestViewingFlow(t *testing.T) {
	a := newAPI(t)
	ownerToken := a.register("olga", models.RoleOwner)
	tenantToken := a.register("tina", models.RoleTenant)

	var owner models.User
	require.NoError(t, a.db.Where("username = ?", "olga").First(&owner).Error)
	p := th.CreateProperty(t, a.db, &owner, models.PropertyStatusApproved)

	rec := a.do("POST", "/api/viewings", tenantToken, map[string]any{"property_id": p.ID, "notes": "Mornings"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	viewing := decode[models.ViewingRequest](t, rec)

	rec = a.do("POST", fmt.Sprintf("/api/viewings/%d/complete", viewing.ID), ownerToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do("POST", fmt.Sprintf("/api/viewings/%d/confirm", viewing.ID), ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do("POST", fmt.Sprintf("/api/viewings/%d/complete", viewing.ID), ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ViewingStatusCompleted, decode[models.ViewingRequest](t, rec).Status)

	rec = a.do("GET", "/api/viewings/my?status=COMPLETED", tenantToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["total_elements"])

	rec = a.do("GET", "/api/viewings/my?requestedFrom=yesterday", tenantToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminDeactivationLocksUserOut(t *testing.T) {
	a := newAPI(t)
	tenantToken := a.register("tina", models.RoleTenant)
	adminToken := a.tokenFor(th.CreateUser(t, a.db, "ada", models.RoleAdmin))

	rec := a.do("GET", "/api/users?role=tenant", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Content []models.UserResponse `json:"content"`
	}](t, rec)
	require.Len(t, page.Content, 1)
	tenantID := page.Content[0].ID

	rec = a.do("GET", "/api/auth/me", tenantToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = a.do("POST", fmt.Sprintf("/api/users/%d/deactivate", tenantID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do("GET", "/api/auth/me", tenantToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do("POST", fmt.Sprintf("/api/users/%d/roles/landlord", tenantID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
