package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/event-reservation-api/internal/handler"
	"github.com/iliyamo/event-reservation-api/internal/model"
	"github.com/iliyamo/event-reservation-api/internal/router"
	"github.com/iliyamo/event-reservation-api/internal/service"
	"github.com/iliyamo/event-reservation-api/internal/service/servicetest"
)

type reply struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

type api struct {
	t  *testing.T
	e  *echo.Echo
	db *servicetest.DB
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newAPI(t *testing.T) *api {
	t.Helper()
	log := zap.NewNop()
	db := servicetest.NewDB()
	images := servicetest.NewImages()

	auth := service.NewAuthService(db.Users(), db.Tokens(), "test-secret", 60, bcrypt.MinCost, log)
	cities := service.NewCityService(db.Cities(), images, nil, log)
	events := service.NewEventService(db.Events(), db.Cities(), images, nil, log)
	public := service.NewPublicService(db.Events(), db.Cities())
	reservations := service.NewReservationService(db.Events(), db.Reservations(), nil, log)

	e := echo.New()
	e.HTTPErrorHandler = handler.NewErrorHandler(log)
	router.RegisterAuth(e, handler.NewAuthHandler(auth), auth, passthrough)
	router.RegisterPublic(e, handler.NewPublicHandler(public))
	router.RegisterAdmin(e, handler.NewCityHandler(cities), handler.NewEventHandler(events), auth)
	router.RegisterUser(e, handler.NewReservationHandler(reservations), auth)
	return &api{t: t, e: e, db: db}
}

func (a *api) do(method, path, token string, body any) (int, reply) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var r reply
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &r), rec.Body.String())
	}
	return rec.Code, r
}

func (a *api) data(raw json.RawMessage, dst any) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(raw, dst))
}

// login returns a token for the given credentials.
func (a *api) login(email, password string) string {
	a.t.Helper()
	code, r := a.do(http.MethodPost, "/login", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, code, r.Message)
	var auth struct {
		AccessToken string `json:"access_token"`
	}
	a.data(r.Data, &auth)
	return auth.AccessToken
}

func (a *api) adminToken() string {
	a.t.Helper()
	u := &model.User{Name: "Admin", Email: "admin@example.com", Phone: "100", Role: model.RoleAdmin}
	require.NoError(a.t, a.db.Users().Create(context.Background(), u, "admin-pass", bcrypt.MinCost))
	return a.login("admin@example.com", "admin-pass")
}

func (a *api) memberToken(email string) string {
	a.t.Helper()
	code, r := a.do(http.MethodPost, "/register", "", map[string]string{
		"name": "Sara", "email": email, "phone": "0912", "password": "pass-1234",
	})
	require.Equal(a.t, http.StatusCreated, code, r.Message)
	var auth struct {
		AccessToken string `json:"access_token"`
	}
	a.data(r.Data, &auth)
	return auth.AccessToken
}

func (a *api) createCity(token, name string) string {
	a.t.Helper()
	code, r := a.do(http.MethodPost, "/cities", token, map[string]string{"name": name})
	require.Equal(a.t, http.StatusCreated, code, r.Message)
	var c struct {
		ID string `json:"id"`
	}
	a.data(r.Data, &c)
	return c.ID
}

func (a *api) createEvent(token string, body map[string]any) string {
	a.t.Helper()
	code, r := a.do(http.MethodPost, "/events", token, body)
	require.Equal(a.t, http.StatusCreated, code, r.Message)
	var ev struct {
		ID string `json:"id"`
	}
	a.data(r.Data, &ev)
	return ev.ID
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t)

	code, r := a.do(http.MethodPost, "/register", "", map[string]string{
		"name": "Sara", "email": "  Sara@Example.com ", "phone": "0912", "password": "pass-1234",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, r.Success)
	var reg struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		User        struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	a.data(r.Data, &reg)
	assert.Equal(t, "Bearer", reg.TokenType)
	assert.Equal(t, "sara@example.com", reg.User.Email)
	assert.Equal(t, model.RoleUser, reg.User.Role)
	assert.NotContains(t, string(r.Data), "password")

	code, r = a.do(http.MethodGet, "/me", reg.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(r.Data), "sara@example.com")

	code, _ = a.do(http.MethodPost, "/logout", reg.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)

	code, r = a.do(http.MethodGet, "/me", reg.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, r.Success)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newAPI(t)
	a.memberToken("sara@example.com")

	code, r := a.do(http.MethodPost, "/login", "", map[string]string{"email": "sara@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "The provided credentials are incorrect.", r.Message)
}

func TestRegisterValidation(t *testing.T) {
	a := newAPI(t)

	code, r := a.do(http.MethodPost, "/register", "", map[string]string{})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.False(t, r.Success)
	for _, f := range []string{"name", "email", "phone", "password"} {
		assert.Contains(t, r.Errors, f)
	}
}

func TestMalformedBody(t *testing.T) {
	a := newAPI(t)
	admin := a.adminToken()

	code, r := a.do(http.MethodPost, "/cities", admin, `{"name":`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "The request body is invalid.", r.Message)

	code, r = a.do(http.MethodPost, "/cities", admin, `{"name": 42}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, r.Errors, "name")
}

func TestAdminRoutesCheckRole(t *testing.T) {
	a := newAPI(t)
	admin := a.adminToken()
	member := a.memberToken("sara@example.com")

	code, _ := a.do(http.MethodGet, "/cities", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, r := a.do(http.MethodPost, "/cities", member, map[string]string{"name": "Tehran"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, r.Success)

	a.createCity(admin, "Tehran")
	code, r = a.do(http.MethodPost, "/cities", admin, map[string]string{"name": "Tehran"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, r.Errors, "name")

	code, r = a.do(http.MethodGet, "/cities", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var list []map[string]any
	a.data(r.Data, &list)
	assert.Len(t, list, 1)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	a := newAPI(t)

	code, r := a.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, r.Success)
}

func TestEventVisibility(t *testing.T) {
	a := newAPI(t)
	admin := a.adminToken()
	cityID := a.createCity(admin, "Tehran")
	eventID := a.createEvent(admin, map[string]any{
		"title": "Jazz Night", "city_id": cityID, "start_date": "2099-05-01", "price": 10,
	})

	code, r := a.do(http.MethodGet, "/public/events/"+eventID, "", nil)
	require.Equal(t, http.StatusOK, code)
	var ev struct {
		StartDate string `json:"start_date"`
		IsActive  bool   `json:"is_active"`
		City      struct {
			Name string `json:"name"`
		} `json:"city"`
	}
	a.data(r.Data, &ev)
	assert.Equal(t, "2099-05-01", ev.StartDate)
	assert.True(t, ev.IsActive)
	assert.Equal(t, "Tehran", ev.City.Name)

	code, r = a.do(http.MethodGet, "/public/events/city/"+cityID, "", nil)
	require.Equal(t, http.StatusOK, code)
	var byCity struct {
		City   map[string]any   `json:"city"`
		Events []map[string]any `json:"events"`
	}
	a.data(r.Data, &byCity)
	assert.Equal(t, "Tehran", byCity.City["name"])
	assert.Len(t, byCity.Events, 1)

	code, _ = a.do(http.MethodPatch, "/events/"+eventID+"/toggle-status", admin, nil)
	require.Equal(t, http.StatusOK, code)

	code, r = a.do(http.MethodGet, "/public/events/"+eventID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Event not found or inactive", r.Message)

	code, r = a.do(http.MethodGet, "/public/events", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(r.Data))

	code, _ = a.do(http.MethodGet, "/events/"+eventID, admin, nil)
	assert.Equal(t, http.StatusOK, code, "admins still see inactive events")
}

func TestEventValidation(t *testing.T) {
	a := newAPI(t)
	admin := a.adminToken()
	cityID := a.createCity(admin, "Tehran")

	code, r := a.do(http.MethodPost, "/events", admin, map[string]any{
		"city_id": cityID, "start_date": "2099-05-10", "end_date": "2099-05-01", "price": -1,
	})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	for _, f := range []string{"title", "end_date", "price"} {
		assert.Contains(t, r.Errors, f)
	}
}

func TestReservationFlow(t *testing.T) {
	a := newAPI(t)
	admin := a.adminToken()
	member := a.memberToken("sara@example.com")
	cityID := a.createCity(admin, "Tehran")
	eventID := a.createEvent(admin, map[string]any{"title": "Jazz Night", "city_id": cityID})
	base := "/user/events/" + eventID

	code, _ := a.do(http.MethodPost, base+"/reserve", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(http.MethodPost, base+"/reserve", member, nil)
	require.Equal(t, http.StatusCreated, code)

	code, r := a.do(http.MethodPost, base+"/reserve", member, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "You are already registered for this event", r.Message)

	code, r = a.do(http.MethodGet, base+"/check", member, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"is_registered":true}`, string(r.Data))

	code, r = a.do(http.MethodGet, "/user/events/reservations", member, nil)
	require.Equal(t, http.StatusOK, code)
	var list []map[string]any
	a.data(r.Data, &list)
	require.Len(t, list, 1)
	assert.Equal(t, eventID, list[0]["id"])
	assert.Contains(t, list[0], "reserved_at")

	code, _ = a.do(http.MethodDelete, base+"/cancel", member, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodDelete, base+"/cancel", member, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, r = a.do(http.MethodGet, "/user/events/00000000-0000-0000-0000-000000000000/check", member, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"is_registered":false}`, string(r.Data))
}

func TestCityDeleteRemovesEvents(t *testing.T) {
	a := newAPI(t)
	admin := a.adminToken()
	cityID := a.createCity(admin, "Tehran")
	eventID := a.createEvent(admin, map[string]any{"title": "Jazz Night", "city_id": cityID})

	code, _ := a.do(http.MethodDelete, "/cities/"+cityID, admin, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodGet, "/events/"+eventID, admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.do(http.MethodGet, "/cities/"+cityID, admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
