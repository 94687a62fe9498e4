package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ratehub/ratehub-backend/config"
	"github.com/ratehub/ratehub-backend/internal/app/repository"
	"github.com/ratehub/ratehub-backend/internal/app/service"
	"github.com/ratehub/ratehub-backend/internal/db"
	"github.com/ratehub/ratehub-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret     = "test-secret"
	testCookieName = "token"
	validName      = "Johnathan Michael Harrington"
	validPassword  = "Sup3rSecret!"
)

func setupAuthControllerTest(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(userRepo, testSecret, 7*24*time.Hour)
	cookieCfg := config.CookieConfig{Name: testCookieName}
	ctrl := NewAuthController(authService, cookieCfg, 7*24*time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(testSecret, testCookieName, userRepo)

	router := gin.New()
	router.POST("/auth/signup", ctrl.Signup)
	router.POST("/auth/login", ctrl.Login)
	router.POST("/auth/logout", ctrl.Logout)
	router.GET("/auth/me", authMiddleware.Authenticate(), ctrl.Me)
	router.POST("/auth/change-password", authMiddleware.Authenticate(), ctrl.ChangePassword)

	return router
}

func postJSON(router *gin.Engine, path string, payload interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestAuthController_Signup(t *testing.T) {
	router := setupAuthControllerTest(t)

	t.Run("Success sets cookie", func(t *testing.T) {
		w := postJSON(router, "/auth/signup", SignupRequest{
			Email:    "new@example.com",
			Password: validPassword,
			Name:     validName,
			Address:  "1 First Street",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		cookie := sessionCookie(t, w)
		assert.True(t, cookie.HttpOnly)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		user := response["user"].(map[string]interface{})
		assert.Equal(t, "USER", user["role"])
	})

	t.Run("Duplicate email gets 409", func(t *testing.T) {
		w := postJSON(router, "/auth/signup", SignupRequest{
			Email:    "new@example.com",
			Password: validPassword,
			Name:     validName,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_EMAIL_EXISTS")
	})

	t.Run("Validation failures get 400", func(t *testing.T) {
		cases := []SignupRequest{
			{Email: "bad-email", Password: validPassword, Name: validName},
			{Email: "a@b.com", Password: "short", Name: validName},
			{Email: "a@b.com", Password: "nouppercase1!", Name: validName},
			{Email: "a@b.com", Password: "NoSpecial123", Name: validName},
			{Email: "a@b.com", Password: validPassword, Name: "Too Short"},
		}
		for _, reqBody := range cases {
			w := postJSON(router, "/auth/signup", reqBody)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	})
}

func TestAuthController_LoginAndMe(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := postJSON(router, "/auth/signup", SignupRequest{
		Email:    "login@example.com",
		Password: validPassword,
		Name:     validName,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("Wrong password gets 401", func(t *testing.T) {
		w := postJSON(router, "/auth/login", LoginRequest{
			Email:    "login@example.com",
			Password: "WrongPass1!",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_INVALID_CREDENTIALS")
	})

	t.Run("Login then me roundtrip", func(t *testing.T) {
		w := postJSON(router, "/auth/login", LoginRequest{
			Email:    "login@example.com",
			Password: validPassword,
		})
		require.Equal(t, http.StatusOK, w.Code)
		cookie := sessionCookie(t, w)

		req := httptest.NewRequest("GET", "/auth/me", nil)
		req.AddCookie(cookie)
		me := httptest.NewRecorder()
		router.ServeHTTP(me, req)

		assert.Equal(t, http.StatusOK, me.Code)
		assert.Contains(t, me.Body.String(), "login@example.com")
	})

	t.Run("Me without cookie gets 401", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/auth/me", nil)
		me := httptest.NewRecorder()
		router.ServeHTTP(me, req)
		assert.Equal(t, http.StatusUnauthorized, me.Code)
	})
}

func TestAuthController_Logout(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := postJSON(router, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "logout should expire the session cookie")
}

func TestAuthController_ChangePassword(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := postJSON(router, "/auth/signup", SignupRequest{
		Email:    "change@example.com",
		Password: validPassword,
		Name:     validName,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	cookie := sessionCookie(t, w)

	t.Run("Wrong current password", func(t *testing.T) {
		body, _ := json.Marshal(ChangePasswordRequest{
			CurrentPassword: "NotTheOne1!",
			NewPassword:     "N3wSecret!!",
		})
		req := httptest.NewRequest("POST", "/auth/change-password", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "AUTH_WRONG_PASSWORD")
	})

	t.Run("Successful change allows new login", func(t *testing.T) {
		body, _ := json.Marshal(ChangePasswordRequest{
			CurrentPassword: validPassword,
			NewPassword:     "N3wSecret!!",
		})
		req := httptest.NewRequest("POST", "/auth/change-password", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		login := postJSON(router, "/auth/login", LoginRequest{
			Email:    "change@example.com",
			Password: "N3wSecret!!",
		})
		assert.Equal(t, http.StatusOK, login.Code)
	})
}
