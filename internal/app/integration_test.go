package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ratehub/ratehub-backend/config"
	"github.com/ratehub/ratehub-backend/internal/app/controller"
	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/internal/app/repository"
	"github.com/ratehub/ratehub-backend/internal/app/service"
	"github.com/ratehub/ratehub-backend/internal/db"
	"github.com/ratehub/ratehub-backend/internal/middleware"
	"github.com/ratehub/ratehub-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret     = "integration-test-secret"
	testCookieName = "token"
)

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)
	controller.RegisterValidators()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	ratingRepo := repository.NewRatingRepository(testDB)
	dashboardRepo := repository.NewDashboardRepository(testDB)

	authService := service.NewAuthService(userRepo, testSecret, 7*24*time.Hour)
	storeService := service.NewStoreService(storeRepo, ratingRepo)
	ratingService := service.NewRatingService(ratingRepo)
	ownerService := service.NewOwnerService(storeRepo, ratingRepo)
	adminService := service.NewAdminService(userRepo, storeRepo, dashboardRepo)

	cookieCfg := config.CookieConfig{Name: testCookieName}
	authController := controller.NewAuthController(authService, cookieCfg, 7*24*time.Hour)
	storeController := controller.NewStoreController(storeService, ratingService)
	ownerController := controller.NewOwnerController(ownerService)
	adminController := controller.NewAdminController(adminService, authService)

	authMiddleware := middleware.NewAuthMiddleware(testSecret, testCookieName, userRepo)

	router := gin.New()

	auth := router.Group("/auth")
	{
		auth.POST("/signup", authController.Signup)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
		auth.GET("/me", authMiddleware.Authenticate(), authController.Me)
	}

	stores := router.Group("/stores")
	{
		stores.GET("", authMiddleware.OptionalAuthenticate(), storeController.ListStores)
		stores.GET("/:id", authMiddleware.OptionalAuthenticate(), storeController.GetStore)
		stores.POST("/:id/rate", authMiddleware.Authenticate(), storeController.RateStore)
	}

	owner := router.Group("/owner")
	owner.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole(model.RoleStoreOwner))
	{
		owner.GET("/stores", ownerController.MyStores)
		owner.GET("/stores/:id/ratings", ownerController.StoreRatings)
		owner.PATCH("/stores/:id", ownerController.UpdateStore)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole(model.RoleAdmin))
	{
		admin.POST("/users", adminController.CreateUser)
		admin.GET("/users", adminController.ListUsers)
		admin.DELETE("/users/:id", adminController.DeleteUser)
		admin.POST("/stores", adminController.CreateStore)
		admin.GET("/stores", adminController.ListStores)
		admin.DELETE("/stores/:id", adminController.DeleteStore)
		admin.GET("/dashboard", adminController.Dashboard)
	}

	return &TestServer{Router: router, DB: testDB}
}

func (ts *TestServer) request(t *testing.T, method, path string, payload interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func (ts *TestServer) cookieFor(t *testing.T, user *model.User) *http.Cookie {
	t.Helper()
	token, err := util.GenerateToken(user.ID, user.Email, string(user.Role), testSecret, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: testCookieName, Value: token}
}

func (ts *TestServer) seedAdmin(t *testing.T) *model.User {
	t.Helper()
	hash, err := util.HashPassword("Adm1nSecret!")
	require.NoError(t, err)
	admin := &model.User{
		Email:        "admin@example.com",
		PasswordHash: hash,
		Name:         "Platform Administration Root Account",
		Role:         model.RoleAdmin,
	}
	require.NoError(t, ts.DB.Create(admin).Error)
	return admin
}

// Walks the whole platform lifecycle through the HTTP surface: admin
// provisions an owner and a store, a rater signs up and rates twice, the
// owner reads the ratings, and the admin checks the dashboard and finally
// deletes the store.
func TestPlatformLifecycle(t *testing.T) {
	ts := setupIntegrationTest(t)
	admin := ts.seedAdmin(t)
	adminCookie := ts.cookieFor(t, admin)

	// Admin provisions a store owner
	w := ts.request(t, "POST", "/admin/users", map[string]string{
		"email":    "owner@example.com",
		"password": "Own3rSecret!",
		"name":     "Beatrice Owner Of Many Fine Shops",
		"role":     "STORE_OWNER",
	}, adminCookie)
	require.Equal(t, http.StatusCreated, w.Code)

	var createUserResp struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createUserResp))
	ownerID := createUserResp.User.ID

	// Admin registers the owner's store
	w = ts.request(t, "POST", "/admin/stores", map[string]interface{}{
		"name":     "Lifecycle Cafe",
		"address":  "5 Journey Road",
		"owner_id": ownerID,
	}, adminCookie)
	require.Equal(t, http.StatusCreated, w.Code)

	var createStoreResp struct {
		Store struct {
			ID uint `json:"id"`
		} `json:"store"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createStoreResp))
	storeID := createStoreResp.Store.ID

	// A rater signs up through the public surface
	w = ts.request(t, "POST", "/auth/signup", map[string]string{
		"email":    "rater@example.com",
		"password": "Rat3rSecret!",
		"name":     "Casper The Frequently Rating Customer",
		"address":  "9 Reviewer Row",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var raterCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookieName {
			raterCookie = c
		}
	}
	require.NotNil(t, raterCookie)

	ratePath := fmt.Sprintf("/stores/%d/rate", storeID)

	// First rating creates
	w = ts.request(t, "POST", ratePath, map[string]int{"score": 5}, raterCookie)
	require.Equal(t, http.StatusCreated, w.Code)

	// Second rating overwrites the same row
	w = ts.request(t, "POST", ratePath, map[string]int{"score": 2}, raterCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var rateResp struct {
		Rating struct {
			Average float64 `json:"average"`
			Total   int64   `json:"total"`
		} `json:"rating"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rateResp))
	assert.Equal(t, 2.0, rateResp.Rating.Average)
	assert.Equal(t, int64(1), rateResp.Rating.Total)

	// The public listing shows the rater their own score
	w = ts.request(t, "GET", "/stores", nil, raterCookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_score":2`)

	// The owner reads the rating list
	var ownerUser model.User
	require.NoError(t, ts.DB.First(&ownerUser, ownerID).Error)
	ownerCookie := ts.cookieFor(t, &ownerUser)

	w = ts.request(t, "GET", fmt.Sprintf("/owner/stores/%d/ratings", storeID), nil, ownerCookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rater@example.com")

	// The rater cannot read it: not an owner role
	w = ts.request(t, "GET", fmt.Sprintf("/owner/stores/%d/ratings", storeID), nil, raterCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Dashboard reflects the state
	w = ts.request(t, "GET", "/admin/dashboard", nil, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var dashResp struct {
		Stats struct {
			TotalUsers   int64 `json:"total_users"`
			TotalStores  int64 `json:"total_stores"`
			TotalRatings int64 `json:"total_ratings"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashResp))
	assert.Equal(t, int64(3), dashResp.Stats.TotalUsers)
	assert.Equal(t, int64(1), dashResp.Stats.TotalStores)
	assert.Equal(t, int64(1), dashResp.Stats.TotalRatings)

	// Admin deletes the store; its ratings must go with it
	w = ts.request(t, "DELETE", fmt.Sprintf("/admin/stores/%d", storeID), nil, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var ratingCount int64
	require.NoError(t, ts.DB.Model(&model.Rating{}).Where("store_id = ?", storeID).Count(&ratingCount).Error)
	assert.Equal(t, int64(0), ratingCount)

	// And the public page is gone
	w = ts.request(t, "GET", fmt.Sprintf("/stores/%d", storeID), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
