package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/internal/app/repository"
	"github.com/ratehub/ratehub-backend/internal/app/service"
	"github.com/ratehub/ratehub-backend/internal/db"
	"github.com/ratehub/ratehub-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOwnerControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	ratingRepo := repository.NewRatingRepository(testDB)

	ownerService := service.NewOwnerService(storeRepo, ratingRepo)
	ctrl := NewOwnerController(ownerService)
	authMiddleware := middleware.NewAuthMiddleware(testSecret, testCookieName, userRepo)

	router := gin.New()
	owner := router.Group("/owner")
	owner.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole(model.RoleStoreOwner))
	{
		owner.GET("/stores", ctrl.MyStores)
		owner.GET("/stores/:id/ratings", ctrl.StoreRatings)
		owner.PATCH("/stores/:id", ctrl.UpdateStore)
	}

	return router, testDB
}

func TestOwnerController_MyStores(t *testing.T) {
	router, testDB := setupOwnerControllerTest(t)

	owner := seedUser(t, testDB, "owner@example.com", model.RoleStoreOwner)
	other := seedUser(t, testDB, "other@example.com", model.RoleStoreOwner)
	mine := seedStore(t, testDB, "My Corner Shop", owner.ID)
	seedStore(t, testDB, "Someone Elses Shop", other.ID)

	rater := seedUser(t, testDB, "rater@example.com", model.RoleUser)
	require.NoError(t, testDB.Create(&model.Rating{UserID: rater.ID, StoreID: mine.ID, Score: 4}).Error)

	t.Run("Owner sees only owned stores with stats", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/owner/stores", nil)
		req.AddCookie(authCookie(t, owner))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "My Corner Shop")
		assert.NotContains(t, w.Body.String(), "Someone Elses Shop")

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		stores := response["stores"].([]interface{})
		require.Len(t, stores, 1)
		stats := stores[0].(map[string]interface{})["rating"].(map[string]interface{})
		assert.Equal(t, 4.0, stats["average"])
		assert.Equal(t, float64(1), stats["total"])
	})

	t.Run("Plain user is rejected by the role gate", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/owner/stores", nil)
		req.AddCookie(authCookie(t, rater))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestOwnerController_StoreRatings(t *testing.T) {
	router, testDB := setupOwnerControllerTest(t)

	owner := seedUser(t, testDB, "owner@example.com", model.RoleStoreOwner)
	other := seedUser(t, testDB, "other@example.com", model.RoleStoreOwner)
	mine := seedStore(t, testDB, "My Corner Shop", owner.ID)
	theirs := seedStore(t, testDB, "Their Shop", other.ID)

	rater := seedUser(t, testDB, "rater@example.com", model.RoleUser)
	require.NoError(t, testDB.Create(&model.Rating{UserID: rater.ID, StoreID: mine.ID, Score: 5}).Error)

	t.Run("Owner reads rater identities", func(t *testing.T) {
		req := httptest.NewRequest("GET", fmt.Sprintf("/owner/stores/%d/ratings", mine.ID), nil)
		req.AddCookie(authCookie(t, owner))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "rater@example.com")
	})

	t.Run("Foreign store reads as not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", fmt.Sprintf("/owner/stores/%d/ratings", theirs.ID), nil)
		req.AddCookie(authCookie(t, owner))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "STORE_NOT_FOUND")
	})
}

func TestOwnerController_UpdateStore(t *testing.T) {
	router, testDB := setupOwnerControllerTest(t)

	owner := seedUser(t, testDB, "owner@example.com", model.RoleStoreOwner)
	mine := seedStore(t, testDB, "My Corner Shop", owner.ID)

	patch := func(t *testing.T, storeID uint, payload interface{}) *httptest.ResponseRecorder {
		t.Helper()
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		req := httptest.NewRequest("PATCH", fmt.Sprintf("/owner/stores/%d", storeID), bytes.NewBuffer(raw))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(authCookie(t, owner))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Partial update keeps the other field", func(t *testing.T) {
		w := patch(t, mine.ID, map[string]string{"name": "Renamed Corner Shop"})
		require.Equal(t, http.StatusOK, w.Code)

		var updated model.Store
		require.NoError(t, testDB.First(&updated, mine.ID).Error)
		assert.Equal(t, "Renamed Corner Shop", updated.Name)
		assert.Equal(t, "1 Test Street", updated.Address)
	})

	t.Run("Empty payload is rejected", func(t *testing.T) {
		w := patch(t, mine.ID, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
