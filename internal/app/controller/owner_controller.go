package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratehub/ratehub-backend/internal/app/service"
	apperrors "github.com/ratehub/ratehub-backend/internal/errors"
	"github.com/ratehub/ratehub-backend/internal/middleware"
)

// ownerRatingsDefaultLimit is the page size for the rater list, larger
// than the public default since owners scan their full history.
const ownerRatingsDefaultLimit = 20

type OwnerController struct {
	ownerService service.OwnerService
}

func NewOwnerController(ownerService service.OwnerService) *OwnerController {
	return &OwnerController{ownerService: ownerService}
}

type UpdateStoreRequest struct {
	Name    string `json:"name" binding:"omitempty,min=1,max=255"`
	Address string `json:"address" binding:"omitempty,max=500"`
}

// MyStores lists the caller's stores with stats and recent ratings
// GET /owner/stores
func (ctrl *OwnerController) MyStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	stores, err := ctrl.ownerService.ListMyStores(ownerID)
	if err != nil {
		log.Error("Owner store listing failed", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list owned stores")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stores":  stores,
	})
}

// StoreRatings lists the raters of one owned store, paginated
// GET /owner/stores/:id/ratings?page&limit
func (ctrl *OwnerController) StoreRatings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page, limit, ok := parsePagination(c)
	if !ok {
		return
	}
	page, limit = clampPage(page, limit, ownerRatingsDefaultLimit, service.MaxPageLimit)

	result, err := ctrl.ownerService.GetStoreRatings(ownerID, storeID, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found.")
			return
		}
		log.Error("Owner ratings listing failed", err, map[string]interface{}{
			"owner_id": ownerID,
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list store ratings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"store": gin.H{
			"id":      result.Store.ID,
			"name":    result.Store.Name,
			"address": result.Store.Address,
		},
		"stats":      result.Stats,
		"ratings":    result.Ratings,
		"pagination": paginationPayload(page, limit, result.Total),
	})
}

// UpdateStore lets an owner change the name or address of an owned store
// PATCH /owner/stores/:id
func (ctrl *OwnerController) UpdateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid store data. Name must be 1-255 and address at most 500 characters.")
		return
	}

	store, err := ctrl.ownerService.UpdateStore(ownerID, storeID, req.Name, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoUpdateFields):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Provide a name or an address to update.")
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found.")
		default:
			log.Error("Store update failed", err, map[string]interface{}{
				"owner_id": ownerID,
				"store_id": storeID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update store")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Store updated successfully",
		"store": gin.H{
			"id":      store.ID,
			"name":    store.Name,
			"address": store.Address,
		},
	})
}
