package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratehub/ratehub-backend/internal/app/service"
	apperrors "github.com/ratehub/ratehub-backend/internal/errors"
	"github.com/ratehub/ratehub-backend/internal/middleware"
)

type StoreController struct {
	storeService  service.StoreService
	ratingService service.RatingService
}

func NewStoreController(storeService service.StoreService, ratingService service.RatingService) *StoreController {
	return &StoreController{
		storeService:  storeService,
		ratingService: ratingService,
	}
}

type RateStoreRequest struct {
	Score int `json:"score" binding:"required,min=1,max=5"`
}

// viewerID returns the authenticated user's id when present. Public store
// pages work for guests, so absence is not an error here.
func viewerID(c *gin.Context) *uint {
	if id, ok := middleware.GetUserID(c); ok {
		return &id
	}
	return nil
}

// ListStores serves the public store directory
// GET /stores?name&address&minRating&sortBy&sortOrder&page&limit
func (ctrl *StoreController) ListStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	name := c.Query("name")
	address := c.Query("address")
	if !validateFilterTerm(c, "name", name) || !validateFilterTerm(c, "address", address) {
		return
	}
	minRating, ok := parseMinRating(c)
	if !ok {
		return
	}
	sortOrder := c.Query("sortOrder")
	if !validateSortOrder(c, sortOrder) {
		return
	}
	page, limit, ok := parsePagination(c)
	if !ok {
		return
	}
	page, limit = clampPage(page, limit, service.DefaultPageLimit, service.MaxPageLimit)

	result, err := ctrl.storeService.ListStores(service.StoreListParams{
		Name:      name,
		Address:   address,
		MinRating: minRating,
		SortBy:    c.Query("sortBy"),
		SortOrder: sortOrder,
		Page:      page,
		Limit:     limit,
	}, viewerID(c))
	if err != nil {
		log.Error("Store listing failed", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list stores")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Stores,
		"pagination": paginationPayload(page, limit, result.Total),
		"filters": gin.H{
			"name":      name,
			"address":   address,
			"minRating": minRating,
		},
		"sorting": gin.H{
			"sortBy":    result.SortBy,
			"sortOrder": result.SortOrder,
		},
	})
}

// GetStore serves the public detail page for one store
// GET /stores/:id
func (ctrl *StoreController) GetStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := ctrl.storeService.GetStoreDetail(storeID, viewerID(c))
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found.")
			return
		}
		log.Error("Store detail failed", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get store")
		return
	}

	summary := detail.Summary
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"store": gin.H{
			"id":      summary.ID,
			"name":    summary.Name,
			"address": summary.Address,
			"owner": gin.H{
				"id":    summary.OwnerID,
				"name":  summary.OwnerName,
				"email": summary.OwnerEmail,
			},
			"average_rating": summary.AverageRating,
			"total_ratings":  summary.TotalRatings,
		},
		"user_rating":    detail.UserRating,
		"recent_ratings": detail.RecentRatings,
	})
}

// RateStore submits or overwrites the caller's rating for a store
// POST /stores/:id/rate
func (ctrl *StoreController) RateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.RatingInvalidScore, "Score must be an integer between 1 and 5.")
		return
	}

	result, err := ctrl.ratingService.SubmitRating(userID, storeID, req.Score)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidScore):
			apperrors.BadRequest(c, apperrors.RatingInvalidScore, "Score must be an integer between 1 and 5.")
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found.")
		case errors.Is(err, service.ErrRatingConflict):
			apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalDatabaseError,
				"Rating submission conflicted. Please retry.")
		default:
			log.Error("Rating submission failed", err, map[string]interface{}{
				"user_id":  userID,
				"store_id": storeID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "submit rating")
		}
		return
	}

	status := http.StatusOK
	message := "Rating updated successfully"
	if result.Created {
		status = http.StatusCreated
		message = "Rating submitted successfully"
	}

	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"rating":  result.Stats,
	})
}
