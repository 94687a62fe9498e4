package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/internal/app/service"
	apperrors "github.com/ratehub/ratehub-backend/internal/errors"
	"github.com/ratehub/ratehub-backend/internal/middleware"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminController struct {
	adminService service.AdminService
	authService  service.AuthService
}

func NewAdminController(adminService service.AdminService, authService service.AuthService) *AdminController {
	return &AdminController{
		adminService: adminService,
		authService:  authService,
	}
}

type AdminCreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,strong_password"`
	Name     string `json:"name" binding:"required,min=20,max=60"`
	Address  string `json:"address" binding:"max=400"`
	Role     string `json:"role" binding:"required,oneof=USER STORE_OWNER"`
}

type AdminCreateStoreRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=255"`
	Address string `json:"address" binding:"max=500"`
	OwnerID uint   `json:"owner_id" binding:"required"`
}

type AdminUpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,strong_password"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}

// CreateUser provisions a USER or STORE_OWNER account
// POST /admin/users
func (ctrl *AdminController) CreateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AdminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid user data. Role must be USER or STORE_OWNER.")
		return
	}

	user, err := ctrl.adminService.CreateUser(req.Email, req.Password, req.Name, req.Address, model.UserRole(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Email is already registered.")
		case errors.Is(err, service.ErrInvalidRole):
			apperrors.BadRequest(c, apperrors.UserInvalidRole, "Role must be USER or STORE_OWNER.")
		default:
			log.Error("Admin user creation failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create user")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"user":    userPayload(user),
	})
}

// ListUsers serves the filtered, sorted, paginated user register
// GET /admin/users?name&email&address&role&sortBy&sortOrder&page&limit
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	name := c.Query("name")
	email := c.Query("email")
	address := c.Query("address")
	if !validateFilterTerm(c, "name", name) ||
		!validateFilterTerm(c, "email", email) ||
		!validateFilterTerm(c, "address", address) {
		return
	}

	role := c.Query("role")
	if role != "" && role != string(model.RoleUser) && role != string(model.RoleStoreOwner) {
		apperrors.BadRequest(c, apperrors.UserInvalidRole, "role filter must be USER or STORE_OWNER.")
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

	result, err := ctrl.adminService.ListUsers(service.UserListParams{
		Name:      name,
		Email:     email,
		Address:   address,
		Role:      role,
		SortBy:    c.Query("sortBy"),
		SortOrder: sortOrder,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		log.Error("Admin user listing failed", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Users,
		"pagination": paginationPayload(page, limit, result.Total),
		"filters": gin.H{
			"name":    name,
			"email":   email,
			"address": address,
			"role":    role,
		},
		"sorting": gin.H{
			"sortBy":    result.SortBy,
			"sortOrder": result.SortOrder,
		},
	})
}

// DeleteUser removes an account and everything it owns
// DELETE /admin/users/:id
func (ctrl *AdminController) DeleteUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.adminService.DeleteUser(adminID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfDeletion):
			apperrors.BadRequest(c, apperrors.UserSelfDeletion, "You cannot delete your own account.")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.UserNotFound, "User not found.")
		default:
			log.Error("Admin user deletion failed", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete user")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}

// CreateStore registers a store under an existing store owner
// POST /admin/stores
func (ctrl *AdminController) CreateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AdminCreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid store data. Name is required and owner_id must be set.")
		return
	}

	store, err := ctrl.adminService.CreateStore(req.Name, req.Address, req.OwnerID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOwner) {
			apperrors.BadRequest(c, apperrors.StoreInvalidOwner, "Owner must be an existing STORE_OWNER account.")
			return
		}
		log.Error("Admin store creation failed", err, map[string]interface{}{
			"owner_id": req.OwnerID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create store")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Store created successfully",
		"store": gin.H{
			"id":       store.ID,
			"name":     store.Name,
			"address":  store.Address,
			"owner_id": store.OwnerID,
		},
	})
}

// ListStores serves the admin store register with owner info
// GET /admin/stores?name&address&search&ownerName&minRating&sortBy&sortOrder&page&limit
func (ctrl *AdminController) ListStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	name := c.Query("name")
	address := c.Query("address")
	search := c.Query("search")
	ownerName := c.Query("ownerName")
	if !validateFilterTerm(c, "name", name) ||
		!validateFilterTerm(c, "address", address) ||
		!validateFilterTerm(c, "search", search) ||
		!validateFilterTerm(c, "ownerName", ownerName) {
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

	result, err := ctrl.adminService.ListStores(service.AdminStoreListParams{
		Name:      name,
		Address:   address,
		Search:    search,
		OwnerName: ownerName,
		MinRating: minRating,
		SortBy:    c.Query("sortBy"),
		SortOrder: sortOrder,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		log.Error("Admin store listing failed", err, nil)
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
			"search":    search,
			"ownerName": ownerName,
			"minRating": minRating,
		},
		"sorting": gin.H{
			"sortBy":    result.SortBy,
			"sortOrder": result.SortOrder,
		},
	})
}

// DeleteStore removes a store and its ratings
// DELETE /admin/stores/:id
func (ctrl *AdminController) DeleteStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.adminService.DeleteStore(storeID); err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found.")
			return
		}
		log.Error("Admin store deletion failed", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete store")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Store deleted successfully",
	})
}

// Dashboard serves platform-wide statistics
// GET /admin/dashboard
func (ctrl *AdminController) Dashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stats, err := ctrl.adminService.Dashboard()
	if err != nil {
		log.Error("Dashboard statistics failed", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "load dashboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// UpdatePassword changes the admin's own password with confirmation
// PUT /admin/update-password
func (ctrl *AdminController) UpdatePassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AdminUpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "New password must meet the policy and match the confirmation.")
		return
	}

	if err := ctrl.authService.ChangePassword(adminID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			apperrors.BadRequest(c, apperrors.AuthWrongPassword, "Current password is incorrect.")
			return
		}
		log.Error("Admin password update failed", err, map[string]interface{}{
			"user_id": adminID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password updated successfully",
	})
}

func (ctrl *AdminController) writeWorkbook(c *gin.Context, f *excelize.File, baseName string) {
	filename := fmt.Sprintf("%s-%s.xlsx", baseName, time.Now().Format("2006-01-02"))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(c.Writer); err != nil {
		middleware.GetLoggerFromContext(c).Error("Workbook write failed", err, nil)
	}
	f.Close()
}

// ExportUsers downloads the full user register as a spreadsheet
// GET /admin/users/export
func (ctrl *AdminController) ExportUsers(c *gin.Context) {
	f, err := ctrl.adminService.ExportUsers()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("User export failed", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "export users")
		return
	}
	ctrl.writeWorkbook(c, f, "users")
}

// ExportStores downloads the full store register as a spreadsheet
// GET /admin/stores/export
func (ctrl *AdminController) ExportStores(c *gin.Context) {
	f, err := ctrl.adminService.ExportStores()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Store export failed", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "export stores")
		return
	}
	ctrl.writeWorkbook(c, f, "stores")
}
