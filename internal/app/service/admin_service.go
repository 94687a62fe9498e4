package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/internal/app/repository"
	"github.com/ratehub/ratehub-backend/pkg/logger"
	"github.com/ratehub/ratehub-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var (
	ErrSelfDeletion = errors.New("administrators cannot delete their own account")
	ErrInvalidOwner = errors.New("owner must be an existing store owner account")
	ErrInvalidRole  = errors.New("invalid role for account creation")
)

// UserListParams carries the admin user list query after controller-level
// parsing. Sort keys are resolved against an allow-list in the repository.
type UserListParams struct {
	Name      string
	Email     string
	Address   string
	Role      string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type UserListResult struct {
	Users     []repository.UserSummary
	Total     int64
	SortBy    string
	SortOrder string
}

type AdminStoreListParams struct {
	Name      string
	Address   string
	Search    string
	OwnerName string
	MinRating float64
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type AdminStoreListResult struct {
	Stores    []repository.StoreSummary
	Total     int64
	SortBy    string
	SortOrder string
}

type AdminService interface {
	CreateUser(email, password, name, address string, role model.UserRole) (*model.User, error)
	ListUsers(params UserListParams) (*UserListResult, error)
	DeleteUser(adminID, userID uint) error
	CreateStore(name, address string, ownerID uint) (*model.Store, error)
	ListStores(params AdminStoreListParams) (*AdminStoreListResult, error)
	DeleteStore(storeID uint) error
	Dashboard() (*repository.DashboardStats, error)
	ExportUsers() (*excelize.File, error)
	ExportStores() (*excelize.File, error)
}

type adminService struct {
	userRepo      repository.UserRepository
	storeRepo     repository.StoreRepository
	dashboardRepo repository.DashboardRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	dashboardRepo repository.DashboardRepository,
) AdminService {
	return &adminService{
		userRepo:      userRepo,
		storeRepo:     storeRepo,
		dashboardRepo: dashboardRepo,
	}
}

// CreateUser provisions a normal or store owner account on behalf of an
// administrator. Creating another administrator goes through ops tooling,
// not this endpoint.
func (s *adminService) CreateUser(email, password, name, address string, role model.UserRole) (*model.User, error) {
	if role != model.RoleUser && role != model.RoleStoreOwner {
		return nil, ErrInvalidRole
	}

	existing, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password for admin-created user", err, nil)
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Address:      address,
		Role:         role,
	}
	if err := s.userRepo.Create(user); err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, ErrEmailAlreadyExists
		}
		logger.Error("Failed to create user", err, map[string]interface{}{
			"email": email,
			"role":  role,
		})
		return nil, err
	}

	logger.Info("User created by administrator", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
	return user, nil
}

func (s *adminService) ListUsers(params UserListParams) (*UserListResult, error) {
	params.Page, params.Limit = normalizePage(params.Page, params.Limit)
	sortColumn, sortKey, sortOrder := repository.ResolveSort(
		repository.AdminUserSortColumns, params.SortBy, params.SortOrder, "name")

	users, total, err := s.userRepo.List(repository.UserListFilter{
		Name:      params.Name,
		Email:     params.Email,
		Address:   params.Address,
		Role:      params.Role,
		SortBy:    sortColumn,
		SortOrder: sortOrder,
		Page:      params.Page,
		Limit:     params.Limit,
	})
	if err != nil {
		logger.Error("Failed to list users", err, nil)
		return nil, err
	}

	return &UserListResult{
		Users:     users,
		Total:     total,
		SortBy:    sortKey,
		SortOrder: sortOrder,
	}, nil
}


// DeleteUser removes the account together with its ratings and, for store
// owners, every owned store and those stores' ratings.
func (s *adminService) DeleteUser(adminID, userID uint) error {
	if adminID == userID {
		return ErrSelfDeletion
	}

	if err := s.userRepo.DeleteCascade(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		logger.Error("Failed to delete user", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Info("User deleted by administrator", map[string]interface{}{
		"user_id":  userID,
		"admin_id": adminID,
	})
	return nil
}

func (s *adminService) CreateStore(name, address string, ownerID uint) (*model.Store, error) {
	owner, err := s.userRepo.FindByID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOwner
		}
		return nil, err
	}
	if owner.Role != model.RoleStoreOwner {
		return nil, ErrInvalidOwner
	}

	store := &model.Store{
		Name:    name,
		Address: address,
		OwnerID: ownerID,
	}
	if err := s.storeRepo.Create(store); err != nil {
		logger.Error("Failed to create store", err, map[string]interface{}{
			"name":     name,
			"owner_id": ownerID,
		})
		return nil, err
	}

	logger.Info("Store created by administrator", map[string]interface{}{
		"store_id": store.ID,
		"owner_id": ownerID,
	})
	return store, nil
}

func (s *adminService) ListStores(params AdminStoreListParams) (*AdminStoreListResult, error) {
	params.Page, params.Limit = normalizePage(params.Page, params.Limit)
	sortColumn, sortKey, sortOrder := repository.ResolveSort(
		repository.AdminStoreSortColumns, params.SortBy, params.SortOrder, "name")

	stores, total, err := s.storeRepo.List(repository.StoreListFilter{
		Name:      params.Name,
		Address:   params.Address,
		Search:    params.Search,
		OwnerName: params.OwnerName,
		MinRating: params.MinRating,
		SortBy:    sortColumn,
		SortOrder: sortOrder,
		Page:      params.Page,
		Limit:     params.Limit,
	})
	if err != nil {
		logger.Error("Failed to list stores", err, nil)
		return nil, err
	}

	return &AdminStoreListResult{
		Stores:    stores,
		Total:     total,
		SortBy:    sortKey,
		SortOrder: sortOrder,
	}, nil
}

func (s *adminService) DeleteStore(storeID uint) error {
	if err := s.storeRepo.DeleteCascade(storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreNotFound
		}
		logger.Error("Failed to delete store", err, map[string]interface{}{
			"store_id": storeID,
		})
		return err
	}

	logger.Info("Store deleted by administrator", map[string]interface{}{
		"store_id": storeID,
	})
	return nil
}

func (s *adminService) Dashboard() (*repository.DashboardStats, error) {
	stats, err := s.dashboardRepo.GetStatistics()
	if err != nil {
		logger.Error("Failed to collect dashboard statistics", err, nil)
		return nil, err
	}
	return stats, nil
}

const exportSheet = "Sheet1"

// ExportUsers renders the full user list, with per-owner average ratings,
// as a spreadsheet for offline review.
func (s *adminService) ExportUsers() (*excelize.File, error) {
	users, err := s.userRepo.ListAll()
	if err != nil {
		return nil, err
	}
	f := excelize.NewFile()

	headers := []string{"ID", "Name", "Email", "Address", "Role", "Average Rating"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}
	for i, u := range users {
		row := i + 2
		f.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), u.ID)
		f.SetCellValue(exportSheet, fmt.Sprintf("B%d", row), u.Name)
		f.SetCellValue(exportSheet, fmt.Sprintf("C%d", row), u.Email)
		f.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), u.Address)
		f.SetCellValue(exportSheet, fmt.Sprintf("E%d", row), string(u.Role))
		if u.Role == model.RoleStoreOwner {
			f.SetCellValue(exportSheet, fmt.Sprintf("F%d", row), u.AverageRating)
		}
	}

	logger.Info("User export generated", map[string]interface{}{
		"rows": len(users),
	})
	return f, nil
}

func (s *adminService) ExportStores() (*excelize.File, error) {
	stores, err := s.storeRepo.ListAll()
	if err != nil {
		return nil, err
	}
	f := excelize.NewFile()

	headers := []string{"ID", "Name", "Address", "Owner", "Owner Email", "Average Rating", "Total Ratings"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}
	for i, st := range stores {
		row := i + 2
		f.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), st.ID)
		f.SetCellValue(exportSheet, fmt.Sprintf("B%d", row), st.Name)
		f.SetCellValue(exportSheet, fmt.Sprintf("C%d", row), st.Address)
		f.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), st.OwnerName)
		f.SetCellValue(exportSheet, fmt.Sprintf("E%d", row), st.OwnerEmail)
		f.SetCellValue(exportSheet, fmt.Sprintf("F%d", row), st.AverageRating)
		f.SetCellValue(exportSheet, fmt.Sprintf("G%d", row), st.TotalRatings)
	}

	logger.Info("Store export generated", map[string]interface{}{
		"rows": len(stores),
	})
	return f, nil
}
