package repository

import (
	"math"

	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserListFilter holds validated list parameters. SortBy must already be
// resolved against an allow-list; raw request input never reaches the
// ORDER BY clause.
type UserListFilter struct {
	Name      string
	Email     string
	Address   string
	Role      string
	SortBy    string // resolved column expression
	SortOrder string // ASC or DESC
	Page      int
	Limit     int
}

// UserSummary is one row of the admin user listing. AverageRating is the
// mean score across the user's stores and is only meaningful for
// STORE_OWNER accounts.
type UserSummary struct {
	ID            uint           `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Address       string         `json:"address"`
	Role          model.UserRole `json:"role"`
	AverageRating float64        `json:"average_rating"`
}

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	UpdatePassword(id uint, passwordHash string) error
	DeleteCascade(id uint) error
	List(filter UserListFilter) ([]UserSummary, int64, error)
	ListAll() ([]UserSummary, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) UpdatePassword(id uint, passwordHash string) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

// DeleteCascade removes a user together with everything hanging off the
// account: ratings on the user's stores, the stores themselves, the user's
// own ratings, and finally the user row. Runs in one transaction so a
// failure leaves no orphans and no partial deletion.
func (r *userRepository) DeleteCascade(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var storeIDs []uint
		if err := tx.Model(&model.Store{}).
			Where("owner_id = ?", id).
			Pluck("id", &storeIDs).Error; err != nil {
			return err
		}

		if len(storeIDs) > 0 {
			if err := tx.Where("store_id IN ?", storeIDs).Delete(&model.Rating{}).Error; err != nil {
				return err
			}
			if err := tx.Where("owner_id = ?", id).Delete(&model.Store{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&model.Rating{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		logger.Info("User deleted with cascade", map[string]interface{}{
			"user_id":     id,
			"store_count": len(storeIDs),
		})
		return nil
	})
}

// baseListQuery joins users to their stores' ratings so STORE_OWNER rows
// can carry an average rating, and applies the filter predicates.
func (r *userRepository) baseListQuery(filter UserListFilter) *gorm.DB {
	query := r.db.Model(&model.User{}).
		Joins("LEFT JOIN stores ON stores.owner_id = users.id AND users.role = ?", model.RoleStoreOwner).
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id")

	if filter.Name != "" {
		query = query.Where("LOWER(users.name) LIKE LOWER(?)", "%"+filter.Name+"%")
	}
	if filter.Email != "" {
		query = query.Where("LOWER(users.email) LIKE LOWER(?)", "%"+filter.Email+"%")
	}
	if filter.Address != "" {
		query = query.Where("LOWER(users.address) LIKE LOWER(?)", "%"+filter.Address+"%")
	}
	if filter.Role != "" {
		query = query.Where("users.role = ?", filter.Role)
	}

	return query
}

func (r *userRepository) List(filter UserListFilter) ([]UserSummary, int64, error) {
	var total int64
	if err := r.baseListQuery(filter).
		Distinct("users.id").
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit

	var users []UserSummary
	err := r.baseListQuery(filter).
		Select("users.id, users.name, users.email, users.address, users.role, COALESCE(AVG(ratings.score), 0) AS average_rating").
		Group("users.id").
		Order(filter.SortBy + " " + filter.SortOrder).
		Offset(offset).
		Limit(filter.Limit).
		Scan(&users).Error
	if err != nil {
		return nil, 0, err
	}

	for i := range users {
		users[i].AverageRating = math.Round(users[i].AverageRating*100) / 100
	}

	return users, total, nil
}

// ListAll returns every user with owner averages, used by the admin export
func (r *userRepository) ListAll() ([]UserSummary, error) {
	var users []UserSummary
	err := r.baseListQuery(UserListFilter{}).
		Select("users.id, users.name, users.email, users.address, users.role, COALESCE(AVG(ratings.score), 0) AS average_rating").
		Group("users.id").
		Order("users.id ASC").
		Scan(&users).Error
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].AverageRating = math.Round(users[i].AverageRating*100) / 100
	}
	return users, nil
}
