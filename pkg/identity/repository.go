package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex"`
	Name         string
	Role         string `gorm:"index"`
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string {
	return "users"
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&userModel{})
}

type CreateUserInput struct {
	Email        string
	Name         string
	Role         models.Role
	PasswordHash string
}

func (r *Repository) CreateUser(ctx context.Context, input CreateUserInput) (models.User, error) {
	normalizedEmail := strings.ToLower(strings.TrimSpace(input.Email))

	var existing int64
	if err := r.db.WithContext(ctx).Model(&userModel{}).Where("email = ?", normalizedEmail).Count(&existing).Error; err != nil {
		return models.User{}, err
	}
	if existing > 0 {
		return models.User{}, ErrEmailAlreadyExists
	}

	user := userModel{
		ID:           uuid.New(),
		Email:        normalizedEmail,
		Name:         input.Name,
		Role:         string(input.Role),
		PasswordHash: input.PasswordHash,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return models.User{}, err
	}

	return mapUserModel(user), nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user userModel
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return mapUserModel(user), nil
}

func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user userModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return mapUserModel(user), nil
}

func (r *Repository) GetPasswordHash(ctx context.Context, id uuid.UUID) (string, error) {
	var user userModel
	err := r.db.WithContext(ctx).Select("password_hash").Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return user.PasswordHash, nil
}

func (r *Repository) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var rows []userModel
	if err := r.db.WithContext(ctx).Where("role = ?", string(role)).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, mapUserModel(row))
	}
	return users, nil
}

func mapUserModel(user userModel) models.User {
	return models.User{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      models.ParseRole(user.Role),
		CreatedAt: user.CreatedAt,
	}
}
