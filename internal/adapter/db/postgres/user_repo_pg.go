package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"usuarios-api/internal/domain/user"
	pkgerrors "usuarios-api/pkg/errors"
)

// UserRepoPG implements the Repository interface using PostgreSQL and GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
	now func() time.Time
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log, now: time.Now}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID        string          `gorm:"primaryKey;size:24"`              // ObjectID hex, assigned by the application
	Name      string          `gorm:"not null"`                        // User's full name (required)
	Email     string          `gorm:"not null;uniqueIndex"`            // User's unique email address (required, unique)
	Age       *int            // Optional, NULL when absent
	CreatedAt time.Time       `gorm:"not null;autoCreateTime:false"`   // Set by the application, never updated
	Addresses []AddressSchema `gorm:"foreignKey:UserID;references:ID"` // Ordered by Position
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// AddressSchema represents one row of the addresses table.
type AddressSchema struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	UserID     string `gorm:"size:24;not null;index"`
	Position   int    `gorm:"not null"`
	Street     string `gorm:"not null"`
	City       string `gorm:"not null;index"`
	Country    string `gorm:"not null"`
	PostalCode string `gorm:"not null"`
}

// TableName specifies the table name for the AddressSchema model.
func (AddressSchema) TableName() string {
	return "addresses"
}

// AutoMigrate creates or updates the users and addresses tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserSchema{}, &AddressSchema{})
}

func toAddressSchemas(userID string, addresses []user.Address) []AddressSchema {
	rows := make([]AddressSchema, len(addresses))
	for i, a := range addresses {
		rows[i] = AddressSchema{
			UserID:     userID,
			Position:   i,
			Street:     a.Street,
			City:       a.City,
			Country:    a.Country,
			PostalCode: a.PostalCode,
		}
	}
	return rows
}

func (m UserSchema) toDomain() user.User {
	addresses := make([]user.Address, len(m.Addresses))
	for i, a := range m.Addresses {
		addresses[i] = user.Address{
			Street:     a.Street,
			City:       a.City,
			Country:    a.Country,
			PostalCode: a.PostalCode,
		}
	}
	return user.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Age:       m.Age,
		CreatedAt: m.CreatedAt.UTC(),
		Addresses: addresses,
	}
}

func preloadAddresses(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// isUniqueViolation reports whether err is a unique constraint failure.
// TranslateError covers postgres; the string checks cover drivers without a translator.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

// Create validates and inserts a new user together with its addresses.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	created := *u
	created.PrepareForInsert(r.now())

	model := UserSchema{
		ID:        created.ID,
		Name:      created.Name,
		Email:     created.Email,
		Age:       created.Age,
		CreatedAt: created.CreatedAt,
		Addresses: toAddressSchemas(created.ID, created.Addresses),
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("duplicate email on insert", zap.String("email", u.Email))
			return nil, pkgerrors.ErrEmailTaken
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.String("id", model.ID))
	return &created, nil
}

// Update replaces name, email, age and addresses of an existing user in one transaction.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var age any
		if u.Age != nil {
			age = *u.Age
		}
		res := tx.Model(&UserSchema{}).Where("id = ?", u.ID).Updates(map[string]any{
			"name":  u.Name,
			"email": u.Email,
			"age":   age,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkgerrors.ErrUserNotFound
		}

		if err := tx.Where("user_id = ?", u.ID).Delete(&AddressSchema{}).Error; err != nil {
			return err
		}
		rows := toAddressSchemas(u.ID, u.Addresses)
		return tx.Create(&rows).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrUserNotFound):
			return nil, pkgerrors.ErrUserNotFound
		case isUniqueViolation(err):
			r.log.Warn("duplicate email on update", zap.String("id", u.ID), zap.String("email", u.Email))
			return nil, pkgerrors.ErrEmailTaken
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.String("id", u.ID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	r.log.Info("user updated in db", zap.String("id", u.ID))
	return r.GetByID(ctx, u.ID)
}

// Delete removes a user and its addresses by ID.
func (r *UserRepoPG) Delete(ctx context.Context, id string) error {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&AddressSchema{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&UserSchema{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		r.log.Error("failed to delete user in db", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrUserNotFound
	}

	r.log.Info("user deleted in db", zap.String("id", id))
	return nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id string) (*user.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).Preload("Addresses", preloadAddresses).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.String("id", id))
			return nil, pkgerrors.ErrUserNotFound
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u := model.toDomain()
	return &u, nil
}

// GetByEmail retrieves a user from the database by their email address.
// A miss returns nil, nil.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).Preload("Addresses", preloadAddresses).Where("email = ?", email).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	u := model.toDomain()
	return &u, nil
}

// List retrieves one page of users in creation order together with the total count.
func (r *UserRepoPG) List(ctx context.Context, page, limit int64) ([]user.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Count(&total).Error; err != nil {
		r.log.Error("failed to count users", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var models []UserSchema
	err := r.db.WithContext(ctx).
		Preload("Addresses", preloadAddresses).
		Order("created_at ASC").Order("id ASC").
		Offset(int(user.Skip(page, limit))).
		Limit(int(limit)).
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.Int64("page", page), zap.Int64("limit", limit))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return toDomainList(models), total, nil
}

// FindByCity returns users with at least one address whose city equals city, ignoring case.
func (r *UserRepoPG) FindByCity(ctx context.Context, city string) ([]user.User, error) {
	matching := r.db.Model(&AddressSchema{}).Select("user_id").Where("LOWER(city) = LOWER(?)", city)

	var models []UserSchema
	err := r.db.WithContext(ctx).
		Preload("Addresses", preloadAddresses).
		Where("id IN (?)", matching).
		Order("created_at ASC").Order("id ASC").
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to search users by city", zap.Error(err), zap.String("city", city))
		return nil, fmt.Errorf("failed to search users by city: %w", err)
	}

	return toDomainList(models), nil
}

// Ping checks the underlying connection pool.
func (r *UserRepoPG) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func toDomainList(models []UserSchema) []user.User {
	users := make([]user.User, len(models))
	for i, m := range models {
		users[i] = m.toDomain()
	}
	return users
}
