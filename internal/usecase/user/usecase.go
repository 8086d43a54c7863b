package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domain "usuarios-api/internal/domain/user"
	pkgerrors "usuarios-api/pkg/errors"
	"usuarios-api/pkg/logger"
	"usuarios-api/pkg/security"
)

const (
	defaultPage  int64 = 1
	defaultLimit int64 = 10

	msgUserDeleted   = "user deleted successfully"
	msgCityRequired  = "you must provide a city to search"
	msgNoUsersInCity = "no users found in that city"
)

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (MongoDB, PostgreSQL) to be used interchangeably.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)          // Create a new user, assigning ID and CreatedAt
	GetByID(ctx context.Context, id string) (*domain.User, error)              // Retrieve user by ID; NotFoundError when missing
	GetByEmail(ctx context.Context, email string) (*domain.User, error)        // Retrieve user by email; nil, nil when missing
	Update(ctx context.Context, u *domain.User) (*domain.User, error)          // Replace mutable fields of an existing user
	Delete(ctx context.Context, id string) error                               // Delete user by ID; NotFoundError when nothing was deleted
	List(ctx context.Context, page, limit int64) ([]domain.User, int64, error) // One page of users plus the total count
	FindByCity(ctx context.Context, city string) ([]domain.User, error)        // Users with an address in city, case-insensitive
}

// UserUsecase implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
type UserUsecase struct {
	repo Repository
	log  *zap.Logger
}

// New creates a new instance of UserUsecase with the provided repository and logger.
// Caching, when enabled, is a repository decorator and invisible here.
func New(r Repository, log *zap.Logger) *UserUsecase {
	return &UserUsecase{repo: r, log: log}
}

// CreateUser creates a new user after the pre-check and an email uniqueness check.
func (uc *UserUsecase) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if errs := ValidateUserInput(in.UserInput); len(errs) > 0 {
		log.Warn("create user validation failed", zap.Strings("errors", errs))
		return nil, pkgerrors.NewValidationError(errs...)
	}

	if err := uc.ensureEmailAvailable(ctx, log, in.Email, ""); err != nil {
		return nil, err
	}

	created, err := uc.repo.Create(ctx, in.toEntity())
	if err != nil {
		uc.logFailure(log, "failed to create user", err)
		return nil, err
	}

	log.Info("user created", zap.String("id", created.ID))
	return &CreateUserResponse{User: created}, nil
}

// UpdateUser replaces the mutable fields of an existing user.
// An absent age clears the stored one; id and created_at are preserved by the store.
func (uc *UserUsecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("updating user", zap.String("id", in.ID), zap.String("email", in.Email))

	if !domain.IsValidID(in.ID) {
		log.Warn("update user validation failed", zap.String("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.ErrInvalidID
	}

	if errs := ValidateUserInput(in.UserInput); len(errs) > 0 {
		log.Warn("update user validation failed", zap.String("id", in.ID), zap.Strings("errors", errs))
		return nil, pkgerrors.NewValidationError(errs...)
	}

	current, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.logFailure(log, "failed to load user for update", err, zap.String("id", in.ID))
		return nil, err
	}

	if in.Email != current.Email {
		if err := uc.ensureEmailAvailable(ctx, log, in.Email, in.ID); err != nil {
			return nil, err
		}
	}

	replacement := in.toEntity()
	replacement.ID = in.ID
	replacement.CreatedAt = current.CreatedAt

	updated, err := uc.repo.Update(ctx, replacement)
	if err != nil {
		uc.logFailure(log, "failed to update user", err, zap.String("id", in.ID))
		return nil, err
	}

	return &UpdateUserResponse{User: updated}, nil
}

// DeleteUser deletes a user after validating the user ID.
func (uc *UserUsecase) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("deleting user", zap.String("id", in.ID))

	if !domain.IsValidID(in.ID) {
		log.Warn("delete user validation failed", zap.String("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.ErrInvalidID
	}

	if err := uc.repo.Delete(ctx, in.ID); err != nil {
		uc.logFailure(log, "failed to delete user", err, zap.String("id", in.ID))
		return nil, err
	}

	return &DeleteUserResponse{ID: in.ID, Message: msgUserDeleted}, nil
}

// GetUser retrieves a user by ID after validating the ID format.
func (uc *UserUsecase) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	if !domain.IsValidID(in.ID) {
		log.Warn("get user validation failed", zap.String("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.ErrInvalidID
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.logFailure(log, "failed to get user", err, zap.String("id", in.ID))
		return nil, err
	}

	return &GetUserResponse{User: u}, nil
}

// ListUsers retrieves one page of users. Page and limit below 1 fall back to 1 and 10.
func (uc *UserUsecase) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	if in.Page < 1 {
		in.Page = defaultPage
	}
	if in.Limit < 1 {
		in.Limit = defaultLimit
	}

	log := logger.WithContext(ctx, uc.log)
	log.Debug("listing users", zap.Int64("page", in.Page), zap.Int64("limit", in.Limit))

	users, total, err := uc.repo.List(ctx, in.Page, in.Limit)
	if err != nil {
		log.Error("failed to list users", zap.Int64("page", in.Page), zap.Int64("limit", in.Limit), zap.Error(err))
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}

	return &ListUsersResponse{
		Users:      users,
		Pagination: domain.NewPagination(total, in.Page, in.Limit),
	}, nil
}

// SearchByCity returns every user with an address in the given city.
// Matching is exact and case-insensitive; no match is a NotFoundError.
func (uc *UserUsecase) SearchByCity(ctx context.Context, in SearchByCityRequest) (*SearchByCityResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	city, err := security.ValidateCityQuery(in.City)
	if err != nil {
		log.Warn("city query missing", zap.Error(err))
		return nil, pkgerrors.NewBadRequestError("ciudad", msgCityRequired)
	}

	city = domain.NormalizeCity(city)
	users, err := uc.repo.FindByCity(ctx, city)
	if err != nil {
		log.Error("failed to search users by city", zap.String("city", city), zap.Error(err))
		return nil, err
	}
	if len(users) == 0 {
		log.Info("no users found in city", zap.String("city", city))
		return nil, pkgerrors.NewNotFoundError("user", msgNoUsersInCity)
	}

	return &SearchByCityResponse{Users: users}, nil
}

// ensureEmailAvailable fails with ErrEmailTaken when email belongs to a user other than exceptID.
func (uc *UserUsecase) ensureEmailAvailable(ctx context.Context, log *zap.Logger, email, exceptID string) error {
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		log.Error("failed to check existing email", zap.String("email", email), zap.Error(err))
		return err
	}
	if existing != nil && existing.ID != exceptID {
		log.Warn("email already exists", zap.String("email", email), zap.String("existing_id", existing.ID))
		return pkgerrors.ErrEmailTaken
	}
	return nil
}

// logFailure logs client-caused errors as warnings and everything else as errors.
func (uc *UserUsecase) logFailure(log *zap.Logger, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	var verr *pkgerrors.ValidationError
	if pkgerrors.IsNotFound(err) || pkgerrors.IsAlreadyExists(err) || errors.As(err, &verr) {
		log.Warn(msg, fields...)
		return
	}
	log.Error(msg, fields...)
}
