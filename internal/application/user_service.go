package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"
)

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]User, error)
	CountUsers(ctx context.Context) (int, error)
}

var duplicateUserEmail = &ConflictError{Field: "email", Message: "A user with this email already exists"}

// UserService orchestrates validation and persistence for manager accounts.
type UserService struct {
	users       UserRepository
	idGenerator func() string
	now         func() time.Time
	hashParams  Argon2idParams
	logger      *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, idGenerator, now, nil)
}

// NewUserServiceWithLogger wires dependencies for the user service with a specified logger.
func NewUserServiceWithLogger(users UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		hashParams:  DefaultArgon2idParams,
		logger:      defaultLogger(logger),
	}
}

// WithPasswordParams overrides the argon2id cost parameters.
func (s *UserService) WithPasswordParams(params Argon2idParams) *UserService {
	s.hashParams = params
	return s
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser validates input, hashes the password and persists a new user.
func (s *UserService) CreateUser(ctx context.Context, input UserInput) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	normalized := normalizeUserInput(input)
	vErr := validateUserInput(normalized)
	if normalized.Password == "" {
		vErr.add("password", "password is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = CreatePasswordHash(normalized.Password, s.hashParams)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	user = User{
		ID:           s.idGenerator(),
		FirstName:    normalized.FirstName,
		LastName:     normalized.LastName,
		Position:     normalized.Position,
		PhoneNumber:  normalized.PhoneNumber,
		Email:        normalized.Email,
		PasswordHash: hash,
		IsConnected:  normalized.IsConnected,
		CreatedAt:    s.now(),
	}
	user.UpdatedAt = user.CreatedAt

	if s.users == nil {
		return
	}

	var persisted User
	persisted, err = s.users.CreateUser(ctx, user)
	if err != nil {
		err = mapRepoError(err, duplicateUserEmail)
		return
	}
	user = persisted
	return
}

// GetUser returns a single user.
func (s *UserService) GetUser(ctx context.Context, id string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}
	user, err := s.users.GetUser(ctx, strings.TrimSpace(id))
	if err != nil {
		return User{}, mapRepoError(err, nil)
	}
	return user, nil
}

// UpdateUser validates input and updates an existing user. The stored
// password hash is kept unless a new password is supplied.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UserInput) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateUser", "user_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user updated")
	}()

	var existing User
	existing, err = s.users.GetUser(ctx, id)
	if err != nil {
		err = mapRepoError(err, nil)
		return
	}

	normalized := normalizeUserInput(input)
	if vErr := validateUserInput(normalized); vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.FirstName = normalized.FirstName
	updated.LastName = normalized.LastName
	updated.Position = normalized.Position
	updated.PhoneNumber = normalized.PhoneNumber
	updated.Email = normalized.Email
	updated.IsConnected = normalized.IsConnected
	updated.UpdatedAt = s.now()
	if normalized.Password != "" {
		updated.PasswordHash, err = CreatePasswordHash(normalized.Password, s.hashParams)
		if err != nil {
			err = fmt.Errorf("hash password: %w", err)
			return
		}
	}

	user, err = s.users.UpdateUser(ctx, updated)
	if err != nil {
		err = mapRepoError(err, duplicateUserEmail)
	}
	return
}

// DeleteUser removes a user.
func (s *UserService) DeleteUser(ctx context.Context, id string) (err error) {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteUser", "user_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if err = s.users.DeleteUser(ctx, id); err != nil {
		err = mapRepoError(err, nil)
	}
	return
}

// ListUsers returns all users ordered by email.
func (s *UserService) ListUsers(ctx context.Context) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return nil, nil
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]User, len(users))
	copy(out, users)

	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Email, out[j].Email) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Email) < strings.ToLower(out[j].Email)
	})

	return out, nil
}

// Exists reports whether any manager account has been created.
func (s *UserService) Exists(ctx context.Context) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return false, nil
	}
	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func normalizeUserInput(input UserInput) UserInput {
	return UserInput{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Position:    strings.TrimSpace(input.Position),
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Password:    input.Password,
		IsConnected: input.IsConnected,
	}
}

func validateUserInput(input UserInput) *ValidationError {
	vErr := &ValidationError{}
	vErr.merge(validatePersonName(input.FirstName, input.LastName))

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if input.Password != "" && len([]rune(input.Password)) < MinPasswordLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	return vErr
}
