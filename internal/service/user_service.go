package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"chirp/internal/auth"
	"chirp/internal/authz"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/validation"
)

// PasswordHasher hashes and verifies raw credentials.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	// Compare returns nil only when raw produces hash.
	Compare(hash, raw string) error
}

var errInvalidCredentials = models.NewUnauthorizedError("Invalid credentials")

type UserService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	now      func() time.Time
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

// UpdateProfileInput carries a partial profile update; nil fields are left unchanged.
type UpdateProfileInput struct {
	UserID      uint
	DisplayName *string
	Bio         *string
	Location    *string
	Website     *string
	AvatarURL   *string
	Membership  *models.MembershipTier
}

func NewUserService(userRepo repository.UserRepository, hasher PasswordHasher) *UserService {
	if hasher == nil {
		hasher = auth.BcryptHasher{}
	}
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		now:      time.Now,
	}
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// FindByHandleOrEmail looks a user up by either identifier, case-insensitively.
func (s *UserService) FindByHandleOrEmail(ctx context.Context, value string) (*models.User, error) {
	normalized := validation.NormalizeHandle(value)
	if normalized == "" {
		return nil, models.NewValidationError("Username or email is required")
	}
	user, err := s.userRepo.GetByHandleOrEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", normalized)
	}
	return user, nil
}

// ResolveActor loads the acting identity for an authenticated user id.
// Deactivated or missing accounts cannot act.
func (s *UserService) ResolveActor(ctx context.Context, id uint) (models.Actor, error) {
	if id == 0 {
		return models.Actor{}, nil
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return models.Actor{}, models.NewUnauthorizedError("Account no longer exists")
		}
		return models.Actor{}, err
	}
	if !user.IsActive {
		return models.Actor{}, models.NewUnauthorizedError("Account is deactivated")
	}
	return user.Actor(), nil
}

// Register creates an account. Handle and email are lowercased before
// validation and before both uniqueness checks.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := validation.NormalizeHandle(in.Username)
	email := validation.NormalizeHandle(in.Email)
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = username
	}

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateDisplayName(displayName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username is already taken")
	}
	existing, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email is already registered")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:    username,
		Email:       email,
		Password:    hashed,
		DisplayName: displayName,
		Membership:  models.MembershipBasic,
		IsActive:    true,
	}
	// A concurrent registration can still win the race; the repository maps
	// the unique violation to CONFLICT.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("username", user.Username))
	return user, nil
}

// VerifyCredential authenticates a login attempt. Unknown users, wrong
// passwords and deactivated accounts are indistinguishable to the caller.
func (s *UserService) VerifyCredential(ctx context.Context, handleOrEmail, password string) (*models.User, error) {
	normalized := validation.NormalizeHandle(handleOrEmail)
	if normalized == "" || password == "" {
		return nil, errInvalidCredentials
	}

	user, err := s.userRepo.GetByHandleOrEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, errInvalidCredentials
	}
	if err := s.hasher.Compare(user.Password, password); err != nil {
		return nil, errInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to record last login",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()))
	} else {
		user.LastLoginAt = &now
	}
	return user, nil
}

// UpdateProfile applies a partial update. Only the account holder or a
// privileged actor may edit a profile, and only privileged actors may change
// the membership tier.
func (s *UserService) UpdateProfile(ctx context.Context, actor models.Actor, in UpdateProfileInput) (*models.User, error) {
	if !actor.Authenticated() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutate(actor, user) {
		return nil, models.NewForbiddenError("You can only update your own profile")
	}

	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if err := validation.ValidateDisplayName(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.DisplayName = name
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if err := validation.ValidateBio(bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Bio = bio
	}
	if in.Location != nil {
		location := strings.TrimSpace(*in.Location)
		if err := validation.ValidateLocation(location); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Location = location
	}
	if in.Website != nil {
		website := strings.TrimSpace(*in.Website)
		if err := validation.ValidateOptionalURL("website", website); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Website = website
	}
	if in.AvatarURL != nil {
		avatar := strings.TrimSpace(*in.AvatarURL)
		if err := validation.ValidateOptionalURL("avatar_url", avatar); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.AvatarURL = avatar
	}
	if in.Membership != nil && *in.Membership != user.Membership {
		if !actor.Privileged {
			return nil, models.NewForbiddenError("Only administrators can change membership")
		}
		if !in.Membership.Valid() {
			return nil, models.NewValidationError("Invalid membership tier")
		}
		user.Membership = *in.Membership
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword rewrites the credential hash when the raw credential changes.
func (s *UserService) ChangePassword(ctx context.Context, actor models.Actor, current, next string) error {
	if !actor.Authenticated() {
		return models.NewUnauthorizedError("Authentication required")
	}
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.Password, current); err != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}
	if current == next {
		return nil
	}
	if err := validation.ValidatePassword(next); err != nil {
		return models.NewValidationError(err.Error())
	}

	hashed, err := s.hasher.Hash(next)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = hashed
	return s.userRepo.Update(ctx, user)
}

// Deactivate marks the account inactive. The record and its content are kept.
func (s *UserService) Deactivate(ctx context.Context, actor models.Actor, userID uint) error {
	if !actor.Authenticated() {
		return models.NewUnauthorizedError("Authentication required")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !authz.CanMutate(actor, user) {
		return models.NewForbiddenError("You can only deactivate your own account")
	}
	if !user.IsActive {
		return nil
	}
	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "user deactivated",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.Uint64("by", uint64(actor.ID)))
	return nil
}

func (s *UserService) Follow(ctx context.Context, actor models.Actor, targetID uint) error {
	if err := s.checkFollowTarget(ctx, actor, targetID); err != nil {
		return err
	}
	return s.userRepo.Follow(ctx, actor.ID, targetID)
}

func (s *UserService) Unfollow(ctx context.Context, actor models.Actor, targetID uint) error {
	if err := s.checkFollowTarget(ctx, actor, targetID); err != nil {
		return err
	}
	return s.userRepo.Unfollow(ctx, actor.ID, targetID)
}

func (s *UserService) checkFollowTarget(ctx context.Context, actor models.Actor, targetID uint) error {
	if !actor.Authenticated() {
		return models.NewUnauthorizedError("Authentication required")
	}
	if actor.ID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}
	_, err := s.userRepo.GetByID(ctx, targetID)
	return err
}

// Followers lists the accounts following userID, most recent first.
func (s *UserService) Followers(ctx context.Context, userID uint, page Page) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.userRepo.ListFollowers(ctx, userID, page.Limit(), page.Offset())
}

// Following lists the accounts userID follows, most recent first.
func (s *UserService) Following(ctx context.Context, userID uint, page Page) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.userRepo.ListFollowing(ctx, userID, page.Limit(), page.Offset())
}
