package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitpass/internal/auth"
	"fitpass/internal/cache"
	"fitpass/internal/logger"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const profileCacheTTL = 5 * time.Minute

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	UpdateProfile(ctx context.Context, userID int, name string) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
}

type service struct {
	repo      Repository
	cache     cache.Cache
	jwtSecret string
}

func NewService(repo Repository, c cache.Cache, jwtSecret string) Service {
	return &service{
		repo:      repo,
		cache:     c,
		jwtSecret: jwtSecret,
	}
}

func profileCacheKey(userID int) string {
	return fmt.Sprintf("users:profile:%d", userID)
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	u, err := s.repo.Create(ctx, req.Name, req.Email, passwordHash, auth.RoleMember)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		u.ID,
		u.Email,
		u.Role,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return u, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		u.ID,
		u.Email,
		u.Role,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return u, accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	if s.cache != nil {
		var cached User
		if err := s.cache.Get(ctx, profileCacheKey(userID), &cached); err == nil {
			return &cached, nil
		}
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, profileCacheKey(userID), u, profileCacheTTL); err != nil {
			logger.Error("cache user profile", "user_id", userID, "error", err)
		}
	}

	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID int, name string) (*User, error) {
	u, err := s.repo.UpdateName(ctx, userID, name)
	if err != nil {
		return nil, err
	}

	// The cached profile is stale now; drop it rather than rewrite it.
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, profileCacheKey(userID)); err != nil {
			logger.Error("invalidate user profile cache", "user_id", userID, "error", err)
		}
	}

	return u, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	newAccessToken, err := auth.GenerateAccessToken(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, u, nil
}
