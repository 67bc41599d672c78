package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"relay-service/internal/database"
	"relay-service/internal/models"
	"relay-service/internal/repository"
)

const profileCacheTTL = 10 * time.Minute

// UserService manages profiles. Profile reads go through a Redis cache;
// block lookups never do — the relay's delivery filter always reads the
// relational store directly.
type UserService struct {
	users   repository.UserRepository
	blocks  repository.BlockRepository
	posts   repository.PostRepository
	cache   *redis.Client
	storage *database.MinIOClient
}

func NewUserService(
	users repository.UserRepository,
	blocks repository.BlockRepository,
	posts repository.PostRepository,
	cache *redis.Client,
	storage *database.MinIOClient,
) *UserService {
	return &UserService{
		users:   users,
		blocks:  blocks,
		posts:   posts,
		cache:   cache,
		storage: storage,
	}
}

func profileCacheKey(id uint) string {
	return fmt.Sprintf("user:%d:profile", id)
}

func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.UserResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, profileCacheKey(id)).Bytes(); err == nil {
			var profile models.UserResponse
			if err := json.Unmarshal(cached, &profile); err == nil {
				return &profile, nil
			}
		}
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := user.ToResponse()
	s.cacheProfile(ctx, &profile)
	return &profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, req models.UpdateUserRequest) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.invalidateProfile(ctx, id)
	profile := user.ToResponse()
	return &profile, nil
}

// UploadAvatar stores the image in object storage and records its URL on the
// profile.
func (s *UserService) UploadAvatar(ctx context.Context, id uint, file *multipart.FileHeader) (*models.UserResponse, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("object storage not configured")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.UploadAvatar(ctx, id, file)
	if err != nil {
		return nil, err
	}

	user.Avatar = url
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.invalidateProfile(ctx, id)
	profile := user.ToResponse()
	return &profile, nil
}

// DeleteAccount removes the user along with their posts and every block edge
// they participate in.
func (s *UserService) DeleteAccount(ctx context.Context, id uint) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.posts.DeleteByUser(ctx, id); err != nil {
		return err
	}
	if err := s.blocks.RemoveAllForUser(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateProfile(ctx, id)
	return nil
}

func (s *UserService) cacheProfile(ctx context.Context, profile *models.UserResponse) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, profileCacheKey(profile.ID), data, profileCacheTTL).Err(); err != nil {
		slog.Debug("profile cache write failed", "userID", profile.ID, "error", err)
	}
}

func (s *UserService) invalidateProfile(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, profileCacheKey(id)).Err(); err != nil {
		slog.Debug("profile cache invalidation failed", "userID", id, "error", err)
	}
}
