package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"relay-service/internal/models"
	"relay-service/internal/relay"
	"relay-service/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService handles registration, login, and credential verification. It
// implements relay.CredentialVerifier for the websocket handshake.
type AuthService struct {
	users     repository.UserRepository
	jwtSecret string
	jwtExpire time.Duration
}

func NewAuthService(users repository.UserRepository, secret string, expire time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: secret,
		jwtExpire: expire,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.jwtExpire).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &models.LoginResponse{
		Token: tokenString,
		User:  user.ToResponse(),
	}, nil
}

// Verify resolves a bearer credential to a user identity for the websocket
// handshake. The subject must still exist: a token outliving its account is
// rejected. The username is read fresh from the store, not from the claims.
func (s *AuthService) Verify(ctx context.Context, token string) (*relay.Identity, error) {
	if token == "" {
		return nil, relay.ErrMissingCredential
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, relay.ErrExpiredCredential
		}
		return nil, relay.ErrInvalidCredential
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, relay.ErrInvalidCredential
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, relay.ErrInvalidCredential
	}

	user, err := s.users.FindByID(ctx, uint(sub))
	if err != nil {
		return nil, relay.ErrInvalidCredential
	}

	return &relay.Identity{
		UserID:   user.ID,
		Username: user.Username,
	}, nil
}
