package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shubham-1706-g/Class2Canteen/internal/entities"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")
)

type UserRepo interface {
	CreateUser(ctx context.Context, u entities.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (entities.User, error)
	GetUserByID(ctx context.Context, userID int64) (entities.User, error)
	UpdateUser(ctx context.Context, userID int64, upd entities.UserUpdate) (entities.User, error)
}

type AuthService struct {
	logger   *slog.Logger
	repo     UserRepo
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(logger *slog.Logger, repo UserRepo, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		logger:   logger.With(slog.String("service", "auth")),
		repo:     repo,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Register creates a student account. Owner accounts are provisioned with
// their shops, not through signup.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (entities.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := entities.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         entities.RoleStudent,
		FirstName:    firstName,
		LastName:     lastName,
	}

	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return entities.User{}, err
	}
	user.ID = id

	s.logger.Debug("user registered", slog.Int64("user_id", id))
	return user, nil
}

// Login verifies credentials and mints a signed token. A missing user and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (entities.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, entities.ErrUserNotFound) {
		return entities.User{}, "", entities.ErrInvalidCredentials
	}
	if err != nil {
		return entities.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return entities.User{}, "", entities.ErrInvalidCredentials
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return entities.User{}, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

func (s *AuthService) UpdateUser(ctx context.Context, userID int64, upd entities.UserUpdate) (entities.User, error) {
	return s.repo.UpdateUser(ctx, userID, upd)
}

// VerifyToken validates a token string and resolves the user it names.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (entities.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return entities.User{}, ErrTokenExpired
	}
	if err != nil || !token.Valid {
		return entities.User{}, ErrTokenInvalid
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return entities.User{}, ErrTokenInvalid
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return entities.User{}, ErrTokenInvalid
	}

	return s.repo.GetUserByID(ctx, userID)
}

func (s *AuthService) generateToken(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}
