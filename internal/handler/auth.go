package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shubham-1706-g/Class2Canteen/internal/entities"
	"github.com/shubham-1706-g/Class2Canteen/internal/middleware"
	"github.com/shubham-1706-g/Class2Canteen/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (entities.User, error)
	Login(ctx context.Context, email, password string) (entities.User, string, error)
	UpdateUser(ctx context.Context, userID int64, upd entities.UserUpdate) (entities.User, error)
}

type AuthHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      AuthService
	verifier middleware.TokenVerifier
}

func NewAuthHandler(logger *slog.Logger, svc AuthService, verifier middleware.TokenVerifier) *AuthHandler {
	return &AuthHandler{
		logger:   logger.With(slog.String("handler", "auth")),
		validate: validator.New(),
		svc:      svc,
		verifier: verifier,
	}
}

func (h *AuthHandler) Init(r chi.Router) {
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.verifier))
		r.Put("/users/{user_id}", h.UpdateUser)
	})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SignupRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	user, err := h.svc.Register(ctx, req.Email, req.Password, req.FirstName, req.LastName)
	if errors.Is(err, entities.ErrEmailTaken) {
		utils.WriteError(w, "email already registered", http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to register user", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, UserEntityToJSON(user), http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	user, token, err := h.svc.Login(ctx, req.Email, req.Password)
	if errors.Is(err, entities.ErrInvalidCredentials) {
		utils.WriteError(w, "invalid email or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to log in user", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, LoginResponse{User: UserEntityToJSON(user), Token: token}, http.StatusOK)
}

func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := pathID(r, "user_id")
	if err != nil {
		utils.WriteError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	// Users only edit their own profile.
	if caller, ok := middleware.UserFromContext(ctx); !ok || caller.ID != userID {
		utils.WriteError(w, "profile access denied", http.StatusForbidden)
		return
	}

	var req UserUpdateRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	user, err := h.svc.UpdateUser(ctx, userID, entities.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	switch {
	case errors.Is(err, entities.ErrUserNotFound):
		utils.WriteError(w, "user not found", http.StatusNotFound)
		return
	case errors.Is(err, entities.ErrEmailTaken):
		utils.WriteError(w, "email already registered", http.StatusConflict)
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to update user", slog.Any("error", err), slog.Int64("user_id", userID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, UserEntityToJSON(user), http.StatusOK)
}
