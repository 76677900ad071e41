package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/smartbasket/internal/user"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PhoneLoginRequest struct {
	Phone string `json:"phone" validate:"required,max=20"`
	OTP   string `json:"otp" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"max=200"`
	Phone    string `json:"phone" validate:"max=20"`
	Address  string `json:"address" validate:"max=500"`
}

type AuthResponse struct {
	ID       *uuid.UUID `json:"id"`
	Email    string     `json:"email,omitempty"`
	FullName string     `json:"full_name,omitempty"`
	Phone    string     `json:"phone,omitempty"`
	Role     string     `json:"role,omitempty"`
	Message  string     `json:"message"`
	Success  bool       `json:"success"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Address:   u.Address,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func authSuccess(u *user.User, message string) AuthResponse {
	id := u.ID
	return AuthResponse{
		ID:       &id,
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    u.Phone,
		Role:     u.Role,
		Message:  message,
		Success:  true,
	}
}

type AuthHandler struct {
	service user.Service
	validation
}

func NewAuthHandler(service user.Service) *AuthHandler {
	return &AuthHandler{
		service:    service,
		validation: validation{validate: newValidator()},
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Post("/login/phone", h.handleLoginWithPhone)
		r.Get("/user/{userId}", h.handleGetProfile)
		r.Put("/user/{userId}", h.handleUpdateProfile)
	})
}

// decodeAuth is decodeJSON for the auth endpoints, which always answer with an
// AuthResponse body.
func (h *AuthHandler) decodeAuth(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		respondWithJSON(w, http.StatusBadRequest, AuthResponse{Message: "Invalid request payload"})
		return false
	}

	err := h.validate.Struct(dst)
	if err == nil {
		return true
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, AuthResponse{
			Message: validationMessage(formatValidationErrors(validationErrors)),
		})
	} else {
		log.Error().Err(err).Msg("Unexpected error type during validation")
		respondWithJSON(w, http.StatusInternalServerError, AuthResponse{Message: "Internal validation error"})
	}
	return false
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest
	if !h.decodeAuth(w, r, &requestPayload) {
		return
	}

	created, err := h.service.Register(r.Context(), requestPayload.Email, requestPayload.Password, requestPayload.FullName)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to register user via service")
		code := http.StatusBadRequest
		if mapErrorToStatusCode(err) == http.StatusInternalServerError {
			code = http.StatusInternalServerError
		}
		respondWithJSON(w, code, AuthResponse{
			Email:   requestPayload.Email,
			Message: clientMessage(err, "Registration failed"),
		})
		return
	}

	respondWithJSON(w, http.StatusCreated, authSuccess(created, "Registration successful"))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest
	if !h.decodeAuth(w, r, &requestPayload) {
		return
	}

	found, err := h.service.Login(r.Context(), requestPayload.Email, requestPayload.Password)
	if err != nil {
		code := http.StatusUnauthorized
		message := "Invalid email or password"
		if mapErrorToStatusCode(err) == http.StatusInternalServerError {
			log.Error().Err(err).Msg("Failed to login via service")
			code = http.StatusInternalServerError
			message = "Login failed"
		}
		respondWithJSON(w, code, AuthResponse{Email: requestPayload.Email, Message: message})
		return
	}

	respondWithJSON(w, http.StatusOK, authSuccess(found, "Login successful"))
}

func (h *AuthHandler) handleLoginWithPhone(w http.ResponseWriter, r *http.Request) {
	var requestPayload PhoneLoginRequest
	if !h.decodeAuth(w, r, &requestPayload) {
		return
	}

	found, err := h.service.LoginWithPhoneOTP(r.Context(), requestPayload.Phone, requestPayload.OTP)
	if err != nil {
		code := http.StatusUnauthorized
		if mapErrorToStatusCode(err) == http.StatusInternalServerError {
			log.Error().Err(err).Msg("Failed to login with phone via service")
			code = http.StatusInternalServerError
		}
		respondWithJSON(w, code, AuthResponse{
			Phone:   requestPayload.Phone,
			Message: clientMessage(err, "Login failed"),
		})
		return
	}

	respondWithJSON(w, http.StatusOK, authSuccess(found, "Login successful"))
}

func (h *AuthHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, r, "userId")
	if !ok {
		return
	}

	found, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to get user"))
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(found))
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, r, "userId")
	if !ok {
		return
	}

	// Clients send the whole profile back, so unknown fields are ignored here.
	var requestPayload UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if !h.check(w, &requestPayload) {
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), userID, user.ProfileUpdate{
		FullName: requestPayload.FullName,
		Phone:    requestPayload.Phone,
		Address:  requestPayload.Address,
	})
	if err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("Failed to update profile via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to update profile"))
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(updated))
}
