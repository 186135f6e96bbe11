package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/users-api/internal/apperror"
	"github.com/vasiliy-maslov/users-api/internal/user"
)

type UserHandler struct {
	service   user.Service
	validator *user.Validator
}

func NewUserHandler(service user.Service, validator *user.Validator) *UserHandler {
	return &UserHandler{
		service:   service,
		validator: validator,
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Get("/users", h.handleGetUsersByBirthDateRange)
	router.Post("/users", h.handleCreateUser)
	router.Patch("/users/{id}", h.handleUpdateUser)
	router.Put("/users/{id}", h.handleReplaceUser)
	router.Delete("/users/{id}", h.handleDeleteUser)
}

func (h *UserHandler) handleGetUsersByBirthDateRange(w http.ResponseWriter, r *http.Request) {
	from, err := dateQueryParam(r, "from")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	to, err := dateQueryParam(r, "to")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.validator.ValidateRange(from, to); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	users, err := h.service.GetUsersByBirthDateRange(r.Context(), from, to)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var requestPayload user.CreateRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create request")
		respondWithAppError(w, r, err)
		return
	}

	if err := h.validator.ValidateCreate(requestPayload); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	created, err := h.service.CreateUser(r.Context(), requestPayload)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *UserHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var requestPayload user.UpdateRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("Failed to decode update request")
		respondWithAppError(w, r, err)
		return
	}

	if err := h.validator.ValidateUpdate(requestPayload); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), userID, requestPayload)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) handleReplaceUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var requestPayload user.CreateRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("Failed to decode replace request")
		respondWithAppError(w, r, err)
		return
	}

	if err := h.validator.ValidateCreate(requestPayload); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	replaced, err := h.service.ReplaceUser(r.Context(), userID, requestPayload)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, replaced)
}

func (h *UserHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func userIDParam(r *http.Request) (uuid.UUID, error) {
	idParam := chi.URLParam(r, "id")
	userID, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("user_id", idParam).Msg("Failed to parse id parameter from URL")
		return uuid.Nil, apperror.NewInvalidInput("Invalid id parameter").WithCause(err)
	}
	return userID, nil
}

func dateQueryParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, apperror.NewInvalidInput("Required request parameter '" + name + "' is not present")
	}

	date, err := user.ParseDate(raw)
	if err != nil {
		log.Warn().Err(err).Str(name, raw).Msg("Failed to parse date query parameter")
		return time.Time{}, apperror.NewInvalidInput("Invalid '" + name + "' parameter, expected yyyy-MM-dd").WithCause(err)
	}
	return date, nil
}
