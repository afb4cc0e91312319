package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/recurring-notifier/internal/api/dto"
	"github.com/aliskhannn/recurring-notifier/internal/api/respond"
	"github.com/aliskhannn/recurring-notifier/internal/config"
	"github.com/aliskhannn/recurring-notifier/internal/model"
	"github.com/aliskhannn/recurring-notifier/internal/repository/notification"
	service "github.com/aliskhannn/recurring-notifier/internal/service/notification"
)

// notificationService defines the interface that the Handler depends on.
//
// It abstracts the business logic for creating, inspecting and cancelling
// notifications.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/notification/mock.go -package=mocks
type notificationService interface {
	CreateNotification(context.Context, retry.Strategy, model.Notification) (uuid.UUID, error)
	GetNotification(context.Context, uuid.UUID) (model.Notification, error)
	GetNotificationStatusByID(context.Context, retry.Strategy, uuid.UUID) (string, error)
	CancelNotification(context.Context, retry.Strategy, uuid.UUID) error
	GetAllNotifications(context.Context) ([]model.Notification, error)
}

// Handler handles HTTP requests related to notifications.
//
// It provides endpoints for creating notifications, reading them with their
// schedule history, checking their status, listing all notifications and
// cancelling a recurrence chain.
type Handler struct {
	service   notificationService
	validator *validator.Validate
	cfg       *config.Config
}

// NewHandler creates a new Handler instance.
//
// Parameters:
//   - s: implementation of notificationService
//   - v: validator instance for request validation
//   - cfg: configuration instance
func NewHandler(
	s notificationService,
	v *validator.Validate,
	cfg *config.Config,
) *Handler {
	return &Handler{service: s, validator: v, cfg: cfg}
}

// Create handles HTTP POST requests to create a new notification.
//
// It validates the request body, creates the notification using the service
// and returns the created notification ID or an error.
func (h *Handler) Create(c *ginext.Context) {
	var req dto.CreateRequest

	// Decode JSON request body into CreateRequest struct.
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	// Validate request fields using go-playground/validator.
	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	notif := model.Notification{
		SenderEmail:   req.SenderEmail,
		ReceiverEmail: req.ReceiverEmail,
		Content:       req.Content,
		Date:          req.Date,
		Time:          req.Time,
		Future:        req.Future,
		Recurring:     req.Recurring,
		Frequency:     req.Frequency,
	}

	id, err := h.service.CreateNotification(c.Request.Context(), h.cfg.CacheRetry, notif)
	if err != nil {
		// Frequency and anchor errors surface at creation time.
		if errors.Is(err, service.ErrInvalidNotification) {
			zlog.Logger.Warn().Err(err).Msg("invalid notification")
			respond.Fail(c.Writer, http.StatusBadRequest, err)
			return
		}

		zlog.Logger.Error().Err(err).Str("receiver", notif.ReceiverEmail).Msg("failed to create notification")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.Created(c.Writer, id)
}

// Get handles HTTP GET requests for one notification with its schedule entries.
func (h *Handler) Get(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	n, err := h.service.GetNotification(c.Request.Context(), id)
	if err != nil {
		h.failLookup(c, id, err, "failed to get notification")
		return
	}

	respond.OK(c.Writer, n)
}

// GetStatus handles HTTP GET requests to retrieve the status of a notification.
//
// It expects the notification ID as a URL parameter and returns its status.
func (h *Handler) GetStatus(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	// Fetch notification status from service.
	status, err := h.service.GetNotificationStatusByID(c.Request.Context(), h.cfg.CacheRetry, id)
	if err != nil {
		h.failLookup(c, id, err, "failed to get notification status")
		return
	}

	respond.OK(c.Writer, dto.StatusResponse{ID: id.String(), Status: status})
}

// GetAll handles HTTP GET requests to retrieve all notifications.
//
// It returns a list of all notifications or an error if retrieval fails.
func (h *Handler) GetAll(c *ginext.Context) {
	notifications, err := h.service.GetAllNotifications(c.Request.Context())
	if err != nil {
		// Check if no notifications found and return 404.
		if errors.Is(err, notification.ErrNoNotificationsFound) {
			zlog.Logger.Warn().Err(err).Msg("no notifications found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("no notifications found"))
			return
		}

		zlog.Logger.Error().Err(err).Msg("failed to get notifications")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, notifications)
}

// Cancel handles HTTP DELETE requests to cancel a notification.
//
// The record is kept; its status becomes "cancelled" and queued jobs for it
// are dropped when they come due.
func (h *Handler) Cancel(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	err := h.service.CancelNotification(c.Request.Context(), h.cfg.CacheRetry, id)
	if err != nil {
		h.failLookup(c, id, err, "failed to cancel notification")
		return
	}

	respond.OK(c.Writer, "notification cancelled")
}

// parseID extracts the notification ID from URL parameters and writes a 400
// response when it is malformed.
func parseID(c *ginext.Context) (uuid.UUID, bool) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		zlog.Logger.Error().Err(err).Interface("idStr", idStr).Msg("failed to parse id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		zlog.Logger.Warn().Msg("missing id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("missing id"))
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) failLookup(c *ginext.Context, id uuid.UUID, err error, msg string) {
	if errors.Is(err, notification.ErrNotificationNotFound) {
		zlog.Logger.Warn().Interface("id", id).Err(err).Msg("notification not found")
		respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("notification not found"))
		return
	}

	zlog.Logger.Error().Err(err).Interface("id", id).Msg(msg)
	respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
}
