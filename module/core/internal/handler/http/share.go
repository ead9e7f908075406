package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
)

type shareService interface {
	Share(ctx context.Context, userID, recipientEmail string, duration time.Duration) (*domain.SharedLocation, error)
	ListActive(ctx context.Context, userID string) ([]domain.SharedLocation, error)
	Revoke(ctx context.Context, userID, shareID string) error
	Authorize(ctx context.Context, shareID string) (*domain.SharedLocation, error)
	ViewLocation(ctx context.Context, shareID string) (*domain.LocationSample, error)
}

type streamer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, shareID string, expiresAt time.Time) error
}

type createShareRequest struct {
	RecipientEmail  string `json:"recipient_email" binding:"required,email"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,gt=0"`
}

type ShareHandler struct {
	shareSvc shareService
	streamer streamer
	logger   *slog.Logger
}

func NewShareHandler(shareSvc shareService, streamer streamer, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{shareSvc: shareSvc, streamer: streamer, logger: logger}
}

func (h *ShareHandler) Register(r *gin.RouterGroup) {
	r.GET("/users/:user_id/shares", h.ListShares)
	r.POST("/users/:user_id/shares", h.CreateShare)
	r.DELETE("/users/:user_id/shares/:share_id", h.RevokeShare)
	r.GET("/shares/:share_id/location", h.ViewLocation)
	r.GET("/shares/:share_id/stream", h.Stream)
}

func (h *ShareHandler) CreateShare(c *gin.Context) {
	var req createShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	share, err := h.shareSvc.Share(c.Request.Context(), c.Param("user_id"), req.RecipientEmail,
		time.Duration(req.DurationMinutes)*time.Minute)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, share)
}

func (h *ShareHandler) ListShares(c *gin.Context) {
	shares, err := h.shareSvc.ListActive(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if shares == nil {
		shares = []domain.SharedLocation{}
	}
	c.JSON(http.StatusOK, shares)
}

func (h *ShareHandler) RevokeShare(c *gin.Context) {
	if err := h.shareSvc.Revoke(c.Request.Context(), c.Param("user_id"), c.Param("share_id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShareHandler) ViewLocation(c *gin.Context) {
	sample, err := h.shareSvc.ViewLocation(c.Request.Context(), c.Param("share_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toLocationResponse(sample))
}

// Stream upgrades to a websocket that receives every new sample of the
// sharing user until the share expires.
func (h *ShareHandler) Stream(c *gin.Context) {
	share, err := h.shareSvc.Authorize(c.Request.Context(), c.Param("share_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	// the upgrader has already answered the request on failure
	if err := h.streamer.ServeWS(c.Writer, c.Request, share.ID, share.ExpiresAt); err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("share_id", share.ID),
			slog.Any("error", err),
		)
	}
}
