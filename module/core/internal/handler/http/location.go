package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
)

type tracker interface {
	Record(ctx context.Context, sample *domain.LocationSample) (*domain.Evaluation, error)
}

type locationService interface {
	GetLatest(ctx context.Context, userID string) (*domain.LocationSample, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationSample, error)
}

type recordLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,lat"`
	Longitude *float64 `json:"longitude" binding:"required,lng"`
	Timestamp int64    `json:"timestamp" binding:"omitempty,gt=0"`
	Accuracy  *float64 `json:"accuracy" binding:"omitempty,gte=0"`
	Speed     *float64 `json:"speed" binding:"omitempty,gte=0"`
}

type locationResponse struct {
	UserID    string   `json:"user_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Timestamp int64    `json:"timestamp"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
}

type LocationHandler struct {
	tracker     tracker
	locationSvc locationService
	logger      *slog.Logger
	now         func() time.Time
}

func NewLocationHandler(tracker tracker, locationSvc locationService, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{tracker: tracker, locationSvc: locationSvc, logger: logger, now: time.Now}
}

func (h *LocationHandler) Register(r *gin.RouterGroup) {
	r.POST("/users/:user_id/locations", h.RecordLocation)
	r.GET("/users/:user_id/location", h.GetLatestLocation)
	r.GET("/users/:user_id/history", h.GetHistory)
}

// RecordLocation ingests a sample over HTTP. A missing timestamp means now.
func (h *LocationHandler) RecordLocation(c *gin.Context) {
	var req recordLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ts := h.now()
	if req.Timestamp > 0 {
		ts = time.UnixMilli(req.Timestamp)
	}
	sample := &domain.LocationSample{
		UserID:    c.Param("user_id"),
		Coord:     domain.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude},
		Timestamp: ts,
		Accuracy:  req.Accuracy,
		Speed:     req.Speed,
	}

	eval, err := h.tracker.Record(c.Request.Context(), sample)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, eval)
}

func (h *LocationHandler) GetLatestLocation(c *gin.Context) {
	sample, err := h.locationSvc.GetLatest(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toLocationResponse(sample))
}

func (h *LocationHandler) GetHistory(c *gin.Context) {
	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return
	}

	var limit int
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
	}

	query := &domain.HistoryQuery{
		UserID: c.Param("user_id"),
		Start:  time.UnixMilli(start),
		End:    time.UnixMilli(end),
		Limit:  limit,
	}

	samples, err := h.locationSvc.GetHistory(c.Request.Context(), query)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	results := make([]locationResponse, len(samples))
	for i := range samples {
		results[i] = toLocationResponse(&samples[i])
	}
	c.JSON(http.StatusOK, results)
}

func toLocationResponse(s *domain.LocationSample) locationResponse {
	return locationResponse{
		UserID:    s.UserID,
		Latitude:  s.Coord.Lat,
		Longitude: s.Coord.Lon,
		Timestamp: s.Timestamp.UnixMilli(),
		Accuracy:  s.Accuracy,
		Speed:     s.Speed,
	}
}
