package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
)

type geofenceService interface {
	CreateRegion(ctx context.Context, in domain.NewGeofenceRegion) (*domain.GeofenceRegion, error)
	ListRegions(ctx context.Context, userID string) ([]domain.GeofenceRegion, error)
	DeleteRegion(ctx context.Context, userID, regionID string) error
	ToggleRegion(ctx context.Context, userID, regionID string) (*domain.GeofenceRegion, error)
	Evaluate(ctx context.Context, userID string, coord domain.Coordinate) (domain.Membership, error)
}

type createGeofenceRequest struct {
	Name      string   `json:"name" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required,lat"`
	Longitude *float64 `json:"longitude" binding:"required,lng"`
	Radius    float64  `json:"radius" binding:"required,gt=0"`
	Active    *bool    `json:"active"`
}

type coordinateRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,lat"`
	Longitude *float64 `json:"longitude" binding:"required,lng"`
}

type GeofenceHandler struct {
	geofenceSvc geofenceService
	logger      *slog.Logger
}

func NewGeofenceHandler(geofenceSvc geofenceService, logger *slog.Logger) *GeofenceHandler {
	return &GeofenceHandler{geofenceSvc: geofenceSvc, logger: logger}
}

func (h *GeofenceHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/users/:user_id/geofences")
	g.GET("", h.ListRegions)
	g.POST("", h.CreateRegion)
	g.POST("/evaluate", h.Evaluate)
	g.DELETE("/:region_id", h.DeleteRegion)
	g.POST("/:region_id/toggle", h.ToggleRegion)
}

// CreateRegion adds a circular region. Regions are active unless the request
// says otherwise.
func (h *GeofenceHandler) CreateRegion(c *gin.Context) {
	var req createGeofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	region, err := h.geofenceSvc.CreateRegion(c.Request.Context(), domain.NewGeofenceRegion{
		UserID: c.Param("user_id"),
		Name:   req.Name,
		Center: domain.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude},
		Radius: req.Radius,
		Active: active,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, region)
}

func (h *GeofenceHandler) ListRegions(c *gin.Context) {
	regions, err := h.geofenceSvc.ListRegions(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if regions == nil {
		regions = []domain.GeofenceRegion{}
	}
	c.JSON(http.StatusOK, regions)
}

func (h *GeofenceHandler) DeleteRegion(c *gin.Context) {
	if err := h.geofenceSvc.DeleteRegion(c.Request.Context(), c.Param("user_id"), c.Param("region_id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GeofenceHandler) ToggleRegion(c *gin.Context) {
	region, err := h.geofenceSvc.ToggleRegion(c.Request.Context(), c.Param("user_id"), c.Param("region_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, region)
}

// Evaluate reports membership for an arbitrary coordinate without recording
// it.
func (h *GeofenceHandler) Evaluate(c *gin.Context) {
	var req coordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	membership, err := h.geofenceSvc.Evaluate(c.Request.Context(), c.Param("user_id"),
		domain.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"membership": membership})
}
