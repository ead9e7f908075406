package domain

import "time"

type GeofenceRegion struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Center    Coordinate `json:"center"`
	Radius    float64    `json:"radius"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
}

type NewGeofenceRegion struct {
	UserID string
	Name   string
	Center Coordinate
	Radius float64
	Active bool
}

// Membership maps a region id to whether the point is inside it.
type Membership map[string]bool

type TransitionType string

const (
	TransitionEntered   TransitionType = "entered"
	TransitionExited    TransitionType = "exited"
	TransitionUnchanged TransitionType = "unchanged"
)

type Transition struct {
	RegionID string         `json:"region_id"`
	Type     TransitionType `json:"type"`
}

type GeofenceEventType string

const (
	GeofenceEntered GeofenceEventType = "geofence_entered"
	GeofenceExited  GeofenceEventType = "geofence_exited"
)

type GeofenceEvent struct {
	UserID     string            `json:"user_id"`
	RegionID   string            `json:"region_id"`
	RegionName string            `json:"region_name"`
	Event      GeofenceEventType `json:"event"`
	Location   Coordinate        `json:"location"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Evaluation is the outcome of running one sample through the tracking
// pipeline.
type Evaluation struct {
	Membership  Membership   `json:"membership"`
	Transitions []Transition `json:"transitions"`
}
