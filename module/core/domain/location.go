package domain

import "time"

type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// LocationSample is one reading from a user's device. Accuracy and Speed are
// nil when the sensor did not report them.
type LocationSample struct {
	UserID    string     `json:"user_id"`
	Coord     Coordinate `json:"location"`
	Timestamp time.Time  `json:"timestamp"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Speed     *float64   `json:"speed,omitempty"`
}

type HistoryQuery struct {
	UserID string
	Start  time.Time
	End    time.Time
	Limit  int
}
