package model

import (
	"time"

	"github.com/google/uuid"

	roomModel "library-backend/internal/domains/room/model"
	unitModel "library-backend/internal/domains/unit/model"
)

// TitleAvailability answers "how many copies of this title are free" plus
// the per-status breakdown, enriched with catalog metadata.
type TitleAvailability struct {
	TitleID   uuid.UUID              `json:"title_id"`
	Name      string                 `json:"name"`
	Author    string                 `json:"author"`
	Total     int                    `json:"total"`
	Available int                    `json:"available"`
	Counts    unitModel.StatusCounts `json:"counts"`
}

// RoomAvailability answers "is this room free at time T". Status already
// accounts for a live booking whose interval has passed.
type RoomAvailability struct {
	RoomID uuid.UUID            `json:"room_id"`
	Status roomModel.RoomStatus `json:"status"`
	AsOf   time.Time            `json:"as_of"`

	// BusyUntil carries the end of the blocking booking when occupied.
	BusyUntil *time.Time `json:"busy_until,omitempty"`
}
