package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// BookRoomRequest is the input to the booking resolver. Policy checks
// (advance window, closing time, capacity) live in the service; this only
// validates shape.
type BookRoomRequest struct {
	RoomID     uuid.UUID `json:"room_id"`
	BorrowerID uuid.UUID `json:"borrower_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	PartySize  int       `json:"party_size"`
	Purpose    string    `json:"purpose"`
}

// Validate validates the booking request
func (r BookRoomRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RoomID, validation.Required),
		validation.Field(&r.BorrowerID, validation.Required),
		validation.Field(&r.StartTime, validation.Required),
		validation.Field(&r.EndTime, validation.Required),
		validation.Field(&r.PartySize, validation.Required, validation.Min(1)),
		validation.Field(&r.Purpose, validation.Length(0, 500)),
	)
}

// AddRoomRequest registers a new bookable room.
type AddRoomRequest struct {
	Name     string   `json:"name"`
	Capacity int      `json:"capacity"`
	Features []string `json:"features"`
}

// Validate validates the add-room request
func (r AddRoomRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Capacity, validation.Required, validation.Min(1), validation.Max(200)),
	)
}
