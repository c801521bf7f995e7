package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/availability/model"
	catalogRepo "library-backend/internal/domains/catalog/repository"
	roomModel "library-backend/internal/domains/room/model"
	roomRepo "library-backend/internal/domains/room/repository"
	unitRepo "library-backend/internal/domains/unit/repository"
)

// ServiceInterface is the read-side availability projector. It only folds
// state owned by the unit and room stores; it never writes anything.
type ServiceInterface interface {
	// TitleAvailability folds the unit counts for a title.
	TitleAvailability(ctx context.Context, titleID uuid.UUID) (*model.TitleAvailability, error)

	// RoomAvailability reports the room's status at asOf. A live booking
	// whose interval has passed is treated as over without being finalized;
	// a later write path will sweep it.
	RoomAvailability(ctx context.Context, roomID uuid.UUID, asOf time.Time) (*model.RoomAvailability, error)
}

type availabilityService struct {
	catalogRepo catalogRepo.RepositoryInterface
	unitRepo    unitRepo.RepositoryInterface
	roomRepo    roomRepo.RepositoryInterface
	now         func() time.Time
}

// NewService creates a new availability projector
func NewService(
	catalog catalogRepo.RepositoryInterface,
	units unitRepo.RepositoryInterface,
	rooms roomRepo.RepositoryInterface,
	now func() time.Time,
) ServiceInterface {
	return &availabilityService{
		catalogRepo: catalog,
		unitRepo:    units,
		roomRepo:    rooms,
		now:         now,
	}
}

// TitleAvailability implements ServiceInterface.TitleAvailability
func (s *availabilityService) TitleAvailability(ctx context.Context, titleID uuid.UUID) (*model.TitleAvailability, error) {
	title, err := s.catalogRepo.GetByID(ctx, titleID)
	if err != nil {
		return nil, err
	}

	counts, err := s.unitRepo.CountByStatus(ctx, titleID)
	if err != nil {
		return nil, err
	}

	return &model.TitleAvailability{
		TitleID:   titleID,
		Name:      title.Name,
		Author:    title.Author,
		Total:     counts.Total,
		Available: counts.Available,
		Counts:    *counts,
	}, nil
}

// RoomAvailability implements ServiceInterface.RoomAvailability
func (s *availabilityService) RoomAvailability(ctx context.Context, roomID uuid.UUID, asOf time.Time) (*model.RoomAvailability, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}

	room, err := s.roomRepo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	result := &model.RoomAvailability{
		RoomID: roomID,
		AsOf:   asOf,
	}

	if room.Status == roomModel.RoomStatusMaintenance {
		result.Status = roomModel.RoomStatusMaintenance
		return result, nil
	}

	// Re-derive from the bookings rather than trusting the stored status:
	// an expired booking must never make the room look occupied.
	live, err := s.roomRepo.ListLiveBookings(ctx, roomID)
	if err != nil {
		return nil, err
	}

	result.Status = roomModel.RoomStatusAvailable
	for i := range live {
		if live[i].Expired(asOf) {
			continue
		}
		end := live[i].EndTime
		result.Status = roomModel.RoomStatusOccupied
		result.BusyUntil = &end
		break
	}

	return result, nil
}
