package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// RoomRepository captures the persistence operations needed by the service.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// RoomService orchestrates validation and persistence for the room catalog.
type RoomService struct {
	rooms       RoomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms RoomRepository, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{rooms: rooms, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates input and persists a new room.
func (s *RoomService) CreateRoom(ctx context.Context, input RoomInput) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom", "name", input.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	vErr := validateRoomInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	room = Room{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(input.Name),
		Location:  strings.TrimSpace(input.Location),
		Capacity:  input.Capacity,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if err = mapRoomRepoError(s.rooms.CreateRoom(ctx, room)); err != nil {
		room = Room{}
		return
	}
	return
}

// UpdateRoom validates input and updates an existing room.
func (s *RoomService) UpdateRoom(ctx context.Context, roomID string, input RoomInput) (room Room, err error) {
	if s == nil || s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom", "room_id", roomID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	var existing Room
	existing, err = s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	vErr := validateRoomInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	room = existing
	room.Name = strings.TrimSpace(input.Name)
	room.Location = strings.TrimSpace(input.Location)
	room.Capacity = input.Capacity
	room.UpdatedAt = s.now()

	if err = mapRoomRepoError(s.rooms.UpdateRoom(ctx, room)); err != nil {
		room = Room{}
		return
	}
	return
}

// GetRoom retrieves a single room by id.
func (s *RoomService) GetRoom(ctx context.Context, id string) (Room, error) {
	if s == nil || s.rooms == nil {
		return Room{}, fmt.Errorf("room repository not configured")
	}
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return Room{}, mapRoomRepoError(err)
	}
	return room, nil
}

// ListRooms enumerates the room catalog ordered by name.
func (s *RoomService) ListRooms(ctx context.Context) ([]Room, error) {
	if s == nil || s.rooms == nil {
		return nil, fmt.Errorf("room repository not configured")
	}

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	ordered := make([]Room, len(rooms))
	copy(ordered, rooms)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Name == ordered[j].Name {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Name < ordered[j].Name
	})
	return ordered, nil
}

// DeleteRoom removes a room from the catalog.
func (s *RoomService) DeleteRoom(ctx context.Context, id string) error {
	if s == nil || s.rooms == nil {
		return fmt.Errorf("room repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteRoom", "room_id", id)

	if _, err := s.rooms.GetRoom(ctx, id); err != nil {
		return mapRoomRepoError(err)
	}
	if err := s.rooms.DeleteRoom(ctx, id); err != nil {
		return mapRoomRepoError(err)
	}
	logger.InfoContext(ctx, "room deleted")
	return nil
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.Location) == "" {
		vErr.add("location", "location is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	return vErr
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("capacity", "capacity must be positive")
		return vErr
	}
	return err
}
