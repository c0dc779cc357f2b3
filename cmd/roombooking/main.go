package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/config"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlite"
	"github.com/example/room-booking/internal/recurrence"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.SQLiteDSN, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close store", "error", cerr)
		}
	}()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	bookingRepo := newBookingRepositoryAdapter(store.Bookings)
	roomRepo := newRoomRepositoryAdapter(store.Rooms)
	roomCatalog := newRoomCatalogAdapter(store.Rooms)

	expansionService := application.NewExpansionService(bookingRepo, recurrence.RegionalCalendar{}, idGenerator, now, logger)
	bookingService := application.NewBookingServiceWithLogger(bookingRepo, roomCatalog, expansionService, idGenerator, now, logger)
	roomService := application.NewRoomServiceWithLogger(roomRepo, idGenerator, now, logger)

	bookingHandler := httptransport.NewBookingHandler(bookingService, logger)
	repeatHandler := httptransport.NewRepeatHandler(bookingService, logger)
	roomHandler := httptransport.NewRoomHandler(roomService, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Bookings: bookingHandler,
		Repeats:  repeatHandler,
		Rooms:    roomHandler,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.CORS(cfg.CORSAllowOrigin),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("room booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type bookingRepositoryAdapter struct {
	repo persistence.BookingRepository
}

func newBookingRepositoryAdapter(repo persistence.BookingRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo}
}

func (a *bookingRepositoryAdapter) CreateBooking(ctx context.Context, booking application.Booking) error {
	return a.repo.CreateBooking(ctx, toPersistenceBooking(booking))
}

func (a *bookingRepositoryAdapter) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]application.Booking, error) {
	stored, err := a.repo.ListBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(stored), nil
}

func (a *bookingRepositoryAdapter) DeleteBooking(ctx context.Context, id string) error {
	return a.repo.DeleteBooking(ctx, id)
}

func (a *bookingRepositoryAdapter) QueryOverlap(ctx context.Context, roomID, date, startTime, endTime, excludeID string) ([]application.Booking, error) {
	stored, err := a.repo.QueryOverlap(ctx, roomID, date, startTime, endTime, excludeID)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(stored), nil
}

func (a *bookingRepositoryAdapter) InsertBookings(ctx context.Context, bookings []application.Booking) error {
	batch := make([]persistence.Booking, 0, len(bookings))
	for _, booking := range bookings {
		batch = append(batch, toPersistenceBooking(booking))
	}
	return a.repo.InsertBookings(ctx, batch)
}

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) error {
	return a.repo.CreateRoom(ctx, toPersistenceRoom(room))
}

func (a *roomRepositoryAdapter) UpdateRoom(ctx context.Context, room application.Room) error {
	return a.repo.UpdateRoom(ctx, toPersistenceRoom(room))
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	stored, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(stored))
	for _, room := range stored {
		rooms = append(rooms, toApplicationRoom(room))
	}
	return rooms, nil
}

func (a *roomRepositoryAdapter) DeleteRoom(ctx context.Context, id string) error {
	return a.repo.DeleteRoom(ctx, id)
}

type roomCatalogAdapter struct {
	repo persistence.RoomRepository
}

func newRoomCatalogAdapter(repo persistence.RoomRepository) *roomCatalogAdapter {
	return &roomCatalogAdapter{repo: repo}
}

func (a *roomCatalogAdapter) RoomExists(ctx context.Context, id string) (bool, error) {
	if _, err := a.repo.GetRoom(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func toPersistenceBooking(booking application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:              booking.ID,
		UserID:          booking.UserID,
		RoomID:          booking.RoomID,
		Title:           booking.Title,
		Remarks:         booking.Remarks,
		Date:            booking.Date,
		StartTime:       booking.StartTime,
		EndTime:         booking.EndTime,
		RepeatType:      string(booking.RepeatType),
		IsRecurring:     booking.IsRecurring,
		ParentBookingID: booking.ParentBookingID,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}
}

func toApplicationBooking(booking persistence.Booking) application.Booking {
	return application.Booking{
		ID:              booking.ID,
		UserID:          booking.UserID,
		RoomID:          booking.RoomID,
		Title:           booking.Title,
		Remarks:         booking.Remarks,
		Date:            booking.Date,
		StartTime:       booking.StartTime,
		EndTime:         booking.EndTime,
		RepeatType:      recurrence.RepeatType(booking.RepeatType),
		IsRecurring:     booking.IsRecurring,
		ParentBookingID: booking.ParentBookingID,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}
}

func toApplicationBookings(bookings []persistence.Booking) []application.Booking {
	out := make([]application.Booking, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, toApplicationBooking(booking))
	}
	return out
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:        room.ID,
		Name:      room.Name,
		Location:  room.Location,
		Capacity:  room.Capacity,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

func toApplicationRoom(room persistence.Room) application.Room {
	return application.Room{
		ID:        room.ID,
		Name:      room.Name,
		Location:  room.Location,
		Capacity:  room.Capacity,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}
