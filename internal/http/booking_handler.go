package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/recurrence"
)

type bookingService interface {
	CreateBooking(ctx context.Context, input application.BookingInput) (application.CreateBookingResult, error)
	GetBooking(ctx context.Context, id string) (application.Booking, error)
	ListBookings(ctx context.Context, params application.ListBookingsParams) ([]application.Booking, []application.ConflictWarning, error)
	DeleteBooking(ctx context.Context, id string) error
}

// BookingHandler exposes booking CRUD endpoints.
type BookingHandler struct {
	service   bookingService
	responder responder
}

// NewBookingHandler wires the booking service.
func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: service, responder: newResponder(logger)}
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.CreateBooking(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := createBookingResponse{Booking: toBookingDTO(result.Booking)}
	if result.Expansion != nil {
		payload.Generated = &expansionDTO{
			Count:            result.Expansion.Count,
			SkippedExcluded:  result.Expansion.SkippedExcluded,
			SkippedConflicts: result.Expansion.SkippedConflicts,
			SkippedErrors:    result.Expansion.SkippedErrors,
		}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, payload)
}

// Get handles GET /bookings/{id}.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	booking, err := h.service.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

// List handles GET /bookings.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookings, warnings, err := h.service.ListBookings(r.Context(), buildBookingListParams(r.URL.Query()))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{
		Bookings: toBookingDTOs(bookings),
		Warnings: toWarningDTOs(warnings),
	})
}

// Delete handles DELETE /bookings/{id}.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	if err := h.service.DeleteBooking(r.Context(), bookingID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type bookingRequest struct {
	UserID     string  `json:"user_id"`
	RoomID     string  `json:"room_id"`
	Title      string  `json:"title"`
	Remarks    string  `json:"remarks"`
	Date       string  `json:"date"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	RepeatType string  `json:"repeat_type"`
	EndDate    *string `json:"end_date"`
}

func (r bookingRequest) toInput() application.BookingInput {
	return application.BookingInput{
		UserID:     strings.TrimSpace(r.UserID),
		RoomID:     strings.TrimSpace(r.RoomID),
		Title:      strings.TrimSpace(r.Title),
		Remarks:    r.Remarks,
		Date:       strings.TrimSpace(r.Date),
		StartTime:  strings.TrimSpace(r.StartTime),
		EndTime:    strings.TrimSpace(r.EndTime),
		RepeatType: recurrence.RepeatType(strings.TrimSpace(r.RepeatType)),
		EndDate:    r.EndDate,
	}
}

type bookingDTO struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	RoomID          string  `json:"room_id"`
	Title           string  `json:"title"`
	Remarks         string  `json:"remarks,omitempty"`
	Date            string  `json:"date"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	RepeatType      string  `json:"repeat_type"`
	IsRecurring     bool    `json:"is_recurring"`
	ParentBookingID *string `json:"parent_booking_id,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toBookingDTO(booking application.Booking) bookingDTO {
	return bookingDTO{
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
		CreatedAt:       booking.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       booking.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toBookingDTOs(bookings []application.Booking) []bookingDTO {
	if len(bookings) == 0 {
		return nil
	}
	out := make([]bookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, toBookingDTO(booking))
	}
	return out
}

type conflictWarningDTO struct {
	BookingID     string `json:"booking_id"`
	WithBookingID string `json:"with_booking_id"`
	RoomID        string `json:"room_id"`
	Date          string `json:"date"`
}

func toWarningDTOs(warnings []application.ConflictWarning) []conflictWarningDTO {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]conflictWarningDTO, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, conflictWarningDTO{
			BookingID:     warning.BookingID,
			WithBookingID: warning.WithBookingID,
			RoomID:        warning.RoomID,
			Date:          warning.Date,
		})
	}
	return out
}

type expansionDTO struct {
	Count            int `json:"count"`
	SkippedExcluded  int `json:"skipped_excluded"`
	SkippedConflicts int `json:"skipped_conflicts"`
	SkippedErrors    int `json:"skipped_errors"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type createBookingResponse struct {
	Booking   bookingDTO    `json:"booking"`
	Generated *expansionDTO `json:"generated,omitempty"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO         `json:"bookings"`
	Warnings []conflictWarningDTO `json:"warnings,omitempty"`
}

func buildBookingListParams(values url.Values) application.ListBookingsParams {
	return application.ListBookingsParams{
		RoomID:   strings.TrimSpace(values.Get("room_id")),
		UserID:   strings.TrimSpace(values.Get("user_id")),
		DateFrom: strings.TrimSpace(values.Get("from")),
		DateTo:   strings.TrimSpace(values.Get("to")),
	}
}
