package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/recurrence"
)

type expansionService interface {
	Expand(ctx context.Context, params application.ExpandParams) (application.ExpandResult, error)
}

// RepeatHandler exposes recurring-booking generation with the wire contract
// of the hosted function it replaces: 200 {"message","count"} on success,
// 400 {"error"} when initialBooking, repeatType or userId is missing, and
// 500 {"error"} when the final bulk insert fails. Per-date conflict-check
// failures are logged and skipped without a distinct status.
type RepeatHandler struct {
	service expansionService
	logger  *slog.Logger
}

// NewRepeatHandler wires the expansion service.
func NewRepeatHandler(service expansionService, logger *slog.Logger) *RepeatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepeatHandler{service: service, logger: logger}
}

type repeatRequest struct {
	InitialBooking *repeatBookingPayload `json:"initialBooking"`
	RepeatType     string                `json:"repeatType"`
	EndDate        *string               `json:"endDate"`
	UserID         string                `json:"userId"`
}

type repeatBookingPayload struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Remarks   string `json:"remarks"`
}

type repeatSuccessResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type repeatErrorResponse struct {
	Error string `json:"error"`
}

// Generate handles POST requests for recurring-booking generation.
func (h *RepeatHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	logger := handlerLogger(ctx, h.logger, "RepeatHandler", "Generate")

	var req repeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(ctx, w, http.StatusBadRequest, repeatErrorResponse{Error: "Invalid request body."})
		return
	}

	if req.InitialBooking == nil || strings.TrimSpace(req.RepeatType) == "" || strings.TrimSpace(req.UserID) == "" {
		logger.WarnContext(ctx, "missing required parameters")
		h.writeJSON(ctx, w, http.StatusBadRequest, repeatErrorResponse{Error: "Missing required parameters."})
		return
	}

	seed := application.Booking{
		ID:        req.InitialBooking.ID,
		RoomID:    req.InitialBooking.RoomID,
		Title:     req.InitialBooking.Title,
		Date:      req.InitialBooking.Date,
		StartTime: req.InitialBooking.StartTime,
		EndTime:   req.InitialBooking.EndTime,
		Remarks:   req.InitialBooking.Remarks,
	}

	result, err := h.service.Expand(ctx, application.ExpandParams{
		Seed:       seed,
		RepeatType: recurrence.RepeatType(strings.TrimSpace(req.RepeatType)),
		EndDate:    req.EndDate,
		UserID:     strings.TrimSpace(req.UserID),
	})
	if err != nil {
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			logger.WarnContext(ctx, "invalid expansion request", "errors", vErr.FieldErrors)
			h.writeJSON(ctx, w, http.StatusBadRequest, repeatErrorResponse{Error: validationSummary(vErr)})
			return
		}
		logger.ErrorContext(ctx, "expansion failed", "error", err)
		h.writeJSON(ctx, w, http.StatusInternalServerError, repeatErrorResponse{Error: err.Error()})
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, repeatSuccessResponse{
		Message: "Repeated bookings generated successfully.",
		Count:   result.Count,
	})
}

func (h *RepeatHandler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		handlerLogger(ctx, h.logger, "RepeatHandler", "writeJSON").ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func validationSummary(vErr *application.ValidationError) string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return "Missing required parameters."
	}
	fields := make([]string, 0, len(vErr.FieldErrors))
	for field := range vErr.FieldErrors {
		fields = append(fields, field)
	}
	if len(fields) == 1 {
		return "Invalid parameter: " + fields[0] + "."
	}
	return "Missing or invalid parameters."
}
