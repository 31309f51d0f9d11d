package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/officeseats/api/middleware"
	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/service/ledger"
	"github.com/Domenick1991/officeseats/internal/service/seats"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	ledger ledger.LedgerUseCase
	seats  seats.SeatUseCase
	now    func() time.Time
}

type createBookingRequest struct {
	UserID string `json:"user_id"`
	SeatID string `json:"seat_id" binding:"required"`
	Date   string `json:"date" binding:"required"`
}

func NewBookingHandler(ledger ledger.LedgerUseCase, seats seats.SeatUseCase) *BookingHandler {
	return &BookingHandler{ledger: ledger, seats: seats, now: time.Now}
}

// Register expects the group to be behind middleware.RequireUser.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.DELETE("/:seatId/:date", h.remove)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := domain.ParseDay(req.Date)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	caller := middleware.UserID(c)
	if req.UserID == "" {
		req.UserID = caller
	}
	if req.UserID != caller && middleware.Role(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, errorResponse{Error: "cannot book on behalf of another user", Code: "forbidden"})
		return
	}

	assignment, err := h.ledger.Book(c.Request.Context(), domain.BookingIntent{
		UserID: req.UserID,
		SeatID: req.SeatID,
		Date:   date,
	}, h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAssignment(*assignment))
}

// remove releases the caller's own designated seat, or cancels the caller's booking.
func (h *BookingHandler) remove(c *gin.Context) {
	ctx := c.Request.Context()
	seatID := c.Param("seatId")
	date, err := domain.ParseDay(c.Param("date"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	caller := middleware.UserID(c)

	seat, err := h.seats.GetSeat(ctx, seatID)
	if err != nil {
		writeError(c, err)
		return
	}

	release := false
	if seat.OwnedBy(caller) {
		held, err := h.ledger.BookingsOf(ctx, caller, date, date)
		if err != nil {
			writeError(c, err)
			return
		}
		release = !holds(held, seatID)
	}

	var assignment *domain.DayAssignment
	if release {
		assignment, err = h.ledger.Release(ctx, seatID, date, caller, h.now())
	} else {
		assignment, err = h.ledger.CancelBooking(ctx, seatID, date, caller, h.now())
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAssignment(*assignment))
}

func holds(assignments []domain.DayAssignment, seatID string) bool {
	for _, a := range assignments {
		if a.SeatID == seatID {
			return true
		}
	}
	return false
}
