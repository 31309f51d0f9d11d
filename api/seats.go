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

type SeatHandler struct {
	seats  seats.SeatUseCase
	ledger ledger.LedgerUseCase
	now    func() time.Time
}

func NewSeatHandler(seats seats.SeatUseCase, ledger ledger.LedgerUseCase) *SeatHandler {
	return &SeatHandler{seats: seats, ledger: ledger, now: time.Now}
}

func (h *SeatHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:date", h.dayView)
}

func (h *SeatHandler) list(c *gin.Context) {
	list, err := h.seats.ListSeats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]seatResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSeat(s))
	}
	c.JSON(http.StatusOK, out)
}

func (h *SeatHandler) dayView(c *gin.Context) {
	date, err := domain.ParseDay(c.Param("date"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	view, err := h.ledger.GetDayView(c.Request.Context(), date, middleware.UserID(c), h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDayView(view))
}
