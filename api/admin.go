package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/service/ledger"
	"github.com/Domenick1991/officeseats/internal/service/report"
	"github.com/Domenick1991/officeseats/internal/service/seats"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	seats  seats.SeatUseCase
	ledger ledger.LedgerUseCase
	export report.ExportUseCase
	loc    *time.Location
	now    func() time.Time
}

type rebindRequest struct {
	OwnerID *string `json:"owner_id"`
}

func NewAdminHandler(seats seats.SeatUseCase, ledger ledger.LedgerUseCase, export report.ExportUseCase, loc *time.Location) *AdminHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AdminHandler{seats: seats, ledger: ledger, export: export, loc: loc, now: time.Now}
}

// Register expects the group to be behind middleware.RequireAdmin.
func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.PUT("/seats/:id/owner", h.rebind)
	router.GET("/occupancy", h.occupancy)
	router.GET("/occupancy/export", h.exportOccupancy)
}

func (h *AdminHandler) rebind(c *gin.Context) {
	var req rebindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	seat, err := h.seats.RebindSeat(c.Request.Context(), c.Param("id"), req.OwnerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSeat(*seat))
}

func (h *AdminHandler) occupancy(c *gin.Context) {
	week, ok := h.week(c)
	if !ok {
		return
	}

	days, err := h.ledger.WeeklyOccupancy(c.Request.Context(), week)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]occupancyResponse, 0, len(days))
	for _, d := range days {
		out = append(out, toOccupancy(d))
	}
	c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) exportOccupancy(c *gin.Context) {
	week, ok := h.week(c)
	if !ok {
		return
	}

	buf, filename, err := h.export.ExportOccupancy(c.Request.Context(), week)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// week reads ?week= (any day of the wanted week), defaulting to the current week.
func (h *AdminHandler) week(c *gin.Context) (time.Time, bool) {
	raw := c.Query("week")
	if raw == "" {
		return domain.Day(h.now(), h.loc), true
	}
	day, err := domain.ParseDay(raw)
	if err != nil {
		badRequest(c, err.Error())
		return time.Time{}, false
	}
	return day, true
}
