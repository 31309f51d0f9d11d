package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/service/schedule"
	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	schedule schedule.ScheduleUseCase
	loc      *time.Location
	now      func() time.Time
}

func NewScheduleHandler(schedule schedule.ScheduleUseCase, loc *time.Location) *ScheduleHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleHandler{schedule: schedule, loc: loc, now: time.Now}
}

func (h *ScheduleHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.get)
}

// get returns both batches' week for ?date= (default today) and which parity applies.
func (h *ScheduleHandler) get(c *gin.Context) {
	day := domain.Day(h.now(), h.loc)
	if raw := c.Query("date"); raw != "" {
		parsed, err := domain.ParseDay(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		day = parsed
	}

	batches := make([]weekResponse, 0, 2)
	for _, b := range []domain.Batch{domain.Batch1, domain.Batch2} {
		batches = append(batches, toWeek(h.schedule.Week(b, day)))
	}

	c.JSON(http.StatusOK, gin.H{
		"date":        domain.FormatDay(day),
		"week_parity": h.schedule.Parity(day),
		"batches":     batches,
	})
}
