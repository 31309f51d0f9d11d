package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/officeseats/api/middleware"
	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/service/users"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users users.UserUseCase
	now   func() time.Time
}

func NewUserHandler(users users.UserUseCase) *UserHandler {
	return &UserHandler{users: users, now: time.Now}
}

func (h *UserHandler) RegisterPublic(router *gin.RouterGroup) {
	router.POST("/signup", h.signUp)
}

func (h *UserHandler) RegisterMe(router *gin.RouterGroup) {
	router.GET("/dashboard", h.dashboard)
}

func (h *UserHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.search)
	router.PUT("/:id", h.updateAssignment)
}

func (h *UserHandler) signUp(c *gin.Context) {
	var req users.SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.users.SignUp(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUser(*p))
}

func (h *UserHandler) dashboard(c *gin.Context) {
	d, err := h.users.Dashboard(c.Request.Context(), middleware.UserID(c), h.now())
	if err != nil {
		writeError(c, err)
		return
	}

	upcoming := make([]assignmentResponse, 0, len(d.Upcoming))
	for _, a := range d.Upcoming {
		upcoming = append(upcoming, toAssignment(a))
	}

	c.JSON(http.StatusOK, dashboardResponse{
		User:        toUser(d.Profile),
		Today:       domain.FormatDay(d.Today),
		Parity:      string(d.Parity),
		OfficeToday: d.OfficeToday,
		Week:        toWeek(d.Week),
		Upcoming:    upcoming,
	})
}

func (h *UserHandler) search(c *gin.Context) {
	found, err := h.users.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]userResponse, 0, len(found))
	for _, p := range found {
		out = append(out, toUser(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *UserHandler) updateAssignment(c *gin.Context) {
	var req users.UpdateAssignmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.users.UpdateAssignment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUser(*p))
}
