package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/service/ledger"
	"github.com/Domenick1991/officeseats/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

var conflicts = []struct {
	err  error
	code string
}{
	{domain.ErrPastDate, "past_date"},
	{domain.ErrSeatTaken, "seat_taken"},
	{domain.ErrSeatReserved, "seat_reserved"},
	{domain.ErrTooEarly, "too_early"},
	{domain.ErrNotHolder, "not_holder"},
	{domain.ErrSeatNotDesignated, "seat_not_designated"},
	{domain.ErrEmailTaken, "email_taken"},
}

// writeError maps service errors to a status code and JSON body.
func writeError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "validation failed", Code: "invalid", Fields: users.ValidationMessages(verrs)})
		return
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"})
		return
	case errors.Is(err, domain.ErrNotOwner):
		c.JSON(http.StatusForbidden, errorResponse{Error: err.Error(), Code: "not_owner"})
		return
	case errors.Is(err, domain.ErrLockTimeout):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "seat is busy, try again", Code: "lock_timeout"})
		return
	case errors.Is(err, ledger.ErrUserRequired), errors.Is(err, domain.ErrInvalidBatch):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid"})
		return
	}

	for _, cf := range conflicts {
		if errors.Is(err, cf.err) {
			c.JSON(http.StatusConflict, errorResponse{Error: cf.err.Error(), Code: cf.code})
			return
		}
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Code: "invalid"})
}
