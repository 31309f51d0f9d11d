package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/officeseats/api/middleware"
	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	d, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newContext(method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func asUser(c *gin.Context, userID string, role domain.Role) {
	c.Request.Header.Set(middleware.HeaderUserID, userID)
	c.Request.Header.Set(middleware.HeaderUserRole, string(role))
	middleware.Identity()(c)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSeatHandler_list(t *testing.T) {
	seatsSvc := &MockSeatUseCase{}
	handler := NewSeatHandler(seatsSvc, &MockLedgerUseCase{})

	c, w := newContext("GET", "/seats", nil)
	owner := "alex"
	d1 := domain.NewSeat(domain.SeatKindDesignated, 1)
	d1.OwnerID = &owner
	seatsSvc.On("ListSeats", c.Request.Context()).Return([]domain.Seat{d1, domain.NewSeat(domain.SeatKindFloater, 1)}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []seatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "D-01", resp[0].Label)
	require.NotNil(t, resp[0].OwnerID)
	assert.Equal(t, "alex", *resp[0].OwnerID)
	assert.Equal(t, "floater", resp[1].Kind)
	seatsSvc.AssertExpectations(t)
}

func TestSeatHandler_dayView(t *testing.T) {
	ledgerSvc := &MockLedgerUseCase{}
	handler := NewSeatHandler(&MockSeatUseCase{}, ledgerSvc)
	handler.now = func() time.Time { return fixedNow }

	c, w := newContext("GET", "/seats/2025-03-10", nil)
	c.Params = gin.Params{{Key: "date", Value: "2025-03-10"}}
	asUser(c, "alex", domain.RoleEmployee)

	view := &domain.DayView{
		Date:   day("2025-03-10"),
		Parity: domain.Week2,
		Seats: []domain.SeatView{
			{Seat: domain.NewSeat(domain.SeatKindFloater, 1), Status: domain.SeatStatusFloaterDefault, Bookable: false, Reason: domain.Ineligible(domain.ErrTooEarly)},
			{Seat: domain.NewSeat(domain.SeatKindFloater, 2), Status: domain.SeatStatusBooked, HolderID: "sam"},
		},
	}
	ledgerSvc.On("GetDayView", c.Request.Context(), day("2025-03-10"), "alex", fixedNow).Return(view, nil)

	handler.dayView(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dayViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2025-03-10", resp.Date)
	assert.Equal(t, "week2", resp.Parity)
	require.Len(t, resp.Seats, 2)
	assert.Equal(t, "floater-default", resp.Seats[0].Status)
	assert.NotEmpty(t, resp.Seats[0].Reason)
	assert.Equal(t, "sam", resp.Seats[1].HolderID)
	ledgerSvc.AssertExpectations(t)
}

func TestSeatHandler_dayView_BadDate(t *testing.T) {
	handler := NewSeatHandler(&MockSeatUseCase{}, &MockLedgerUseCase{})

	c, w := newContext("GET", "/seats/10-03-2025", nil)
	c.Params = gin.Params{{Key: "date", Value: "10-03-2025"}}

	handler.dayView(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_create(t *testing.T) {
	ledgerSvc := &MockLedgerUseCase{}
	handler := NewBookingHandler(ledgerSvc, &MockSeatUseCase{})
	handler.now = func() time.Time { return fixedNow }

	c, w := newContext("POST", "/bookings", createBookingRequest{SeatID: "f-1", Date: "2025-03-06"})
	asUser(c, "alex", domain.RoleEmployee)

	intent := domain.BookingIntent{UserID: "alex", SeatID: "f-1", Date: day("2025-03-06")}
	ledgerSvc.On("Book", c.Request.Context(), intent, fixedNow).Return(&domain.DayAssignment{
		SeatID: "f-1", Date: day("2025-03-06"), Status: domain.SeatStatusBooked, HolderID: "alex",
	}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp assignmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "booked", resp.Status)
	assert.Equal(t, "alex", resp.HolderID)
	ledgerSvc.AssertExpectations(t)
}

func TestBookingHandler_create_OnBehalf(t *testing.T) {
	ledgerSvc := &MockLedgerUseCase{}
	handler := NewBookingHandler(ledgerSvc, &MockSeatUseCase{})
	handler.now = func() time.Time { return fixedNow }

	c, w := newContext("POST", "/bookings", createBookingRequest{UserID: "sam", SeatID: "f-1", Date: "2025-03-06"})
	asUser(c, "alex", domain.RoleEmployee)

	handler.create(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	ledgerSvc.AssertNumberOfCalls(t, "Book", 0)

	c, w = newContext("POST", "/bookings", createBookingRequest{UserID: "sam", SeatID: "f-1", Date: "2025-03-06"})
	asUser(c, "root", domain.RoleAdmin)
	intent := domain.BookingIntent{UserID: "sam", SeatID: "f-1", Date: day("2025-03-06")}
	ledgerSvc.On("Book", c.Request.Context(), intent, fixedNow).Return(&domain.DayAssignment{
		SeatID: "f-1", Date: day("2025-03-06"), Status: domain.SeatStatusBooked, HolderID: "sam",
	}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	ledgerSvc.AssertExpectations(t)
}

func TestBookingHandler_create_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"too early", domain.Ineligible(domain.ErrTooEarly), http.StatusConflict, "too_early"},
		{"taken", domain.ErrSeatTaken, http.StatusConflict, "seat_taken"},
		{"reserved", domain.Ineligible(domain.ErrSeatReserved), http.StatusConflict, "seat_reserved"},
		{"unknown seat", domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"busy", fmt.Errorf("%w: seat:f-1:2025-03-06", domain.ErrLockTimeout), http.StatusServiceUnavailable, "lock_timeout"},
		{"storage", errors.New("connection reset"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledgerSvc := &MockLedgerUseCase{}
			handler := NewBookingHandler(ledgerSvc, &MockSeatUseCase{})
			handler.now = func() time.Time { return fixedNow }

			c, w := newContext("POST", "/bookings", createBookingRequest{SeatID: "f-1", Date: "2025-03-06"})
			asUser(c, "alex", domain.RoleEmployee)
			intent := domain.BookingIntent{UserID: "alex", SeatID: "f-1", Date: day("2025-03-06")}
			ledgerSvc.On("Book", c.Request.Context(), intent, fixedNow).Return(nil, tt.err)

			handler.create(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestBookingHandler_create_MissingFields(t *testing.T) {
	handler := NewBookingHandler(&MockLedgerUseCase{}, &MockSeatUseCase{})

	c, w := newContext("POST", "/bookings", map[string]string{"seat_id": "f-1"})
	asUser(c, "alex", domain.RoleEmployee)

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_remove(t *testing.T) {
	owner := "alex"
	own := domain.NewSeat(domain.SeatKindDesignated, 3)
	own.OwnerID = &owner
	date := day("2025-03-10")

	t.Run("owner releases own seat", func(t *testing.T) {
		ledgerSvc, seatsSvc := &MockLedgerUseCase{}, &MockSeatUseCase{}
		handler := NewBookingHandler(ledgerSvc, seatsSvc)
		handler.now = func() time.Time { return fixedNow }

		c, w := newContext("DELETE", "/bookings/d-3/2025-03-10", nil)
		c.Params = gin.Params{{Key: "seatId", Value: "d-3"}, {Key: "date", Value: "2025-03-10"}}
		asUser(c, "alex", domain.RoleEmployee)

		seatsSvc.On("GetSeat", c.Request.Context(), "d-3").Return(&own, nil)
		ledgerSvc.On("BookingsOf", c.Request.Context(), "alex", date, date).Return([]domain.DayAssignment{}, nil)
		ledgerSvc.On("Release", c.Request.Context(), "d-3", date, "alex", fixedNow).Return(&domain.DayAssignment{
			SeatID: "d-3", Date: date, Status: domain.SeatStatusReleased,
		}, nil)

		handler.remove(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp assignmentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "released", resp.Status)
		ledgerSvc.AssertExpectations(t)
		ledgerSvc.AssertNumberOfCalls(t, "CancelBooking", 0)
	})

	t.Run("owner holding own seat cancels", func(t *testing.T) {
		ledgerSvc, seatsSvc := &MockLedgerUseCase{}, &MockSeatUseCase{}
		handler := NewBookingHandler(ledgerSvc, seatsSvc)
		handler.now = func() time.Time { return fixedNow }

		c, w := newContext("DELETE", "/bookings/d-3/2025-03-10", nil)
		c.Params = gin.Params{{Key: "seatId", Value: "d-3"}, {Key: "date", Value: "2025-03-10"}}
		asUser(c, "alex", domain.RoleEmployee)

		seatsSvc.On("GetSeat", c.Request.Context(), "d-3").Return(&own, nil)
		ledgerSvc.On("BookingsOf", c.Request.Context(), "alex", date, date).Return([]domain.DayAssignment{
			{SeatID: "d-3", Date: date, Status: domain.SeatStatusBooked, HolderID: "alex"},
		}, nil)
		ledgerSvc.On("CancelBooking", c.Request.Context(), "d-3", date, "alex", fixedNow).Return(&domain.DayAssignment{
			SeatID: "d-3", Date: date, Status: domain.SeatStatusDesignatedDefault,
		}, nil)

		handler.remove(c)

		assert.Equal(t, http.StatusOK, w.Code)
		ledgerSvc.AssertExpectations(t)
		ledgerSvc.AssertNumberOfCalls(t, "Release", 0)
	})

	t.Run("booker cancels", func(t *testing.T) {
		ledgerSvc, seatsSvc := &MockLedgerUseCase{}, &MockSeatUseCase{}
		handler := NewBookingHandler(ledgerSvc, seatsSvc)
		handler.now = func() time.Time { return fixedNow }

		c, w := newContext("DELETE", "/bookings/d-3/2025-03-10", nil)
		c.Params = gin.Params{{Key: "seatId", Value: "d-3"}, {Key: "date", Value: "2025-03-10"}}
		asUser(c, "sam", domain.RoleEmployee)

		seatsSvc.On("GetSeat", c.Request.Context(), "d-3").Return(&own, nil)
		ledgerSvc.On("CancelBooking", c.Request.Context(), "d-3", date, "sam", fixedNow).Return(nil, domain.ErrNotHolder)

		handler.remove(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "not_holder", decodeError(t, w).Code)
		ledgerSvc.AssertNumberOfCalls(t, "BookingsOf", 0)
	})

	t.Run("unknown seat", func(t *testing.T) {
		seatsSvc := &MockSeatUseCase{}
		handler := NewBookingHandler(&MockLedgerUseCase{}, seatsSvc)

		c, w := newContext("DELETE", "/bookings/x-1/2025-03-10", nil)
		c.Params = gin.Params{{Key: "seatId", Value: "x-1"}, {Key: "date", Value: "2025-03-10"}}
		asUser(c, "sam", domain.RoleEmployee)
		seatsSvc.On("GetSeat", c.Request.Context(), "x-1").Return(nil, domain.ErrNotFound)

		handler.remove(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
