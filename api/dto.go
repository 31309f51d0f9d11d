package api

import (
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/service/schedule"
	"github.com/Domenick1991/officeseats/internal/service/users"
)

type seatResponse struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Kind    string  `json:"kind"`
	OwnerID *string `json:"owner_id"`
}

func toSeat(s domain.Seat) seatResponse {
	return seatResponse{ID: s.ID, Label: s.Label, Kind: string(s.Kind), OwnerID: s.OwnerID}
}

type daySeatResponse struct {
	seatResponse
	Status   string `json:"status"`
	HolderID string `json:"holder_id,omitempty"`
	Bookable bool   `json:"bookable"`
	Reason   string `json:"reason,omitempty"`
}

type dayViewResponse struct {
	Date   string            `json:"date"`
	Parity string            `json:"week_parity"`
	Seats  []daySeatResponse `json:"seats"`
}

func toDayView(v *domain.DayView) dayViewResponse {
	out := dayViewResponse{
		Date:   domain.FormatDay(v.Date),
		Parity: string(v.Parity),
		Seats:  make([]daySeatResponse, 0, len(v.Seats)),
	}
	for _, sv := range v.Seats {
		ds := daySeatResponse{
			seatResponse: toSeat(sv.Seat),
			Status:       string(sv.Status),
			HolderID:     sv.HolderID,
			Bookable:     sv.Bookable,
		}
		if sv.Reason != nil {
			ds.Reason = sv.Reason.Error()
		}
		out.Seats = append(out.Seats, ds)
	}
	return out
}

type assignmentResponse struct {
	SeatID   string `json:"seat_id"`
	Date     string `json:"date"`
	Status   string `json:"status"`
	HolderID string `json:"holder_id,omitempty"`
}

func toAssignment(a domain.DayAssignment) assignmentResponse {
	return assignmentResponse{
		SeatID:   a.SeatID,
		Date:     domain.FormatDay(a.Date),
		Status:   string(a.Status),
		HolderID: a.HolderID,
	}
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Squad     string `json:"squad"`
	Batch     string `json:"batch"`
	Role      string `json:"role"`
	SeatID    string `json:"seat_id,omitempty"`
	SeatLabel string `json:"seat_label,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toUser(p users.Profile) userResponse {
	return userResponse{
		ID:        p.User.ID,
		Name:      p.User.Name,
		Email:     p.User.Email,
		Squad:     p.User.Squad,
		Batch:     string(p.User.Batch),
		Role:      string(p.User.Role),
		SeatID:    p.SeatID,
		SeatLabel: p.SeatLabel,
		CreatedAt: p.User.CreatedAt.Format(time.RFC3339),
	}
}

type weekResponse struct {
	Batch         string              `json:"batch"`
	CurrentParity string              `json:"current_parity"`
	WeekStart     string              `json:"week_start"`
	Days          map[string][]string `json:"days"`
}

func toWeek(w schedule.Week) weekResponse {
	days := make(map[string][]string, len(w.Days))
	for parity, names := range w.DayNames() {
		days[string(parity)] = names
	}
	return weekResponse{
		Batch:         string(w.Batch),
		CurrentParity: string(w.CurrentParity),
		WeekStart:     w.WeekStart,
		Days:          days,
	}
}

type dashboardResponse struct {
	User        userResponse         `json:"user"`
	Today       string               `json:"today"`
	Parity      string               `json:"week_parity"`
	OfficeToday bool                 `json:"office_today"`
	Week        weekResponse         `json:"week"`
	Upcoming    []assignmentResponse `json:"upcoming"`
}

type occupancyResponse struct {
	Date     string  `json:"date"`
	Weekday  string  `json:"weekday"`
	Occupied int     `json:"occupied"`
	Capacity int     `json:"capacity"`
	Percent  float64 `json:"percent"`
}

func toOccupancy(d domain.DailyOccupancy) occupancyResponse {
	out := occupancyResponse{
		Date:     domain.FormatDay(d.Date),
		Weekday:  d.Weekday.String(),
		Occupied: d.Occupied,
		Capacity: d.Capacity,
	}
	if d.Capacity > 0 {
		out.Percent = float64(d.Occupied*100) / float64(d.Capacity)
	}
	return out
}
