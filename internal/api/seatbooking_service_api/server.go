package seatbooking_service_api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/service/ledger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "seatbooking.v1.SeatBookingService"

	// MetadataUserID carries the caller id, like the X-User-ID header on HTTP.
	MetadataUserID = "x-user-id"
	// MetadataUserRole carries the caller role; anything but "admin" is an employee.
	MetadataUserRole = "x-user-role"
)

// SeatBookingServer is the gRPC surface of the booking ledger. Messages are
// google.protobuf.Struct so clients need no generated stubs.
type SeatBookingServer interface {
	GetDayView(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Book(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Release(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CancelBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type Server struct {
	ledger ledger.LedgerUseCase
	now    func() time.Time
}

func NewServer(ledger ledger.LedgerUseCase) *Server {
	return &Server{ledger: ledger, now: time.Now}
}

func Register(s grpc.ServiceRegistrar, srv SeatBookingServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SeatBookingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetDayView", Handler: unary("GetDayView", SeatBookingServer.GetDayView)},
		{MethodName: "Book", Handler: unary("Book", SeatBookingServer.Book)},
		{MethodName: "Release", Handler: unary("Release", SeatBookingServer.Release)},
		{MethodName: "CancelBooking", Handler: unary("CancelBooking", SeatBookingServer.CancelBooking)},
	},
	Streams: []grpc.StreamDesc{},
}

type method func(SeatBookingServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call method) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SeatBookingServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SeatBookingServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func (s *Server) GetDayView(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	date, err := dateField(req)
	if err != nil {
		return nil, err
	}

	view, err := s.ledger.GetDayView(ctx, date, callerID(ctx), s.now())
	if err != nil {
		return nil, toStatus(err)
	}

	seats := make([]any, 0, len(view.Seats))
	for _, sv := range view.Seats {
		seat := map[string]any{
			"id":       sv.Seat.ID,
			"label":    sv.Seat.Label,
			"kind":     string(sv.Seat.Kind),
			"status":   string(sv.Status),
			"bookable": sv.Bookable,
		}
		if sv.HolderID != "" {
			seat["holder_id"] = sv.HolderID
		}
		if sv.Reason != nil {
			seat["reason"] = sv.Reason.Error()
		}
		seats = append(seats, seat)
	}
	return structpb.NewStruct(map[string]any{
		"date":        domain.FormatDay(view.Date),
		"week_parity": string(view.Parity),
		"seats":       seats,
	})
}

func (s *Server) Book(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	date, err := dateField(req)
	if err != nil {
		return nil, err
	}
	caller := callerID(ctx)
	userID := stringField(req, "user_id")
	if userID == "" {
		userID = caller
	}
	if userID != caller && callerRole(ctx) != domain.RoleAdmin {
		return nil, status.Error(codes.PermissionDenied, "cannot book on behalf of another user")
	}

	a, err := s.ledger.Book(ctx, domain.BookingIntent{
		UserID: userID,
		SeatID: stringField(req, "seat_id"),
		Date:   date,
	}, s.now())
	if err != nil {
		return nil, toStatus(err)
	}
	return toPBAssignment(a)
}

func (s *Server) Release(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	date, err := dateField(req)
	if err != nil {
		return nil, err
	}

	a, err := s.ledger.Release(ctx, stringField(req, "seat_id"), date, callerID(ctx), s.now())
	if err != nil {
		return nil, toStatus(err)
	}
	return toPBAssignment(a)
}

func (s *Server) CancelBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	date, err := dateField(req)
	if err != nil {
		return nil, err
	}

	a, err := s.ledger.CancelBooking(ctx, stringField(req, "seat_id"), date, callerID(ctx), s.now())
	if err != nil {
		return nil, toStatus(err)
	}
	return toPBAssignment(a)
}

func toPBAssignment(a *domain.DayAssignment) (*structpb.Struct, error) {
	fields := map[string]any{
		"seat_id": a.SeatID,
		"date":    domain.FormatDay(a.Date),
		"status":  string(a.Status),
	}
	if a.HolderID != "" {
		fields["holder_id"] = a.HolderID
	}
	return structpb.NewStruct(fields)
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrNotOwner):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, domain.ErrLockTimeout):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, ledger.ErrUserRequired), errors.Is(err, domain.ErrInvalidBatch):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrSeatTaken), errors.Is(err, domain.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrPastDate),
		errors.Is(err, domain.ErrSeatReserved),
		errors.Is(err, domain.ErrTooEarly),
		errors.Is(err, domain.ErrIneligible),
		errors.Is(err, domain.ErrNotHolder),
		errors.Is(err, domain.ErrSeatNotDesignated):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func callerID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(MetadataUserID); len(v) > 0 {
		return v[0]
	}
	return ""
}

func callerRole(ctx context.Context) domain.Role {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return domain.RoleEmployee
	}
	if v := md.Get(MetadataUserRole); len(v) > 0 && domain.Role(strings.ToLower(strings.TrimSpace(v[0]))) == domain.RoleAdmin {
		return domain.RoleAdmin
	}
	return domain.RoleEmployee
}

func stringField(req *structpb.Struct, name string) string {
	if v, ok := req.GetFields()[name]; ok {
		return v.GetStringValue()
	}
	return ""
}

func dateField(req *structpb.Struct) (time.Time, error) {
	date, err := domain.ParseDay(stringField(req, "date"))
	if err != nil {
		return time.Time{}, status.Error(codes.InvalidArgument, err.Error())
	}
	return date, nil
}

var _ SeatBookingServer = (*Server)(nil)
