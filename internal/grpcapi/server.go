package grpcapi

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Kinsa/parking-attendant/internal/parking/service"
	"github.com/Kinsa/parking-attendant/internal/parking/types"
	"github.com/Kinsa/parking-attendant/internal/wire"
)

type Dependencies struct {
	Logger        *slog.Logger
	LookupService *service.LookupService
	EntryService  *service.EntryService
}

type Server struct {
	grpcServer    *grpc.Server
	logger        *slog.Logger
	lookupService *service.LookupService
	entryService  *service.EntryService
}

var _ VehicleLookupServer = (*Server)(nil)

func NewServer(d Dependencies, opts ...grpc.ServerOption) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		logger:        logger,
		lookupService: d.LookupService,
		entryService:  d.EntryService,
	}

	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(loggingInterceptor(logger))}, opts...)
	s.grpcServer = grpc.NewServer(opts...)
	RegisterVehicleLookupServer(s.grpcServer, s)
	return s
}

// Serve accepts connections on l until Stop is called.
func (s *Server) Serve(l net.Listener) error {
	if err := s.grpcServer.Serve(l); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop drains in-flight calls, or cuts them off once ctx is done.
func (s *Server) Stop(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}
}

func (s *Server) Lookup(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.lookupService.Lookup(ctx, types.LookupRequest{
		VRM:       wire.String(in, "vrm"),
		Window:    wire.String(in, "window"),
		QueryFrom: wire.String(in, "query_from"),
		QueryTo:   wire.String(in, "query_to"),
	})
	if err != nil {
		return nil, s.toStatus(ctx, "lookup", err)
	}
	return s.encode(ctx, resp)
}

func (s *Server) SearchPlate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.lookupService.SearchPlate(ctx, types.PlateSearchRequest{
		Plate:    wire.String(in, "plate"),
		Datetime: wire.String(in, "datetime"),
		Window:   wire.String(in, "window"),
	})
	if err != nil {
		return nil, s.toStatus(ctx, "search", err)
	}
	return s.encode(ctx, resp)
}

func (s *Server) RecordEntry(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.entryService.Record(ctx, types.EntryRequest{
		VRM:       wire.String(in, "vrm"),
		EnteredAt: wire.String(in, "entered_at"),
	})
	if err != nil {
		return nil, s.toStatus(ctx, "record_entry", err)
	}
	return s.encode(ctx, resp)
}

func (s *Server) encode(ctx context.Context, v any) (*structpb.Struct, error) {
	out, err := wire.ToStruct(v)
	if err != nil {
		s.logger.ErrorContext(ctx, "encode response", slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// toStatus maps validation errors to InvalidArgument and everything else to
// Internal. Validation messages are returned to the caller verbatim.
func (s *Server) toStatus(ctx context.Context, op string, err error) error {
	if ve, ok := service.AsValidation(err); ok {
		return status.Error(codes.InvalidArgument, ve.Error())
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.ErrorContext(ctx, op+" error",
		slog.String("request_id", RequestID(ctx)),
		slog.String("error", err.Error()),
	)
	return status.Error(codes.Internal, "internal error")
}
