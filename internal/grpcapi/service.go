// Package grpcapi serves the vehicle lookup over gRPC. Messages are
// google.protobuf.Struct values carrying the same fields as the JSON API, so
// the service is described by hand instead of generated from a .proto file.
package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "parking.v1.VehicleLookup"

const (
	LookupMethod      = "/" + ServiceName + "/Lookup"
	SearchPlateMethod = "/" + ServiceName + "/SearchPlate"
	RecordEntryMethod = "/" + ServiceName + "/RecordEntry"
)

// VehicleLookupServer is the server API for the VehicleLookup service.
type VehicleLookupServer interface {
	Lookup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchPlate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordEntry(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var VehicleLookupServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VehicleLookupServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Lookup", Handler: unaryHandler(LookupMethod, VehicleLookupServer.Lookup)},
		{MethodName: "SearchPlate", Handler: unaryHandler(SearchPlateMethod, VehicleLookupServer.SearchPlate)},
		{MethodName: "RecordEntry", Handler: unaryHandler(RecordEntryMethod, VehicleLookupServer.RecordEntry)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "parking/v1/vehicle_lookup.proto",
}

func RegisterVehicleLookupServer(s grpc.ServiceRegistrar, srv VehicleLookupServer) {
	s.RegisterService(&VehicleLookupServiceDesc, srv)
}

type unaryMethod func(VehicleLookupServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(VehicleLookupServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(VehicleLookupServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
