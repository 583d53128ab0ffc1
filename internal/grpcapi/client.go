package grpcapi

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Kinsa/parking-attendant/internal/parking/types"
	"github.com/Kinsa/parking-attendant/internal/wire"
)

// Dial opens a plaintext connection to a VehicleLookup server.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return conn, nil
}

// Client is a typed VehicleLookup client. Errors are gRPC status errors.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Lookup(ctx context.Context, req types.LookupRequest, opts ...grpc.CallOption) (types.LookupResponse, error) {
	var resp types.LookupResponse
	err := c.invoke(ctx, LookupMethod, req, &resp, opts...)
	return resp, err
}

// SearchPlate sets Found from the results, since the placeholder returned
// for no match carries no entry time.
func (c *Client) SearchPlate(ctx context.Context, req types.PlateSearchRequest, opts ...grpc.CallOption) (types.PlateSearchResponse, error) {
	var resp types.PlateSearchResponse
	if err := c.invoke(ctx, SearchPlateMethod, req, &resp, opts...); err != nil {
		return resp, err
	}
	resp.Found = len(resp.Results) > 0 && resp.Results[0].TimeIn != nil
	return resp, nil
}

func (c *Client) RecordEntry(ctx context.Context, req types.EntryRequest, opts ...grpc.CallOption) (types.EntryResponse, error) {
	var resp types.EntryResponse
	err := c.invoke(ctx, RecordEntryMethod, req, &resp, opts...)
	return resp, err
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	in, err := wire.ToStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return err
	}
	return wire.FromStruct(out, resp)
}
