package grpcapi_test

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Kinsa/parking-attendant/internal/grpcapi"
	"github.com/Kinsa/parking-attendant/internal/parking/service"
	"github.com/Kinsa/parking-attendant/internal/parking/store/memory"
	"github.com/Kinsa/parking-attendant/internal/parking/types"
)

var testNow = time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

func newTestConn(t *testing.T, ms *memory.EntryStore) *grpc.ClientConn {
	t.Helper()

	opts := service.Options{
		Logger:   slog.New(slog.DiscardHandler),
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	}
	srv := grpcapi.NewServer(grpcapi.Dependencies{
		Logger:        opts.Logger,
		LookupService: service.NewLookupService(ms, opts),
		EntryService:  service.NewEntryService(ms, opts),
	})

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() { srv.Stop(context.Background()) })

	conn, err := grpcapi.Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestClient_Lookup(t *testing.T) {
	ms := memory.NewEntryStore()
	ms.Append("AB12CDF", "2026-02-15 09:00:00")
	ms.Append("AB12CDE", "2026-02-15 11:00:00")
	client := grpcapi.NewClient(newTestConn(t, ms))

	resp, err := client.Lookup(context.Background(), types.LookupRequest{VRM: "AB12CDX"})
	require.NoError(t, err)

	assert.Equal(t, "2 results found.", resp.Message)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "AB12CDE", resp.Results[0].VRM)
	assert.Equal(t, "partial", resp.Results[0].Session)
	assert.Equal(t, "full", resp.Results[1].Session)
	require.NotNil(t, resp.Results[0].Distance)
	assert.Equal(t, 1, *resp.Results[0].Distance)
}

func TestClient_Lookup_Placeholder(t *testing.T) {
	client := grpcapi.NewClient(newTestConn(t, memory.NewEntryStore()))

	resp, err := client.Lookup(context.Background(), types.LookupRequest{VRM: "ZZ99ZZZ"})
	require.NoError(t, err)

	assert.Equal(t, "No matches for VRM found.", resp.Message)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "none", resp.Results[0].Session)
	assert.Nil(t, resp.Results[0].SessionStart)
}

func TestClient_Lookup_InvalidArgument(t *testing.T) {
	client := grpcapi.NewClient(newTestConn(t, memory.NewEntryStore()))

	_, err := client.Lookup(context.Background(), types.LookupRequest{VRM: "AA", Window: "0"})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Lookup(context.Background(), types.LookupRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "A VRM is required.", status.Convert(err).Message())
}

func TestClient_SearchPlate(t *testing.T) {
	ms := memory.NewEntryStore()
	ms.Append("MA06 GLO", "2026-02-15 11:30:00")
	client := grpcapi.NewClient(newTestConn(t, ms))

	resp, err := client.SearchPlate(context.Background(), types.PlateSearchRequest{Plate: "ma06"})
	require.NoError(t, err)
	assert.True(t, resp.Found)
	require.Len(t, resp.Results, 1)
	assert.False(t, resp.Results[0].Expired)

	resp, err = client.SearchPlate(context.Background(), types.PlateSearchRequest{Plate: "XX"})
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.True(t, resp.Results[0].Expired)
}

func TestClient_RecordEntry(t *testing.T) {
	ms := memory.NewEntryStore()
	client := grpcapi.NewClient(newTestConn(t, ms))

	resp, err := client.RecordEntry(context.Background(), types.EntryRequest{VRM: "ab12 cde"})
	require.NoError(t, err)
	assert.Equal(t, types.EntryResponse{ID: 1, VRM: "AB12 CDE", EnteredAt: "2026-02-15 12:00:00"}, resp)
	assert.Equal(t, 1, ms.Len())

	_, err = client.RecordEntry(context.Background(), types.EntryRequest{VRM: "AB12", EnteredAt: "15/02/2026"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_NumericWindowField(t *testing.T) {
	ms := memory.NewEntryStore()
	ms.Append("AA 1234AB", "2026-02-15 10:30:00")
	conn := newTestConn(t, ms)

	in, err := structpb.NewStruct(map[string]any{"vrm": "AA 1234AB", "window": 60})
	require.NoError(t, err)
	out := new(structpb.Struct)
	require.NoError(t, conn.Invoke(context.Background(), grpcapi.LookupMethod, in, out))

	results := out.GetFields()["results"].GetListValue().GetValues()
	require.Len(t, results, 1)
	assert.Equal(t, "full", results[0].GetStructValue().GetFields()["session"].GetStringValue())
}

func TestServer_EchoesRequestID(t *testing.T) {
	conn := newTestConn(t, memory.NewEntryStore())
	client := grpcapi.NewClient(conn)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "req-7")
	var header metadata.MD
	_, err := client.Lookup(ctx, types.LookupRequest{VRM: "AA1"}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"req-7"}, header.Get("x-request-id"))
}
