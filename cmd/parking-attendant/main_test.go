package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kinsa/parking-attendant/internal/grpcapi"
	"github.com/Kinsa/parking-attendant/internal/parking/service"
	"github.com/Kinsa/parking-attendant/internal/parking/store/memory"
	"github.com/Kinsa/parking-attendant/internal/parking/types"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PARKING_TIME_ZONE", "UTC")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRecordThenLookup(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "parking.db")

	out, err := run(t, "--db", dbPath, "record", "ab12 cde", "--at", "2026-02-15 11:00:00", "--json")
	require.NoError(t, err)
	var entry types.EntryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &entry))
	assert.Equal(t, "AB12 CDE", entry.VRM)

	out, err = run(t, "--db", dbPath, "lookup", "A812 CDE", "--to", "2026-02-15 12:00:00")
	require.NoError(t, err)

	var resp types.LookupResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "1 result found.", resp.Message)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "AB12 CDE", resp.Results[0].VRM)
	assert.Equal(t, "partial", resp.Results[0].Session)
}

func TestLookup_ValidationError(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "parking.db")

	_, err := run(t, "--db", dbPath, "lookup", "AB12CDE", "--window", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Window must be a positive integer")
}

func TestSearch_NotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "parking.db")

	out, err := run(t, "--db", dbPath, "search", "ZZ99")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestMigrateAndSeed(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "parking.db")

	out, err := run(t, "--db", dbPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version 1")

	out, err = run(t, "--db", dbPath, "seed", "--count", "5")
	require.NoError(t, err)
	assert.Equal(t, "Seeded 5 entries\n", out)
}

func TestPrune_RequiresRetention(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "parking.db")

	_, err := run(t, "--db", dbPath, "prune")
	require.Error(t, err)

	_, err = run(t, "--db", dbPath, "record", "AB12CDE", "--at", "2020-01-01 00:00:00")
	require.NoError(t, err)

	out, err := run(t, "--db", dbPath, "prune", "--days", "30")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Pruned 1 entries"), out)
}

func TestLookup_Remote(t *testing.T) {
	ms := memory.NewEntryStore()
	ms.Append("MA06 GLO", "2026-02-15 11:30:00")
	opts := service.Options{
		Logger:   slog.New(slog.DiscardHandler),
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC) },
	}
	srv := grpcapi.NewServer(grpcapi.Dependencies{
		Logger:        opts.Logger,
		LookupService: service.NewLookupService(ms, opts),
		EntryService:  service.NewEntryService(ms, opts),
	})
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() { srv.Stop(context.Background()) })

	out, err := run(t, "lookup", "MA06 GL0", "--remote", lis.Addr().String())
	require.NoError(t, err)
	var resp types.LookupResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "MA06 GLO", resp.Results[0].VRM)

	_, err = run(t, "lookup", "MA06-GLO", "--remote", lis.Addr().String())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "rpc error")
}

func TestPrintLookup_Table(t *testing.T) {
	start, end, d := "2026-02-15 11:00:00", "2026-02-15 13:00:00", 0
	var b bytes.Buffer
	printLookup(&b, types.LookupResponse{
		Message: "1 result found.",
		Results: []types.SessionResult{{VRM: "AB12 CDE", Session: "partial", SessionStart: &start, SessionEnd: &end, Distance: &d}},
	}, time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC))

	out := b.String()
	assert.Contains(t, out, "AB12 CDE")
	assert.Contains(t, out, "1 hour ago")
}
