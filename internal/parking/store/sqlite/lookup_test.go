package sqlite_test

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kinsa/parking-attendant/internal/parking/service"
	sqlitestore "github.com/Kinsa/parking-attendant/internal/parking/store/sqlite"
	"github.com/Kinsa/parking-attendant/internal/parking/types"
)

func TestLookup_CalendarInvalidEntriesAreLogged(t *testing.T) {
	conn := openTestDB(t)
	es := sqlitestore.NewEntryStore(conn, newTestWriter(t, conn))

	feb31 := insertRaw(t, conn, "AA 1234AB", "2026-02-31 10:00:00")
	hour25 := insertRaw(t, conn, "AA 1234AB", "2026-02-14 25:61:00")
	insertRaw(t, conn, "AA 1234AB", "2026-02-15 11:00:00")

	var buf bytes.Buffer
	lookup := service.NewLookupService(es, service.Options{
		Logger:   slog.New(slog.NewTextHandler(&buf, nil)),
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC) },
	})

	resp, err := lookup.Lookup(context.Background(), types.LookupRequest{VRM: "AA 1234AB"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "2026-02-15 11:00:00", *resp.Results[0].SessionStart)

	out := buf.String()
	assert.Contains(t, out, "entry_id="+strconv.FormatInt(feb31, 10))
	assert.Contains(t, out, "entry_id="+strconv.FormatInt(hour25, 10))
}
