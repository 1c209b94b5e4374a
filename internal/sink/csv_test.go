package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetlens/carrierscan/internal/carrier"
	"github.com/fleetlens/carrierscan/internal/storage/memory"
)

func testColumns() []string {
	return []string{carrier.FieldLookupURL, carrier.FieldLegalName, carrier.FieldPhone}
}

func TestWriteRecordsRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir(), "run1", testColumns(), zap.NewNop())
	require.NoError(t, err)

	records := []carrier.Record{
		{Address: "https://example.gov/q?usdot=1", Fields: map[string]string{
			carrier.FieldLegalName: `ACME "THE BEST" LLC`,
			carrier.FieldPhone:     "555-111-2222",
		}},
		{Address: "https://example.gov/q?usdot=2", Fields: map[string]string{
			carrier.FieldLegalName: "PLAIN, CO",
		}},
	}

	path, err := s.WriteRecords(records)
	require.NoError(t, err)
	require.Equal(t, "carriers_run1.csv", filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per record")
	require.Equal(t, testColumns(), rows[0])
	require.Equal(t, []string{"https://example.gov/q?usdot=1", `ACME "THE BEST" LLC`, "555-111-2222"}, rows[1])
	require.Equal(t, []string{"https://example.gov/q?usdot=2", "PLAIN, CO", ""}, rows[2])
}

func TestWriteRecordsQuotesEveryField(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir(), "", testColumns(), zap.NewNop())
	require.NoError(t, err)

	path, err := s.WriteRecords([]carrier.Record{{Address: "a", Fields: map[string]string{}}})
	require.NoError(t, err)
	require.Equal(t, "carriers.csv", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, `"a","",""`, lines[1])
}

func TestWriteRecordsEmptyIsNoOp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := New(dir, "", testColumns(), zap.NewNop())
	require.NoError(t, err)

	path, err := s.WriteRecords(nil)
	require.NoError(t, err)
	require.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "no output file for an empty batch")
}

func TestWriteAddresses(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir(), "batch7", testColumns(), zap.NewNop())
	require.NoError(t, err)

	path, err := s.WriteAddresses([]string{"https://a", "https://b"})
	require.NoError(t, err)
	require.Equal(t, "addresses_batch7.txt", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "https://a\nhttps://b\n", string(raw))

	empty, err := s.WriteAddresses(nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestNewRequiresColumns(t *testing.T) {
	t.Parallel()

	_, err := New(t.TempDir(), "", nil, zap.NewNop())
	require.Error(t, err)
}

func TestArchiveSnapshot(t *testing.T) {
	t.Parallel()

	store := memory.NewBlobStore()
	a := NewArchive(store, "snapshots/")

	err := a.ArchiveSnapshot(context.Background(), "2231159", "<html>body</html>")
	require.NoError(t, err)
	require.Equal(t, []byte("<html>body</html>"), store.Object("snapshots/2231159.html"))
}
