package carrier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupURLEncodesIdentifier(t *testing.T) {
	t.Parallel()

	addr := LookupURL("https://example.gov/query?usdot=%s", " 123 456 ")
	require.Equal(t, "https://example.gov/query?usdot=123+456", addr)
}

func TestLookupURLDefaultsTemplate(t *testing.T) {
	t.Parallel()

	addr := LookupURL("", "2231159")
	require.Contains(t, addr, "query_string=2231159")
}

func TestLookupURLIsDeterministic(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		LookupURL("", "555"),
		LookupURL("", "555"),
	)
}

func TestReadIdentifiersTrimsAndSkipsBlanks(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("  100001\n\n200002  \n\t\n300003\n")
	ids, err := ReadIdentifiers(in)
	require.NoError(t, err)
	require.Equal(t, []Identifier{"100001", "200002", "300003"}, ids)
}

func TestReadIdentifiersEmptyInput(t *testing.T) {
	t.Parallel()

	ids, err := ReadIdentifiers(strings.NewReader("\n\n"))
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestColumnsKnownVariants(t *testing.T) {
	t.Parallel()

	for _, variant := range []string{VariantContact, VariantSnapshot, VariantRegistration} {
		cols, err := Columns(variant)
		require.NoError(t, err)
		require.NotEmpty(t, cols)
		require.Equal(t, FieldLookupURL, cols[0], "lookup address leads every column set")
	}

	_, err := Columns("bogus")
	require.Error(t, err)
}

func TestRecordGetFallsBackToAddress(t *testing.T) {
	t.Parallel()

	rec := Record{
		Address: "https://example.gov/query?usdot=1",
		Fields:  map[string]string{FieldLegalName: "ACME HAULING LLC"},
	}
	require.Equal(t, "ACME HAULING LLC", rec.Get(FieldLegalName))
	require.Equal(t, rec.Address, rec.Get(FieldLookupURL))
	require.Empty(t, rec.Get(FieldEmail))
}
