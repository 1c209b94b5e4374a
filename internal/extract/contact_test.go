package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakePageFetcher struct {
	pages map[string]string
	err   map[string]error
	calls []string
}

func (f *fakePageFetcher) Fetch(_ context.Context, address string) (string, error) {
	f.calls = append(f.calls, address)
	if err := f.err[address]; err != nil {
		return "", err
	}
	body, ok := f.pages[address]
	if !ok {
		return "", errors.New("no such page")
	}
	return body, nil
}

const primaryWithLinks = `<html><body>
<p>Phone: 555-111-2222</p>
<a href="https://detail.example.gov/SMS/Carrier/42/Overview.aspx">SMS Results</a>
</body></html>`

func TestEnrichPrefersDeepestPage(t *testing.T) {
	t.Parallel()

	fetcher := &fakePageFetcher{pages: map[string]string{
		"https://detail.example.gov/SMS/Carrier/42/Overview.aspx": `<html><body>
			<p>555-333-4444</p>
			<a href="CarrierRegistration.aspx">Carrier Registration Details</a>
			</body></html>`,
		"https://detail.example.gov/SMS/Carrier/42/CarrierRegistration.aspx": `<html><body>
			<p>dispatch@acmehauling.example</p>
			</body></html>`,
	}}

	scout := NewContactScout(fetcher, 0, nil)
	email, phone := scout.Enrich(context.Background(), "https://example.gov/q?usdot=42", Parse(primaryWithLinks))

	require.Equal(t, "dispatch@acmehauling.example", email)
	// Tertiary page has no phone; the secondary page supplies it.
	require.Equal(t, "555-333-4444", phone)
	require.Len(t, fetcher.calls, 2)
}

func TestEnrichFallsBackToPrimaryOnFetchFailure(t *testing.T) {
	t.Parallel()

	fetcher := &fakePageFetcher{err: map[string]error{
		"https://detail.example.gov/SMS/Carrier/42/Overview.aspx": errors.New("boom"),
	}}

	scout := NewContactScout(fetcher, 0, nil)
	email, phone := scout.Enrich(context.Background(), "https://example.gov/q?usdot=42", Parse(primaryWithLinks))

	require.Empty(t, email)
	require.Equal(t, "555-111-2222", phone)
}

func TestEnrichNoLinksNoFetch(t *testing.T) {
	t.Parallel()

	fetcher := &fakePageFetcher{}
	scout := NewContactScout(fetcher, 0, nil)
	email, phone := scout.Enrich(context.Background(), "addr", Parse("<p>nothing</p>"))

	require.Empty(t, email)
	require.Empty(t, phone)
	require.Empty(t, fetcher.calls)
}
