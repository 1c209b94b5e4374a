package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/fleetlens/carrierscan/internal/carrier"
	"github.com/fleetlens/carrierscan/internal/storage"
)

// Archive persists raw snapshot bodies of accepted identifiers through a
// blob storage provider.
type Archive struct {
	provider storage.Provider
	prefix   string
}

// NewArchive builds an Archive writing under the given object prefix.
func NewArchive(provider storage.Provider, prefix string) *Archive {
	return &Archive{provider: provider, prefix: strings.Trim(prefix, "/")}
}

// ArchiveSnapshot stores one raw document body keyed by identifier.
func (a *Archive) ArchiveSnapshot(ctx context.Context, id carrier.Identifier, body string) error {
	path := fmt.Sprintf("%s.html", id)
	if a.prefix != "" {
		path = a.prefix + "/" + path
	}
	if _, err := a.provider.PutObject(ctx, path, "text/html; charset=utf-8", []byte(body)); err != nil {
		return fmt.Errorf("archive snapshot %s: %w", id, err)
	}
	return nil
}
