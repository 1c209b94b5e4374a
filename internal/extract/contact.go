package extract

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PageFetcher fetches one address; the resilient fetcher satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, address string) (string, error)
}

// Link hints for the detail-page chain. The snapshot links to a safety
// detail page, which in turn links to a registration page.
var (
	detailLinkHints       = []string{"/sms/carrier/", "sms results", "carrier details"}
	registrationLinkHints = []string{"carrierregistration", "registration details"}
)

// ContactScout walks the optional secondary/tertiary detail pages looking
// for an email address and phone number. Any fetch failure along the chain
// is logged and treated as "no additional data".
type ContactScout struct {
	fetcher PageFetcher
	delay   time.Duration
	logger  *zap.Logger
}

// NewContactScout builds a ContactScout. delay is the courtesy pause before
// each extra page fetch.
func NewContactScout(fetcher PageFetcher, delay time.Duration, logger *zap.Logger) *ContactScout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactScout{fetcher: fetcher, delay: delay, logger: logger}
}

// Enrich scans the deepest successfully fetched page first, falling back to
// shallower pages when it yields nothing.
func (s *ContactScout) Enrich(ctx context.Context, address string, primary *Document) (email, phone string) {
	pages := []*Document{primary}

	if secondary := s.follow(ctx, primary.FindLink(address, detailLinkHints...)); secondary != nil {
		pages = append(pages, secondary.doc)
		if tertiary := s.follow(ctx, secondary.doc.FindLink(secondary.address, registrationLinkHints...)); tertiary != nil {
			pages = append(pages, tertiary.doc)
		}
	}

	// Deepest first.
	for i := len(pages) - 1; i >= 0; i-- {
		if email == "" {
			email = Email(pages[i].Raw())
		}
		if phone == "" {
			phone = Phone(pages[i].Raw())
		}
		if email != "" && phone != "" {
			break
		}
	}
	return email, phone
}

type fetchedPage struct {
	address string
	doc     *Document
}

func (s *ContactScout) follow(ctx context.Context, address string) *fetchedPage {
	if address == "" || s.fetcher == nil {
		return nil
	}
	if err := s.pause(ctx); err != nil {
		return nil
	}
	body, err := s.fetcher.Fetch(ctx, address)
	if err != nil {
		s.logger.Warn("detail page fetch failed", zap.String("url", address), zap.Error(err))
		return nil
	}
	return &fetchedPage{address: address, doc: Parse(body)}
}

func (s *ContactScout) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
