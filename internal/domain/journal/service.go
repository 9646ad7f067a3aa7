package journal

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
	"github.com/orkendeu/bg-journal/internal/platform/bg"
)

// Fetcher retrieves raw referral records. Any error is treated as the
// bureau being unavailable.
type Fetcher interface {
	Fetch(ctx context.Context, q referral.Query) ([]referral.Item, error)
}

// FetcherFunc is a function adapter for Fetcher.
type FetcherFunc func(ctx context.Context, q referral.Query) ([]referral.Item, error)

func (f FetcherFunc) Fetch(ctx context.Context, q referral.Query) ([]referral.Item, error) {
	return f(ctx, q)
}

type Service struct {
	fetcher      Fetcher
	logger       zerolog.Logger
	now          func() time.Time
	hospitalName string
}

func NewService(fetcher Fetcher, logger zerolog.Logger) *Service {
	return &Service{
		fetcher:      fetcher,
		logger:       logger,
		now:          time.Now,
		hospitalName: DefaultHospitalName,
	}
}

// SetClock overrides the clock used for age calculation.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetHospitalName overrides the institution name on every envelope.
func (s *Service) SetHospitalName(name string) {
	if name != "" {
		s.hospitalName = name
	}
}

func (s *Service) HospitalName() string {
	return s.hospitalName
}

// QueryFor maps a filter to the upstream query. Only the identifier and the
// date window are sent; everything else is applied locally.
func QueryFor(f Filter) referral.Query {
	return referral.Query{
		PatientIINOrFIO: f.PatientIdentifier,
		DateFrom:        f.DateFrom,
		DateTo:          f.DateTo,
	}
}

// GetData fetches referrals and projects them into the requested journal.
// It never fails: an unreachable bureau yields an empty page.
func (s *Service) GetData(ctx context.Context, kind Kind, f Filter) Response {
	d, ok := Lookup(kind)
	if !ok {
		s.logger.Warn().Str("journal", string(kind)).Msg("unknown journal")
		return Empty(f, s.hospitalName)
	}

	q := QueryFor(f)
	items, err := s.fetcher.Fetch(ctx, q)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("journal", string(kind)).
			Str("subject", bg.ReferralsSubject.Code).
			Str("cache_key", bg.ReferralsSubject.CacheKey(q.Params())).
			Msg("referral fetch failed")
		return Empty(f, s.hospitalName)
	}

	resp := d.Transform(items, f, s.now(), s.hospitalName)
	s.logger.Debug().
		Str("journal", string(kind)).
		Int("fetched", len(items)).
		Int("total", resp.Total).
		Int("page_items", len(resp.Items)).
		Msg("journal built")
	return resp
}
