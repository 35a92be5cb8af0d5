package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	historicalLimit = 30
	// RetentionPeriod bounds how long snapshots are kept before the
	// scheduled purge removes them.
	RetentionPeriod = 30 * 24 * time.Hour
)

// Provider is the upstream weather API surface the service needs.
type Provider interface {
	Current(ctx context.Context, lat, lon float64) (Snapshot, error)
	Forecast(ctx context.Context, lat, lon float64, days int) (Forecast, error)
}

// CurrentReport is the response for a current-conditions lookup.
type CurrentReport struct {
	Snapshot Snapshot `json:"snapshot"`
	Advice   []Advice `json:"advice"`
	Source   string   `json:"source"`
}

// Service proxies the provider with snapshot caching. Concurrent
// refreshes of the same coordinate collapse onto one upstream call.
type Service struct {
	provider Provider
	repo     Repository
	logger   *slog.Logger
	maxAge   time.Duration
	group    singleflight.Group
	now      func() time.Time
}

// NewService constructs a weather service. maxAge is how long a stored
// snapshot is considered fresh.
func NewService(provider Provider, repo Repository, logger *slog.Logger, maxAge time.Duration) *Service {
	return &Service{provider: provider, repo: repo, logger: logger, maxAge: maxAge, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

func coordKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f:%.4f", lat, lon)
}

// Current returns fresh conditions for a coordinate, serving from the
// snapshot store when a recent observation exists.
func (s *Service) Current(ctx context.Context, lat, lon float64) (CurrentReport, error) {
	cached, err := s.repo.FindFresh(ctx, lat, lon, s.now().Add(-s.maxAge))
	if err == nil {
		return CurrentReport{Snapshot: *cached, Advice: AdviceFor(*cached), Source: "cache"}, nil
	}
	if !errors.Is(err, ErrNoSnapshot) {
		return CurrentReport{}, err
	}

	value, err, _ := s.group.Do(coordKey(lat, lon), func() (any, error) {
		snap, err := s.provider.Current(ctx, lat, lon)
		if err != nil {
			return nil, err
		}
		snap.FetchedAt = s.now()
		id, err := s.repo.Insert(ctx, snap)
		if err != nil {
			return nil, fmt.Errorf("store snapshot: %w", err)
		}
		snap.ID = id
		return snap, nil
	})
	if err != nil {
		return CurrentReport{}, err
	}
	snap := value.(Snapshot)
	return CurrentReport{Snapshot: snap, Advice: AdviceFor(snap), Source: "api"}, nil
}

// Forecast proxies the multi-day forecast. Days outside 1..7 clamp to 5.
func (s *Service) Forecast(ctx context.Context, lat, lon float64, days int) (Forecast, error) {
	if days < 1 || days > 7 {
		days = 5
	}
	return s.provider.Forecast(ctx, lat, lon, days)
}

// Alerts derives active warnings from the newest stored snapshot for
// the coordinate. No snapshot means no alerts.
func (s *Service) Alerts(ctx context.Context, lat, lon float64) ([]Advice, error) {
	snap, err := s.repo.Latest(ctx, lat, lon)
	if err != nil {
		if errors.Is(err, ErrNoSnapshot) {
			return []Advice{}, nil
		}
		return nil, err
	}
	alerts := ActiveAlerts(*snap)
	if alerts == nil {
		alerts = []Advice{}
	}
	return alerts, nil
}

// Historical returns stored snapshots inside the date range, newest
// first, capped at thirty. Zero bounds default to the retention window.
func (s *Service) Historical(ctx context.Context, lat, lon float64, from, to time.Time) ([]Snapshot, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-RetentionPeriod)
	}
	snaps, err := s.repo.ListRange(ctx, lat, lon, from, to, historicalLimit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	if snaps == nil {
		snaps = []Snapshot{}
	}
	return snaps, nil
}

// Purge removes snapshots older than the retention period.
func (s *Service) Purge(ctx context.Context) (int64, error) {
	removed, err := s.repo.PurgeOlderThan(ctx, s.now().Add(-RetentionPeriod))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("purged weather snapshots", slog.Int64("removed", removed))
	}
	return removed, nil
}
