package weather

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	calls    int
	snapshot Snapshot
	forecast Forecast
	lastDays int
}

func (f *fakeProvider) Current(_ context.Context, lat, lon float64) (Snapshot, error) {
	f.calls++
	snap := f.snapshot
	snap.Latitude = lat
	snap.Longitude = lon
	return snap, nil
}

func (f *fakeProvider) Forecast(_ context.Context, _, _ float64, days int) (Forecast, error) {
	f.lastDays = days
	return f.forecast, nil
}

type fakeSnapshotRepo struct {
	snapshots []Snapshot
	nextID    int64
}

func (f *fakeSnapshotRepo) FindFresh(_ context.Context, lat, lon float64, since time.Time) (*Snapshot, error) {
	var newest *Snapshot
	for i := range f.snapshots {
		s := &f.snapshots[i]
		if s.Latitude == lat && s.Longitude == lon && !s.FetchedAt.Before(since) {
			if newest == nil || s.FetchedAt.After(newest.FetchedAt) {
				newest = s
			}
		}
	}
	if newest == nil {
		return nil, ErrNoSnapshot
	}
	copied := *newest
	return &copied, nil
}

func (f *fakeSnapshotRepo) Latest(_ context.Context, lat, lon float64) (*Snapshot, error) {
	return f.FindFresh(context.Background(), lat, lon, time.Time{})
}

func (f *fakeSnapshotRepo) Insert(_ context.Context, snap Snapshot) (int64, error) {
	f.nextID++
	snap.ID = f.nextID
	f.snapshots = append(f.snapshots, snap)
	return snap.ID, nil
}

func (f *fakeSnapshotRepo) ListRange(_ context.Context, lat, lon float64, from, to time.Time, limit int) ([]Snapshot, error) {
	var out []Snapshot
	for _, s := range f.snapshots {
		if s.Latitude == lat && s.Longitude == lon && !s.FetchedAt.Before(from) && !s.FetchedAt.After(to) {
			out = append(out, s)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSnapshotRepo) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []Snapshot
	var removed int64
	for _, s := range f.snapshots {
		if s.FetchedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	f.snapshots = kept
	return removed, nil
}

var testClock = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func newTestService(provider *fakeProvider, repo *fakeSnapshotRepo) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(provider, repo, logger, 30*time.Minute).
		WithNow(func() time.Time { return testClock })
}

func TestCurrentFetchesAndStoresOnMiss(t *testing.T) {
	provider := &fakeProvider{snapshot: Snapshot{TempC: 22, Condition: "Clouds"}}
	repo := &fakeSnapshotRepo{}
	svc := newTestService(provider, repo)

	report, err := svc.Current(context.Background(), 52.52, 13.405)
	require.NoError(t, err)
	require.Equal(t, "api", report.Source)
	require.Equal(t, 1, provider.calls)
	require.Len(t, repo.snapshots, 1)
	require.Equal(t, testClock, repo.snapshots[0].FetchedAt)
}

func TestCurrentServesFreshSnapshot(t *testing.T) {
	provider := &fakeProvider{}
	repo := &fakeSnapshotRepo{snapshots: []Snapshot{{
		ID: 1, Latitude: 52.52, Longitude: 13.405,
		TempC: 19, FetchedAt: testClock.Add(-10 * time.Minute),
	}}}
	svc := newTestService(provider, repo)

	report, err := svc.Current(context.Background(), 52.52, 13.405)
	require.NoError(t, err)
	require.Equal(t, "cache", report.Source)
	require.Equal(t, 19.0, report.Snapshot.TempC)
	require.Zero(t, provider.calls)
}

func TestCurrentRefetchesStaleSnapshot(t *testing.T) {
	provider := &fakeProvider{snapshot: Snapshot{TempC: 25}}
	repo := &fakeSnapshotRepo{snapshots: []Snapshot{{
		ID: 1, Latitude: 52.52, Longitude: 13.405,
		TempC: 19, FetchedAt: testClock.Add(-31 * time.Minute),
	}}}
	svc := newTestService(provider, repo)

	report, err := svc.Current(context.Background(), 52.52, 13.405)
	require.NoError(t, err)
	require.Equal(t, "api", report.Source)
	require.Equal(t, 25.0, report.Snapshot.TempC)
	require.Equal(t, 1, provider.calls)
}

func TestForecastClampsDays(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestService(provider, &fakeSnapshotRepo{})

	_, err := svc.Forecast(context.Background(), 1, 2, 0)
	require.NoError(t, err)
	require.Equal(t, 5, provider.lastDays)

	_, err = svc.Forecast(context.Background(), 1, 2, 3)
	require.NoError(t, err)
	require.Equal(t, 3, provider.lastDays)

	_, err = svc.Forecast(context.Background(), 1, 2, 12)
	require.NoError(t, err)
	require.Equal(t, 5, provider.lastDays)
}

func TestAlertsReturnWarningsOnly(t *testing.T) {
	repo := &fakeSnapshotRepo{snapshots: []Snapshot{{
		Latitude: 1, Longitude: 2,
		TempC: 38, Humidity: 90, WindSpeed: 20,
		Condition: "Clear", FetchedAt: testClock.Add(-2 * time.Hour),
	}}}
	svc := newTestService(&fakeProvider{}, repo)

	alerts, err := svc.Alerts(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	for _, a := range alerts {
		require.Equal(t, AdviceWarning, a.Type)
	}
}

func TestAlertsEmptyWithoutSnapshot(t *testing.T) {
	svc := newTestService(&fakeProvider{}, &fakeSnapshotRepo{})

	alerts, err := svc.Alerts(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Empty(t, alerts)
	require.NotNil(t, alerts)
}

func TestPurgeRemovesExpiredSnapshots(t *testing.T) {
	repo := &fakeSnapshotRepo{snapshots: []Snapshot{
		{ID: 1, FetchedAt: testClock.Add(-31 * 24 * time.Hour)},
		{ID: 2, FetchedAt: testClock.Add(-5 * 24 * time.Hour)},
	}}
	svc := newTestService(&fakeProvider{}, repo)

	removed, err := svc.Purge(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
	require.Len(t, repo.snapshots, 1)
	require.Equal(t, int64(2), repo.snapshots[0].ID)
}

func TestAdviceRules(t *testing.T) {
	cases := []struct {
		name     string
		snap     Snapshot
		category string
		kind     string
	}{
		{"heat", Snapshot{TempC: 36, Humidity: 50}, "temperature", AdviceWarning},
		{"frost", Snapshot{TempC: 2, Humidity: 50}, "temperature", AdviceWarning},
		{"fungal risk", Snapshot{TempC: 20, Humidity: 90}, "humidity", AdviceCaution},
		{"dry air", Snapshot{TempC: 20, Humidity: 20}, "humidity", AdviceInfo},
		{"strong wind", Snapshot{TempC: 20, Humidity: 50, WindSpeed: 16}, "wind", AdviceWarning},
		{"rain", Snapshot{TempC: 20, Humidity: 50, Condition: "Rain"}, "precipitation", AdviceInfo},
		{"clear and warm", Snapshot{TempC: 27, Humidity: 50, Condition: "Clear"}, "general", AdviceInfo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			advice := AdviceFor(tc.snap)
			require.Len(t, advice, 1)
			require.Equal(t, tc.category, advice[0].Category)
			require.Equal(t, tc.kind, advice[0].Type)
		})
	}
}

func TestMildConditionsNoAdvice(t *testing.T) {
	require.Empty(t, AdviceFor(Snapshot{TempC: 20, Humidity: 50, WindSpeed: 5, Condition: "Clouds"}))
}
