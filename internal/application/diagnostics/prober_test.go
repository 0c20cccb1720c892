package diagnostics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/betagent/internal/domain"
)

type stubReader struct {
	bal float64
	err error
}

func (s stubReader) Balance(context.Context) (float64, error) { return s.bal, s.err }
func (s stubReader) Name() string                             { return "stub" }

type memStore struct {
	probes  []domain.BalanceProbe
	saveErr error
}

func (m *memStore) SaveProbe(_ context.Context, p domain.BalanceProbe) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.probes = append(m.probes, p)
	return nil
}

func (m *memStore) RecentProbes(_ context.Context, n int) ([]domain.BalanceProbe, error) {
	out := make([]domain.BalanceProbe, 0, n)
	for i := len(m.probes) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.probes[i])
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func TestProbe_Success(t *testing.T) {
	store := &memStore{}
	p := NewProber(stubReader{bal: 123.45}, store, time.Second)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	probe, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, probe.OK)
	assert.InDelta(t, 123.45, probe.Balance, 1e-9)
	assert.Equal(t, "stub", probe.Exchange)
	assert.Equal(t, fixed, probe.CheckedAt)
	assert.NotEmpty(t, probe.ID)
	require.Len(t, store.probes, 1)
	assert.Equal(t, probe.ID, store.probes[0].ID)
}

func TestProbe_ReaderFailureIsRecordedNotReturned(t *testing.T) {
	store := &memStore{}
	p := NewProber(stubReader{err: errors.New("client error 401: unauthorized")}, store, time.Second)

	probe, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.False(t, probe.OK)
	assert.Zero(t, probe.Balance)
	assert.Contains(t, probe.Error, "401")
	require.Len(t, store.probes, 1)
	assert.False(t, store.probes[0].OK)
}

func TestProbe_StoreFailure(t *testing.T) {
	p := NewProber(stubReader{bal: 1}, &memStore{saveErr: errors.New("disk full")}, time.Second)
	probe, err := p.Probe(context.Background())
	assert.ErrorContains(t, err, "disk full")
	assert.True(t, probe.OK)
}

func TestProbe_NoStore(t *testing.T) {
	p := NewProber(stubReader{bal: 5}, nil, 0)
	probe, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, probe.OK)

	hist, err := p.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestHistory_MostRecentFirst(t *testing.T) {
	store := &memStore{}
	p := NewProber(stubReader{bal: 1}, store, time.Second)
	for i := 0; i < 3; i++ {
		_, err := p.Probe(context.Background())
		require.NoError(t, err)
	}

	hist, err := p.History(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, store.probes[2].ID, hist[0].ID)
	assert.Equal(t, store.probes[1].ID, hist[1].ID)
}
