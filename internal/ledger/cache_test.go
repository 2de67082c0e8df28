package ledger_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
	"github.com/hmesh/presale-dashboard/internal/ledger"
	"github.com/hmesh/presale-dashboard/internal/repository"
	"github.com/hmesh/presale-dashboard/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{hits: map[string]int{}, misses: map[string]int{}}
}

func (r *countingRecorder) CacheHit(cache string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits[cache]++
}

func (r *countingRecorder) CacheMiss(cache string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses[cache]++
}

func TestCachedReader_RoundHitAndMiss(t *testing.T) {
	ctx := context.Background()
	reader := new(mocks.LedgerReader)
	rec := newCountingRecorder()
	cached := ledger.NewCachedReader(reader, time.Minute, rec)
	t.Cleanup(cached.Stop)

	r := &round.Round{ChainID: 1, ID: 2, TokenPrice: big.NewInt(1)}
	reader.On("Round", ctx, int64(1), uint32(2)).Return(r, nil).Once()

	got, err := cached.Round(ctx, 1, 2)
	require.NoError(t, err)
	require.Same(t, r, got)

	got, err = cached.Round(ctx, 1, 2)
	require.NoError(t, err)
	require.Same(t, r, got)

	reader.AssertExpectations(t)
	require.Equal(t, 1, rec.misses["round"])
	require.Equal(t, 1, rec.hits["round"])
}

func TestCachedReader_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	reader := new(mocks.LedgerReader)
	cached := ledger.NewCachedReader(reader, time.Minute, nil)
	t.Cleanup(cached.Stop)

	reader.On("State", ctx, int64(5)).Return(nil, repository.ErrNotFound).Twice()

	_, err := cached.State(ctx, 5)
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = cached.State(ctx, 5)
	require.ErrorIs(t, err, repository.ErrNotFound)

	reader.AssertExpectations(t)
}

func TestCachedReader_Invalidate(t *testing.T) {
	ctx := context.Background()
	reader := new(mocks.LedgerReader)
	cached := ledger.NewCachedReader(reader, time.Minute, nil)
	t.Cleanup(cached.Stop)

	reader.On("State", ctx, int64(1)).Return(&round.State{ChainID: 1}, nil).Once()
	reader.On("State", ctx, int64(1)).Return(&round.State{ChainID: 1, Paused: true}, nil).Once()

	state, err := cached.State(ctx, 1)
	require.NoError(t, err)
	require.False(t, state.Paused)

	cached.Invalidate()

	state, err = cached.State(ctx, 1)
	require.NoError(t, err)
	require.True(t, state.Paused)
	reader.AssertExpectations(t)
}

func TestCachedReader_PromoterKeys(t *testing.T) {
	ctx := context.Background()
	reader := new(mocks.LedgerReader)
	cached := ledger.NewCachedReader(reader, time.Minute, nil)
	t.Cleanup(cached.Stop)

	stats := &promoter.Stats{ChainID: 1, Address: "0x00000000000000000000000000000000000000bb", PromoCode: "CODE"}
	reader.On("PromoterByCode", ctx, int64(1), "CODE").Return(stats, nil).Once()
	reader.On("Promoter", ctx, int64(1), mock.Anything).Return(stats, nil).Once()

	_, err := cached.PromoterByCode(ctx, 1, "CODE")
	require.NoError(t, err)
	_, err = cached.PromoterByCode(ctx, 1, "CODE")
	require.NoError(t, err)

	// Address lookups are case-insensitive and separate from code lookups.
	_, err = cached.Promoter(ctx, 1, "0x00000000000000000000000000000000000000BB")
	require.NoError(t, err)
	_, err = cached.Promoter(ctx, 1, "0x00000000000000000000000000000000000000bb")
	require.NoError(t, err)

	reader.AssertExpectations(t)
}

func TestCachedReader_PurchasesPassThrough(t *testing.T) {
	ctx := context.Background()
	reader := new(mocks.LedgerReader)
	cached := ledger.NewCachedReader(reader, time.Minute, nil)
	t.Cleanup(cached.Stop)

	wallet := "0x00000000000000000000000000000000000000aa"
	p := &vesting.Purchase{RoundID: 1, Amount: big.NewInt(10)}
	reader.On("Purchase", ctx, int64(1), wallet, uint32(1)).Return(p, nil).Twice()
	reader.On("Claimed", ctx, int64(1), wallet, uint32(1)).Return(vesting.Claimed{Immediate: true}, nil).Once()

	for i := 0; i < 2; i++ {
		got, err := cached.Purchase(ctx, 1, wallet, 1)
		require.NoError(t, err)
		require.Equal(t, int64(10), got.Amount.Int64())
	}
	claimed, err := cached.Claimed(ctx, 1, wallet, 1)
	require.NoError(t, err)
	require.True(t, claimed.Immediate)

	reader.AssertExpectations(t)
}

func TestCachedReader_DistinctKeysLoadConcurrently(t *testing.T) {
	ctx := context.Background()
	reader := new(mocks.LedgerReader)
	cached := ledger.NewCachedReader(reader, time.Minute, nil)
	t.Cleanup(cached.Stop)

	var started sync.WaitGroup
	started.Add(2)
	release := make(chan struct{})
	for _, id := range []uint32{1, 2} {
		reader.On("Round", ctx, int64(1), id).
			Run(func(mock.Arguments) {
				started.Done()
				<-release
			}).
			Return(&round.Round{ChainID: 1, ID: id}, nil).Once()
	}

	errs := make(chan error, 2)
	for _, id := range []uint32{1, 2} {
		go func(id uint32) {
			_, err := cached.Round(ctx, 1, id)
			errs <- err
		}(id)
	}

	bothStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(bothStarted)
	}()
	select {
	case <-bothStarted:
	case <-time.After(5 * time.Second):
		close(release)
		t.Fatal("round loads ran one at a time")
	}
	close(release)

	for i := 0; i < 2; i++ {
		require.NoError(t, <-errs)
	}
	reader.AssertExpectations(t)
}

func TestCachedReader_SameKeyLoadsOnce(t *testing.T) {
	ctx := context.Background()
	reader := new(mocks.LedgerReader)
	rec := newCountingRecorder()
	cached := ledger.NewCachedReader(reader, time.Minute, rec)
	t.Cleanup(cached.Stop)

	r := &round.Round{ChainID: 1, ID: 3}
	reader.On("Round", ctx, int64(1), uint32(3)).
		Run(func(mock.Arguments) { time.Sleep(50 * time.Millisecond) }).
		Return(r, nil)

	const callers = 8
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() {
			got, err := cached.Round(ctx, 1, 3)
			if err == nil && got != r {
				err = errors.New("unexpected round")
			}
			errs <- err
		}()
	}
	for i := 0; i < callers; i++ {
		require.NoError(t, <-errs)
	}

	reader.AssertNumberOfCalls(t, "Round", 1)
	require.Equal(t, 1, rec.misses["round"])
}
