package citadel

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citadelhq/citadel-go/store"
)

type fakeSnapshots struct {
	fail map[string]bool
}

func (f fakeSnapshots) SymbolSnapshot(ctx context.Context, symbol string) (map[string]any, error) {
	if f.fail[symbol] {
		return nil, errors.New("provider down")
	}
	return map[string]any{"symbol": symbol, "lastTradedPrice": 500.0}, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	st, err := store.New(db, zerolog.Nop())
	require.NoError(t, err)
	return st
}

func TestRefreshOnceStoresBundles(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.WatchlistAdd(ctx, "NABIL", "")
	require.NoError(t, err)
	_, err = st.WatchlistAdd(ctx, "NICA", "")
	require.NoError(t, err)

	r := New(fakeSnapshots{}, st, zerolog.Nop())
	assert.Equal(t, 2, r.RefreshOnce(ctx))

	bundle, err := st.LatestResearchBundle(ctx, "NABIL")
	require.NoError(t, err)
	assert.Equal(t, "NABIL", bundle.Ticker)
}

func TestRefreshOnceSkipsFailingSymbols(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.WatchlistAdd(ctx, "NABIL", "")
	require.NoError(t, err)
	_, err = st.WatchlistAdd(ctx, "BROKEN", "")
	require.NoError(t, err)

	r := New(fakeSnapshots{fail: map[string]bool{"BROKEN": true}}, st, zerolog.Nop())
	assert.Equal(t, 1, r.RefreshOnce(ctx))

	_, err = st.LatestResearchBundle(ctx, "BROKEN")
	require.Error(t, err)
}

func TestRefreshOnceEmptyWatchlist(t *testing.T) {
	st := newTestStore(t)

	r := New(fakeSnapshots{}, st, zerolog.Nop())
	assert.Equal(t, 0, r.RefreshOnce(context.Background()))
}

func TestStartRejectsNonPositiveInterval(t *testing.T) {
	r := New(fakeSnapshots{}, newTestStore(t), zerolog.Nop())
	require.Error(t, r.Start(0))
}
