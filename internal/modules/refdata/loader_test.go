package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIfEmptyUsesEmbeddedFixtures(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.Conn(), zerolog.Nop())
	loader := NewLoader(repo, t.TempDir(), zerolog.Nop())

	require.NoError(t, loader.SeedIfEmpty())

	counts, err := repo.Counts()
	require.NoError(t, err)
	assert.Equal(t, 10, counts.Clients)
	assert.Equal(t, 6, counts.Instruments)
	assert.Equal(t, 6, counts.Snapshots)
	assert.Greater(t, counts.HistoricalOrders, 20)
	assert.Greater(t, counts.PricePoints, 10)

	t.Run("second run does not duplicate", func(t *testing.T) {
		require.NoError(t, loader.SeedIfEmpty())

		again, err := repo.Counts()
		require.NoError(t, err)
		assert.Equal(t, counts, again)
	})
}

func TestSeedPrefersDataDirFiles(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.Conn(), zerolog.Nop())

	dataDir := t.TempDir()
	custom := "client_id,urgency_profile,preferred_algo,aggression_bias,participation_pref\n" +
		"ACME01,High,POV,High,0.20\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "clients.csv"), []byte(custom), 0o644))

	loader := NewLoader(repo, dataDir, zerolog.Nop())
	require.NoError(t, loader.SeedIfEmpty())

	clients, err := repo.AllClients()
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "ACME01", clients[0].ClientID)
	assert.Equal(t, 0.20, clients[0].ParticipationPref)
}

func TestBuildDataset(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.Conn(), zerolog.Nop())
	loader := NewLoader(repo, t.TempDir(), zerolog.Nop())
	require.NoError(t, loader.SeedIfEmpty())

	dataset, err := loader.BuildDataset()
	require.NoError(t, err)
	require.NotNil(t, dataset)
	assert.False(t, dataset.LoadedAt.IsZero())

	t.Run("lookups resolve seeded rows", func(t *testing.T) {
		client, ok := dataset.Client("CLT001")
		require.True(t, ok)
		assert.Equal(t, "VWAP", client.PreferredAlgo)

		instrument, ok := dataset.Instrument("AAPL")
		require.True(t, ok)
		assert.Equal(t, float64(85000000), instrument.ADV)

		_, ok = dataset.Client("NOPE")
		assert.False(t, ok)
	})

	t.Run("snapshot with measured volatility is untouched", func(t *testing.T) {
		snap, ok := dataset.Snapshot("AAPL")
		require.True(t, ok)
		assert.Equal(t, 0.008, snap.IntradayVol)
	})

	t.Run("missing volatility derived from price history", func(t *testing.T) {
		// KMDA ships with intraday_vol 0 and a close series that moves
		// well over a percent a day
		snap, ok := dataset.Snapshot("KMDA")
		require.True(t, ok)
		assert.Greater(t, snap.IntradayVol, 0.01)
		assert.Less(t, snap.IntradayVol, 0.03)
	})

	t.Run("orders filter by client", func(t *testing.T) {
		orders := dataset.OrdersForClient("CLT001")
		require.Len(t, orders, 5)
		for _, o := range orders {
			assert.Equal(t, "CLT001", o.ClientID)
		}
	})
}
