package refdata

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/precept/internal/database"
)

// Repository reads and writes the reference data tables.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// Counts reports row counts per reference table.
type Counts struct {
	Clients          int
	Instruments      int
	Snapshots        int
	HistoricalOrders int
	PricePoints      int
}

// NewRepository creates a new reference data repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "refdata").Logger(),
	}
}

// Counts returns row counts for every reference table.
func (r *Repository) Counts() (Counts, error) {
	var c Counts
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM clients", &c.Clients},
		{"SELECT COUNT(*) FROM instruments", &c.Instruments},
		{"SELECT COUNT(*) FROM market_snapshot", &c.Snapshots},
		{"SELECT COUNT(*) FROM historical_orders", &c.HistoricalOrders},
		{"SELECT COUNT(*) FROM price_history", &c.PricePoints},
	}
	for _, q := range queries {
		if err := r.db.QueryRow(q.query).Scan(q.dest); err != nil {
			return Counts{}, fmt.Errorf("failed to count reference rows: %w", err)
		}
	}
	return c, nil
}

// InsertClients writes client profiles in a single transaction.
func (r *Repository) InsertClients(clients []ClientProfile) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for _, c := range clients {
			_, err := tx.Exec(`
				INSERT OR REPLACE INTO clients
				(client_id, urgency_profile, preferred_algo, aggression_bias, participation_pref)
				VALUES (?, ?, ?, ?, ?)
			`, c.ClientID, c.UrgencyProfile, c.PreferredAlgo, c.AggressionBias, c.ParticipationPref)
			if err != nil {
				return fmt.Errorf("failed to insert client %s: %w", c.ClientID, err)
			}
		}
		return nil
	})
}

// InsertInstruments writes instrument profiles in a single transaction.
func (r *Repository) InsertInstruments(instruments []InstrumentProfile) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for _, ins := range instruments {
			_, err := tx.Exec(`
				INSERT OR REPLACE INTO instruments
				(symbol, adv, typical_spread, baseline_vol, tick_size)
				VALUES (?, ?, ?, ?, ?)
			`, ins.Symbol, int64(ins.ADV), ins.TypicalSpread, ins.BaselineVol, ins.TickSize)
			if err != nil {
				return fmt.Errorf("failed to insert instrument %s: %w", ins.Symbol, err)
			}
		}
		return nil
	})
}

// InsertSnapshots writes market snapshots in a single transaction.
func (r *Repository) InsertSnapshots(snapshots []MarketSnapshot) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for _, s := range snapshots {
			_, err := tx.Exec(`
				INSERT OR REPLACE INTO market_snapshot
				(symbol, bid, ask, ltp, spread, intraday_vol, last_trade_size)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, s.Symbol, nullableFloat(s.Bid), nullableFloat(s.Ask), nullableFloat(s.LTP),
				s.Spread, s.IntradayVol, int64(s.LastTradeSize))
			if err != nil {
				return fmt.Errorf("failed to insert snapshot %s: %w", s.Symbol, err)
			}
		}
		return nil
	})
}

// InsertHistoricalOrders appends order outcomes in a single transaction.
func (r *Repository) InsertHistoricalOrders(orders []HistoricalOrder) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for _, o := range orders {
			_, err := tx.Exec(`
				INSERT INTO historical_orders
				(client_id, symbol, size_bucket, volatility_bucket, algo_used, aggression_level, executed_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, o.ClientID, o.Symbol, o.SizeBucket, o.VolatilityBucket, o.AlgoUsed, o.AggressionLevel, o.ExecutedAt)
			if err != nil {
				return fmt.Errorf("failed to insert historical order: %w", err)
			}
		}
		return nil
	})
}

// InsertPricePoints writes price history rows in a single transaction.
func (r *Repository) InsertPricePoints(points []PricePoint) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for _, p := range points {
			_, err := tx.Exec(`
				INSERT OR REPLACE INTO price_history (symbol, ts, close)
				VALUES (?, ?, ?)
			`, p.Symbol, p.TS, p.Close)
			if err != nil {
				return fmt.Errorf("failed to insert price point %s: %w", p.Symbol, err)
			}
		}
		return nil
	})
}

// AllClients returns every client profile.
func (r *Repository) AllClients() ([]ClientProfile, error) {
	rows, err := r.db.Query(`
		SELECT client_id, urgency_profile, preferred_algo, aggression_bias, participation_pref
		FROM clients
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []ClientProfile
	for rows.Next() {
		var c ClientProfile
		if err := rows.Scan(&c.ClientID, &c.UrgencyProfile, &c.PreferredAlgo, &c.AggressionBias, &c.ParticipationPref); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// AllInstruments returns every instrument profile.
func (r *Repository) AllInstruments() ([]InstrumentProfile, error) {
	rows, err := r.db.Query(`
		SELECT symbol, adv, typical_spread, baseline_vol, tick_size
		FROM instruments
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments: %w", err)
	}
	defer rows.Close()

	var instruments []InstrumentProfile
	for rows.Next() {
		var ins InstrumentProfile
		if err := rows.Scan(&ins.Symbol, &ins.ADV, &ins.TypicalSpread, &ins.BaselineVol, &ins.TickSize); err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		instruments = append(instruments, ins)
	}
	return instruments, rows.Err()
}

// AllSnapshots returns every market snapshot.
func (r *Repository) AllSnapshots() ([]MarketSnapshot, error) {
	rows, err := r.db.Query(`
		SELECT symbol, bid, ask, ltp, spread, intraday_vol, last_trade_size
		FROM market_snapshot
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query market snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []MarketSnapshot
	for rows.Next() {
		var (
			s             MarketSnapshot
			bid, ask, ltp sql.NullFloat64
		)
		if err := rows.Scan(&s.Symbol, &bid, &ask, &ltp, &s.Spread, &s.IntradayVol, &s.LastTradeSize); err != nil {
			return nil, fmt.Errorf("failed to scan market snapshot: %w", err)
		}
		if bid.Valid {
			v := bid.Float64
			s.Bid = &v
		}
		if ask.Valid {
			v := ask.Float64
			s.Ask = &v
		}
		if ltp.Valid {
			v := ltp.Float64
			s.LTP = &v
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// AllHistoricalOrders returns every order outcome, oldest first so later
// consumers can break ties on recency deterministically.
func (r *Repository) AllHistoricalOrders() ([]HistoricalOrder, error) {
	rows, err := r.db.Query(`
		SELECT client_id, symbol, size_bucket, volatility_bucket, algo_used, aggression_level, executed_at
		FROM historical_orders
		ORDER BY executed_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical orders: %w", err)
	}
	defer rows.Close()

	var orders []HistoricalOrder
	for rows.Next() {
		var o HistoricalOrder
		if err := rows.Scan(&o.ClientID, &o.Symbol, &o.SizeBucket, &o.VolatilityBucket, &o.AlgoUsed, &o.AggressionLevel, &o.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan historical order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// PriceCloses returns the close series for a symbol ordered by timestamp.
func (r *Repository) PriceCloses(symbol string) ([]float64, error) {
	rows, err := r.db.Query(`
		SELECT close FROM price_history
		WHERE symbol = ?
		ORDER BY ts ASC
	`, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history for %s: %w", symbol, err)
	}
	defer rows.Close()

	var closes []float64
	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan close: %w", err)
		}
		closes = append(closes, c)
	}
	return closes, rows.Err()
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
