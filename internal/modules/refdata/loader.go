package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/precept/pkg/embedded"
	"github.com/aristath/precept/pkg/formulas"
)

// Loader seeds the reference tables from CSV fixtures and assembles
// in-memory datasets from them.
type Loader struct {
	repo    *Repository
	dataDir string
	log     zerolog.Logger
}

// NewLoader creates a new reference data loader
func NewLoader(repo *Repository, dataDir string, log zerolog.Logger) *Loader {
	return &Loader{
		repo:    repo,
		dataDir: dataDir,
		log:     log.With().Str("component", "refdata_loader").Logger(),
	}
}

// SeedIfEmpty imports the bundled CSV fixtures into any reference table that
// is still empty. A file of the same name in the data directory takes
// precedence over the embedded copy, so deployments can ship their own
// reference data without rebuilding the binary.
func (l *Loader) SeedIfEmpty() error {
	counts, err := l.repo.Counts()
	if err != nil {
		return fmt.Errorf("failed to inspect reference tables: %w", err)
	}

	if counts.Clients == 0 {
		if err := l.seedClients(); err != nil {
			return err
		}
	}
	if counts.Instruments == 0 {
		if err := l.seedInstruments(); err != nil {
			return err
		}
	}
	if counts.Snapshots == 0 {
		if err := l.seedSnapshots(); err != nil {
			return err
		}
	}
	if counts.HistoricalOrders == 0 {
		if err := l.seedHistoricalOrders(); err != nil {
			return err
		}
	}
	if counts.PricePoints == 0 {
		if err := l.seedPriceHistory(); err != nil {
			return err
		}
	}

	return nil
}

// BuildDataset reads every reference table and assembles an immutable
// Dataset. Snapshots without a usable intraday volatility get one derived
// from recent closes when enough history exists.
func (l *Loader) BuildDataset() (*Dataset, error) {
	clients, err := l.repo.AllClients()
	if err != nil {
		return nil, err
	}
	instruments, err := l.repo.AllInstruments()
	if err != nil {
		return nil, err
	}
	snapshots, err := l.repo.AllSnapshots()
	if err != nil {
		return nil, err
	}
	orders, err := l.repo.AllHistoricalOrders()
	if err != nil {
		return nil, err
	}

	d := &Dataset{
		Clients:     make(map[string]ClientProfile, len(clients)),
		Instruments: make(map[string]InstrumentProfile, len(instruments)),
		Snapshots:   make(map[string]MarketSnapshot, len(snapshots)),
		Orders:      orders,
		LoadedAt:    time.Now(),
	}
	for _, c := range clients {
		d.Clients[c.ClientID] = c
	}
	for _, ins := range instruments {
		d.Instruments[ins.Symbol] = ins
	}
	for _, s := range snapshots {
		if s.IntradayVol <= 0 {
			closes, err := l.repo.PriceCloses(s.Symbol)
			if err != nil {
				return nil, err
			}
			if v := formulas.IntradayVolatility(closes); v != nil {
				l.log.Debug().
					Str("symbol", s.Symbol).
					Float64("intraday_vol", *v).
					Msg("Derived intraday volatility from price history")
				s.IntradayVol = *v
			}
		}
		d.Snapshots[s.Symbol] = s
	}

	return d, nil
}

func (l *Loader) seedClients() error {
	records, err := l.readCSV("clients.csv")
	if err != nil {
		return err
	}

	clients := make([]ClientProfile, 0, len(records))
	for _, rec := range records {
		pref, err := parseFloat(rec[4])
		if err != nil {
			return fmt.Errorf("clients.csv: bad participation_pref %q: %w", rec[4], err)
		}
		clients = append(clients, ClientProfile{
			ClientID:          strings.TrimSpace(rec[0]),
			UrgencyProfile:    strings.TrimSpace(rec[1]),
			PreferredAlgo:     strings.TrimSpace(rec[2]),
			AggressionBias:    strings.TrimSpace(rec[3]),
			ParticipationPref: pref,
		})
	}

	if err := l.repo.InsertClients(clients); err != nil {
		return err
	}
	l.log.Info().Int("rows", len(clients)).Msg("Seeded clients")
	return nil
}

func (l *Loader) seedInstruments() error {
	records, err := l.readCSV("instruments.csv")
	if err != nil {
		return err
	}

	instruments := make([]InstrumentProfile, 0, len(records))
	for _, rec := range records {
		adv, err := parseFloat(rec[1])
		if err != nil {
			return fmt.Errorf("instruments.csv: bad adv %q: %w", rec[1], err)
		}
		spread, err := parseFloat(rec[2])
		if err != nil {
			return fmt.Errorf("instruments.csv: bad typical_spread %q: %w", rec[2], err)
		}
		vol, err := parseFloat(rec[3])
		if err != nil {
			return fmt.Errorf("instruments.csv: bad baseline_vol %q: %w", rec[3], err)
		}
		tick, err := parseFloat(rec[4])
		if err != nil {
			return fmt.Errorf("instruments.csv: bad tick_size %q: %w", rec[4], err)
		}
		instruments = append(instruments, InstrumentProfile{
			Symbol:        strings.TrimSpace(rec[0]),
			ADV:           adv,
			TypicalSpread: spread,
			BaselineVol:   vol,
			TickSize:      tick,
		})
	}

	if err := l.repo.InsertInstruments(instruments); err != nil {
		return err
	}
	l.log.Info().Int("rows", len(instruments)).Msg("Seeded instruments")
	return nil
}

func (l *Loader) seedSnapshots() error {
	records, err := l.readCSV("market_snapshot.csv")
	if err != nil {
		return err
	}

	snapshots := make([]MarketSnapshot, 0, len(records))
	for _, rec := range records {
		bid, err := parseOptionalFloat(rec[1])
		if err != nil {
			return fmt.Errorf("market_snapshot.csv: bad bid %q: %w", rec[1], err)
		}
		ask, err := parseOptionalFloat(rec[2])
		if err != nil {
			return fmt.Errorf("market_snapshot.csv: bad ask %q: %w", rec[2], err)
		}
		ltp, err := parseOptionalFloat(rec[3])
		if err != nil {
			return fmt.Errorf("market_snapshot.csv: bad ltp %q: %w", rec[3], err)
		}
		spread, err := parseFloat(rec[4])
		if err != nil {
			return fmt.Errorf("market_snapshot.csv: bad spread %q: %w", rec[4], err)
		}
		vol, err := parseFloat(rec[5])
		if err != nil {
			return fmt.Errorf("market_snapshot.csv: bad intraday_vol %q: %w", rec[5], err)
		}
		lastSize, err := parseFloat(rec[6])
		if err != nil {
			return fmt.Errorf("market_snapshot.csv: bad last_trade_size %q: %w", rec[6], err)
		}
		snapshots = append(snapshots, MarketSnapshot{
			Symbol:        strings.TrimSpace(rec[0]),
			Bid:           bid,
			Ask:           ask,
			LTP:           ltp,
			Spread:        spread,
			IntradayVol:   vol,
			LastTradeSize: lastSize,
		})
	}

	if err := l.repo.InsertSnapshots(snapshots); err != nil {
		return err
	}
	l.log.Info().Int("rows", len(snapshots)).Msg("Seeded market snapshots")
	return nil
}

func (l *Loader) seedHistoricalOrders() error {
	records, err := l.readCSV("historical_orders.csv")
	if err != nil {
		return err
	}

	orders := make([]HistoricalOrder, 0, len(records))
	for _, rec := range records {
		executedAt, err := parseInt(rec[6])
		if err != nil {
			return fmt.Errorf("historical_orders.csv: bad executed_at %q: %w", rec[6], err)
		}
		orders = append(orders, HistoricalOrder{
			ClientID:         strings.TrimSpace(rec[0]),
			Symbol:           strings.TrimSpace(rec[1]),
			SizeBucket:       strings.TrimSpace(rec[2]),
			VolatilityBucket: strings.TrimSpace(rec[3]),
			AlgoUsed:         strings.TrimSpace(rec[4]),
			AggressionLevel:  strings.TrimSpace(rec[5]),
			ExecutedAt:       executedAt,
		})
	}

	if err := l.repo.InsertHistoricalOrders(orders); err != nil {
		return err
	}
	l.log.Info().Int("rows", len(orders)).Msg("Seeded historical orders")
	return nil
}

func (l *Loader) seedPriceHistory() error {
	records, err := l.readCSV("price_history.csv")
	if err != nil {
		return err
	}

	points := make([]PricePoint, 0, len(records))
	for _, rec := range records {
		ts, err := parseInt(rec[1])
		if err != nil {
			return fmt.Errorf("price_history.csv: bad ts %q: %w", rec[1], err)
		}
		closePx, err := parseFloat(rec[2])
		if err != nil {
			return fmt.Errorf("price_history.csv: bad close %q: %w", rec[2], err)
		}
		points = append(points, PricePoint{
			Symbol: strings.TrimSpace(rec[0]),
			TS:     ts,
			Close:  closePx,
		})
	}

	if err := l.repo.InsertPricePoints(points); err != nil {
		return err
	}
	l.log.Info().Int("rows", len(points)).Msg("Seeded price history")
	return nil
}

// readCSV returns the records of a seed file with the header row stripped.
func (l *Loader) readCSV(name string) ([][]string, error) {
	var reader io.Reader

	path := filepath.Join(l.dataDir, name)
	if f, err := os.Open(path); err == nil {
		defer f.Close()
		l.log.Debug().Str("path", path).Msg("Using seed file from data directory")
		reader = f
	} else {
		f, err := embedded.Files.Open("seed/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded seed %s: %w", name, err)
		}
		defer f.Close()
		reader = f
	}

	records, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("seed file %s has no data rows", name)
	}
	return records[1:], nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
