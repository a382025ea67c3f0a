// Package refdata loads and serves the reference data the decision pipeline
// reads: client execution profiles, instrument statistics, market snapshots
// and historical order outcomes. Everything lives in SQLite and is served
// from an immutable in-memory Dataset that a background job rebuilds and
// swaps atomically.
package refdata

import "time"

// ClientProfile describes a client's standing execution preferences.
type ClientProfile struct {
	ClientID          string
	UrgencyProfile    string // "Low", "Medium", "High"
	PreferredAlgo     string // may be empty
	AggressionBias    string
	ParticipationPref float64
}

// InstrumentProfile holds per-symbol reference statistics.
type InstrumentProfile struct {
	Symbol        string
	ADV           float64 // average daily volume, shares
	TypicalSpread float64
	BaselineVol   float64
	TickSize      float64
}

// MarketSnapshot is the latest observed market state for a symbol.
// Bid, ask and last traded price may each be absent.
type MarketSnapshot struct {
	Symbol        string
	Bid           *float64
	Ask           *float64
	LTP           *float64
	Spread        float64
	IntradayVol   float64
	LastTradeSize float64
}

// HistoricalOrder is one executed order outcome, the raw material for
// pattern mining.
type HistoricalOrder struct {
	ClientID         string
	Symbol           string
	SizeBucket       string // "small", "medium", "large"
	VolatilityBucket string // "Low", "Medium", "High"
	AlgoUsed         string
	AggressionLevel  string
	ExecutedAt       int64 // unix seconds
}

// PricePoint is a single close in a symbol's price history.
type PricePoint struct {
	Symbol string
	TS     int64
	Close  float64
}

// Dataset is an immutable snapshot of all reference data. A request reads
// one Dataset for its whole lifetime; refreshes build a new one and swap it
// in, so readers never observe partial state.
type Dataset struct {
	Clients     map[string]ClientProfile
	Instruments map[string]InstrumentProfile
	Snapshots   map[string]MarketSnapshot
	Orders      []HistoricalOrder
	LoadedAt    time.Time
}

// Client looks up a client profile by id.
func (d *Dataset) Client(clientID string) (ClientProfile, bool) {
	c, ok := d.Clients[clientID]
	return c, ok
}

// Instrument looks up instrument statistics by symbol.
func (d *Dataset) Instrument(symbol string) (InstrumentProfile, bool) {
	i, ok := d.Instruments[symbol]
	return i, ok
}

// Snapshot looks up the market snapshot for a symbol.
func (d *Dataset) Snapshot(symbol string) (MarketSnapshot, bool) {
	s, ok := d.Snapshots[symbol]
	return s, ok
}

// OrdersForClient returns the historical orders recorded for one client,
// oldest first.
func (d *Dataset) OrdersForClient(clientID string) []HistoricalOrder {
	out := make([]HistoricalOrder, 0)
	for _, o := range d.Orders {
		if o.ClientID == clientID {
			out = append(out, o)
		}
	}
	return out
}
