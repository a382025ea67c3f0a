package engine

import (
	"time"

	"github.com/aristath/precept/internal/modules/refdata"
)

// testNow is a Monday at 10:00, mid-session, 360 minutes before the close.
var testNow = time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

// testDataset mirrors a slice of the embedded seed data: one VWAP-leaning
// client on a deep large cap, one POV-leaning client on a mid cap, and an
// ICEBERG-leaning client on a thin small cap.
func testDataset() *refdata.Dataset {
	return &refdata.Dataset{
		Clients: map[string]refdata.ClientProfile{
			"CLT001": {ClientID: "CLT001", UrgencyProfile: "Low", PreferredAlgo: "VWAP", AggressionBias: "Low", ParticipationPref: 0.10},
			"CLT002": {ClientID: "CLT002", UrgencyProfile: "High", PreferredAlgo: "POV", AggressionBias: "High", ParticipationPref: 0.18},
			"CLT004": {ClientID: "CLT004", UrgencyProfile: "Low", PreferredAlgo: "ICEBERG", AggressionBias: "Low", ParticipationPref: 0.08},
		},
		Instruments: map[string]refdata.InstrumentProfile{
			"AAPL": {Symbol: "AAPL", ADV: 85_000_000, TypicalSpread: 0.02, BaselineVol: 0.009, TickSize: 0.01},
			"RLWY": {Symbol: "RLWY", ADV: 6_500_000, TypicalSpread: 0.08, BaselineVol: 0.016, TickSize: 0.01},
			"KMDA": {Symbol: "KMDA", ADV: 1_800_000, TypicalSpread: 0.12, BaselineVol: 0.018, TickSize: 0.05},
		},
		Snapshots: map[string]refdata.MarketSnapshot{
			"AAPL": {Symbol: "AAPL", Bid: floatPtr(189.98), Ask: floatPtr(190.03), LTP: floatPtr(190.00), Spread: 0.05, IntradayVol: 0.008, LastTradeSize: 1200},
			"RLWY": {Symbol: "RLWY", Bid: floatPtr(56.30), Ask: floatPtr(56.40), LTP: floatPtr(56.35), Spread: 0.10, IntradayVol: 0.013, LastTradeSize: 600},
			"KMDA": {Symbol: "KMDA", Bid: floatPtr(14.80), Ask: floatPtr(14.95), LTP: floatPtr(14.88), Spread: 0.15, IntradayVol: 0.017, LastTradeSize: 350},
		},
		Orders: []refdata.HistoricalOrder{
			{ClientID: "CLT001", Symbol: "AAPL", SizeBucket: "medium", VolatilityBucket: "Low", AlgoUsed: "VWAP", AggressionLevel: "Low", ExecutedAt: 1749027600},
			{ClientID: "CLT001", Symbol: "MSFT", SizeBucket: "medium", VolatilityBucket: "Low", AlgoUsed: "VWAP", AggressionLevel: "Low", ExecutedAt: 1749287400},
			{ClientID: "CLT001", Symbol: "AAPL", SizeBucket: "medium", VolatilityBucket: "Low", AlgoUsed: "VWAP", AggressionLevel: "Medium", ExecutedAt: 1749633000},
			{ClientID: "CLT001", Symbol: "AAPL", SizeBucket: "small", VolatilityBucket: "Medium", AlgoUsed: "VWAP", AggressionLevel: "Low", ExecutedAt: 1749892200},
			{ClientID: "CLT001", Symbol: "AAPL", SizeBucket: "medium", VolatilityBucket: "Low", AlgoUsed: "VWAP", AggressionLevel: "Low", ExecutedAt: 1750238400},
			{ClientID: "CLT002", Symbol: "RLWY", SizeBucket: "medium", VolatilityBucket: "Medium", AlgoUsed: "POV", AggressionLevel: "High", ExecutedAt: 1749114000},
			{ClientID: "CLT002", Symbol: "RLWY", SizeBucket: "medium", VolatilityBucket: "Medium", AlgoUsed: "POV", AggressionLevel: "High", ExecutedAt: 1749459600},
			{ClientID: "CLT002", Symbol: "RLWY", SizeBucket: "medium", VolatilityBucket: "Medium", AlgoUsed: "POV", AggressionLevel: "High", ExecutedAt: 1750064400},
			{ClientID: "CLT004", Symbol: "KMDA", SizeBucket: "small", VolatilityBucket: "Medium", AlgoUsed: "ICEBERG", AggressionLevel: "Low", ExecutedAt: 1749286800},
			{ClientID: "CLT004", Symbol: "KMDA", SizeBucket: "medium", VolatilityBucket: "Medium", AlgoUsed: "ICEBERG", AggressionLevel: "Low", ExecutedAt: 1749632400},
			{ClientID: "CLT004", Symbol: "KMDA", SizeBucket: "small", VolatilityBucket: "Medium", AlgoUsed: "ICEBERG", AggressionLevel: "Low", ExecutedAt: 1749978000},
		},
		LoadedAt: testNow,
	}
}
