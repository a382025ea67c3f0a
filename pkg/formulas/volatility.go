package formulas

import (
	"github.com/markcheno/go-talib"
)

// IntradayVolatility estimates intraday volatility from a series of recent
// closing prices: the population standard deviation of one-period
// percentage returns. The return series is the whole observation window,
// not a sample of one.
//
// Args:
//   closes: Array of closing prices, oldest first
//
// Returns:
//   Volatility estimate (e.g. 0.012 = 1.2%) or nil if insufficient data
func IntradayVolatility(closes []float64) *float64 {
	if len(closes) < 3 {
		return nil
	}

	// One-period rate of change: (close[i] - close[i-1]) / close[i-1]
	returns := talib.Rocp(closes, 1)

	// Rocp emits zeros for the warm-up period; drop them
	if len(returns) <= 1 {
		return nil
	}
	returns = returns[1:]

	vol := PopStdDev(returns)
	if isNaN(vol) || vol <= 0 {
		return nil
	}

	return &vol
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
