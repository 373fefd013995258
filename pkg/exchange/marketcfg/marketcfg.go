package marketcfg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is one daily trading window, "HH:MM" inclusive open to
// exclusive close. A window closing before it opens wraps midnight.
type Window struct {
	Open  string `json:"open" yaml:"open"`
	Close string `json:"close" yaml:"close"`
}

// Matching regimes. In the auction regime limit orders accumulate on
// the book without crossing until an admin triggers the call auction.
const (
	ModeContinuous = "continuous"
	ModeAuction    = "auction"
)

// MarketConfig is the ambient trading policy: when order placement is
// allowed and how far limit prices may stray from the reference price.
// It is loaded once per operation and passed into the engine, never
// mutated by trading activity.
type MarketConfig struct {
	// Windows when order placement and matching are permitted. Empty
	// means the market is always open. Admin-triggered auction and
	// settlement bypass the windows.
	Windows []Window `json:"windows" yaml:"windows"`
	// MatchingMode selects the matching regime. Empty means continuous.
	MatchingMode string `json:"matching_mode" yaml:"matching_mode"`
	// PriceBandPercent is the allowed band around ReferencePrice for
	// limit prices, in percent. Zero disables the check.
	PriceBandPercent int64 `json:"price_band_percent" yaml:"price_band_percent"`
	// ReferencePrice anchors the band. Zero disables the check.
	ReferencePrice int64 `json:"reference_price" yaml:"reference_price"`
}

func (c *MarketConfig) Validate() error {
	for _, w := range c.Windows {
		if _, err := parseHHMM(w.Open); err != nil {
			return fmt.Errorf("window open %q: %w", w.Open, err)
		}
		if _, err := parseHHMM(w.Close); err != nil {
			return fmt.Errorf("window close %q: %w", w.Close, err)
		}
	}
	switch c.MatchingMode {
	case "", ModeContinuous, ModeAuction:
	default:
		return fmt.Errorf("unknown matching mode %q", c.MatchingMode)
	}
	if c.PriceBandPercent < 0 {
		return fmt.Errorf("price band percent must be >= 0")
	}
	if c.ReferencePrice < 0 {
		return fmt.Errorf("reference price must be >= 0")
	}
	return nil
}

// CallAuctionMode reports whether the market runs in the auction
// regime, where placed orders rest without continuous matching.
func (c *MarketConfig) CallAuctionMode() bool {
	return c.MatchingMode == ModeAuction
}

// IsOpen reports whether t falls inside any trading window.
func (c *MarketConfig) IsOpen(t time.Time) bool {
	if len(c.Windows) == 0 {
		return true
	}
	minute := t.Hour()*60 + t.Minute()
	for _, w := range c.Windows {
		open, _ := parseHHMM(w.Open)
		close, _ := parseHHMM(w.Close)
		if open <= close {
			if minute >= open && minute < close {
				return true
			}
		} else if minute >= open || minute < close {
			return true
		}
	}
	return false
}

// WithinBand reports whether a limit price sits inside the configured
// band around the reference price.
func (c *MarketConfig) WithinBand(price int64) bool {
	if c.PriceBandPercent == 0 || c.ReferencePrice == 0 {
		return true
	}
	band := c.ReferencePrice * c.PriceBandPercent / 100
	return price >= c.ReferencePrice-band && price <= c.ReferencePrice+band
}

func parseHHMM(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute")
	}
	return h*60 + m, nil
}

// Store persists the market config and the last traded price per
// symbol (the call auction tie-break anchor).
type Store interface {
	Get(ctx context.Context) (*MarketConfig, error)
	Set(ctx context.Context, cfg *MarketConfig) error
	LastTradePrice(ctx context.Context, symbol string) (int64, error)
	SetLastTradePrice(ctx context.Context, symbol string, price int64) error
}
