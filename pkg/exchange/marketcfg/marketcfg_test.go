package marketcfg

import (
	"context"
	"testing"
	"time"
)

func at(hhmm string) time.Time {
	ts, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestValidate(t *testing.T) {
	good := &MarketConfig{
		Windows:          []Window{{Open: "09:00", Close: "12:00"}},
		PriceBandPercent: 20,
		ReferencePrice:   100,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := []*MarketConfig{
		{Windows: []Window{{Open: "9am", Close: "12:00"}}},
		{Windows: []Window{{Open: "09:00", Close: "25:00"}}},
		{Windows: []Window{{Open: "09:60", Close: "12:00"}}},
		{PriceBandPercent: -1},
		{ReferencePrice: -100},
		{MatchingMode: "hybrid"},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("config %d should be invalid", i)
		}
	}

	auction := &MarketConfig{MatchingMode: ModeAuction}
	if err := auction.Validate(); err != nil {
		t.Errorf("auction mode should validate: %v", err)
	}
	if !auction.CallAuctionMode() {
		t.Error("CallAuctionMode should report true")
	}
	if (&MarketConfig{}).CallAuctionMode() {
		t.Error("empty mode means continuous")
	}
}

func TestIsOpen(t *testing.T) {
	cfg := &MarketConfig{Windows: []Window{
		{Open: "09:00", Close: "12:00"},
		{Open: "14:00", Close: "17:00"},
	}}

	cases := []struct {
		at   string
		open bool
	}{
		{"08:59", false},
		{"09:00", true},
		{"11:59", true},
		{"12:00", false}, // close is exclusive
		{"13:00", false},
		{"14:00", true},
		{"16:30", true},
		{"17:00", false},
	}
	for _, c := range cases {
		if got := cfg.IsOpen(at(c.at)); got != c.open {
			t.Errorf("IsOpen(%s) = %v, want %v", c.at, got, c.open)
		}
	}
}

func TestIsOpenMidnightWrap(t *testing.T) {
	cfg := &MarketConfig{Windows: []Window{{Open: "22:00", Close: "02:00"}}}
	for _, c := range []struct {
		at   string
		open bool
	}{
		{"21:59", false},
		{"22:00", true},
		{"23:30", true},
		{"01:59", true},
		{"02:00", false},
		{"12:00", false},
	} {
		if got := cfg.IsOpen(at(c.at)); got != c.open {
			t.Errorf("IsOpen(%s) = %v, want %v", c.at, got, c.open)
		}
	}
}

func TestNoWindowsMeansAlwaysOpen(t *testing.T) {
	cfg := &MarketConfig{}
	if !cfg.IsOpen(at("03:17")) {
		t.Error("empty window list should mean always open")
	}
}

func TestWithinBand(t *testing.T) {
	cfg := &MarketConfig{PriceBandPercent: 20, ReferencePrice: 100}
	for _, c := range []struct {
		price int64
		ok    bool
	}{
		{80, true},
		{79, false},
		{120, true},
		{121, false},
		{100, true},
	} {
		if got := cfg.WithinBand(c.price); got != c.ok {
			t.Errorf("WithinBand(%d) = %v, want %v", c.price, got, c.ok)
		}
	}

	// Band disabled when either knob is zero.
	if !(&MarketConfig{ReferencePrice: 100}).WithinBand(1) {
		t.Error("zero band percent should disable the check")
	}
	if !(&MarketConfig{PriceBandPercent: 20}).WithinBand(1_000_000) {
		t.Error("zero reference price should disable the check")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	cfg, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if len(cfg.Windows) != 0 || cfg.PriceBandPercent != 0 {
		t.Errorf("fresh store should return a permissive default, got %+v", cfg)
	}

	want := &MarketConfig{
		Windows:          []Window{{Open: "09:00", Close: "17:00"}},
		PriceBandPercent: 10,
		ReferencePrice:   50,
	}
	if err := store.Set(ctx, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PriceBandPercent != 10 || got.ReferencePrice != 50 || len(got.Windows) != 1 {
		t.Errorf("got %+v, want %+v", got, want)
	}

	price0, err := store.LastTradePrice(ctx, "CAMP")
	if err != nil || price0 != 0 {
		t.Errorf("unset last price = %d, %v, want 0, nil", price0, err)
	}
	if err := store.SetLastTradePrice(ctx, "CAMP", 42); err != nil {
		t.Fatalf("set last price: %v", err)
	}
	price, err := store.LastTradePrice(ctx, "CAMP")
	if err != nil {
		t.Fatalf("last price: %v", err)
	}
	if price != 42 {
		t.Errorf("last price = %d, want 42", price)
	}
}
