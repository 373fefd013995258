package exchange

import (
	"math"
	"sync"

	"github.com/campstock/exchange/pkg/exchange/model"
)

// IPOPool is the administratively managed supply of unissued shares
// sold at a fixed issue price. Buy orders consume it before matching
// against other participants.
type IPOPool struct {
	mu              sync.Mutex
	initialShares   int64
	sharesRemaining int64
	issuePrice      int64
}

func NewIPOPool() *IPOPool {
	return &IPOPool{}
}

// Reset reinitializes the pool.
func (p *IPOPool) Reset(shares, price int64) error {
	if shares <= 0 || price <= 0 || price > math.MaxInt64/shares {
		return ErrInvalidParameters
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initialShares = shares
	p.sharesRemaining = shares
	p.issuePrice = price
	return nil
}

// Update replaces only the provided fields. Setting shares remaining
// to zero turns off pool supply so matching falls back to peer-to-peer
// price discovery.
func (p *IPOPool) Update(sharesRemaining, issuePrice *int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	shares, price := p.sharesRemaining, p.issuePrice
	if sharesRemaining != nil {
		if *sharesRemaining < 0 {
			return ErrInvalidParameters
		}
		shares = *sharesRemaining
	}
	if issuePrice != nil {
		if *issuePrice <= 0 {
			return ErrInvalidParameters
		}
		price = *issuePrice
	}
	if shares > 0 && price > math.MaxInt64/shares {
		return ErrInvalidParameters
	}
	p.sharesRemaining = shares
	p.issuePrice = price
	// raising remaining above the initial count grows the pool
	if p.sharesRemaining > p.initialShares {
		p.initialShares = p.sharesRemaining
	}
	return nil
}

// Quote returns the issue price when the pool can serve a buy at the
// given limit (or any price for market orders).
func (p *IPOPool) Quote(limit int64, market bool) (price int64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sharesRemaining == 0 {
		return 0, false
	}
	if !market && limit < p.issuePrice {
		return 0, false
	}
	return p.issuePrice, true
}

// Take consumes up to qty shares, returning how many were taken and
// at what price.
func (p *IPOPool) Take(qty int64) (taken, price int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if qty <= 0 || p.sharesRemaining == 0 {
		return 0, p.issuePrice
	}
	taken = min(qty, p.sharesRemaining)
	p.sharesRemaining -= taken
	return taken, p.issuePrice
}

// Restore puts shares back after a failed settlement leg.
func (p *IPOPool) Restore(qty int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sharesRemaining += qty
	if p.sharesRemaining > p.initialShares {
		p.sharesRemaining = p.initialShares
	}
}

func (p *IPOPool) Status() model.IPOStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return model.IPOStatus{
		InitialShares:   p.initialShares,
		SharesRemaining: p.sharesRemaining,
		IssuePrice:      p.issuePrice,
	}
}
