package ledger

import (
	"errors"
	"math"
	"sort"
	"sync"
)

var (
	ErrUnknownAccount      = errors.New("unknown account")
	ErrAccountExists       = errors.New("account already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceOverflow     = errors.New("balance overflow")
)

// Balance is a point/share snapshot of one account.
type Balance struct {
	Points int64
	Shares int64
}

type account struct {
	mu     sync.Mutex
	points int64
	shares int64
}

// Ledger owns all account balances. Both balances are non-negative at
// all times; deltas that would drive either negative are rejected
// without applying the other leg.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[string]*account
}

func New() *Ledger {
	return &Ledger{accounts: make(map[string]*account)}
}

func (l *Ledger) CreateAccount(id string, points, shares int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[id]; ok {
		return ErrAccountExists
	}
	if points < 0 || shares < 0 {
		return ErrInsufficientBalance
	}
	l.accounts[id] = &account{points: points, shares: shares}
	return nil
}

// ApplyDelta adjusts both balances of one account atomically.
func (l *Ledger) ApplyDelta(id string, pointDelta, shareDelta int64) error {
	acc, err := l.get(id)
	if err != nil {
		return err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()
	if pointDelta > 0 && acc.points > math.MaxInt64-pointDelta {
		return ErrBalanceOverflow
	}
	if shareDelta > 0 && acc.shares > math.MaxInt64-shareDelta {
		return ErrBalanceOverflow
	}
	if acc.points+pointDelta < 0 || acc.shares+shareDelta < 0 {
		return ErrInsufficientBalance
	}
	acc.points += pointDelta
	acc.shares += shareDelta
	return nil
}

// Transfer settles one fill: the buyer pays points for shares, the
// seller the reverse. Accounts are locked in ascending id order so
// concurrent transfers cannot deadlock. All-or-nothing.
func (l *Ledger) Transfer(buyerID, sellerID string, points, shares int64) error {
	// a negative amount here means a caller's notional wrapped int64
	if points < 0 || shares < 0 {
		return ErrBalanceOverflow
	}
	buyer, err := l.get(buyerID)
	if err != nil {
		return err
	}
	seller, err := l.get(sellerID)
	if err != nil {
		return err
	}

	locks := map[string]*account{buyerID: buyer, sellerID: seller}
	ids := make([]string, 0, len(locks))
	for id := range locks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		locks[id].mu.Lock()
	}
	defer func() {
		for _, id := range ids {
			locks[id].mu.Unlock()
		}
	}()

	if buyer.points < points || seller.shares < shares {
		return ErrInsufficientBalance
	}
	if seller.points > math.MaxInt64-points || buyer.shares > math.MaxInt64-shares {
		return ErrBalanceOverflow
	}
	buyer.points -= points
	buyer.shares += shares
	seller.points += points
	seller.shares -= shares
	return nil
}

func (l *Ledger) GetBalance(id string) (Balance, error) {
	acc, err := l.get(id)
	if err != nil {
		return Balance{}, err
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return Balance{Points: acc.points, Shares: acc.shares}, nil
}

// ConvertShares zeroes an account's share balance, crediting
// shares*price points. Returns the number of shares converted.
func (l *Ledger) ConvertShares(id string, price int64) (int64, error) {
	acc, err := l.get(id)
	if err != nil {
		return 0, err
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	converted := acc.shares
	if converted > 0 && (price > math.MaxInt64/converted || acc.points > math.MaxInt64-converted*price) {
		return 0, ErrBalanceOverflow
	}
	acc.points += converted * price
	acc.shares = 0
	return converted, nil
}

// AccountIDs lists every known account id.
func (l *Ledger) AccountIDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.accounts))
	for id := range l.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (l *Ledger) get(id string) (*account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acc, ok := l.accounts[id]
	if !ok {
		return nil, ErrUnknownAccount
	}
	return acc, nil
}
