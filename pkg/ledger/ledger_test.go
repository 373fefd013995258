package ledger

import (
	"math"
	"sync"
	"testing"
)

func TestCreateAccount(t *testing.T) {
	l := New()
	if err := l.CreateAccount("camper-1", 1000, 0); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := l.CreateAccount("camper-1", 500, 0); err != ErrAccountExists {
		t.Errorf("duplicate create should fail with ErrAccountExists, got %v", err)
	}
	if err := l.CreateAccount("camper-2", -1, 0); err != ErrInsufficientBalance {
		t.Errorf("negative opening balance should be rejected, got %v", err)
	}

	bal, err := l.GetBalance("camper-1")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if bal.Points != 1000 || bal.Shares != 0 {
		t.Errorf("balance = %+v, want 1000 points 0 shares", bal)
	}

	if _, err := l.GetBalance("nobody"); err != ErrUnknownAccount {
		t.Errorf("unknown account should fail with ErrUnknownAccount, got %v", err)
	}
}

func TestApplyDeltaAllOrNothing(t *testing.T) {
	l := New()
	if err := l.CreateAccount("camper-1", 100, 5); err != nil {
		t.Fatal(err)
	}

	if err := l.ApplyDelta("camper-1", -40, 2); err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	// Points leg fine, shares leg would go negative: nothing moves.
	if err := l.ApplyDelta("camper-1", 10, -100); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	bal, _ := l.GetBalance("camper-1")
	if bal.Points != 60 || bal.Shares != 7 {
		t.Errorf("balance = %+v, want 60 points 7 shares", bal)
	}
}

func TestTransfer(t *testing.T) {
	l := New()
	if err := l.CreateAccount("buyer", 200, 0); err != nil {
		t.Fatal(err)
	}
	if err := l.CreateAccount("seller", 0, 10); err != nil {
		t.Fatal(err)
	}

	if err := l.Transfer("buyer", "seller", 150, 3); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	buyer, _ := l.GetBalance("buyer")
	seller, _ := l.GetBalance("seller")
	if buyer.Points != 50 || buyer.Shares != 3 {
		t.Errorf("buyer = %+v, want 50 points 3 shares", buyer)
	}
	if seller.Points != 150 || seller.Shares != 7 {
		t.Errorf("seller = %+v, want 150 points 7 shares", seller)
	}

	// Buyer cannot afford another 150: no leg moves.
	if err := l.Transfer("buyer", "seller", 150, 1); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	buyer, _ = l.GetBalance("buyer")
	seller, _ = l.GetBalance("seller")
	if buyer.Points != 50 || seller.Shares != 7 {
		t.Errorf("failed transfer must not move balances: buyer=%+v seller=%+v", buyer, seller)
	}

	if err := l.Transfer("buyer", "nobody", 1, 1); err != ErrUnknownAccount {
		t.Errorf("expected ErrUnknownAccount, got %v", err)
	}
}

func TestConvertShares(t *testing.T) {
	l := New()
	if err := l.CreateAccount("camper-1", 100, 7); err != nil {
		t.Fatal(err)
	}

	converted, err := l.ConvertShares("camper-1", 30)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if converted != 7 {
		t.Errorf("converted = %d, want 7", converted)
	}
	bal, _ := l.GetBalance("camper-1")
	if bal.Points != 310 || bal.Shares != 0 {
		t.Errorf("balance = %+v, want 310 points 0 shares", bal)
	}

	// Converting again is a no-op.
	converted, err = l.ConvertShares("camper-1", 30)
	if err != nil || converted != 0 {
		t.Errorf("second convert = %d, %v, want 0, nil", converted, err)
	}
}

func TestTransferRejectsWrappedAmounts(t *testing.T) {
	l := New()
	if err := l.CreateAccount("buyer", 100, 0); err != nil {
		t.Fatal(err)
	}
	if err := l.CreateAccount("seller", 0, 10); err != nil {
		t.Fatal(err)
	}

	// A negative amount is an upstream int64 wrap, not a real value.
	if err := l.Transfer("buyer", "seller", -8, 4); err != ErrBalanceOverflow {
		t.Fatalf("wrapped points: got %v, want ErrBalanceOverflow", err)
	}
	if err := l.Transfer("buyer", "seller", 8, -4); err != ErrBalanceOverflow {
		t.Fatalf("wrapped shares: got %v, want ErrBalanceOverflow", err)
	}

	buyer, _ := l.GetBalance("buyer")
	seller, _ := l.GetBalance("seller")
	if buyer.Points != 100 || buyer.Shares != 0 || seller.Points != 0 || seller.Shares != 10 {
		t.Errorf("rejected transfer must not move balances: buyer=%+v seller=%+v", buyer, seller)
	}
}

func TestTransferRejectsReceiverOverflow(t *testing.T) {
	l := New()
	if err := l.CreateAccount("buyer", 10, 0); err != nil {
		t.Fatal(err)
	}
	if err := l.CreateAccount("seller", math.MaxInt64, 10); err != nil {
		t.Fatal(err)
	}

	if err := l.Transfer("buyer", "seller", 10, 1); err != ErrBalanceOverflow {
		t.Fatalf("expected ErrBalanceOverflow, got %v", err)
	}
	buyer, _ := l.GetBalance("buyer")
	if buyer.Points != 10 || buyer.Shares != 0 {
		t.Errorf("rejected transfer must not move balances: buyer=%+v", buyer)
	}
}

func TestApplyDeltaRejectsOverflow(t *testing.T) {
	l := New()
	if err := l.CreateAccount("camper-1", math.MaxInt64-5, 0); err != nil {
		t.Fatal(err)
	}

	if err := l.ApplyDelta("camper-1", 6, 0); err != ErrBalanceOverflow {
		t.Fatalf("expected ErrBalanceOverflow, got %v", err)
	}
	bal, _ := l.GetBalance("camper-1")
	if bal.Points != math.MaxInt64-5 {
		t.Errorf("points = %d, want %d", bal.Points, int64(math.MaxInt64-5))
	}
}

func TestConvertSharesRejectsOverflow(t *testing.T) {
	l := New()
	if err := l.CreateAccount("camper-1", 0, 4); err != nil {
		t.Fatal(err)
	}

	if _, err := l.ConvertShares("camper-1", math.MaxInt64/2); err != ErrBalanceOverflow {
		t.Fatalf("expected ErrBalanceOverflow, got %v", err)
	}
	bal, _ := l.GetBalance("camper-1")
	if bal.Points != 0 || bal.Shares != 4 {
		t.Errorf("rejected conversion must not move balances: %+v", bal)
	}
}

func TestConcurrentTransfersConserve(t *testing.T) {
	l := New()
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		if err := l.CreateAccount(id, 1000, 100); err != nil {
			t.Fatal(err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j {
				continue
			}
			buyer, seller := ids[i], ids[j]
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := 0; k < 100; k++ {
					// Failures are fine; balances must stay consistent.
					_ = l.Transfer(buyer, seller, 3, 1)
				}
			}()
		}
	}
	wg.Wait()

	var totalPoints, totalShares int64
	for _, id := range ids {
		bal, err := l.GetBalance(id)
		if err != nil {
			t.Fatal(err)
		}
		if bal.Points < 0 || bal.Shares < 0 {
			t.Fatalf("account %s went negative: %+v", id, bal)
		}
		totalPoints += bal.Points
		totalShares += bal.Shares
	}
	if totalPoints != 4000 || totalShares != 400 {
		t.Errorf("totals changed: %d points %d shares, want 4000 and 400", totalPoints, totalShares)
	}
}

func TestAccountIDsSorted(t *testing.T) {
	l := New()
	for _, id := range []string{"charlie", "alice", "bob"} {
		if err := l.CreateAccount(id, 0, 0); err != nil {
			t.Fatal(err)
		}
	}
	ids := l.AccountIDs()
	want := []string{"alice", "bob", "charlie"}
	if len(ids) != len(want) {
		t.Fatalf("got %d ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}
