package orderbook

// PriceHeap tracks the distinct price levels of one book side. Max
// order for bids, min for asks. Pushing a price already present is a
// no-op, so one heap entry exists per live level.
type PriceHeap struct {
	prices []int64
	seen   map[int64]bool
	max    bool
}

func NewPriceHeap(max bool) *PriceHeap {
	return &PriceHeap{
		seen: make(map[int64]bool),
		max:  max,
	}
}

func (h *PriceHeap) Len() int { return len(h.prices) }

func (h *PriceHeap) Less(i, j int) bool {
	if h.max {
		return h.prices[i] > h.prices[j]
	}
	return h.prices[i] < h.prices[j]
}

func (h *PriceHeap) Swap(i, j int) {
	h.prices[i], h.prices[j] = h.prices[j], h.prices[i]
}

func (h *PriceHeap) Push(x any) {
	price := x.(int64)
	if h.seen[price] {
		return
	}
	h.seen[price] = true
	h.prices = append(h.prices, price)
}

func (h *PriceHeap) Pop() any {
	n := len(h.prices)
	price := h.prices[n-1]
	h.prices = h.prices[:n-1]
	delete(h.seen, price)
	return price
}

// Peek returns the best price without removing it.
func (h *PriceHeap) Peek() (int64, bool) {
	if len(h.prices) == 0 {
		return 0, false
	}
	return h.prices[0], true
}
