package memory

import "fmt"

// ByteBudget tracks byte usage for memory writes. The invariant
// 0 <= used <= max holds at all times: Consume rejects over-budget
// consumption before committing, Credit floors at zero.
//
// Budget state is owned by the store that holds it; all mutation goes
// through Consume/Credit.
type ByteBudget struct {
	maxBytes  int
	usedBytes int
}

// NewByteBudget creates a budget with the given capacity in bytes.
func NewByteBudget(maxBytes int) *ByteBudget {
	return &ByteBudget{maxBytes: maxBytes}
}

// MaxBytes returns the budget capacity.
func (b *ByteBudget) MaxBytes() int { return b.maxBytes }

// UsedBytes returns the bytes currently charged.
func (b *ByteBudget) UsedBytes() int { return b.usedBytes }

// Remaining returns the unused capacity, floored at zero.
func (b *ByteBudget) Remaining() int {
	return max(b.maxBytes-b.usedBytes, 0)
}

// Consume charges n bytes. Returns false without mutating when the charge
// would exceed capacity. Negative n is a programming error, not a
// policy-visible failure, and panics.
func (b *ByteBudget) Consume(n int) bool {
	if n < 0 {
		panic(fmt.Sprintf("memory: cannot consume negative bytes (%d)", n))
	}
	if b.usedBytes+n > b.maxBytes {
		return false
	}
	b.usedBytes += n
	return true
}

// Credit returns n bytes to the budget, floored at zero used. Negative n
// panics for the same reason as Consume.
func (b *ByteBudget) Credit(n int) {
	if n < 0 {
		panic(fmt.Sprintf("memory: cannot credit negative bytes (%d)", n))
	}
	b.usedBytes = max(b.usedBytes-n, 0)
}

// reset zeroes usage. Only the owning store's Clear may call this.
func (b *ByteBudget) reset() {
	b.usedBytes = 0
}
