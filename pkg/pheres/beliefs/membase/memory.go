// Package membase is the in-memory belief base implementation.
package membase

import (
	"context"
	"fmt"
	"sync"

	"github.com/cognicore/pheres/pkg/pheres/internalerr"
	"github.com/cognicore/pheres/pkg/pheres/term"
)

// Base is an in-memory implementation of beliefs.Base.
type Base struct {
	mu    sync.RWMutex
	seq   int64
	facts map[string][]entry // keyed by functor/arity
}

type entry struct {
	fact term.Term
	seq  int64
}

// New creates an empty in-memory belief base.
func New() *Base {
	return &Base{facts: make(map[string][]entry)}
}

// Close implements beliefs.Base.
func (b *Base) Close() error { return nil }

// Assert adds a fact unless an identical one is already stored.
func (b *Base) Assert(ctx context.Context, fact term.Term) (bool, error) {
	key, err := indicatorKey(fact)
	if err != nil {
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.facts[key] {
		if term.Equal(e.fact, fact) {
			return false, nil
		}
	}
	b.seq++
	b.facts[key] = append(b.facts[key], entry{fact: term.Copy(fact), seq: b.seq})
	return true, nil
}

// Retract removes the first fact unifying with pattern.
func (b *Base) Retract(ctx context.Context, pattern term.Term) (term.Term, bool, error) {
	key, err := indicatorKey(pattern)
	if err != nil {
		return nil, false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	stored := b.facts[key]
	for i, e := range stored {
		if _, ok := term.Unify(pattern, e.fact, nil); ok {
			b.facts[key] = append(stored[:i:i], stored[i+1:]...)
			return e.fact, true, nil
		}
	}
	return nil, false, nil
}

// Candidates returns copies of the facts with the given indicator, in
// assertion order.
func (b *Base) Candidates(ctx context.Context, functor string, arity int) ([]term.Term, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stored := b.facts[key(functor, arity)]
	if len(stored) == 0 {
		return nil, nil
	}
	out := make([]term.Term, len(stored))
	for i, e := range stored {
		out[i] = term.Copy(e.fact)
	}
	return out, nil
}

// All returns copies of every stored fact in assertion order.
func (b *Base) All(ctx context.Context) ([]term.Term, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var entries []entry
	for _, stored := range b.facts {
		entries = append(entries, stored...)
	}
	sortBySeq(entries)

	out := make([]term.Term, len(entries))
	for i, e := range entries {
		out[i] = term.Copy(e.fact)
	}
	return out, nil
}

func sortBySeq(entries []entry) {
	// insertion sort; belief bases stay small
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].seq < entries[j-1].seq; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

func key(functor string, arity int) string {
	return fmt.Sprintf("%s/%d", functor, arity)
}

func indicatorKey(t term.Term) (string, error) {
	functor, arity, ok := term.Indicator(t)
	if !ok {
		return "", fmt.Errorf("%s is not a belief literal: %w", t, internalerr.ErrInvalidInput)
	}
	return key(functor, arity), nil
}
