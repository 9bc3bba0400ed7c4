// Package beliefs defines the belief base interface. A belief base
// stores ground-or-not literal terms; facts are immutable once asserted
// and every term handed back is a copy, so bindings retrieved from a
// query are never affected by later retractions.
package beliefs

import (
	"context"

	"github.com/cognicore/pheres/pkg/pheres/term"
)

// Base is the interface for storing and retrieving beliefs.
type Base interface {
	Close() error

	// Assert adds a fact. It reports false when an identical fact is
	// already present (duplicates are ignored).
	Assert(ctx context.Context, fact term.Term) (bool, error)

	// Retract removes the first stored fact unifying with pattern,
	// returning the removed fact. A miss is not an error.
	Retract(ctx context.Context, pattern term.Term) (term.Term, bool, error)

	// Candidates returns the stored facts with the given indicator, in
	// assertion order.
	Candidates(ctx context.Context, functor string, arity int) ([]term.Term, error)

	// All returns every stored fact in assertion order.
	All(ctx context.Context) ([]term.Term, error)
}
