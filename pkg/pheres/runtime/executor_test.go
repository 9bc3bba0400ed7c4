package runtime

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/cognicore/pheres/pkg/pheres/beliefs/membase"
	"github.com/cognicore/pheres/pkg/pheres/internalerr"
	"github.com/cognicore/pheres/pkg/pheres/parser"
	"github.com/cognicore/pheres/pkg/pheres/query"
	"github.com/cognicore/pheres/pkg/pheres/term"
)

// newExecutor loads src and wires an executor over a fresh in-memory
// base, capturing action output in the returned buffer.
func newExecutor(t *testing.T, src string, extras ...Action) (*Executor, *membase.Base, *bytes.Buffer) {
	t.Helper()
	prog, errs := parser.Parse(src)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	base := membase.New()
	for _, b := range prog.Beliefs {
		if _, err := base.Assert(context.Background(), b.Term); err != nil {
			t.Fatal(err)
		}
	}
	var out bytes.Buffer
	x := New(Options{
		Base:    base,
		Solver:  query.NewSolver(base, prog.Rules),
		Plans:   prog.Plans,
		Actions: NewRegistry(extras...),
		Out:     &out,
	})
	return x, base, &out
}

func achieve(name string) Event {
	return Event{Op: parser.OpAdd, Kind: parser.KindAchieve, Term: term.Atom(name)}
}

func TestAchieveRunsMatchingPlan(t *testing.T) {
	x, _, out := newExecutor(t, `
		+!greet <- .print("hello").
	`)
	x.Post(achieve("greet"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "hello\n" {
		t.Errorf("output %q, want %q", out.String(), "hello\n")
	}
}

func TestPlanSelectionPrefersFirstSatisfiableContext(t *testing.T) {
	x, _, out := newExecutor(t, `
		mode(fast).

		+!work : mode(slow) <- .print("slow").
		+!work : mode(fast) <- .print("fast").
		+!work <- .print("default").
	`)
	x.Post(achieve("work"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "fast\n" {
		t.Errorf("output %q, want %q", out.String(), "fast\n")
	}
}

func TestContextBindingsFlowIntoBody(t *testing.T) {
	x, _, out := newExecutor(t, `
		disc(small, 1).
		disc(med, 2).

		+!report : disc(D, 2) <- .print(D).
	`)
	x.Post(achieve("report"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "med\n" {
		t.Errorf("output %q, want %q", out.String(), "med\n")
	}
}

func TestNoApplicablePlan(t *testing.T) {
	x, _, _ := newExecutor(t, `
		+!other <- .print("no").
	`)
	x.Post(achieve("missing"))
	err := x.Run(context.Background())
	if !errors.Is(err, internalerr.ErrNoApplicablePlan) {
		t.Errorf("got %v, want ErrNoApplicablePlan", err)
	}
}

func TestBeliefAdditionTriggersPlan(t *testing.T) {
	x, base, out := newExecutor(t, `
		+!score <- +points(10).
		+points(N) <- .print(N).
	`)
	x.Post(achieve("score"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "10\n" {
		t.Errorf("output %q, want %q", out.String(), "10\n")
	}
	facts, err := base.Candidates(context.Background(), "points", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 1 {
		t.Errorf("base holds %d points facts, want 1", len(facts))
	}
}

func TestBeliefDeletionTriggersPlan(t *testing.T) {
	x, _, out := newExecutor(t, `
		points(10).

		+!reset <- -points(_).
		-points(N) <- .print(N).
	`)
	x.Post(achieve("reset"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "10\n" {
		t.Errorf("output %q, want %q", out.String(), "10\n")
	}
}

func TestDuplicateBeliefDoesNotRetrigger(t *testing.T) {
	x, _, out := newExecutor(t, `
		seen(x).

		+!note <- +seen(x).
		+seen(_) <- .print("event").
	`)
	x.Post(achieve("note"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("duplicate assertion produced output %q", out.String())
	}
}

func TestTestGoalBindsVariables(t *testing.T) {
	x, _, out := newExecutor(t, `
		disc(small, 1).

		+!check <- ?disc(D, _); .print(D).
	`)
	x.Post(achieve("check"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "small\n" {
		t.Errorf("output %q, want %q", out.String(), "small\n")
	}
}

func TestTestGoalFailureFailsPlan(t *testing.T) {
	x, _, _ := newExecutor(t, `
		+!check <- ?missing(X).
	`)
	x.Post(achieve("check"))
	if err := x.Run(context.Background()); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestGoalFailureRecovery(t *testing.T) {
	x, _, out := newExecutor(t, `
		+!risky <- .fail.
		-!risky <- .print("recovered").
	`)
	x.Post(achieve("risky"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatalf("recovery plan should absorb the failure, got %v", err)
	}
	if out.String() != "recovered\n" {
		t.Errorf("output %q, want %q", out.String(), "recovered\n")
	}
}

func TestGoalFailurePropagatesWithoutRecoveryPlan(t *testing.T) {
	x, _, _ := newExecutor(t, `
		+!risky <- .fail.
	`)
	x.Post(achieve("risky"))
	if err := x.Run(context.Background()); !errors.Is(err, internalerr.ErrPlanFailed) {
		t.Errorf("got %v, want ErrPlanFailed", err)
	}
}

func TestSubgoalRunsInline(t *testing.T) {
	x, _, out := newExecutor(t, `
		+!outer <- !inner; .print("after").
		+!inner <- .print("inner").
	`)
	x.Post(achieve("outer"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "inner\nafter\n" {
		t.Errorf("output %q, want inner before after", out.String())
	}
}

func TestDeferredSubgoalRunsAfterCurrentIntention(t *testing.T) {
	x, _, out := newExecutor(t, `
		+!outer <- !!later; .print("first").
		+!later <- .print("second").
	`)
	x.Post(achieve("outer"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "first\nsecond\n" {
		t.Errorf("output %q, want first then second", out.String())
	}
}

func TestSwapBeliefReplaces(t *testing.T) {
	x, base, out := newExecutor(t, `
		count(1).

		+!bump <- -+count(7); ?count(N); .print(N).
	`)
	x.Post(achieve("bump"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "7\n" {
		t.Errorf("output %q, want %q", out.String(), "7\n")
	}
	facts, err := base.Candidates(context.Background(), "count", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 1 || !term.Equal(facts[0], term.Comp("count", term.Int(7))) {
		t.Errorf("base holds %v, want only count(7)", facts)
	}
}

func TestIfThenElse(t *testing.T) {
	x, _, out := newExecutor(t, `
		mode(fast).

		+!route <- if (mode(slow)) { .print("slow") } else { .print("fast") }.
	`)
	x.Post(achieve("route"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "fast\n" {
		t.Errorf("output %q, want %q", out.String(), "fast\n")
	}
}

func TestWhileLoop(t *testing.T) {
	x, _, out := newExecutor(t, `
		count(0).

		+!spin <- while (count(N) & N < 3) { M = N + 1; -+count(M) }; ?count(F); .print(F).
	`)
	x.Post(achieve("spin"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "3\n" {
		t.Errorf("output %q, want %q", out.String(), "3\n")
	}
}

func TestForEachIteratesAllSolutions(t *testing.T) {
	x, _, out := newExecutor(t, `
		disc(small, 1).
		disc(med, 2).

		+!list <- for (disc(D, _)) { .print(D) }.
	`)
	x.Post(achieve("list"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "small\nmed\n" {
		t.Errorf("output %q, want both discs in assertion order", out.String())
	}
}

func TestConstraintFailureFailsPlan(t *testing.T) {
	x, _, _ := newExecutor(t, `
		count(1).

		+!gate <- ?count(N); N > 5; .print("unreachable").
	`)
	x.Post(achieve("gate"))
	if err := x.Run(context.Background()); !errors.Is(err, internalerr.ErrPlanFailed) {
		t.Errorf("got %v, want ErrPlanFailed", err)
	}
}

func TestUnknownAction(t *testing.T) {
	x, _, _ := newExecutor(t, `
		+!go <- .frobnicate.
	`)
	x.Post(achieve("go"))
	if err := x.Run(context.Background()); !errors.Is(err, internalerr.ErrUnknownAction) {
		t.Errorf("got %v, want ErrUnknownAction", err)
	}
}

func TestCustomActionReceivesResolvedArgs(t *testing.T) {
	var got []term.Term
	record := ActionFunc{
		ActionName: "record",
		Fn: func(ctx context.Context, call Call) error {
			got = append(got, call.Args...)
			return nil
		},
	}
	x, _, _ := newExecutor(t, `
		disc(small, 1).

		+!snap : disc(D, N) <- record(D, N).
	`, record)
	x.Post(achieve("snap"))
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != term.Atom("small") || got[1] != term.Int(1) {
		t.Errorf("action saw %v, want [small 1]", got)
	}
}

func TestCancelledContextStopsRun(t *testing.T) {
	x, _, _ := newExecutor(t, `
		+!go <- .print("x").
	`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	x.Post(achieve("go"))
	if err := x.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
