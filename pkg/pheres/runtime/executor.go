// Package runtime executes plans in response to goal and belief
// events. Execution is single-threaded and cooperative: one event is
// fully processed, plan selection through body completion, before the
// next is considered.
package runtime

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/pheres/pkg/pheres/beliefs"
	"github.com/cognicore/pheres/pkg/pheres/internalerr"
	"github.com/cognicore/pheres/pkg/pheres/parser"
	"github.com/cognicore/pheres/pkg/pheres/query"
	"github.com/cognicore/pheres/pkg/pheres/term"
)

// Event is an addition or deletion of a belief, achievement goal or
// test goal.
type Event struct {
	Op   parser.EventOp
	Kind parser.GoalKind
	Term term.Term
}

func (e Event) String() string {
	return e.Op.String() + e.Kind.String() + e.Term.String()
}

// Intention is a runtime instantiation of a plan: it exists from plan
// selection until the body completes or fails.
type Intention struct {
	ID    string
	Event Event
	Label string
}

// Options configures an Executor.
type Options struct {
	Base    beliefs.Base
	Solver  *query.Solver
	Plans   []parser.Plan
	Actions *Registry
	Out     io.Writer
}

// Executor owns the event queue and drives plan execution.
type Executor struct {
	base    beliefs.Base
	solver  *query.Solver
	plans   []parser.Plan
	actions *Registry
	out     io.Writer
	queue   []Event
	entropy *ulid.MonotonicEntropy
	fresh   int
}

// New creates an Executor with the given dependencies.
func New(opts Options) *Executor {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	actions := opts.Actions
	if actions == nil {
		actions = NewRegistry()
	}
	return &Executor{
		base:    opts.Base,
		solver:  opts.Solver,
		plans:   opts.Plans,
		actions: actions,
		out:     out,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Post appends an event to the queue.
func (x *Executor) Post(ev Event) {
	x.queue = append(x.queue, ev)
}

// Pending reports the number of queued events.
func (x *Executor) Pending() int { return len(x.queue) }

// Drain removes and returns every queued event.
func (x *Executor) Drain() []Event {
	q := x.queue
	x.queue = nil
	return q
}

// Run processes queued events until the queue drains or an event
// fails. Events posted while running (belief updates, `!!` goals) are
// processed in arrival order.
func (x *Executor) Run(ctx context.Context) error {
	for len(x.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev := x.queue[0]
		x.queue = x.queue[1:]
		if err := x.dispatch(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// dispatch fully processes one event.
func (x *Executor) dispatch(ctx context.Context, ev Event) error {
	plan, env, found, err := x.selectPlan(ctx, ev)
	if err != nil {
		return err
	}
	if !found {
		if ev.Kind == parser.KindAchieve && ev.Op == parser.OpAdd {
			return fmt.Errorf("%s: %w", ev, internalerr.ErrNoApplicablePlan)
		}
		// Belief events with no interested plan are dropped.
		return nil
	}

	in := &Intention{
		ID:    ulid.MustNew(ulid.Now(), x.entropy).String(),
		Event: ev,
		Label: plan.Label,
	}
	if _, err := x.runBody(ctx, in, plan.Body, env); err != nil {
		if ev.Kind == parser.KindAchieve && ev.Op == parser.OpAdd {
			return x.handleGoalFailure(ctx, ev.Term, in, err)
		}
		return fmt.Errorf("intention %s (%s): %w", in.ID, ev, err)
	}
	return nil
}

// selectPlan returns the first plan, in declaration order, whose
// trigger unifies with the event and whose context is satisfiable. The
// plan comes back renamed apart with the context bindings applied.
func (x *Executor) selectPlan(ctx context.Context, ev Event) (parser.Plan, *term.Bindings, bool, error) {
	for _, p := range x.plans {
		if p.Trigger.Op != ev.Op || p.Trigger.Kind != ev.Kind {
			continue
		}
		x.fresh++
		inst := parser.RenamePlan(p, fmt.Sprintf("_p%d", x.fresh))
		env, ok := term.Unify(inst.Trigger.Term, ev.Term, nil)
		if !ok {
			continue
		}
		if inst.Context != nil {
			env2, ok, err := x.solver.First(ctx, inst.Context, env)
			if err != nil {
				return parser.Plan{}, nil, false, err
			}
			if !ok {
				continue
			}
			env = env2
		}
		return inst, env, true, nil
	}
	return parser.Plan{}, nil, false, nil
}

// handleGoalFailure gives a `-!g` plan the chance to recover; without
// one the original failure propagates.
func (x *Executor) handleGoalFailure(ctx context.Context, goal term.Term, in *Intention, cause error) error {
	ev := Event{Op: parser.OpDel, Kind: parser.KindAchieve, Term: goal}
	plan, env, found, err := x.selectPlan(ctx, ev)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("intention %s (%s): %w", in.ID, in.Event, cause)
	}
	rec := &Intention{
		ID:    ulid.MustNew(ulid.Now(), x.entropy).String(),
		Event: ev,
		Label: plan.Label,
	}
	if _, err := x.runBody(ctx, rec, plan.Body, env); err != nil {
		return fmt.Errorf("intention %s (%s): %w", rec.ID, ev, err)
	}
	return nil
}

func (x *Executor) runBody(ctx context.Context, in *Intention, body []parser.Formula, env *term.Bindings) (*term.Bindings, error) {
	for _, f := range body {
		var err error
		env, err = x.step(ctx, in, f, env)
		if err != nil {
			return nil, err
		}
	}
	return env, nil
}

func (x *Executor) step(ctx context.Context, in *Intention, f parser.Formula, env *term.Bindings) (*term.Bindings, error) {
	switch y := f.(type) {
	case parser.Achieve:
		goal := env.Resolve(y.Term)
		ev := Event{Op: parser.OpAdd, Kind: parser.KindAchieve, Term: goal}
		if y.Async {
			x.Post(ev)
			return env, nil
		}
		return env, x.dispatch(ctx, ev)

	case parser.TestGoal:
		env2, ok, err := x.solver.First(ctx, parser.Lit{Term: y.Term}, env)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("?%s: %w", env.Resolve(y.Term), internalerr.ErrNotFound)
		}
		return env2, nil

	case parser.AddBelief:
		t := env.Resolve(y.Term)
		if !term.IsGround(t) {
			return nil, fmt.Errorf("+%s is not ground: %w", t, internalerr.ErrInvalidInput)
		}
		added, err := x.base.Assert(ctx, t)
		if err != nil {
			return nil, err
		}
		if added {
			x.Post(Event{Op: parser.OpAdd, Kind: parser.KindBelief, Term: t})
		}
		return env, nil

	case parser.DelBelief:
		removed, ok, err := x.base.Retract(ctx, env.Resolve(y.Term))
		if err != nil {
			return nil, err
		}
		if ok {
			x.Post(Event{Op: parser.OpDel, Kind: parser.KindBelief, Term: removed})
		}
		return env, nil

	case parser.SwapBelief:
		t := env.Resolve(y.Term)
		if !term.IsGround(t) {
			return nil, fmt.Errorf("-+%s is not ground: %w", t, internalerr.ErrInvalidInput)
		}
		removed, ok, err := x.base.Retract(ctx, wildcardPattern(t))
		if err != nil {
			return nil, err
		}
		if ok {
			x.Post(Event{Op: parser.OpDel, Kind: parser.KindBelief, Term: removed})
		}
		added, err := x.base.Assert(ctx, t)
		if err != nil {
			return nil, err
		}
		if added {
			x.Post(Event{Op: parser.OpAdd, Kind: parser.KindBelief, Term: t})
		}
		return env, nil

	case parser.ActionCall:
		action, ok := x.actions.Lookup(y.Name)
		if !ok {
			return nil, fmt.Errorf("%s: %w", y.Name, internalerr.ErrUnknownAction)
		}
		args := make([]term.Term, len(y.Args))
		for i, a := range y.Args {
			args[i] = env.Resolve(a)
		}
		if err := action.Run(ctx, Call{Args: args, Out: x.out}); err != nil {
			return nil, fmt.Errorf("action %s: %w", y.Name, err)
		}
		return env, nil

	case parser.Constraint:
		env2, ok, err := x.solver.First(ctx, y.Expr, env)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("constraint failed: %w", internalerr.ErrPlanFailed)
		}
		return env2, nil

	case parser.IfThenElse:
		env2, ok, err := x.solver.First(ctx, y.Cond, env)
		if err != nil {
			return nil, err
		}
		if ok {
			return x.runBody(ctx, in, y.Then, env2)
		}
		return x.runBody(ctx, in, y.Else, env)

	case parser.While:
		for {
			env2, ok, err := x.solver.First(ctx, y.Cond, env)
			if err != nil {
				return nil, err
			}
			if !ok {
				return env, nil
			}
			if _, err := x.runBody(ctx, in, y.Body, env2); err != nil {
				return nil, err
			}
		}

	case parser.ForEach:
		envs, err := x.solver.All(ctx, y.Cond, env)
		if err != nil {
			return nil, err
		}
		for _, env2 := range envs {
			if _, err := x.runBody(ctx, in, y.Body, env2); err != nil {
				return nil, err
			}
		}
		return env, nil
	}
	return nil, fmt.Errorf("unsupported formula %T: %w", f, internalerr.ErrInvalidInput)
}

// wildcardPattern builds a pattern with the same indicator as t and
// all arguments anonymous, for `-+` replacement.
func wildcardPattern(t term.Term) term.Term {
	c, ok := t.(term.Compound)
	if !ok {
		return t
	}
	args := make([]term.Term, len(c.Args))
	for i := range args {
		args[i] = term.Var("_")
	}
	return term.Compound{Functor: c.Functor, Args: args}
}
