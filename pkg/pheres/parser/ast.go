// Package parser builds clause-level ASTs from AgentSpeak source.
// Parsing is batch best-effort: a malformed clause is reported with its
// position and skipped, and loading continues at the next clause.
package parser

import (
	"fmt"

	"github.com/cognicore/pheres/pkg/pheres/term"
)

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

// EventOp distinguishes addition from deletion events and triggers.
type EventOp int

const (
	OpAdd EventOp = iota // +
	OpDel                // -
)

func (op EventOp) String() string {
	if op == OpDel {
		return "-"
	}
	return "+"
}

// GoalKind classifies the literal carried by an event or trigger.
type GoalKind int

const (
	KindBelief  GoalKind = iota // plain literal
	KindAchieve                 // !goal
	KindTest                    // ?goal
)

func (k GoalKind) String() string {
	switch k {
	case KindAchieve:
		return "!"
	case KindTest:
		return "?"
	}
	return ""
}

// Program is the parsed contents of one source unit.
type Program struct {
	Includes []Include
	Beliefs  []Belief
	Rules    []Rule
	Plans    []Plan
}

// Include is an `include("path").` directive.
type Include struct {
	Path string
	Pos  Pos
}

// Belief is a fact clause.
type Belief struct {
	Term term.Term
	Pos  Pos
}

// Rule is a `head :- body.` clause. Derived facts are computed on
// demand, never stored.
type Rule struct {
	Head term.Term
	Body Expr
	Pos  Pos
}

// Trigger is the event pattern a plan reacts to, e.g. `+!sort`.
type Trigger struct {
	Op   EventOp
	Kind GoalKind
	Term term.Term
}

func (t Trigger) String() string {
	return t.Op.String() + t.Kind.String() + t.Term.String()
}

// Plan is a `[@label] trigger : context <- body.` clause.
type Plan struct {
	Label   string
	Trigger Trigger
	Context Expr // nil means always applicable
	Body    []Formula
	Pos     Pos
}

// Expr is a logical expression in a rule body or plan context.
type Expr interface{ isExpr() }

// Lit is a literal to prove against the belief base and rules.
type Lit struct{ Term term.Term }

// And is left-to-right short-circuiting conjunction.
type And struct{ L, R Expr }

// Or tries the left branch, then the right.
type Or struct{ L, R Expr }

// Not is negation as failure: succeeds iff X has no solution under the
// current substitution.
type Not struct{ X Expr }

// Rel is a relational constraint: one of < <= > >= == \== = =..
// Arithmetic subexpressions are represented as compound terms with
// operator functors and evaluated by the solver.
type Rel struct {
	Op   string
	L, R term.Term
}

// TrueExpr always succeeds once.
type TrueExpr struct{}

// FalseExpr never succeeds.
type FalseExpr struct{}

func (Lit) isExpr()       {}
func (And) isExpr()       {}
func (Or) isExpr()        {}
func (Not) isExpr()       {}
func (Rel) isExpr()       {}
func (TrueExpr) isExpr()  {}
func (FalseExpr) isExpr() {}

// Formula is one step in a plan body.
type Formula interface{ isFormula() }

// Achieve posts a subgoal. Async (`!!`) queues a separate event instead
// of running inline.
type Achieve struct {
	Term  term.Term
	Async bool
}

// TestGoal (`?g`) queries the belief base and extends the environment.
type TestGoal struct{ Term term.Term }

// AddBelief (`+b`) asserts a belief.
type AddBelief struct{ Term term.Term }

// DelBelief (`-b`) retracts the first matching belief.
type DelBelief struct{ Term term.Term }

// SwapBelief (`-+b`) retracts any belief with the same indicator, then
// asserts b.
type SwapBelief struct{ Term term.Term }

// ActionCall invokes an action. Builtin marks leading-dot names
// (`.print`); other bare terms dispatch through the same registry as
// user-defined actions.
type ActionCall struct {
	Name    string
	Args    []term.Term
	Builtin bool
	Pos     Pos
}

// Constraint evaluates a relational expression in a body, extending the
// environment with any bindings from its first solution.
type Constraint struct{ Expr Expr }

// IfThenElse runs Then under the condition's first solution, or Else.
type IfThenElse struct {
	Cond Expr
	Then []Formula
	Else []Formula
}

// While repeats Body as long as Cond has a solution.
type While struct {
	Cond Expr
	Body []Formula
}

// ForEach runs Body once per solution of Cond.
type ForEach struct {
	Cond Expr
	Body []Formula
}

func (Achieve) isFormula()    {}
func (TestGoal) isFormula()   {}
func (AddBelief) isFormula()  {}
func (DelBelief) isFormula()  {}
func (SwapBelief) isFormula() {}
func (ActionCall) isFormula() {}
func (Constraint) isFormula() {}
func (IfThenElse) isFormula() {}
func (While) isFormula()      {}
func (ForEach) isFormula()    {}

// Error is a parse error with its source position.
type Error struct {
	Msg  string
	Line int
	Col  int
}

func (e Error) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Col, e.Msg)
}

// RenameExpr renames every variable in e apart with the given suffix.
func RenameExpr(e Expr, suffix string) Expr {
	switch x := e.(type) {
	case Lit:
		return Lit{Term: term.Rename(x.Term, suffix)}
	case And:
		return And{L: RenameExpr(x.L, suffix), R: RenameExpr(x.R, suffix)}
	case Or:
		return Or{L: RenameExpr(x.L, suffix), R: RenameExpr(x.R, suffix)}
	case Not:
		return Not{X: RenameExpr(x.X, suffix)}
	case Rel:
		return Rel{Op: x.Op, L: term.Rename(x.L, suffix), R: term.Rename(x.R, suffix)}
	default:
		return e
	}
}

// RenameFormulas renames every variable in fs apart with the given
// suffix.
func RenameFormulas(fs []Formula, suffix string) []Formula {
	if fs == nil {
		return nil
	}
	out := make([]Formula, len(fs))
	for i, f := range fs {
		out[i] = renameFormula(f, suffix)
	}
	return out
}

func renameFormula(f Formula, suffix string) Formula {
	switch x := f.(type) {
	case Achieve:
		return Achieve{Term: term.Rename(x.Term, suffix), Async: x.Async}
	case TestGoal:
		return TestGoal{Term: term.Rename(x.Term, suffix)}
	case AddBelief:
		return AddBelief{Term: term.Rename(x.Term, suffix)}
	case DelBelief:
		return DelBelief{Term: term.Rename(x.Term, suffix)}
	case SwapBelief:
		return SwapBelief{Term: term.Rename(x.Term, suffix)}
	case ActionCall:
		return ActionCall{
			Name:    x.Name,
			Args:    renameArgs(x.Args, suffix),
			Builtin: x.Builtin,
			Pos:     x.Pos,
		}
	case Constraint:
		return Constraint{Expr: RenameExpr(x.Expr, suffix)}
	case IfThenElse:
		return IfThenElse{
			Cond: RenameExpr(x.Cond, suffix),
			Then: RenameFormulas(x.Then, suffix),
			Else: RenameFormulas(x.Else, suffix),
		}
	case While:
		return While{Cond: RenameExpr(x.Cond, suffix), Body: RenameFormulas(x.Body, suffix)}
	case ForEach:
		return ForEach{Cond: RenameExpr(x.Cond, suffix), Body: RenameFormulas(x.Body, suffix)}
	default:
		return f
	}
}

func renameArgs(in []term.Term, suffix string) []term.Term {
	if in == nil {
		return nil
	}
	out := make([]term.Term, len(in))
	for i, t := range in {
		out[i] = term.Rename(t, suffix)
	}
	return out
}

// RenamePlan renames a plan's trigger, context and body apart.
func RenamePlan(p Plan, suffix string) Plan {
	out := p
	out.Trigger.Term = term.Rename(p.Trigger.Term, suffix)
	if p.Context != nil {
		out.Context = RenameExpr(p.Context, suffix)
	}
	out.Body = RenameFormulas(p.Body, suffix)
	return out
}
