package runtime

import (
	"context"
	"fmt"
	"io"

	"github.com/cognicore/pheres/pkg/pheres/internalerr"
	"github.com/cognicore/pheres/pkg/pheres/term"
)

// Action handles one action call from a plan body. Built-in and
// user-registered actions share this interface and dispatch through
// the same registry.
type Action interface {
	Name() string
	Run(ctx context.Context, call Call) error
}

// Call carries the resolved arguments of an action invocation.
type Call struct {
	Args []term.Term
	Out  io.Writer
}

// Registry maps action names to handlers.
type Registry struct {
	actions map[string]Action
}

// NewRegistry creates a registry preloaded with the built-in actions
// plus any extras. Extras win on name collisions.
func NewRegistry(extras ...Action) *Registry {
	r := &Registry{actions: make(map[string]Action)}
	r.Register(printAction{})
	r.Register(failAction{})
	for _, a := range extras {
		r.Register(a)
	}
	return r
}

// Register adds or replaces an action.
func (r *Registry) Register(a Action) {
	r.actions[a.Name()] = a
}

// Lookup returns the action registered under name.
func (r *Registry) Lookup(name string) (Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// printAction writes one line per argument. Strings print their raw
// text, everything else its canonical form.
type printAction struct{}

func (printAction) Name() string { return "print" }

func (printAction) Run(ctx context.Context, call Call) error {
	for _, arg := range call.Args {
		text := arg.String()
		if s, ok := arg.(term.Str); ok {
			text = string(s)
		}
		if _, err := fmt.Fprintln(call.Out, text); err != nil {
			return err
		}
	}
	return nil
}

// failAction unconditionally fails the running plan.
type failAction struct{}

func (failAction) Name() string { return "fail" }

func (failAction) Run(ctx context.Context, call Call) error {
	return internalerr.ErrPlanFailed
}

// ActionFunc adapts a function to the Action interface.
type ActionFunc struct {
	ActionName string
	Fn         func(ctx context.Context, call Call) error
}

func (a ActionFunc) Name() string { return a.ActionName }

func (a ActionFunc) Run(ctx context.Context, call Call) error {
	return a.Fn(ctx, call)
}
