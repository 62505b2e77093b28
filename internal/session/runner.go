package session

import (
	"context"
	"sync"

	"github.com/mezotv/skill-tree/internal/skilltree"
	"github.com/mezotv/skill-tree/internal/suggest"
)

// Runner drives a Controller from blocking sources. Starting a request
// cancels the previous request of the same kind, so at most one
// suggestion stream and one tree fetch are in flight.
type Runner struct {
	ctrl    *Controller
	suggest suggest.Source
	trees   skilltree.Source
	ctx     context.Context

	mu            sync.Mutex
	cancelSuggest context.CancelFunc
	cancelTree    context.CancelFunc
}

// NewRunner creates a runner whose requests are bound to ctx.
func NewRunner(ctx context.Context, ctrl *Controller, s suggest.Source, t skilltree.Source) *Runner {
	return &Runner{ctrl: ctrl, suggest: s, trees: t, ctx: ctx}
}

// Controller returns the controller the runner publishes to.
func (r *Runner) Controller() *Controller {
	return r.ctrl
}

// State returns the current snapshot.
func (r *Runner) State() State {
	return r.ctrl.State()
}

// Suggest runs a suggestion request for query and blocks until it ends.
func (r *Runner) Suggest(query string) error {
	ctx := r.begin(&r.cancelSuggest)
	return r.ctrl.Suggest(ctx, r.suggest, query)
}

// LoadTree fetches the tree for occupation and blocks until it ends.
func (r *Runner) LoadTree(occupation string) error {
	ctx := r.begin(&r.cancelTree)
	return r.ctrl.LoadTree(ctx, r.trees, occupation)
}

// Close cancels every request in flight.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cancel := range []context.CancelFunc{r.cancelSuggest, r.cancelTree} {
		if cancel != nil {
			cancel()
		}
	}
}

func (r *Runner) begin(slot *context.CancelFunc) context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	if *slot != nil {
		(*slot)()
	}
	ctx, cancel := context.WithCancel(r.ctx)
	*slot = cancel
	return ctx
}
