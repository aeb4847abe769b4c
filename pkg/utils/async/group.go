package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Group runs background tasks that must not be canceled with the request or
// command that started them, and lets the owner wait for them. The zero value
// is ready to use.
type Group struct {
	wg sync.WaitGroup
}

// Go starts task in its own goroutine. The task's context keeps every value
// of ctx (logger, request ID) but ignores its cancellation and deadline. A
// returned error or a panic is logged under name.
func (g *Group) Go(ctx context.Context, name string, task func(ctx context.Context) error) {
	detached := context.WithoutCancel(ctx)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := runTask(detached, task); err != nil {
			ctxlog.From(detached).Error("async task failed", "task", name, "error", err)
		}
	}()
}

// Wait blocks until every task started so far has returned
func (g *Group) Wait() {
	g.wg.Wait()
}

func runTask(ctx context.Context, task func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = goerr.New("panic in async task",
				goerr.V("recover", r),
				goerr.V("stack", string(debug.Stack())),
			)
		}
	}()
	return task(ctx)
}
