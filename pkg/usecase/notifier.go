package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/incidex/pkg/domain/interfaces"
	"github.com/secmon-lab/incidex/pkg/domain/model"
)

// LogNotifier writes notices to the context logger
type LogNotifier struct{}

// Notify implements interfaces.Notifier
func (n *LogNotifier) Notify(ctx context.Context, notice model.Notice) error {
	logger := ctxlog.From(ctx)
	if notice.IsError() {
		logger.Warn(notice.Message, "detail", notice.Detail)
	} else {
		logger.Info(notice.Message)
	}
	return nil
}

// MultiNotifier sends every notice to all of its notifiers
type MultiNotifier []interfaces.Notifier

// Notify implements interfaces.Notifier. All notifiers are tried; the first
// failure is returned.
func (m MultiNotifier) Notify(ctx context.Context, notice model.Notice) error {
	var first error
	for i, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, notice); err != nil && first == nil {
			first = goerr.Wrap(err, "notifier failed", goerr.V("index", i))
		}
	}
	return first
}
