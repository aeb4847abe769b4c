package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/incidex/pkg/domain/interfaces"
	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/secmon-lab/incidex/pkg/usecase"
)

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(ctx context.Context, notice model.Notice) error {
	f.calls++
	return goerr.New("webhook unavailable")
}

func TestMultiNotifier(t *testing.T) {
	ctx := context.Background()
	notice := model.Notice{Level: model.NoticeSuccess, Message: usecase.NoticeCreated}

	t.Run("Every notifier receives the notice", func(t *testing.T) {
		a, b := &recordNotifier{}, &recordNotifier{}
		multi := usecase.MultiNotifier{a, nil, b}
		gt.NoError(t, multi.Notify(ctx, notice))
		gt.Equal(t, []string{usecase.NoticeCreated}, a.messages())
		gt.Equal(t, []string{usecase.NoticeCreated}, b.messages())
	})

	t.Run("Failure does not stop the rest", func(t *testing.T) {
		failing := &failingNotifier{}
		rec := &recordNotifier{}
		multi := usecase.MultiNotifier{failing, rec}

		err := multi.Notify(ctx, notice)
		gt.Error(t, err)
		gt.Equal(t, 1, failing.calls)
		gt.Equal(t, []string{usecase.NoticeCreated}, rec.messages())
	})
}

func TestLogNotifier(t *testing.T) {
	var n interfaces.Notifier = &usecase.LogNotifier{}
	gt.NoError(t, n.Notify(context.Background(), model.Notice{Level: model.NoticeError, Message: "Failed to fetch incidents", Detail: "Internal server error"}))
}

func TestStoreNotifierFailureIsNotReturned(t *testing.T) {
	store := usecase.NewStore(newFakeAPI(seed()...), usecase.WithNotifier(&failingNotifier{}))
	_, err := store.Create(context.Background(), newDraft())
	gt.NoError(t, err)
	store.Wait()
}
