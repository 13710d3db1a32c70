package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/internal/notify"
	"github.com/rodzerz/customs-crm/internal/notify/mocks"
	"github.com/rodzerz/customs-crm/internal/notify/signature"
	"github.com/rodzerz/customs-crm/internal/storage"
)

type fixture struct {
	dispatcher *notify.Dispatcher
	webhooks   *storage.InMemoryWebhookStore
	deliveries *storage.InMemoryDeliveryStore
	sender     *mocks.MockSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		webhooks:   storage.NewInMemoryWebhookStore(),
		deliveries: storage.NewInMemoryDeliveryStore(),
		sender:     mocks.NewMockSender(gomock.NewController(t)),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.dispatcher = notify.NewDispatcher(f.webhooks, f.deliveries, f.sender, logger,
		notify.WithTimeout(time.Second))
	return f
}

func (f *fixture) subscribe(t *testing.T, id, event, secret string) domain.Webhook {
	t.Helper()
	wh := domain.Webhook{
		ID:        id,
		URL:       "https://" + id + ".example/hook",
		Event:     event,
		Secret:    secret,
		Active:    true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.webhooks.Save(context.Background(), wh))
	return wh
}

func TestDispatch(t *testing.T) {
	payload := map[string]any{"case_id": "case-1", "status": "released"}

	t.Run("one failing subscriber does not affect the other", func(t *testing.T) {
		f := newFixture(t)
		ok := f.subscribe(t, "wh-ok", "case.status_changed", "secret-a")
		bad := f.subscribe(t, "wh-bad", "case.status_changed", "secret-b")

		f.sender.EXPECT().
			Send(gomock.Any(), ok.URL, "case.status_changed", gomock.Any(), gomock.Any()).
			Return(notify.Response{StatusCode: 200, Body: `{"ok":true}`}, nil)
		f.sender.EXPECT().
			Send(gomock.Any(), bad.URL, "case.status_changed", gomock.Any(), gomock.Any()).
			Return(notify.Response{}, errors.New("context deadline exceeded"))

		err := f.dispatcher.Dispatch(context.Background(), "case.status_changed", payload)
		require.NoError(t, err)

		okRecs, err := f.deliveries.ListByWebhook(context.Background(), "wh-ok")
		require.NoError(t, err)
		require.Len(t, okRecs, 1)
		assert.True(t, okRecs[0].Success)
		require.NotNil(t, okRecs[0].StatusCode)
		assert.Equal(t, 200, *okRecs[0].StatusCode)
		assert.Equal(t, `{"ok":true}`, okRecs[0].Response)

		badRecs, err := f.deliveries.ListByWebhook(context.Background(), "wh-bad")
		require.NoError(t, err)
		require.Len(t, badRecs, 1)
		assert.False(t, badRecs[0].Success)
		assert.Nil(t, badRecs[0].StatusCode)
		assert.Contains(t, badRecs[0].Error, "deadline")

		stored, err := f.webhooks.FindByID(context.Background(), "wh-ok")
		require.NoError(t, err)
		assert.Equal(t, 0, stored.RetryCount)
		assert.NotNil(t, stored.LastTriggeredAt)

		stored, err = f.webhooks.FindByID(context.Background(), "wh-bad")
		require.NoError(t, err)
		assert.Equal(t, 1, stored.RetryCount)
		assert.Nil(t, stored.LastTriggeredAt)
	})

	t.Run("non-2xx response counts as a failure", func(t *testing.T) {
		f := newFixture(t)
		f.subscribe(t, "wh-1", "case.status_changed", "secret")

		f.sender.EXPECT().
			Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(notify.Response{StatusCode: 500, Body: "boom"}, nil)

		require.NoError(t, f.dispatcher.Dispatch(context.Background(), "case.status_changed", payload))

		recs, err := f.deliveries.ListByWebhook(context.Background(), "wh-1")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.False(t, recs[0].Success)
		require.NotNil(t, recs[0].StatusCode)
		assert.Equal(t, 500, *recs[0].StatusCode)
		assert.Empty(t, recs[0].Error)

		stored, err := f.webhooks.FindByID(context.Background(), "wh-1")
		require.NoError(t, err)
		assert.Equal(t, 1, stored.RetryCount)
	})

	t.Run("success resets an accumulated retry counter", func(t *testing.T) {
		f := newFixture(t)
		f.subscribe(t, "wh-1", "case.status_changed", "secret")
		require.NoError(t, f.webhooks.IncrementRetry(context.Background(), "wh-1"))
		require.NoError(t, f.webhooks.IncrementRetry(context.Background(), "wh-1"))

		f.sender.EXPECT().
			Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(notify.Response{StatusCode: 204}, nil)

		require.NoError(t, f.dispatcher.Dispatch(context.Background(), "case.status_changed", payload))

		stored, err := f.webhooks.FindByID(context.Background(), "wh-1")
		require.NoError(t, err)
		assert.Equal(t, 0, stored.RetryCount)
	})

	t.Run("signature is computed per subscription secret", func(t *testing.T) {
		f := newFixture(t)
		f.subscribe(t, "wh-1", "case.status_changed", "secret-one")

		f.sender.EXPECT().
			Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _, sig string, body []byte) (notify.Response, error) {
				assert.Equal(t, signature.Sign("secret-one", body), sig)
				ok, verr := signature.Verify("secret-one", body, sig)
				assert.NoError(t, verr)
				assert.True(t, ok)
				return notify.Response{StatusCode: 200}, nil
			})

		require.NoError(t, f.dispatcher.Dispatch(context.Background(), "case.status_changed", payload))
	})

	t.Run("inactive and non-matching subscriptions are skipped", func(t *testing.T) {
		f := newFixture(t)
		inactive := f.subscribe(t, "wh-off", "case.status_changed", "secret")
		inactive.Active = false
		require.NoError(t, f.webhooks.Save(context.Background(), inactive))
		f.subscribe(t, "wh-other", "case.updated", "secret")

		// No Send expectations: any call fails the test.
		require.NoError(t, f.dispatcher.Dispatch(context.Background(), "case.status_changed", payload))

		recs, err := f.deliveries.ListByWebhook(context.Background(), "wh-off")
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("no subscribers is a no-op", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.dispatcher.Dispatch(context.Background(), "case.created", payload))
	})
}
