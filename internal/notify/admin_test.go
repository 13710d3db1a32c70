package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/internal/notify"
	"github.com/rodzerz/customs-crm/internal/storage"
	dErrors "github.com/rodzerz/customs-crm/pkg/domain-errors"
)

func newAdmin() (*notify.Admin, *storage.InMemoryWebhookStore, *storage.InMemoryDeliveryStore) {
	webhooks := storage.NewInMemoryWebhookStore()
	deliveries := storage.NewInMemoryDeliveryStore()
	return notify.NewAdmin(webhooks, deliveries), webhooks, deliveries
}

func TestAdminCreate(t *testing.T) {
	admin, webhooks, _ := newAdmin()
	ctx := context.Background()

	wh, err := admin.Create(ctx, "https://consumer.example.com/hooks", "case.status_changed")
	require.NoError(t, err)

	assert.NotEmpty(t, wh.ID)
	assert.Equal(t, "https://consumer.example.com/hooks", wh.URL)
	assert.Equal(t, "case.status_changed", wh.Event)
	assert.True(t, wh.Active)
	assert.NotEmpty(t, wh.Secret)
	assert.Zero(t, wh.RetryCount)

	stored, err := webhooks.FindByID(ctx, wh.ID)
	require.NoError(t, err)
	assert.Equal(t, wh.Secret, stored.Secret)

	t.Run("secrets are unique per subscription", func(t *testing.T) {
		other, err := admin.Create(ctx, "https://consumer.example.com/hooks", "case.status_changed")
		require.NoError(t, err)
		assert.NotEqual(t, wh.Secret, other.Secret)
	})

	t.Run("event filter is required", func(t *testing.T) {
		_, err := admin.Create(ctx, "https://consumer.example.com/hooks", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("endpoint must be an absolute URL", func(t *testing.T) {
		for _, endpoint := range []string{"", "/hooks", "consumer.example.com/hooks", "://nope"} {
			_, err := admin.Create(ctx, endpoint, "case.created")
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest), "endpoint %q", endpoint)
		}
	})
}

func TestAdminSetActive(t *testing.T) {
	admin, webhooks, _ := newAdmin()
	ctx := context.Background()

	wh, err := admin.Create(ctx, "https://consumer.example.com/hooks", "case.created")
	require.NoError(t, err)

	deactivated, err := admin.SetActive(ctx, wh.ID, false)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)
	assert.Equal(t, wh.Secret, deactivated.Secret)

	matched, err := webhooks.ListActiveByEvent(ctx, "case.created")
	require.NoError(t, err)
	assert.Empty(t, matched)

	reactivated, err := admin.SetActive(ctx, wh.ID, true)
	require.NoError(t, err)
	assert.True(t, reactivated.Active)

	t.Run("unknown subscription", func(t *testing.T) {
		_, err := admin.SetActive(ctx, "missing", true)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestAdminDeliveries(t *testing.T) {
	admin, _, deliveries := newAdmin()
	ctx := context.Background()

	wh, err := admin.Create(ctx, "https://consumer.example.com/hooks", "case.created")
	require.NoError(t, err)

	require.NoError(t, deliveries.Append(ctx, domain.WebhookDelivery{
		ID: "del-1", WebhookID: wh.ID, Event: "case.created", Success: true,
	}))

	recs, err := admin.Deliveries(ctx, wh.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "del-1", recs[0].ID)

	t.Run("unknown subscription", func(t *testing.T) {
		_, err := admin.Deliveries(ctx, "missing")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("subscription with no attempts", func(t *testing.T) {
		fresh, err := admin.Create(ctx, "https://consumer.example.com/hooks", "case.updated")
		require.NoError(t, err)
		recs, err := admin.Deliveries(ctx, fresh.ID)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}
