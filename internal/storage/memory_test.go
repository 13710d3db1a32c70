package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodzerz/customs-crm/internal/domain"
)

func TestInMemoryEventStoreSeq(t *testing.T) {
	store := NewInMemoryEventStore()
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"ev-1", "ev-2", "ev-3"} {
		stored, err := store.Append(ctx, domain.CaseEvent{ID: id, CaseID: "case-1", CreatedAt: at})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), stored.Seq)
	}

	// Sequence numbers are per case, not global.
	other, err := store.Append(ctx, domain.CaseEvent{ID: "ev-4", CaseID: "case-2", CreatedAt: at})
	require.NoError(t, err)
	assert.Equal(t, int64(1), other.Seq)

	t.Run("identical timestamps order by seq descending", func(t *testing.T) {
		events, err := store.ListByCase(ctx, "case-1")
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, "ev-3", events[0].ID)
		assert.Equal(t, "ev-2", events[1].ID)
		assert.Equal(t, "ev-1", events[2].ID)
	})
}

func TestInMemoryWebhookStoreRetryBookkeeping(t *testing.T) {
	store := NewInMemoryWebhookStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.Webhook{ID: "wh-1", Event: "case.created", Active: true}))

	require.NoError(t, store.IncrementRetry(ctx, "wh-1"))
	require.NoError(t, store.IncrementRetry(ctx, "wh-1"))

	wh, err := store.FindByID(ctx, "wh-1")
	require.NoError(t, err)
	assert.Equal(t, 2, wh.RetryCount)
	assert.Nil(t, wh.LastTriggeredAt)

	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.MarkSuccess(ctx, "wh-1", at))

	wh, err = store.FindByID(ctx, "wh-1")
	require.NoError(t, err)
	assert.Zero(t, wh.RetryCount)
	require.NotNil(t, wh.LastTriggeredAt)
	assert.Equal(t, at, *wh.LastTriggeredAt)

	t.Run("unknown subscription", func(t *testing.T) {
		assert.ErrorIs(t, store.IncrementRetry(ctx, "missing"), ErrNotFound)
		assert.ErrorIs(t, store.MarkSuccess(ctx, "missing", at), ErrNotFound)
	})

	t.Run("parallel increments do not lose updates", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.Webhook{ID: "wh-2", Event: "case.created", Active: true}))
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = store.IncrementRetry(ctx, "wh-2")
			}()
		}
		wg.Wait()
		wh, err := store.FindByID(ctx, "wh-2")
		require.NoError(t, err)
		assert.Equal(t, 50, wh.RetryCount)
	})
}

func TestInMemoryWebhookStoreListActiveByEvent(t *testing.T) {
	store := NewInMemoryWebhookStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.Webhook{ID: "wh-a", Event: "case.created", Active: true}))
	require.NoError(t, store.Save(ctx, domain.Webhook{ID: "wh-b", Event: "case.created", Active: false}))
	require.NoError(t, store.Save(ctx, domain.Webhook{ID: "wh-c", Event: "case.updated", Active: true}))

	matched, err := store.ListActiveByEvent(ctx, "case.created")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "wh-a", matched[0].ID)
}

func TestInMemoryDeliveryStoreOrder(t *testing.T) {
	store := NewInMemoryDeliveryStore()
	ctx := context.Background()
	for _, id := range []string{"del-1", "del-2", "del-3"} {
		require.NoError(t, store.Append(ctx, domain.WebhookDelivery{ID: id, WebhookID: "wh-1"}))
	}

	recs, err := store.ListByWebhook(ctx, "wh-1")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "del-3", recs[0].ID)
	assert.Equal(t, "del-1", recs[2].ID)
}

func TestInMemoryPartyStoreAttach(t *testing.T) {
	store := NewInMemoryPartyStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.Party{ID: "p-1", Name: "Acme Logistics"}))

	link := domain.CaseParty{CaseID: "case-1", PartyID: "p-1", Role: domain.RoleCarrier}
	require.NoError(t, store.AttachToCase(ctx, link))
	// Attaching the same party twice is a no-op.
	require.NoError(t, store.AttachToCase(ctx, link))

	links, err := store.ListByCase(ctx, "case-1")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, domain.RoleCarrier, links[0].Role)
}
