package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-store-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Count     int64      `json:"count"`
	StampedAt *time.Time `json:"stampedAt,omitempty"`
}

func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func newStore() *Store {
	return New(WithClock(steppingClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))))
}

func TestListNewestFirst(t *testing.T) {
	s := newStore()
	items := store.NewCollection[item](s, "items")
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := items.Create(ctx, &item{Name: name})
		require.NoError(t, err)
	}

	got, err := items.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Name)
	assert.Equal(t, "a", got[2].Name)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestCreateIgnoresCallerMetadata(t *testing.T) {
	s := newStore()
	items := store.NewCollection[item](s, "items")

	id, err := items.Create(context.Background(), &item{ID: "mine", Name: "x"})
	require.NoError(t, err)
	assert.NotEqual(t, "mine", id)

	got, err := items.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestListFilters(t *testing.T) {
	s := newStore()
	items := store.NewCollection[item](s, "items")
	ctx := context.Background()
	_, _ = items.Create(ctx, &item{Name: "a", Status: "pending"})
	_, _ = items.Create(ctx, &item{Name: "b", Status: "received"})

	got, err := items.List(ctx, store.Where("status", "pending"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)
}

func TestUpdatePrecondition(t *testing.T) {
	s := newStore()
	items := store.NewCollection[item](s, "items")
	ctx := context.Background()
	id, err := items.Create(ctx, &item{Name: "a", Status: "pending"})
	require.NoError(t, err)

	fields := map[string]interface{}{"status": "received", "stampedAt": store.ServerTimestamp{}}
	require.NoError(t, items.Update(ctx, id, fields, store.Where("status", "pending")))

	err = items.Update(ctx, id, fields, store.Where("status", "pending"))
	assert.ErrorIs(t, err, store.ErrPreconditionFailed)

	err = items.Update(ctx, "missing", fields)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := items.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "received", got.Status)
	require.NotNil(t, got.StampedAt)
}

func TestIncrementAndDelete(t *testing.T) {
	s := newStore()
	items := store.NewCollection[item](s, "items")
	ctx := context.Background()
	id, err := items.Create(ctx, &item{Name: "a", Count: 3})
	require.NoError(t, err)

	require.NoError(t, items.Increment(ctx, id, "count", -5))
	got, err := items.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), got.Count)

	existed, err := items.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = items.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, existed)

	assert.ErrorIs(t, items.Increment(ctx, id, "count", 1), store.ErrNotFound)
}

func TestRunInTxRollsBack(t *testing.T) {
	s := newStore()
	items := store.NewCollection[item](s, "items")
	ctx := context.Background()
	id, err := items.Create(ctx, &item{Name: "a", Count: 1})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if err := items.Increment(ctx, id, "count", 10); err != nil {
			return err
		}
		inTx, err := items.Get(ctx, id)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(11), inTx.Count)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := items.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Count)
}

func TestRunInTxNested(t *testing.T) {
	s := newStore()
	items := store.NewCollection[item](s, "items")
	ctx := context.Background()

	err := s.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := items.Create(ctx, &item{Name: "outer"}); err != nil {
			return err
		}
		return s.RunInTx(ctx, func(ctx context.Context) error {
			_, err := items.Create(ctx, &item{Name: "inner"})
			return err
		})
	})
	require.NoError(t, err)

	got, err := items.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	s := newStore()
	defer s.Close()
	ctx := context.Background()

	snapshots := make(chan []store.Document, 10)
	unsubscribe, err := s.Subscribe("items", func(docs []store.Document, err error) {
		assert.NoError(t, err)
		snapshots <- docs
	})
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case docs := <-snapshots:
		assert.Empty(t, docs)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	_, err = s.Create(ctx, "items", map[string]interface{}{"name": "a"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case docs := <-snapshots:
			if len(docs) != 1 {
				return false
			}
			var got item
			return json.Unmarshal(docs[0], &got) == nil && got.Name == "a"
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
