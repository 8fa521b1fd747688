package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaaban-furniture-backend/models"
)

var (
	sofa  = models.Product{ID: "sofa", Name: "Sofa", Price: 500000}
	chair = models.Product{ID: "chair", Name: "Chair", Price: 80000}
)

func TestReduceAddMergesByProduct(t *testing.T) {
	s := Reduce(State{}, Add(sofa, 2))
	s = Reduce(s, Add(sofa, 3))
	require.Len(t, s.Items, 1)
	assert.Equal(t, 5, s.Items[0].Quantity)

	s = Reduce(s, Add(chair, 1))
	assert.Len(t, s.Items, 2)
	assert.Equal(t, 6, s.Count())
	assert.Equal(t, int64(5*500000+80000), s.Total())
}

func TestReduceUpdateQuantityToZeroRemoves(t *testing.T) {
	s := Reduce(Reduce(State{}, Add(sofa, 2)), Add(chair, 1))
	s = Reduce(s, UpdateQuantity("sofa", 0))
	require.Len(t, s.Items, 1)
	assert.Equal(t, "chair", s.Items[0].Product.ID)

	s = Reduce(s, UpdateQuantity("chair", 4))
	assert.Equal(t, 4, s.Items[0].Quantity)

	s = Reduce(s, UpdateQuantity("chair", -1))
	assert.True(t, s.Empty())
}

func TestReduceRemoveClearAndSetState(t *testing.T) {
	s := Reduce(Reduce(State{}, Add(sofa, 1)), Add(chair, 1))
	s = Reduce(s, Remove("sofa"))
	require.Len(t, s.Items, 1)

	cleared := Reduce(s, Clear())
	assert.True(t, cleared.Empty())
	assert.Len(t, s.Items, 1, "input state must not change")

	restored := Reduce(State{}, SetState(State{Items: []Item{{Product: sofa, Quantity: 7}}}))
	assert.Equal(t, 7, restored.Count())

	assert.Equal(t, s, Reduce(s, Add(sofa, 0)))
}

func TestReduceSubtractKeepsLaterAdditions(t *testing.T) {
	lamp := models.Product{ID: "lamp", Name: "Lamp", Price: 30000}
	ordered := Reduce(State{}, Add(sofa, 1))

	s := Reduce(ordered, Add(lamp, 2))
	s = Reduce(s, Add(sofa, 1))
	s = Reduce(s, Subtract(ordered))

	require.Len(t, s.Items, 2)
	assert.Equal(t, "sofa", s.Items[0].Product.ID)
	assert.Equal(t, 1, s.Items[0].Quantity)
	assert.Equal(t, "lamp", s.Items[1].Product.ID)
	assert.Equal(t, 2, s.Items[1].Quantity)

	assert.True(t, Reduce(ordered, Subtract(ordered)).Empty())
}

func TestCartPersistsEveryTransition(t *testing.T) {
	ctx := context.Background()
	st := &MemoryStorage[State]{}
	c := New(st, nil)
	defer c.Close()

	_, err := c.Dispatch(ctx, Add(sofa, 1))
	require.NoError(t, err)
	_, err = c.Dispatch(ctx, Add(sofa, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, st.Saves())

	saved, ok, err := st.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, saved.Count())

	reloaded := New(st, nil)
	defer reloaded.Close()
	state, err := reloaded.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Count())
}

func TestCartSaveFailureKeepsTransition(t *testing.T) {
	st := &MemoryStorage[State]{SaveErr: errors.New("disk full")}
	c := New(st, nil)
	defer c.Close()

	state, err := c.Dispatch(context.Background(), Add(chair, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, state.Count())
}

func TestCartClosed(t *testing.T) {
	c := New(&MemoryStorage[State]{}, nil)
	c.Close()
	c.Close()
	_, err := c.State(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFileStorageRoundTrip(t *testing.T) {
	fs := FileStorage[State]{Path: t.TempDir() + "/nested/cart.json"}
	_, ok, err := fs.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	want := State{Items: []Item{{Product: sofa, Quantity: 2}}}
	require.NoError(t, fs.Save(want))
	got, ok, err := fs.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want.Count(), got.Count())
	assert.Equal(t, "sofa", got.Items[0].Product.ID)
}

func TestHistoryRecord(t *testing.T) {
	var ids []string
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		ids = Record(ids, id)
	}
	assert.Equal(t, []string{"f", "e", "d", "c", "b"}, ids)

	assert.Equal(t, []string{"f", "e", "d", "c", "b"}, Record(ids, "d"), "existing id is not moved")

	h := NewHistory(&MemoryStorage[[]string]{}, nil)
	h.Record("x")
	assert.Equal(t, []string{"y", "x"}, h.Record("y"))
	assert.Equal(t, []string{"y", "x"}, h.IDs())
}

func TestRegistryActive(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := NewRegistry(dir, nil)

	_, err := r.Cart("alice").Dispatch(ctx, Add(sofa, 1))
	require.NoError(t, err)
	_, err = r.Cart("bob").State(ctx)
	require.NoError(t, err)
	assert.Same(t, r.Cart("alice"), r.Cart("alice"))
	r.Close()

	fresh := NewRegistry(dir, nil)
	defer fresh.Close()
	owners, err := fresh.Active(ctx)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, "alice", owners[0].UID)
	assert.Equal(t, int64(500000), owners[0].Total)

	fresh.History("alice").Record("sofa")
	assert.Equal(t, []string{"sofa"}, NewRegistry(dir, nil).History("alice").IDs())
}
