package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaaban-furniture-backend/store"
)

type record struct {
	Name      string    `bson:"name"`
	UserID    string    `bson:"userId"`
	CreatedAt time.Time `bson:"createdAt"`
}

func decodeRecord(d store.Document) (record, error) {
	var r record
	err := d.DataTo(&r)
	return r, err
}

var ordersGate = Gate{Collection: "orders", OwnerField: "userId", OrderBy: "createdAt"}

func seed(t *testing.T, m *store.Memory) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, m.Set(ctx, "orders", "o1", record{Name: "o1", UserID: "alice", CreatedAt: base}))
	require.NoError(t, m.Set(ctx, "orders", "o2", record{Name: "o2", UserID: "bob", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, m.Set(ctx, "orders", "o3", record{Name: "o3", UserID: "alice", CreatedAt: base.Add(2 * time.Hour)}))
}

func waitView(t *testing.T, q *LiveQuery[record], match func(View[record]) bool) View[record] {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case v, ok := <-q.Views():
			require.True(t, ok, "views closed")
			if match(v) {
				return v
			}
		case <-deadline:
			t.Fatal("expected view never arrived")
			return View[record]{}
		}
	}
}

func itemNames(items []record) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestGatePlan(t *testing.T) {
	alice := Identity{UID: "alice"}
	tests := []struct {
		name    string
		gate    Gate
		session Session
		want    Plan
	}{
		{"auth unresolved", ordersGate, Session{}, Plan{Kind: PlanPending}},
		{"no identity", ordersGate, Guest(), Plan{Kind: PlanNone}},
		{"no identity ignores role", ordersGate, Session{AuthResolved: true, Role: RoleAdmin}, Plan{Kind: PlanNone}},
		{"role unresolved", ordersGate, Session{AuthResolved: true, Identity: &alice}, Plan{Kind: PlanPending}},
		{"admin", ordersGate, Resolved(alice, RoleAdmin), Plan{Kind: PlanAll}},
		{"customer", ordersGate, Resolved(alice, RoleCustomer), Plan{Kind: PlanOwned, Owner: "alice"}},
		{"customer on admin-only gate", Gate{Collection: "users"}, Resolved(alice, RoleCustomer), Plan{Kind: PlanNone}},
		{"guest on public gate", Gate{Collection: "products", Public: true}, Guest(), Plan{Kind: PlanAll}},
		{"public gate still waits for auth", Gate{Collection: "products", Public: true}, Session{}, Plan{Kind: PlanPending}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.gate.Plan(tt.session))
		})
	}
}

func TestGateLoad(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	seed(t, m)

	_, err := ordersGate.Load(ctx, m, Session{})
	assert.ErrorIs(t, err, ErrUnresolved)

	none, err := LoadAs(ctx, m, ordersGate, Guest(), decodeRecord)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := LoadAs(ctx, m, ordersGate, Resolved(Identity{UID: "root"}, RoleAdmin), decodeRecord)
	require.NoError(t, err)
	assert.Equal(t, []string{"o3", "o2", "o1"}, itemNames(all))

	own, err := LoadAs(ctx, m, ordersGate, Resolved(Identity{UID: "alice"}, RoleCustomer), decodeRecord)
	require.NoError(t, err)
	assert.Equal(t, []string{"o3", "o1"}, itemNames(own))
}

func TestLiveQueryNoIdentityIsEmptyNotLoading(t *testing.T) {
	m := store.NewMemory()
	seed(t, m)
	q := NewLiveQuery(m, ordersGate, decodeRecord, nil)
	defer q.Close()

	require.NoError(t, q.Apply(context.Background(), Guest()))
	v := waitView(t, q, func(v View[record]) bool { return !v.Loading })
	assert.Empty(t, v.Items)
	assert.NoError(t, v.Err)
	assert.Equal(t, 0, m.Subscribers("orders"))
}

func TestLiveQueryUnresolvedRoleIssuesNoQuery(t *testing.T) {
	m := store.NewMemory()
	seed(t, m)
	q := NewLiveQuery(m, ordersGate, decodeRecord, nil)
	defer q.Close()

	s := Session{AuthResolved: true, Identity: &Identity{UID: "alice"}}
	require.NoError(t, q.Apply(context.Background(), s))
	v := <-q.Views()
	assert.True(t, v.Loading)
	assert.Equal(t, 0, m.Subscribers("orders"))
	assert.Equal(t, PlanPending, q.Plan().Kind)
}

func TestLiveQuerySwitchTearsDownPreviousSubscription(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	seed(t, m)
	q := NewLiveQuery(m, ordersGate, decodeRecord, nil)
	defer q.Close()

	alice := Identity{UID: "alice"}
	require.NoError(t, q.Apply(ctx, Resolved(alice, RoleAdmin)))
	all := waitView(t, q, func(v View[record]) bool { return !v.Loading })
	assert.Equal(t, []string{"o3", "o2", "o1"}, itemNames(all.Items))
	assert.Equal(t, 1, m.Subscribers("orders"))

	require.NoError(t, q.Apply(ctx, Resolved(alice, RoleCustomer)))
	assert.Equal(t, 1, m.Subscribers("orders"))
	own := waitView(t, q, func(v View[record]) bool { return !v.Loading })
	assert.Equal(t, []string{"o3", "o1"}, itemNames(own.Items))

	require.NoError(t, m.Set(ctx, "orders", "o4", record{Name: "o4", UserID: "bob", CreatedAt: time.Now()}))
	require.NoError(t, m.Set(ctx, "orders", "o5", record{Name: "o5", UserID: "alice", CreatedAt: time.Now()}))
	latest := waitView(t, q, func(v View[record]) bool { return len(v.Items) == 3 })
	assert.NotContains(t, itemNames(latest.Items), "o2")
	assert.NotContains(t, itemNames(latest.Items), "o4")
}

func TestLiveQuerySamePlanIsNoop(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	q := NewLiveQuery(m, ordersGate, decodeRecord, nil)
	defer q.Close()

	s := Resolved(Identity{UID: "alice"}, RoleCustomer)
	require.NoError(t, q.Apply(ctx, s))
	require.NoError(t, q.Apply(ctx, s))
	assert.Equal(t, 1, m.Subscribers("orders"))
}

func TestLiveQueryCloseCancels(t *testing.T) {
	m := store.NewMemory()
	q := NewLiveQuery(m, ordersGate, decodeRecord, nil)
	require.NoError(t, q.Apply(context.Background(), Resolved(Identity{UID: "root"}, RoleAdmin)))
	q.Close()
	q.Close()
	assert.Equal(t, 0, m.Subscribers("orders"))
}

func TestRoleResolver(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	r := NewRoleResolver(m, nil)

	assert.False(t, r.IsAdmin(ctx, "alice"))
	assert.False(t, r.IsAdmin(ctx, ""))

	require.NoError(t, r.Grant(ctx, "alice"))
	assert.True(t, r.IsAdmin(ctx, "alice"))
	assert.Equal(t, RoleAdmin, r.Resolve(ctx, &Identity{UID: "alice"}).Role)
	assert.Equal(t, RoleCustomer, r.Resolve(ctx, &Identity{UID: "alice", Anonymous: true}).Role)

	set, err := r.AdminSet(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"alice": true}, set)

	require.NoError(t, r.Revoke(ctx, "alice"))
	assert.False(t, r.IsAdmin(ctx, "alice"))

	guest := r.Resolve(ctx, nil)
	assert.True(t, guest.AuthResolved)
	assert.Nil(t, guest.Identity)
}

func TestRoleWatchFollowsGrantAndRevoke(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	r := NewRoleResolver(m, nil)

	w, err := r.Watch(ctx, "alice")
	require.NoError(t, err)
	defer w.Cancel()

	next := func() Role {
		select {
		case role := <-w.Roles():
			return role
		case <-time.After(time.Second):
			t.Fatal("no role delivered")
		}
		return RoleUnresolved
	}
	assert.Equal(t, RoleCustomer, next())

	require.NoError(t, r.Grant(ctx, "alice"))
	assert.Equal(t, RoleAdmin, next())

	require.NoError(t, r.Revoke(ctx, "alice"))
	assert.Equal(t, RoleCustomer, next())
}

func TestSessionHome(t *testing.T) {
	assert.Equal(t, "/login", Guest().Home())
	assert.Equal(t, "/login", Resolved(Identity{UID: "x", Anonymous: true}, RoleCustomer).Home())
	assert.Equal(t, "/account", Resolved(Identity{UID: "x"}, RoleCustomer).Home())
	assert.Equal(t, "/admin", Resolved(Identity{UID: "x"}, RoleAdmin).Home())
	assert.Equal(t, "Anonymous User", Identity{}.Name())
	assert.Equal(t, "a@b.co", Identity{Email: "a@b.co"}.Name())
}
