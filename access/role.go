package access

import (
	"context"
	"fmt"
	"log"
	"sync"

	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

// RoleResolver checks admin membership through keyed documents in roles_admin.
type RoleResolver struct {
	store  store.Store
	logger *log.Logger
}

func NewRoleResolver(st store.Store, logger *log.Logger) *RoleResolver {
	if logger == nil {
		logger = log.Default()
	}
	return &RoleResolver{store: st, logger: logger}
}

// IsAdmin reports whether uid has a roles_admin document. Lookup failures
// are logged and treated as not admin.
func (r *RoleResolver) IsAdmin(ctx context.Context, uid string) bool {
	if uid == "" {
		return false
	}
	ok, err := store.Exists(ctx, r.store, store.AdminRoles, uid)
	if err != nil {
		r.logger.Printf("role lookup for %s failed: %v", uid, err)
		return false
	}
	return ok
}

// Resolve builds a resolved Session for id, which may be nil.
func (r *RoleResolver) Resolve(ctx context.Context, id *Identity) Session {
	if id == nil {
		return Guest()
	}
	role := RoleCustomer
	if !id.Anonymous && r.IsAdmin(ctx, id.UID) {
		role = RoleAdmin
	}
	return Resolved(*id, role)
}

func (r *RoleResolver) Grant(ctx context.Context, uid string) error {
	if err := r.store.Set(ctx, store.AdminRoles, uid, models.AdminRole{ID: uid, Role: "admin"}); err != nil {
		return fmt.Errorf("grant admin to %s: %w", uid, err)
	}
	return nil
}

func (r *RoleResolver) Revoke(ctx context.Context, uid string) error {
	if err := r.store.Delete(ctx, store.AdminRoles, uid); err != nil {
		return fmt.Errorf("revoke admin from %s: %w", uid, err)
	}
	return nil
}

// AdminSet returns the uids currently holding the admin role.
func (r *RoleResolver) AdminSet(ctx context.Context) (map[string]bool, error) {
	docs, err := r.store.Find(ctx, store.Query{Collection: store.AdminRoles})
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	set := make(map[string]bool, len(docs))
	for _, d := range docs {
		set[d.ID()] = true
	}
	return set, nil
}

// RoleWatch follows one uid's role. Roles delivers latest-wins.
type RoleWatch struct {
	sub   store.Subscription
	roles chan Role
	mu    sync.Mutex
	done  bool
}

func (w *RoleWatch) Roles() <-chan Role { return w.roles }

func (w *RoleWatch) Cancel() {
	w.sub.Cancel()
}

func (w *RoleWatch) push(role Role) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return
	}
	select {
	case <-w.roles:
	default:
	}
	w.roles <- role
}

func (w *RoleWatch) finish() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.done = true
	close(w.roles)
}

// Watch emits uid's role now and after every grant or revoke.
func (r *RoleResolver) Watch(ctx context.Context, uid string) (*RoleWatch, error) {
	sub, err := r.store.Watch(ctx, store.Query{Collection: store.AdminRoles}.Where("id", uid))
	if err != nil {
		return nil, fmt.Errorf("watch role of %s: %w", uid, err)
	}
	w := &RoleWatch{sub: sub, roles: make(chan Role, 1)}
	go func() {
		defer w.finish()
		for snap := range sub.Snapshots() {
			if snap.Err != nil {
				r.logger.Printf("role watch for %s failed: %v", uid, snap.Err)
				w.push(RoleCustomer)
				continue
			}
			if len(snap.Docs) > 0 {
				w.push(RoleAdmin)
			} else {
				w.push(RoleCustomer)
			}
		}
	}()
	return w, nil
}
