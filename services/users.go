package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

var usersGate = access.Gate{Collection: store.Users, OrderBy: "createdAt"}

type UserService struct {
	store  store.Store
	roles  *access.RoleResolver
	logger *log.Logger
	now    clock
}

func NewUserService(st store.Store, roles *access.RoleResolver, logger *log.Logger) *UserService {
	if logger == nil {
		logger = log.Default()
	}
	return &UserService{store: st, roles: roles, logger: logger, now: time.Now}
}

// List returns all profiles newest first with IsAdmin filled in. Admin only.
func (s *UserService) List(ctx context.Context, sess access.Session) ([]models.UserProfile, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	users, err := access.LoadAs(ctx, s.store, usersGate, sess, profileDecoder(s.now))
	if err != nil {
		return nil, err
	}
	admins, err := s.roles.AdminSet(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].IsAdmin = admins[users[i].ID]
	}
	return users, nil
}

func (s *UserService) Profile(ctx context.Context, uid string) (models.UserProfile, error) {
	doc, err := s.store.Get(ctx, store.Users, uid)
	if err != nil {
		return models.UserProfile{}, err
	}
	u, err := profileDecoder(s.now)(doc)
	if err != nil {
		return models.UserProfile{}, err
	}
	u.IsAdmin = s.roles.IsAdmin(ctx, uid)
	return u, nil
}

// SetAdmin grants or revokes the admin role of uid. Admins cannot revoke themselves.
func (s *UserService) SetAdmin(ctx context.Context, sess access.Session, uid string, admin bool) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if !admin && uid == sess.UID() {
		return ErrSelfRevoke
	}
	if _, err := s.store.Get(ctx, store.Users, uid); err != nil {
		return err
	}
	if admin {
		return s.roles.Grant(ctx, uid)
	}
	return s.roles.Revoke(ctx, uid)
}

// Delete removes the profile, the admin role and the sign-in credential of uid.
func (s *UserService) Delete(ctx context.Context, sess access.Session, uid string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if uid == sess.UID() {
		return fmt.Errorf("%w: cannot delete your own account here", ErrPermissionDenied)
	}
	profile, err := s.Profile(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.roles.Revoke(ctx, uid); err != nil {
		return err
	}
	if profile.Email != "" {
		if err := s.deleteCredential(ctx, profile.Email, uid); err != nil {
			return err
		}
	}
	return s.store.Delete(ctx, store.Users, uid)
}

func (s *UserService) deleteCredential(ctx context.Context, email, uid string) error {
	key := strings.ToLower(email)
	doc, err := s.store.Get(ctx, store.Credentials, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var cred models.Credential
	if err := doc.DataTo(&cred); err != nil {
		return err
	}
	if cred.UID != uid {
		return nil
	}
	return s.store.Delete(ctx, store.Credentials, key)
}

// UpdateProfile changes the caller's own display name and photo.
func (s *UserService) UpdateProfile(ctx context.Context, sess access.Session, req models.ProfileRequest) (models.UserProfile, error) {
	if err := requireSignedIn(sess); err != nil {
		return models.UserProfile{}, err
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.PhotoURL = strings.TrimSpace(req.PhotoURL)
	if err := check(req); err != nil {
		return models.UserProfile{}, err
	}
	fields := map[string]any{"displayName": req.DisplayName, "photoURL": req.PhotoURL}
	if err := s.store.Update(ctx, store.Users, sess.UID(), fields); err != nil {
		return models.UserProfile{}, err
	}
	return s.Profile(ctx, sess.UID())
}
