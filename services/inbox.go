package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

var (
	messagesGate    = access.Gate{Collection: store.Messages, OrderBy: "createdAt"}
	subscribersGate = access.Gate{Collection: store.Subscribers, OrderBy: "createdAt"}
)

// InboxService handles contact messages and newsletter sign-ups.
type InboxService struct {
	store  store.Store
	logger *log.Logger
	now    clock
}

func NewInboxService(st store.Store, logger *log.Logger) *InboxService {
	if logger == nil {
		logger = log.Default()
	}
	return &InboxService{store: st, logger: logger, now: time.Now}
}

func (s *InboxService) Contact(ctx context.Context, req models.ContactRequest) (models.Message, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if err := check(req); err != nil {
		return models.Message{}, err
	}
	m := models.Message{Name: req.Name, Email: req.Email, Message: req.Message, CreatedAt: s.now()}
	id, err := s.store.Add(ctx, store.Messages, m)
	if err != nil {
		return models.Message{}, fmt.Errorf("save message: %w", err)
	}
	m.ID = id
	return m, nil
}

func (s *InboxService) Messages(ctx context.Context, sess access.Session) ([]models.Message, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return access.LoadAs(ctx, s.store, messagesGate, sess, messageDecoder(s.now))
}

// ToggleRead flips the read flag and returns the new value.
func (s *InboxService) ToggleRead(ctx context.Context, sess access.Session, id string) (bool, error) {
	if err := requireAdmin(sess); err != nil {
		return false, err
	}
	doc, err := s.store.Get(ctx, store.Messages, id)
	if err != nil {
		return false, err
	}
	m, err := messageDecoder(s.now)(doc)
	if err != nil {
		return false, err
	}
	if err := s.store.Update(ctx, store.Messages, id, map[string]any{"isRead": !m.IsRead}); err != nil {
		return false, err
	}
	return !m.IsRead, nil
}

func (s *InboxService) DeleteMessage(ctx context.Context, sess access.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	return s.store.Delete(ctx, store.Messages, id)
}

// Subscribe is idempotent per email; created reports whether it was new.
func (s *InboxService) Subscribe(ctx context.Context, req models.NewsletterRequest) (created bool, err error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := check(req); err != nil {
		return false, err
	}
	exists, err := store.Exists(ctx, s.store, store.Subscribers, req.Email)
	if err != nil || exists {
		return false, err
	}
	sub := models.Subscriber{Email: req.Email, CreatedAt: s.now()}
	if err := s.store.Set(ctx, store.Subscribers, req.Email, sub); err != nil {
		return false, fmt.Errorf("subscribe: %w", err)
	}
	return true, nil
}

func (s *InboxService) Subscribers(ctx context.Context, sess access.Session) ([]models.Subscriber, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return access.LoadAs(ctx, s.store, subscribersGate, sess, subscriberDecoder(s.now))
}

func (s *InboxService) DeleteSubscriber(ctx context.Context, sess access.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	return s.store.Delete(ctx, store.Subscribers, id)
}
