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

// Submissions wait in reviews_private; approval copies the public fields to
// reviews_public under the same id.
var (
	moderationGate = access.Gate{Collection: store.ReviewsPrivate, OwnerField: "userId", OrderBy: "createdAt"}
	publicGate     = access.Gate{Collection: store.ReviewsPublic, OrderBy: "approvedAt", Public: true}
)

type ReviewService struct {
	store  store.Store
	logger *log.Logger
	now    clock
}

func NewReviewService(st store.Store, logger *log.Logger) *ReviewService {
	if logger == nil {
		logger = log.Default()
	}
	return &ReviewService{store: st, logger: logger, now: time.Now}
}

// Submit stores a pending review from a signed-in customer.
func (s *ReviewService) Submit(ctx context.Context, sess access.Session, req models.ReviewRequest) (models.PrivateReview, error) {
	if err := requireSignedIn(sess); err != nil {
		return models.PrivateReview{}, err
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := check(req); err != nil {
		return models.PrivateReview{}, err
	}
	r := models.PrivateReview{
		UserID:    sess.UID(),
		Name:      sess.Identity.Name(),
		Rating:    req.Rating,
		Message:   req.Message,
		Status:    models.ReviewPending,
		CreatedAt: s.now(),
	}
	id, err := s.store.Add(ctx, store.ReviewsPrivate, r)
	if err != nil {
		return models.PrivateReview{}, fmt.Errorf("submit review: %w", err)
	}
	r.ID = id
	return r, nil
}

func (s *ReviewService) private(ctx context.Context, id string) (models.PrivateReview, error) {
	doc, err := s.store.Get(ctx, store.ReviewsPrivate, id)
	if err != nil {
		return models.PrivateReview{}, err
	}
	return privateReviewDecoder(s.now)(doc)
}

// Approve publishes the review and marks the private copy approved.
func (s *ReviewService) Approve(ctx context.Context, sess access.Session, id string) (models.PublicReview, error) {
	if err := requireAdmin(sess); err != nil {
		return models.PublicReview{}, err
	}
	r, err := s.private(ctx, id)
	if err != nil {
		return models.PublicReview{}, err
	}
	pub := models.PublicReview{
		Name:       r.Name,
		Rating:     r.Rating,
		Message:    r.Message,
		CreatedAt:  r.CreatedAt,
		ApprovedAt: s.now(),
	}
	if err := s.store.Set(ctx, store.ReviewsPublic, id, pub); err != nil {
		return models.PublicReview{}, fmt.Errorf("publish review %s: %w", id, err)
	}
	if err := s.store.Update(ctx, store.ReviewsPrivate, id, map[string]any{"status": models.ReviewApproved}); err != nil {
		return models.PublicReview{}, fmt.Errorf("mark review %s approved: %w", id, err)
	}
	pub.ID = id
	return pub, nil
}

// Reject discards the submission and withdraws any published copy.
func (s *ReviewService) Reject(ctx context.Context, sess access.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if _, err := s.private(ctx, id); err != nil {
		return err
	}
	return s.removeBoth(ctx, id)
}

// Delete removes both copies, whichever exist.
func (s *ReviewService) Delete(ctx context.Context, sess access.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	return s.removeBoth(ctx, id)
}

func (s *ReviewService) removeBoth(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, store.ReviewsPublic, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, store.ReviewsPrivate, id)
}

// Public returns approved reviews, most recently approved first.
func (s *ReviewService) Public(ctx context.Context, limit int) ([]models.PublicReview, error) {
	q := publicGate.Query(access.Plan{Kind: access.PlanAll})
	q.Limit = limit
	docs, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return access.DecodeAll(docs, publicReviewDecoder(s.now))
}

// Moderation lists submissions: all of them for admins, a customer's own otherwise.
func (s *ReviewService) Moderation(ctx context.Context, sess access.Session) ([]models.PrivateReview, error) {
	return access.LoadAs(ctx, s.store, moderationGate, sess, privateReviewDecoder(s.now))
}

// NewLive returns an unstarted role-gated live query over submissions.
func (s *ReviewService) NewLive() *access.LiveQuery[models.PrivateReview] {
	return access.NewLiveQuery(s.store, moderationGate, privateReviewDecoder(s.now), s.logger)
}
