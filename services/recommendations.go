package services

import (
	"context"
	"log"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/ai"
	"shaaban-furniture-backend/cart"
	"shaaban-furniture-backend/models"
)

const fallbackRecommendations = 5

// RecommendationService suggests products next to the one being viewed.
type RecommendationService struct {
	products  *ProductService
	carts     *cart.Registry
	assistant *ai.Assistant
	logger    *log.Logger
}

func NewRecommendationService(products *ProductService, carts *cart.Registry, assistant *ai.Assistant, logger *log.Logger) *RecommendationService {
	if logger == nil {
		logger = log.Default()
	}
	return &RecommendationService{products: products, carts: carts, assistant: assistant, logger: logger}
}

// RecordView adds productID to the caller's viewed history.
func (s *RecommendationService) RecordView(sess access.Session, productID string) []string {
	if sess.Identity == nil || productID == "" {
		return nil
	}
	return s.carts.History(sess.UID()).Record(productID)
}

// Recommend asks the model using the caller's history and cart. When that
// fails or leaves nothing, featured products other than currentID are
// returned instead.
func (s *RecommendationService) Recommend(ctx context.Context, sess access.Session, currentID string) ([]models.Product, error) {
	catalog, err := s.products.List(ctx, ProductFilter{})
	if err != nil {
		return nil, err
	}

	var in ai.RecommendationInput
	if sess.Identity != nil {
		in.ViewedProductIDs = s.RecordView(sess, currentID)
		state, err := s.carts.Cart(sess.UID()).State(ctx)
		if err != nil {
			s.logger.Printf("recommendations: cart of %s unavailable: %v", sess.UID(), err)
		}
		for _, it := range state.Items {
			in.CartProductIDs = append(in.CartProductIDs, it.Product.ID)
		}
	} else if currentID != "" {
		in.ViewedProductIDs = []string{currentID}
	}

	ids, err := s.assistant.Recommend(ctx, in, catalog)
	if err != nil {
		s.logger.Printf("recommendations: falling back to featured: %v", err)
		return s.products.Featured(ctx, currentID, fallbackRecommendations)
	}
	byID := make(map[string]models.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if id == currentID {
			continue
		}
		out = append(out, byID[id])
	}
	if len(out) == 0 {
		return s.products.Featured(ctx, currentID, fallbackRecommendations)
	}
	return out, nil
}
