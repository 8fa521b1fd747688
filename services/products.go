package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/media"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

var productsGate = access.Gate{Collection: store.Products, OrderBy: "createdAt", Public: true}

// ProductFilter narrows List. Zero values match everything.
type ProductFilter struct {
	Category string
	Featured bool
	Limit    int
}

type ProductService struct {
	store  store.Store
	media  media.Uploader
	logger *log.Logger
	now    clock
}

// NewProductService wires the catalog. up may be nil, which disables image uploads.
func NewProductService(st store.Store, up media.Uploader, logger *log.Logger) *ProductService {
	if logger == nil {
		logger = log.Default()
	}
	return &ProductService{store: st, media: up, logger: logger, now: time.Now}
}

func (s *ProductService) decoder() access.Decoder[models.Product] {
	return productDecoder(s.now)
}

// List returns products newest first.
func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := store.Query{Collection: store.Products, Limit: f.Limit}.Newest("createdAt")
	if f.Category != "" {
		q = q.Where("category", f.Category)
	}
	if f.Featured {
		q = q.Where("isFeatured", true)
	}
	docs, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return access.DecodeAll(docs, s.decoder())
}

func (s *ProductService) Get(ctx context.Context, id string) (models.Product, error) {
	doc, err := s.store.Get(ctx, store.Products, id)
	if err != nil {
		return models.Product{}, err
	}
	return s.decoder()(doc)
}

// Featured returns up to limit featured products other than except.
func (s *ProductService) Featured(ctx context.Context, except string, limit int) ([]models.Product, error) {
	all, err := s.List(ctx, ProductFilter{Featured: true})
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, limit)
	for _, p := range all {
		if p.ID == except {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// NewLive returns an unstarted live query over the catalog.
func (s *ProductService) NewLive() *access.LiveQuery[models.Product] {
	return access.NewLiveQuery(s.store, productsGate, s.decoder(), s.logger)
}

func (s *ProductService) images(ctx context.Context, req models.ProductRequest) ([]models.ProductImage, error) {
	images := make([]models.ProductImage, 0, len(req.Images)+1)
	for _, img := range req.Images {
		if strings.TrimSpace(img.URL) != "" {
			images = append(images, img)
		}
	}
	if req.ImageBase64 == "" {
		return images, nil
	}
	if s.media == nil {
		return nil, invalid("image_base64", "image uploads are not configured")
	}
	uploaded, err := s.media.Upload(ctx, req.ImageBase64)
	if err != nil {
		return nil, err
	}
	uploaded.Hint = req.ImageHint
	return append(images, uploaded), nil
}

func fromRequest(req models.ProductRequest, images []models.ProductImage) models.Product {
	return models.Product{
		Name:               strings.TrimSpace(req.Name),
		Description:        strings.TrimSpace(req.Description),
		Price:              req.Price,
		Category:           req.Category,
		Images:             images,
		Sizes:              req.Sizes,
		Materials:          req.Materials,
		Stock:              req.Stock,
		IsFeatured:         req.IsFeatured,
		DiscountPercentage: req.DiscountPercentage,
		DeliveryInfo:       req.DeliveryInfo,
	}
}

func (s *ProductService) Create(ctx context.Context, sess access.Session, req models.ProductRequest) (models.Product, error) {
	if err := requireAdmin(sess); err != nil {
		return models.Product{}, err
	}
	if err := check(req); err != nil {
		return models.Product{}, err
	}
	images, err := s.images(ctx, req)
	if err != nil {
		return models.Product{}, err
	}
	p := fromRequest(req, images)
	p.CreatedAt = s.now()

	id, err := s.store.Add(ctx, store.Products, p)
	if err != nil {
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}
	p.ID = id
	return p, nil
}

// Update replaces the editable fields of id, keeping its creation time.
func (s *ProductService) Update(ctx context.Context, sess access.Session, id string, req models.ProductRequest) (models.Product, error) {
	if err := requireAdmin(sess); err != nil {
		return models.Product{}, err
	}
	if err := check(req); err != nil {
		return models.Product{}, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	images, err := s.images(ctx, req)
	if err != nil {
		return models.Product{}, err
	}
	p := fromRequest(req, images)
	p.CreatedAt = existing.CreatedAt
	if err := s.store.Set(ctx, store.Products, id, p); err != nil {
		return models.Product{}, fmt.Errorf("update product %s: %w", id, err)
	}
	p.ID = id
	s.destroyDropped(ctx, existing.Images, images)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, sess access.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, store.Products, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	s.destroyDropped(ctx, existing.Images, nil)
	return nil
}

// destroyDropped removes hosted images that are no longer referenced.
// Failures are only logged.
func (s *ProductService) destroyDropped(ctx context.Context, before, after []models.ProductImage) {
	if s.media == nil {
		return
	}
	kept := make(map[string]bool, len(after))
	for _, img := range after {
		kept[img.PublicID] = true
	}
	for _, img := range before {
		if img.PublicID == "" || kept[img.PublicID] {
			continue
		}
		if err := s.media.Destroy(ctx, img.PublicID); err != nil {
			s.logger.Printf("could not remove image %s: %v", img.PublicID, err)
		}
	}
}

// productUnavailable reports a product referenced by a cart or sale that is gone.
func productUnavailable(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("product %s is no longer available: %w", id, ErrNotFound)
	}
	return err
}
