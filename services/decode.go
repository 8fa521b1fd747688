package services

import (
	"time"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

type clock func() time.Time

// The decoders fill in ids and replace missing timestamps with now.

func productDecoder(now clock) access.Decoder[models.Product] {
	return func(d store.Document) (models.Product, error) {
		var p models.Product
		if err := d.DataTo(&p); err != nil {
			return p, err
		}
		p.ID = d.ID()
		p.CreatedAt = models.NormalizeTime(p.CreatedAt, now)
		if p.Images == nil {
			p.Images = []models.ProductImage{}
		}
		return p, nil
	}
}

func orderDecoder(now clock) access.Decoder[models.Order] {
	return func(d store.Document) (models.Order, error) {
		var o models.Order
		if err := d.DataTo(&o); err != nil {
			return o, err
		}
		o.ID = d.ID()
		o.CreatedAt = models.NormalizeTime(o.CreatedAt, now)
		if o.Items == nil {
			o.Items = []models.OrderItem{}
		}
		return o, nil
	}
}

func privateReviewDecoder(now clock) access.Decoder[models.PrivateReview] {
	return func(d store.Document) (models.PrivateReview, error) {
		var r models.PrivateReview
		if err := d.DataTo(&r); err != nil {
			return r, err
		}
		r.ID = d.ID()
		r.CreatedAt = models.NormalizeTime(r.CreatedAt, now)
		return r, nil
	}
}

func publicReviewDecoder(now clock) access.Decoder[models.PublicReview] {
	return func(d store.Document) (models.PublicReview, error) {
		var r models.PublicReview
		if err := d.DataTo(&r); err != nil {
			return r, err
		}
		r.ID = d.ID()
		r.CreatedAt = models.NormalizeTime(r.CreatedAt, now)
		r.ApprovedAt = models.NormalizeTime(r.ApprovedAt, now)
		return r, nil
	}
}

func profileDecoder(now clock) access.Decoder[models.UserProfile] {
	return func(d store.Document) (models.UserProfile, error) {
		var u models.UserProfile
		if err := d.DataTo(&u); err != nil {
			return u, err
		}
		u.ID = d.ID()
		u.CreatedAt = models.NormalizeTime(u.CreatedAt, now)
		u.LastLoginAt = models.NormalizeTime(u.LastLoginAt, now)
		return u, nil
	}
}

func messageDecoder(now clock) access.Decoder[models.Message] {
	return func(d store.Document) (models.Message, error) {
		var m models.Message
		if err := d.DataTo(&m); err != nil {
			return m, err
		}
		m.ID = d.ID()
		m.CreatedAt = models.NormalizeTime(m.CreatedAt, now)
		return m, nil
	}
}

func subscriberDecoder(now clock) access.Decoder[models.Subscriber] {
	return func(d store.Document) (models.Subscriber, error) {
		var s models.Subscriber
		if err := d.DataTo(&s); err != nil {
			return s, err
		}
		s.ID = d.ID()
		s.CreatedAt = models.NormalizeTime(s.CreatedAt, now)
		return s, nil
	}
}
