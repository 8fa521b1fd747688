package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

type StatsService struct {
	store store.Store
}

func NewStatsService(st store.Store) *StatsService {
	return &StatsService{store: st}
}

// Get returns the dashboard counters. Admin only.
func (s *StatsService) Get(ctx context.Context, sess access.Session) (models.Stats, error) {
	if err := requireAdmin(sess); err != nil {
		return models.Stats{}, err
	}
	var stats models.Stats
	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, q store.Query) {
		g.Go(func() error {
			n, err := s.store.Count(ctx, q)
			if err != nil {
				return fmt.Errorf("count %s: %w", q.Collection, err)
			}
			*dst = n
			return nil
		})
	}
	count(&stats.TotalProducts, store.Query{Collection: store.Products})
	count(&stats.TotalOrders, store.Query{Collection: store.Orders})
	count(&stats.TotalUsers, store.Query{Collection: store.Users})
	count(&stats.PendingOrders, store.Query{Collection: store.Orders}.Where("status", models.StatusPending))
	g.Go(func() error {
		docs, err := s.store.Find(ctx, store.Query{Collection: store.Orders}.Where("status", models.StatusDelivered))
		if err != nil {
			return fmt.Errorf("delivered orders: %w", err)
		}
		for _, d := range docs {
			var o models.Order
			if err := d.DataTo(&o); err != nil {
				return err
			}
			stats.DeliveredRevenue += o.Total
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}
