package dashboard

import (
	"context"
	"fmt"

	"github.com/Settj76/ecom/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecentCount is the length of the recent products and activity lists.
const RecentCount = 5

type ProductStats interface {
	Count(ctx context.Context) (int, error)
	LowStockCount(ctx context.Context) (int, error)
	Recent(ctx context.Context, n int) ([]models.Product, error)
}

type UserStats interface {
	Count(ctx context.Context) (int, error)
	CountNew(ctx context.Context) (int, error)
}

type ActivityFeed interface {
	GetAll(ctx context.Context, limit int) ([]models.EventLog, error)
}

// Summary is everything the admin dashboard shows.
type Summary struct {
	Products       int
	Users          int
	NewUsers       int
	LowStock       int
	RecentProducts []models.Product
	RecentActivity []models.EventLog
}

type DashboardService struct {
	products ProductStats
	users    UserStats
	activity ActivityFeed
	logger   *zap.Logger
}

func NewDashboardService(products ProductStats, users UserStats, activity ActivityFeed, logger *zap.Logger) *DashboardService {
	return &DashboardService{products: products, users: users, activity: activity, logger: logger}
}

// Summary fetches all dashboard figures concurrently. The first backend
// failure cancels the rest; a failing activity feed only empties that list.
func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	var sum Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.products.Count(gctx)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		sum.Products = n
		return nil
	})
	g.Go(func() error {
		n, err := s.products.LowStockCount(gctx)
		if err != nil {
			return fmt.Errorf("count low stock: %w", err)
		}
		sum.LowStock = n
		return nil
	})
	g.Go(func() error {
		recent, err := s.products.Recent(gctx, RecentCount)
		if err != nil {
			return fmt.Errorf("recent products: %w", err)
		}
		sum.RecentProducts = recent
		return nil
	})
	g.Go(func() error {
		n, err := s.users.Count(gctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		sum.Users = n
		return nil
	})
	g.Go(func() error {
		n, err := s.users.CountNew(gctx)
		if err != nil {
			return fmt.Errorf("count new users: %w", err)
		}
		sum.NewUsers = n
		return nil
	})
	g.Go(func() error {
		logs, err := s.activity.GetAll(gctx, RecentCount)
		if err != nil {
			s.logger.Warn("failed to load recent activity", zap.Error(err))
			logs = []models.EventLog{}
		}
		sum.RecentActivity = logs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &sum, nil
}
