package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/Settj76/ecom/db"
	"github.com/Settj76/ecom/internal/pocketbase"
	"github.com/Settj76/ecom/models"

	"go.uber.org/zap"
)

var (
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// ProductLookup resolves the products referenced by cart lines.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

type CartService struct {
	repository db.CartRepository
	dbManager  *db.DBManager
	products   ProductLookup
	logger     *zap.Logger
}

func NewCartService(repository db.CartRepository, dbManager *db.DBManager, products ProductLookup, logger *zap.Logger) *CartService {
	return &CartService{
		repository: repository,
		dbManager:  dbManager,
		products:   products,
		logger:     logger,
	}
}

// Add puts qty units of product into the cart, merging with an existing line.
// The line total is capped at the product's MaxOrderQuantity.
func (s *CartService) Add(ctx context.Context, cartID string, product *models.Product, qty int) (*models.CartLine, error) {
	if !product.InStock() {
		return nil, ErrOutOfStock
	}
	limit := product.MaxOrderQuantity()
	if qty < 1 || qty > limit {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidQuantity, qty, limit)
	}

	line := &models.CartLine{CartID: cartID, ProductID: product.ID, Quantity: qty}
	saved, err := s.dbManager.MergeCartLine(ctx, s.repository, line, limit)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	s.logger.Debug("cart line saved",
		zap.String("cart_id", cartID),
		zap.String("product_id", product.ID),
		zap.Int("quantity", saved.Quantity))
	return saved, nil
}

// Items returns the cart's lines with their products. Lines whose product no
// longer exists on the backend are dropped from the cart.
func (s *CartService) Items(ctx context.Context, cartID string) ([]models.CartItem, error) {
	if cartID == "" {
		return []models.CartItem{}, nil
	}
	lines, err := s.repository.FindByCartID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if pocketbase.IsNotFound(err) {
			s.logger.Info("dropping cart line for missing product", zap.String("product_id", line.ProductID))
			if err := s.dbManager.DeleteCartLine(ctx, s.repository, cartID, line.ProductID); err != nil && !errors.Is(err, db.ErrNotFound) {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load cart product %s: %w", line.ProductID, err)
		}
		items = append(items, models.CartItem{Line: *line, Product: product})
	}
	return items, nil
}

// Count returns the total number of units in the cart.
func (s *CartService) Count(ctx context.Context, cartID string) (int, error) {
	if cartID == "" {
		return 0, nil
	}
	lines, err := s.repository.FindByCartID(ctx, cartID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total, nil
}

// Total sums the item subtotals.
func Total(items []models.CartItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

func (s *CartService) Remove(ctx context.Context, cartID, productID string) error {
	err := s.dbManager.DeleteCartLine(ctx, s.repository, cartID, productID)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	return err
}

func (s *CartService) Clear(ctx context.Context, cartID string) error {
	return s.dbManager.DeleteCart(ctx, s.repository, cartID)
}
