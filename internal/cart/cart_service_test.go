package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Settj76/ecom/internal/pocketbase"
	"github.com/Settj76/ecom/internal/pocketbase/pbtest"
	"github.com/Settj76/ecom/internal/product"
	"github.com/Settj76/ecom/internal/testutil"
	"github.com/Settj76/ecom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProducts map[string]*models.Product

func (f fakeProducts) GetByID(_ context.Context, id string) (*models.Product, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return nil, &pocketbase.ResponseError{Status: 404}
}

func newService(t *testing.T, products ProductLookup) *CartService {
	t.Helper()
	factory := testutil.SetupTestRepositoryFactory(t)
	return NewCartService(factory.NewCartRepository(), testutil.SetupTestDBManager(t), products, zap.NewNop())
}

func TestCartService_AddMergesAndCaps(t *testing.T) {
	lamp := &models.Product{ID: "p1", Name: "Lamp", Price: 10, Stock: 4}
	s := newService(t, fakeProducts{"p1": lamp})
	ctx := context.Background()

	line, err := s.Add(ctx, "c1", lamp, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	line, err = s.Add(ctx, "c1", lamp, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity, "capped at stock")

	count, err := s.Count(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestCartService_AddConcurrent(t *testing.T) {
	lamp := &models.Product{ID: "p1", Name: "Lamp", Price: 10, Stock: 50}
	s := newService(t, fakeProducts{"p1": lamp})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Add(ctx, "c1", lamp, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := s.Count(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, lamp.MaxOrderQuantity(), count)
}

func TestCartService_AddRejects(t *testing.T) {
	s := newService(t, fakeProducts{})
	ctx := context.Background()

	_, err := s.Add(ctx, "c1", &models.Product{ID: "p1", Stock: 0}, 1)
	assert.ErrorIs(t, err, ErrOutOfStock)

	_, err = s.Add(ctx, "c1", &models.Product{ID: "p1", Stock: 50}, 11)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = s.Add(ctx, "c1", &models.Product{ID: "p1", Stock: 3}, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartService_ItemsDropsMissingProducts(t *testing.T) {
	lamp := &models.Product{ID: "p1", Name: "Lamp", Price: 10, Stock: 4}
	desk := &models.Product{ID: "p2", Name: "Desk", Price: 99.5, Stock: 1}
	products := fakeProducts{"p1": lamp, "p2": desk}
	s := newService(t, products)
	ctx := context.Background()

	_, err := s.Add(ctx, "c1", lamp, 2)
	require.NoError(t, err)
	_, err = s.Add(ctx, "c1", desk, 1)
	require.NoError(t, err)

	items, err := s.Items(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.InDelta(t, 119.5, Total(items), 0.0001)

	delete(products, "p2")
	items, err = s.Items(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Lamp", items[0].Product.Name)

	count, err := s.Count(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	empty, err := s.Items(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCartService_RemoveAndClear(t *testing.T) {
	lamp := &models.Product{ID: "p1", Stock: 4}
	s := newService(t, fakeProducts{"p1": lamp})
	ctx := context.Background()

	_, err := s.Add(ctx, "c1", lamp, 1)
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, "c1", "p1"))
	require.NoError(t, s.Remove(ctx, "c1", "p1"))

	_, err = s.Add(ctx, "c1", lamp, 1)
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx, "c1"))
	count, err := s.Count(ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCartService_WithBackendProducts(t *testing.T) {
	srv := pbtest.NewServer(t)
	client, err := pocketbase.NewClient(srv.URL)
	require.NoError(t, err)
	products := product.NewProductService(client, zap.NewNop())
	id := srv.Seed(models.ProductsCollection, pbtest.Record{"name": "Mug", "price": 8.0, "stock": 20.0})

	s := newService(t, products)
	p, err := products.GetByID(context.Background(), id)
	require.NoError(t, err)
	_, err = s.Add(context.Background(), "c9", p, 10)
	require.NoError(t, err)

	srv.Fail("GET /api/collections/products/records/"+id, 500, "boom", nil)
	_, err = s.Items(context.Background(), "c9")
	require.Error(t, err)
	var re *pocketbase.ResponseError
	assert.True(t, errors.As(err, &re))
}
