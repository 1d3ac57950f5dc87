package product

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/Settj76/ecom/internal/pocketbase"
	"github.com/Settj76/ecom/internal/pocketbase/pbtest"
	"github.com/Settj76/ecom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*ProductService, *pbtest.Server) {
	t.Helper()
	srv := pbtest.NewServer(t)
	client, err := pocketbase.NewClient(srv.URL)
	require.NoError(t, err)
	return NewProductService(client, zap.NewNop()), srv
}

func seedProducts(srv *pbtest.Server, n int) {
	for i := 1; i <= n; i++ {
		srv.Seed(models.ProductsCollection, pbtest.Record{
			"name":    fmt.Sprintf("Product %02d", i),
			"slug":    fmt.Sprintf("product-%02d", i),
			"price":   float64(i),
			"stock":   float64(i),
			"image":   "img.png",
			"created": fmt.Sprintf("2024-01-%02d 10:00:00.000Z", i),
		})
	}
}

func TestProductService_Featured(t *testing.T) {
	s, srv := newService(t)
	seedProducts(srv, 10)

	featured, err := s.Featured(context.Background())
	require.NoError(t, err)
	require.Len(t, featured, FeaturedCount)
	assert.Equal(t, "Product 10", featured[0].Name)

	srv.Fail("GET /api/collections/products/records", http.StatusForbidden, "Only admins can perform this action.", nil)
	_, err = s.Featured(context.Background())
	assert.Equal(t, http.StatusForbidden, pocketbase.StatusOf(err))
}

func TestProductService_Catalog(t *testing.T) {
	s, srv := newService(t)
	seedProducts(srv, 15)
	ctx := context.Background()

	page, err := s.Catalog(ctx, 2, "price")
	require.NoError(t, err)
	assert.Equal(t, 15, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Product 13", page.Items[0].Name)

	_, err = s.Catalog(ctx, 1, "password")
	require.NoError(t, err)
	last := srv.Requests()[len(srv.Requests())-1]
	assert.Contains(t, last, "sort=-created")
}

func TestProductService_GetBySlug(t *testing.T) {
	s, srv := newService(t)
	seedProducts(srv, 3)

	p, err := s.GetBySlug(context.Background(), "product-02")
	require.NoError(t, err)
	assert.Equal(t, "Product 02", p.Name)
	assert.Equal(t, srv.URL+"/api/files/pbc_products/"+p.ID+"/img.png", s.ImageURL(p))

	_, err = s.GetBySlug(context.Background(), `product-02" || slug != "`)
	assert.True(t, pocketbase.IsNotFound(err))
}

func TestProductService_Counts(t *testing.T) {
	s, srv := newService(t)
	seedProducts(srv, 8)
	ctx := context.Background()

	total, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, total)

	low, err := s.LowStockCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, LowStockThreshold, low)

	recent, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "Product 08", recent[0].Name)
}

func TestProductService_Create(t *testing.T) {
	s, srv := newService(t)
	ctx := pocketbase.WithToken(context.Background(), "tok")

	_, err := s.Create(ctx, Input{Name: "Lamp", Price: "10", Stock: "2"}, nil, "admin1")
	assert.ErrorIs(t, err, ErrMissingFields)

	img := &Image{Name: "lamp.png", Reader: strings.NewReader("PNG")}
	_, err = s.Create(ctx, Input{Name: "Lamp", Price: "", Stock: "2"}, img, "admin1")
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = s.Create(ctx, Input{Name: "Lamp", Price: "ten", Stock: "2"}, img, "admin1")
	assert.Error(t, err)

	created, err := s.Create(ctx, Input{Name: "Desk Lamp", Price: "19.99", Stock: "0", Description: "<p>Bright</p>"},
		&Image{Name: "lamp.png", Reader: strings.NewReader("PNG")}, "admin1")
	require.NoError(t, err)
	assert.Equal(t, "desk-lamp", created.Slug)
	assert.Equal(t, 0, created.Stock)
	assert.Equal(t, "admin1", created.CreatedBy)
	assert.InDelta(t, 19.99, created.Price, 0.0001)
	assert.Equal(t, []byte("PNG"), srv.File(created.Image))
}

func TestProductService_UpdateAndDelete(t *testing.T) {
	s, srv := newService(t)
	seedProducts(srv, 1)
	ctx := context.Background()
	existing := srv.Records(models.ProductsCollection)[0]
	id := existing["id"].(string)

	updated, err := s.Update(ctx, id, Input{Name: "Renamed", Slug: "Custom Slug", Price: "5.5", Stock: "7"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "custom-slug", updated.Slug)
	assert.Equal(t, "img.png", updated.Image)

	got, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.Delete(ctx, id))
	err = s.Delete(ctx, id)
	assert.True(t, pocketbase.IsNotFound(err))
}
