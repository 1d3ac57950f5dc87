package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Settj76/ecom/internal/format"
	"github.com/Settj76/ecom/internal/pocketbase"
	"github.com/Settj76/ecom/models"

	"go.uber.org/zap"
)

const (
	// FeaturedCount is the number of products on the home page.
	FeaturedCount = 8
	// CatalogPageSize is the number of products per catalog page.
	CatalogPageSize = 12
	// LowStockThreshold marks products that need restocking.
	LowStockThreshold = 5
)

// ErrMissingFields is returned when a required product field is blank.
var ErrMissingFields = errors.New("missing required product fields")

// MissingFieldsMessage is the toast shown for ErrMissingFields.
const MissingFieldsMessage = "Please fill in all required fields."

// SortOptions are the catalog orderings a visitor may pick.
var SortOptions = map[string]string{
	"-created": "Newest",
	"price":    "Price: low to high",
	"-price":   "Price: high to low",
	"name":     "Name",
}

// Image is an uploaded product picture.
type Image struct {
	Name   string
	Reader io.Reader
}

// Input is the product form as submitted. Numeric fields stay strings until
// validated so a blank field can be told apart from zero.
type Input struct {
	Name        string
	Slug        string
	Description string
	Price       string
	Stock       string
}

type ProductService struct {
	client  *pocketbase.Client
	records *pocketbase.RecordService[models.Product]
	logger  *zap.Logger
}

func NewProductService(client *pocketbase.Client, logger *zap.Logger) *ProductService {
	return &ProductService{
		client:  client,
		records: pocketbase.Collection[models.Product](client, models.ProductsCollection),
		logger:  logger,
	}
}

// Featured returns the newest products for the home page.
func (s *ProductService) Featured(ctx context.Context) ([]models.Product, error) {
	result, err := s.records.GetList(ctx, 1, FeaturedCount, pocketbase.ListOptions{Sort: "-created"})
	if err != nil {
		s.logger.Error("failed to load featured products",
			zap.String("backend_url", s.client.BaseURL()),
			zap.String("collection", s.records.Name()),
			zap.Int("status", pocketbase.StatusOf(err)),
			zap.String("hint", "check that the collection exists and its List API rule allows public access"),
			zap.Error(err))
		return nil, err
	}
	return result.Items, nil
}

// Catalog returns one page of products. Unknown sort keys fall back to newest first.
func (s *ProductService) Catalog(ctx context.Context, page int, sort string) (*pocketbase.ListResult[models.Product], error) {
	if _, ok := SortOptions[sort]; !ok {
		sort = "-created"
	}
	return s.records.GetList(ctx, page, CatalogPageSize, pocketbase.ListOptions{Sort: sort})
}

// GetBySlug returns the product with the given slug or a 404 error.
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.records.GetFirstListItem(ctx, pocketbase.Filter("slug = {:slug}", map[string]any{"slug": slug}))
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return s.records.GetOne(ctx, id)
}

// FindAll returns every product, newest first.
func (s *ProductService) FindAll(ctx context.Context) ([]models.Product, error) {
	return s.records.GetFullList(ctx, pocketbase.ListOptions{Sort: "-created"})
}

// Recent returns the n newest products.
func (s *ProductService) Recent(ctx context.Context, n int) ([]models.Product, error) {
	result, err := s.records.GetList(ctx, 1, n, pocketbase.ListOptions{Sort: "-created", SkipTotal: true})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Count returns the number of products.
func (s *ProductService) Count(ctx context.Context) (int, error) {
	return s.count(ctx, "")
}

// LowStockCount returns the number of products with stock at or below LowStockThreshold.
func (s *ProductService) LowStockCount(ctx context.Context) (int, error) {
	return s.count(ctx, pocketbase.Filter("stock <= {:n}", map[string]any{"n": LowStockThreshold}))
}

func (s *ProductService) count(ctx context.Context, filter string) (int, error) {
	result, err := s.records.GetList(ctx, 1, 1, pocketbase.ListOptions{Filter: filter, Fields: "id"})
	if err != nil {
		return 0, err
	}
	return result.TotalItems, nil
}

// Create validates in and stores a new product owned by createdBy.
func (s *ProductService) Create(ctx context.Context, in Input, image *Image, createdBy string) (*models.Product, error) {
	if image == nil || image.Reader == nil || createdBy == "" {
		return nil, ErrMissingFields
	}
	form, err := in.form()
	if err != nil {
		return nil, err
	}
	form.Set("created_by", createdBy)
	form.AddFile("image", image.Name, image.Reader)

	created, err := s.records.Create(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.logger.Info("product created", zap.String("id", created.ID), zap.String("slug", created.Slug))
	return created, nil
}

// Update validates in and patches product id. A nil image keeps the current one.
func (s *ProductService) Update(ctx context.Context, id string, in Input, image *Image) (*models.Product, error) {
	form, err := in.form()
	if err != nil {
		return nil, err
	}
	if image != nil {
		form.AddFile("image", image.Name, image.Reader)
	}

	updated, err := s.records.Update(ctx, id, form)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.logger.Info("product updated", zap.String("id", updated.ID))
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.records.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.logger.Info("product deleted", zap.String("id", id))
	return nil
}

// ImageURL returns the public URL of a product's image, or "".
func (s *ProductService) ImageURL(p *models.Product) string {
	if p == nil {
		return ""
	}
	collection := p.CollectionID
	if collection == "" {
		collection = models.ProductsCollection
	}
	return s.client.FileURL(collection, p.ID, p.Image)
}

func (in Input) form() (*pocketbase.Form, error) {
	name := strings.TrimSpace(in.Name)
	price := strings.TrimSpace(in.Price)
	stock := strings.TrimSpace(in.Stock)
	if name == "" || price == "" || stock == "" {
		return nil, ErrMissingFields
	}

	priceValue, err := strconv.ParseFloat(price, 64)
	if err != nil || priceValue < 0 {
		return nil, fmt.Errorf("price must be a non-negative number")
	}
	stockValue, err := strconv.Atoi(stock)
	if err != nil || stockValue < 0 {
		return nil, fmt.Errorf("stock must be a non-negative whole number")
	}

	slug := format.Slug(strings.TrimSpace(in.Slug))
	if slug == "" {
		slug = format.Slug(name)
	}
	if slug == "" {
		return nil, ErrMissingFields
	}

	return pocketbase.NewForm().
		Set("name", name).
		Set("slug", slug).
		Set("description", in.Description).
		Set("price", priceValue).
		Set("stock", stockValue), nil
}
