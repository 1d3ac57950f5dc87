package web

import (
	"net/http"
	"strconv"

	"github.com/Settj76/ecom/internal/carousel"
	"github.com/Settj76/ecom/internal/pocketbase"
	"github.com/Settj76/ecom/internal/product"
	"github.com/Settj76/ecom/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const loadProductsError = "Could Not Load Products"

// sortOrder fixes the order of the catalog sort menu.
var sortOrder = []string{"-created", "price", "-price", "name"}

type sortOption struct {
	Value    string
	Label    string
	Selected bool
}

type homeData struct {
	Carousel carousel.State
	HasSlide bool
	Products []models.Product
}

type catalogData struct {
	Products   []models.Product
	Page       int
	TotalPages int
	Sort       string
	Sorts      []sortOption
}

type productData struct {
	Product *models.Product
	Form    addToCartData
}

func (h *WebHandler) Home(w http.ResponseWriter, r *http.Request) {
	state, ok := carousel.New(h.slides, 0, 0).State()
	data := homeData{Carousel: state, HasSlide: ok}

	page := PageData{Title: "Home", Data: &data}
	products, err := h.products.Featured(r.Context())
	if err != nil {
		page.Error = loadProductsError
	} else {
		data.Products = products
	}
	h.render(w, r, http.StatusOK, "home", page)
}

// Carousel renders the next hero frame. Query: page (current counter) plus
// either move (+1/-1) or goto (slide index).
func (h *WebHandler) Carousel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	c := carousel.New(h.slides, page, 0)

	if raw := q.Get("goto"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil || i < 0 || i >= c.Len() {
			http.Error(w, "invalid slide index", http.StatusBadRequest)
			return
		}
		c.GoTo(i)
	} else {
		move, _ := strconv.Atoi(q.Get("move"))
		c.Paginate(move)
	}

	state, ok := c.State()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.fragment(w, http.StatusOK, "carousel", state)
}

func (h *WebHandler) Products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageNum, err := strconv.Atoi(q.Get("page"))
	if err != nil || pageNum < 1 {
		pageNum = 1
	}
	sort := q.Get("sort")
	if _, ok := product.SortOptions[sort]; !ok {
		sort = "-created"
	}

	data := catalogData{Page: pageNum, Sort: sort}
	for _, value := range sortOrder {
		data.Sorts = append(data.Sorts, sortOption{Value: value, Label: product.SortOptions[value], Selected: value == sort})
	}

	page := PageData{Title: "Products", Data: &data}
	result, err := h.products.Catalog(r.Context(), pageNum, sort)
	if err != nil {
		h.logger.Error("failed to load catalog", zap.Int("page", pageNum), zap.Error(err))
		page.Error = loadProductsError
		h.render(w, r, http.StatusBadGateway, "products", page)
		return
	}
	data.Products = result.Items
	data.TotalPages = result.TotalPages
	h.render(w, r, http.StatusOK, "products", page)
}

func (h *WebHandler) Product(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	p, err := h.products.GetBySlug(r.Context(), slug)
	if pocketbase.IsNotFound(err) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("failed to load product", zap.String("slug", slug), zap.Error(err))
		h.render(w, r, http.StatusBadGateway, "error", PageData{Title: "Error", Error: "Could not load product."})
		return
	}
	h.render(w, r, http.StatusOK, "product", PageData{
		Title: p.Name,
		Data:  &productData{Product: p, Form: addToCartData{Product: p}},
	})
}
