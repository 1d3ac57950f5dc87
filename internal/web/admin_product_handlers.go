package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Settj76/ecom/internal/auth"
	"github.com/Settj76/ecom/internal/product"
	"github.com/Settj76/ecom/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// maxUploadSize bounds multipart admin forms.
const maxUploadSize = 10 << 20

type productListData struct {
	Products []models.Product
}

type productFormData struct {
	ID      string
	Input   product.Input
	Product *models.Product
	Action  string
	Submit  string
}

type confirmData struct {
	Message   string
	Action    string
	Target    string
	Indicator string
	// Fallback is a plain POST endpoint for browsers without htmx.
	Fallback string
}

func (h *WebHandler) AdminProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.FindAll(r.Context())
	if err != nil {
		h.logger.Error("failed to load products", zap.Error(err))
		h.render(w, r, http.StatusBadGateway, "admin/products", PageData{
			Title: "Products",
			Error: "Failed to load products: " + backendMessage(err),
			Data:  &productListData{},
		})
		return
	}
	h.render(w, r, http.StatusOK, "admin/products", PageData{Title: "Products", Data: &productListData{Products: products}})
}

func (h *WebHandler) NewProductForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "admin/product_form", PageData{
		Title: "New Product",
		Data:  &productFormData{Action: "/admin/products", Submit: "Create Product"},
	})
}

func (h *WebHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := productInput(r)
	form := &productFormData{Input: in, Action: "/admin/products", Submit: "Create Product"}

	defer closeUpload(r)
	image := formImage(r)
	if image != nil {
		defer closeReader(image.Reader)
	}

	actor := auth.FromContext(r.Context())
	created, err := h.products.Create(r.Context(), in, image, actor.UserID)
	if err != nil {
		message := product.MissingFieldsMessage
		if !errors.Is(err, product.ErrMissingFields) {
			h.logger.Error("failed to create product", zap.Error(err))
			message = "Failed to create product: " + backendMessage(err)
		}
		h.render(w, r, http.StatusUnprocessableEntity, "admin/product_form", PageData{
			Title:   "New Product",
			Flashes: []auth.Flash{{Kind: auth.FlashError, Message: message}},
			Data:    form,
		})
		return
	}

	h.eventLogs.Record(r.Context(), models.ProductCreated, actor.UserID, created.ID, created.Name)
	h.redirect(w, r, "/admin/products", auth.FlashSuccess, "Product created successfully!")
}

func (h *WebHandler) EditProductForm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Warn("failed to load product for edit", zap.String("id", id), zap.Error(err))
		h.redirect(w, r, "/admin/products", auth.FlashError, "Could not load product data.")
		return
	}
	h.render(w, r, http.StatusOK, "admin/product_form", PageData{
		Title: "Edit Product",
		Data: &productFormData{
			ID: p.ID,
			Input: product.Input{
				Name:        p.Name,
				Slug:        p.Slug,
				Description: p.Description,
				Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
				Stock:       strconv.Itoa(p.Stock),
			},
			Product: p,
			Action:  "/admin/products/" + p.ID,
			Submit:  "Update Product",
		},
	})
}

func (h *WebHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := productInput(r)

	defer closeUpload(r)
	image := formImage(r)
	if image != nil {
		defer closeReader(image.Reader)
	}

	updated, err := h.products.Update(r.Context(), id, in, image)
	if err != nil {
		message := product.MissingFieldsMessage
		if !errors.Is(err, product.ErrMissingFields) {
			h.logger.Error("failed to update product", zap.String("id", id), zap.Error(err))
			message = "Failed to update product: " + backendMessage(err)
		}
		current, _ := h.products.GetByID(r.Context(), id)
		h.render(w, r, http.StatusUnprocessableEntity, "admin/product_form", PageData{
			Title:   "Edit Product",
			Flashes: []auth.Flash{{Kind: auth.FlashError, Message: message}},
			Data: &productFormData{
				ID:      id,
				Input:   in,
				Product: current,
				Action:  "/admin/products/" + id,
				Submit:  "Update Product",
			},
		})
		return
	}

	actor := auth.FromContext(r.Context())
	h.eventLogs.Record(r.Context(), models.ProductUpdated, actor.UserID, updated.ID, updated.Name)
	h.redirect(w, r, "/admin/products", auth.FlashSuccess, "Product updated successfully!")
}

// ConfirmDeleteProduct renders the confirmation dialog into the portal.
func (h *WebHandler) ConfirmDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		h.toastOnly(w, auth.FlashError, "Could not load product data.")
		return
	}
	h.fragment(w, http.StatusOK, "confirm-dialog", confirmData{
		Message:   fmt.Sprintf("Delete \"%s\"? This action cannot be undone.", p.Name),
		Action:    "/admin/products/" + p.ID,
		Target:    "#product-" + p.ID,
		Indicator: "Deleting product...",
		Fallback:  "/admin/products/" + p.ID + "/delete",
	})
}

func (h *WebHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	// The name is only needed for the activity entry.
	name := id
	if p, err := h.products.GetByID(ctx, id); err == nil {
		name = p.Name
	}

	if err := h.products.Delete(ctx, id); err != nil {
		h.logger.Error("failed to delete product", zap.String("id", id), zap.Error(err))
		h.deleteResult(w, r, "/admin/products", auth.FlashError, "Failed to delete product: "+backendMessage(err))
		return
	}
	actor := auth.FromContext(ctx)
	h.eventLogs.Record(ctx, models.ProductDeleted, actor.UserID, id, name)
	h.deleteResult(w, r, "/admin/products", auth.FlashSuccess, "Product deleted successfully!")
}

// deleteResult finishes a delete. For htmx the row target is replaced with
// nothing on success, and the dialog is closed either way.
func (h *WebHandler) deleteResult(w http.ResponseWriter, r *http.Request, list, kind, message string) {
	if !isHTMX(r) {
		h.redirect(w, r, list, kind, message)
		return
	}
	if kind == auth.FlashError {
		w.Header().Set("HX-Reswap", "none")
	}
	h.fragment(w, http.StatusOK, "close-portal", nil, auth.Flash{Kind: kind, Message: message})
}

func productInput(r *http.Request) product.Input {
	return product.Input{
		Name:        r.FormValue("name"),
		Slug:        r.FormValue("slug"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Stock:       r.FormValue("stock"),
	}
}

// formFile returns the upload in field. ok is false when none was sent.
func formFile(r *http.Request, field string) (name string, file multipart.File, ok bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, false
	}
	return header.Filename, file, true
}

func formImage(r *http.Request) *product.Image {
	name, file, ok := formFile(r, "image")
	if !ok {
		return nil
	}
	return &product.Image{Name: name, Reader: file}
}

func closeReader(rd io.Reader) {
	if c, ok := rd.(io.Closer); ok {
		_ = c.Close()
	}
}

// closeUpload removes temporary files spilled by ParseMultipartForm.
func closeUpload(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}
