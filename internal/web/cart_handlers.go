package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Settj76/ecom/internal/auth"
	"github.com/Settj76/ecom/internal/cart"
	"github.com/Settj76/ecom/internal/pocketbase"
	"github.com/Settj76/ecom/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// addedResetDelay is how long the button reads "Added!" before resetting.
const addedResetDelay = "2s"

type addToCartData struct {
	Product    *models.Product
	Added      bool
	ResetDelay string
}

type cartData struct {
	Items []models.CartItem
	Total float64
}

type addedData struct {
	Form  addToCartData
	Count int
}

// AddToCart handles POST /cart with product_id and quantity.
func (h *WebHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	productID := r.PostForm.Get("product_id")
	qty, err := strconv.Atoi(r.PostForm.Get("quantity"))
	if err != nil {
		qty = 1
	}

	p, err := h.products.GetByID(r.Context(), productID)
	if err != nil {
		if !pocketbase.IsNotFound(err) {
			h.logger.Error("failed to load product for cart", zap.String("product_id", productID), zap.Error(err))
		}
		h.cartFailure(w, r, nil, "Could not add to cart: product unavailable.")
		return
	}

	cartID, err := h.sessions.CartID(w, r)
	if err != nil {
		h.logger.Error("failed to allocate cart", zap.Error(err))
		h.cartFailure(w, r, p, "Could not add to cart.")
		return
	}

	if _, err := h.carts.Add(r.Context(), cartID, p, qty); err != nil {
		switch {
		case errors.Is(err, cart.ErrOutOfStock):
			h.cartFailure(w, r, p, fmt.Sprintf("%s is out of stock.", p.Name))
		case errors.Is(err, cart.ErrInvalidQuantity):
			h.cartFailure(w, r, p, fmt.Sprintf("Please choose a quantity between 1 and %d.", p.MaxOrderQuantity()))
		default:
			h.logger.Error("failed to add to cart", zap.String("product_id", p.ID), zap.Error(err))
			h.cartFailure(w, r, p, "Could not add to cart.")
		}
		return
	}

	message := fmt.Sprintf("%s added to cart!", p.Name)
	if !isHTMX(r) {
		h.redirect(w, r, "/product/"+p.Slug, auth.FlashSuccess, message)
		return
	}

	count, err := h.carts.Count(r.Context(), cartID)
	if err != nil {
		h.logger.Warn("failed to count cart", zap.Error(err))
	}
	h.fragment(w, http.StatusOK, "added-to-cart", addedData{
		Form:  addToCartData{Product: p, Added: true, ResetDelay: addedResetDelay},
		Count: count,
	}, auth.Flash{Kind: auth.FlashSuccess, Message: message})
}

func (h *WebHandler) cartFailure(w http.ResponseWriter, r *http.Request, p *models.Product, message string) {
	if isHTMX(r) {
		h.toastOnly(w, auth.FlashError, message)
		return
	}
	to := "/products"
	if p != nil {
		to = "/product/" + p.Slug
	}
	h.redirect(w, r, to, auth.FlashError, message)
}

// AddToCartForm re-renders the idle add-to-cart form once the "Added!" state
// has elapsed.
func (h *WebHandler) AddToCartForm(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.NotFound(w, r)
		return
	}
	h.fragment(w, http.StatusOK, "add-to-cart", addToCartData{Product: p})
}

func (h *WebHandler) Cart(w http.ResponseWriter, r *http.Request) {
	items, err := h.carts.Items(r.Context(), h.sessions.PeekCartID(r))
	if err != nil {
		h.logger.Error("failed to load cart", zap.Error(err))
		h.render(w, r, http.StatusBadGateway, "cart", PageData{Title: "Your Cart", Error: "Could not load your cart.", Data: &cartData{}})
		return
	}
	h.render(w, r, http.StatusOK, "cart", PageData{
		Title: "Your Cart",
		Data:  &cartData{Items: items, Total: cart.Total(items)},
	})
}

func (h *WebHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cartID := h.sessions.PeekCartID(r)
	if cartID == "" {
		h.redirect(w, r, "/cart", "", "")
		return
	}
	if err := h.carts.Remove(r.Context(), cartID, mux.Vars(r)["id"]); err != nil {
		h.logger.Error("failed to remove cart line", zap.Error(err))
		h.redirect(w, r, "/cart", auth.FlashError, "Could not remove item.")
		return
	}
	h.redirect(w, r, "/cart", auth.FlashInfo, "Item removed from cart.")
}
