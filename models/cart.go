package models

import "time"

// CartLine is a quantity of one product held in a visitor's cart.
type CartLine struct {
	CartID    string    `bson:"cart_id" json:"cart_id"`
	ProductID string    `bson:"product_id" json:"product_id"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CartItem pairs a stored line with the product it refers to.
type CartItem struct {
	Line    CartLine
	Product *Product
}

// Subtotal is the line price; zero when the product is gone.
func (i CartItem) Subtotal() float64 {
	if i.Product == nil {
		return 0
	}
	return i.Product.Price * float64(i.Line.Quantity)
}
