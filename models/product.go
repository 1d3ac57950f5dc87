package models

// ProductsCollection is the backend collection holding catalog records.
const ProductsCollection = "products"

// MaxQuantityPerOrder caps the quantity selector on the product page.
const MaxQuantityPerOrder = 10

// Product represents a catalog record owned by the records backend
type Product struct {
	ID             string   `json:"id"`
	CollectionID   string   `json:"collectionId"`
	CollectionName string   `json:"collectionName"`
	Created        DateTime `json:"created"`
	Updated        DateTime `json:"updated"`
	Name           string   `json:"name"`
	Slug           string   `json:"slug"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	Image          string   `json:"image"`
	Stock          int      `json:"stock"`
	CreatedBy      string   `json:"created_by"`
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// MaxOrderQuantity returns min(stock, MaxQuantityPerOrder), or 0 when out of stock.
func (p *Product) MaxOrderQuantity() int {
	if p.Stock <= 0 {
		return 0
	}
	if p.Stock < MaxQuantityPerOrder {
		return p.Stock
	}
	return MaxQuantityPerOrder
}

// QuantityOptions lists the selectable quantities 1..MaxOrderQuantity.
func (p *Product) QuantityOptions() []int {
	n := p.MaxOrderQuantity()
	options := make([]int, n)
	for i := range options {
		options[i] = i + 1
	}
	return options
}
