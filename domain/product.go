package domain

const (
	GenericBrand    = "Generic Brand"
	DefaultCategory = "electronics"
	DefaultTypeName = "Electronics"

	UnknownProductName = "Unknown Product"
	UnknownValue       = "Unknown"
)

// CanonicalProductRecord is the single most complete metadata entry chosen for a product.
type CanonicalProductRecord struct {
	ProductID string  `json:"product_id"`
	Category  string  `json:"category"`
	Brand     string  `json:"brand"`
	Price     float64 `json:"price"`
}

func (r CanonicalProductRecord) HasBrand() bool {
	return r.Brand != "" && r.Brand != GenericBrand
}

func (r CanonicalProductRecord) HasPrice() bool {
	return r.Price > 0
}

// ProductInfo is a human-readable product description, one entry of a
// recommendation result.
type ProductInfo struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	Score       float64 `json:"score,omitempty"`
}

// UnknownProduct is returned for ids missing from the catalog.
func UnknownProduct(productID string) ProductInfo {
	return ProductInfo{
		ProductID:   productID,
		ProductName: UnknownProductName,
		Category:    UnknownValue,
		Brand:       UnknownValue,
		Price:       0.0,
	}
}
