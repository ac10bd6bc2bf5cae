package catalog

import "time"

// Product is a catalog entry. Attributes describe the purchasable axes
// (size, color, ...) and Variations the expanded combinations.
type Product struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Brand         string      `json:"brand"`
	CategoryID    string      `json:"categoryId"`
	RegularPrice  int64       `json:"regularPrice"`
	SalePrice     int64       `json:"salePrice"`
	StockQuantity int64       `json:"stockQuantity"`
	Active        bool        `json:"active"`
	Attributes    []Attribute `json:"attributes"`
	Variations    []Variation `json:"variations"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Attribute is one purchasable axis with its options.
type Attribute struct {
	Title   string   `json:"title"`
	Type    string   `json:"type"`
	Options []Option `json:"options"`
}

// Option is a single attribute value.
type Option struct {
	Name string `json:"name"`
}

// Variation is one concrete combination of attribute options, carrying
// its own pricing and stock so combinations can sell independently.
type Variation struct {
	ID            string            `json:"id"`
	Selections    map[string]string `json:"selections"`
	RegularPrice  int64             `json:"regularPrice"`
	SalePrice     int64             `json:"salePrice"`
	StockQuantity int64             `json:"stockQuantity"`
	Available     bool              `json:"available"`
}

// Summary is the projected shape returned by product listings.
type Summary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Brand      string `json:"brand"`
	CategoryID string `json:"categoryId"`
}

// Update carries the optional fields of a product patch; nil means
// leave unchanged.
type Update struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Brand         *string `json:"brand"`
	CategoryID    *string `json:"categoryId"`
	RegularPrice  *int64  `json:"regularPrice"`
	SalePrice     *int64  `json:"salePrice"`
	StockQuantity *int64  `json:"stockQuantity"`
	Active        *bool   `json:"active"`
}

// VariationUpdate carries the optional fields of a per-variation patch;
// nil means leave unchanged.
type VariationUpdate struct {
	RegularPrice  *int64 `json:"regularPrice"`
	SalePrice     *int64 `json:"salePrice"`
	StockQuantity *int64 `json:"stockQuantity"`
	Available     *bool  `json:"available"`
}
