package product

// Product is a catalog item offered by a provider.
type Product struct {
	ID              int64
	Name            string
	Description     string
	Price           int
	StockQuantity   int
	ProductImageURL *string
	ProviderID      int64
}

// CreateParams contains write parameters for creating products.
type CreateParams struct {
	Name          string
	Description   string
	Price         int
	StockQuantity int
	ProviderID    int64
}

// UpdateParams carries the mutable fields for an update. The owning
// provider cannot be changed after creation.
type UpdateParams struct {
	Name          string
	Description   string
	Price         int
	StockQuantity int
}
