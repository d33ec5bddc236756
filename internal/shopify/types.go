package shopify

// Wire types for the subset of the Shopify Admin REST API this service
// consumes. Fields not read anywhere are left out on purpose.

type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

type Variant struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	Title             string `json:"title"`
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	Barcode           string `json:"barcode"`
	InventoryQuantity int    `json:"inventory_quantity"`
	InventoryItemID   int64  `json:"inventory_item_id"`
}

type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	BodyHTML string    `json:"body_html"`
	Images   []Image   `json:"images"`
	Variants []Variant `json:"variants"`
}

type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type productsResponse struct {
	Products []Product `json:"products"`
}

type variantResponse struct {
	Variant Variant `json:"variant"`
}

type locationsResponse struct {
	Locations []Location `json:"locations"`
}

type inventoryLevelRequest struct {
	LocationID      int64 `json:"location_id"`
	InventoryItemID int64 `json:"inventory_item_id"`
	Available       int   `json:"available"`
}
