package app

// Quantities cross the application boundary as decimal strings and are
// validated into arbitrary-precision integers before any business logic runs.

// ReceiveRequest records a receipt of stock into one bin.
type ReceiveRequest struct {
	SKU       string `json:"sku"`
	BinNumber string `json:"binNumber"`
	Location  string `json:"location"`
	Quantity  string `json:"quantity"`
}

// BulkReceiveRequest imports many receipt rows, grouped by SKU internally.
// AllOrNothing switches from per-group partial success to a single
// transaction covering every group.
type BulkReceiveRequest struct {
	Rows         []ReceiveRequest `json:"rows"`
	AllOrNothing bool             `json:"allOrNothing"`
}

// RemoveQuantityRequest removes previously-allocated stock from a bin.
type RemoveQuantityRequest struct {
	LocationID string `json:"locationId"`
	Quantity   string `json:"quantity"`
}

// OrderRequest confirms or reverses an order allocation against a SKU.
type OrderRequest struct {
	SKU      string `json:"sku"`
	Quantity string `json:"quantity"`
}

// ReplaceOrderRequest swaps one confirmed allocation for another atomically.
type ReplaceOrderRequest struct {
	Old OrderRequest `json:"old"`
	New OrderRequest `json:"new"`
}

// AuditQuery filters and paginates the audit trail listing.
type AuditQuery struct {
	UserID     string `json:"userId"`
	EventType  string `json:"eventType"`
	EntityName string `json:"entityName"`
	EntityID   string `json:"entityId"`
	From       string `json:"from"` // RFC 3339 or YYYY-MM-DD
	To         string `json:"to"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}
