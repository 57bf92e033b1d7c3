package models

// Product mirrors the products table.
type Product struct {
	ProductID string `json:"productID"`
	TenantID  string `json:"tenantID"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	AuditFields
}

// Location mirrors the locations table.
type Location struct {
	LocationID  string `json:"locationID"`
	TenantID    string `json:"tenantID"`
	WarehouseID string `json:"warehouseID"`
	Name        string `json:"name"`
	AuditFields
}
