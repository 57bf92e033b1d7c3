package domain

// Product is a catalog entry stock is tracked against. Stock rows may only
// exist for registered products; the SKU is unique per tenant.
type Product struct {
	ProductID string `json:"productID"` // Primary Key (UUID)
	TenantID  string `json:"tenantID"`  // Partition key (Not Null)
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	AuditFields
}

// Location is a storage position within a warehouse. Stock rows may only
// exist for registered locations.
type Location struct {
	LocationID  string `json:"locationID"` // Primary Key (UUID)
	TenantID    string `json:"tenantID"`   // Partition key (Not Null)
	WarehouseID string `json:"warehouseID"`
	Name        string `json:"name"`
	AuditFields
}
