package dto

import (
	"github.com/finstok/finstok_backend/internal/core/domain"
)

// CreateProductRequest defines the payload for registering a product.
type CreateProductRequest struct {
	SKU  string `json:"sku" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// ProductResponse defines the data returned for a product.
type ProductResponse struct {
	ProductID string `json:"productID"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
}

// ListProductsResponse wraps a product listing.
type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

// CreateLocationRequest defines the payload for registering a location.
type CreateLocationRequest struct {
	WarehouseID string `json:"warehouseID" binding:"required"`
	Name        string `json:"name" binding:"required"`
}

// LocationResponse defines the data returned for a location.
type LocationResponse struct {
	LocationID  string `json:"locationID"`
	WarehouseID string `json:"warehouseID"`
	Name        string `json:"name"`
}

// ListLocationsResponse wraps a location listing.
type ListLocationsResponse struct {
	Locations []LocationResponse `json:"locations"`
}

// ToProductResponse converts a domain.Product to its DTO.
func ToProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ProductID: p.ProductID,
		SKU:       p.SKU,
		Name:      p.Name,
	}
}

// ToProductResponses converts a slice of domain products.
func ToProductResponses(products []domain.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ToLocationResponse converts a domain.Location to its DTO.
func ToLocationResponse(l *domain.Location) LocationResponse {
	return LocationResponse{
		LocationID:  l.LocationID,
		WarehouseID: l.WarehouseID,
		Name:        l.Name,
	}
}

// ToLocationResponses converts a slice of domain locations.
func ToLocationResponses(locations []domain.Location) []LocationResponse {
	responses := make([]LocationResponse, len(locations))
	for i := range locations {
		responses[i] = ToLocationResponse(&locations[i])
	}
	return responses
}
