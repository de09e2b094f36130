package entity

import "time"

// CatalogListing is one sellable product offer from the wholesale catalog.
type CatalogListing struct {
	ID string `json:"id" gorm:"primaryKey;size:32"`

	Title   string `json:"title" gorm:"size:200;not null"`
	Variant string `json:"variant" gorm:"size:100"`
	Color   string `json:"color" gorm:"size:64"`

	SupplierID  *string `json:"supplier_id" gorm:"size:32;index"`
	PricePublic float64 `json:"price_public" gorm:"type:decimal(12,2)"`
	PriceCost   float64 `json:"price_cost" gorm:"type:decimal(12,2)"`
	ImageURL    string  `json:"image_url" gorm:"size:500"`
	Category    string  `json:"category" gorm:"size:64;index"`

	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CatalogListing) TableName() string {
	return "catalog_listings"
}

// Customer is a reseller's end client.
type Customer struct {
	ID string `json:"id" gorm:"primaryKey;size:32"`

	Name  string `json:"name" gorm:"size:200;not null"`
	Phone string `json:"phone" gorm:"size:50"`

	RouteID    *string `json:"route_id" gorm:"size:32;index"`
	LocalityID *string `json:"locality_id" gorm:"size:32;index"`
	Address    string  `json:"address" gorm:"size:500"`
	Notes      string  `json:"notes" gorm:"type:text"`

	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// Route is a delivery circuit, a named sequence of localities served on a
// given weekday.
type Route struct {
	ID string `json:"id" gorm:"primaryKey;size:32"`

	Name    string `json:"name" gorm:"size:100;not null"`
	Weekday string `json:"weekday" gorm:"size:12"`
	Notes   string `json:"notes" gorm:"type:text"`

	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Route) TableName() string {
	return "routes"
}

// Locality is a delivery zone inside a route.
type Locality struct {
	ID string `json:"id" gorm:"primaryKey;size:32"`

	Name    string  `json:"name" gorm:"size:100;not null"`
	RouteID *string `json:"route_id" gorm:"size:32;index"`

	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Locality) TableName() string {
	return "localities"
}
