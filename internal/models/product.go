package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockStatus represents the stock availability of a product
type StockStatus string

const (
	StockStatusAvailable  StockStatus = "Available Product"
	StockStatusOutOfStock StockStatus = "Out of Stock"
	StockStatusPreOrder   StockStatus = "PreOrder"
)

// ValidStockStatus reports whether s is one of the known enum values.
func ValidStockStatus(s string) bool {
	switch StockStatus(s) {
	case StockStatusAvailable, StockStatusOutOfStock, StockStatusPreOrder:
		return true
	}
	return false
}

// JSON type for PostgreSQL JSONB
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// JSONArray type for PostgreSQL JSONB (array)
type JSONArray []interface{}

func (j JSONArray) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONArray, 0)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// CategoryRefs is the set of tree references carried by a product: the
// owning level-0 node plus up to four nested subcategory nodes. Levels below
// CategoryID are nullable and must be contiguous.
type CategoryRefs struct {
	ParentCategoryID uuid.UUID  `json:"parentCategoryId"`
	CategoryID       *uuid.UUID `json:"categoryId,omitempty"`
	SubCategory2ID   *uuid.UUID `json:"subCategory2Id,omitempty"`
	SubCategory3ID   *uuid.UUID `json:"subCategory3Id,omitempty"`
	SubCategory4ID   *uuid.UUID `json:"subCategory4Id,omitempty"`
}

// Product represents a catalog product
type Product struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name             string          `json:"name" gorm:"not null"`
	Slug             *string         `json:"slug,omitempty" gorm:"index"`
	SKU              *string         `json:"sku,omitempty" gorm:"index"`
	Barcode          *string         `json:"barcode,omitempty"`
	ParentCategoryID uuid.UUID       `json:"parentCategoryId" gorm:"type:uuid;not null;index"`
	CategoryID       *uuid.UUID      `json:"categoryId,omitempty" gorm:"index"`
	SubCategory2ID   *uuid.UUID      `json:"subCategory2Id,omitempty" gorm:"index"`
	SubCategory3ID   *uuid.UUID      `json:"subCategory3Id,omitempty" gorm:"index"`
	SubCategory4ID   *uuid.UUID      `json:"subCategory4Id,omitempty" gorm:"index"`
	BrandID          *uuid.UUID      `json:"brandId,omitempty" gorm:"index"`
	BuyingPrice      *float64        `json:"buyingPrice,omitempty"`
	Price            float64         `json:"price" gorm:"not null"`
	OfferPrice       *float64        `json:"offerPrice,omitempty"`
	Discount         *float64        `json:"discount,omitempty"`
	Tax              *float64        `json:"tax,omitempty"`
	StockStatus      StockStatus     `json:"stockStatus" gorm:"not null;default:'Available Product'"`
	CountInStock     *int            `json:"countInStock,omitempty"`
	ShowStockOut     bool            `json:"showStockOut" gorm:"default:false"`
	CanPurchase      bool            `json:"canPurchase" gorm:"default:false"`
	Refundable       bool            `json:"refundable" gorm:"default:false"`
	MaxPurchaseQty   *int            `json:"maxPurchaseQty,omitempty"`
	LowStockWarning  *int            `json:"lowStockWarning,omitempty"`
	Unit             *string         `json:"unit,omitempty"`
	Weight           *string         `json:"weight,omitempty"`
	Tags             *JSONArray      `json:"tags,omitempty" gorm:"type:jsonb"`
	Description      *string         `json:"description,omitempty"`
	ShortDescription *string         `json:"shortDescription,omitempty"`
	Specifications   *string         `json:"specifications,omitempty"`
	Details          *string         `json:"details,omitempty"`
	IsActive         bool            `json:"isActive" gorm:"default:true"`
	OnHold           bool            `json:"onHold" gorm:"default:false"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	DeletedAt        *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// Refs returns the product's current tree references.
func (p *Product) Refs() CategoryRefs {
	return CategoryRefs{
		ParentCategoryID: p.ParentCategoryID,
		CategoryID:       p.CategoryID,
		SubCategory2ID:   p.SubCategory2ID,
		SubCategory3ID:   p.SubCategory3ID,
		SubCategory4ID:   p.SubCategory4ID,
	}
}

// ApplyRefs overwrites the product's tree references. Absent deeper levels
// are cleared, never left stale.
func (p *Product) ApplyRefs(refs CategoryRefs) {
	p.ParentCategoryID = refs.ParentCategoryID
	p.CategoryID = refs.CategoryID
	p.SubCategory2ID = refs.SubCategory2ID
	p.SubCategory3ID = refs.SubCategory3ID
	p.SubCategory4ID = refs.SubCategory4ID
}

// Brand represents a product brand, resolved by name during import
type Brand struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string          `json:"name" gorm:"not null"`
	Slug      string          `json:"slug" gorm:"not null;index"`
	IsActive  bool            `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// TableName returns the table name for the Brand model
func (Brand) TableName() string {
	return "brands"
}

// ProductResponse represents a single product response
type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data"`
}

// ProductListResponse represents a list of products response
type ProductListResponse struct {
	Success    bool            `json:"success"`
	Data       []Product       `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

// BulkMoveRequest reassigns the listed products to a destination path.
// Destination segments accept either node ids or names; names below
// parentCategory are resolved contiguously and created when missing.
type BulkMoveRequest struct {
	ProductIDs     []uuid.UUID `json:"productIds" binding:"required,min=1"`
	ParentCategory string      `json:"parentCategory" binding:"required"`
	Category       *string     `json:"category,omitempty"`
	SubCategory2   *string     `json:"subCategory2,omitempty"`
	SubCategory3   *string     `json:"subCategory3,omitempty"`
	SubCategory4   *string     `json:"subCategory4,omitempty"`
}

// BulkMoveResponse reports a bulk reassignment outcome. Skipped ids were
// missing at update time; they are enumerated, not fatal.
type BulkMoveResponse struct {
	Success      bool     `json:"success"`
	UpdatedCount int64    `json:"updatedCount"`
	SkippedIDs   []string `json:"skippedIds,omitempty"`
}
