package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category levels run 0..4: a top-level parent category plus four nested
// subcategory levels.
const MaxCategoryLevel = 4

// CategoryNode is one entry in the five-level taxonomy tree. Nodes reference
// their ancestors by id only: ParentCategoryID always points at the owning
// level-0 node, ParentSubCategoryID at the immediate parent for level >= 2.
type CategoryNode struct {
	ID                  uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name                string          `json:"name" gorm:"not null"`
	Slug                string          `json:"slug" gorm:"not null;index"`
	Level               int             `json:"level" gorm:"not null;default:0;index"`
	ParentCategoryID    *uuid.UUID      `json:"parentCategoryId,omitempty" gorm:"index"`
	ParentSubCategoryID *uuid.UUID      `json:"parentSubCategoryId,omitempty" gorm:"index"`
	SortOrder           int             `json:"sortOrder" gorm:"not null;default:1"`
	IsActive            bool            `json:"isActive" gorm:"default:true"`
	ImageURL            *string         `json:"imageUrl,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	DeletedAt           *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`

	// Assembled in memory for tree responses, never persisted.
	Children []*CategoryNode `json:"children,omitempty" gorm:"-"`
}

// TableName returns the table name for the CategoryNode model
func (CategoryNode) TableName() string {
	return "category_nodes"
}

// ParentRef returns the id of the node's immediate parent: the level-0 ref
// for level-1 nodes, the subcategory ref below that, nil for roots.
func (n *CategoryNode) ParentRef() *uuid.UUID {
	switch {
	case n.Level <= 0:
		return nil
	case n.Level == 1:
		return n.ParentCategoryID
	default:
		return n.ParentSubCategoryID
	}
}

// CreateCategoryRequest represents a request to create a new tree node
type CreateCategoryRequest struct {
	Name      string     `json:"name" binding:"required"`
	Slug      *string    `json:"slug,omitempty"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	SortOrder *int       `json:"sortOrder,omitempty"`
	IsActive  *bool      `json:"isActive,omitempty"`
	ImageURL  *string    `json:"imageUrl,omitempty"`
}

// UpdateCategoryRequest represents a request to update a tree node
type UpdateCategoryRequest struct {
	Name      *string    `json:"name,omitempty"`
	Slug      *string    `json:"slug,omitempty"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	SortOrder *int       `json:"sortOrder,omitempty"`
	IsActive  *bool      `json:"isActive,omitempty"`
	ImageURL  *string    `json:"imageUrl,omitempty"`
}

// PaginationInfo represents pagination information
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// CategoryResponse represents a single node response
type CategoryResponse struct {
	Success bool          `json:"success"`
	Data    *CategoryNode `json:"data"`
	Message *string       `json:"message,omitempty"`
}

// CategoryListResponse represents a list of nodes response
type CategoryListResponse struct {
	Success    bool            `json:"success"`
	Data       []CategoryNode  `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

// Error represents error details
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
