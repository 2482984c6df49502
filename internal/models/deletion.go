package models

import "github.com/google/uuid"

// DeletionImpactReport summarizes the blast radius of deleting a tree node:
// how many descendant nodes fall with it and how many distinct products
// reference any node in the subtree.
type DeletionImpactReport struct {
	TargetID            uuid.UUID `json:"targetId"`
	DirectProductCount  int       `json:"directProductCount"`
	DescendantNodeCount int       `json:"descendantNodeCount"`
	TotalProductCount   int       `json:"totalProductCount"`
}

// DeletionState is the orchestrator's position in the cascading-deletion
// workflow. Deletion is gated behind an explicit operator decision whenever
// the impact report is non-empty.
type DeletionState string

const (
	StateAwaitingImpact     DeletionState = "AWAITING_IMPACT"
	StateAwaitingDecision   DeletionState = "AWAITING_DECISION"
	StateMoveThenDelete     DeletionState = "MOVE_THEN_DELETE"
	StateDeleteWithProducts DeletionState = "DELETE_WITH_PRODUCTS"
	StateDone               DeletionState = "DONE"
	StateFailed             DeletionState = "FAILED"
)

// DeletionInfoResponse answers the pre-delete query for admin tooling
type DeletionInfoResponse struct {
	Success      bool `json:"success"`
	ProductCount int  `json:"productCount"`
	ChildCount   int  `json:"childCount"`
}

// MoveDestination names the path products are moved to before deletion.
// Segments accept node ids or names, resolved like import paths.
type MoveDestination struct {
	ParentCategory string  `json:"parentCategory" binding:"required"`
	Category       *string `json:"category,omitempty"`
	SubCategory2   *string `json:"subCategory2,omitempty"`
	SubCategory3   *string `json:"subCategory3,omitempty"`
	SubCategory4   *string `json:"subCategory4,omitempty"`
}

// DeleteCategoryRequest carries the operator decision for a cascade delete
type DeleteCategoryRequest struct {
	MoveProducts bool             `json:"moveProducts"`
	Destination  *MoveDestination `json:"destination,omitempty"`
}

// CascadeDeleteResult reports what a cascade delete actually did
type CascadeDeleteResult struct {
	Success           bool          `json:"success"`
	State             DeletionState `json:"state"`
	NodesDeleted      int64         `json:"nodesDeleted"`
	ProductsDeleted   int64         `json:"productsDeleted"`
	ProductsMoved     int64         `json:"productsMoved"`
	SkippedProductIDs []string      `json:"skippedProductIds,omitempty"`
}
