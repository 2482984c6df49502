package services

import (
	"catalog-service/internal/models"
	"catalog-service/internal/repository"

	"github.com/google/uuid"
)

// DeletionImpactAnalyzer computes the blast radius of deleting a tree node:
// the subtree that falls with it and every product referencing any node in
// that subtree.
type DeletionImpactAnalyzer struct {
	categories repository.CategoryRepositoryInterface
	products   repository.ProductRepositoryInterface
}

func NewDeletionImpactAnalyzer(categories repository.CategoryRepositoryInterface, products repository.ProductRepositoryInterface) *DeletionImpactAnalyzer {
	return &DeletionImpactAnalyzer{
		categories: categories,
		products:   products,
	}
}

// Subtree walks the tree breadth-first from the target, target first
func (a *DeletionImpactAnalyzer) Subtree(targetID uuid.UUID) ([]*models.CategoryNode, error) {
	root, err := a.categories.GetByID(targetID)
	if err != nil {
		return nil, err
	}

	nodes := []*models.CategoryNode{root}
	queue := []*models.CategoryNode{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := a.categories.GetChildren(current)
		if err != nil {
			return nil, err
		}
		for i := range children {
			child := &children[i]
			nodes = append(nodes, child)
			queue = append(queue, child)
		}
	}
	return nodes, nil
}

// AffectedProductIDs unions the product ids referencing any of the given
// nodes. A product assigned to both a node and its descendant counts once.
func (a *DeletionImpactAnalyzer) AffectedProductIDs(nodes []*models.CategoryNode) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, node := range nodes {
		nodeProducts, err := a.products.IDsByCategoryNode(node)
		if err != nil {
			return nil, err
		}
		for _, id := range nodeProducts {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// Analyze builds the impact report for deleting the target node
func (a *DeletionImpactAnalyzer) Analyze(targetID uuid.UUID) (*models.DeletionImpactReport, error) {
	nodes, err := a.Subtree(targetID)
	if err != nil {
		return nil, err
	}

	direct, err := a.products.IDsByCategoryNode(nodes[0])
	if err != nil {
		return nil, err
	}
	affected, err := a.AffectedProductIDs(nodes)
	if err != nil {
		return nil, err
	}

	return &models.DeletionImpactReport{
		TargetID:            targetID,
		DirectProductCount:  len(direct),
		DescendantNodeCount: len(nodes) - 1,
		TotalProductCount:   len(affected),
	}, nil
}

// IsDescendant reports whether candidate lies inside ancestor's subtree
// (ancestor itself included). Used to block cycle-creating re-parents.
func (a *DeletionImpactAnalyzer) IsDescendant(ancestorID, candidateID uuid.UUID) (bool, error) {
	if ancestorID == candidateID {
		return true, nil
	}
	nodes, err := a.Subtree(ancestorID)
	if err != nil {
		return false, err
	}
	for _, node := range nodes {
		if node.ID == candidateID {
			return true, nil
		}
	}
	return false, nil
}
