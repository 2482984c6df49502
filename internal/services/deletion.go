package services

import (
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrInvalidTransition = errors.New("invalid deletion workflow transition")

// DeletionOrchestrator runs one cascading-deletion workflow as an explicit
// state machine:
//
//	AWAITING_IMPACT -> AWAITING_DECISION -> MOVE_THEN_DELETE      -> DONE
//	                                     -> DELETE_WITH_PRODUCTS  -> DONE
//
// FAILED is reachable from any non-terminal state. Nothing is deleted until
// an impact report exists, and under MOVE_THEN_DELETE nothing is deleted
// until every affected product has been moved out of the subtree.
//
// A target with no descendants and no affected products skips the decision
// and deletes immediately during ComputeImpact.
type DeletionOrchestrator struct {
	analyzer   *DeletionImpactAnalyzer
	reassigner *ProductReassignmentService
	categories repository.CategoryRepositoryInterface
	products   repository.ProductRepositoryInterface
	logger     *logrus.Entry

	targetID uuid.UUID
	state    models.DeletionState
	report   *models.DeletionImpactReport
	subtree  []*models.CategoryNode
	affected []uuid.UUID
}

func NewDeletionOrchestrator(
	analyzer *DeletionImpactAnalyzer,
	reassigner *ProductReassignmentService,
	categories repository.CategoryRepositoryInterface,
	products repository.ProductRepositoryInterface,
	logger *logrus.Logger,
	targetID uuid.UUID,
) *DeletionOrchestrator {
	return &DeletionOrchestrator{
		analyzer:   analyzer,
		reassigner: reassigner,
		categories: categories,
		products:   products,
		logger:     logger.WithField("component", "deletion_orchestrator"),
		targetID:   targetID,
		state:      models.StateAwaitingImpact,
	}
}

// State returns the workflow's current state
func (o *DeletionOrchestrator) State() models.DeletionState {
	return o.state
}

// Report returns the impact report, nil before ComputeImpact
func (o *DeletionOrchestrator) Report() *models.DeletionImpactReport {
	return o.report
}

func (o *DeletionOrchestrator) failWith(err error) error {
	o.state = models.StateFailed
	return err
}

// ComputeImpact analyzes the target's blast radius. A leaf with no affected
// products has nothing to decide and is deleted immediately; the returned
// result's State tells the caller which happened.
func (o *DeletionOrchestrator) ComputeImpact() (*models.CascadeDeleteResult, error) {
	if o.state != models.StateAwaitingImpact {
		return nil, fmt.Errorf("%w: ComputeImpact in state %s", ErrInvalidTransition, o.state)
	}

	subtree, err := o.analyzer.Subtree(o.targetID)
	if err != nil {
		return nil, o.failWith(err)
	}
	affected, err := o.analyzer.AffectedProductIDs(subtree)
	if err != nil {
		return nil, o.failWith(err)
	}

	direct, err := o.products.IDsByCategoryNode(subtree[0])
	if err != nil {
		return nil, o.failWith(err)
	}

	o.subtree = subtree
	o.affected = affected
	o.report = &models.DeletionImpactReport{
		TargetID:            o.targetID,
		DirectProductCount:  len(direct),
		DescendantNodeCount: len(subtree) - 1,
		TotalProductCount:   len(affected),
	}

	if len(affected) == 0 && len(subtree) == 1 {
		deleted, err := o.deleteSubtree()
		if err != nil {
			return nil, o.failWith(err)
		}
		o.state = models.StateDone
		return &models.CascadeDeleteResult{
			Success:      true,
			State:        o.state,
			NodesDeleted: deleted,
		}, nil
	}

	o.state = models.StateAwaitingDecision
	return &models.CascadeDeleteResult{Success: true, State: o.state}, nil
}

// DecideMove executes the move-then-delete branch. Reassignment failure
// leaves the tree untouched; skipped product ids are a partial success and
// do not block deletion.
func (o *DeletionOrchestrator) DecideMove(destination models.CategoryRefs) (*models.CascadeDeleteResult, error) {
	if o.state != models.StateAwaitingDecision {
		return nil, fmt.Errorf("%w: DecideMove in state %s", ErrInvalidTransition, o.state)
	}
	o.state = models.StateMoveThenDelete

	moved, skipped, err := o.reassigner.Reassign(o.affected, destination)
	if err != nil {
		return nil, o.failWith(fmt.Errorf("reassignment failed, nothing deleted: %w", err))
	}

	deleted, err := o.deleteSubtree()
	if err != nil {
		return nil, o.failWith(err)
	}

	o.state = models.StateDone
	o.logger.WithFields(logrus.Fields{
		"target_id":      o.targetID,
		"nodes_deleted":  deleted,
		"products_moved": moved,
	}).Info("Cascade delete finished after moving products")

	return &models.CascadeDeleteResult{
		Success:           true,
		State:             o.state,
		NodesDeleted:      deleted,
		ProductsMoved:     moved,
		SkippedProductIDs: skipped,
	}, nil
}

// DecideDeleteWithProducts executes the destructive branch: every affected
// product is deleted along with the subtree.
func (o *DeletionOrchestrator) DecideDeleteWithProducts() (*models.CascadeDeleteResult, error) {
	if o.state != models.StateAwaitingDecision {
		return nil, fmt.Errorf("%w: DecideDeleteWithProducts in state %s", ErrInvalidTransition, o.state)
	}
	o.state = models.StateDeleteWithProducts

	productsDeleted, err := o.products.SoftDeleteByIDs(o.affected)
	if err != nil {
		return nil, o.failWith(err)
	}

	deleted, err := o.deleteSubtree()
	if err != nil {
		return nil, o.failWith(err)
	}

	o.state = models.StateDone
	o.logger.WithFields(logrus.Fields{
		"target_id":        o.targetID,
		"nodes_deleted":    deleted,
		"products_deleted": productsDeleted,
	}).Info("Cascade delete finished with products")

	return &models.CascadeDeleteResult{
		Success:         true,
		State:           o.state,
		NodesDeleted:    deleted,
		ProductsDeleted: productsDeleted,
	}, nil
}

func (o *DeletionOrchestrator) deleteSubtree() (int64, error) {
	ids := make([]uuid.UUID, len(o.subtree))
	for i, node := range o.subtree {
		ids[i] = node.ID
	}
	return o.categories.SoftDeleteByIDs(ids)
}
