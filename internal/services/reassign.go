package services

import (
	"catalog-service/internal/models"
	"catalog-service/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProductReassignmentService moves products between tree positions
type ProductReassignmentService struct {
	products repository.ProductRepositoryInterface
	logger   *logrus.Entry
}

func NewProductReassignmentService(products repository.ProductRepositoryInterface, logger *logrus.Logger) *ProductReassignmentService {
	return &ProductReassignmentService{
		products: products,
		logger:   logger.WithField("component", "product_reassignment"),
	}
}

// Reassign points the listed products at the destination refs. Missing ids
// are skipped and enumerated; only a store failure is an error.
func (s *ProductReassignmentService) Reassign(ids []uuid.UUID, destination models.CategoryRefs) (int64, []string, error) {
	if len(ids) == 0 {
		return 0, nil, nil
	}

	updated, skipped, err := s.products.ReassignCategoryRefs(ids, destination)
	if err != nil {
		return updated, skipped, err
	}

	if len(skipped) > 0 {
		s.logger.WithFields(logrus.Fields{
			"requested": len(ids),
			"updated":   updated,
			"skipped":   len(skipped),
		}).Warn("Some products were missing during reassignment")
	}
	return updated, skipped, nil
}
