package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"catalog-service/internal/events"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
	"catalog-service/internal/services"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	products   repository.ProductRepositoryInterface
	categories repository.CategoryRepositoryInterface
	resolver   *services.HierarchyResolver
	reassigner *services.ProductReassignmentService
	publisher  *events.Publisher
}

func NewProductHandler(
	products repository.ProductRepositoryInterface,
	categories repository.CategoryRepositoryInterface,
	resolver *services.HierarchyResolver,
	reassigner *services.ProductReassignmentService,
	publisher *events.Publisher,
) *ProductHandler {
	return &ProductHandler{
		products:   products,
		categories: categories,
		resolver:   resolver,
		reassigner: reassigner,
		publisher:  publisher,
	}
}

// GetProduct returns a single product
// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	product, err := h.products.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: product})
}

// ListProductsByCategory lists products directly assigned to a tree node
// GET /api/v1/categories/:id/products
func (h *ProductHandler) ListProductsByCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	node, err := h.categories.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	products, total, err := h.products.ListByCategoryNode(node, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, models.ProductListResponse{
		Success: true,
		Data:    products,
		Pagination: &models.PaginationInfo{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	})
}

// BulkMoveProducts reassigns the listed products to a destination path.
// Destination segments resolve like import paths, creating missing nodes.
// POST /api/v1/products/bulk-move
func (h *ProductHandler) BulkMoveProducts(c *gin.Context) {
	var req models.BulkMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	desc := services.PathDescriptor{ParentCategory: req.ParentCategory}
	levels := []*string{req.Category, req.SubCategory2, req.SubCategory3, req.SubCategory4}
	for i, level := range levels {
		if level != nil {
			desc.Levels[i] = *level
		}
	}

	session := h.resolver.NewSession(true)
	path, err := session.Resolve(desc)
	if err != nil {
		respondError(c, http.StatusBadRequest, "RESOLUTION_ERROR", err.Error())
		return
	}

	updated, skipped, err := h.reassigner.Reassign(req.ProductIDs, path.Refs())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "MOVE_FAILED", err.Error())
		return
	}

	if h.publisher != nil {
		h.publisher.PublishProductsMoved(c.Request.Context(), path.ParentCategory.ID.String(), updated, len(skipped))
	}

	c.JSON(http.StatusOK, models.BulkMoveResponse{
		Success:      true,
		UpdatedCount: updated,
		SkippedIDs:   skipped,
	})
}
