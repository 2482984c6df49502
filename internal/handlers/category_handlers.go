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
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CategoryHandler struct {
	repo       repository.CategoryRepositoryInterface
	products   repository.ProductRepositoryInterface
	resolver   *services.HierarchyResolver
	analyzer   *services.DeletionImpactAnalyzer
	reassigner *services.ProductReassignmentService
	publisher  *events.Publisher
	logger     *logrus.Logger
}

func NewCategoryHandler(
	repo repository.CategoryRepositoryInterface,
	products repository.ProductRepositoryInterface,
	resolver *services.HierarchyResolver,
	analyzer *services.DeletionImpactAnalyzer,
	reassigner *services.ProductReassignmentService,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *CategoryHandler {
	return &CategoryHandler{
		repo:       repo,
		products:   products,
		resolver:   resolver,
		analyzer:   analyzer,
		reassigner: reassigner,
		publisher:  publisher,
		logger:     logger,
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
		},
	})
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// ListCategories returns tree nodes with pagination
// GET /api/v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	nodes, total, err := h.repo.GetAll(limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, models.CategoryListResponse{
		Success: true,
		Data:    nodes,
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

// GetCategoryTree returns the full tree, roots first
// GET /api/v1/categories/tree
func (h *CategoryHandler) GetCategoryTree(c *gin.Context) {
	roots, err := h.repo.GetTree()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "TREE_FAILED", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    roots,
	})
}

// GetCategory returns a single node
// GET /api/v1/categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	node, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, models.CategoryResponse{Success: true, Data: node})
}

// CreateCategory creates a tree node. The node's level is derived from its
// parent, never taken from the client.
// POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	node := &models.CategoryNode{
		ID:       uuid.New(),
		Name:     req.Name,
		IsActive: true,
	}
	if req.Slug != nil && *req.Slug != "" {
		node.Slug = *req.Slug
	} else {
		node.Slug = services.SlugFromName(req.Name)
	}
	if req.SortOrder != nil {
		node.SortOrder = *req.SortOrder
	} else {
		node.SortOrder = 1
	}
	if req.IsActive != nil {
		node.IsActive = *req.IsActive
	}
	node.ImageURL = req.ImageURL

	if req.ParentID != nil {
		parent, err := h.repo.GetByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				respondError(c, http.StatusBadRequest, "INVALID_PARENT", "Parent category not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
			return
		}
		if parent.Level >= models.MaxCategoryLevel {
			respondError(c, http.StatusBadRequest, "MAX_DEPTH", "Cannot nest below the deepest category level")
			return
		}
		node.Level = parent.Level + 1
		if parent.Level == 0 {
			node.ParentCategoryID = &parent.ID
		} else {
			node.ParentCategoryID = parent.ParentCategoryID
			node.ParentSubCategoryID = &parent.ID
		}
	}

	if err := h.repo.Create(node); err != nil {
		respondError(c, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, models.CategoryResponse{Success: true, Data: node})
}

// UpdateCategory updates a node. Re-parenting is allowed only to a parent
// at the same depth as the current one, and never into the node's own
// subtree.
// PUT /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	node, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	if req.Name != nil {
		node.Name = *req.Name
	}
	if req.Slug != nil {
		node.Slug = *req.Slug
	}
	if req.SortOrder != nil {
		node.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		node.IsActive = *req.IsActive
	}
	if req.ImageURL != nil {
		node.ImageURL = req.ImageURL
	}

	if req.ParentID != nil {
		if ok := h.reparent(c, node, *req.ParentID); !ok {
			return
		}
	}

	if err := h.repo.Update(node); err != nil {
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, models.CategoryResponse{Success: true, Data: node})
}

// reparent moves node under newParentID, keeping the node's depth. On
// failure it writes the error response and returns false.
func (h *CategoryHandler) reparent(c *gin.Context, node *models.CategoryNode, newParentID uuid.UUID) bool {
	if node.Level == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_PARENT", "Top-level categories cannot be re-parented")
		return false
	}

	current := node.ParentRef()
	if current != nil && *current == newParentID {
		return true
	}

	parent, err := h.repo.GetByID(newParentID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			respondError(c, http.StatusBadRequest, "INVALID_PARENT", "Parent category not found")
			return false
		}
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return false
	}

	if parent.Level != node.Level-1 {
		respondError(c, http.StatusBadRequest, "INVALID_PARENT", "New parent must sit one level above the category")
		return false
	}

	cyclic, err := h.analyzer.IsDescendant(node.ID, newParentID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return false
	}
	if cyclic {
		respondError(c, http.StatusBadRequest, "INVALID_PARENT", "Cannot move a category into its own subtree")
		return false
	}

	if node.Level == 1 {
		node.ParentCategoryID = &parent.ID
	} else {
		node.ParentCategoryID = parent.ParentCategoryID
		node.ParentSubCategoryID = &parent.ID
	}

	// Moving a level-1 node to a different root changes the owning root of
	// its whole subtree.
	if node.Level == 1 {
		subtree, err := h.analyzer.Subtree(node.ID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
			return false
		}
		for _, descendant := range subtree[1:] {
			descendant.ParentCategoryID = &parent.ID
			if err := h.repo.Update(descendant); err != nil {
				respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
				return false
			}
		}
	}

	return true
}

// GetDeletionInfo answers the pre-delete impact query
// GET /api/v1/categories/:id/deletion-info
func (h *CategoryHandler) GetDeletionInfo(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	report, err := h.analyzer.Analyze(id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "IMPACT_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, models.DeletionInfoResponse{
		Success:      true,
		ProductCount: report.TotalProductCount,
		ChildCount:   report.DescendantNodeCount,
	})
}

// DeleteCategory runs the cascading-deletion workflow. The request body
// carries the operator decision: moveProducts plus a destination path, or
// delete-with-products when moveProducts is false.
// DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.DeleteCategoryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	target, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	orchestrator := services.NewDeletionOrchestrator(h.analyzer, h.reassigner, h.repo, h.products, h.logger, id)

	result, err := orchestrator.ComputeImpact()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	if result.State == models.StateAwaitingDecision {
		if req.MoveProducts {
			refs, ok := h.resolveDestination(c, id, req.Destination)
			if !ok {
				return
			}
			result, err = orchestrator.DecideMove(refs)
		} else {
			result, err = orchestrator.DecideDeleteWithProducts()
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
			return
		}
	}

	if h.publisher != nil {
		h.publisher.PublishCategoryDeleted(c.Request.Context(), id.String(), target.Name, result.NodesDeleted, result.ProductsMoved, result.ProductsDeleted)
	}

	c.JSON(http.StatusOK, result)
}

// resolveDestination binds the move destination and rejects destinations
// inside the doomed subtree. On failure it writes the error response and
// returns ok=false.
func (h *CategoryHandler) resolveDestination(c *gin.Context, targetID uuid.UUID, dest *models.MoveDestination) (models.CategoryRefs, bool) {
	if dest == nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "destination is required when moveProducts is true")
		return models.CategoryRefs{}, false
	}

	session := h.resolver.NewSession(true)
	path, err := session.Resolve(destinationPath(dest))
	if err != nil {
		respondError(c, http.StatusBadRequest, "RESOLUTION_ERROR", err.Error())
		return models.CategoryRefs{}, false
	}

	inside, err := h.analyzer.IsDescendant(targetID, deepestNodeID(path))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return models.CategoryRefs{}, false
	}
	if inside {
		respondError(c, http.StatusBadRequest, "INVALID_DESTINATION", "Destination lies inside the category being deleted")
		return models.CategoryRefs{}, false
	}

	return path.Refs(), true
}

func destinationPath(dest *models.MoveDestination) services.PathDescriptor {
	desc := services.PathDescriptor{ParentCategory: dest.ParentCategory}
	levels := []*string{dest.Category, dest.SubCategory2, dest.SubCategory3, dest.SubCategory4}
	for i, level := range levels {
		if level != nil {
			desc.Levels[i] = *level
		}
	}
	return desc
}

func deepestNodeID(path *services.ResolvedPath) uuid.UUID {
	deepest := path.ParentCategory.ID
	for _, node := range path.Levels {
		if node != nil {
			deepest = node.ID
		}
	}
	return deepest
}
