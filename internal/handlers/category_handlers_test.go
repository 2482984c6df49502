package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-service/internal/models"
	"catalog-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type categoryTestEnv struct {
	router     *gin.Engine
	categories *memCategoryRepo
	products   *memProductRepo
}

func newCategoryTestEnv() *categoryTestEnv {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	categories := newMemCategoryRepo()
	products := newMemProductRepo()
	brands := newMemBrandRepo()

	resolver := services.NewHierarchyResolver(categories, brands, logger)
	analyzer := services.NewDeletionImpactAnalyzer(categories, products)
	reassigner := services.NewProductReassignmentService(products, logger)

	handler := NewCategoryHandler(categories, products, resolver, analyzer, reassigner, nil, logger)
	productHandler := NewProductHandler(products, categories, resolver, reassigner, nil)

	router := gin.New()
	router.GET("/categories/:id", handler.GetCategory)
	router.POST("/categories", handler.CreateCategory)
	router.PUT("/categories/:id", handler.UpdateCategory)
	router.GET("/categories/:id/deletion-info", handler.GetDeletionInfo)
	router.DELETE("/categories/:id", handler.DeleteCategory)
	router.POST("/products/bulk-move", productHandler.BulkMoveProducts)

	return &categoryTestEnv{router: router, categories: categories, products: products}
}

func (env *categoryTestEnv) seedNode(level int, root, parent *models.CategoryNode, name string) *models.CategoryNode {
	node := &models.CategoryNode{
		ID:       uuid.New(),
		Name:     name,
		Slug:     services.SlugFromName(name),
		Level:    level,
		IsActive: true,
	}
	if level >= 1 {
		node.ParentCategoryID = &root.ID
	}
	if level >= 2 {
		node.ParentSubCategoryID = &parent.ID
	}
	env.categories.Create(node)
	return node
}

func (env *categoryTestEnv) seedProduct(root *models.CategoryNode, sub *models.CategoryNode) *models.Product {
	product := &models.Product{ID: uuid.New(), Name: "p", Price: 1, ParentCategoryID: root.ID}
	if sub != nil {
		product.CategoryID = &sub.ID
	}
	env.products.Create(product)
	return product
}

func (env *categoryTestEnv) do(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = new(bytes.Buffer)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestGetCategoryNotFound(t *testing.T) {
	env := newCategoryTestEnv()

	w := env.do(t, http.MethodGet, "/categories/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCategoryDerivesLevel(t *testing.T) {
	env := newCategoryTestEnv()

	w := env.do(t, http.MethodPost, "/categories", models.CreateCategoryRequest{Name: "Electronics"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.CategoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 0, created.Data.Level)

	w = env.do(t, http.MethodPost, "/categories", models.CreateCategoryRequest{
		Name:     "Smartphones",
		ParentID: &created.Data.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var child models.CategoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &child))
	assert.Equal(t, 1, child.Data.Level)
	require.NotNil(t, child.Data.ParentCategoryID)
	assert.Equal(t, created.Data.ID, *child.Data.ParentCategoryID)
}

func TestCreateCategoryRejectsTooDeep(t *testing.T) {
	env := newCategoryTestEnv()

	root := env.seedNode(0, nil, nil, "L0")
	parent := root
	for level := 1; level <= models.MaxCategoryLevel; level++ {
		parent = env.seedNode(level, root, parent, "L")
	}

	w := env.do(t, http.MethodPost, "/categories", models.CreateCategoryRequest{
		Name:     "Too Deep",
		ParentID: &parent.ID,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MAX_DEPTH")
}

func TestUpdateCategoryRejectsCycle(t *testing.T) {
	env := newCategoryTestEnv()

	root := env.seedNode(0, nil, nil, "Electronics")
	phones := env.seedNode(1, root, root, "Phones")
	android := env.seedNode(2, root, phones, "Android")
	_ = android

	// Re-parenting into a node inside the subtree is refused
	w := env.do(t, http.MethodPut, "/categories/"+phones.ID.String(), models.UpdateCategoryRequest{
		ParentID: &phones.ID,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletionInfoReportsImpact(t *testing.T) {
	env := newCategoryTestEnv()

	root := env.seedNode(0, nil, nil, "Electronics")
	phones := env.seedNode(1, root, root, "Phones")
	env.seedProduct(root, nil)
	env.seedProduct(root, phones)

	w := env.do(t, http.MethodGet, "/categories/"+root.ID.String()+"/deletion-info", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var info models.DeletionInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, 2, info.ProductCount)
	assert.Equal(t, 1, info.ChildCount)
}

func TestDeleteCategoryMovesProducts(t *testing.T) {
	env := newCategoryTestEnv()

	doomed := env.seedNode(0, nil, nil, "Discontinued")
	keep := env.seedNode(0, nil, nil, "Archive")
	product := env.seedProduct(doomed, nil)

	w := env.do(t, http.MethodDelete, "/categories/"+doomed.ID.String(), models.DeleteCategoryRequest{
		MoveProducts: true,
		Destination:  &models.MoveDestination{ParentCategory: keep.Name},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result models.CascadeDeleteResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.StateDone, result.State)
	assert.Equal(t, int64(1), result.ProductsMoved)

	// The product survived under the destination; the node is gone
	moved, err := env.products.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, keep.ID, moved.ParentCategoryID)
	_, err = env.categories.GetByID(doomed.ID)
	assert.Error(t, err)
}

func TestDeleteCategoryRejectsDestinationInSubtree(t *testing.T) {
	env := newCategoryTestEnv()

	doomed := env.seedNode(0, nil, nil, "Discontinued")
	inside := env.seedNode(1, doomed, doomed, "Old Phones")
	env.seedProduct(doomed, nil)

	w := env.do(t, http.MethodDelete, "/categories/"+doomed.ID.String(), models.DeleteCategoryRequest{
		MoveProducts: true,
		Destination: &models.MoveDestination{
			ParentCategory: doomed.ID.String(),
			Category:       strPtr(inside.ID.String()),
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_DESTINATION")

	// Nothing was deleted
	_, err := env.categories.GetByID(doomed.ID)
	assert.NoError(t, err)
}

func TestDeleteCategoryWithProducts(t *testing.T) {
	env := newCategoryTestEnv()

	doomed := env.seedNode(0, nil, nil, "Discontinued")
	product := env.seedProduct(doomed, nil)

	w := env.do(t, http.MethodDelete, "/categories/"+doomed.ID.String(), models.DeleteCategoryRequest{
		MoveProducts: false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result models.CascadeDeleteResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.StateDone, result.State)
	assert.Equal(t, int64(1), result.ProductsDeleted)

	_, err := env.products.GetByID(product.ID)
	assert.Error(t, err)
}

func TestDeleteEmptyLeafSkipsDecision(t *testing.T) {
	env := newCategoryTestEnv()

	doomed := env.seedNode(0, nil, nil, "Empty")

	// No body at all: a childless, productless node needs no decision
	w := env.do(t, http.MethodDelete, "/categories/"+doomed.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.CascadeDeleteResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.StateDone, result.State)
	assert.Equal(t, int64(1), result.NodesDeleted)
}

func TestDeleteEmptySubtreeWithoutBody(t *testing.T) {
	env := newCategoryTestEnv()

	doomed := env.seedNode(0, nil, nil, "Empty")
	env.seedNode(1, doomed, doomed, "Also Empty")

	// Descendants force the decision step; an absent body reads as
	// delete-with-products and the whole subtree goes
	w := env.do(t, http.MethodDelete, "/categories/"+doomed.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.CascadeDeleteResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.StateDone, result.State)
	assert.Equal(t, int64(2), result.NodesDeleted)
	assert.Equal(t, int64(0), result.ProductsDeleted)
}

func TestDeleteCategoryNotFound(t *testing.T) {
	env := newCategoryTestEnv()

	w := env.do(t, http.MethodDelete, "/categories/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBulkMoveProducts(t *testing.T) {
	env := newCategoryTestEnv()

	source := env.seedNode(0, nil, nil, "Source")
	first := env.seedProduct(source, nil)
	second := env.seedProduct(source, nil)
	missing := uuid.New()

	w := env.do(t, http.MethodPost, "/products/bulk-move", models.BulkMoveRequest{
		ProductIDs:     []uuid.UUID{first.ID, second.ID, missing},
		ParentCategory: "Destination",
		Category:       strPtr("Shelf"),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result models.BulkMoveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(2), result.UpdatedCount)
	assert.Equal(t, []string{missing.String()}, result.SkippedIDs)

	moved, err := env.products.GetByID(first.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.CategoryID)
	assert.NotEqual(t, source.ID, moved.ParentCategoryID)
}

func strPtr(s string) *string {
	return &s
}
