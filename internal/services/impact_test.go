package services

import (
	"testing"

	"catalog-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedProduct assigns a product to a tree position by node level
func seedProduct(t *testing.T, products *fakeProductRepo, nodes ...*models.CategoryNode) uuid.UUID {
	t.Helper()
	product := &models.Product{ID: uuid.New(), Name: "p", Price: 1}
	for _, node := range nodes {
		switch node.Level {
		case 0:
			product.ParentCategoryID = node.ID
		case 1:
			product.CategoryID = &node.ID
		case 2:
			product.SubCategory2ID = &node.ID
		case 3:
			product.SubCategory3ID = &node.ID
		default:
			product.SubCategory4ID = &node.ID
		}
	}
	require.NoError(t, products.Create(product))
	return product.ID
}

func TestAnalyzeCountsSubtreeAndProducts(t *testing.T) {
	categories := newFakeCategoryRepo()
	products := newFakeProductRepo()
	analyzer := NewDeletionImpactAnalyzer(categories, products)

	root := categories.seed(0, nil, nil, "Electronics")
	phones := categories.seed(1, root, root, "Phones")
	laptops := categories.seed(1, root, root, "Laptops")

	// 3 products on the root, 2 on each child
	for i := 0; i < 3; i++ {
		seedProduct(t, products, root)
	}
	for i := 0; i < 2; i++ {
		seedProduct(t, products, root, phones)
		seedProduct(t, products, root, laptops)
	}

	report, err := analyzer.Analyze(root.ID)
	require.NoError(t, err)

	assert.Equal(t, root.ID, report.TargetID)
	assert.Equal(t, 2, report.DescendantNodeCount)
	assert.Equal(t, 7, report.DirectProductCount)
	assert.Equal(t, 7, report.TotalProductCount)
}

func TestAnalyzeMidTreeTarget(t *testing.T) {
	categories := newFakeCategoryRepo()
	products := newFakeProductRepo()
	analyzer := NewDeletionImpactAnalyzer(categories, products)

	root := categories.seed(0, nil, nil, "Electronics")
	phones := categories.seed(1, root, root, "Phones")
	android := categories.seed(2, root, phones, "Android")

	seedProduct(t, products, root)
	seedProduct(t, products, root, phones)
	seedProduct(t, products, root, phones, android)

	report, err := analyzer.Analyze(phones.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, report.DescendantNodeCount)
	assert.Equal(t, 2, report.DirectProductCount)
	assert.Equal(t, 2, report.TotalProductCount)
}

func TestAffectedProductIDsDeduplicates(t *testing.T) {
	categories := newFakeCategoryRepo()
	products := newFakeProductRepo()
	analyzer := NewDeletionImpactAnalyzer(categories, products)

	root := categories.seed(0, nil, nil, "Electronics")
	phones := categories.seed(1, root, root, "Phones")

	// One product referencing both the root and the child
	id := seedProduct(t, products, root, phones)

	nodes, err := analyzer.Subtree(root.ID)
	require.NoError(t, err)
	affected, err := analyzer.AffectedProductIDs(nodes)
	require.NoError(t, err)

	require.Len(t, affected, 1)
	assert.Equal(t, id, affected[0])
}

func TestSubtreeTargetFirst(t *testing.T) {
	categories := newFakeCategoryRepo()
	products := newFakeProductRepo()
	analyzer := NewDeletionImpactAnalyzer(categories, products)

	root := categories.seed(0, nil, nil, "Electronics")
	phones := categories.seed(1, root, root, "Phones")
	android := categories.seed(2, root, phones, "Android")
	pixel := categories.seed(3, root, android, "Pixel")

	nodes, err := analyzer.Subtree(root.ID)
	require.NoError(t, err)

	require.Len(t, nodes, 4)
	assert.Equal(t, root.ID, nodes[0].ID)

	_, err = analyzer.Subtree(uuid.New())
	assert.Error(t, err)

	leafOnly, err := analyzer.Subtree(pixel.ID)
	require.NoError(t, err)
	assert.Len(t, leafOnly, 1)
}

func TestIsDescendant(t *testing.T) {
	categories := newFakeCategoryRepo()
	products := newFakeProductRepo()
	analyzer := NewDeletionImpactAnalyzer(categories, products)

	root := categories.seed(0, nil, nil, "Electronics")
	phones := categories.seed(1, root, root, "Phones")
	other := categories.seed(0, nil, nil, "Clothing")

	inside, err := analyzer.IsDescendant(root.ID, phones.ID)
	require.NoError(t, err)
	assert.True(t, inside)

	self, err := analyzer.IsDescendant(root.ID, root.ID)
	require.NoError(t, err)
	assert.True(t, self)

	outside, err := analyzer.IsDescendant(root.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, outside)
}
