package services

import (
	"strings"
	"sync"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"

	"github.com/google/uuid"
)

// fakeCategoryRepo is an in-memory CategoryRepositoryInterface for tests
// that need real store behavior, like resolver sessions observing nodes
// created by earlier rows.
type fakeCategoryRepo struct {
	mu    sync.Mutex
	nodes map[uuid.UUID]*models.CategoryNode
}

var _ repository.CategoryRepositoryInterface = (*fakeCategoryRepo)(nil)

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{nodes: make(map[uuid.UUID]*models.CategoryNode)}
}

func (f *fakeCategoryRepo) Create(node *models.CategoryNode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *node
	f.nodes[node.ID] = &copied
	return nil
}

func (f *fakeCategoryRepo) GetByID(id uuid.UUID) (*models.CategoryNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	node, ok := f.nodes[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	copied := *node
	return &copied, nil
}

func (f *fakeCategoryRepo) GetAll(limit, offset int) ([]models.CategoryNode, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.CategoryNode
	for _, node := range f.nodes {
		all = append(all, *node)
	}
	return all, int64(len(all)), nil
}

func (f *fakeCategoryRepo) GetTree() ([]*models.CategoryNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var roots []*models.CategoryNode
	for _, node := range f.nodes {
		if node.Level == 0 {
			copied := *node
			roots = append(roots, &copied)
		}
	}
	return roots, nil
}

func (f *fakeCategoryRepo) FindInScope(level int, parentID *uuid.UUID, name string) (*models.CategoryNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, node := range f.nodes {
		if node.Level != level || !strings.EqualFold(node.Name, strings.TrimSpace(name)) {
			continue
		}
		ref := node.ParentRef()
		if level == 0 || (ref != nil && parentID != nil && *ref == *parentID) {
			copied := *node
			return &copied, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) GetOrCreate(node *models.CategoryNode) (*models.CategoryNode, bool, error) {
	if existing, err := f.FindInScope(node.Level, node.ParentRef(), node.Name); err == nil {
		return existing, false, nil
	}
	if err := f.Create(node); err != nil {
		return nil, false, err
	}
	copied := *node
	return &copied, true, nil
}

func (f *fakeCategoryRepo) GetChildren(node *models.CategoryNode) ([]models.CategoryNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var children []models.CategoryNode
	for _, candidate := range f.nodes {
		if candidate.Level != node.Level+1 {
			continue
		}
		ref := candidate.ParentRef()
		if ref != nil && *ref == node.ID {
			children = append(children, *candidate)
		}
	}
	return children, nil
}

func (f *fakeCategoryRepo) Update(node *models.CategoryNode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.nodes[node.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	copied := *node
	f.nodes[node.ID] = &copied
	return nil
}

func (f *fakeCategoryRepo) SoftDeleteByIDs(ids []uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if _, ok := f.nodes[id]; ok {
			delete(f.nodes, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeCategoryRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.nodes)
}

// seed inserts a node at the given position and returns it
func (f *fakeCategoryRepo) seed(level int, root, parent *models.CategoryNode, name string) *models.CategoryNode {
	node := &models.CategoryNode{
		ID:       uuid.New(),
		Name:     name,
		Slug:     SlugFromName(name),
		Level:    level,
		IsActive: true,
	}
	if level >= 1 {
		node.ParentCategoryID = &root.ID
	}
	if level >= 2 {
		node.ParentSubCategoryID = &parent.ID
	}
	f.Create(node)
	return node
}

// fakeProductRepo is an in-memory ProductRepositoryInterface
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
}

var _ repository.ProductRepositoryInterface = (*fakeProductRepo)(nil)

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*models.Product)}
}

func (f *fakeProductRepo) Create(product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeProductRepo) Update(product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeProductRepo) GetByID(id uuid.UUID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProductRepo) referencesNode(product *models.Product, node *models.CategoryNode) bool {
	switch node.Level {
	case 0:
		return product.ParentCategoryID == node.ID
	case 1:
		return product.CategoryID != nil && *product.CategoryID == node.ID
	case 2:
		return product.SubCategory2ID != nil && *product.SubCategory2ID == node.ID
	case 3:
		return product.SubCategory3ID != nil && *product.SubCategory3ID == node.ID
	default:
		return product.SubCategory4ID != nil && *product.SubCategory4ID == node.ID
	}
}

func (f *fakeProductRepo) ListByCategoryNode(node *models.CategoryNode, limit, offset int) ([]models.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.Product
	for _, product := range f.products {
		if f.referencesNode(product, node) {
			matched = append(matched, *product)
		}
	}
	return matched, int64(len(matched)), nil
}

func (f *fakeProductRepo) IDsByCategoryNode(node *models.CategoryNode) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for id, product := range f.products {
		if f.referencesNode(product, node) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeProductRepo) ReassignCategoryRefs(ids []uuid.UUID, refs models.CategoryRefs) (int64, []string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var updated int64
	var skipped []string
	for _, id := range ids {
		product, ok := f.products[id]
		if !ok {
			skipped = append(skipped, id.String())
			continue
		}
		product.ApplyRefs(refs)
		updated++
	}
	return updated, skipped, nil
}

func (f *fakeProductRepo) SoftDeleteByIDs(ids []uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if _, ok := f.products[id]; ok {
			delete(f.products, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeProductRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.products)
}

// fakeBrandRepo is an in-memory BrandRepositoryInterface
type fakeBrandRepo struct {
	mu     sync.Mutex
	brands map[string]*models.Brand
}

var _ repository.BrandRepositoryInterface = (*fakeBrandRepo)(nil)

func newFakeBrandRepo() *fakeBrandRepo {
	return &fakeBrandRepo{brands: make(map[string]*models.Brand)}
}

func (f *fakeBrandRepo) GetByID(id uuid.UUID) (*models.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, brand := range f.brands {
		if brand.ID == id {
			copied := *brand
			return &copied, nil
		}
	}
	return nil, repository.ErrBrandNotFound
}

func (f *fakeBrandRepo) FindByName(name string) (*models.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(name))
	brand, ok := f.brands[key]
	if !ok {
		return nil, repository.ErrBrandNotFound
	}
	copied := *brand
	return &copied, nil
}

func (f *fakeBrandRepo) GetOrCreateByName(name string) (*models.Brand, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(name))
	if brand, ok := f.brands[key]; ok {
		copied := *brand
		return &copied, false, nil
	}
	brand := &models.Brand{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(name),
		Slug:     SlugFromName(name),
		IsActive: true,
	}
	f.brands[key] = brand
	copied := *brand
	return &copied, true, nil
}
