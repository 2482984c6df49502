package repository

import (
	"catalog-service/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const ProductCacheTTL = 10 * time.Minute

var ErrProductNotFound = errors.New("product not found")

// ProductRepositoryInterface is the persistence contract for products.
type ProductRepositoryInterface interface {
	Create(product *models.Product) error
	Update(product *models.Product) error
	GetByID(id uuid.UUID) (*models.Product, error)
	ListByCategoryNode(node *models.CategoryNode, limit, offset int) ([]models.Product, int64, error)
	IDsByCategoryNode(node *models.CategoryNode) ([]uuid.UUID, error)
	ReassignCategoryRefs(ids []uuid.UUID, refs models.CategoryRefs) (int64, []string, error)
	SoftDeleteByIDs(ids []uuid.UUID) (int64, error)
}

type ProductRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

var _ ProductRepositoryInterface = (*ProductRepository)(nil)

func NewProductRepository(db *gorm.DB, redis *redis.Client) *ProductRepository {
	return &ProductRepository{
		db:    db,
		redis: redis,
	}
}

func (r *ProductRepository) invalidateProductCache(ctx context.Context, ids ...uuid.UUID) {
	if r.redis == nil {
		return
	}
	for _, id := range ids {
		r.redis.Del(ctx, fmt.Sprintf("catalog:products:%s", id))
	}
}

// refColumn maps a node's level to the product column referencing nodes at
// that level.
func refColumn(level int) string {
	switch level {
	case 0:
		return "parent_category_id"
	case 1:
		return "category_id"
	case 2:
		return "sub_category2_id"
	case 3:
		return "sub_category3_id"
	default:
		return "sub_category4_id"
	}
}

// Create creates a new product
func (r *ProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update saves the full product row
func (r *ProductRepository) Update(product *models.Product) error {
	err := r.db.Save(product).Error
	if err == nil {
		r.invalidateProductCache(context.Background(), product.ID)
	}
	return err
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ListByCategoryNode lists products directly assigned to the given node,
// with pagination
func (r *ProductRepository) ListByCategoryNode(node *models.CategoryNode, limit, offset int) ([]models.Product, int64, error) {
	column := refColumn(node.Level)
	var products []models.Product
	var total int64

	base := r.db.Model(&models.Product{}).Where(column+" = ?", node.ID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Order("name").Limit(limit).Offset(offset).Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// IDsByCategoryNode returns the ids of products directly assigned to the
// given node. Used for deletion impact analysis.
func (r *ProductRepository) IDsByCategoryNode(node *models.CategoryNode) ([]uuid.UUID, error) {
	column := refColumn(node.Level)
	var ids []uuid.UUID
	err := r.db.Model(&models.Product{}).
		Where(column+" = ?", node.ID).
		Pluck("id", &ids).Error
	return ids, err
}

// ReassignCategoryRefs points the listed products at a new tree position.
// Products run one by one so a missing id skips that product instead of
// failing the whole move; skipped ids are returned to the caller.
func (r *ProductRepository) ReassignCategoryRefs(ids []uuid.UUID, refs models.CategoryRefs) (int64, []string, error) {
	var updated int64
	var skippedIDs []string

	updates := map[string]interface{}{
		"parent_category_id": refs.ParentCategoryID,
		"category_id":        refs.CategoryID,
		"sub_category2_id":   refs.SubCategory2ID,
		"sub_category3_id":   refs.SubCategory3ID,
		"sub_category4_id":   refs.SubCategory4ID,
	}

	for _, id := range ids {
		result := r.db.Model(&models.Product{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return updated, skippedIDs, result.Error
		}
		if result.RowsAffected == 0 {
			skippedIDs = append(skippedIDs, id.String())
			continue
		}
		updated += result.RowsAffected
	}

	if updated > 0 {
		r.invalidateProductCache(context.Background(), ids...)
	}
	return updated, skippedIDs, nil
}

// SoftDeleteByIDs soft-deletes the given products and returns how many rows
// were affected
func (r *ProductRepository) SoftDeleteByIDs(ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ?", ids).Delete(&models.Product{})
	if result.Error != nil {
		return 0, result.Error
	}
	r.invalidateProductCache(context.Background(), ids...)
	return result.RowsAffected, nil
}
