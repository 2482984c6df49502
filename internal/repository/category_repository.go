package repository

import (
	"catalog-service/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Cache TTL constants
const (
	NodeCacheTTL     = 30 * time.Minute // Tree nodes rarely change
	NodeListCacheTTL = 15 * time.Minute // Node lists
)

var (
	ErrCategoryNotFound = errors.New("category node not found")
	ErrLevelOutOfRange  = errors.New("category level out of range")
)

// CategoryRepositoryInterface is the persistence contract for the tree
// arena. Services depend on this interface so they can be exercised against
// in-memory implementations.
type CategoryRepositoryInterface interface {
	Create(node *models.CategoryNode) error
	GetByID(id uuid.UUID) (*models.CategoryNode, error)
	GetAll(limit, offset int) ([]models.CategoryNode, int64, error)
	GetTree() ([]*models.CategoryNode, error)
	FindInScope(level int, parentID *uuid.UUID, name string) (*models.CategoryNode, error)
	GetOrCreate(node *models.CategoryNode) (*models.CategoryNode, bool, error)
	GetChildren(node *models.CategoryNode) ([]models.CategoryNode, error)
	Update(node *models.CategoryNode) error
	SoftDeleteByIDs(ids []uuid.UUID) (int64, error)
}

type CategoryRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

var _ CategoryRepositoryInterface = (*CategoryRepository)(nil)

func NewCategoryRepository(db *gorm.DB, redis *redis.Client) *CategoryRepository {
	return &CategoryRepository{
		db:    db,
		redis: redis,
	}
}

// invalidateNodeCaches invalidates all caches related to tree nodes
func (r *CategoryRepository) invalidateNodeCaches(ctx context.Context, nodeID *string) {
	if r.redis == nil {
		return
	}

	if nodeID != nil {
		r.redis.Del(ctx, fmt.Sprintf("catalog:categories:node:%s", *nodeID))
	}
	pattern := "catalog:categories:list:*"
	keys, _ := r.redis.Keys(ctx, pattern).Result()
	if len(keys) > 0 {
		r.redis.Del(ctx, keys...)
	}
}

// Create creates a new tree node
func (r *CategoryRepository) Create(node *models.CategoryNode) error {
	if node.Level < 0 || node.Level > models.MaxCategoryLevel {
		return ErrLevelOutOfRange
	}
	err := r.db.Create(node).Error
	if err == nil {
		r.invalidateNodeCaches(context.Background(), nil)
	}
	return err
}

// GetByID retrieves a node by ID with caching
func (r *CategoryRepository) GetByID(id uuid.UUID) (*models.CategoryNode, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("catalog:categories:node:%s", id)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var node models.CategoryNode
			if err := json.Unmarshal([]byte(val), &node); err == nil {
				return &node, nil
			}
		}
	}

	var node models.CategoryNode
	err := r.db.Where("id = ?", id).First(&node).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if r.redis != nil {
		data, err := json.Marshal(node)
		if err == nil {
			r.redis.Set(ctx, cacheKey, data, NodeCacheTTL)
		}
	}

	return &node, nil
}

// GetAll retrieves nodes with pagination and caching
func (r *CategoryRepository) GetAll(limit, offset int) ([]models.CategoryNode, int64, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("catalog:categories:list:%d:%d", limit, offset)

	type nodesResult struct {
		Nodes []models.CategoryNode `json:"nodes"`
		Total int64                 `json:"total"`
	}

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var result nodesResult
			if err := json.Unmarshal([]byte(val), &result); err == nil {
				return result.Nodes, result.Total, nil
			}
		}
	}

	var nodes []models.CategoryNode
	var total int64
	r.db.Model(&models.CategoryNode{}).Count(&total)
	err := r.db.Order("level, sort_order, name").Limit(limit).Offset(offset).Find(&nodes).Error
	if err != nil {
		return nil, 0, err
	}

	if r.redis != nil {
		data, err := json.Marshal(nodesResult{Nodes: nodes, Total: total})
		if err == nil {
			r.redis.Set(ctx, cacheKey, data, NodeListCacheTTL)
		}
	}

	return nodes, total, nil
}

// GetTree loads the whole arena and assembles parent/child links in memory
func (r *CategoryRepository) GetTree() ([]*models.CategoryNode, error) {
	var nodes []models.CategoryNode
	if err := r.db.Order("level, sort_order, name").Find(&nodes).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.CategoryNode, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}

	var roots []*models.CategoryNode
	for i := range nodes {
		node := &nodes[i]
		parentRef := node.ParentRef()
		if parentRef == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := byID[*parentRef]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return roots, nil
}

// FindInScope looks up a node by case-insensitive name at a tree position.
// Level-0 names are matched globally among roots; deeper levels are matched
// only among siblings under parentID.
func (r *CategoryRepository) FindInScope(level int, parentID *uuid.UUID, name string) (*models.CategoryNode, error) {
	query := r.db.Where("level = ? AND LOWER(name) = LOWER(?)", level, strings.TrimSpace(name))
	switch {
	case level == 0:
		// global scope among roots
	case level == 1:
		query = query.Where("parent_category_id = ?", parentID)
	default:
		query = query.Where("parent_sub_category_id = ?", parentID)
	}

	var node models.CategoryNode
	err := query.First(&node).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &node, nil
}

// GetOrCreate finds the node occupying the given tree position or creates
// it. Creation runs inside a transaction; a unique index on
// (level, parent refs, lowered name) turns a concurrent double-create into
// a conflict, which is resolved by re-reading the winner.
func (r *CategoryRepository) GetOrCreate(node *models.CategoryNode) (*models.CategoryNode, bool, error) {
	if node.Level < 0 || node.Level > models.MaxCategoryLevel {
		return nil, false, ErrLevelOutOfRange
	}

	var result models.CategoryNode
	var created bool

	parentID := node.ParentRef()
	err := r.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Where("level = ? AND LOWER(name) = LOWER(?)", node.Level, node.Name)
		switch {
		case node.Level == 0:
		case node.Level == 1:
			query = query.Where("parent_category_id = ?", parentID)
		default:
			query = query.Where("parent_sub_category_id = ?", parentID)
		}

		err := query.First(&result).Error
		if err == nil {
			created = false
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to lookup category node: %w", err)
		}

		if err := tx.Create(node).Error; err != nil {
			// Lost a race against a concurrent import creating the same
			// sibling; the unique index reports it as a duplicate.
			if strings.Contains(err.Error(), "duplicate") {
				if findErr := query.First(&result).Error; findErr == nil {
					created = false
					return nil
				}
			}
			return fmt.Errorf("failed to create category node '%s': %w", node.Name, err)
		}

		result = *node
		created = true
		return nil
	})

	if err != nil {
		return nil, false, err
	}

	if created {
		r.invalidateNodeCaches(context.Background(), nil)
	}
	return &result, created, nil
}

// GetChildren returns the direct children of a node. Children of a level-0
// node hang off parent_category_id, everything deeper off
// parent_sub_category_id.
func (r *CategoryRepository) GetChildren(node *models.CategoryNode) ([]models.CategoryNode, error) {
	var children []models.CategoryNode
	query := r.db.Where("level = ?", node.Level+1)
	if node.Level == 0 {
		query = query.Where("parent_category_id = ?", node.ID)
	} else {
		query = query.Where("parent_sub_category_id = ?", node.ID)
	}
	err := query.Order("sort_order, name").Find(&children).Error
	return children, err
}

// Update updates a node
func (r *CategoryRepository) Update(node *models.CategoryNode) error {
	var existing models.CategoryNode
	err := r.db.Where("id = ?", node.ID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	err = r.db.Save(node).Error
	if err == nil {
		nodeID := node.ID.String()
		r.invalidateNodeCaches(context.Background(), &nodeID)
	}
	return err
}

// SoftDeleteByIDs soft-deletes the given nodes and returns how many rows
// were affected
func (r *CategoryRepository) SoftDeleteByIDs(ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ?", ids).Delete(&models.CategoryNode{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		r.invalidateNodeCaches(context.Background(), nil)
	}
	return result.RowsAffected, nil
}
