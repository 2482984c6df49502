package repository

import (
	"catalog-service/internal/models"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrBrandNotFound = errors.New("brand not found")

// BrandRepositoryInterface resolves brands referenced by name during import.
type BrandRepositoryInterface interface {
	GetByID(id uuid.UUID) (*models.Brand, error)
	FindByName(name string) (*models.Brand, error)
	GetOrCreateByName(name string) (*models.Brand, bool, error)
}

type BrandRepository struct {
	db *gorm.DB
}

var _ BrandRepositoryInterface = (*BrandRepository)(nil)

func NewBrandRepository(db *gorm.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// GetByID retrieves a brand by ID
func (r *BrandRepository) GetByID(id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.Where("id = ?", id).First(&brand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return &brand, nil
}

// FindByName retrieves a brand by case-insensitive name without creating it
func (r *BrandRepository) FindByName(name string) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).First(&brand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return &brand, nil
}

// GetOrCreateByName finds a brand by case-insensitive name or creates it
func (r *BrandRepository) GetOrCreateByName(name string) (*models.Brand, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, errors.New("brand name is required")
	}

	var result models.Brand
	var created bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("LOWER(name) = LOWER(?)", name).First(&result).Error
		if err == nil {
			created = false
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to lookup brand: %w", err)
		}

		brand := models.Brand{
			ID:       uuid.New(),
			Name:     name,
			Slug:     slugify(name),
			IsActive: true,
		}
		if err := tx.Create(&brand).Error; err != nil {
			if strings.Contains(err.Error(), "duplicate") {
				if findErr := tx.Where("LOWER(name) = LOWER(?)", name).First(&result).Error; findErr == nil {
					created = false
					return nil
				}
			}
			return fmt.Errorf("failed to create brand '%s': %w", name, err)
		}

		result = brand
		created = true
		return nil
	})

	if err != nil {
		return nil, false, err
	}
	return &result, created, nil
}

// slugify builds a URL-friendly slug from a display name
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
