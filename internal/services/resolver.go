package services

import (
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrParentCategoryRequired = errors.New("parent_category is required")
	ErrPathGap                = errors.New("category levels must be contiguous")
)

// PathDescriptor names a position in the tree as uploaded: a required
// top-level segment plus up to four nested segments, each either a node id
// or a display name. Brand rides along because imports resolve it with the
// same session discipline.
type PathDescriptor struct {
	ParentCategory string
	Levels         [4]string
	Brand          string
}

// ResolvedPath is a PathDescriptor bound to concrete nodes
type ResolvedPath struct {
	ParentCategory *models.CategoryNode
	Levels         [4]*models.CategoryNode
	Brand          *models.Brand
}

// Refs converts the bound nodes into product category references
func (p *ResolvedPath) Refs() models.CategoryRefs {
	refs := models.CategoryRefs{ParentCategoryID: p.ParentCategory.ID}
	if p.Levels[0] != nil {
		refs.CategoryID = &p.Levels[0].ID
	}
	if p.Levels[1] != nil {
		refs.SubCategory2ID = &p.Levels[1].ID
	}
	if p.Levels[2] != nil {
		refs.SubCategory3ID = &p.Levels[2].ID
	}
	if p.Levels[3] != nil {
		refs.SubCategory4ID = &p.Levels[3].ID
	}
	return refs
}

// BrandID returns the bound brand id, nil when the descriptor had no brand
func (p *ResolvedPath) BrandID() *uuid.UUID {
	if p.Brand == nil {
		return nil
	}
	return &p.Brand.ID
}

// HierarchyResolver binds path descriptors to tree nodes, creating missing
// nodes along the way.
type HierarchyResolver struct {
	categories repository.CategoryRepositoryInterface
	brands     repository.BrandRepositoryInterface
	logger     *logrus.Entry
}

func NewHierarchyResolver(categories repository.CategoryRepositoryInterface, brands repository.BrandRepositoryInterface, logger *logrus.Logger) *HierarchyResolver {
	return &HierarchyResolver{
		categories: categories,
		brands:     brands,
		logger:     logger.WithField("component", "hierarchy_resolver"),
	}
}

// Session scopes resolution to one batch. Every path resolved through the
// same session shares a cache keyed by tree position, so a thousand rows
// naming "Electronics > Phones" bind to one pair of nodes, not a thousand.
//
// A persisting session writes created nodes through the repository; a
// staging session keeps them in memory only, which is what preview needs.
type Session struct {
	resolver *HierarchyResolver
	persist  bool

	// position cache: "level|parentID|lower(name)" -> node
	byPosition map[string]*models.CategoryNode
	// staged nodes by id, so id segments can find in-session creations
	byID   map[uuid.UUID]*models.CategoryNode
	brands map[string]*models.Brand
}

// NewSession starts a resolution session. persist controls whether created
// nodes are written through or only staged in memory.
func (r *HierarchyResolver) NewSession(persist bool) *Session {
	return &Session{
		resolver:   r,
		persist:    persist,
		byPosition: make(map[string]*models.CategoryNode),
		byID:       make(map[uuid.UUID]*models.CategoryNode),
		brands:     make(map[string]*models.Brand),
	}
}

func positionKey(level int, parentID *uuid.UUID, name string) string {
	parent := ""
	if parentID != nil {
		parent = parentID.String()
	}
	return fmt.Sprintf("%d|%s|%s", level, parent, strings.ToLower(strings.TrimSpace(name)))
}

// Resolve binds a descriptor to nodes. Segments resolve top-down; the first
// empty level ends the path, and any populated level below it is a gap and
// rejects the whole descriptor.
func (s *Session) Resolve(desc PathDescriptor) (*ResolvedPath, error) {
	if strings.TrimSpace(desc.ParentCategory) == "" {
		return nil, ErrParentCategoryRequired
	}

	segments := make([]string, 0, 5)
	segments = append(segments, desc.ParentCategory)
	ended := false
	for i, level := range desc.Levels {
		if strings.TrimSpace(level) == "" {
			ended = true
			continue
		}
		if ended {
			return nil, fmt.Errorf("%w: category_level_%d is set but category_level_%d is empty", ErrPathGap, i+1, i)
		}
		segments = append(segments, level)
	}

	path := &ResolvedPath{}
	var parent *models.CategoryNode
	for level, segment := range segments {
		node, err := s.resolveSegment(level, parent, path.ParentCategory, segment)
		if err != nil {
			return nil, err
		}
		if level == 0 {
			path.ParentCategory = node
		} else {
			path.Levels[level-1] = node
		}
		parent = node
	}

	if brand := strings.TrimSpace(desc.Brand); brand != "" {
		resolved, err := s.resolveBrand(brand)
		if err != nil {
			return nil, err
		}
		path.Brand = resolved
	}

	return path, nil
}

// resolveSegment binds one path segment at the given level. A UUID-shaped
// segment first tries an id lookup; when no node carries that id at this
// tree position, the segment is treated as a name like any other, matched
// case-insensitively within the parent's scope and created there when
// absent.
func (s *Session) resolveSegment(level int, parent, root *models.CategoryNode, segment string) (*models.CategoryNode, error) {
	segment = strings.TrimSpace(segment)

	var parentID *uuid.UUID
	if parent != nil {
		parentID = &parent.ID
	}

	if id, err := uuid.Parse(segment); err == nil {
		if node := s.lookupByID(id); node != nil && nodeInScope(node, level, parentID) {
			return node, nil
		}
	}

	key := positionKey(level, parentID, segment)
	if node, ok := s.byPosition[key]; ok {
		return node, nil
	}

	node, err := s.resolver.categories.FindInScope(level, parentID, segment)
	if err == nil {
		s.byPosition[key] = node
		s.byID[node.ID] = node
		return node, nil
	}
	if !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, err
	}

	created, err := s.createNode(level, parent, root, segment)
	if err != nil {
		return nil, err
	}
	s.byPosition[key] = created
	s.byID[created.ID] = created
	return created, nil
}

func (s *Session) lookupByID(id uuid.UUID) *models.CategoryNode {
	if node, ok := s.byID[id]; ok {
		return node
	}
	node, err := s.resolver.categories.GetByID(id)
	if err != nil {
		return nil
	}
	s.byID[node.ID] = node
	return node
}

// nodeInScope reports whether a node sits at the given level under the
// given parent. An id segment naming a real node elsewhere in the tree is
// out of scope and falls back to name matching.
func nodeInScope(node *models.CategoryNode, level int, parentID *uuid.UUID) bool {
	if node.Level != level {
		return false
	}
	if level == 0 {
		return true
	}
	ref := node.ParentRef()
	return ref != nil && parentID != nil && *ref == *parentID
}

func (s *Session) createNode(level int, parent, root *models.CategoryNode, name string) (*models.CategoryNode, error) {
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

	if !s.persist {
		return node, nil
	}

	persisted, created, err := s.resolver.categories.GetOrCreate(node)
	if err != nil {
		return nil, err
	}
	if created {
		s.resolver.logger.WithFields(logrus.Fields{
			"node_id": persisted.ID,
			"name":    persisted.Name,
			"level":   persisted.Level,
		}).Info("Auto-created category node during import")
	}
	return persisted, nil
}

func (s *Session) resolveBrand(name string) (*models.Brand, error) {
	key := strings.ToLower(name)
	if brand, ok := s.brands[key]; ok {
		return brand, nil
	}

	if !s.persist {
		// A staging session still reads the store, so previews of an
		// existing brand carry the id a commit would bind to.
		brand, err := s.resolver.brands.FindByName(name)
		if err != nil {
			if !errors.Is(err, repository.ErrBrandNotFound) {
				return nil, err
			}
			brand = &models.Brand{
				ID:       uuid.New(),
				Name:     name,
				Slug:     SlugFromName(name),
				IsActive: true,
			}
		}
		s.brands[key] = brand
		return brand, nil
	}

	brand, _, err := s.resolver.brands.GetOrCreateByName(name)
	if err != nil {
		return nil, err
	}
	s.brands[key] = brand
	return brand, nil
}

// SlugFromName builds a URL-friendly slug from a display name
func SlugFromName(name string) string {
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
