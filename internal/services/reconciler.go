package services

import (
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BulkReconciler turns parsed upload rows into catalog products. A batch
// runs in exactly one mode, chosen from the input shape before any row is
// processed: files carrying an id column are identifier-aware, everything
// else is create-only.
type BulkReconciler struct {
	resolver  *HierarchyResolver
	validator *RowValidator
	products  repository.ProductRepositoryInterface
	logger    *logrus.Entry
}

func NewBulkReconciler(resolver *HierarchyResolver, validator *RowValidator, products repository.ProductRepositoryInterface, logger *logrus.Logger) *BulkReconciler {
	return &BulkReconciler{
		resolver:  resolver,
		validator: validator,
		products:  products,
		logger:    logger.WithField("component", "bulk_reconciler"),
	}
}

// DetectMode picks the batch mode from the input shape
func (r *BulkReconciler) DetectMode(rows []map[string]string) models.ImportMode {
	if len(rows) > 0 {
		if _, ok := rows[0]["id"]; ok {
			return models.ModeIdentifierAware
		}
	}
	return models.ModeCreateOnly
}

// rowNumber reads the original file line carried on the parsed row
func rowNumber(row map[string]string) int {
	n, err := strconv.Atoi(row["_row"])
	if err != nil {
		return 0
	}
	return n
}

// Preview resolves and validates a batch without writing anything. Node
// creations are staged in the resolver session, so drafts show the tree
// positions a commit would produce.
func (r *BulkReconciler) Preview(rows []map[string]string) (*models.PreviewResult, error) {
	mode := r.DetectMode(rows)
	session := r.resolver.NewSession(false)

	result := &models.PreviewResult{
		Success:         true,
		Mode:            mode,
		TotalRows:       len(rows),
		PreviewProducts: []models.ProductDraft{},
		InvalidRows:     []models.InvalidRow{},
	}

	seenIDs := make(map[string]bool)
	for _, row := range rows {
		line := rowNumber(row)

		if validation := r.validator.Validate(row); !validation.Valid {
			result.InvalidRows = append(result.InvalidRows, models.InvalidRow{Row: line, Reason: validation.Reason()})
			continue
		}

		var willUpdate bool
		if mode == models.ModeIdentifierAware {
			identifier := strings.TrimSpace(row["id"])
			if identifier != "" {
				if seenIDs[identifier] {
					result.InvalidRows = append(result.InvalidRows, models.InvalidRow{Row: line, Reason: "duplicate id in batch"})
					continue
				}
				seenIDs[identifier] = true
				willUpdate = r.identifierExists(identifier)
			}
		}

		path, err := session.Resolve(pathFromRow(row))
		if err != nil {
			result.InvalidRows = append(result.InvalidRows, models.InvalidRow{Row: line, Reason: err.Error()})
			continue
		}

		product := buildProduct(row, path)
		result.PreviewProducts = append(result.PreviewProducts, models.ProductDraft{
			Row:        line,
			Product:    product,
			WillUpdate: willUpdate,
		})
	}

	return result, nil
}

// Commit processes a batch for real. Each row is an independent unit of
// work: a failed row is recorded and the batch moves on, so created +
// updated + failed always equals total.
func (r *BulkReconciler) Commit(rows []map[string]string) (*models.CommitResult, error) {
	mode := r.DetectMode(rows)
	session := r.resolver.NewSession(true)

	result := &models.CommitResult{
		Success: true,
		Mode:    mode,
		Total:   len(rows),
		Results: []models.ResultRecord{},
	}

	fail := func(line int, code, reason string) {
		result.Failed++
		result.Results = append(result.Results, models.ResultRecord{
			Row:    line,
			Status: models.RowStatusFailed,
			Code:   code,
			Reason: reason,
		})
	}

	seenIDs := make(map[string]bool)
	for _, row := range rows {
		line := rowNumber(row)

		if validation := r.validator.Validate(row); !validation.Valid {
			fail(line, models.CodeValidationError, validation.Reason())
			continue
		}

		// Identifier handling is decided before resolution so a conflicting
		// row cannot create tree nodes as a side effect.
		var existing *models.Product
		if mode == models.ModeIdentifierAware {
			identifier := strings.TrimSpace(row["id"])
			if identifier != "" {
				if seenIDs[identifier] {
					fail(line, models.CodeDuplicateIdentifier, "id already used by an earlier row in this batch")
					continue
				}
				seenIDs[identifier] = true

				// Identifiers are opaque: anything that matches no stored
				// product, including a string that is not a UUID at all,
				// falls through to the create branch.
				if id, err := uuid.Parse(identifier); err == nil {
					found, err := r.products.GetByID(id)
					if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
						fail(line, models.CodeUpdateFailed, err.Error())
						continue
					}
					existing = found
				}
			}
		}

		path, err := session.Resolve(pathFromRow(row))
		if err != nil {
			fail(line, models.CodeResolutionError, err.Error())
			continue
		}

		product := buildProduct(row, path)

		if existing != nil {
			// Full overwrite of the stored row, keeping identity and origin
			product.ID = existing.ID
			product.CreatedAt = existing.CreatedAt
			if err := r.products.Update(product); err != nil {
				fail(line, models.CodeUpdateFailed, err.Error())
				continue
			}
			id := product.ID.String()
			result.Updated++
			result.Results = append(result.Results, models.ResultRecord{
				Row:       line,
				Status:    models.RowStatusUpdated,
				ProductID: &id,
			})
			continue
		}

		// Unmatched identifiers fall through here: the row creates a new
		// product under a fresh id, never the unmatched one.
		product.ID = uuid.New()
		if err := r.products.Create(product); err != nil {
			fail(line, models.CodeCreateFailed, err.Error())
			continue
		}
		id := product.ID.String()
		result.Created++
		result.Results = append(result.Results, models.ResultRecord{
			Row:       line,
			Status:    models.RowStatusCreated,
			ProductID: &id,
		})
	}

	r.logger.WithFields(logrus.Fields{
		"mode":    result.Mode,
		"total":   result.Total,
		"created": result.Created,
		"updated": result.Updated,
		"failed":  result.Failed,
	}).Info("Catalog import committed")

	return result, nil
}

func (r *BulkReconciler) identifierExists(identifier string) bool {
	id, err := uuid.Parse(identifier)
	if err != nil {
		return false
	}
	_, err = r.products.GetByID(id)
	return err == nil
}

// pathFromRow extracts the tree path columns from a normalized row
func pathFromRow(row map[string]string) PathDescriptor {
	return PathDescriptor{
		ParentCategory: row["parent_category"],
		Levels: [4]string{
			row["category_level_1"],
			row["category_level_2"],
			row["category_level_3"],
			row["category_level_4"],
		},
		Brand: row["brand"],
	}
}

// buildProduct assembles a product from a validated row and its resolved
// path. Numeric columns have already been checked by the validator.
func buildProduct(row map[string]string, path *ResolvedPath) *models.Product {
	product := &models.Product{
		Name:         strings.TrimSpace(row["name"]),
		Price:        parseFloat(row["price"]),
		StockStatus:  models.StockStatusAvailable,
		ShowStockOut: ParseBool(row["showstockout"]),
		CanPurchase:  ParseBool(row["canpurchase"]),
		Refundable:   ParseBool(row["refundable"]),
		IsActive:     true,
	}
	product.ApplyRefs(path.Refs())
	product.BrandID = path.BrandID()

	if slug := strings.TrimSpace(row["slug"]); slug != "" {
		product.Slug = &slug
	} else {
		slug := SlugFromName(product.Name)
		product.Slug = &slug
	}
	if sku := strings.TrimSpace(row["sku"]); sku != "" {
		product.SKU = &sku
	}
	if barcode := strings.TrimSpace(row["barcode"]); barcode != "" {
		product.Barcode = &barcode
	}

	product.BuyingPrice = parseFloatPtr(row["buyingprice"])
	product.OfferPrice = parseFloatPtr(row["offerprice"])
	product.Discount = parseFloatPtr(row["discount"])
	product.Tax = parseFloatPtr(row["tax"])
	product.CountInStock = parseIntPtr(row["countinstock"])
	product.MaxPurchaseQty = parseIntPtr(row["maxpurchaseqty"])
	product.LowStockWarning = parseIntPtr(row["lowstockwarning"])

	// Unknown stock statuses read as the default, not as errors
	if status := strings.TrimSpace(row["stockstatus"]); models.ValidStockStatus(status) {
		product.StockStatus = models.StockStatus(status)
	}

	if unit := strings.TrimSpace(row["unit"]); unit != "" {
		product.Unit = &unit
	}
	if weight := strings.TrimSpace(row["weight"]); weight != "" {
		product.Weight = &weight
	}
	if tags := strings.TrimSpace(row["tags"]); tags != "" {
		arr := make(models.JSONArray, 0)
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				arr = append(arr, tag)
			}
		}
		product.Tags = &arr
	}
	if v := strings.TrimSpace(row["description"]); v != "" {
		product.Description = &v
	}
	if v := strings.TrimSpace(row["shortdescription"]); v != "" {
		product.ShortDescription = &v
	}
	if v := strings.TrimSpace(row["specifications"]); v != "" {
		product.Specifications = &v
	}
	if v := strings.TrimSpace(row["details"]); v != "" {
		product.Details = &v
	}

	return product
}

func parseFloat(value string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return f
}

func parseFloatPtr(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseIntPtr(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}
