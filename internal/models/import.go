package models

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportMode selects how a batch is reconciled. It is chosen once per batch
// from the input shape: files carrying an identifier column are
// identifier-aware, everything else is create-only.
type ImportMode string

const (
	ModeCreateOnly      ImportMode = "CREATE_ONLY"
	ModeIdentifierAware ImportMode = "IDENTIFIER_AWARE"
)

// Row-level error codes surfaced in results
const (
	CodeValidationError     = "VALIDATION_ERROR"
	CodeResolutionError     = "RESOLUTION_ERROR"
	CodeDuplicateIdentifier = "DUPLICATE_IDENTIFIER"
	CodeNotFound            = "NOT_FOUND"
	CodeCreateFailed        = "CREATE_FAILED"
	CodeUpdateFailed        = "UPDATE_FAILED"
)

// RowStatus is the per-row outcome of a commit
type RowStatus string

const (
	RowStatusCreated RowStatus = "created"
	RowStatusUpdated RowStatus = "updated"
	RowStatusFailed  RowStatus = "failed"
)

// ResultRecord is the commit outcome for one row, in input order
type ResultRecord struct {
	Row       int       `json:"row"`
	Status    RowStatus `json:"status"`
	ProductID *string   `json:"productId,omitempty"`
	Code      string    `json:"code,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// InvalidRow reports a row excluded before commit
type InvalidRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ProductDraft is the resolved form of one uploaded row: tree references
// bound, create-or-update decided. Built during preview, never persisted.
type ProductDraft struct {
	Row        int      `json:"row"`
	Product    *Product `json:"product"`
	WillUpdate bool     `json:"willUpdate"`
}

// PreviewResult is the dry-run outcome of a batch: resolved drafts plus the
// rows that would be excluded. Producing it performs no writes.
type PreviewResult struct {
	Success         bool           `json:"success"`
	Mode            ImportMode     `json:"mode"`
	TotalRows       int            `json:"totalRows"`
	PreviewProducts []ProductDraft `json:"previewProducts"`
	InvalidRows     []InvalidRow   `json:"invalidRows"`
}

// CommitResult aggregates a committed batch. Rows are independent units of
// work: created + updated + failed always equals total.
type CommitResult struct {
	Success bool           `json:"success"`
	Mode    ImportMode     `json:"mode"`
	Total   int            `json:"total"`
	Created int            `json:"created"`
	Updated int            `json:"updated"`
	Failed  int            `json:"failed"`
	Results []ResultRecord `json:"results"`
}

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, boolean, uuid
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity     string                 `json:"entity"`
	Version    string                 `json:"version"`
	Columns    []ImportTemplateColumn `json:"columns"`
	SampleData []map[string]string    `json:"sampleData,omitempty"`
}

// ProductImportColumns returns the column definitions for catalog import.
// The leading identifier column belongs to the identifier-aware variant:
// empty means create, populated means update-if-match.
func ProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "id", Description: "Product identifier (leave empty to create; fill to update an existing product)", Required: false, Type: "uuid", Example: ""},
		{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Blue Cotton T-Shirt"},
		{Name: "slug", Description: "URL-friendly slug (auto-generated if empty)", Required: false, Type: "string", Example: "blue-cotton-t-shirt"},
		{Name: "sku", Description: "Product SKU", Required: false, Type: "string", Example: "TSH-BLU-001"},
		{Name: "barcode", Description: "Product barcode", Required: false, Type: "string", Example: "8901234567890"},
		{Name: "parent_category", Description: "Top-level category name or id - auto-creates if not exists", Required: true, Type: "string", Example: "Electronics"},
		{Name: "category_level_1", Description: "Subcategory level 1 name or id", Required: false, Type: "string", Example: "Smartphones"},
		{Name: "category_level_2", Description: "Subcategory level 2 name or id (requires level 1)", Required: false, Type: "string", Example: "Android"},
		{Name: "category_level_3", Description: "Subcategory level 3 name or id (requires level 2)", Required: false, Type: "string", Example: ""},
		{Name: "category_level_4", Description: "Subcategory level 4 name or id (requires level 3)", Required: false, Type: "string", Example: ""},
		{Name: "brand", Description: "Brand name - auto-creates if not exists", Required: false, Type: "string", Example: "Acme"},
		{Name: "buyingPrice", Description: "Purchase cost", Required: false, Type: "number", Example: "650"},
		{Name: "price", Description: "Selling price", Required: true, Type: "number", Example: "999"},
		{Name: "offerPrice", Description: "Discounted price", Required: false, Type: "number", Example: "899"},
		{Name: "discount", Description: "Discount percentage", Required: false, Type: "number", Example: "10"},
		{Name: "tax", Description: "Tax percentage", Required: false, Type: "number", Example: "5"},
		{Name: "stockStatus", Description: "Available Product | Out of Stock | PreOrder", Required: false, Type: "string", Example: "Available Product"},
		{Name: "countInStock", Description: "Units in stock", Required: false, Type: "number", Example: "25"},
		{Name: "showStockOut", Description: "Show when out of stock (true/false)", Required: false, Type: "boolean", Example: "true"},
		{Name: "canPurchase", Description: "Purchasable (true/false)", Required: false, Type: "boolean", Example: "true"},
		{Name: "refundable", Description: "Refundable (true/false)", Required: false, Type: "boolean", Example: "false"},
		{Name: "maxPurchaseQty", Description: "Max units per order", Required: false, Type: "number", Example: "5"},
		{Name: "lowStockWarning", Description: "Low stock alert threshold", Required: false, Type: "number", Example: "3"},
		{Name: "unit", Description: "Sales unit", Required: false, Type: "string", Example: "pcs"},
		{Name: "weight", Description: "Product weight", Required: false, Type: "string", Example: "0.4kg"},
		{Name: "tags", Description: "Comma-separated tags", Required: false, Type: "string", Example: "phone,android"},
		{Name: "description", Description: "Product description", Required: false, Type: "string", Example: ""},
		{Name: "shortDescription", Description: "Short description", Required: false, Type: "string", Example: ""},
		{Name: "specifications", Description: "Specifications text", Required: false, Type: "string", Example: ""},
		{Name: "details", Description: "Details text", Required: false, Type: "string", Example: ""},
	}
}

// ProductImportTemplate returns the template definition for catalog import
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: ProductImportColumns(),
		SampleData: []map[string]string{
			{
				"id":              "",
				"name":            "Phone A",
				"parent_category": "Electronics",
				"category_level_1": "Smartphones",
				"brand":           "Acme",
				"price":           "1000",
				"stockStatus":     "Available Product",
				"countInStock":    "10",
				"canPurchase":     "true",
			},
		},
	}
}
