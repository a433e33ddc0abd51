package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acme/product-importer/internal/store/model"
)

type Product interface {
	List(ctx context.Context) (model.ProductList, error)
	Upsert(ctx context.Context, product model.Product) error
	BulkUpsert(ctx context.Context, batch []model.Product) error
	InitialMigration() error
}

type ProductStore struct {
	db *gorm.DB
}

// Make sure we conform to Product interface
var _ Product = (*ProductStore)(nil)

func NewProductStore(db *gorm.DB) Product {
	return &ProductStore{db: db}
}

func (p *ProductStore) InitialMigration() error {
	return p.db.AutoMigrate(&model.Product{})
}

func (p *ProductStore) List(ctx context.Context) (model.ProductList, error) {
	var products model.ProductList
	result := p.getDB(ctx).Model(&products).Order("id").Find(&products)
	if result.Error != nil {
		return nil, result.Error
	}
	return products, nil
}

// Upsert applies a single candidate with insert-or-update-by-sku
// semantics, committed on its own. Re-applying the same candidate is
// harmless.
func (p *ProductStore) Upsert(ctx context.Context, product model.Product) error {
	result := p.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "price", "active"}),
	}).Create(&product)
	return result.Error
}

// BulkUpsert applies a batch as one multi-row conflict-resolving
// statement. The batch is collapsed by sku first, last occurrence
// winning: postgres refuses to touch the same row twice within a single
// INSERT ... ON CONFLICT.
func (p *ProductStore) BulkUpsert(ctx context.Context, batch []model.Product) error {
	if len(batch) == 0 {
		return nil
	}

	collapsed := collapseBySku(batch)

	result := p.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "price", "active"}),
	}).Create(&collapsed)
	return result.Error
}

func collapseBySku(batch []model.Product) []model.Product {
	last := make(map[string]model.Product, len(batch))
	order := make([]string, 0, len(batch))
	for _, product := range batch {
		if _, seen := last[product.Sku]; !seen {
			order = append(order, product.Sku)
		}
		last[product.Sku] = product
	}

	collapsed := make([]model.Product, 0, len(order))
	for _, sku := range order {
		collapsed = append(collapsed, last[sku])
	}
	return collapsed
}

func (p *ProductStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return p.db
}
