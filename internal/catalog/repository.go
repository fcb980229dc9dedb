package catalog

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stockapp/stockpos/internal/domain"
	"github.com/stockapp/stockpos/pkg/common"
	"gorm.io/gorm"
)

// TopicCategoryChanged is published after any category mutation so caches
// can invalidate.
const TopicCategoryChanged = "category.changed"

// ErrProductHasSales blocks hard deletion of a product that is referenced by
// sale history.
var ErrProductHasSales = errors.New("product has sale history and cannot be deleted")

// ErrFallbackCategoryProtected blocks deletion of the fallback category.
var ErrFallbackCategoryProtected = errors.New("fallback category cannot be deleted")

// ProductRepository handles database operations for catalog products
type ProductRepository interface {
	// FindByBarcode retrieves a product by its unique barcode
	FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error)

	// FindByBarcodes retrieves products for a set of barcodes in one query
	FindByBarcodes(ctx context.Context, barcodes []string) ([]domain.Product, error)

	// Search looks up by barcode prefix first, then by name substring
	Search(ctx context.Context, q string, limit int) ([]domain.Product, error)

	// List retrieves products with pagination, newest first
	List(ctx context.Context, page, pageSize int) ([]domain.Product, int64, error)

	// Create inserts a new product
	Create(ctx context.Context, p *domain.Product) error

	// UpdateBasics updates the editable fields, leaving stock alone
	UpdateBasics(ctx context.Context, id int64, name string, price decimal.Decimal, categoryID int64) error

	// Delete removes a product; refused when sale history references it
	Delete(ctx context.Context, id int64) error

	// HasSales reports whether any sale item references the product
	HasSales(ctx context.Context, id int64) (bool, error)

	// Critical retrieves products whose stock is under the threshold
	Critical(ctx context.Context, threshold int) ([]domain.Product, error)

	// CountCritical counts products whose stock is under the threshold
	CountCritical(ctx context.Context, threshold int) (int64, error)

	// CountAll counts all products
	CountAll(ctx context.Context) (int64, error)
}

// CategoryRepository handles database operations for categories
type CategoryRepository interface {
	// List retrieves all categories ordered by name
	List(ctx context.Context) ([]domain.Category, error)

	// Create inserts a new category
	Create(ctx context.Context, name string) (*domain.Category, error)

	// FindIDByName resolves a category id by case-insensitive name
	FindIDByName(ctx context.Context, name string) (int64, error)

	// DeleteWithReassignment moves the category's products to the fallback
	// category and deletes the category row, in one transaction
	DeleteWithReassignment(ctx context.Context, categoryID, fallbackID int64) error
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) FindByBarcodes(ctx context.Context, barcodes []string) ([]domain.Product, error) {
	var rows []domain.Product
	err := r.db.WithContext(ctx).Where("barcode IN ?", barcodes).Find(&rows).Error
	return rows, err
}

func (r *GormProductRepository) Search(ctx context.Context, q string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 100
	}

	// long numeric-looking input is most likely a scanned barcode; the
	// unique barcode index makes the prefix search fast
	if len(q) >= 6 {
		var byBarcode []domain.Product
		err := r.db.WithContext(ctx).
			Where("barcode LIKE ?", q+"%").
			Order("id DESC").
			Limit(limit).
			Find(&byBarcode).Error
		if err != nil {
			return nil, err
		}
		if len(byBarcode) > 0 {
			return byBarcode, nil
		}
	}

	var byName []domain.Product
	err := r.db.WithContext(ctx).
		Where("name ILIKE ?", "%"+q+"%").
		Order("id DESC").
		Limit(limit).
		Find(&byName).Error
	return byName, err
}

func (r *GormProductRepository) List(ctx context.Context, page, pageSize int) ([]domain.Product, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []domain.Product
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	return rows, total, err
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == 0 {
		p.ID = common.UUIDint64()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *GormProductRepository) UpdateBasics(ctx context.Context, id int64, name string, price decimal.Decimal, categoryID int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":        name,
			"price":       price,
			"category_id": categoryID,
		}).Error
}

func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	has, err := r.HasSales(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return ErrProductHasSales
	}
	return r.db.WithContext(ctx).Delete(&domain.Product{}, id).Error
}

func (r *GormProductRepository) HasSales(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.SaleItem{}).
		Where("product_id = ?", id).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *GormProductRepository) Critical(ctx context.Context, threshold int) ([]domain.Product, error) {
	var rows []domain.Product
	err := r.db.WithContext(ctx).
		Where("stock < ?", threshold).
		Order("stock ASC").
		Find(&rows).Error
	return rows, err
}

func (r *GormProductRepository) CountCritical(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("stock < ?", threshold).
		Count(&count).Error
	return count, err
}

func (r *GormProductRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&count).Error
	return count, err
}

// GormCategoryRepository is the GORM implementation of CategoryRepository.
// Mutations publish TopicCategoryChanged on the bus.
type GormCategoryRepository struct {
	db  *gorm.DB
	bus EventBus.Bus
}

func NewGormCategoryRepository(db *gorm.DB, bus EventBus.Bus) *GormCategoryRepository {
	return &GormCategoryRepository{db: db, bus: bus}
}

func (r *GormCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	var rows []domain.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *GormCategoryRepository) Create(ctx context.Context, name string) (*domain.Category, error) {
	cat := &domain.Category{
		ID:   common.UUIDint64(),
		Name: name,
	}
	if err := r.db.WithContext(ctx).Create(cat).Error; err != nil {
		return nil, err
	}
	r.publishChanged()
	return cat, nil
}

func (r *GormCategoryRepository) FindIDByName(ctx context.Context, name string) (int64, error) {
	var cat domain.Category
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&cat).Error
	if err != nil {
		return 0, err
	}
	return cat.ID, nil
}

func (r *GormCategoryRepository) DeleteWithReassignment(ctx context.Context, categoryID, fallbackID int64) error {
	if categoryID == fallbackID {
		return ErrFallbackCategoryProtected
	}

	var target domain.Category
	if err := r.db.WithContext(ctx).First(&target, categoryID).Error; err != nil {
		return err
	}
	if target.Name == domain.FallbackCategoryName {
		return ErrFallbackCategoryProtected
	}
	var fallback domain.Category
	if err := r.db.WithContext(ctx).First(&fallback, fallbackID).Error; err != nil {
		return err
	}

	// reassignment must fully complete before the category row goes away
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Product{}).
			Where("category_id = ?", categoryID).
			UpdateColumn("category_id", fallbackID).Error; err != nil {
			return common.WrapPersistence("category.reassign", err)
		}
		if err := tx.Delete(&domain.Category{}, categoryID).Error; err != nil {
			return common.WrapPersistence("category.delete", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.publishChanged()
	return nil
}

func (r *GormCategoryRepository) publishChanged() {
	if r.bus != nil {
		r.bus.Publish(TopicCategoryChanged)
	}
}
