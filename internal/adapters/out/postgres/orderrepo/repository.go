package orderrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// ErrNothingToUpdate is returned by ConditionalUpdate for an aggregate
// without pending changes.
var ErrNothingToUpdate = errors.New("order has no changes to write")

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

var _ ports.OrderRepository = (*GormOrderRepository)(nil)

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add inserts a new order.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	aggregate.ClearChanges()
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// List returns the orders matching filter, oldest first.
func (r *GormOrderRepository) List(ctx context.Context, filter ports.OrderFilter) ([]*order.Order, error) {
	q := r.db.WithContext(ctx).Model(&OrderDTO{})

	if len(filter.Statuses) > 0 {
		names := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			names = append(names, s.String())
		}
		q = q.Where("status IN ?", names)
	}
	if filter.PartnerID != nil {
		q = q.Where("partner_id = ?", filter.PartnerID.Bytes())
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", filter.CustomerID.Bytes())
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var dtos []OrderDTO
	if err := q.Order("created_at").Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

// ConditionalUpdate issues a single UPDATE of the changed columns whose
// WHERE clause carries the expected state, so the check and the write are
// one atomic statement. The change set is cleared once a row was written.
func (r *GormOrderRepository) ConditionalUpdate(
	ctx context.Context,
	aggregate *order.Order,
	expected ports.ExpectedState,
) (int64, error) {
	if err := aggregate.Validate(); err != nil {
		return 0, err
	}

	columns := changedColumns(aggregate.Changes())
	if len(columns) == 0 {
		return 0, ErrNothingToUpdate
	}

	q := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", aggregate.ID().Bytes())
	if len(expected.Statuses) > 0 {
		names := make([]string, 0, len(expected.Statuses))
		for _, s := range expected.Statuses {
			names = append(names, s.String())
		}
		q = q.Where("status IN ?", names)
	}
	if expected.PartnerID != nil {
		q = q.Where("partner_id = ?", expected.PartnerID.Bytes())
	}
	if expected.Unclaimed {
		q = q.Where("partner_id IS NULL")
	}
	if expected.Unrated {
		q = q.Where("rating IS NULL")
	}

	result := q.Updates(columns)
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		aggregate.ClearChanges()
	}
	return result.RowsAffected, nil
}
