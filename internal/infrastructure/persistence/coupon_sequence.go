package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// couponUpsertSQL advances the per-tenant counter in a single statement.
// The second argument is a floor (highest coupon already on a sale + 1) so a
// counter row lost or created late never hands out a number twice.
const couponUpsertSQL = `INSERT INTO coupon_sequences (tenant_id, current_val, updated_at) VALUES (?, ?, ?)
ON CONFLICT (tenant_id) DO UPDATE
  SET current_val = CASE WHEN coupon_sequences.current_val + 1 > excluded.current_val
                         THEN coupon_sequences.current_val + 1
                         ELSE excluded.current_val END,
      updated_at = excluded.updated_at
RETURNING current_val`

// GormCouponSequence implements trade.CouponSequence on the coupon_sequences table.
// Next takes the row lock of the tenant's counter, so concurrent confirmations
// serialize on it until their transactions end.
type GormCouponSequence struct {
	db    *gorm.DB
	sales *GormSaleRepository
}

// NewGormCouponSequence creates a new GormCouponSequence
func NewGormCouponSequence(db *gorm.DB) *GormCouponSequence {
	return &GormCouponSequence{db: db, sales: NewGormSaleRepository(db)}
}

// Next returns the next coupon number for the tenant
func (s *GormCouponSequence) Next(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if tenantID == uuid.Nil {
		return 0, tenant.ErrTenantIDRequired
	}
	floor, err := s.sales.MaxCouponNumber(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	var next int64
	if err := s.db.WithContext(ctx).
		Raw(couponUpsertSQL, tenantID, floor+1, time.Now()).
		Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}
