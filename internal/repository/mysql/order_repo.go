package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/autodrive/internal/datamodels/cart"
	"github.com/example/autodrive/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建试驾预约仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

// Finalize 锁定购物车行后快照总额、创建预约单、把购物车置为 completed。
// 三步在同一事务内，保证预约单上的金额就是下单时刻的购物车总额
func (r *orderRepo) Finalize(ctx context.Context, o *order.TestDriveOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c cart.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&c, o.CartID).Error; err != nil {
			return err
		}
		o.TotalAmount = c.TotalAmount
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		return tx.Model(&cart.Cart{}).
			Where("id = ?", c.ID).
			Updates(map[string]interface{}{
				"status":         cart.StatusCompleted,
				"active_user_id": nil,
			}).Error
	})
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.TestDriveOrder, error) {
	var o order.TestDriveOrder
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListAll(ctx context.Context) ([]*order.TestDriveOrder, error) {
	var list []*order.TestDriveOrder
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]*order.TestDriveOrder, error) {
	var list []*order.TestDriveOrder
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) Update(ctx context.Context, o *order.TestDriveOrder) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *orderRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&order.TestDriveOrder{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepo) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&order.TestDriveOrder{}).
		Where("id = ?", id).
		UpdateColumn("notified_at", at).Error
}

func (r *orderRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&order.TestDriveOrder{}).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *orderRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&order.TestDriveOrder{}).
		Where("status = ?", status).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *orderRepo) SumTotalAmount(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&order.TestDriveOrder{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
