package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/autodrive/internal/datamodels/cart"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

func (r *cartRepo) GetByID(ctx context.Context, id int64) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepo) GetActiveByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	return r.GetByUserAndStatus(ctx, userID, cart.StatusActive)
}

func (r *cartRepo) GetByUserAndStatus(ctx context.Context, userID int64, status string) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("id DESC").
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepo) GetLatestByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepo) Create(ctx context.Context, c *cart.Cart) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// UpdateStatus 更新状态；回到 active 时恢复激活标记，离开 active 时清除，
// 使 (active_user_id) 唯一索引始终只约束激活中的购物车
func (r *cartRepo) UpdateStatus(ctx context.Context, cartID int64, status string) error {
	updates := map[string]interface{}{"status": status}
	if status == cart.StatusActive {
		updates["active_user_id"] = gorm.Expr("user_id")
	} else {
		updates["active_user_id"] = nil
	}
	return r.db.WithContext(ctx).
		Model(&cart.Cart{}).
		Where("id = ?", cartID).
		Updates(updates).Error
}

// Delete 级联删除行项目后删除购物车，单事务
func (r *cartRepo) Delete(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&cart.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&cart.Cart{}, cartID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *cartRepo) GetItem(ctx context.Context, itemID int64) (*cart.CartItem, error) {
	var item cart.CartItem
	if err := r.db.WithContext(ctx).First(&item, itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) FindItemByProduct(ctx context.Context, cartID, productID int64) (*cart.CartItem, error) {
	var item cart.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) ListItems(ctx context.Context, cartID int64) ([]*cart.CartItem, error) {
	var list []*cart.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListItemDetails 行项目联表商品，投影名称/现价/主图（不回写快照字段）
func (r *cartRepo) ListItemDetails(ctx context.Context, cartID int64) ([]*cart.ItemDetail, error) {
	var list []*cart.ItemDetail
	if err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.id, cart_items.cart_id, cart_items.product_id, cart_items.quantity, cart_items.unit_price, cart_items.total_price, cart_items.image, products.name AS product_name, products.price AS product_price, products.main_image AS product_image").
		Joins("LEFT JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Order("cart_items.id ASC").
		Scan(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *cartRepo) CountItems(ctx context.Context, cartID int64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&cart.CartItem{}).
		Where("cart_id = ?", cartID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// ApplyItemChange 保存行项目并增量调整购物车总额。两次写在同一事务内，
// 购物车行加锁，避免并发写相互覆盖
func (r *cartRepo) ApplyItemChange(ctx context.Context, item *cart.CartItem, totalDelta int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c cart.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&c, item.CartID).Error; err != nil {
			return err
		}
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		return tx.Model(&cart.Cart{}).
			Where("id = ?", item.CartID).
			UpdateColumn("total_amount", gorm.Expr("total_amount + ?", totalDelta)).Error
	})
}

// RemoveItem 删除行项目并扣减其总价，单事务
func (r *cartRepo) RemoveItem(ctx context.Context, item *cart.CartItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c cart.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&c, item.CartID).Error; err != nil {
			return err
		}
		res := tx.Delete(&cart.CartItem{}, item.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&cart.Cart{}).
			Where("id = ?", item.CartID).
			UpdateColumn("total_amount", gorm.Expr("total_amount - ?", item.TotalPrice)).Error
	})
}

// RecomputeTotal 权威校正：以行项目总价之和覆盖购物车总额
func (r *cartRepo) RecomputeTotal(ctx context.Context, cartID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&cart.CartItem{}).
			Where("cart_id = ?", cartID).
			Select("COALESCE(SUM(total_price), 0)").
			Scan(&total).Error; err != nil {
			return err
		}
		return tx.Model(&cart.Cart{}).
			Where("id = ?", cartID).
			UpdateColumn("total_amount", total).Error
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
