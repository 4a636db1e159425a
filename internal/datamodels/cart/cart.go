package cart

import (
	"context"
	"time"
)

// 购物车状态
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ValidStatus 判断状态取值是否合法
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Cart 购物车聚合。TotalAmount 始终等于其行项目 TotalPrice 之和，
// 由每次行项目写入时在同一事务内增量维护，RecomputeTotal 作为兜底校正。
// ActiveUserID 在 active 状态下等于 UserID，其余状态为 NULL，
// 配合唯一索引保证每个用户至多一个激活购物车。
type Cart struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"index;not null" json:"user_id"`
	Status       string    `gorm:"size:16;index;not null;default:active" json:"status"`
	TotalAmount  int64     `gorm:"not null;default:0" json:"total_amount"` // 分
	ActiveUserID *int64    `gorm:"uniqueIndex" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CartItem 购物车行项目。UnitPrice 为加入时的商品价格快照，
// TotalPrice 恒等于 Quantity*UnitPrice，每次保存前必须重算。
type CartItem struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	CartID     int64     `gorm:"uniqueIndex:uk_cart_product;not null" json:"cart_id"`
	ProductID  int64     `gorm:"uniqueIndex:uk_cart_product;not null" json:"product_id"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	UnitPrice  int64     `gorm:"not null" json:"unit_price"` // 分，加入时快照
	TotalPrice int64     `gorm:"not null" json:"total_price"`
	Image      string    `gorm:"size:255" json:"image"` // 商品主图快照
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Recalculate 重算行项目总价
func (i *CartItem) Recalculate() {
	i.TotalPrice = i.Quantity * i.UnitPrice
}

// ItemDetail 行项目 + 商品实时投影（名称/现价/主图来自商品表联表查询，
// 不覆盖已存的价格与图片快照）
type ItemDetail struct {
	ID           int64  `json:"id"`
	CartID       int64  `json:"cart_id"`
	ProductID    int64  `json:"product_id"`
	Quantity     int64  `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"`
	TotalPrice   int64  `json:"total_price"`
	Image        string `json:"image"`
	ProductName  string `json:"product_name"`
	ProductPrice int64  `json:"product_price"`
	ProductImage string `json:"product_image"`
}

// Repository 购物车仓储接口。涉及行项目与购物车总额的复合写操作
// （ApplyItemChange/RemoveItem/RecomputeTotal/Delete/Finalize 相关）
// 由实现方保证在同一事务内完成。
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Cart, error)
	GetActiveByUser(ctx context.Context, userID int64) (*Cart, error)
	GetByUserAndStatus(ctx context.Context, userID int64, status string) (*Cart, error)
	GetLatestByUser(ctx context.Context, userID int64) (*Cart, error)
	Create(ctx context.Context, c *Cart) error
	UpdateStatus(ctx context.Context, cartID int64, status string) error
	Delete(ctx context.Context, cartID int64) error

	GetItem(ctx context.Context, itemID int64) (*CartItem, error)
	FindItemByProduct(ctx context.Context, cartID, productID int64) (*CartItem, error)
	ListItems(ctx context.Context, cartID int64) ([]*CartItem, error)
	ListItemDetails(ctx context.Context, cartID int64) ([]*ItemDetail, error)
	CountItems(ctx context.Context, cartID int64) (int64, error)

	// ApplyItemChange 保存行项目并将购物车总额按 totalDelta 增量调整，单事务。
	ApplyItemChange(ctx context.Context, item *CartItem, totalDelta int64) error
	// RemoveItem 删除行项目并扣减其总价，单事务。
	RemoveItem(ctx context.Context, item *CartItem) error
	// RecomputeTotal 以行项目总价之和覆盖购物车总额，返回新总额。幂等。
	RecomputeTotal(ctx context.Context, cartID int64) (int64, error)
}
