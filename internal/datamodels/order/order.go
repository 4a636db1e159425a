package order

import (
	"context"
	"time"
)

// 试驾预约状态
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ValidStatus 判断状态取值是否合法
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TestDriveOrder 试驾预约单。TotalAmount 在下单时刻从购物车快照，
// 之后购物车再变动也不影响该值。
type TestDriveOrder struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	UserID        int64      `gorm:"index;not null" json:"user_id"`
	CartID        int64      `gorm:"index;not null" json:"cart_id"`
	OrderDate     time.Time  `json:"order_date"`
	TestDriveDate time.Time  `json:"test_drive_date"`
	Address       string     `gorm:"size:255" json:"address"`
	Notes         string     `gorm:"size:512" json:"notes"`
	TotalAmount   int64      `gorm:"not null" json:"total_amount"` // 分
	ImageURL      string     `gorm:"size:255" json:"image_url"`
	Status        string     `gorm:"size:16;index;not null;default:pending" json:"status"`
	NotifiedAt    *time.Time `json:"notified_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Statistics 预约统计
type Statistics struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	Confirmed   int64 `json:"confirmed"`
	Completed   int64 `json:"completed"`
	Cancelled   int64 `json:"cancelled"`
	TotalAmount int64 `json:"total_amount"`
}

// Repository 试驾预约仓储接口
type Repository interface {
	// Finalize 在同一事务内重读购物车总额写入 o.TotalAmount、创建预约单、
	// 并把购物车置为 completed（清除激活标记）。
	Finalize(ctx context.Context, o *TestDriveOrder) error
	GetByID(ctx context.Context, id int64) (*TestDriveOrder, error)
	ListAll(ctx context.Context) ([]*TestDriveOrder, error)
	ListByUser(ctx context.Context, userID int64) ([]*TestDriveOrder, error)
	Update(ctx context.Context, o *TestDriveOrder) error
	Delete(ctx context.Context, id int64) error
	MarkNotified(ctx context.Context, id int64, at time.Time) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	SumTotalAmount(ctx context.Context) (int64, error)
}
