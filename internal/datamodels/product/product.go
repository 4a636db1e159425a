package product

import (
	"context"
	"time"
)

// Product 车辆商品模型
type Product struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:128;not null" json:"name"`
	CategoryID     int64     `gorm:"index;not null" json:"category_id"`
	Description    string    `gorm:"size:1024" json:"description"`
	Price          int64     `gorm:"not null" json:"price"` // 分
	MainImage      string    `gorm:"size:255" json:"main_image"`
	ListImages     []string  `gorm:"serializer:json" json:"list_images"`
	Specifications string    `gorm:"size:2048" json:"specifications"`
	Stock          int64     `gorm:"not null" json:"stock"`
	Status         int       `gorm:"index" json:"status"` // 0:下线 1:上架
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
