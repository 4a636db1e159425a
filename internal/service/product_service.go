package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/autodrive/internal/datamodels/category"
	"github.com/example/autodrive/internal/datamodels/product"
)

// ProductService 车辆商品查询与维护
type ProductService struct {
	repo         product.Repository
	categoryRepo category.Repository
}

// NewProductService 创建商品服务
func NewProductService(repo product.Repository, categoryRepo category.Repository) *ProductService {
	return &ProductService{repo: repo, categoryRepo: categoryRepo}
}

// ProductDetail 商品 + 分类名称
type ProductDetail struct {
	*product.Product
	CategoryName string `json:"category_name,omitempty"`
}

func (s *ProductService) withCategoryNames(ctx context.Context, list []*product.Product) []*ProductDetail {
	// 分类数量很小，整表读出后按 ID 映射
	names := make(map[int64]string)
	if cats, err := s.categoryRepo.ListAll(ctx); err == nil {
		for _, c := range cats {
			names[c.ID] = c.Name
		}
	}
	out := make([]*ProductDetail, 0, len(list))
	for _, p := range list {
		out = append(out, &ProductDetail{Product: p, CategoryName: names[p.CategoryID]})
	}
	return out
}

// ListAll 全部商品（新→旧），附带分类名称
func (s *ProductService) ListAll(ctx context.Context) ([]*ProductDetail, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.withCategoryNames(ctx, list), nil
}

// ListByCategory 按分类查商品
func (s *ProductService) ListByCategory(ctx context.Context, categoryID int64) ([]*ProductDetail, error) {
	list, err := s.repo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return s.withCategoryNames(ctx, list), nil
}

// GetByID 查单个商品，附带分类名称
func (s *ProductService) GetByID(ctx context.Context, id int64) (*ProductDetail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	detail := &ProductDetail{Product: p}
	if c, err := s.categoryRepo.GetByID(ctx, p.CategoryID); err == nil {
		detail.CategoryName = c.Name
	}
	return detail, nil
}

// Create 创建商品，分类必须存在
func (s *ProductService) Create(ctx context.Context, p *product.Product) error {
	if _, err := s.categoryRepo.GetByID(ctx, p.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return s.repo.Create(ctx, p)
}

// Update 更新商品
func (s *ProductService) Update(ctx context.Context, p *product.Product) error {
	if _, err := s.repo.GetByID(ctx, p.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return s.repo.Update(ctx, p)
}

// Delete 删除商品
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}
