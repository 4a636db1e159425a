package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/autodrive/internal/datamodels/category"
)

// CategoryService 车型分类 CRUD
type CategoryService struct {
	repo category.Repository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo category.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) ListAll(ctx context.Context) ([]*category.Category, error) {
	return s.repo.ListAll(ctx)
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

// Create 创建分类，名称不允许重复
func (s *CategoryService) Create(ctx context.Context, name, description string) (*category.Category, error) {
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return nil, ErrDuplicateName
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c := &category.Category{Name: name, Description: description}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return c, nil
}

// Update 更新分类，改名时检查新名称是否与其他分类冲突
func (s *CategoryService) Update(ctx context.Context, id int64, name, description string) (*category.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if name != "" && name != c.Name {
		if _, err := s.repo.GetByName(ctx, name); err == nil {
			return nil, ErrDuplicateName
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		c.Name = name
	}
	if description != "" {
		c.Description = description
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}
