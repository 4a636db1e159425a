package service

import (
	"context"
	"errors"
	"testing"

	"github.com/example/autodrive/internal/datamodels/category"
	"github.com/example/autodrive/internal/datamodels/product"
)

func TestProductService(t *testing.T) {
	categories := newFakeCategoryRepo()
	products := newFakeProductRepo()
	svc := NewProductService(products, categories)
	ctx := context.Background()

	sedan := &category.Category{Name: "轿车"}
	if err := categories.Create(ctx, sedan); err != nil {
		t.Fatalf("create category: %v", err)
	}

	t.Run("create requires existing category", func(t *testing.T) {
		p := &product.Product{Name: "幽灵车型", CategoryID: 999, Price: 100, Stock: 1}
		if err := svc.Create(ctx, p); !errors.Is(err, ErrCategoryNotFound) {
			t.Fatalf("expected ErrCategoryNotFound, got %v", err)
		}
	})

	p := &product.Product{Name: "驰风 C5", CategoryID: sedan.ID, Price: 18990000, Stock: 5, Status: 1}
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create product: %v", err)
	}

	t.Run("detail carries category name", func(t *testing.T) {
		detail, err := svc.GetByID(ctx, p.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if detail.CategoryName != "轿车" {
			t.Fatalf("category name = %q", detail.CategoryName)
		}
	})

	t.Run("listing filters by category", func(t *testing.T) {
		suv := &category.Category{Name: "SUV"}
		if err := categories.Create(ctx, suv); err != nil {
			t.Fatalf("create category: %v", err)
		}
		if err := svc.Create(ctx, &product.Product{Name: "岭越 X7", CategoryID: suv.ID, Price: 25980000, Stock: 3}); err != nil {
			t.Fatalf("create product: %v", err)
		}

		all, err := svc.ListAll(ctx)
		if err != nil {
			t.Fatalf("list all: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 products, got %d", len(all))
		}
		bySUV, err := svc.ListByCategory(ctx, suv.ID)
		if err != nil {
			t.Fatalf("list by category: %v", err)
		}
		if len(bySUV) != 1 || bySUV[0].Name != "岭越 X7" {
			t.Fatalf("unexpected listing: %+v", bySUV)
		}
	})

	t.Run("update unknown product", func(t *testing.T) {
		if err := svc.Update(ctx, &product.Product{ID: 999, Name: "x"}); !errors.Is(err, ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := svc.Delete(ctx, p.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := svc.GetByID(ctx, p.ID); !errors.Is(err, ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
		if err := svc.Delete(ctx, p.ID); !errors.Is(err, ErrProductNotFound) {
			t.Fatalf("second delete: expected ErrProductNotFound, got %v", err)
		}
	})
}
