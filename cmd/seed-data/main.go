package main

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/autodrive/internal/config"
	"github.com/example/autodrive/internal/datamodels/category"
	"github.com/example/autodrive/internal/datamodels/product"
	"github.com/example/autodrive/internal/datamodels/user"
	"github.com/example/autodrive/internal/repository/mysql"
)

// 初始化演示数据：车型分类、车型和一个管理账号。
// 直接写库，重复执行时已存在的数据跳过。
func main() {
	cfg := config.DefaultConfig()
	db := mysql.Init(&cfg.MySQL)
	ctx := context.Background()

	categoryRepo := mysql.NewCategoryRepository(db)
	productRepo := mysql.NewProductRepository(db)
	userRepo := mysql.NewUserRepository(db)

	categories := []*category.Category{
		{Name: "轿车", Description: "三厢/两厢家用轿车"},
		{Name: "SUV", Description: "城市与越野 SUV"},
		{Name: "新能源", Description: "纯电与混动车型"},
	}
	categoryIDs := make(map[string]int64, len(categories))
	for _, c := range categories {
		if exist, err := categoryRepo.GetByName(ctx, c.Name); err == nil {
			log.Printf("category %q exists, skip", c.Name)
			categoryIDs[c.Name] = exist.ID
			continue
		}
		if err := categoryRepo.Create(ctx, c); err != nil {
			log.Fatalf("create category %q failed: %v", c.Name, err)
		}
		categoryIDs[c.Name] = c.ID
		log.Printf("category %q created, id=%d", c.Name, c.ID)
	}

	// 价格单位为分
	products := []*product.Product{
		{
			Name:           "驰风 C5 豪华版",
			CategoryID:     categoryIDs["轿车"],
			Description:    "2.0T 家用轿车，试驾重点体验静音与底盘",
			Price:          18990000,
			MainImage:      "/static/img/c5-main.jpg",
			ListImages:     []string{"/static/img/c5-1.jpg", "/static/img/c5-2.jpg"},
			Specifications: "2.0T 245马力 8AT",
			Stock:          5,
			Status:         1,
		},
		{
			Name:           "岭越 X7 四驱版",
			CategoryID:     categoryIDs["SUV"],
			Description:    "中型 SUV，支持越野路线试驾",
			Price:          25980000,
			MainImage:      "/static/img/x7-main.jpg",
			ListImages:     []string{"/static/img/x7-1.jpg"},
			Specifications: "2.5L 四驱 7座",
			Stock:          3,
			Status:         1,
		},
		{
			Name:           "星河 E3",
			CategoryID:     categoryIDs["新能源"],
			Description:    "纯电轿跑，CLTC 续航 650km",
			Price:          21880000,
			MainImage:      "/static/img/e3-main.jpg",
			ListImages:     []string{"/static/img/e3-1.jpg", "/static/img/e3-2.jpg", "/static/img/e3-3.jpg"},
			Specifications: "单电机 后驱 650km",
			Stock:          8,
			Status:         1,
		},
	}
	for _, p := range products {
		if err := productRepo.Create(ctx, p); err != nil {
			log.Printf("create product %q failed (may exist): %v", p.Name, err)
			continue
		}
		log.Printf("product %q created, id=%d", p.Name, p.ID)
	}

	if _, err := userRepo.GetByUsername(ctx, "admin"); err == nil {
		log.Println("user admin exists, skip")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash admin password failed: %v", err)
	}
	admin := &user.User{
		Username: "admin",
		Password: string(hash),
		Email:    "admin@example.com",
		FullName: "运营管理员",
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatalf("create admin user failed: %v", err)
	}
	log.Printf("user admin created, id=%d", admin.ID)
}
