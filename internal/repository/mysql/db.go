package mysql

import (
	"log"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/example/autodrive/internal/config"
	"github.com/example/autodrive/internal/datamodels/cart"
	"github.com/example/autodrive/internal/datamodels/category"
	"github.com/example/autodrive/internal/datamodels/order"
	"github.com/example/autodrive/internal/datamodels/product"
	"github.com/example/autodrive/internal/datamodels/user"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init 初始化全局 GORM 实例并自动迁移表结构
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		// TranslateError: 把驱动的唯一键冲突翻译成 gorm.ErrDuplicatedKey，
		// 激活购物车的并发创建竞态依赖该判断
		db, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}

		if err = db.AutoMigrate(
			&user.User{},
			&category.Category{},
			&product.Product{},
			&cart.Cart{},
			&cart.CartItem{},
			&order.TestDriveOrder{},
		); err != nil {
			log.Fatalf("auto migrate failed: %v", err)
		}
	})
	return db
}

// DB 获取全局 DB
func DB() *gorm.DB {
	return db
}
