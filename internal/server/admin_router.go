package server

import (
	"errors"

	"github.com/kataras/iris/v12"

	"github.com/example/autodrive/internal/config"
	"github.com/example/autodrive/internal/datamodels/product"
	"github.com/example/autodrive/internal/infra/mq"
	"github.com/example/autodrive/internal/repository/mysql"
	"github.com/example/autodrive/internal/service"
)

// productRequest 后台商品录入/编辑入参
type productRequest struct {
	Name           string   `json:"name"`
	CategoryID     int64    `json:"category_id"`
	Description    string   `json:"description"`
	Price          *int64   `json:"price"`
	MainImage      string   `json:"main_image"`
	ListImages     []string `json:"list_images"`
	Specifications string   `json:"specifications"`
	Stock          *int64   `json:"stock"`
	Status         *int     `json:"status"`
}

// applyTo 把入参写回商品。partial 时空字段保持原值
func (r *productRequest) applyTo(p *product.Product, partial bool) error {
	if !partial {
		if r.Name == "" {
			return errors.New("商品名称不能为空")
		}
		if r.CategoryID <= 0 {
			return errors.New("必须指定商品分类")
		}
		if r.Price == nil {
			return errors.New("必须指定价格")
		}
		if r.Stock == nil {
			return errors.New("必须指定库存")
		}
	}
	if r.Name != "" {
		p.Name = r.Name
	}
	if r.CategoryID > 0 {
		p.CategoryID = r.CategoryID
	}
	if r.Description != "" {
		p.Description = r.Description
	}
	if r.Price != nil {
		if *r.Price < 0 {
			return errors.New("价格不能为负数")
		}
		p.Price = *r.Price
	}
	if r.MainImage != "" {
		p.MainImage = r.MainImage
	}
	if len(r.ListImages) > 0 {
		p.ListImages = r.ListImages
	}
	if r.Specifications != "" {
		p.Specifications = r.Specifications
	}
	if r.Stock != nil {
		if *r.Stock < 0 {
			return errors.New("库存不能为负数")
		}
		p.Stock = *r.Stock
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
	return nil
}

// RegisterAdminRoutes 注册后台管理接口。后台部署在内网，不走登录态
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	mqConn := mq.Init(&cfg.RabbitMQ)

	userRepo := mysql.NewUserRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	productRepo := mysql.NewProductRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	categorySvc := service.NewCategoryService(categoryRepo)
	productSvc := service.NewProductService(productRepo, categoryRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo, cartRepo, userRepo, mqConn)

	api := app.Party("/api")

	api.Get("/products", func(ctx iris.Context) {
		list, err := productSvc.ListAll(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Get("/products/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		p, err := productSvc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Post("/products", func(ctx iris.Context) {
		var req productRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "请求参数错误"})
			return
		}
		var p product.Product
		if err := req.applyTo(&p, false); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := productSvc.Create(ctx.Request().Context(), &p); err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Put("/products/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		detail, err := productSvc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			fail(ctx, err)
			return
		}
		var req productRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "请求参数错误"})
			return
		}
		p := detail.Product
		if err := req.applyTo(p, true); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := productSvc.Update(ctx.Request().Context(), p); err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Delete("/products/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		if err := productSvc.Delete(ctx.Request().Context(), id); err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "删除成功"})
	})

	api.Get("/categories", func(ctx iris.Context) {
		list, err := categorySvc.ListAll(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Post("/categories", func(ctx iris.Context) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := ctx.ReadJSON(&req); err != nil || req.Name == "" {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "分类名称不能为空"})
			return
		}
		c, err := categorySvc.Create(ctx.Request().Context(), req.Name, req.Description)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	api.Put("/categories/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "请求参数错误"})
			return
		}
		c, err := categorySvc.Update(ctx.Request().Context(), id, req.Name, req.Description)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	api.Delete("/categories/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		if err := categorySvc.Delete(ctx.Request().Context(), id); err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "删除成功"})
	})

	api.Get("/users", func(ctx iris.Context) {
		list, err := userSvc.ListAll(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Get("/users/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		u, err := userSvc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": u})
	})

	api.Put("/users/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req service.UpdateRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "请求参数错误"})
			return
		}
		u, err := userSvc.Update(ctx.Request().Context(), id, &req)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": u})
	})

	api.Delete("/users/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		if err := userSvc.Delete(ctx.Request().Context(), id); err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "删除成功"})
	})

	api.Get("/orders", func(ctx iris.Context) {
		list, err := orderSvc.ListDetailed(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Get("/orders/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		detail, err := orderSvc.GetDetail(ctx.Request().Context(), id)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": detail})
	})

	api.Put("/orders/{id:int64}/status", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "请求参数错误"})
			return
		}
		o, err := orderSvc.UpdateStatus(ctx.Request().Context(), id, req.Status)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	api.Delete("/orders/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		if err := orderSvc.Delete(ctx.Request().Context(), id); err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "删除成功"})
	})

	api.Get("/stats/orders", func(ctx iris.Context) {
		stats, err := orderSvc.Statistics(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": stats})
	})

	api.Get("/stats/monitor", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "data": service.GetMonitor().GetStats()})
	})

	// 购物车总额校对入口，金额对不上时人工触发
	api.Post("/carts/{id:int64}/recompute", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		total, err := cartSvc.RecomputeTotal(ctx.Request().Context(), id)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"cart_id": id, "total_amount": total}})
	})
}
