package server

import (
	"log"
	"strings"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/example/autodrive/internal/auth"
	"github.com/example/autodrive/internal/config"
	"github.com/example/autodrive/internal/infra/mq"
	"github.com/example/autodrive/internal/infra/redis"
	"github.com/example/autodrive/internal/middleware"
	"github.com/example/autodrive/internal/repository/mysql"
	"github.com/example/autodrive/internal/service"
)

// RegisterRoutes 注册面向客户端的接口
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
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

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	api := app.Party("/api")
	api.Use(middleware.RateLimitMiddleware(middleware.NewTokenBucket(200, 100)))

	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	api.Post("/register", func(ctx iris.Context) {
		var req service.RegisterRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "请求参数错误"})
			return
		}
		u, token, err := userSvc.Register(ctx.Request().Context(), &req)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"user": u, "token": token}})
	})

	api.Post("/login", func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "请求参数错误"})
			return
		}
		u, token, err := userSvc.Login(ctx.Request().Context(), req.Username, req.Password)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"user": u, "token": token}})
	})

	// 登录态走 JWT，解析结果在 Redis 里缓存一段时间，省掉每次验签
	authMW := func(ctx iris.Context) {
		token := ctx.GetHeader("Authorization")
		token = strings.TrimPrefix(token, "Bearer ")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "未登录"})
			return
		}
		reqCtx := ctx.Request().Context()
		claims, hit, err := tokenCache.Get(reqCtx, token)
		if err != nil {
			log.Printf("token cache lookup failed: %v", err)
			service.GetMonitor().RecordRedisError()
		}
		if !hit {
			claims, err = auth.ParseToken(&cfg.JWT, token)
			if err != nil {
				ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "登录已失效"})
				return
			}
			if cacheErr := tokenCache.Set(reqCtx, token, claims); cacheErr != nil {
				log.Printf("cache token failed: %v", cacheErr)
				service.GetMonitor().RecordRedisError()
			}
		}
		ctx.Values().Set("user_id", claims.UserID)
		ctx.Values().Set("username", claims.Username)
		ctx.Next()
	}

	api.Post("/logout", authMW, func(ctx iris.Context) {
		token := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if err := tokenCache.Delete(ctx.Request().Context(), token); err != nil {
			log.Printf("evict token failed: %v", err)
			service.GetMonitor().RecordRedisError()
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "已退出登录"})
	})

	api.Get("/categories", func(ctx iris.Context) {
		list, err := categorySvc.ListAll(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Get("/categories/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		c, err := categorySvc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

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

	api.Get("/products/category/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		list, err := productSvc.ListByCategory(ctx.Request().Context(), id)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	authed := api.Party("/", authMW)

	authed.Post("/cart", func(ctx iris.Context) {
		userID := ctx.Values().Get("user_id").(int64)
		detail, err := cartSvc.GetOrCreateActiveCart(ctx.Request().Context(), userID)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": detail})
	})

	authed.Get("/cart", func(ctx iris.Context) {
		userID := ctx.Values().Get("user_id").(int64)
		status := ctx.URLParam("status")
		detail, err := cartSvc.GetUserCart(ctx.Request().Context(), userID, status)
		if err != nil {
			fail(ctx, err)
			return
		}
		if detail == nil {
			ctx.JSON(iris.Map{"code": 0, "data": nil})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": detail})
	})

	authed.Put("/cart", func(ctx iris.Context) {
		userID := ctx.Values().Get("user_id").(int64)
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "请求参数错误"})
			return
		}
		c, err := cartSvc.ChangeStatusByUser(ctx.Request().Context(), userID, req.Status)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	authed.Delete("/cart", func(ctx iris.Context) {
		userID := ctx.Values().Get("user_id").(int64)
		if err := cartSvc.DeleteCartByUser(ctx.Request().Context(), userID); err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "购物车已删除"})
	})

	authed.Get("/carts/{cartId:int64}/items", func(ctx iris.Context) {
		cartID, _ := ctx.Params().GetInt64("cartId")
		items, err := cartSvc.ListItems(ctx.Request().Context(), cartID)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": items})
	})

	authed.Post("/carts/{cartId:int64}/items", func(ctx iris.Context) {
		cartID, _ := ctx.Params().GetInt64("cartId")
		var req struct {
			ProductID int64 `json:"product_id"`
			Quantity  int64 `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "请求参数错误"})
			return
		}
		item, err := cartSvc.AddItem(ctx.Request().Context(), cartID, req.ProductID, req.Quantity)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": item})
	})

	authed.Put("/carts/{cartId:int64}/items/{itemId:int64}", func(ctx iris.Context) {
		cartID, _ := ctx.Params().GetInt64("cartId")
		itemID, _ := ctx.Params().GetInt64("itemId")
		var req struct {
			Quantity int64 `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "请求参数错误"})
			return
		}
		item, err := cartSvc.UpdateItem(ctx.Request().Context(), cartID, itemID, req.Quantity)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": item})
	})

	authed.Delete("/carts/{cartId:int64}/items/{itemId:int64}", func(ctx iris.Context) {
		cartID, _ := ctx.Params().GetInt64("cartId")
		itemID, _ := ctx.Params().GetInt64("itemId")
		if err := cartSvc.RemoveItem(ctx.Request().Context(), cartID, itemID); err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "已移除"})
	})

	authed.Post("/bookings", middleware.BookingRateLimit(), func(ctx iris.Context) {
		userID := ctx.Values().Get("user_id").(int64)
		var req service.FinalizeRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "请求参数错误"})
			return
		}
		req.UserID = userID
		o, err := orderSvc.Finalize(ctx.Request().Context(), &req)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	authed.Get("/bookings", func(ctx iris.Context) {
		userID := ctx.Values().Get("user_id").(int64)
		list, err := orderSvc.ListByUser(ctx.Request().Context(), userID)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	authed.Get("/bookings/{id:int64}", func(ctx iris.Context) {
		userID := ctx.Values().Get("user_id").(int64)
		id, _ := ctx.Params().GetInt64("id")
		detail, err := orderSvc.GetDetail(ctx.Request().Context(), id)
		if err != nil {
			fail(ctx, err)
			return
		}
		// 只能看自己的预约
		if detail.Order.UserID != userID {
			fail(ctx, service.ErrOrderNotFound)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": detail})
	})
}
