package main

import (
	"log"

	"github.com/kataras/iris/v12"

	"github.com/example/autodrive/internal/config"
	"github.com/example/autodrive/internal/server"
)

func main() {
	// 加载配置（目前使用默认配置，可后续扩展为从文件读取）
	cfg := config.DefaultConfig()

	app := iris.New()
	server.RegisterRoutes(app, cfg)

	addr := cfg.Server.Addr()
	log.Printf("web server listening on %s", addr)
	if err := app.Run(iris.Addr(addr)); err != nil {
		log.Fatalf("failed to run web server: %v", err)
	}
}
