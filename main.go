// @title Assessment 作答与评分 API
// @version 1.0
// @description 限时作业的作答生命周期与评分服务。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"assessment_backend/internal/app"
	"assessment_backend/internal/config"
	"assessment_backend/pkg/configwatcher"
	"assessment_backend/pkg/logger"
	"context"
	"flag"
	"log"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	seedDemo := flag.Bool("seed-demo", false, "启动时写入一份示例作业")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	if *seedDemo {
		if _, err := application.SeedDemo(context.Background()); err != nil {
			logger.Log.Error("Failed to seed demo assignment", zap.Error(err))
		}
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		if err := configwatcher.WatchConfig("configs/config.yaml", application.ApplyConfig, stop); err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()

	application.Run()
}
