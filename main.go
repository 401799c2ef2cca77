// @title Study Portal 后端 API
// @version 1.0
// @description 学习门户后端：学习计划、好友、资料、考试与测验。

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"fmt"
	"log"
	"study_portal_backend/internal/app"
	"study_portal_backend/internal/config"
	"study_portal_backend/internal/service"
	"study_portal_backend/pkg/logger"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	hashPassword := flag.String("hash-password", "", "输出管理员密码的 bcrypt 哈希后退出")
	flag.Parse()

	if *hashPassword != "" {
		hashed, err := service.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hashed)
		return
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
