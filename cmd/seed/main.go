// 初始数据开通工具：创建一个管理员和两个演示员工。
// 用户开通属于外部流程，不在核心 API 之内，因此以独立命令提供。
//
// 用法: go run ./cmd/seed [-password <初始密码>]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shivappapadennavar/attend/config"
	"github.com/Shivappapadennavar/attend/internal/model"
	"github.com/Shivappapadennavar/attend/internal/repository"
	"github.com/Shivappapadennavar/attend/pkg/database"
	applogger "github.com/Shivappapadennavar/attend/pkg/logger"
)

func main() {
	password := flag.String("password", "password", "所有种子账号的初始密码")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("生成密码哈希失败", zap.Error(err))
	}

	seeds := []model.User{
		{Name: "Admin User", Email: "admin@example.com", Role: model.RoleAdmin, Department: "Management"},
		{Name: "John Doe", Email: "emp@example.com", Role: model.RoleEmployee, Department: "Engineering"},
		{Name: "Jane Smith", Email: "jane@example.com", Role: model.RoleEmployee, Department: "HR"},
	}

	repo := repository.NewRepository(db)
	ctx := context.Background()

	for i := range seeds {
		user := &seeds[i]
		user.PasswordHash = string(hash)

		// 已存在的邮箱跳过，命令可重复执行
		if _, err := repo.User.GetByEmail(ctx, user.Email); err == nil {
			logger.Info("用户已存在，跳过", zap.String("email", user.Email))
			continue
		}

		if err := repo.User.Create(ctx, user); err != nil {
			logger.Fatal("创建用户失败", zap.String("email", user.Email), zap.Error(err))
		}
		logger.Info("用户已创建",
			zap.String("email", user.Email),
			zap.String("role", user.Role),
		)
	}

	logger.Info("初始数据开通完成")
}
