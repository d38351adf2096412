package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	v1 "dns_manager/api/v1"
	"dns_manager/internal/auth"
	"dns_manager/internal/cache"
	"dns_manager/internal/config"
	"dns_manager/internal/db"
	"dns_manager/internal/model"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logrus.Info("Configuration loaded")

	// 2. Initialize MySQL
	if err := db.InitMySQL(cfg.MySQL.DSN); err != nil {
		logrus.Fatalf("Failed to initialize MySQL: %v", err)
	}
	defer db.Close()

	if cfg.Migrate {
		if err := db.Migrate(db.DB); err != nil {
			logrus.Fatalf("Failed to migrate database: %v", err)
		}
	}
	if err := seedAdminUser(db.DB); err != nil {
		logrus.Fatalf("Failed to seed admin user: %v", err)
	}

	// 3. Initialize Redis
	if err := cache.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		logrus.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer cache.Close()

	// 4. Initialize JWT
	auth.InitJWT(cfg.JWT.Secret)

	// 5. Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	v1.SetupRouter(r, db.DB, cfg)

	logrus.Infof("Server starting on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}

// seedAdminUser creates the initial admin account when the users table is
// empty. The password comes from ADMIN_PASSWORD, falling back to "admin".
func seedAdminUser(database *gorm.DB) error {
	var count int64
	if err := database.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
		logrus.Warn("ADMIN_PASSWORD not set, seeding admin user with default password")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user := model.User{
		Username:     "admin",
		PasswordHash: hash,
		Role:         "admin",
		Status:       model.UserStatusActive,
	}
	if err := database.Create(&user).Error; err != nil {
		return err
	}
	logrus.Info("Seeded initial admin user")
	return nil
}
