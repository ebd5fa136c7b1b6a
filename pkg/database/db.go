package database

import (
	"fmt"
	"lessonos_backend/internal/config"
	"lessonos_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 建立连接池并执行迁移。连接句柄在进程生命周期内复用，
// 由 App 持有并注入各仓储，不使用全局变量。
func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Lesson{},
		&model.LessonSection{},
		&model.AIEdit{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}
