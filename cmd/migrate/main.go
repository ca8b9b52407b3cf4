package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"github.com/sirupsen/logrus"

	"github.com/farmchat/backend-go/internal/config"
	"github.com/farmchat/backend-go/internal/database"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	var (
		action  = flag.String("action", "up", "Migration action: up, down, version, force, create")
		name    = flag.String("name", "", "Migration name (for create)")
		version = flag.Uint("version", 0, "Target version (for force)")
		path    = flag.String("path", database.DefaultMigrationPath, "Migration files directory")
	)
	flag.Parse()

	migrationPath := database.ResolveMigrationPath(*path)

	// create不需要数据库连接
	if *action == "create" {
		if err := database.CreateMigrationFile(migrationPath, *name); err != nil {
			log.Fatalf("Failed to create migration files: %v", err)
		}
		fmt.Printf("Created migration files for %q\n", *name)
		return
	}

	// 初始化配置
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 连接数据库
	db, err := sql.Open("postgres", config.AppConfig.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	migrationManager, err := database.NewMigrationManager(db, migrationPath, logger)
	if err != nil {
		log.Fatalf("Failed to create migration manager: %v", err)
	}
	defer migrationManager.Close()

	switch *action {
	case "up":
		fmt.Println("Running migrations up...")
		if err := migrationManager.Up(); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		fmt.Println("Migrations completed successfully")

	case "down":
		fmt.Println("Rolling back last migration...")
		if err := migrationManager.Down(); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		fmt.Println("Rollback completed successfully")

	case "version":
		v, dirty, err := migrationManager.Version()
		if err != nil {
			log.Fatalf("Failed to get version: %v", err)
		}
		fmt.Printf("Current version: %d", v)
		if dirty {
			fmt.Printf(" (dirty)")
		}
		fmt.Println()

	case "force":
		if err := migrationManager.ForceVersion(*version); err != nil {
			log.Fatalf("Failed to force version: %v", err)
		}
		fmt.Printf("Forced version to %d\n", *version)

	default:
		log.Fatalf("Unknown action: %s", *action)
	}
}
