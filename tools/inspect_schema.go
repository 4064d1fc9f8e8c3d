// Command inspect_schema prints the tables gorm creates for the agrilearn models,
// using the cgo-free sqlite driver so it runs anywhere.
package main

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/agrilearn/internal/database"
	"github.com/localnerve/agrilearn/internal/logger"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	db, err := database.Open(sqlite.Open(":memory:"), logger.Nop(), gormlogger.Silent)
	if err != nil {
		log.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}
	// each pooled connection would see its own memory database
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	var tables []string
	db.Raw("SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name").Scan(&tables)

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var schema string
		db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", table).Scan(&schema)
		fmt.Println(schema)

		var indexes []string
		db.Raw("SELECT sql FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL", table).Scan(&indexes)
		for _, idx := range indexes {
			fmt.Println(idx + ";")
		}
	}
}
