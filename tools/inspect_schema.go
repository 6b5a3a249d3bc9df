package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/macrosdb/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Prints the schema AutoMigrate produces, table by table, on an in-memory sqlite database
func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		log.Fatal(err)
	}

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)

		columns, err := db.Migrator().ColumnTypes(table)
		if err != nil {
			log.Fatal(err)
		}
		for _, col := range columns {
			nullable, _ := col.Nullable()
			pk, _ := col.PrimaryKey()
			flags := []string{}
			if pk {
				flags = append(flags, "pk")
			}
			if !nullable {
				flags = append(flags, "not null")
			}
			if def, ok := col.DefaultValue(); ok {
				flags = append(flags, "default "+def)
			}
			fmt.Printf("  %-22s %-12s %s\n", col.Name(), col.DatabaseTypeName(), strings.Join(flags, ", "))
		}

		indexes, err := db.Migrator().GetIndexes(table)
		if err != nil {
			fmt.Printf("  indexes unavailable: %v\n", err)
			continue
		}
		for _, idx := range indexes {
			unique, _ := idx.Unique()
			kind := "index"
			if unique {
				kind = "unique"
			}
			fmt.Printf("  %s %s (%s)\n", kind, idx.Name(), strings.Join(idx.Columns(), ", "))
		}
	}
}
