package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/linemk/airbatu-shop/internal/config"
)

const migrationTableName = "migrations"

func main() {
	var migrationsPathFlag string
	var down bool
	// флаги регистрируются до config.MustLoad: он сам вызывает flag.Parse
	flag.StringVar(&migrationsPathFlag, "migrations-path", "", "path to migration files")
	flag.BoolVar(&down, "down", false, "roll back the last migration")

	cfg := config.MustLoad()

	migrationsPath := cfg.Migrations.Path
	if migrationsPathFlag != "" {
		migrationsPath = migrationsPathFlag
	}

	// Создаем объект мигратора
	m, err := migrate.New(
		"file://"+migrationsPath,
		cfg.Database.DSN("x-migrations-table", migrationTableName),
	)
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}
	defer m.Close()

	if down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No migrations to apply")
		} else {
			log.Fatalf("migration failed: %v", err)
		}
	} else {
		log.Println("Migrations applied successfully")
	}

	if down {
		return
	}
	if err := printCatalog(cfg.Database.DSN()); err != nil {
		log.Fatalf("failed to read catalog: %v", err)
	}
}

// printCatalog выводит каталог после миграции: сколько вкусов в продаже и сколько скоро появится
func printCatalog(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var onSale, comingSoon int
	err = db.QueryRow(`
		SELECT
			COUNT(*) FILTER (WHERE NOT coming_soon),
			COUNT(*) FILTER (WHERE coming_soon)
		FROM products
	`).Scan(&onSale, &comingSoon)
	if err != nil {
		return err
	}

	fmt.Printf("Catalog: %d flavours on sale, %d coming soon\n", onSale, comingSoon)
	return nil
}
