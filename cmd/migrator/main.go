package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/IlyasAtabaev731/finance-dashboard/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func main() {
	var driver, dbUrl, migrationsPath, migrationsTable string
	var down bool

	flag.StringVar(&driver, "driver", "postgres", "postgres or sqlite")
	flag.StringVar(&dbUrl, "db-url", "test:12345@localhost:5433/test_db", "db url connection, or a file path for sqlite")
	flag.StringVar(&migrationsPath, "migrations-path", "", "path to migrations, embedded ones are used when empty")
	flag.StringVar(&migrationsTable, "migrations-table", "migrations", "name of migrations table")
	flag.BoolVar(&down, "down", false, "roll every migration back")
	flag.Parse()

	if dbUrl == "" {
		panic("storage path is required")
	}

	var databaseURL string
	switch driver {
	case "postgres":
		databaseURL = fmt.Sprintf("postgresql://%s?x-migrations-table=%s&sslmode=disable", dbUrl, migrationsTable)
	case "sqlite":
		databaseURL = fmt.Sprintf("sqlite://%s?x-migrations-table=%s", dbUrl, migrationsTable)
	default:
		panic("unknown driver " + driver)
	}

	m, err := newMigrate(driver, migrationsPath, databaseURL)
	if err != nil {
		panic(err)
	}
	defer m.Close()

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("no migrations to apply")
			return
		}
		panic(err)
	}

	fmt.Println("migrations applied successfully")
}

func newMigrate(driver, migrationsPath, databaseURL string) (*migrate.Migrate, error) {
	if migrationsPath != "" {
		return migrate.New("file://"+migrationsPath, databaseURL)
	}

	src, err := iofs.New(migrations.FS, driver)
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", src, databaseURL)
}
