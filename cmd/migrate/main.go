package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/noah-isme/collab-league-api/pkg/config"
	"github.com/noah-isme/collab-league-api/pkg/database"
)

func main() {
	msg, err := run(os.Args[1:], openMigrator)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(msg)
}

type options struct {
	direction string
	steps     int
	force     int
}

type migratorFactory func() (database.Migrator, func(), error)

func openMigrator() (database.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	m, err := database.NewMigrator(db.DB)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return m, func() { _ = db.Close() }, nil
}

func parseArgs(args []string) (options, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	var o options
	fs.StringVar(&o.direction, "direction", "up", "migration direction: up or down")
	fs.IntVar(&o.steps, "steps", 0, "number of migration steps (0 = all)")
	fs.IntVar(&o.force, "force", -1, "force the schema version and clear the dirty flag")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.direction != "up" && o.direction != "down" {
		return options{}, fmt.Errorf("invalid direction %q: must be up or down", o.direction)
	}
	if o.steps < 0 {
		return options{}, fmt.Errorf("steps must not be negative")
	}
	return o, nil
}

func run(args []string, open migratorFactory) (string, error) {
	o, err := parseArgs(args)
	if err != nil {
		return "", err
	}

	m, closeFn, err := open()
	if err != nil {
		return "", err
	}
	defer closeFn()

	if o.force >= 0 {
		if err := m.Force(o.force); err != nil {
			return "", fmt.Errorf("force version %d: %w", o.force, err)
		}
		return fmt.Sprintf("forced schema version %d", o.force), nil
	}

	switch {
	case o.steps > 0 && o.direction == "down":
		err = m.Steps(-o.steps)
	case o.steps > 0:
		err = m.Steps(o.steps)
	case o.direction == "down":
		err = m.Down()
	default:
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return "no change", nil
	}
	if err != nil {
		return "", fmt.Errorf("migrate %s: %w", o.direction, err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return "schema is empty", nil
	}
	if err != nil {
		return "", fmt.Errorf("read version: %w", err)
	}
	return fmt.Sprintf("schema at version %d (dirty=%t)", version, dirty), nil
}
