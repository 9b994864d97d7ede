// Command migrate manages the postgres schema: apply, roll back, inspect and
// scaffold the versioned SQL files under migrations/.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"

	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/fintermediary/backoffice/internal/infrastructure/logger"
	"github.com/fintermediary/backoffice/internal/infrastructure/migration"
	"github.com/fintermediary/backoffice/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// command is one subcommand. Commands with a nil apply work on files only.
type command struct {
	usage string
	files func(env *env, args []string) error
	apply func(m *migration.Migrator, args []string) error
}

type env struct {
	dir    string
	source fs.FS
	log    *zap.Logger
}

var commands = map[string]command{
	"up":   {usage: "up                    Apply all pending migrations", apply: func(m *migration.Migrator, _ []string) error { return m.Up() }},
	"down": {usage: "down                  Roll back all migrations", apply: func(m *migration.Migrator, _ []string) error { return m.Down() }},
	"step": {usage: "step <n>              Apply n migrations (negative rolls back)", apply: func(m *migration.Migrator, args []string) error {
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	}},
	"goto": {usage: "goto <version>        Migrate up or down to a version", apply: func(m *migration.Migrator, args []string) error {
		v, err := intArg(args, "version")
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("version must not be negative")
		}
		return m.GoTo(uint(v))
	}},
	"force": {usage: "force <version>       Mark a version as applied and clean", apply: func(m *migration.Migrator, args []string) error {
		v, err := intArg(args, "version")
		if err != nil {
			return err
		}
		return m.Force(v)
	}},
	"drop": {usage: "drop -confirm         Drop every table", apply: func(m *migration.Migrator, args []string) error {
		if !slices.Contains(args, "-confirm") && !slices.Contains(args, "--confirm") {
			return fmt.Errorf("refusing to drop without -confirm")
		}
		return m.Drop()
	}},
	"status": {usage: "status                Show applied, latest and pending versions", apply: func(m *migration.Migrator, _ []string) error {
		st, err := m.Status()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty=%t), latest %d, %d pending\n", st.Version, st.Dirty, st.Latest, st.Pending)
		return nil
	}},
	"list": {usage: "list                  List available migrations", files: func(e *env, _ []string) error {
		available, err := migration.ListMigrations(e.source)
		if err != nil {
			return err
		}
		for _, m := range available {
			fmt.Printf("  %06d  %-32s down=%t\n", m.Version, m.Name, m.HasDown)
		}
		return nil
	}},
	"create": {usage: "create <name> [desc]  Write a new up/down pair", files: func(e *env, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("migration name required")
		}
		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		mf, err := migration.CreateMigration(e.dir, args[0], description)
		if err != nil {
			return err
		}
		e.log.Info("Migration created", zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
		return nil
	}},
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return n, nil
}

func main() {
	dir := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", TimeFormat: "15:04:05"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	e := &env{dir: *dir, source: migrations.FS, log: log}
	if *dir != "" {
		e.source = os.DirFS(*dir)
	} else {
		e.dir = "migrations"
	}

	if err := run(cmd, e, args[1:]); err != nil {
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(cmd command, e *env, args []string) error {
	if cmd.files != nil {
		return cmd.files(e, args)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("versioned migrations need postgres, got %q (sqlite uses database.auto_migrate)", cfg.Database.Driver)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, e.source, e.log)
	if err != nil {
		return err
	}
	defer m.Close()
	return cmd.apply(m, args)
}

func usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	fmt.Fprintln(os.Stderr, "Usage: migrate [flags] <command> [arguments]\n\nCommands:")
	for _, name := range names {
		fmt.Fprintln(os.Stderr, "  "+commands[name].usage)
	}
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "\nThe database comes from BO_DATABASE_* (host, port, user, password, dbname, sslmode).")
}
