package sql

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/nbprates/cmd/env"
	dbpkg "github.com/sig-0/nbprates/storage/sql"
)

// execer runs a single SQL statement batch
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// migrateCfg wraps the migrate configuration
type migrateCfg struct {
	rootCfg *sqlCfg
}

// newMigrateCmd creates the migrate command
func newMigrateCmd(rootCfg *sqlCfg) *ffcli.Command {
	cfg := &migrateCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	rootCfg.RegisterFlags(fs)

	return &ffcli.Command{
		Name:       "migrate",
		ShortUsage: "sql migrate [migration.sql, migration2.sql ...]",
		LongHelp:   "Runs the given DB migrations, or all of them in name order if none are given",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *migrateCfg) exec(ctx context.Context, args []string) error {
	// Load .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded, using the environment")
	}

	dsn := c.rootCfg.dsn
	if dsn == "" {
		dsn = os.Getenv(env.Prefix + env.DBURLSuffix)
	}

	if dsn == "" {
		return fmt.Errorf("missing %s", env.Prefix+env.DBURLSuffix)
	}

	names := args
	if len(names) == 0 {
		all, err := migrationNames(dbpkg.SchemaFS)
		if err != nil {
			return err
		}

		names = all
	}

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("unable to open DB connection: %w", err)
	}

	defer func() {
		closeCtx, cancelFn := context.WithTimeout(context.Background(), time.Second*5)
		defer cancelFn()

		if err := conn.Close(closeCtx); err != nil {
			fmt.Printf("Unable to gracefully close DB: %s\n", err.Error())
		}
	}()

	if err = conn.Ping(ctx); err != nil {
		return fmt.Errorf("unable to ping DB: %w", err)
	}

	return runMigrations(ctx, conn, dbpkg.SchemaFS, names, os.Stdout)
}

// migrationNames lists the embedded migrations, in name order
func migrationNames(schema fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(schema, "schema")
	if err != nil {
		return nil, fmt.Errorf("unable to list migrations: %w", err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}

// runMigrations executes the named migrations one by one
func runMigrations(ctx context.Context, db execer, schema fs.FS, names []string, out io.Writer) error {
	for _, name := range names {
		path := fmt.Sprintf("schema/%s", name)

		sqlBytes, err := fs.ReadFile(schema, path)
		if err != nil {
			return fmt.Errorf("unable to read migration %q: %w", name, err)
		}

		_, _ = fmt.Fprintf(out, "Running migration %s...\n", name)

		if _, err := db.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("unable to run migration %q: %w", name, err)
		}

		_, _ = fmt.Fprintf(out, "Migration %q complete\n", name)
	}

	_, _ = fmt.Fprintln(out, "All migrations complete!")

	return nil
}
