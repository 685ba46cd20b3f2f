package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-letterpdf/internal/store"
)

// runImport loads YAML fixtures into the store, one transaction per file.
func runImport(ctx context.Context, args []string, env *Environment) error {
	flags, files, err := parseImportFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: %w", ErrUsage, ErrNoFixture)
	}

	cfg, err := loadConfiguration(&flags.common, env)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, &flags.common, "")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	defer func() { _ = logger.Sync() }()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	for _, path := range files {
		fixture, err := store.LoadFixture(path)
		if err != nil {
			return err
		}
		stats, err := st.Import(ctx, fixture)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Imported %s: %d format(s), %d template(s), %d contact(s)\n",
				path, stats.Formats, stats.Templates, stats.Contacts)
		}
	}
	return nil
}
