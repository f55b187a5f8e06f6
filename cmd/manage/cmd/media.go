package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenflash/greenflash/internal/config"
	"github.com/greenflash/greenflash/internal/db"
	"github.com/greenflash/greenflash/internal/logger"
	"github.com/greenflash/greenflash/internal/repository"
	"github.com/greenflash/greenflash/internal/storage"
)

func MediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Media store tasks",
	}

	cmd.AddCommand(mediaPruneCmd())
	return cmd
}

func mediaPruneCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove image directories of users that no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

			if cfg.StorageDriver != config.StorageLocal {
				return fmt.Errorf("prune only supports local storage, got %q", cfg.StorageDriver)
			}

			database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close()

			local, err := storage.NewLocalStorage(cfg.MediaPath, cfg.MediaURL)
			if err != nil {
				return err
			}

			pruned, err := PruneMedia(repository.NewUserRepository(database), local, dryRun)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "orphaned directories: %d\n", len(pruned))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list orphaned directories without deleting them")
	return cmd
}

// PruneMedia deletes top-level directories under the storage root whose
// name is not a user id. It returns the orphaned directory names.
func PruneMedia(users repository.UserRepository, local *storage.LocalStorage, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(local.Root())
	if err != nil {
		return nil, fmt.Errorf("failed to read media root: %w", err)
	}

	var pruned []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		_, err := users.ByID(entry.Name())
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return pruned, err
		}

		pruned = append(pruned, entry.Name())
		if dryRun {
			slog.Info("orphaned media directory", "dir", entry.Name())
			continue
		}

		err = local.DeletePrefix(entry.Name())
		if err != nil {
			return pruned, fmt.Errorf("failed to delete %s: %w", entry.Name(), err)
		}
		slog.Info("pruned media directory", "dir", entry.Name())
	}

	return pruned, nil
}
