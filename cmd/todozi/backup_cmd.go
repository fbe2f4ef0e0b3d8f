package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/todozi/todozi/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot and restore the workspace (spec §6.6)",
}

// toolVersion is recorded in the backup manifest for diagnostic purposes
// only (spec §6.6).
const toolVersion = "todozi"

var backupCreateCmd = &cobra.Command{
	Use:   "create [dest]",
	Short: "Create a tar.gz snapshot of the workspace under <root>/backups",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		dest := ""
		if len(args) == 1 {
			dest = args[0]
		} else {
			dest = filepath.Join(a.store.Root(), "backups", backup.DefaultArchiveName(time.Now()))
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		manifest, err := backup.Create(a.store.Root(), dest, toolVersion)
		if err != nil {
			return err
		}
		fmt.Printf("created %s (%d files, %d bytes)\n", dest, manifest.FileCount, manifest.TotalBytes)
		return nil
	},
}

var backupRestoreForce bool

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <archive>",
	Short: "Restore the workspace from a tar.gz snapshot, overwriting existing files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if !backupRestoreForce {
			fmt.Printf("This will overwrite files under %s. Continue? [y/N] ", a.store.Root())
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("restore cancelled")
				return nil
			}
		}
		manifest, err := backup.Restore(args[0], a.store.Root())
		if err != nil {
			return err
		}
		fmt.Printf("restored %s (%d files, created_at=%s)\n", args[0], manifest.FileCount, manifest.CreatedAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	backupRestoreCmd.Flags().BoolVarP(&backupRestoreForce, "force", "f", false, "Skip the overwrite confirmation prompt")
	backupCmd.AddCommand(backupCreateCmd, backupRestoreCmd)
}
