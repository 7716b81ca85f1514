package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/rentcheck/internal/config"
	"github.com/cleared-dev/rentcheck/internal/gitops"
	"github.com/cleared-dev/rentcheck/internal/importer"
	"github.com/cleared-dev/rentcheck/internal/store"
)

func newInitCommand() *cobra.Command {
	var name string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new rentcheck project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, noGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "landlord name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name string, noGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	dirs := []string{
		store.DataDir,
		"logs",
		importer.ImportDir,
		filepath.FromSlash(importer.ProcessedDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name)
	if noGit {
		cfg.Git.AutoCommit = false
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	// Empty data files with headers.
	if _, err := store.Create(dir); err != nil {
		return fmt.Errorf("creating data files: %w", err)
	}

	gitignore := "import/processed/\ndata/*.tmp-*\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, importer.ImportDir, ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	out := cmd.OutOrStdout()
	if noGit {
		fmt.Fprintf(out, "Initialized rentcheck project at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return err
	}
	hash, err := gitops.CommitAll(dir, "init: Initialize "+name, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized rentcheck project at %s (%s)\n", dir, hash)
	return nil
}
