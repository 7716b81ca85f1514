package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/rentcheck/internal/activity"
	"github.com/cleared-dev/rentcheck/internal/config"
	"github.com/cleared-dev/rentcheck/internal/gitops"
	"github.com/cleared-dev/rentcheck/internal/logger"
	"github.com/cleared-dev/rentcheck/internal/matching"
	"github.com/cleared-dev/rentcheck/internal/model"
	"github.com/cleared-dev/rentcheck/internal/store"
)

// project is an opened rentcheck directory.
type project struct {
	root    string
	cfg     *config.Config
	svc     *matching.Service
	log     zerolog.Logger
	entries []activity.Entry
}

func openProject(cmd *cobra.Command, opts *rootOptions) (*project, error) {
	root, err := filepath.Abs(opts.repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s is not a rentcheck project, run rentcheck init first: %w", root, err)
	}
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if opts.verbose {
		level = "debug"
	}
	log, err := logger.New(cmd.ErrOrStderr(), level)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(root)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	return &project{
		root: root,
		cfg:  cfg,
		svc:  matching.NewService(st, log),
		log:  log,
	}, nil
}

func (p *project) record(action, tenantID, txID, details string) {
	p.entries = append(p.entries, activity.Entry{
		Timestamp:     time.Now().UTC().Truncate(time.Second),
		Action:        action,
		TenantID:      tenantID,
		TransactionID: txID,
		Details:       details,
	})
}

func (p *project) recordMatch(res matching.MatchResult) {
	for _, a := range res.Created {
		p.record(activity.ActionAutoAssign, a.TenantID, a.TransactionID, "")
	}
	if res.Pruned > 0 {
		p.record(activity.ActionDanglingPruned, "", "", fmt.Sprintf("%d dangling reference(s)", res.Pruned))
	}
}

func (p *project) recordRetracted(retracted []model.Assignment, reason string) {
	for _, a := range retracted {
		p.record(activity.ActionRetract, a.TenantID, a.TransactionID, reason)
	}
}

// finish appends collected activity entries and commits the project when
// git.auto_commit is on. Failures are logged, not returned.
func (p *project) finish(message string) {
	if err := activity.Append(p.root, p.entries); err != nil {
		p.log.Warn().Err(err).Msg("failed to write activity log")
	}
	p.entries = nil

	if !p.cfg.Git.AutoCommit || !gitops.IsRepo(p.root) {
		return
	}
	hash, err := gitops.CommitAll(p.root, message, p.cfg.Git.AuthorName, p.cfg.Git.AuthorEmail)
	if err != nil {
		p.log.Warn().Err(err).Msg("failed to commit changes")
		return
	}
	if hash != "" {
		p.log.Debug().Str("commit", hash).Msg("committed changes")
	}
}

// runMatch runs auto-match and records its result.
func (p *project) runMatch(cmd *cobra.Command) (matching.MatchResult, error) {
	res, err := p.svc.RunAutoMatch()
	if err != nil {
		return res, err
	}
	p.recordMatch(res)
	fmt.Fprintf(cmd.OutOrStdout(), "Matched %d transaction(s)\n", res.Matched())
	return res, nil
}
