package git

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"
)

// Client provides Git operations.
type Client struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewClient creates a new Git client.
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		logger: logger,
		now:    time.Now,
	}
}

// InitOptions holds options for initialising a repository.
type InitOptions struct {
	Path        string
	Message     string
	AuthorName  string
	AuthorEmail string
	// Exclude lists top-level entries left out of the initial commit.
	Exclude []string
}

// Init creates a repository at opts.Path and commits every file that is
// neither ignored by .gitignore nor under a top-level entry listed in
// opts.Exclude. It returns the hash of the initial commit.
func (c *Client) Init(ctx context.Context, opts InitOptions) (plumbing.Hash, error) {
	c.logger.Debug("initialising repository",
		zap.String("path", opts.Path),
		zap.Strings("exclude", opts.Exclude),
	)

	if err := ctx.Err(); err != nil {
		return plumbing.ZeroHash, err
	}

	repo, err := git.PlainInit(opts.Path, false)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to init repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to open worktree: %w", err)
	}

	patterns, err := gitignore.ReadPatterns(wt.Filesystem, nil)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to read ignore patterns: %w", err)
	}
	wt.Excludes = append(wt.Excludes, patterns...)
	wt.Excludes = append(wt.Excludes, excludePatterns(opts.Exclude)...)

	if err := ctx.Err(); err != nil {
		return plumbing.ZeroHash, err
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to stage files: %w", err)
	}

	hash, err := wt.Commit(opts.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  opts.AuthorName,
			Email: opts.AuthorEmail,
			When:  c.now(),
		},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to commit: %w", err)
	}

	c.logger.Info("repository initialised",
		zap.String("path", opts.Path),
		zap.String("commit", hash.String()),
	)

	return hash, nil
}

// excludePatterns anchors each name to the repository root.
func excludePatterns(names []string) []gitignore.Pattern {
	ps := make([]gitignore.Pattern, 0, len(names))
	for _, name := range names {
		ps = append(ps, gitignore.ParsePattern("/"+name, nil))
	}
	return ps
}
