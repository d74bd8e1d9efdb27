// Package gitbuild clones a mod's source repository, builds it with the
// bundled Gradle wrapper and copies out the resulting jars.
package gitbuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/afero"
	"github.com/steviee/cdl/internal/state"
)

const (
	defaultScheme = "https://"
	remoteName    = "origin"
)

var (
	// ErrBranchNotFound is returned by Checkout for a branch that exists
	// neither locally nor on the remote.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrBuildFailed is returned when the build exits with a non-zero status.
	ErrBuildFailed = errors.New("build failed")
)

// Builder clones repositories into a cache directory and builds them.
type Builder struct {
	cacheDir string
	fs       afero.Fs
	progress io.Writer
}

// Option configures a Builder.
type Option func(*Builder)

// WithFs sets the filesystem used for build outputs. Defaults to the OS.
func WithFs(fs afero.Fs) Option {
	return func(b *Builder) { b.fs = fs }
}

// WithProgress sets a writer for clone progress output.
func WithProgress(w io.Writer) Option {
	return func(b *Builder) { b.progress = w }
}

// New creates a Builder that keeps clones under cacheDir.
func New(cacheDir string, opts ...Option) *Builder {
	if cacheDir == "" {
		cacheDir = state.DefaultRepoCacheDir()
	}
	b := &Builder{
		cacheDir: cacheDir,
		fs:       afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Repo is a cloned repository with a working tree.
type Repo struct {
	Dir  string
	URL  string
	repo *git.Repository
}

// NormalizeURL adds https:// to URLs without a scheme.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "://") {
		return raw
	}
	return defaultScheme + raw
}

// CacheKey is the directory name for a repository URL: the URL without its
// scheme, with every '/' replaced by "__".
func CacheKey(url string) string {
	if _, rest, ok := strings.Cut(url, "://"); ok {
		url = rest
	}
	return strings.ReplaceAll(strings.Trim(url, "/"), "/", "__")
}

// Clone opens the cached clone of rawURL or clones it when missing.
func (b *Builder) Clone(ctx context.Context, rawURL string) (*Repo, error) {
	url := NormalizeURL(rawURL)
	dir := filepath.Join(b.cacheDir, CacheKey(url))

	if err := state.EnsureDir(b.cacheDir); err != nil {
		return nil, err
	}

	lock, err := state.LockFile(dir + ".lock")
	if err != nil {
		return nil, fmt.Errorf("failed to lock repository cache: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	repo, err := git.PlainOpen(dir)
	if err == nil {
		slog.Debug("opened cached repository", "url", url, "dir", dir)
		return &Repo{Dir: dir, URL: url, repo: repo}, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("failed to open repository %s: %w", dir, err)
	}

	slog.Debug("cloning repository", "url", url, "dir", dir)

	repo, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:        url,
		RemoteName: remoteName,
		Progress:   b.progress,
	})
	if err != nil {
		_ = b.fs.RemoveAll(dir)
		return nil, fmt.Errorf("failed to clone %s: %w", url, err)
	}

	return &Repo{Dir: dir, URL: url, repo: repo}, nil
}

// Branches returns the local and remote branch names, without the remote
// prefix, deduplicated and sorted.
func (r *Repo) Branches() ([]string, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}

	seen := make(map[string]struct{})
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		switch {
		case name.IsBranch():
			seen[name.Short()] = struct{}{}
		case name.IsRemote():
			_, branch, ok := strings.Cut(name.Short(), "/")
			if ok && branch != "HEAD" {
				seen[branch] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	branches := make([]string, 0, len(seen))
	for b := range seen {
		branches = append(branches, b)
	}
	sort.Strings(branches)
	return branches, nil
}

// Checkout switches the working tree to branch. A branch that only exists
// on the remote is created locally, tracking the remote one.
func (r *Repo) Checkout(branch string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	local := plumbing.NewBranchReferenceName(branch)
	if _, err := r.repo.Reference(local, true); err == nil {
		if err := wt.Checkout(&git.CheckoutOptions{Branch: local}); err != nil {
			return fmt.Errorf("failed to checkout %s: %w", branch, err)
		}
		return nil
	}

	remote, err := r.repo.Reference(plumbing.NewRemoteReferenceName(remoteName, branch), true)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, branch)
	}

	if err := wt.Checkout(&git.CheckoutOptions{
		Branch: local,
		Hash:   remote.Hash(),
		Create: true,
	}); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", branch, err)
	}

	err = r.repo.CreateBranch(&config.Branch{
		Name:   branch,
		Remote: remoteName,
		Merge:  local,
	})
	if err != nil && !errors.Is(err, git.ErrBranchExists) {
		return fmt.Errorf("failed to track %s/%s: %w", remoteName, branch, err)
	}

	slog.Debug("created local branch", "branch", branch, "hash", remote.Hash().String())
	return nil
}

// Head returns the short name of the checked out branch.
func (r *Repo) Head() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Name().Short(), nil
}
