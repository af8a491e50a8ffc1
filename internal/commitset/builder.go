package commitset

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"repopush.dev/repopush/internal/errors"
	"repopush.dev/repopush/internal/github"
	"repopush.dev/repopush/internal/output"
	"repopush.dev/repopush/internal/workspace"
)

// Serializer reads the files under a directory
type Serializer interface {
	Serialize(root string, opts workspace.Options) ([]workspace.File, error)
}

// PathResolver resolves a subpath under a base directory without escaping it
type PathResolver interface {
	Resolve(base, subpath string) (string, error)
}

// Options describes one synchronization run
type Options struct {
	Owner  string
	Repo   string
	Branch string

	// Workspace is the local directory files are read from
	Workspace string
	// SourcePath is the directory under Workspace to scan. When empty,
	// TargetPath is used instead.
	SourcePath string
	// TargetPath is the directory in the repository files are written
	// under. Empty means the repository root.
	TargetPath string

	Mode Mode
	// Concurrency bounds the in-flight metadata fetches; github.DefaultConcurrency when zero
	Concurrency    int
	UseIgnoreFiles bool
}

// Decision is the action chosen for one local file
type Decision struct {
	File workspace.File
	// Path is the full path of the file in the repository
	Path   string
	Action Action
}

// Plan is the outcome of reconciling a workspace against a branch. Decisions
// are in local enumeration order and include skipped files.
type Plan struct {
	Mode      Mode
	ScanRoot  string
	Decisions []Decision
}

// Actions renders every non-skip decision as a wire commit action
func (p *Plan) Actions() []github.CommitAction {
	actions := make([]github.CommitAction, 0, len(p.Decisions))
	for _, d := range p.Decisions {
		if d.Action == ActionSkip {
			continue
		}
		actions = append(actions, github.CommitAction{
			Action:          string(d.Action),
			FilePath:        d.Path,
			Content:         base64.StdEncoding.EncodeToString(d.File.Content),
			Encoding:        github.EncodingBase64,
			ExecuteFilemode: d.File.Executable,
		})
	}
	return actions
}

// Count returns how many decisions have the given action
func (p *Plan) Count(action Action) int {
	n := 0
	for _, d := range p.Decisions {
		if d.Action == action {
			n++
		}
	}
	return n
}

// Counts tallies decisions by action name
func (p *Plan) Counts() map[string]int {
	counts := make(map[string]int)
	for _, d := range p.Decisions {
		counts[string(d.Action)]++
	}
	return counts
}

// Empty reports whether the plan has nothing to commit
func (p *Plan) Empty() bool {
	return p.Count(ActionSkip) == len(p.Decisions)
}

// Builder builds commit sets
type Builder struct {
	remote     RemoteReader
	serializer Serializer
	resolver   PathResolver
	splog      *output.Splog
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithSerializer replaces the filesystem serializer
func WithSerializer(s Serializer) BuilderOption {
	return func(b *Builder) {
		b.serializer = s
	}
}

// WithPathResolver replaces the filesystem path resolver
func WithPathResolver(r PathResolver) BuilderOption {
	return func(b *Builder) {
		b.resolver = r
	}
}

// WithSplog sets the logger used for debug output
func WithSplog(splog *output.Splog) BuilderOption {
	return func(b *Builder) {
		b.splog = splog
	}
}

// NewBuilder creates a builder reading remote state through remote
func NewBuilder(remote RemoteReader, opts ...BuilderOption) *Builder {
	b := &Builder{
		remote:     remote,
		serializer: workspace.Disk{},
		resolver:   workspace.Disk{},
		splog:      output.NewDiscardSplog(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the commit actions that bring the branch in line with the
// workspace. Skipped files are left out; the order follows the sorted local
// paths.
func (b *Builder) Build(ctx context.Context, opts Options) ([]github.CommitAction, error) {
	plan, err := b.Plan(ctx, opts)
	if err != nil {
		return nil, err
	}
	return plan.Actions(), nil
}

// Plan decides an action for every local file. Any listing, serialization
// or comparison error aborts the whole plan.
func (b *Builder) Plan(ctx context.Context, opts Options) (*Plan, error) {
	if err := opts.Mode.validate(); err != nil {
		return nil, err
	}

	target := Target{Owner: opts.Owner, Repo: opts.Repo, Branch: opts.Branch}
	targetDir, ok := normalizeTarget(opts.TargetPath)
	if !ok {
		return nil, errors.NewPathEscapeError(target.Owner+"/"+target.Repo, opts.TargetPath)
	}

	root, err := b.scanRoot(opts)
	if err != nil {
		return nil, err
	}

	var known RemoteSet
	if opts.Mode.IsAuto() {
		paths, err := b.remote.ListTreePaths(ctx, target.Owner, target.Repo, target.Branch, targetDir)
		if err != nil {
			return nil, fmt.Errorf("failed to list remote files: %w", err)
		}
		known = NewRemoteSet(paths)
		b.splog.Debug("Found %d remote files under %q on %s", known.Len(), targetDir, target.Branch)
	}

	plan := &Plan{Mode: opts.Mode, ScanRoot: root}

	if action, ok := opts.Mode.Action(); ok && action == ActionSkip {
		b.splog.Debug("Mode is skip, nothing to do")
		return plan, nil
	}

	files, err := b.serializer.Serialize(root, workspace.Options{UseIgnoreFiles: opts.UseIgnoreFiles})
	if err != nil {
		return nil, fmt.Errorf("failed to read local files: %w", err)
	}
	b.splog.Debug("Read %d local files from %s", len(files), root)

	reconciler := NewReconciler(b.remote, target, known)
	decisions := make([]Decision, len(files))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = github.DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, file := range files {
		fullPath := TargetPath(targetDir, file.Path)
		g.Go(func() error {
			action, err := reconciler.Decide(gctx, file, fullPath, opts.Mode)
			if err != nil {
				return err
			}
			decisions[i] = Decision{File: file, Path: fullPath, Action: action}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan.Decisions = decisions
	return plan, nil
}

// scanRoot picks the local directory to serialize
func (b *Builder) scanRoot(opts Options) (string, error) {
	sub := opts.SourcePath
	if sub == "" {
		sub = opts.TargetPath
	}
	if sub == "" {
		return opts.Workspace, nil
	}

	root, err := b.resolver.Resolve(opts.Workspace, sub)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", sub, err)
	}
	return root, nil
}

// normalizeTarget turns a target directory into a slash-separated repository
// path without leading or trailing slashes. ok is false when the target
// climbs above the repository root.
func normalizeTarget(target string) (normalized string, ok bool) {
	target = strings.Trim(filepath.ToSlash(target), "/")
	if target == "" {
		return "", true
	}
	target = path.Clean(target)
	if target == "." {
		return "", true
	}
	if target == ".." || strings.HasPrefix(target, "../") {
		return "", false
	}
	return target, true
}

// TargetPath joins the target directory and a relative file path with
// forward slashes. With no target the relative path is returned unchanged.
func TargetPath(target, rel string) string {
	if target == "" {
		return rel
	}
	return path.Join(target, rel)
}
