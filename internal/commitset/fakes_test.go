package commitset

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"repopush.dev/repopush/internal/content"
	"repopush.dev/repopush/internal/github"
	"repopush.dev/repopush/internal/workspace"
)

// fakeRemote is an in-memory RemoteReader that records every call
type fakeRemote struct {
	mu sync.Mutex

	// files maps remote paths to their content
	files map[string]string
	// shas overrides the reported sha of a path
	shas map[string]string
	// delays slows down metadata fetches per path
	delays map[string]time.Duration

	listErr error
	metaErr map[string]error

	listCalls   int
	listPrefix  string
	metaCalls   []string
	inFlight    int
	maxInFlight int
}

func newFakeRemote(files map[string]string) *fakeRemote {
	if files == nil {
		files = map[string]string{}
	}
	return &fakeRemote{
		files:   files,
		shas:    map[string]string{},
		delays:  map[string]time.Duration{},
		metaErr: map[string]error{},
	}
}

func (f *fakeRemote) ListTreePaths(_ context.Context, owner, repo, branch, path string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.listPrefix = path
	if f.listErr != nil {
		return nil, f.listErr
	}
	var paths []string
	for p := range f.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func (f *fakeRemote) GetFileMeta(ctx context.Context, owner, repo, path, branch string) (*github.FileMeta, error) {
	f.mu.Lock()
	f.metaCalls = append(f.metaCalls, path)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	delay := f.delays[path]
	err := f.metaErr[path]
	data, ok := f.files[path]
	sha, overridden := f.shas[path]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("404 not found: %s", path)
	}
	if !overridden {
		sha = content.Hash([]byte(data))
	}
	return &github.FileMeta{Path: path, SHA: sha, Size: len(data)}, nil
}

func (f *fakeRemote) calls() (int, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meta := append([]string(nil), f.metaCalls...)
	sort.Strings(meta)
	return f.listCalls, meta
}

// fakeSerializer returns a fixed set of files
type fakeSerializer struct {
	mu    sync.Mutex
	files []workspace.File
	err   error
	roots []string
	opts  []workspace.Options
}

func (s *fakeSerializer) Serialize(root string, opts workspace.Options) ([]workspace.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots = append(s.roots, root)
	s.opts = append(s.opts, opts)
	if s.err != nil {
		return nil, s.err
	}
	return s.files, nil
}

func (s *fakeSerializer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.roots)
}

// fakeResolver joins paths without touching the filesystem
type fakeResolver struct {
	err   error
	calls []string
}

func (r *fakeResolver) Resolve(base, subpath string) (string, error) {
	r.calls = append(r.calls, subpath)
	if r.err != nil {
		return "", r.err
	}
	return base + "/" + subpath, nil
}

func localFiles(pairs ...string) []workspace.File {
	files := make([]workspace.File, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		files = append(files, workspace.File{Path: pairs[i], Content: []byte(pairs[i+1])})
	}
	return files
}
