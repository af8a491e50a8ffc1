package testhelpers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"

	"repopush.dev/repopush/internal/content"
	githubpkg "repopush.dev/repopush/internal/github"
)

// MockFile is a file stored in the mock repository
type MockFile struct {
	Content    []byte
	Executable bool
	// SHA is the blob id the server reports; computed from Content when empty
	SHA string
}

// BlobSHA returns the blob id reported for the file
func (f MockFile) BlobSHA() string {
	if f.SHA != "" {
		return f.SHA
	}
	return content.Hash(f.Content)
}

// MockCommit is a commit created through the mock server
type MockCommit struct {
	SHA     string
	Message string
	Parent  string
	Files   map[string]MockFile
}

// MockGitHubServerConfig configures the behavior of a mock GitHub server.
// The server keeps a single branch whose head starts with Files and moves
// forward on every ref update.
type MockGitHubServerConfig struct {
	Owner  string
	Repo   string
	Branch string
	// Files is the initial content of the branch
	Files map[string]MockFile
	// Truncated makes tree listings report truncation
	Truncated bool
	// ErrorResponses maps "METHOD kind" (for example "GET contents") to a status code
	ErrorResponses map[string]int

	mu       sync.Mutex
	requests map[string]int
	blobs    map[string][]byte
	trees    map[string]map[string]MockFile
	commits  map[string]*MockCommit
	head     string
	created  []*MockCommit
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		Owner:          "owner",
		Repo:           "repo",
		Branch:         "main",
		Files:          make(map[string]MockFile),
		ErrorResponses: make(map[string]int),
	}
}

// WithFile adds a file to the initial branch content
func (c *MockGitHubServerConfig) WithFile(path, data string) *MockGitHubServerConfig {
	c.Files[path] = MockFile{Content: []byte(data)}
	return c
}

// WithFileSHA adds a file whose reported blob id is sha instead of one
// computed by this package
func (c *MockGitHubServerConfig) WithFileSHA(path, data, sha string) *MockGitHubServerConfig {
	c.Files[path] = MockFile{Content: []byte(data), SHA: sha}
	return c
}

// RequestCount returns how many requests of a kind ("GET contents", "POST blobs", ...) were served
func (c *MockGitHubServerConfig) RequestCount(kind string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[kind]
}

// HeadFiles returns the files at the current branch head
func (c *MockGitHubServerConfig) HeadFiles() map[string]MockFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyFiles(c.commits[c.head].Files)
}

// CreatedCommits returns the commits created through the server, oldest first
func (c *MockGitHubServerConfig) CreatedCommits() []*MockCommit {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*MockCommit, len(c.created))
	copy(out, c.created)
	return out
}

// MoveHead simulates a concurrent push to the branch
func (c *MockGitHubServerConfig) MoveHead(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	parent := c.commits[c.head]
	commit := c.storeCommit(message, parent.SHA, copyFiles(parent.Files))
	c.head = commit.SHA
}

func (c *MockGitHubServerConfig) init() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Owner == "" {
		c.Owner = "owner"
	}
	if c.Repo == "" {
		c.Repo = "repo"
	}
	if c.Branch == "" {
		c.Branch = "main"
	}
	if c.ErrorResponses == nil {
		c.ErrorResponses = make(map[string]int)
	}
	c.requests = make(map[string]int)
	c.blobs = make(map[string][]byte)
	c.trees = make(map[string]map[string]MockFile)
	c.commits = make(map[string]*MockCommit)
	root := c.storeCommit("initial", "", copyFiles(c.Files))
	c.head = root.SHA
}

// storeCommit records a commit and its tree. Callers hold mu.
func (c *MockGitHubServerConfig) storeCommit(message, parent string, files map[string]MockFile) *MockCommit {
	sha := content.Hash([]byte(fmt.Sprintf("commit %d %s %s", len(c.commits), parent, message)))
	commit := &MockCommit{SHA: sha, Message: message, Parent: parent, Files: files}
	c.commits[sha] = commit
	c.trees[treeSHA(sha)] = files
	return commit
}

func treeSHA(commitSHA string) string {
	return content.Hash([]byte("tree " + commitSHA))
}

func copyFiles(files map[string]MockFile) map[string]MockFile {
	out := make(map[string]MockFile, len(files))
	for k, v := range files {
		out[k] = v
	}
	return out
}

// NewMockGitHubServer creates an httptest server that mocks the GitHub git data and contents endpoints
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}
	config.init()

	mux := http.NewServeMux()
	base := "/repos/" + config.Owner + "/" + config.Repo

	handle := func(pattern, kind string, fn func(w http.ResponseWriter, r *http.Request)) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			config.mu.Lock()
			config.requests[kind]++
			status, fail := config.ErrorResponses[kind]
			config.mu.Unlock()
			if fail {
				writeJSON(w, status, map[string]string{"message": "mock failure"})
				return
			}
			fn(w, r)
		})
	}

	handle("GET "+base+"/git/ref/heads/{branch...}", "GET ref", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("branch") != config.Branch {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		config.mu.Lock()
		head := config.head
		config.mu.Unlock()
		writeJSON(w, http.StatusOK, &github.Reference{
			Ref:    github.String("refs/heads/" + config.Branch),
			Object: &github.GitObject{Type: github.String("commit"), SHA: github.String(head)},
		})
	})

	handle("GET "+base+"/git/trees/{sha}", "GET tree", func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()

		sha := r.PathValue("sha")
		files, ok := config.trees[sha]
		if commit, isCommit := config.commits[sha]; isCommit {
			sha, files, ok = treeSHA(commit.SHA), commit.Files, true
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, &github.Tree{
			SHA:       github.String(sha),
			Entries:   treeListing(files, r.URL.Query().Get("recursive") != ""),
			Truncated: github.Bool(config.Truncated),
		})
	})

	handle("GET "+base+"/contents/{path...}", "GET contents", func(w http.ResponseWriter, r *http.Request) {
		if ref := r.URL.Query().Get("ref"); ref != "" && ref != config.Branch {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "No commit found for the ref " + ref})
			return
		}
		config.mu.Lock()
		files := config.commits[config.head].Files
		config.mu.Unlock()

		p := r.PathValue("path")
		if f, ok := files[p]; ok {
			writeJSON(w, http.StatusOK, &github.RepositoryContent{
				Type:     github.String("file"),
				Name:     github.String(path.Base(p)),
				Path:     github.String(p),
				SHA:      github.String(f.BlobSHA()),
				Size:     github.Int(len(f.Content)),
				Encoding: github.String("base64"),
				Content:  github.String(base64.StdEncoding.EncodeToString(f.Content)),
			})
			return
		}
		var dir []*github.RepositoryContent
		for name := range files {
			if strings.HasPrefix(name, p+"/") {
				dir = append(dir, &github.RepositoryContent{Type: github.String("file"), Path: github.String(name)})
			}
		}
		if len(dir) > 0 {
			writeJSON(w, http.StatusOK, dir)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})

	handle("POST "+base+"/git/blobs", "POST blobs", func(w http.ResponseWriter, r *http.Request) {
		var blob github.Blob
		if err := json.NewDecoder(r.Body).Decode(&blob); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data := []byte(blob.GetContent())
		if blob.GetEncoding() == "base64" {
			decoded, err := base64.StdEncoding.DecodeString(blob.GetContent())
			if err != nil {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": err.Error()})
				return
			}
			data = decoded
		}
		sha := content.Hash(data)
		config.mu.Lock()
		config.blobs[sha] = data
		config.mu.Unlock()
		writeJSON(w, http.StatusCreated, &github.Blob{SHA: github.String(sha)})
	})

	handle("GET "+base+"/git/commits/{sha}", "GET commit", func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		commit, ok := config.commits[r.PathValue("sha")]
		config.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, &github.Commit{
			SHA:     github.String(commit.SHA),
			Message: github.String(commit.Message),
			Tree:    &github.Tree{SHA: github.String(treeSHA(commit.SHA))},
		})
	})

	handle("POST "+base+"/git/trees", "POST trees", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			BaseTree string `json:"base_tree"`
			Tree     []struct {
				Path string  `json:"path"`
				Mode string  `json:"mode"`
				Type string  `json:"type"`
				SHA  *string `json:"sha"`
			} `json:"tree"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		config.mu.Lock()
		defer config.mu.Unlock()

		baseFiles, ok := config.trees[body.BaseTree]
		if !ok {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "base_tree not found"})
			return
		}
		files := copyFiles(baseFiles)
		for _, entry := range body.Tree {
			if entry.SHA == nil {
				if _, exists := files[entry.Path]; !exists {
					writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "path not found: " + entry.Path})
					return
				}
				delete(files, entry.Path)
				continue
			}
			data, ok := config.blobs[*entry.SHA]
			if !ok {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "blob not found: " + *entry.SHA})
				return
			}
			files[entry.Path] = MockFile{Content: data, Executable: entry.Mode == "100755"}
		}

		sha := content.Hash([]byte(fmt.Sprintf("tree %d", len(config.trees))))
		config.trees[sha] = files
		writeJSON(w, http.StatusCreated, &github.Tree{SHA: github.String(sha)})
	})

	handle("POST "+base+"/git/commits", "POST commits", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Message string   `json:"message"`
			Tree    string   `json:"tree"`
			Parents []string `json:"parents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		config.mu.Lock()
		defer config.mu.Unlock()

		files, ok := config.trees[body.Tree]
		if !ok || len(body.Parents) != 1 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "invalid commit"})
			return
		}
		commit := config.storeCommit(body.Message, body.Parents[0], copyFiles(files))
		writeJSON(w, http.StatusCreated, &github.Commit{
			SHA:     github.String(commit.SHA),
			Message: github.String(commit.Message),
			HTMLURL: github.String(fmt.Sprintf("https://github.com/%s/%s/commit/%s", config.Owner, config.Repo, commit.SHA)),
		})
	})

	handle("PATCH "+base+"/git/refs/heads/{branch...}", "PATCH ref", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SHA   string `json:"sha"`
			Force bool   `json:"force"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		config.mu.Lock()
		defer config.mu.Unlock()

		commit, ok := config.commits[body.SHA]
		if !ok || r.PathValue("branch") != config.Branch {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Reference does not exist"})
			return
		}
		if !body.Force && commit.Parent != config.head {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Update is not a fast forward"})
			return
		}
		config.head = commit.SHA
		config.created = append(config.created, commit)
		writeJSON(w, http.StatusOK, &github.Reference{
			Ref:    github.String("refs/heads/" + config.Branch),
			Object: &github.GitObject{Type: github.String("commit"), SHA: github.String(commit.SHA)},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// treeListing renders files as tree entries, including the implied directories when recursive
func treeListing(files map[string]MockFile, recursive bool) []*github.TreeEntry {
	dirs := make(map[string]bool)
	var entries []*github.TreeEntry
	for p, f := range files {
		if !recursive && strings.Contains(p, "/") {
			dir := p[:strings.Index(p, "/")]
			if !dirs[dir] {
				dirs[dir] = true
				entries = append(entries, &github.TreeEntry{Path: github.String(dir), Type: github.String("tree"), Mode: github.String("040000")})
			}
			continue
		}
		for dir := path.Dir(p); recursive && dir != "."; dir = path.Dir(dir) {
			if !dirs[dir] {
				dirs[dir] = true
				entries = append(entries, &github.TreeEntry{Path: github.String(dir), Type: github.String("tree"), Mode: github.String("040000")})
			}
		}
		mode := "100644"
		if f.Executable {
			mode = "100755"
		}
		entries = append(entries, &github.TreeEntry{
			Path: github.String(p),
			Type: github.String("blob"),
			Mode: github.String(mode),
			SHA:  github.String(f.BlobSHA()),
			Size: github.Int(len(f.Content)),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].GetPath() < entries[j].GetPath()
	})
	return entries
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewMockGitHubClient creates a go-github client pointed at a new mock server
func NewMockGitHubClient(t *testing.T, config *MockGitHubServerConfig) (*github.Client, string, string) {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}
	server := NewMockGitHubServer(t, config)
	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL
	client.UploadURL = baseURL

	return client, config.Owner, config.Repo
}

// NewMockRESTClient creates a githubpkg.RESTClient backed by a new mock server
func NewMockRESTClient(t *testing.T, config *MockGitHubServerConfig, opts ...githubpkg.Option) (*githubpkg.RESTClient, string, string) {
	t.Helper()
	client, owner, repo := NewMockGitHubClient(t, config)
	return githubpkg.NewClientFromGitHub(client, opts...), owner, repo
}
