package artifacts

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/NilFoundation/diamond/diamond/common/logging"
	"github.com/NilFoundation/diamond/diamond/internal/types"
	"golang.org/x/sync/errgroup"
)

const (
	debugSuffix  = ".dbg.json"
	buildInfoDir = "build-info"

	DefaultDir = "artifacts"
)

var DefaultExtensions = []string{"json"}

type ReaderConfig struct {
	Dir            string
	Extensions     []string
	FollowSymlinks bool
	// Skip lists files that are never read, such as the synthesized output itself.
	Skip []string
	// SkipDirs lists directories that are never descended into, such as the output
	// directory with artifacts left by earlier runs. The root itself is always read.
	SkipDirs []string
}

// Reader discovers facet artifacts below a directory. It may be reused across reads;
// unchanged files are served from a decode cache.
type Reader struct {
	dir            string
	extensions     map[string]struct{}
	followSymlinks bool
	skip           map[string]struct{}
	skipDirs       map[string]struct{}

	cache  *decodeCache
	logger logging.Logger
}

func NewReader(cfg ReaderConfig, logger logging.Logger) (*Reader, error) {
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, types.NewConfigError("artifactsDir", cfg.Dir, err)
	}

	r := &Reader{
		dir:            dir,
		extensions:     make(map[string]struct{}, len(cfg.Extensions)),
		followSymlinks: cfg.FollowSymlinks,
		skip:           make(map[string]struct{}, len(cfg.Skip)),
		skipDirs:       make(map[string]struct{}, len(cfg.SkipDirs)),
		logger:         logger,
	}
	for _, ext := range cfg.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		r.extensions["."+strings.TrimPrefix(ext, ".")] = struct{}{}
	}
	for _, path := range cfg.Skip {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, types.NewConfigError("skip", path, err)
		}
		r.skip[abs] = struct{}{}
	}
	for _, path := range cfg.SkipDirs {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, types.NewConfigError("skipDirs", path, err)
		}
		r.skipDirs[abs] = struct{}{}
	}

	if r.cache, err = newDecodeCache(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) Dir() string {
	return r.dir
}

// Read decodes every artifact in discovery order. Files are decoded in parallel but
// the result, including which error is reported, does not depend on scheduling.
func (r *Reader) Read(ctx context.Context) ([]*types.FacetContract, error) {
	paths, err := r.Discover()
	if err != nil {
		return nil, err
	}

	results := make([][]*types.FacetContract, len(paths))
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = r.load(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var facets []*types.FacetContract
	for i, path := range paths {
		if errs[i] != nil {
			return nil, types.NewConfigError("artifact", r.relative(path), errs[i])
		}
		facets = append(facets, results[i]...)
	}

	r.logger.Debug().
		Int(logging.FieldFacets, len(facets)).
		Str(logging.FieldPath, r.dir).
		Msg("Artifacts read")
	return facets, nil
}

// Names lists the fully qualified names of all discovered contracts.
func (r *Reader) Names(ctx context.Context) ([]string, error) {
	facets, err := r.Read(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(facets))
	for i, f := range facets {
		res[i] = f.FullyQualifiedName()
	}
	return res, nil
}

func (r *Reader) load(path string) ([]*types.FacetContract, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if facets, ok := r.cache.get(path, info); ok {
		r.logger.Trace().Str(logging.FieldPath, path).Msg("Artifact cache hit")
		return facets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	facets, err := Decode(path, data)
	if err != nil {
		return nil, err
	}
	r.cache.add(path, info, facets)

	r.logger.Trace().
		Str(logging.FieldPath, path).
		Int(logging.FieldFacets, len(facets)).
		Msg("Artifact decoded")
	return facets, nil
}

func (r *Reader) relative(path string) string {
	if rel, err := filepath.Rel(r.dir, path); err == nil {
		return rel
	}
	return path
}

// Discover returns the artifact files below the directory in lexical order.
func (r *Reader) Discover() ([]string, error) {
	info, err := os.Stat(r.dir)
	if err != nil {
		return nil, types.NewConfigError("artifactsDir", r.dir, err)
	}
	if !info.IsDir() {
		return nil, types.NewConfigError("artifactsDir", r.dir, fmt.Errorf("not a directory"))
	}

	var paths []string
	visited := make(map[string]struct{})
	if err := r.walk(r.dir, visited, &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *Reader) walk(dir string, visited map[string]struct{}, paths *[]string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	if _, ok := visited[resolved]; ok {
		return nil
	}
	visited[resolved] = struct{}{}

	// os.ReadDir sorts by file name.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		mode := entry.Type()
		if mode&fs.ModeSymlink != 0 {
			if !r.followSymlinks {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				r.logger.Warn().Err(err).Str(logging.FieldPath, path).Msg("Skipping broken symlink")
				continue
			}
			mode = info.Mode().Type()
		}

		switch {
		case mode.IsDir():
			if name == buildInfoDir {
				continue
			}
			if _, ok := r.skipDirs[path]; ok {
				continue
			}
			if err := r.walk(path, visited, paths); err != nil {
				return err
			}
		case mode.IsRegular():
			if r.accepts(path) {
				*paths = append(*paths, path)
			}
		}
	}
	return nil
}

func (r *Reader) accepts(path string) bool {
	if strings.HasSuffix(path, debugSuffix) {
		return false
	}
	if _, ok := r.skip[path]; ok {
		return false
	}
	_, ok := r.extensions[filepath.Ext(path)]
	return ok
}
