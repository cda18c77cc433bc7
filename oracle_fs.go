package goimportmap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/albertocavalcante/go-importmap/internal/builtins"
	"github.com/albertocavalcante/go-importmap/packagejson"
)

// DefaultPackageCacheSize bounds the FSOracle package-root cache.
const DefaultPackageCacheSize = 512

// defaultExtensions is the probe order for extensionless requests. The
// empty entry probes the request exactly as written.
var defaultExtensions = []string{"", ".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs", ".json"}

// defaultConditions drive conditional "exports" resolution.
var defaultConditions = []string{"development"}

// FSOracle is the default ResolutionOracle, backed by the real
// filesystem. It understands the node_modules layout: package roots are
// found by walking node_modules directories upward from the requesting
// directory to the configured project root, and entry points resolve
// through each package's manifest.
//
// Located package roots go through a size-bounded LRU cache; parsed
// manifests are cached per root. Negative probes are never cached.
// FSOracle is safe for concurrent use.
type FSOracle struct {
	root       string
	extensions []string
	conditions []string
	cacheSize  int

	roots     *lru.Cache[string, string]
	manifests sync.Map // map[string]*packagejson.Manifest keyed by package root
}

// FSOracleOption configures an FSOracle.
type FSOracleOption func(*FSOracle)

// WithProbeExtensions replaces the extension probe order. An empty
// entry probes the request exactly as written.
func WithProbeExtensions(exts ...string) FSOracleOption {
	return func(o *FSOracle) {
		o.extensions = exts
	}
}

// WithManifestConditions sets the conditions used when resolving
// through "exports" maps. The "default" condition is always honored.
func WithManifestConditions(conditions ...string) FSOracleOption {
	return func(o *FSOracle) {
		o.conditions = conditions
	}
}

// WithPackageCacheSize bounds the package-root cache.
func WithPackageCacheSize(size int) FSOracleOption {
	return func(o *FSOracle) {
		o.cacheSize = size
	}
}

// NewFSOracle creates an oracle rooted at the project directory. The
// root bounds upward node_modules walks; probes may read anywhere a
// request points.
func NewFSOracle(root string, opts ...FSOracleOption) *FSOracle {
	o := &FSOracle{
		root:       filepath.Clean(root),
		extensions: defaultExtensions,
		conditions: defaultConditions,
		cacheSize:  DefaultPackageCacheSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.cacheSize <= 0 {
		o.cacheSize = DefaultPackageCacheSize
	}
	// lru.New only fails for non-positive sizes.
	o.roots, _ = lru.New[string, string](o.cacheSize)
	return o
}

// ResolveFirstExisting resolves request against baseDir and returns the
// first candidate that exists on disk.
//
// Relative and absolute requests probe the joined path with each
// configured extension, then the index files underneath it when the
// path is a directory. Bare requests locate the package root first and
// then resolve the subpath the same way, except that a package with an
// "exports" map is held to it: the map's answer is the only candidate.
// Node.js core modules never touch the disk and always report missing.
func (o *FSOracle) ResolveFirstExisting(ctx context.Context, baseDir, request string) (string, bool, error) {
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	default:
	}

	if request == "" {
		return "", false, nil
	}
	if builtins.IsBuiltin(request) {
		// Provided by the runtime, never installed.
		return "", false, nil
	}
	if filepath.IsAbs(request) {
		return o.probePath(ctx, filepath.Clean(request))
	}
	if isRelative(request) {
		return o.probePath(ctx, filepath.Join(baseDir, request))
	}
	return o.resolvePackage(ctx, baseDir, request)
}

// LocatePackageRoot walks node_modules directories upward from baseDir
// to the configured root, returning the first installed copy of pkg. A
// hit requires a readable package.json in the candidate directory.
// Positive results are cached until Invalidate.
func (o *FSOracle) LocatePackageRoot(ctx context.Context, baseDir, pkg string) (string, bool, error) {
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	default:
	}

	if pkg == "" {
		return "", false, nil
	}
	key := baseDir + "\x00" + pkg
	if root, ok := o.roots.Get(key); ok {
		return root, true, nil
	}

	dir := filepath.Clean(baseDir)
	for {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		candidate := filepath.Join(dir, "node_modules", pkg)
		ok, err := statFile(filepath.Join(candidate, "package.json"))
		if err != nil {
			return "", false, err
		}
		if ok {
			o.roots.Add(key, candidate)
			return candidate, true, nil
		}
		if dir == o.root {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Invalidate drops every cached package root and manifest. Call it
// after node_modules changes on disk.
func (o *FSOracle) Invalidate() {
	o.roots.Purge()
	o.manifests.Clear()
}

// resolvePackage resolves a bare specifier: package root first, then
// the subpath or the manifest entry point.
func (o *FSOracle) resolvePackage(ctx context.Context, baseDir, request string) (string, bool, error) {
	pkg, subpath := splitPackage(request)
	root, ok, err := o.LocatePackageRoot(ctx, baseDir, pkg)
	if err != nil || !ok {
		return "", false, err
	}

	manifest, err := o.manifest(root)
	if err != nil {
		return "", false, err
	}

	if manifest != nil && manifest.Exports != nil {
		target, ok := manifest.ResolveExport(subpath, o.conditions)
		if !ok {
			return "", false, nil
		}
		candidate := filepath.Join(root, target)
		found, err := statFile(candidate)
		if err != nil || !found {
			return "", false, err
		}
		return candidate, true, nil
	}

	if subpath != "" {
		return o.probePath(ctx, filepath.Join(root, subpath))
	}
	if manifest != nil && manifest.Main != "" {
		if path, found, err := o.probePath(ctx, filepath.Join(root, manifest.Main)); err != nil || found {
			return path, found, err
		}
	}
	return o.probePath(ctx, filepath.Join(root, "index"))
}

// manifest returns the parsed package.json for a located root, cached
// per root. A missing manifest is not an error.
func (o *FSOracle) manifest(root string) (*packagejson.Manifest, error) {
	if cached, ok := o.manifests.Load(root); ok {
		return cached.(*packagejson.Manifest), nil
	}
	m, err := packagejson.Load(filepath.Join(root, "package.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	o.manifests.Store(root, m)
	return m, nil
}

// probePath tries base with each configured extension, then the index
// files under base when it is a directory.
func (o *FSOracle) probePath(ctx context.Context, base string) (string, bool, error) {
	for _, ext := range o.extensions {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		candidate := base + ext
		ok, err := statFile(candidate)
		if err != nil {
			return "", false, err
		}
		if ok {
			return candidate, true, nil
		}
	}

	isDir, err := statDir(base)
	if err != nil || !isDir {
		return "", false, err
	}
	index := filepath.Join(base, "index")
	for _, ext := range o.extensions {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		candidate := index + ext
		ok, err := statFile(candidate)
		if err != nil {
			return "", false, err
		}
		if ok {
			return candidate, true, nil
		}
	}
	return "", false, nil
}

// isRelative reports whether a request is dot-relative.
func isRelative(request string) bool {
	return request == "." || request == ".." ||
		strings.HasPrefix(request, "./") || strings.HasPrefix(request, "../")
}

// splitPackage splits a bare specifier into the package name and the
// subpath inside it. Scoped packages keep their first two segments.
func splitPackage(request string) (pkg, subpath string) {
	segments := 1
	if strings.HasPrefix(request, "@") {
		segments = 2
	}
	idx := 0
	for i := 0; i < segments; i++ {
		next := strings.IndexByte(request[idx:], '/')
		if next < 0 {
			return request, ""
		}
		idx += next + 1
	}
	return request[:idx-1], request[idx:]
}

// statFile reports whether path exists as a regular file. A file in
// the middle of the path behaves like a missing directory.
func statFile(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return false, nil
		}
		return false, fmt.Errorf("probe %s: %w", path, err)
	}
	return fi.Mode().IsRegular(), nil
}

// statDir reports whether path exists as a directory.
func statDir(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return false, nil
		}
		return false, fmt.Errorf("probe %s: %w", path, err)
	}
	return fi.IsDir(), nil
}

// Verify FSOracle implements ResolutionOracle
var _ ResolutionOracle = (*FSOracle)(nil)
