package goimportmap

import (
	"context"
	"errors"
	"path"
	"sync"
)

// Compile-time interface compliance checks
var _ ResolutionOracle = NoopOracle{}
var _ ResolutionOracle = (*MemoryOracle)(nil)
var _ ResolutionOracle = (*FailingOracle)(nil)
var _ ResolutionOracle = (*CountingOracle)(nil)

// NoopOracle reports every file and package as missing.
// Useful for exercising the unresolved paths without a filesystem.
type NoopOracle struct{}

// ResolveFirstExisting always reports the request as missing.
func (NoopOracle) ResolveFirstExisting(ctx context.Context, baseDir, request string) (string, bool, error) {
	return "", false, nil
}

// LocatePackageRoot always reports the package as not installed.
func (NoopOracle) LocatePackageRoot(ctx context.Context, baseDir, pkg string) (string, bool, error) {
	return "", false, nil
}

// MemoryOracle is a thread-safe in-memory oracle for testing. Requests
// resolve by exact joined path: ResolveFirstExisting answers true when
// path.Join(baseDir, request) was added with AddFile. Package roots are
// registered per package name with AddPackage, ignoring baseDir.
type MemoryOracle struct {
	mu       sync.RWMutex
	files    map[string]struct{}
	packages map[string]string
}

// NewMemoryOracle creates an empty in-memory oracle.
func NewMemoryOracle() *MemoryOracle {
	return &MemoryOracle{
		files:    make(map[string]struct{}),
		packages: make(map[string]string),
	}
}

// AddFile marks a path as existing.
func (o *MemoryOracle) AddFile(p string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.files[path.Clean(p)] = struct{}{}
}

// RemoveFile unmarks a path.
func (o *MemoryOracle) RemoveFile(p string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.files, path.Clean(p))
}

// AddPackage registers an installed package root.
func (o *MemoryOracle) AddPackage(pkg, root string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.packages[pkg] = root
}

// ResolveFirstExisting reports whether the joined path was added.
func (o *MemoryOracle) ResolveFirstExisting(ctx context.Context, baseDir, request string) (string, bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	joined := path.Join(baseDir, request)
	if _, ok := o.files[joined]; ok {
		return joined, true, nil
	}
	return "", false, nil
}

// LocatePackageRoot returns the registered root for the package.
func (o *MemoryOracle) LocatePackageRoot(ctx context.Context, baseDir, pkg string) (string, bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	root, ok := o.packages[pkg]
	return root, ok, nil
}

// FailingOracle is an oracle that always returns errors.
// Useful for testing error propagation.
type FailingOracle struct {
	ResolveErr error
	LocateErr  error
}

// NewFailingOracle creates an oracle that fails with the given errors.
func NewFailingOracle(resolveErr, locateErr error) *FailingOracle {
	if resolveErr == nil {
		resolveErr = errors.New("oracle resolve failed")
	}
	if locateErr == nil {
		locateErr = errors.New("oracle locate failed")
	}
	return &FailingOracle{ResolveErr: resolveErr, LocateErr: locateErr}
}

// ResolveFirstExisting always returns an error.
func (o *FailingOracle) ResolveFirstExisting(ctx context.Context, baseDir, request string) (string, bool, error) {
	return "", false, o.ResolveErr
}

// LocatePackageRoot always returns an error.
func (o *FailingOracle) LocatePackageRoot(ctx context.Context, baseDir, pkg string) (string, bool, error) {
	return "", false, o.LocateErr
}

// CountingOracle wraps another oracle and records every probe in order.
// Useful for asserting probe order and short-circuit behavior.
type CountingOracle struct {
	Inner ResolutionOracle

	mu       sync.Mutex
	resolves []string
	locates  []string
}

// ResolveFirstExisting records the request and delegates.
func (o *CountingOracle) ResolveFirstExisting(ctx context.Context, baseDir, request string) (string, bool, error) {
	o.mu.Lock()
	o.resolves = append(o.resolves, request)
	o.mu.Unlock()
	return o.Inner.ResolveFirstExisting(ctx, baseDir, request)
}

// LocatePackageRoot records the package name and delegates.
func (o *CountingOracle) LocatePackageRoot(ctx context.Context, baseDir, pkg string) (string, bool, error) {
	o.mu.Lock()
	o.locates = append(o.locates, pkg)
	o.mu.Unlock()
	return o.Inner.LocatePackageRoot(ctx, baseDir, pkg)
}

// ResolveCalls returns the recorded requests in probe order.
func (o *CountingOracle) ResolveCalls() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.resolves))
	copy(out, o.resolves)
	return out
}

// LocateCalls returns the recorded package lookups in probe order.
func (o *CountingOracle) LocateCalls() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.locates))
	copy(out, o.locates)
	return out
}
