package goimportmap

import "context"

// ResolutionOracle answers filesystem existence questions for the
// resolver and the composer. The engine treats it as an external
// collaborator: caching policy belongs to the implementation, and the
// engine itself never records negative probe results.
//
// Implementations must be safe for concurrent use.
type ResolutionOracle interface {
	// ResolveFirstExisting resolves request against baseDir and returns
	// the first existing candidate path. The boolean is false when no
	// candidate exists; absence is not an error. Errors are reserved
	// for I/O failures and context cancellation.
	ResolveFirstExisting(ctx context.Context, baseDir, request string) (string, bool, error)

	// LocatePackageRoot finds the installed directory of the named
	// package as visible from baseDir. The boolean is false when the
	// package is not installed; absence is not an error.
	LocatePackageRoot(ctx context.Context, baseDir, pkg string) (string, bool, error)
}
