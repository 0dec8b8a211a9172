package version

import "runtime"

// Build metadata, injected at link time via -ldflags.
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
	GoInfo        = runtime.Version()
)
