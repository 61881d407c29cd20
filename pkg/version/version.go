package version

// Build information. Populated at build time via -ldflags:
//
//	-X github.com/prasmono/adb-to-local-copier/pkg/version.Version=v0.2.0
//	-X github.com/prasmono/adb-to-local-copier/pkg/version.GitCommit=$(git rev-parse HEAD)
//	-X github.com/prasmono/adb-to-local-copier/pkg/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
