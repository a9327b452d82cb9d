package version

// Set at build time via -ldflags "-X github.com/alex-ilgayev/socsim/pkg/version.Version=..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
