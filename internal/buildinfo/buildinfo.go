package buildinfo

// Set through -ldflags at build time.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)
