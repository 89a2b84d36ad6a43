package version

// Set at build time with -ldflags.
var (
	PackageName = "glidein-submit"
	Version     = "undefined"
	CommitHash  = "undefined"
	BuildDate   = "undefined"
)
