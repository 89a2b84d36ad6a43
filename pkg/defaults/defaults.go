package defaults

const (
	// ConfigFile is the default path of the site configuration file.
	ConfigFile = "glidein.config"

	// EnvPrefix is the prefix for environment variables bound to flags.
	EnvPrefix = "GLIDEIN"

	// ConfigurationDir holds the optional tool settings file.
	ConfigurationDir = "$HOME/.config/glidein/"

	// TarballName is the glidein tarball linked into the job directory.
	TarballName = "glidein.tar.gz"

	// StartScriptName is the script that starts the glidein.
	StartScriptName = "glidein_start.sh"

	// SubmitDelaySeconds is how long the glidein server is left alone between submit cycles.
	SubmitDelaySeconds = 300

	// OutputDir is where batch stdout/stderr is written on the cluster.
	OutputDir = "$HOME/glidein/out"

	// DataDirPerm is the permissions to use for data folders.
	DataDirPerm = 0o755

	// DataFilePerm is the permissions to use for data files.
	DataFilePerm = 0o644
)
