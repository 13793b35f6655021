package constants

const (
	Version = `0.1.0`

	ConfigDir      = `/.stash/`
	ConfigFile     = `cfg`
	ConfigFileType = `yaml`

	NotesSubdir = `notes`
)
