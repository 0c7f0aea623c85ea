package cli

import "io"

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

type GlobalOptions struct {
	ConfigPath string
	LogFile    string
	APIURL     string
	APIToken   string
	Username   string
	Password   string
	JSON       bool
	Quiet      bool
	Verbose    bool
	NoColor    bool
	NoInput    bool
}

type AppContext struct {
	Build BuildInfo
	IO    IOStreams
	Opts  GlobalOptions

	// ResolveToken and PromptPassword default to the keychain lookup and the
	// terminal prompt.
	ResolveToken   func(apiURL string) (string, error)
	PromptPassword func(username string) (string, error)
}
