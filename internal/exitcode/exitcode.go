package exitcode

const (
	Success           = 0
	RuntimeFailure    = 1
	InvalidUsage      = 2
	InvalidConfig     = 3
	ConnectionFailure = 4
	PartialSuccess    = 5
	ValidationFailed  = 6
	Interrupted       = 130
)
