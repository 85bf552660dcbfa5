// Package exitcode defines the process exit codes. Individual delivery
// failures are reported on stderr but do not change the exit code; a run
// that got as far as sending exits with Success.
package exitcode

const (
	Success         = 0
	Failure         = 1
	ConfigError     = 2
	FormatError     = 3
	TemplateError   = 4
	ConnectionError = 5
	Cancelled       = 6
)
