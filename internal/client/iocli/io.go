// Package iocli abstracts terminal input and output for CLI commands.
package iocli

// IO is what commands use to talk to the user
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	// ReadInput reads one line, trimmed
	ReadInput(prompt string) (string, error)
	// ReadSecret reads one line without echo when attached to a terminal
	ReadSecret(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
