package executor

import "os"

// IdentityFunc reports the identity of the worker running the current call
type IdentityFunc func() int

// ProcessID identifies isolated workers by their process id
func ProcessID() int {
	return os.Getpid()
}
