//go:build !linux

package executor

// ThreadID is not available outside linux and always returns 0
func ThreadID() int {
	return 0
}
