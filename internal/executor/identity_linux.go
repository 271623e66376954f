//go:build linux

package executor

import "golang.org/x/sys/unix"

// ThreadID identifies shared-memory workers by their OS thread id.
// Thread workers lock their goroutine to an OS thread for their whole
// lifetime, so the id is stable per worker.
func ThreadID() int {
	return unix.Gettid()
}
