//go:build linux

package tcp

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isTransient reports accept/read failures that only mean "try again on the
// next readiness pass", not a broken endpoint.
func isTransient(err error) bool {
	var errno unix.Errno
	if errors.As(err, &errno) {
		switch errno {
		case unix.EAGAIN, unix.EINTR:
			return true
		case unix.ECONNABORTED, unix.EPROTO:
			return true // peer gave up before we accepted
		}
	}
	return false
}
