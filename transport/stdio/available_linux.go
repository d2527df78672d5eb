//go:build linux
// +build linux

package stdio

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Available asks the kernel how many input bytes are buffered (TIOCINQ,
// the Linux name of FIONREAD).
func (c *Console) Available() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unpollable {
		return 0, nil
	}
	n, err := unix.IoctlGetInt(c.inFd, unix.TIOCINQ)
	if err != nil {
		if errors.Is(err, unix.ENOTTY) || errors.Is(err, unix.EINVAL) {
			c.unpollable = true
			return 0, nil
		}
		return 0, fmt.Errorf("console available: %w", err)
	}
	return n, nil
}
