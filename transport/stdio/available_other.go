//go:build !linux
// +build !linux

package stdio

// Available reports no input where buffered byte counts cannot be queried.
func (c *Console) Available() (int, error) {
	c.mu.Lock()
	c.unpollable = true
	c.mu.Unlock()
	return 0, nil
}
