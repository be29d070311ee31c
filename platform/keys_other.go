//go:build !windows

package platform

type stubKeys struct{}

// NewKeys returns a key injector that reports ErrUnsupported; selection
// capture degrades to plain clipboard reads on this platform.
func NewKeys() Keys {
	return stubKeys{}
}

func (stubKeys) SendCopy() error  { return ErrUnsupported }
func (stubKeys) SendPaste() error { return ErrUnsupported }
