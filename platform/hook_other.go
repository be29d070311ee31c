//go:build !windows

package platform

// stubHook stands in on platforms without a global keyboard hook. Chords can
// be armed and disarmed, but Install reports ErrUnsupported so callers can
// run with hotkeys disabled instead of failing outright.
type stubHook struct{}

// NewHook returns a hook that cannot be installed on this platform.
func NewHook() Hook {
	return stubHook{}
}

func (stubHook) Install(onFire func(Combo)) error { return ErrUnsupported }
func (stubHook) Add(combo Combo) error            { return nil }
func (stubHook) Remove(combo Combo)               {}
func (stubHook) Uninstall()                       {}
