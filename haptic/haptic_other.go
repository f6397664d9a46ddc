//go:build !linux && !darwin

package haptic

import "errors"

// No click playback on this platform.

const clickDuration = 0.03

func playClick([]int16) {}

func playClickSync([]int16) error {
	return errors.New("haptic clicks not supported on this platform")
}
