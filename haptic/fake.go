package haptic

import "sync"

// Fake records pulses instead of sounding them.
type Fake struct {
	mu          sync.Mutex
	pulses      int
	intensities []float64
}

func (f *Fake) Pulse() {
	f.mu.Lock()
	f.pulses++
	f.mu.Unlock()
}

func (f *Fake) PulseIntensity(intensity float64) {
	f.mu.Lock()
	f.intensities = append(f.intensities, intensity)
	f.mu.Unlock()
}

// Pulses counts discrete Pulse calls.
func (f *Fake) Pulses() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pulses
}

func (f *Fake) Intensities() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.intensities...)
}
