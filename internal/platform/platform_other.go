//go:build !linux && !windows

package platform

import "context"

// otherFacts is the fallback osFacts for platforms without a dedicated
// implementation (darwin, *bsd). Everything platform-only reports
// ErrUnavailable; gopsutil still covers the generic capabilities.
type otherFacts struct{}

// newOSFacts returns the fallback implementation.
func newOSFacts() osFacts {
	return &otherFacts{}
}

func (f *otherFacts) cpuFrequency(context.Context) (float64, float64, error) {
	return 0, 0, ErrUnavailable
}

func (f *otherFacts) memoryModules(context.Context) ([]MemoryModule, int, int, error) {
	return nil, 0, 0, ErrUnavailable
}

func (f *otherFacts) partitionMedia(string) MediaType {
	return MediaUnknown
}

func (f *otherFacts) physicalDisks(context.Context) ([]PhysicalDiskFacts, error) {
	return nil, ErrUnavailable
}

func (f *otherFacts) interfaceSpeed(string) int {
	return 0
}

func (f *otherFacts) defaultGateway(context.Context) (string, error) {
	return "", ErrUnavailable
}

func (f *otherFacts) temperaturesFallback(context.Context) (map[string]float64, error) {
	return nil, ErrUnavailable
}

func (f *otherFacts) startupEntries(context.Context) ([]StartupEntry, error) {
	return nil, ErrUnavailable
}

func (f *otherFacts) drivers(context.Context) ([]DriverFacts, error) {
	return nil, ErrUnavailable
}

func (f *otherFacts) security(context.Context) (SecurityFacts, error) {
	return SecurityFacts{}, ErrUnavailable
}
