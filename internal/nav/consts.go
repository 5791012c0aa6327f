package nav

const (
	DefaultCellSize        = 50.0 // km per grid cell edge
	DefaultDiscoveryRadius = 10.0 // km
	SessionIdleSeconds     = 300.0
)
