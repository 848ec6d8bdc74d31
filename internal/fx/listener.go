package fx

// SpatializationListener is the device-side receiver position that
// spatializers resolve their relative position/direction against. A
// channel with a spatializer but no listener skips spatialization
// silently for that period, per the pull algorithm.
type SpatializationListener struct {
	x, y, z          float32
	dx, dy, dz       float32 // facing direction
	vx, vy, vz       float32 // velocity; stored only, no doppler shift is applied
	worldUp          [3]float32
}

// NewSpatializationListener constructs a listener facing -Z at the origin.
func NewSpatializationListener() *SpatializationListener {
	return &SpatializationListener{
		dz:      -1,
		worldUp: [3]float32{0, 1, 0},
	}
}

// SetPosition sets the listener's world-space position.
func (l *SpatializationListener) SetPosition(x, y, z float32) { l.x, l.y, l.z = x, y, z }

// Position returns the listener's world-space position.
func (l *SpatializationListener) Position() (x, y, z float32) { return l.x, l.y, l.z }

// SetDirection sets the listener's facing direction.
func (l *SpatializationListener) SetDirection(x, y, z float32) { l.dx, l.dy, l.dz = x, y, z }

// Direction returns the listener's facing direction.
func (l *SpatializationListener) Direction() (x, y, z float32) { return l.dx, l.dy, l.dz }

// SetVelocity sets the listener's velocity. Spatializer.Process does not
// read it, so no doppler shift is applied.
func (l *SpatializationListener) SetVelocity(x, y, z float32) { l.vx, l.vy, l.vz = x, y, z }

// Velocity returns the listener's velocity.
func (l *SpatializationListener) Velocity() (x, y, z float32) { return l.vx, l.vy, l.vz }
