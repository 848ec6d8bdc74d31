package fx

import "math"

// AttenuationModel selects the distance-falloff curve a Spatializer
// applies between MinDistance and MaxDistance.
type AttenuationModel int

const (
	AttenuationNone AttenuationModel = iota
	AttenuationInverse
	AttenuationLinear
	AttenuationExponential
)

// Positioning selects whether a Spatializer's position/direction/velocity
// are interpreted in world space or relative to the listener.
type Positioning int

const (
	PositioningAbsolute Positioning = iota
	PositioningRelative
)

// Spatializer applies 3-D positional attenuation, a directional cone, and
// an equal-power stereo placement cue to a source. The distance-falloff
// formulas below follow the standard OpenAL-style attenuation curves;
// spec.md only names the enum, the kernel this was distilled from is a
// closed FFI binding with no exposed math to port.
type Spatializer struct {
	channels uint32

	masterVolume float32

	x, y, z    float32
	dx, dy, dz float32
	vx, vy, vz float32

	attenuationModel AttenuationModel
	positioning      Positioning

	rolloff      float32
	minGain      float32
	maxGain      float32
	minDistance  float32
	maxDistance  float32

	coneInnerAngle float32
	coneOuterAngle float32
	coneOuterGain  float32

	dopplerFactor                 float32
	directionalAttenuationFactor float32
}

// NewSpatializer constructs a Spatializer with engine-standard defaults:
// inverse attenuation, absolute positioning, unity rolloff, full gain
// range, a 1-unit minimum distance, and an omnidirectional cone.
func NewSpatializer(channels uint32, sampleRate uint32) (*Spatializer, error) {
	if err := ValidateChannels(channels); err != nil {
		return nil, err
	}
	if err := ValidateSampleRate(sampleRate); err != nil {
		return nil, err
	}
	return &Spatializer{
		channels:                     channels,
		masterVolume:                 1.0,
		dz:                           -1,
		attenuationModel:             AttenuationInverse,
		positioning:                  PositioningAbsolute,
		rolloff:                      1.0,
		minGain:                      0.0,
		maxGain:                      1.0,
		minDistance:                  1.0,
		maxDistance:                  math.MaxFloat32,
		coneInnerAngle:               2 * math.Pi,
		coneOuterAngle:               2 * math.Pi,
		coneOuterGain:                0.0,
		dopplerFactor:                1.0,
		directionalAttenuationFactor: 1.0,
	}, nil
}

func (s *Spatializer) SetMasterVolume(v float32)              { s.masterVolume = clamp(v, 0, 1) }
func (s *Spatializer) MasterVolume() float32                  { return s.masterVolume }
func (s *Spatializer) SetPosition(x, y, z float32)             { s.x, s.y, s.z = x, y, z }
func (s *Spatializer) Position() (x, y, z float32)             { return s.x, s.y, s.z }
func (s *Spatializer) SetDirection(x, y, z float32)            { s.dx, s.dy, s.dz = x, y, z }
func (s *Spatializer) Direction() (x, y, z float32)            { return s.dx, s.dy, s.dz }
func (s *Spatializer) SetVelocity(x, y, z float32)             { s.vx, s.vy, s.vz = x, y, z }
func (s *Spatializer) Velocity() (x, y, z float32)             { return s.vx, s.vy, s.vz }
func (s *Spatializer) SetAttenuationModel(m AttenuationModel)  { s.attenuationModel = m }
func (s *Spatializer) AttenuationModel() AttenuationModel      { return s.attenuationModel }
func (s *Spatializer) SetPositioning(p Positioning)            { s.positioning = p }
func (s *Spatializer) Positioning() Positioning                { return s.positioning }
func (s *Spatializer) SetRolloff(r float32)                    { s.rolloff = r }
func (s *Spatializer) Rolloff() float32                        { return s.rolloff }
func (s *Spatializer) SetMinGain(g float32)                    { s.minGain = g }
func (s *Spatializer) MinGain() float32                        { return s.minGain }
func (s *Spatializer) SetMaxGain(g float32)                    { s.maxGain = g }
func (s *Spatializer) MaxGain() float32                        { return s.maxGain }
func (s *Spatializer) SetMinDistance(d float32)                { s.minDistance = d }
func (s *Spatializer) MinDistance() float32                    { return s.minDistance }
func (s *Spatializer) SetMaxDistance(d float32)                { s.maxDistance = d }
func (s *Spatializer) MaxDistance() float32                    { return s.maxDistance }
func (s *Spatializer) SetDopplerFactor(f float32)               { s.dopplerFactor = f }
func (s *Spatializer) DopplerFactor() float32                   { return s.dopplerFactor }
func (s *Spatializer) SetDirectionalAttenuationFactor(f float32) { s.directionalAttenuationFactor = f }
func (s *Spatializer) DirectionalAttenuationFactor() float32    { return s.directionalAttenuationFactor }

func (s *Spatializer) SetCone(innerAngle, outerAngle, outerGain float32) {
	s.coneInnerAngle = innerAngle
	s.coneOuterAngle = outerAngle
	s.coneOuterGain = outerGain
}

func (s *Spatializer) Cone() (innerAngle, outerAngle, outerGain float32) {
	return s.coneInnerAngle, s.coneOuterAngle, s.coneOuterGain
}

// GetRelativePositionAndDirection returns this source's position and
// direction expressed relative to listener, regardless of the
// configured Positioning mode.
func (s *Spatializer) GetRelativePositionAndDirection(listener *SpatializationListener) (pos, dir [3]float32) {
	if s.positioning == PositioningRelative {
		return [3]float32{s.x, s.y, s.z}, [3]float32{s.dx, s.dy, s.dz}
	}
	lx, ly, lz := listener.Position()
	return [3]float32{s.x - lx, s.y - ly, s.z - lz}, [3]float32{s.dx, s.dy, s.dz}
}

func (s *Spatializer) attenuationGain(distance float32) float32 {
	if s.attenuationModel == AttenuationNone {
		return 1.0
	}

	d := distance
	if d < s.minDistance {
		d = s.minDistance
	}

	var gain float32
	switch s.attenuationModel {
	case AttenuationInverse:
		denom := s.minDistance + s.rolloff*(d-s.minDistance)
		if denom <= 0 {
			gain = 1.0
		} else {
			gain = s.minDistance / denom
		}
	case AttenuationLinear:
		span := s.maxDistance - s.minDistance
		if span <= 0 {
			gain = 1.0
		} else {
			gain = 1.0 - s.rolloff*(d-s.minDistance)/span
		}
	case AttenuationExponential:
		if s.minDistance <= 0 {
			gain = 1.0
		} else {
			gain = float32(math.Pow(float64(d/s.minDistance), float64(-s.rolloff)))
		}
	default:
		gain = 1.0
	}

	if gain < s.minGain {
		gain = s.minGain
	}
	if gain > s.maxGain {
		gain = s.maxGain
	}
	return gain
}

func (s *Spatializer) coneGain(pos [3]float32) float32 {
	if s.coneInnerAngle >= 2*math.Pi {
		return 1.0
	}
	// Angle between the source's facing direction and the vector toward
	// the listener (approximated here by -pos, the direction from the
	// source to the relative listener origin).
	dirLen := float32(math.Sqrt(float64(s.dx*s.dx + s.dy*s.dy + s.dz*s.dz)))
	toListenerLen := float32(math.Sqrt(float64(pos[0]*pos[0] + pos[1]*pos[1] + pos[2]*pos[2])))
	if dirLen == 0 || toListenerLen == 0 {
		return 1.0
	}

	dot := (s.dx*-pos[0] + s.dy*-pos[1] + s.dz*-pos[2]) / (dirLen * toListenerLen)
	if dot > 1 {
		dot = 1
	}
	if dot < -1 {
		dot = -1
	}
	angle := float32(math.Acos(float64(dot))) * 2

	if angle <= s.coneInnerAngle {
		return 1.0
	}
	if angle >= s.coneOuterAngle {
		return s.coneOuterGain
	}

	span := s.coneOuterAngle - s.coneInnerAngle
	if span <= 0 {
		return s.coneOuterGain
	}
	t := (angle - s.coneInnerAngle) / span
	return 1.0 - t*(1.0-s.coneOuterGain)
}

// Process applies attenuation, cone, and an equal-power stereo placement
// cue derived from the source's relative X position, to frameCount frames
// of input into output.
func (s *Spatializer) Process(listener *SpatializationListener, input []float32, output []float32, frameCount uint64) error {
	expected := int(frameCount) * int(s.channels)
	if len(input) < expected {
		return &ErrBufferSizeMismatch{Expected: expected, Actual: len(input)}
	}
	if len(output) < expected {
		return &ErrBufferSizeMismatch{Expected: expected, Actual: len(output)}
	}

	pos, _ := s.GetRelativePositionAndDirection(listener)
	distance := float32(math.Sqrt(float64(pos[0]*pos[0] + pos[1]*pos[1] + pos[2]*pos[2])))

	gain := s.attenuationGain(distance) * s.coneGain(pos) * s.masterVolume

	ch := int(s.channels)
	if ch < 2 {
		for i := 0; i < expected; i++ {
			output[i] = input[i] * gain
		}
		return nil
	}

	// Place the source left/right using the same equal-power law as
	// Panner, biased by the relative X position clamped to [-1,1].
	pan := clamp(pos[0]/clampPositive(s.maxDistance), -1, 1)
	angle := float64(pan+1) * math.Pi / 4
	left := float32(math.Cos(angle)) * gain
	right := float32(math.Sin(angle)) * gain

	for f := 0; f < int(frameCount); f++ {
		base := f * ch
		output[base] = input[base] * left
		output[base+1] = input[base+1] * right
		for c := 2; c < ch; c++ {
			output[base+c] = input[base+c] * gain
		}
	}
	return nil
}
