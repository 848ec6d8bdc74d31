package graph

// Attribute identifies a settable/gettable parameter shared across
// device, mixer, and channel nodes.
type Attribute int

const (
	AttributeUnknown Attribute = iota
	AttributeSampleRate
	AttributeVolume
	AttributePan
	AttributeFXPitch
	AttributeFXTempo
	AttributeAudioFX
	AttributeAudioSpatialization
)

// AttributeFromName maps the C-ABI string form of an attribute to its
// Attribute value. Unknown names map to AttributeUnknown.
func AttributeFromName(name string) Attribute {
	switch name {
	case "SampleRate":
		return AttributeSampleRate
	case "Volume":
		return AttributeVolume
	case "Pan":
		return AttributePan
	case "FXPitch":
		return AttributeFXPitch
	case "FXTempo":
		return AttributeFXTempo
	case "AudioFX":
		return AttributeAudioFX
	case "AudioSpatialization":
		return AttributeAudioSpatialization
	default:
		return AttributeUnknown
	}
}

func (a Attribute) String() string {
	switch a {
	case AttributeSampleRate:
		return "SampleRate"
	case AttributeVolume:
		return "Volume"
	case AttributePan:
		return "Pan"
	case AttributeFXPitch:
		return "FXPitch"
	case AttributeFXTempo:
		return "FXTempo"
	case AttributeAudioFX:
		return "AudioFX"
	case AttributeAudioSpatialization:
		return "AudioSpatialization"
	default:
		return "Unknown"
	}
}
