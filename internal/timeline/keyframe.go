package timeline

// Easing names a keyframe interpolation curve.
type Easing string

const (
	EaseLinear Easing = "linear"
	EaseIn     Easing = "ease-in"
	EaseOut    Easing = "ease-out"
	EaseInOut  Easing = "ease-in-out"
)

// Apply maps a linear factor in [0,1] through the easing curve.
// Unknown easings fall back to linear.
func (e Easing) Apply(t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	switch e {
	case EaseIn:
		return t * t
	case EaseOut:
		return t * (2 - t)
	case EaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	default:
		return t
	}
}

// Keyframe samples an animated property at a normalized progress point.
// Time is progress through the clip in [0,1], not seconds.
type Keyframe struct {
	Time   float64 `json:"time"`
	Value  Value   `json:"value"`
	Easing Easing  `json:"easing,omitempty"`
}

// Animation describes one animated property. Keyframes are kept sorted by
// Time; behavior for duplicate times is undefined and is not repaired here.
type Animation struct {
	Property  string     `json:"property"`
	Keyframes []Keyframe `json:"keyframes"`
	Duration  float64    `json:"duration"`
}

// ValueAt interpolates the animation at normalized progress p.
// The second result is false when the property stays at its static value:
// no keyframe on one side of p, or a non-numeric keyframe value.
func (a Animation) ValueAt(p float64) (float64, bool) {
	var prev, next *Keyframe
	for i := range a.Keyframes {
		kf := &a.Keyframes[i]
		if kf.Time <= p && (prev == nil || kf.Time >= prev.Time) {
			prev = kf
		}
		if kf.Time >= p && (next == nil || kf.Time < next.Time) {
			next = kf
		}
	}
	if prev == nil || next == nil {
		return 0, false
	}
	if prev.Value.Kind != ValueNumber || next.Value.Kind != ValueNumber {
		return 0, false
	}
	if prev.Time == next.Time {
		return prev.Value.Number, true
	}

	t := (p - prev.Time) / (next.Time - prev.Time)
	t = prev.Easing.Apply(t)
	return prev.Value.Number + (next.Value.Number-prev.Value.Number)*t, true
}
