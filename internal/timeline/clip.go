package timeline

import (
	"time"

	"github.com/google/uuid"
)

// MediaType identifies the kind of media a clip references.
type MediaType string

const (
	MediaVideo  MediaType = "video"
	MediaAudio  MediaType = "audio"
	MediaImage  MediaType = "image"
	MediaText   MediaType = "text"
	MediaEffect MediaType = "effect"
)

// Transform is the spatial state of a clip at a point in time.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
	Rotation float64 `json:"rotation"`
	Opacity  float64 `json:"opacity"`
}

// DefaultTransform returns the identity transform.
func DefaultTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1, Opacity: 1}
}

// Filter is a named effect descriptor with a closed parameter set.
type Filter struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	Enabled    bool             `json:"enabled"`
	Parameters map[string]Value `json:"parameters,omitempty"`
}

// ClipMetadata carries source-level media information.
type ClipMetadata struct {
	SourceDuration float64   `json:"source_duration"`
	FrameRate      float64   `json:"frame_rate"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	CreatedAt      time.Time `json:"created_at"`
	ModifiedAt     time.Time `json:"modified_at"`
}

// ProbeResult is what a media metadata probe discovers about a source.
type ProbeResult struct {
	Duration float64
	Width    int
	Height   int
}

// Clip is a trimmed, positioned reference to a media source. All times are
// in seconds. Duration is always OutPoint - InPoint; mutations go through
// Trim/Move so the invariant holds.
type Clip struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Type   MediaType `json:"type"`
	Source string    `json:"source"`

	InPoint  float64 `json:"in_point"`
	OutPoint float64 `json:"out_point"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`

	Muted  bool    `json:"muted"`
	Locked bool    `json:"locked"`
	Volume float64 `json:"volume"`
	Speed  float64 `json:"speed"`

	Transform  Transform    `json:"transform"`
	Filters    []Filter     `json:"filters,omitempty"`
	Animations []Animation  `json:"animations,omitempty"`
	Metadata   ClipMetadata `json:"metadata"`
}

// NewClip creates a clip covering the whole source. The supplied duration
// is provisional; RefineFromProbe applies the discovered value later.
func NewClip(source, name string, mediaType MediaType, knownDuration float64) *Clip {
	now := time.Now()
	return &Clip{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      mediaType,
		Source:    source,
		InPoint:   0,
		OutPoint:  knownDuration,
		Duration:  knownDuration,
		Volume:    1,
		Speed:     1,
		Transform: DefaultTransform(),
		Metadata: ClipMetadata{
			SourceDuration: knownDuration,
			FrameRate:      30,
			Width:          1920,
			Height:         1080,
			CreatedAt:      now,
			ModifiedAt:     now,
		},
	}
}

// RefineFromProbe applies asynchronously discovered media metadata.
// The out point never exceeds the discovered duration, which guards
// against an out-of-range trim when probe results arrive late.
func (c *Clip) RefineFromProbe(result ProbeResult) {
	if result.Duration > 0 {
		c.Metadata.SourceDuration = result.Duration
		if c.OutPoint > result.Duration {
			c.OutPoint = result.Duration
		}
		if c.InPoint > c.OutPoint {
			c.InPoint = c.OutPoint
		}
		c.Duration = c.OutPoint - c.InPoint
	}
	if result.Width > 0 {
		c.Metadata.Width = result.Width
	}
	if result.Height > 0 {
		c.Metadata.Height = result.Height
	}
	c.Metadata.ModifiedAt = time.Now()
}

// Trim updates the source window. Bounds must satisfy
// 0 <= newIn < newOut <= source duration.
func (c *Clip) Trim(newIn, newOut float64) error {
	if c.Locked {
		return ErrLocked
	}
	if newIn >= newOut || newIn < 0 || newOut > c.Metadata.SourceDuration {
		return ErrInvalidRange
	}
	c.InPoint = newIn
	c.OutPoint = newOut
	c.Duration = newOut - newIn
	c.Metadata.ModifiedAt = time.Now()
	return nil
}

// Move places the clip at a new timeline position. Collision with other
// clips on the track is the caller's concern.
func (c *Clip) Move(newPosition float64) error {
	if c.Locked {
		return ErrLocked
	}
	if newPosition < 0 {
		return ErrInvalidRange
	}
	c.Position = newPosition
	c.Metadata.ModifiedAt = time.Now()
	return nil
}

// IsVisibleAt reports whether the clip contributes output at time t.
// Both span endpoints are inclusive.
func (c *Clip) IsVisibleAt(t float64) bool {
	if c.Muted || c.Transform.Opacity <= 0 {
		return false
	}
	return t >= c.Position && t <= c.Position+c.Duration
}

// SampleTransformAt returns the transform snapshot at time t, with every
// animated numeric property overriding its static value. Keyframe times
// are normalized progress through the clip.
func (c *Clip) SampleTransformAt(t float64) (Transform, error) {
	if c.Duration == 0 {
		return Transform{}, ErrZeroDuration
	}
	p := (t - c.Position) / c.Duration

	result := c.Transform
	for _, anim := range c.Animations {
		value, ok := anim.ValueAt(p)
		if !ok {
			continue
		}
		switch anim.Property {
		case "x":
			result.X = value
		case "y":
			result.Y = value
		case "scale_x":
			result.ScaleX = value
		case "scale_y":
			result.ScaleY = value
		case "rotation":
			result.Rotation = value
		case "opacity":
			result.Opacity = value
		}
	}
	return result, nil
}

// Clone returns a deep copy with a fresh id. Split uses it so both halves
// carry the original transform, filters, and animations.
func (c *Clip) Clone() *Clip {
	dup := *c
	dup.ID = uuid.NewString()
	dup.Filters = make([]Filter, len(c.Filters))
	for i, f := range c.Filters {
		dup.Filters[i] = f
		if f.Parameters != nil {
			params := make(map[string]Value, len(f.Parameters))
			for k, v := range f.Parameters {
				params[k] = v
			}
			dup.Filters[i].Parameters = params
		}
	}
	dup.Animations = make([]Animation, len(c.Animations))
	for i, a := range c.Animations {
		dup.Animations[i] = a
		dup.Animations[i].Keyframes = append([]Keyframe(nil), a.Keyframes...)
	}
	return &dup
}
