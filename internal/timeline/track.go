package timeline

// TrackType identifies the media kind a track carries.
type TrackType string

const (
	TrackVideo  TrackType = "video"
	TrackAudio  TrackType = "audio"
	TrackEffect TrackType = "effect"
)

// BlendMode names how a visual track composites over the ones below it.
type BlendMode string

const (
	BlendNormal   BlendMode = "normal"
	BlendMultiply BlendMode = "multiply"
	BlendScreen   BlendMode = "screen"
	BlendOverlay  BlendMode = "overlay"
)

// Track is an ordered lane of clips of one media kind. Index is stacking
// order for video tracks and mixing order for audio tracks. Clip positions
// are not checked for overlap; overlapping visual clips resolve by clip
// order in GetClipAt.
type Track struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Type  TrackType `json:"type"`
	Index int       `json:"index"`

	Muted   bool `json:"muted"`
	Locked  bool `json:"locked"`
	Visible bool `json:"visible"`
	Solo    bool `json:"solo"`

	Opacity   float64   `json:"opacity"`
	Volume    float64   `json:"volume"`
	BlendMode BlendMode `json:"blend_mode"`

	Clips []*Clip `json:"clips"`
}

// NewTrack creates an empty track with neutral mixing attributes.
func NewTrack(id, name string, trackType TrackType, index int) *Track {
	return &Track{
		ID:        id,
		Name:      name,
		Type:      trackType,
		Index:     index,
		Visible:   true,
		Opacity:   1,
		Volume:    1,
		BlendMode: BlendNormal,
	}
}

// AddClip appends a clip. No position check is performed. Returns false
// when the track is locked.
func (t *Track) AddClip(clip *Clip) bool {
	if t.Locked {
		return false
	}
	t.Clips = append(t.Clips, clip)
	return true
}

// RemoveClip removes and returns the clip with the given id, or nil when
// it is not on this track or the track is locked.
func (t *Track) RemoveClip(clipID string) *Clip {
	if t.Locked {
		return nil
	}
	for i, clip := range t.Clips {
		if clip.ID == clipID {
			t.Clips = append(t.Clips[:i], t.Clips[i+1:]...)
			return clip
		}
	}
	return nil
}

// Clip returns the clip with the given id, or nil.
func (t *Track) Clip(clipID string) *Clip {
	for _, clip := range t.Clips {
		if clip.ID == clipID {
			return clip
		}
	}
	return nil
}

// GetClipAt returns the clip visible at time tm. When several clips
// overlap the time, the last one in track order wins; later additions
// stack on top.
func (t *Track) GetClipAt(tm float64) *Clip {
	var found *Clip
	for _, clip := range t.Clips {
		if clip.IsVisibleAt(tm) {
			found = clip
		}
	}
	return found
}

// GetClipsInRange returns clips whose [position, position+duration) span
// intersects [start, end).
func (t *Track) GetClipsInRange(start, end float64) []*Clip {
	var clips []*Clip
	for _, clip := range t.Clips {
		if clip.Position < end && clip.Position+clip.Duration > start {
			clips = append(clips, clip)
		}
	}
	return clips
}

// MoveClip repositions a clip. Returns false when the track is locked or
// the clip is missing or locked.
func (t *Track) MoveClip(clipID string, newPosition float64) bool {
	if t.Locked {
		return false
	}
	clip := t.Clip(clipID)
	if clip == nil {
		return false
	}
	return clip.Move(newPosition) == nil
}

// TrimClip adjusts a clip's source window. Returns false when the track
// is locked, or the clip is missing, locked, or the bounds are invalid.
func (t *Track) TrimClip(clipID string, newIn, newOut float64) bool {
	if t.Locked {
		return false
	}
	clip := t.Clip(clipID)
	if clip == nil {
		return false
	}
	return clip.Trim(newIn, newOut) == nil
}

// Duration is the end of the last clip on the track.
func (t *Track) Duration() float64 {
	var max float64
	for _, clip := range t.Clips {
		if end := clip.Position + clip.Duration; end > max {
			max = end
		}
	}
	return max
}
