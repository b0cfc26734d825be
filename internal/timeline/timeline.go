package timeline

import "fmt"

// Resolution is an output frame size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Timeline holds the ordered video and audio track groups plus global
// playback state for one project. Duration is always derived from track
// contents, never stored, so it cannot drift.
type Timeline struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	VideoTracks []*Track `json:"video_tracks"`
	AudioTracks []*Track `json:"audio_tracks"`

	FrameRate  float64    `json:"frame_rate"`
	Resolution Resolution `json:"resolution"`

	CurrentTime  float64 `json:"current_time"`
	Playing      bool    `json:"playing"`
	PlaybackRate float64 `json:"playback_rate"`

	// Per-type id counters. Monotonic across deletions so track ids are
	// never reused within a timeline.
	VideoSeq  int `json:"video_seq"`
	AudioSeq  int `json:"audio_seq"`
	EffectSeq int `json:"effect_seq"`
}

// NewTimeline creates an empty timeline with default playback settings.
func NewTimeline(id, name string) *Timeline {
	return &Timeline{
		ID:           id,
		Name:         name,
		FrameRate:    30,
		Resolution:   Resolution{Width: 1920, Height: 1080},
		PlaybackRate: 1,
	}
}

// AddTrack creates a track of the given type and inserts it at index, or
// appends when index is omitted or out of range. Video and effect tracks
// join the video group; effect tracks stack like video. The new track id
// comes from a per-type counter that never reuses ids.
func (tl *Timeline) AddTrack(trackType TrackType, index ...int) *Track {
	var id string
	switch trackType {
	case TrackAudio:
		tl.AudioSeq++
		id = fmt.Sprintf("a%d", tl.AudioSeq)
	case TrackEffect:
		tl.EffectSeq++
		id = fmt.Sprintf("e%d", tl.EffectSeq)
	default:
		tl.VideoSeq++
		id = fmt.Sprintf("v%d", tl.VideoSeq)
	}

	group := &tl.VideoTracks
	if trackType == TrackAudio {
		group = &tl.AudioTracks
	}

	at := len(*group)
	if len(index) > 0 && index[0] >= 0 && index[0] < len(*group) {
		at = index[0]
	}

	track := NewTrack(id, fmt.Sprintf("%s %d", trackType, at+1), trackType, at)
	*group = append(*group, nil)
	copy((*group)[at+1:], (*group)[at:])
	(*group)[at] = track
	tl.reindex(*group)
	return track
}

// RemoveTrack removes the track and all clips it owns.
func (tl *Timeline) RemoveTrack(trackID string) error {
	for _, group := range []*[]*Track{&tl.VideoTracks, &tl.AudioTracks} {
		for i, track := range *group {
			if track.ID == trackID {
				*group = append((*group)[:i], (*group)[i+1:]...)
				tl.reindex(*group)
				return nil
			}
		}
	}
	return ErrNotFound
}

// Track returns the track with the given id, searching both groups.
func (tl *Timeline) Track(trackID string) *Track {
	for _, track := range tl.Tracks() {
		if track.ID == trackID {
			return track
		}
	}
	return nil
}

// Tracks returns all tracks, video group first.
func (tl *Timeline) Tracks() []*Track {
	tracks := make([]*Track, 0, len(tl.VideoTracks)+len(tl.AudioTracks))
	tracks = append(tracks, tl.VideoTracks...)
	tracks = append(tracks, tl.AudioTracks...)
	return tracks
}

// SplitClip replaces a clip with two clips meeting at splitTime. Both
// halves share the source; their source offsets are contiguous at the
// split point. Transform, filters, and animations are copied unscaled.
func (tl *Timeline) SplitClip(trackID, clipID string, splitTime float64) (*Clip, *Clip, error) {
	track := tl.Track(trackID)
	if track == nil {
		return nil, nil, ErrNotFound
	}
	if track.Locked {
		return nil, nil, ErrLocked
	}
	clip := track.Clip(clipID)
	if clip == nil {
		return nil, nil, ErrNotFound
	}
	if clip.Locked {
		return nil, nil, ErrLocked
	}
	if splitTime <= clip.Position || splitTime >= clip.Position+clip.Duration {
		return nil, nil, ErrInvalidRange
	}

	splitOffset := clip.InPoint + (splitTime - clip.Position)

	first := clip.Clone()
	first.OutPoint = splitOffset
	first.Duration = first.OutPoint - first.InPoint

	second := clip.Clone()
	second.InPoint = splitOffset
	second.Position = splitTime
	second.Duration = second.OutPoint - second.InPoint

	for i, c := range track.Clips {
		if c.ID == clipID {
			replaced := append(track.Clips[:i:i], first, second)
			track.Clips = append(replaced, track.Clips[i+1:]...)
			break
		}
	}
	return first, second, nil
}

// MergeClips combines contiguous same-source clips into one clip spanning
// the full range. Clips must be adjacent in both timeline position and
// source offset so the merged clip keeps duration == out - in.
func (tl *Timeline) MergeClips(trackID string, clipIDs []string) (*Clip, error) {
	if len(clipIDs) < 2 {
		return nil, ErrInvalidRange
	}
	track := tl.Track(trackID)
	if track == nil {
		return nil, ErrNotFound
	}
	if track.Locked {
		return nil, ErrLocked
	}

	clips := make([]*Clip, len(clipIDs))
	for i, id := range clipIDs {
		clip := track.Clip(id)
		if clip == nil {
			return nil, ErrNotFound
		}
		if clip.Locked {
			return nil, ErrLocked
		}
		clips[i] = clip
	}

	for i := 0; i < len(clips)-1; i++ {
		cur, next := clips[i], clips[i+1]
		if cur.Source != next.Source {
			return nil, ErrNotContiguous
		}
		if cur.Position+cur.Duration != next.Position {
			return nil, ErrNotContiguous
		}
		if cur.OutPoint != next.InPoint {
			return nil, ErrNotContiguous
		}
	}

	merged := clips[0].Clone()
	merged.OutPoint = clips[len(clips)-1].OutPoint
	merged.Duration = merged.OutPoint - merged.InPoint

	for _, id := range clipIDs {
		track.RemoveClip(id)
	}
	track.AddClip(merged)
	return merged, nil
}

// GetClipsAtTime returns the visible clip from each track at time t.
func (tl *Timeline) GetClipsAtTime(t float64) []*Clip {
	var clips []*Clip
	for _, track := range tl.Tracks() {
		if clip := track.GetClipAt(t); clip != nil {
			clips = append(clips, clip)
		}
	}
	return clips
}

// Duration is the end of the latest clip across all tracks.
func (tl *Timeline) Duration() float64 {
	var max float64
	for _, track := range tl.Tracks() {
		if d := track.Duration(); d > max {
			max = d
		}
	}
	return max
}

func (tl *Timeline) reindex(group []*Track) {
	for i, track := range group {
		track.Index = i
	}
}
