package timeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func placedClip(t *testing.T, name string, position, duration float64) *Clip {
	t.Helper()
	clip := NewClip("asset-"+name, name, MediaVideo, duration)
	require.NoError(t, clip.Move(position))
	return clip
}

func TestTrack_AddRemoveClip(t *testing.T) {
	track := NewTrack("v1", "Video 1", TrackVideo, 0)
	clip := placedClip(t, "a", 0, 10)

	track.AddClip(clip)
	require.Len(t, track.Clips, 1)

	removed := track.RemoveClip(clip.ID)
	require.Equal(t, clip, removed)
	require.Empty(t, track.Clips)

	require.Nil(t, track.RemoveClip("missing"))
}

func TestTrack_GetClipAt_LastAddedWins(t *testing.T) {
	track := NewTrack("v1", "Video 1", TrackVideo, 0)
	a := placedClip(t, "a", 0, 10)
	b := placedClip(t, "b", 5, 10)
	track.AddClip(a)
	track.AddClip(b)

	// Both overlap t=7; the later addition stacks on top.
	require.Equal(t, b, track.GetClipAt(7))
	require.Equal(t, a, track.GetClipAt(2))
	require.Nil(t, track.GetClipAt(20))
}

func TestTrack_GetClipAt_SkipsMuted(t *testing.T) {
	track := NewTrack("v1", "Video 1", TrackVideo, 0)
	a := placedClip(t, "a", 0, 10)
	b := placedClip(t, "b", 0, 10)
	b.Muted = true
	track.AddClip(a)
	track.AddClip(b)

	require.Equal(t, a, track.GetClipAt(5))
}

func TestTrack_GetClipsInRange(t *testing.T) {
	track := NewTrack("v1", "Video 1", TrackVideo, 0)
	a := placedClip(t, "a", 0, 10)
	b := placedClip(t, "b", 10, 5)
	c := placedClip(t, "c", 30, 5)
	track.AddClip(a)
	track.AddClip(b)
	track.AddClip(c)

	clips := track.GetClipsInRange(5, 12)
	require.Equal(t, []*Clip{a, b}, clips)

	// Half-open spans: a clip ending exactly at start does not intersect.
	require.Empty(t, track.GetClipsInRange(15, 30))
	require.Equal(t, []*Clip{c}, track.GetClipsInRange(15, 31))
}

func TestTrack_MoveTrimClip(t *testing.T) {
	track := NewTrack("v1", "Video 1", TrackVideo, 0)
	clip := placedClip(t, "a", 0, 10)
	track.AddClip(clip)

	require.True(t, track.MoveClip(clip.ID, 3))
	require.Equal(t, 3.0, clip.Position)

	require.True(t, track.TrimClip(clip.ID, 1, 9))
	require.Equal(t, 8.0, clip.Duration)

	require.False(t, track.MoveClip("missing", 1))
	require.False(t, track.TrimClip("missing", 1, 2))
	require.False(t, track.TrimClip(clip.ID, 9, 1))

	clip.Locked = true
	require.False(t, track.MoveClip(clip.ID, 0))
	require.False(t, track.TrimClip(clip.ID, 0, 5))
}

func TestTrack_LockedRejectsMutations(t *testing.T) {
	track := NewTrack("v1", "Video 1", TrackVideo, 0)
	clip := placedClip(t, "a", 0, 10)
	require.True(t, track.AddClip(clip))

	track.Locked = true
	require.False(t, track.AddClip(placedClip(t, "b", 10, 5)))
	require.Len(t, track.Clips, 1)

	require.False(t, track.MoveClip(clip.ID, 4))
	require.Equal(t, 0.0, clip.Position)
	require.False(t, track.TrimClip(clip.ID, 1, 9))
	require.Equal(t, 10.0, clip.Duration)
	require.Nil(t, track.RemoveClip(clip.ID))
	require.Len(t, track.Clips, 1)

	// Queries still work on a locked track.
	require.Equal(t, clip, track.GetClipAt(5))

	track.Locked = false
	require.True(t, track.MoveClip(clip.ID, 4))
}

func TestTrack_Duration(t *testing.T) {
	track := NewTrack("v1", "Video 1", TrackVideo, 0)
	require.Equal(t, 0.0, track.Duration())

	track.AddClip(placedClip(t, "a", 0, 10))
	track.AddClip(placedClip(t, "b", 12, 3))
	require.Equal(t, 15.0, track.Duration())
}
