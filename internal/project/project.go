// Package project defines the unit of persistence and export: a timeline
// plus its asset table, settings, and metadata.
package project

import (
	"strings"
	"time"

	"github.com/fasttrack/fasttrack/internal/timeline"
	"github.com/google/uuid"
)

// Quality names a closed preview/render quality level.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
	QualityUltra  Quality = "ultra"
)

// Settings is the closed project configuration set.
type Settings struct {
	AutoSave          bool                `json:"auto_save"`
	AutoSaveInterval  time.Duration       `json:"auto_save_interval"`
	PreviewQuality    Quality             `json:"preview_quality"`
	RenderQuality     Quality             `json:"render_quality"`
	DefaultFrameRate  float64             `json:"default_frame_rate"`
	DefaultResolution timeline.Resolution `json:"default_resolution"`
}

// Metadata describes the project for listings and exports.
type Metadata struct {
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags,omitempty"`
}

// Asset is an uploaded media payload. Data holds the binary payload in
// memory; the persisted project document carries metadata only, with
// payloads stored in a separate keyed collection.
type Asset struct {
	ID       string             `json:"id"`
	Type     timeline.MediaType `json:"type"`
	Name     string             `json:"name"`
	MIMEType string             `json:"mime_type"`
	Size     int64              `json:"size"`
	Data     []byte             `json:"-"`
	AddedAt  time.Time          `json:"added_at"`
}

// AssetTable maps asset ids to payloads, one mapping per media kind.
type AssetTable struct {
	Videos  map[string]*Asset `json:"videos"`
	Audios  map[string]*Asset `json:"audios"`
	Images  map[string]*Asset `json:"images"`
	Effects map[string]*Asset `json:"effects"`
}

// NewAssetTable returns an empty table with all mappings allocated.
func NewAssetTable() AssetTable {
	return AssetTable{
		Videos:  make(map[string]*Asset),
		Audios:  make(map[string]*Asset),
		Images:  make(map[string]*Asset),
		Effects: make(map[string]*Asset),
	}
}

func (t *AssetTable) byKind(kind timeline.MediaType) map[string]*Asset {
	switch kind {
	case timeline.MediaAudio:
		return t.Audios
	case timeline.MediaImage:
		return t.Images
	case timeline.MediaEffect:
		return t.Effects
	default:
		return t.Videos
	}
}

// All returns every asset across the four mappings.
func (t *AssetTable) All() []*Asset {
	var assets []*Asset
	for _, m := range []map[string]*Asset{t.Videos, t.Audios, t.Images, t.Effects} {
		for _, a := range m {
			assets = append(assets, a)
		}
	}
	return assets
}

// Lookup finds an asset by id in any mapping.
func (t *AssetTable) Lookup(id string) *Asset {
	for _, m := range []map[string]*Asset{t.Videos, t.Audios, t.Images, t.Effects} {
		if a, ok := m[id]; ok {
			return a
		}
	}
	return nil
}

// Project is the unit of save/load/export. Its id doubles as the session
// id under which it is persisted.
type Project struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Version  string             `json:"version"`
	Timeline *timeline.Timeline `json:"timeline"`
	Assets   AssetTable         `json:"assets"`
	Settings Settings           `json:"settings"`
	Metadata Metadata           `json:"metadata"`
}

// New creates a project with one video and one audio track and default
// settings.
func New(id, name string) *Project {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" {
		name = "Untitled Project"
	}

	tl := timeline.NewTimeline("timeline-"+id, name)
	tl.AddTrack(timeline.TrackVideo)
	tl.AddTrack(timeline.TrackAudio)

	now := time.Now()
	return &Project{
		ID:       id,
		Name:     name,
		Version:  "1.0.0",
		Timeline: tl,
		Assets:   NewAssetTable(),
		Settings: Settings{
			AutoSave:          true,
			AutoSaveInterval:  30 * time.Second,
			PreviewQuality:    QualityMedium,
			RenderQuality:     QualityHigh,
			DefaultFrameRate:  30,
			DefaultResolution: timeline.Resolution{Width: 1920, Height: 1080},
		},
		Metadata: Metadata{
			Created:  now,
			Modified: now,
			Author:   "Anonymous",
		},
	}
}

// AddAsset stores a payload in the asset table and returns its id. Clips
// reference it through AssetRef.
func (p *Project) AddAsset(kind timeline.MediaType, name, mimeType string, data []byte) string {
	asset := &Asset{
		ID:       uuid.NewString(),
		Type:     kind,
		Name:     name,
		MIMEType: mimeType,
		Size:     int64(len(data)),
		Data:     data,
		AddedAt:  time.Now(),
	}
	p.Assets.byKind(kind)[asset.ID] = asset
	return asset.ID
}

// RemoveAsset deletes an asset by id. Clips referencing it become
// dangling; DanglingSources reports them.
func (p *Project) RemoveAsset(id string) bool {
	for _, m := range []map[string]*Asset{p.Assets.Videos, p.Assets.Audios, p.Assets.Images, p.Assets.Effects} {
		if _, ok := m[id]; ok {
			delete(m, id)
			return true
		}
	}
	return false
}

// Touch updates the modification timestamp.
func (p *Project) Touch() {
	p.Metadata.Modified = time.Now()
}

const assetScheme = "asset:"

// AssetRef builds a clip source locator for an uploaded asset.
func AssetRef(assetID string) string {
	return assetScheme + assetID
}

// ParseAssetRef reports whether a clip source refers to the asset table,
// and if so which asset id.
func ParseAssetRef(source string) (string, bool) {
	if !strings.HasPrefix(source, assetScheme) {
		return "", false
	}
	return source[len(assetScheme):], true
}

// DanglingSources returns the asset ids referenced by clips that have no
// entry in the asset table. Sources outside the asset scheme are external
// and never flagged.
func (p *Project) DanglingSources() []string {
	seen := make(map[string]bool)
	var dangling []string
	for _, track := range p.Timeline.Tracks() {
		for _, clip := range track.Clips {
			id, ok := ParseAssetRef(clip.Source)
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			if p.Assets.Lookup(id) == nil {
				dangling = append(dangling, id)
			}
		}
	}
	return dangling
}
