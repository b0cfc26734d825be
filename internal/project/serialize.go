package project

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Serialize flattens the project to its persisted JSON document. Asset
// entries are reduced to metadata; binary payloads live in a separate
// keyed store and are reattached on load.
func Serialize(p *Project) ([]byte, error) {
	if p == nil || p.Timeline == nil {
		return nil, ErrNoProject
	}
	data, err := sonic.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("serializing project: %w", err)
	}
	return data, nil
}

// Deserialize reconstructs a project from its persisted document. Assets
// come back metadata-only; callers attach payloads from the blob store.
func Deserialize(data []byte) (*Project, error) {
	var p Project
	if err := sonic.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	if p.Timeline == nil {
		return nil, fmt.Errorf("%w: missing timeline", ErrDeserialization)
	}
	ensureMap(&p.Assets.Videos)
	ensureMap(&p.Assets.Audios)
	ensureMap(&p.Assets.Images)
	ensureMap(&p.Assets.Effects)
	return &p, nil
}

func ensureMap(m *map[string]*Asset) {
	if *m == nil {
		*m = make(map[string]*Asset)
	}
}

// AttachPayload restores a binary payload onto its metadata entry. It
// returns false when the asset is unknown, which callers surface as a
// dangling reference rather than a failure.
func (p *Project) AttachPayload(assetID string, data []byte) bool {
	asset := p.Assets.Lookup(assetID)
	if asset == nil {
		return false
	}
	asset.Data = data
	asset.Size = int64(len(data))
	return true
}
