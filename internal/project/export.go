package project

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/bytedance/sonic"
)

const (
	// ExportFormat tags exported documents.
	ExportFormat = "fasttrack"
	// ExportVersion is the current export document version.
	ExportVersion = "1.0"
	exportExt     = ".fasttrack.json"
)

// ExportDocument is the interchange form of a project: the persisted
// document plus export provenance.
type ExportDocument struct {
	Project      json.RawMessage `json:"project"`
	ExportDate   time.Time       `json:"export_date"`
	ExportFormat string          `json:"export_format"`
	Version      string          `json:"version"`
}

// Export produces the export document bytes and a filesystem-safe
// filename of the form <name_with_underscores>_<unix-ms><ext>.
func Export(p *Project) ([]byte, string, error) {
	serialized, err := Serialize(p)
	if err != nil {
		return nil, "", err
	}

	doc := ExportDocument{
		Project:      serialized,
		ExportDate:   time.Now(),
		ExportFormat: ExportFormat,
		Version:      ExportVersion,
	}
	data, err := sonic.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encoding export document: %w", err)
	}

	filename := fmt.Sprintf("%s_%d%s", exportName(p.Name), time.Now().UnixMilli(), exportExt)
	return data, filename, nil
}

// Import parses an export document back into a project. Asset payloads
// are not part of the document; references to them stay dangling until
// reattached.
func Import(data []byte) (*Project, error) {
	var doc ExportDocument
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	if doc.ExportFormat != ExportFormat {
		return nil, fmt.Errorf("%w: unexpected export format %q", ErrDeserialization, doc.ExportFormat)
	}
	return Deserialize(doc.Project)
}

// exportName replaces whitespace runs with underscores and drops runes
// that are unsafe in filenames.
func exportName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune('_')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}
