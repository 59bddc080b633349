// Package batchengine expands a text-to-audio manifest into work items and
// runs them through the evaluation pipeline concurrently, collecting a
// per-item summary. One failing or rejected item never aborts the run.
package batchengine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestEntry maps one reference text to the audio files that are supposed
// to be readings of it.
type ManifestEntry struct {
	Text  string   `json:"text"`
	Audio []string `json:"audio"`
}

// WorkItem is one audio file paired with its reference text, resolved
// against the input directory.
type WorkItem struct {
	Index         int
	Filename      string
	Path          string
	ReferenceText string
}

// LoadManifest reads and decodes a manifest file: a JSON array of
// ManifestEntry objects.
func LoadManifest(path string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode manifest %q: %w", path, err)
	}
	return entries, nil
}

// ExpandManifest flattens the entries into one WorkItem per audio file.
// Entries with an empty text or no audio produce no items; those audio files
// have no usable mapping and are reported separately by the orchestrator.
func ExpandManifest(entries []ManifestEntry, inputDir string) ([]WorkItem, []string) {
	var items []WorkItem
	var unmapped []string
	for _, entry := range entries {
		if entry.Text == "" {
			unmapped = append(unmapped, entry.Audio...)
			continue
		}
		for _, name := range entry.Audio {
			if name == "" {
				continue
			}
			items = append(items, WorkItem{
				Index:         len(items),
				Filename:      name,
				Path:          filepath.Join(inputDir, name),
				ReferenceText: entry.Text,
			})
		}
	}
	return items, unmapped
}
