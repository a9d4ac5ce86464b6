package store

import (
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"

	"signalnoise/internal/models"
)

// encodeSnapshot renders both columns as the indented JSON document.
func encodeSnapshot(signal, noise []models.Task) ([]byte, error) {
	snapshot := models.Snapshot{
		Signal: make([]models.Task, len(signal)),
		Noise:  make([]models.Task, len(noise)),
	}
	copy(snapshot.Signal, signal)
	copy(snapshot.Noise, noise)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return append(data, '\n'), nil
}

// decodeSnapshot parses a document produced by encodeSnapshot. Hand-edited
// documents with comments or trailing commas are accepted. Missing members
// decode as empty columns; dropping unusable records is left to the board.
func decodeSnapshot(data []byte) (models.Snapshot, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(standardized, &snapshot); err != nil {
		return models.Snapshot{}, fmt.Errorf("invalid JSON: %w", err)
	}

	if snapshot.Signal == nil {
		snapshot.Signal = []models.Task{}
	}
	if snapshot.Noise == nil {
		snapshot.Noise = []models.Task{}
	}

	return snapshot, nil
}

func emptySnapshot() models.Snapshot {
	return models.Snapshot{Signal: []models.Task{}, Noise: []models.Task{}}
}
