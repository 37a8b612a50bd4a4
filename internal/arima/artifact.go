// internal/arima/artifact.go
package arima

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save persists the model as a JSON artifact at path, overwriting any prior
// artifact. The write goes to a temp file in the same directory followed by a
// rename, so readers never observe a partial artifact.
func (m *Model) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory %s: %w", dir, err)
	}

	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp artifact: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}

	return nil
}

// Load reads a model artifact from path and validates it enough to forecast.
func Load(path string) (*Model, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}

	var model Model
	if err := json.Unmarshal(payload, &model); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact %s: %w", path, err)
	}

	if len(model.AR) != model.Order.P || len(model.MA) != model.Order.Q {
		return nil, fmt.Errorf("model artifact %s is inconsistent with its order %s", path, model.Order)
	}
	if len(model.IntegrationTail) != model.Order.D {
		return nil, fmt.Errorf("model artifact %s is missing integration state for d=%d", path, model.Order.D)
	}

	return &model, nil
}
