package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

var ErrArtifactLoad = errors.New("model artifact load failed")

const (
	WeightsUniform  = "uniform"
	WeightsDistance = "distance"
)

// Artifact is the on-disk form of a fitted k-NN pipeline: standard scaling of
// numeric columns, one-hot encoding of categorical columns, then a k-nearest
// neighbour vote over the stored training samples.
type Artifact struct {
	Version             string              `json:"version"`
	FeatureCols         []string            `json:"feature_cols"`
	NumericFeatures     []string            `json:"numeric_features"`
	CategoricalFeatures []string            `json:"categorical_features"`
	TargetCol           string              `json:"target_col,omitempty"`
	Classes             []string            `json:"classes"`
	Scaler              Scaler              `json:"scaler"`
	Categories          map[string][]string `json:"categories"`
	NNeighbors          int                 `json:"n_neighbors"`
	Weights             string              `json:"weights"`
	Samples             []Sample            `json:"samples"`
}

type Scaler struct {
	Mean  map[string]float64 `json:"mean"`
	Scale map[string]float64 `json:"scale"`
}

// Sample values are JSON numbers or strings keyed by column name.
type Sample struct {
	Features map[string]interface{} `json:"features"`
	Label    string                 `json:"label"`
}

// Load reads an artifact file and builds the classifier. A missing version
// defaults to the file name without extension.
func Load(path string) (*KNNClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrArtifactLoad, path, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrArtifactLoad, path, err)
	}
	if a.Version == "" {
		a.Version = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return NewKNN(&a)
}

// Save writes the artifact as indented JSON.
func Save(path string, a *Artifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create artifact dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func (a *Artifact) validate() error {
	var missing []string
	if len(a.FeatureCols) == 0 {
		missing = append(missing, "feature_cols")
	}
	if len(a.Classes) == 0 {
		missing = append(missing, "classes")
	}
	if len(a.Samples) == 0 {
		missing = append(missing, "samples")
	}
	if len(a.NumericFeatures)+len(a.CategoricalFeatures) == 0 {
		missing = append(missing, "numeric_features/categorical_features")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing keys [%s]", ErrArtifactLoad, strings.Join(missing, ", "))
	}
	if a.NNeighbors <= 0 {
		return fmt.Errorf("%w: n_neighbors must be positive, got %d", ErrArtifactLoad, a.NNeighbors)
	}
	switch a.Weights {
	case WeightsUniform, WeightsDistance:
	case "":
		a.Weights = WeightsUniform
	default:
		return fmt.Errorf("%w: unknown weights %q", ErrArtifactLoad, a.Weights)
	}

	seen := make(map[string]bool, len(a.Classes))
	for _, c := range a.Classes {
		if seen[c] {
			return fmt.Errorf("%w: duplicate class %q", ErrArtifactLoad, c)
		}
		seen[c] = true
	}
	return nil
}
