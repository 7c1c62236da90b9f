// Package scoring loads the trained network and scores feature vectors.
package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrModelLoad is returned for artifacts that cannot serve predictions.
var ErrModelLoad = errors.New("scoring: invalid model artifact")

// Scaler standardises inputs as (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Model is a fully connected network with ReLU hidden layers and a single
// sigmoid output. Weights[l][i][j] connects unit i of layer l to unit j of
// layer l+1.
type Model struct {
	Version   string             `json:"version"`
	Features  []string           `json:"features"`
	Layers    []int              `json:"layers"`
	Weights   [][][]float64      `json:"weights"`
	Biases    [][]float64        `json:"biases"`
	Scaler    Scaler             `json:"scaler"`
	TrainedAt time.Time          `json:"trained_at"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Load decodes an artifact and checks it against the expected feature columns.
func Load(data []byte, features []string) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrModelLoad, err)
	}
	if err := m.Validate(features); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks every shape in the artifact. features may be nil to skip
// the column check.
func (m *Model) Validate(features []string) error {
	if len(m.Layers) < 2 {
		return fmt.Errorf("%w: need at least input and output layers, got %v", ErrModelLoad, m.Layers)
	}
	in := m.Layers[0]
	if m.Layers[len(m.Layers)-1] != 1 {
		return fmt.Errorf("%w: output layer must have one unit", ErrModelLoad)
	}
	if len(m.Features) != in {
		return fmt.Errorf("%w: %d feature names for %d inputs", ErrModelLoad, len(m.Features), in)
	}
	if features != nil {
		if len(features) != len(m.Features) {
			return fmt.Errorf("%w: model has %d features, builder has %d", ErrModelLoad, len(m.Features), len(features))
		}
		for i := range features {
			if features[i] != m.Features[i] {
				return fmt.Errorf("%w: feature %d is %q, builder expects %q", ErrModelLoad, i, m.Features[i], features[i])
			}
		}
	}
	if len(m.Scaler.Mean) != in || len(m.Scaler.Scale) != in {
		return fmt.Errorf("%w: scaler width does not match %d inputs", ErrModelLoad, in)
	}
	if len(m.Weights) != len(m.Layers)-1 || len(m.Biases) != len(m.Layers)-1 {
		return fmt.Errorf("%w: %d weight and %d bias layers for %d layers", ErrModelLoad, len(m.Weights), len(m.Biases), len(m.Layers))
	}
	for l := range m.Weights {
		rows, cols := m.Layers[l], m.Layers[l+1]
		if len(m.Weights[l]) != rows {
			return fmt.Errorf("%w: weights[%d] has %d rows, want %d", ErrModelLoad, l, len(m.Weights[l]), rows)
		}
		for i := range m.Weights[l] {
			if len(m.Weights[l][i]) != cols {
				return fmt.Errorf("%w: weights[%d][%d] has %d cols, want %d", ErrModelLoad, l, i, len(m.Weights[l][i]), cols)
			}
		}
		if len(m.Biases[l]) != cols {
			return fmt.Errorf("%w: biases[%d] has %d units, want %d", ErrModelLoad, l, len(m.Biases[l]), cols)
		}
	}
	return nil
}

// Predict returns the home-win probability for one raw feature vector.
func (m *Model) Predict(x []float64) (float64, error) {
	if len(x) != m.Layers[0] {
		return 0, fmt.Errorf("scoring: got %d features, want %d", len(x), m.Layers[0])
	}
	out := m.Forward(m.Standardize(x))
	p := out[len(out)-1][0]
	if math.IsNaN(p) {
		return 0, fmt.Errorf("scoring: non-finite output")
	}
	return p, nil
}

// Standardize applies the scaler. A zero scale leaves the centred value as is.
func (m *Model) Standardize(x []float64) []float64 {
	z := make([]float64, len(x))
	for i := range x {
		s := m.Scaler.Scale[i]
		if s == 0 {
			s = 1
		}
		z[i] = (x[i] - m.Scaler.Mean[i]) / s
	}
	return z
}

// Forward returns the activations of every layer after the input, the last
// being the sigmoid output.
func (m *Model) Forward(z []float64) [][]float64 {
	acts := make([][]float64, 0, len(m.Weights))
	cur := z
	for l := range m.Weights {
		next := make([]float64, m.Layers[l+1])
		copy(next, m.Biases[l])
		for i, v := range cur {
			if v == 0 {
				continue
			}
			row := m.Weights[l][i]
			for j := range next {
				next[j] += v * row[j]
			}
		}
		last := l == len(m.Weights)-1
		for j := range next {
			if last {
				next[j] = Sigmoid(next[j])
			} else if next[j] < 0 {
				next[j] = 0
			}
		}
		acts = append(acts, next)
		cur = next
	}
	return acts
}

// Sigmoid is the logistic function, clamped to avoid overflow.
func Sigmoid(x float64) float64 {
	if x < -500 {
		x = -500
	} else if x > 500 {
		x = 500
	}
	return 1 / (1 + math.Exp(-x))
}
