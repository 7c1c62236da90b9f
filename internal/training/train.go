package training

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/markusmuilu/Predicting-Nba/internal/scoring"
)

const minRows = 10

// Options controls the fit. Zero values take the defaults below.
type Options struct {
	Hidden       []int
	Epochs       int
	LearningRate float64
	BatchSize    int
	TestSplit    float64
	Seed         uint64
	Version      string
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if len(o.Hidden) == 0 {
		o.Hidden = []int{32}
	}
	if o.Epochs <= 0 {
		o.Epochs = 50
	}
	if o.LearningRate <= 0 {
		o.LearningRate = 0.001
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 32
	}
	if o.TestSplit <= 0 || o.TestSplit >= 1 {
		o.TestSplit = 0.2
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Version == "" {
		o.Version = o.Now().UTC().Format("20060102T150405Z")
	}
	return o
}

// Train fits a ReLU/sigmoid network with mini-batch gradient descent on
// binary cross-entropy and reports held-out metrics on the artifact.
func Train(ds Dataset, opts Options, logger *zap.Logger) (*scoring.Model, error) {
	opts = opts.withDefaults()
	log := logger.Sugar()

	n := len(ds.X)
	if n < minRows || len(ds.Y) != n {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrNotEnoughData, n, len(ds.Y))
	}
	width := len(ds.Features)
	for i, row := range ds.X {
		if len(row) != width {
			return nil, fmt.Errorf("training: row %d has %d values, want %d", i, len(row), width)
		}
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	idx := rng.Perm(n)
	nTest := int(float64(n) * opts.TestSplit)
	if nTest < 1 {
		nTest = 1
	}
	test, train := idx[:nTest], idx[nTest:]

	m := &scoring.Model{
		Version:  opts.Version,
		Features: append([]string(nil), ds.Features...),
		Layers:   append(append([]int{width}, opts.Hidden...), 1),
		Scaler:   fitScaler(ds.X, train),
	}
	initWeights(m, rng)

	z := make([][]float64, n)
	for i := range ds.X {
		z[i] = m.Standardize(ds.X[i])
	}

	batch := opts.BatchSize
	if batch > len(train) {
		batch = len(train)
	}
	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
		for start := 0; start+batch <= len(train); start += batch {
			step(m, z, ds.Y, train[start:start+batch], opts.LearningRate)
		}
		if epoch%10 == 0 || epoch == opts.Epochs {
			log.Debugw("Epoch finished", "epoch", epoch, "train_loss", logLoss(m, z, ds.Y, train))
		}
	}

	m.TrainedAt = opts.Now().UTC()
	m.Metrics = map[string]float64{
		"train_rows":    float64(len(train)),
		"test_rows":     float64(len(test)),
		"train_loss":    logLoss(m, z, ds.Y, train),
		"test_loss":     logLoss(m, z, ds.Y, test),
		"test_accuracy": accuracy(m, z, ds.Y, test),
		"test_roc_auc":  rocAUC(m, z, ds.Y, test),
	}
	if err := m.Validate(ds.Features); err != nil {
		return nil, err
	}
	log.Infow("Model trained",
		"version", m.Version,
		"layers", m.Layers,
		"test_accuracy", m.Metrics["test_accuracy"],
		"test_roc_auc", m.Metrics["test_roc_auc"],
	)
	return m, nil
}

// fitScaler uses the population standard deviation; constant columns get scale 1.
func fitScaler(x [][]float64, rows []int) scoring.Scaler {
	width := len(x[0])
	s := scoring.Scaler{Mean: make([]float64, width), Scale: make([]float64, width)}
	for _, r := range rows {
		for j, v := range x[r] {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= float64(len(rows))
	}
	for _, r := range rows {
		for j, v := range x[r] {
			d := v - s.Mean[j]
			s.Scale[j] += d * d
		}
	}
	for j := range s.Scale {
		s.Scale[j] = math.Sqrt(s.Scale[j] / float64(len(rows)))
		if s.Scale[j] == 0 {
			s.Scale[j] = 1
		}
	}
	return s
}

// initWeights uses He initialisation for hidden layers and 1/fan_in for the output.
func initWeights(m *scoring.Model, rng *rand.Rand) {
	last := len(m.Layers) - 2
	m.Weights = make([][][]float64, len(m.Layers)-1)
	m.Biases = make([][]float64, len(m.Layers)-1)
	for l := range m.Weights {
		in, out := m.Layers[l], m.Layers[l+1]
		gain := 2.0
		if l == last {
			gain = 1.0
		}
		std := math.Sqrt(gain / float64(in))
		m.Weights[l] = make([][]float64, in)
		for i := range m.Weights[l] {
			m.Weights[l][i] = make([]float64, out)
			for j := range m.Weights[l][i] {
				m.Weights[l][i][j] = rng.NormFloat64() * std
			}
		}
		m.Biases[l] = make([]float64, out)
	}
}

// step applies one averaged gradient update over rows.
func step(m *scoring.Model, z [][]float64, y []float64, rows []int, lr float64) {
	gw := make([][][]float64, len(m.Weights))
	gb := make([][]float64, len(m.Biases))
	for l := range m.Weights {
		gw[l] = make([][]float64, len(m.Weights[l]))
		for i := range gw[l] {
			gw[l][i] = make([]float64, len(m.Weights[l][i]))
		}
		gb[l] = make([]float64, len(m.Biases[l]))
	}

	for _, r := range rows {
		acts := m.Forward(z[r])
		input := func(l int) []float64 {
			if l == 0 {
				return z[r]
			}
			return acts[l-1]
		}

		delta := []float64{acts[len(acts)-1][0] - y[r]}
		for l := len(m.Weights) - 1; l >= 0; l-- {
			a := input(l)
			for i, ai := range a {
				if ai == 0 {
					continue
				}
				for j, d := range delta {
					gw[l][i][j] += ai * d
				}
			}
			for j, d := range delta {
				gb[l][j] += d
			}
			if l == 0 {
				break
			}
			prev := make([]float64, len(a))
			for i := range prev {
				if a[i] <= 0 {
					continue
				}
				var sum float64
				for j, d := range delta {
					sum += m.Weights[l][i][j] * d
				}
				prev[i] = sum
			}
			delta = prev
		}
	}

	scale := lr / float64(len(rows))
	for l := range m.Weights {
		for i := range m.Weights[l] {
			for j := range m.Weights[l][i] {
				m.Weights[l][i][j] -= scale * gw[l][i][j]
			}
		}
		for j := range m.Biases[l] {
			m.Biases[l][j] -= scale * gb[l][j]
		}
	}
}

func output(m *scoring.Model, z []float64) float64 {
	acts := m.Forward(z)
	return acts[len(acts)-1][0]
}

func logLoss(m *scoring.Model, z [][]float64, y []float64, rows []int) float64 {
	const eps = 1e-15
	var sum float64
	for _, r := range rows {
		p := math.Min(math.Max(output(m, z[r]), eps), 1-eps)
		sum -= y[r]*math.Log(p) + (1-y[r])*math.Log(1-p)
	}
	return sum / float64(len(rows))
}

func accuracy(m *scoring.Model, z [][]float64, y []float64, rows []int) float64 {
	correct := 0
	for _, r := range rows {
		pred := 0.0
		if output(m, z[r]) >= 0.5 {
			pred = 1
		}
		if pred == y[r] {
			correct++
		}
	}
	return float64(correct) / float64(len(rows))
}

// rocAUC is the Mann-Whitney statistic with average ranks for ties. It is
// 0.5 when only one class is present.
func rocAUC(m *scoring.Model, z [][]float64, y []float64, rows []int) float64 {
	type scored struct{ p, y float64 }
	s := make([]scored, len(rows))
	var pos, neg float64
	for i, r := range rows {
		s[i] = scored{output(m, z[r]), y[r]}
		if y[r] == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0.5
	}
	sort.Slice(s, func(i, j int) bool { return s[i].p < s[j].p })

	var rankSum float64
	for i := 0; i < len(s); {
		j := i
		for j < len(s) && s[j].p == s[i].p {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			if s[k].y == 1 {
				rankSum += avg
			}
		}
		i = j
	}
	return (rankSum - pos*(pos+1)/2) / (pos * neg)
}
