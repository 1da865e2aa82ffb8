// Package synthetic generates plausible HRV sample streams for load tests
// and local development. Scenario parameters approximate the WESAD emotion
// classes so the default model produces the matching label.
package synthetic

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/synheart/emotion-go/internal/domain/model"
)

// Scenario describes the HR and RR distribution for one emotional state.
type Scenario struct {
	Name     string
	HRMean   float64
	HRStd    float64
	RRMeanMS float64
	RRStdMS  float64
}

// Predefined scenarios matching the default model's labels.
var (
	Calm     = Scenario{Name: "Calm", HRMean: 65, HRStd: 5, RRMeanMS: 920, RRStdMS: 50}
	Stressed = Scenario{Name: "Stressed", HRMean: 85, HRStd: 8, RRMeanMS: 705, RRStdMS: 25}
	Amused   = Scenario{Name: "Amused", HRMean: 80, HRStd: 10, RRMeanMS: 750, RRStdMS: 60}
)

// Scenarios lists all predefined scenarios.
func Scenarios() []Scenario {
	return []Scenario{Calm, Stressed, Amused}
}

// ScenarioByName resolves a scenario case-sensitively by its label.
func ScenarioByName(name string) (Scenario, bool) {
	for _, s := range Scenarios() {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// Generator produces a deterministic sample stream for a scenario.
type Generator struct {
	scenario Scenario
	subject  string
	interval time.Duration
	rng      *rand.Rand
	now      func() time.Time
	seq      int
}

// GeneratorOption applies a configuration option to the Generator.
type GeneratorOption func(*Generator)

// WithSeed makes the stream reproducible.
func WithSeed(seed int64) GeneratorOption {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithSubject sets the subject ID stamped on samples.
func WithSubject(subject string) GeneratorOption {
	return func(g *Generator) {
		if subject != "" {
			g.subject = subject
		}
	}
}

// WithInterval sets the simulated spacing between samples, which also
// determines how many RR intervals each sample carries.
func WithInterval(interval time.Duration) GeneratorOption {
	return func(g *Generator) {
		if interval > 0 {
			g.interval = interval
		}
	}
}

// WithGeneratorClock injects the timestamp source.
func WithGeneratorClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator creates a generator for the given scenario.
func NewGenerator(scenario Scenario, opts ...GeneratorOption) *Generator {
	g := &Generator{
		scenario: scenario,
		subject:  "synthetic",
		interval: time.Second,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next produces one sample. HR is drawn from the scenario's normal
// distribution; the sample carries as many RR intervals as fit into the
// configured interval at the scenario's mean RR.
func (g *Generator) Next() model.Sample {
	g.seq++

	hr := g.scenario.HRMean + g.rng.NormFloat64()*g.scenario.HRStd
	if hr < 30 {
		hr = 30
	}

	beatCount := int(float64(g.interval.Milliseconds()) / g.scenario.RRMeanMS)
	if beatCount < 1 {
		beatCount = 1
	}
	rr := make([]float64, beatCount)
	for i := range rr {
		v := g.scenario.RRMeanMS + g.rng.NormFloat64()*g.scenario.RRStdMS
		if v < 300 {
			v = 300
		}
		if v > 2000 {
			v = 2000
		}
		rr[i] = v
	}

	return model.Sample{
		SampleID:      fmt.Sprintf("%s-%06d", uuid.NewString()[:8], g.seq),
		SubjectID:     g.subject,
		HR:            hr,
		RRIntervalsMS: rr,
		Motion:        map[string]float64{"acc_mag": g.rng.Float64() * 0.2},
		Timestamp:     g.now(),
	}
}
