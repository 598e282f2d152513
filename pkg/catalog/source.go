package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// inMemSource implements the Source interface using an in-memory plan map.
type inMemSource struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewInMemSource returns an in-memory Source with a copy of the given plans.
func NewInMemSource(plans map[string]Plan) Source {
	return &inMemSource{plans: maps.Clone(plans)}
}

// Load returns a copy of all available plans from memory.
func (s *inMemSource) Load(_ context.Context) (map[string]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.plans), nil
}

// yamlFile is the on-disk catalog layout.
type yamlFile struct {
	Plans []Plan `yaml:"plans"`
}

type yamlSource struct {
	path string
}

// NewYAMLSource returns a Source that reads the plan catalog from a YAML
// file at load time. The file lists plans under a top-level "plans" key:
//
//	plans:
//	  - tier: free
//	    name: Free
//	    unit_limit: 50
//	    period_days: 30
//	  - tier: pro_annual
//	    name: Pro (annual)
//	    unit_limit: 6000
//	    period_days: 365
//	    annual_monthly: true
//	    price: {amount: 9900, currency: USD}
func NewYAMLSource(path string) Source {
	return &yamlSource{path: path}
}

func (s *yamlSource) Load(_ context.Context) (map[string]Plan, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	defer f.Close()

	return decodePlans(f)
}

// readerSource adapts an io.Reader into a Source. Useful for embedding the
// catalog or loading it from a non-file origin.
type readerSource struct {
	r io.Reader
}

// NewReaderSource returns a Source that decodes YAML plans from r.
// The reader is consumed on the first Load.
func NewReaderSource(r io.Reader) Source {
	return &readerSource{r: r}
}

func (s *readerSource) Load(_ context.Context) (map[string]Plan, error) {
	return decodePlans(s.r)
}

func decodePlans(r io.Reader) (map[string]Plan, error) {
	var file yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	plans := make(map[string]Plan, len(file.Plans))
	for _, plan := range file.Plans {
		if _, exists := plans[plan.Tier]; exists {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("duplicate tier %q", plan.Tier))
		}
		plans[plan.Tier] = plan
	}

	return plans, nil
}
