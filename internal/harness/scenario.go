package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one end-to-end pipeline test case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Contract is the contract text fed to the pipeline.
	Contract string `yaml:"contract"`

	// Responses are the provider answers, replayed in order: first the
	// detection response, then the dependency response.
	Responses []string `yaml:"responses"`

	// MaxSteps overrides the per-process step bound when positive.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Expect holds the assertions evaluated against the run.
	Expect Expectations `yaml:"expect"`
}

// Expectations describe the outcome of a scenario run.
type Expectations struct {
	// Error, when set, asserts the run fails with this substring in the
	// error. All other expectations are ignored.
	Error string `yaml:"error,omitempty"`

	// Processes is the expected number of surviving processes.
	Processes int `yaml:"processes,omitempty"`

	// Automatons asserts per-automaton shape, in contract order.
	Automatons []AutomatonExpectation `yaml:"automatons,omitempty"`

	// Dependencies is the expected post-elimination dependency relation.
	Dependencies map[string][]string `yaml:"dependencies,omitempty"`

	// MinConfidence is a lower bound on the confidence score.
	MinConfidence float64 `yaml:"min_confidence,omitempty"`
}

// AutomatonExpectation asserts the shape of one synthesized automaton.
type AutomatonExpectation struct {
	ID           string   `yaml:"id"`
	States       int      `yaml:"states,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and coherent.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Contract == "" {
		return fmt.Errorf("contract text is required")
	}
	if len(s.Responses) == 0 {
		return fmt.Errorf("responses list is required and must be non-empty")
	}

	e := s.Expect
	if e.Error == "" && e.Processes == 0 && len(e.Automatons) == 0 &&
		len(e.Dependencies) == 0 && e.MinConfidence == 0 {
		return fmt.Errorf("expect must assert at least one outcome")
	}
	if e.Error != "" && (e.Processes != 0 || len(e.Automatons) > 0 || len(e.Dependencies) > 0) {
		return fmt.Errorf("expect.error excludes success expectations")
	}
	for i, a := range e.Automatons {
		if a.ID == "" {
			return fmt.Errorf("expect.automatons[%d]: id is required", i)
		}
	}

	return nil
}
