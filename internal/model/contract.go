package model

import "time"

// Contract aggregates every automaton synthesized from one source document.
type Contract struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	CreatedBy   string      `json:"created_by"`
	Description string      `json:"description,omitempty"`
	Automatons  []Automaton `json:"automates"`
}

// Automaton returns the automaton with the given id, or nil.
func (c *Contract) Automaton(id string) *Automaton {
	for i := range c.Automatons {
		if c.Automatons[i].ID == id {
			return &c.Automatons[i]
		}
	}
	return nil
}

// DependencyGraph maps each automaton id to its dependency ids.
// This is the graph the validator checks for cycles at contract level.
func (c *Contract) DependencyGraph() map[string][]string {
	graph := make(map[string][]string, len(c.Automatons))
	for _, a := range c.Automatons {
		deps := a.Dependencies
		if deps == nil {
			deps = []string{}
		}
		graph[a.ID] = deps
	}
	return graph
}

// AnalysisResult reports the outcome of process detection.
type AnalysisResult struct {
	Processes  []Process     `json:"processes"`
	Method     string        `json:"detection_method"`
	Confidence float64       `json:"confidence_score"`
	Elapsed    time.Duration `json:"analysis_time"`
	TotalSteps int           `json:"total_steps"`
}

// Document is the full result of analyzing one source document: the
// synthesized contract, the process analysis that produced it, and the raw
// (post-elimination) dependency map between process ids.
type Document struct {
	RunID        string              `json:"run_id"`
	Contract     Contract            `json:"contract"`
	Analysis     AnalysisResult      `json:"process_analysis"`
	Dependencies map[string][]string `json:"dependencies"`
}
