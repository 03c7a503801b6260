// Package steps describes the verification stages and the ordering constraints between them.
package steps

import (
	"fmt"
	"slices"
)

// Step categories
const (
	CategoryAcquisition = "acquisition"
	CategoryAnalysis    = "analysis"
	CategorySynthesis   = "synthesis"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name     string
	Category string
	// Dependencies must run earlier in every chain containing the step.
	Dependencies []string
	// Optional steps may be absent from a chain, but when present they must run earlier.
	Optional []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	"data_acquisition": {
		Name:     "data_acquisition",
		Category: CategoryAcquisition,
	},
	"content_analysis": {
		Name:     "content_analysis",
		Category: CategoryAnalysis,
		Optional: []string{"data_acquisition"},
	},
	"information_extraction": {
		Name:     "information_extraction",
		Category: CategoryAnalysis,
		Optional: []string{"data_acquisition", "content_analysis"},
	},
	"source_verification": {
		Name:         "source_verification",
		Category:     CategoryAnalysis,
		Dependencies: []string{"content_analysis"},
		Optional:     []string{"data_acquisition", "information_extraction"},
	},
	"financial_risk": {
		Name:         "financial_risk",
		Category:     CategoryAnalysis,
		Dependencies: []string{"content_analysis"},
		Optional:     []string{"data_acquisition"},
	},
	"risk_synthesis": {
		Name:         "risk_synthesis",
		Category:     CategorySynthesis,
		Dependencies: []string{"content_analysis", "source_verification", "financial_risk"},
		Optional:     []string{"data_acquisition", "information_extraction"},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// ValidateChain checks that every step in chain is registered, appears once,
// and runs after its dependencies and after any optional dependency present in the chain.
func ValidateChain(chain []string) error {
	for i, stepName := range chain {
		def, ok := StepRegistry[stepName]
		if !ok {
			return fmt.Errorf("unknown step: %s", stepName)
		}
		if slices.Contains(chain[i+1:], stepName) {
			return fmt.Errorf("duplicate step: %s", stepName)
		}

		earlier := chain[:i]
		var missing []string
		for _, dep := range def.Dependencies {
			if !slices.Contains(earlier, dep) {
				missing = append(missing, dep)
			}
		}
		for _, dep := range def.Optional {
			if slices.Contains(chain[i+1:], dep) {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			return &DependencyError{Step: stepName, MissingDependencies: missing}
		}
	}
	return nil
}

// Category returns the category of a registered step, or "" when unknown.
func Category(stepName string) string {
	return StepRegistry[stepName].Category
}
