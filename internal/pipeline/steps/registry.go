// Package steps provides step definitions, dependency validation, and step
// ordering for the generate and update operations.
package steps

import (
	"fmt"
)

// Step names
const (
	LoadPrevious      = "load_previous"
	ValidateInputs    = "validate_inputs"
	ParseDocuments    = "parse_documents"
	ExtractExperience = "extract_experience"
	AnalyzeStyle      = "analyze_style"
	GenerateContent   = "generate_content"
	UpdateContent     = "update_content"
	ApplyTemplate     = "apply_template"
	RenderFormats     = "render_formats"
	WriteManifest     = "write_manifest"
	ApplyRetention    = "apply_retention"
)

// Step categories
const (
	CategoryIngestion   = "ingestion"
	CategorySynthesis   = "synthesis"
	CategoryTemplating  = "templating"
	CategoryRendering   = "rendering"
	CategoryPersistence = "persistence"
)

// Operations with a fixed step plan
const (
	OperationGenerate = "generate"
	OperationUpdate   = "update"
	OperationRender   = "render"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all step definitions. A dependency only binds when
// the step it names is part of the running plan.
var StepRegistry = map[string]StepDefinition{
	LoadPrevious: {
		Name:     LoadPrevious,
		Category: CategoryPersistence,
	},
	ValidateInputs: {
		Name:     ValidateInputs,
		Category: CategoryIngestion,
	},
	ParseDocuments: {
		Name:         ParseDocuments,
		Category:     CategoryIngestion,
		Dependencies: []string{ValidateInputs},
	},
	ExtractExperience: {
		Name:         ExtractExperience,
		Category:     CategorySynthesis,
		Dependencies: []string{ParseDocuments},
	},
	AnalyzeStyle: {
		Name:     AnalyzeStyle,
		Category: CategorySynthesis,
	},
	GenerateContent: {
		Name:         GenerateContent,
		Category:     CategorySynthesis,
		Dependencies: []string{ExtractExperience},
	},
	UpdateContent: {
		Name:         UpdateContent,
		Category:     CategorySynthesis,
		Dependencies: []string{LoadPrevious, ParseDocuments},
	},
	ApplyTemplate: {
		Name:         ApplyTemplate,
		Category:     CategoryTemplating,
		Dependencies: []string{GenerateContent},
	},
	RenderFormats: {
		Name:         RenderFormats,
		Category:     CategoryRendering,
		Dependencies: []string{ApplyTemplate, UpdateContent},
	},
	WriteManifest: {
		Name:         WriteManifest,
		Category:     CategoryPersistence,
		Dependencies: []string{RenderFormats},
	},
	ApplyRetention: {
		Name:         ApplyRetention,
		Category:     CategoryPersistence,
		Dependencies: []string{WriteManifest},
	},
}

var plans = map[string][]string{
	OperationGenerate: {
		ValidateInputs, ParseDocuments, ExtractExperience, AnalyzeStyle,
		GenerateContent, ApplyTemplate, RenderFormats, WriteManifest, ApplyRetention,
	},
	OperationUpdate: {
		LoadPrevious, ValidateInputs, ParseDocuments, UpdateContent,
		RenderFormats, WriteManifest, ApplyRetention,
	},
	OperationRender: {
		RenderFormats, WriteManifest, ApplyRetention,
	},
}

// Plan returns the ordered steps of an operation
func Plan(operation string) ([]string, error) {
	plan, ok := plans[operation]
	if !ok {
		return nil, fmt.Errorf("unknown operation: %s", operation)
	}
	return append([]string(nil), plan...), nil
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s has missing dependencies: %v", e.Step, e.MissingDependencies)
}

// ValidateDependencies checks that every dependency of stepName that is
// part of plan has completed
func ValidateDependencies(plan []string, completed map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	inPlan := make(map[string]bool, len(plan))
	for _, s := range plan {
		inPlan[s] = true
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if inPlan[dep] && !completed[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// Tracker follows one run through its plan
type Tracker struct {
	plan      []string
	completed map[string]bool
}

// NewTracker creates a tracker for an operation's plan
func NewTracker(operation string) (*Tracker, error) {
	plan, err := Plan(operation)
	if err != nil {
		return nil, err
	}
	return &Tracker{plan: plan, completed: make(map[string]bool)}, nil
}

// Start checks the step's dependencies and returns its 1-based position
// in the plan and the plan length
func (t *Tracker) Start(step string) (index, total int, err error) {
	index = -1
	for i, s := range t.plan {
		if s == step {
			index = i + 1
			break
		}
	}
	if index < 0 {
		return 0, len(t.plan), fmt.Errorf("step %s is not part of this plan", step)
	}
	if err := ValidateDependencies(t.plan, t.completed, step); err != nil {
		return index, len(t.plan), err
	}
	return index, len(t.plan), nil
}

// Complete marks a step as done
func (t *Tracker) Complete(step string) {
	t.completed[step] = true
}

// Completed reports whether a step has finished
func (t *Tracker) Completed(step string) bool {
	return t.completed[step]
}

// Remaining returns the plan steps not yet completed, in order
func (t *Tracker) Remaining() []string {
	var out []string
	for _, s := range t.plan {
		if !t.completed[s] {
			out = append(out, s)
		}
	}
	return out
}
