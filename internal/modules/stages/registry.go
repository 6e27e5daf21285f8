package stages

import (
	"fmt"

	"github.com/SergioST90/document-processing-system/internal/pipeline/runtime"
)

// Registry maps component names to stage constructors. The worker binary
// selects one by DOCPROC_COMPONENT_NAME.
var registry = map[string]func(Dependencies) runtime.Stage{
	ComponentWorkflowRouter:           func(d Dependencies) runtime.Stage { return NewWorkflowRouter(d) },
	ComponentSplitter:                 func(d Dependencies) runtime.Stage { return NewSplitter(d) },
	ComponentOCR:                      func(d Dependencies) runtime.Stage { return NewOCR(d) },
	ComponentClassifier:               func(d Dependencies) runtime.Stage { return NewClassifier(d) },
	ComponentClassificationAggregator: func(d Dependencies) runtime.Stage { return NewClassificationAggregator(d) },
	ComponentExtractor:                func(d Dependencies) runtime.Stage { return NewExtractor(d) },
	ComponentExtractionAggregator:     func(d Dependencies) runtime.Stage { return NewExtractionAggregator(d) },
	ComponentConsolidator:             func(d Dependencies) runtime.Stage { return NewConsolidator(d) },
}

// Build constructs the stage for the named component.
func Build(name string, deps Dependencies) (runtime.Stage, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown component '%s' (known: %v)", name, Names())
	}
	return ctor(deps), nil
}

// Names lists the registered component names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
