package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	"gopkg.in/yaml.v3"
)

// Catalog loads workflow definitions lazily from a directory of YAML files
// (one file per workflow, <name>.yaml) and caches them for the process
// lifetime. Hot reload is deliberately not supported; workers are restarted
// to pick up workflow changes.
type Catalog struct {
	dir string

	mu    sync.RWMutex
	cache map[string]*Workflow
}

// NewCatalog creates a catalog rooted at dir. No files are read until the
// first Load.
func NewCatalog(dir string) *Catalog {
	return &Catalog{
		dir:   dir,
		cache: make(map[string]*Workflow),
	}
}

// Load returns the named workflow, reading and caching it on first use.
// An unknown workflow is a permanent error: retrying the same message will
// never succeed, so callers dead-letter instead of requeueing.
func (c *Catalog) Load(name string) (*Workflow, error) {
	c.mu.RLock()
	if wf, ok := c.cache[name]; ok {
		c.mu.RUnlock()
		return wf, nil
	}
	c.mu.RUnlock()

	path := filepath.Join(c.dir, name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.NewPersistance(
			apperror.CodeWorkflowNotFound,
			fmt.Sprintf("workflow config not found: %s", path),
			err,
		)
	}

	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, apperror.NewPersistance(
			apperror.CodeWorkflowNotFound,
			fmt.Sprintf("workflow config not parseable: %s", path),
			err,
		)
	}
	if len(wf.Stages) == 0 {
		return nil, apperror.NewPersistance(
			apperror.CodeWorkflowNotFound,
			fmt.Sprintf("workflow '%s' has no stages", name),
		)
	}

	c.mu.Lock()
	c.cache[name] = &wf
	c.mu.Unlock()
	return &wf, nil
}

// FirstStage returns the first stage of the workflow.
func (c *Catalog) FirstStage(workflowName string) (*Stage, error) {
	wf, err := c.Load(workflowName)
	if err != nil {
		return nil, err
	}
	return &wf.Stages[0], nil
}

// NextStage returns the stage following currentStageName, or nil if the
// current stage is terminal. An unknown stage name is a transient error:
// the message may have been produced against a newer workflow revision.
func (c *Catalog) NextStage(workflowName, currentStageName string) (*Stage, error) {
	wf, err := c.Load(workflowName)
	if err != nil {
		return nil, err
	}
	for i := range wf.Stages {
		if wf.Stages[i].Name == currentStageName {
			if i+1 < len(wf.Stages) {
				return &wf.Stages[i+1], nil
			}
			return nil, nil
		}
	}
	return nil, apperror.NewTransient(
		apperror.CodeStageNotFound,
		fmt.Sprintf("stage '%s' not found in workflow '%s'", currentStageName, workflowName),
	)
}

// StageByName returns the named stage.
func (c *Catalog) StageByName(workflowName, stageName string) (*Stage, error) {
	wf, err := c.Load(workflowName)
	if err != nil {
		return nil, err
	}
	for i := range wf.Stages {
		if wf.Stages[i].Name == stageName {
			return &wf.Stages[i], nil
		}
	}
	return nil, apperror.NewTransient(
		apperror.CodeStageNotFound,
		fmt.Sprintf("stage '%s' not found in workflow '%s'", stageName, workflowName),
	)
}

// StageByComponent finds the stage executed by the given component. It is the
// fallback used when a message arrives without current_stage set.
func (c *Catalog) StageByComponent(workflowName, component string) (*Stage, error) {
	wf, err := c.Load(workflowName)
	if err != nil {
		return nil, err
	}
	for i := range wf.Stages {
		if wf.Stages[i].Component == component {
			return &wf.Stages[i], nil
		}
	}
	return nil, apperror.NewTransient(
		apperror.CodeStageNotFound,
		fmt.Sprintf("no stage with component '%s' in workflow '%s'", component, workflowName),
	)
}

// ExtractionSchemaFor returns the extraction field schema for (workflow,
// docType), or nil if the workflow does not define one.
func (c *Catalog) ExtractionSchemaFor(workflowName, docType string) (*ExtractionSchema, error) {
	wf, err := c.Load(workflowName)
	if err != nil {
		return nil, err
	}
	schema, ok := wf.ExtractionSchemas[docType]
	if !ok {
		return nil, nil
	}
	return &schema, nil
}
