// Package workflow loads and caches the declarative workflow definitions that
// drive stage routing, fan-in accounting, and SLA budgets.
package workflow

// DefaultWorkflowName is used when a submission does not name a workflow and
// for deriving the canonical broker topology at worker startup.
const DefaultWorkflowName = "default"

// AggregationKind names the only supported aggregation type.
const AggregationKindFanIn = "fan_in"

// Sources for an aggregation's expected count, resolved against the request row.
const (
	ExpectFromPageCount     = "page_count"
	ExpectFromDocumentCount = "document_count"
)

// Aggregation describes a fan-in stage: messages are collected by request and
// the expected count is read from the named request column.
type Aggregation struct {
	Type            string `yaml:"type"`
	CollectBy       string `yaml:"collect_by"`
	ExpectCountFrom string `yaml:"expect_count_from"`
}

// Stage is one named step of a workflow. One stage maps to one worker
// component and one queue binding.
type Stage struct {
	Name                string       `yaml:"name"`
	Component           string       `yaml:"component"`
	RoutingKey          string       `yaml:"routing_key"`
	TimeoutSeconds      int          `yaml:"timeout_seconds"`
	ConfidenceThreshold *float64     `yaml:"confidence_threshold"`
	BackofficeQueue     string       `yaml:"backoffice_queue"`
	Aggregation         *Aggregation `yaml:"aggregation"`
}

// SLA is the workflow's deadline budget. Warn and escalation thresholds are
// percentages of elapsed budget.
type SLA struct {
	DeadlineSeconds        int `yaml:"deadline_seconds"`
	WarnThresholdPct       int `yaml:"warn_threshold_pct"`
	EscalationThresholdPct int `yaml:"escalation_threshold_pct"`
}

// Field is one extraction schema field for a document type.
type Field struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
}

// ExtractionSchema lists the fields expected from a given doc type.
type ExtractionSchema struct {
	Fields []Field `yaml:"fields"`
}

// Workflow is a complete parsed workflow definition file.
type Workflow struct {
	Name              string                      `yaml:"name"`
	Description       string                      `yaml:"description"`
	Version           int                         `yaml:"version"`
	SLA               SLA                         `yaml:"sla"`
	Stages            []Stage                     `yaml:"stages"`
	ExtractionSchemas map[string]ExtractionSchema `yaml:"extraction_schemas"`
}
