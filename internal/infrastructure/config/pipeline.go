package config

type PipelineConfig struct {
	ComponentName string `mapstructure:"component_name"`
	WorkflowsDir  string `mapstructure:"workflows_dir"`
	StoragePath   string `mapstructure:"storage_path"`
	HealthPort    int    `mapstructure:"health_port"`

	DefaultSLASeconds int `mapstructure:"default_sla_seconds"`

	ClassificationConfidenceThreshold float64 `mapstructure:"classification_confidence_threshold"`
	ExtractionConfidenceThreshold     float64 `mapstructure:"extraction_confidence_threshold"`

	BackofficeTaskTimeoutSeconds int `mapstructure:"backoffice_task_timeout_seconds"`
}
