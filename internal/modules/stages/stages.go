// Package stages implements the pipeline's worker stages on top of the
// runtime's processing contract. OCR, classification, and extraction carry
// stub logic in place of real engines; everything around them (routing,
// fan-out, fan-in accounting, confidence thresholds, back-office diversion)
// is the production substrate.
package stages

import (
	"hash/fnv"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	aggrepo "github.com/SergioST90/document-processing-system/internal/modules/aggregation/repository"
	borepo "github.com/SergioST90/document-processing-system/internal/modules/backoffice/repository"
	requestrepo "github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	"github.com/SergioST90/document-processing-system/internal/pipeline/workflow"
)

// Component names. One component maps to one queue (q.<name>) and one
// workflow stage.
const (
	ComponentWorkflowRouter           = "workflow_router"
	ComponentSplitter                 = "splitter"
	ComponentOCR                      = "ocr"
	ComponentClassifier               = "classifier"
	ComponentClassificationAggregator = "classification_aggregator"
	ComponentExtractor                = "extractor"
	ComponentExtractionAggregator     = "extraction_aggregator"
	ComponentConsolidator             = "consolidator"
)

// Repositories bundles every persistence dependency a stage might need.
// Constructors pick the subset they use.
type Repositories struct {
	RequestCmd requestrepo.RequestCommandRepository
	RequestQry requestrepo.RequestQueryRepository
	PageCmd    requestrepo.PageCommandRepository
	PageQry    requestrepo.PageQueryRepository
	DocCmd     requestrepo.DocumentCommandRepository
	DocQry     requestrepo.DocumentQueryRepository
	AggCmd     aggrepo.StateCommandRepository
	TaskCmd    borepo.TaskCommandRepository
}

// Dependencies is the constructor input shared by all stages.
type Dependencies struct {
	Cfg     *config.Config
	Log     logger.Logger
	Catalog *workflow.Catalog
	Repo    Repositories
}

// scaledHash maps a seed string deterministically into [lo, hi]. The stub
// engines use it instead of randomness so that redelivered messages produce
// byte-identical writes and replays stay idempotent.
func scaledHash(seed string, lo, hi float64) float64 {
	h := fnv.New32a()
	h.Write([]byte(seed))
	frac := float64(h.Sum32()%10000) / 10000.0
	return lo + frac*(hi-lo)
}

// pickHash selects an index in [0, n) deterministically from a seed.
func pickHash(seed string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(seed))
	return int(h.Sum32() % uint32(n))
}
