package stages

import (
	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/workflow"
)

// realCatalogDir points at the canonical workflow fixture shared with the
// workflow package tests.
const realCatalogDir = "../../pipeline/workflow/testdata"

// noCatalogDir forces catalog lookups to fail so threshold resolution falls
// back to the environment-level config, which the tests control directly.
const noCatalogDir = "testdata-missing"

func testDeps(repo Repositories, catalogDir string, clsThreshold, extThreshold float64) Dependencies {
	cfg := &config.Config{}
	cfg.Pipeline.ClassificationConfidenceThreshold = clsThreshold
	cfg.Pipeline.ExtractionConfidenceThreshold = extThreshold
	cfg.Pipeline.DefaultSLASeconds = 60

	return Dependencies{
		Cfg:     cfg,
		Log:     logger.NewNoOpLogger(),
		Catalog: workflow.NewCatalog(catalogDir),
		Repo:    repo,
	}
}

func pageMessage(requestID string, pageIndex int) *envelope.Message {
	msg := envelope.New(requestID, "default")
	msg.PageIndex = envelope.IntPtr(pageIndex)
	return msg
}

func strPtr(s string) *string { return &s }
