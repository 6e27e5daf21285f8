package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/tracer"
	aggentity "github.com/SergioST90/document-processing-system/internal/modules/aggregation/entity"
	aggrepo "github.com/SergioST90/document-processing-system/internal/modules/aggregation/repository"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	requestrepo "github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	"github.com/SergioST90/document-processing-system/internal/pkg/utils"
)

type getStatusUseCase struct {
	Log        logger.Logger
	Tracer     tracer.Tracer
	Cache      database.CacheDatabase
	CacheTTL   time.Duration
	RequestQry requestrepo.RequestQueryRepository
	AggQry     aggrepo.StateQueryRepository
}

const getStatusUseCaseName = "usecase:ingest.get_status"

var _ GetStatusUseCase = (*getStatusUseCase)(nil)

func NewGetStatusUseCase(
	log logger.Logger,
	trc tracer.Tracer,
	cfg *config.RedisConfig,
	cache database.CacheDatabase,
	requestQry requestrepo.RequestQueryRepository,
	aggQry aggrepo.StateQueryRepository,
) GetStatusUseCase {
	ttl := time.Duration(cfg.StatusTTL) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &getStatusUseCase{
		Log:        log.WithField("action", getStatusUseCaseName),
		Tracer:     trc,
		Cache:      cache,
		CacheTTL:   ttl,
		RequestQry: requestQry,
		AggQry:     aggQry,
	}
}

func (uc *getStatusUseCase) Execute(ctx context.Context, req *GetStatusRequest) (*GetStatusResponse, error) {
	span, ctx := uc.Tracer.StartSpan(ctx, getStatusUseCaseName)
	defer span.Finish()

	// Terminal requests never change again, so their status responses are
	// safe to serve from cache.
	if cached := uc.fromCache(ctx, req.RequestID); cached != nil {
		return cached, nil
	}

	request, err := uc.RequestQry.FindByID(ctx, req.RequestID)
	if err != nil {
		utils.RecordSpanError(span, err)
		return nil, err
	}
	if request == nil {
		return nil, apperror.NewPersistance(entity.CodeRequestNotFound, "request not found")
	}

	resp := &GetStatusResponse{
		RequestID:     request.ID,
		Status:        string(request.Status),
		WorkflowName:  request.WorkflowName,
		CreatedAt:     request.CreatedAt,
		DeadlineUTC:   request.DeadlineUTC,
		CompletedAt:   request.CompletedAt,
		PageCount:     request.PageCount,
		DocumentCount: request.DocumentCount,
		Result:        request.ResultPayload,
		Error:         request.ErrorMessage,
	}

	if request.Status.IsTerminal() {
		uc.toCache(ctx, resp)
	} else {
		resp.Progress = uc.progressFor(ctx, request)
	}
	return resp, nil
}

// progressFor reads the fan-in counter of the round an in-flight request is
// currently waiting on. Best effort: a missing row just means the round has
// not been seeded yet.
func (uc *getStatusUseCase) progressFor(ctx context.Context, request *entity.Request) *StageProgress {
	var stage string
	switch request.Status {
	case entity.RequestStatusClassifying:
		stage = aggentity.StageClassification
	case entity.RequestStatusExtracting:
		stage = aggentity.StageExtraction
	default:
		return nil
	}

	state, err := uc.AggQry.FindByRequestStage(ctx, request.ID, stage)
	if err != nil || state == nil {
		return nil
	}
	return &StageProgress{
		Stage:    state.Stage,
		Received: state.ReceivedCount,
		Expected: state.ExpectedCount,
	}
}

func statusCacheKey(requestID string) string {
	return "docproc:status:" + requestID
}

func (uc *getStatusUseCase) fromCache(ctx context.Context, requestID string) *GetStatusResponse {
	if uc.Cache == nil {
		return nil
	}
	raw, err := uc.Cache.GetClient().Get(ctx, statusCacheKey(requestID)).Result()
	if err != nil {
		return nil
	}
	var resp GetStatusResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil
	}
	return &resp
}

func (uc *getStatusUseCase) toCache(ctx context.Context, resp *GetStatusResponse) {
	if uc.Cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	// Cache failures are invisible to the caller; the DB remains the source
	// of truth.
	if err := uc.Cache.GetClient().Set(ctx, statusCacheKey(resp.RequestID), raw, uc.CacheTTL).Err(); err != nil {
		uc.Log.WithContext(ctx).WithField("error", err.Error()).Warn("status cache write failed")
	}
}
