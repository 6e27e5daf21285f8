package entity

import (
	"time"

	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
)

// Aggregation stage names. Each fan-in round is keyed by (request_id, stage);
// the splitter seeds the classification round, the classification aggregator
// seeds the extraction round.
const (
	StageClassification = "classification"
	StageExtraction     = "extraction"
)

const CodeAggregationRowMissing = "AGGREGATION_ROW_MISSING"

var ErrAggregationRowMissing = apperror.NewPersistance(
	CodeAggregationRowMissing,
	"aggregation state row not found for request and stage",
)

// State is the counter for one fan-in round. received_count never exceeds
// expected_count (the increment is clamped), and is_complete flips exactly
// once; together these make finalization deterministic under redelivery.
type State struct {
	ID            string    `gorm:"column:id;type:uuid;primaryKey"`
	RequestID     string    `gorm:"column:request_id;type:uuid;not null;uniqueIndex:uq_agg_state_lookup"`
	Stage         string    `gorm:"column:stage;type:varchar(50);not null;uniqueIndex:uq_agg_state_lookup"`
	ExpectedCount int       `gorm:"column:expected_count;type:int;not null"`
	ReceivedCount int       `gorm:"column:received_count;type:int;not null;default:0"`
	ReceivedIDs   []string  `gorm:"column:received_ids;type:jsonb;serializer:json"`
	IsComplete    bool      `gorm:"column:is_complete;type:boolean;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamptz;not null;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (State) TableName() string {
	return "aggregation_state"
}
