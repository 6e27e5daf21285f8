package envelope_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_RequiredFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"complete", `{"request_id":"r1","workflow_name":"default"}`, true},
		{"missing request_id", `{"workflow_name":"default"}`, false},
		{"missing workflow_name", `{"request_id":"r1"}`, false},
		{"not json", `{{{`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := envelope.Decode([]byte(tt.body))
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, "r1", m.RequestID)
				return
			}
			require.Error(t, err)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperror.CodeEnvelopeInvalid, appErr.Code)
			assert.False(t, appErr.IsRetryable())
		})
	}
}

func TestMessage_UnknownFieldsSurviveRoundTrip(t *testing.T) {
	body := `{
		"request_id": "r1",
		"workflow_name": "default",
		"page_index": 2,
		"shard_hint": "eu-west-1",
		"schema_rev": 7
	}`

	m, err := envelope.Decode([]byte(body))
	require.NoError(t, err)
	require.NotNil(t, m.PageIndex)
	assert.Equal(t, 2, *m.PageIndex)

	out, err := m.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "eu-west-1", decoded["shard_hint"])
	assert.Equal(t, float64(7), decoded["schema_rev"])
	assert.Equal(t, "r1", decoded["request_id"])
}

func TestMessage_EncodeKnownFieldsWinOverExtra(t *testing.T) {
	m, err := envelope.Decode([]byte(`{"request_id":"r1","workflow_name":"default","later_field":1}`))
	require.NoError(t, err)

	// Simulate a stale stash colliding with an owned key.
	m.Extra["workflow_name"] = json.RawMessage(`"stale"`)

	out, err := m.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "default", decoded["workflow_name"])
}

func TestMessage_CloneIsIndependent(t *testing.T) {
	deadline := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := envelope.New("r1", "default")
	m.DeadlineUTC = &deadline
	m.Payload["file_path"] = "/tmp/a.pdf"

	c := m.Clone()
	c.Payload["file_path"] = "/tmp/b.pdf"
	c.CurrentStage = "ocr"

	assert.Equal(t, "/tmp/a.pdf", m.Payload["file_path"])
	assert.Empty(t, m.CurrentStage)
	assert.Equal(t, m.DeadlineUTC, c.DeadlineUTC)
}

func TestMessage_WithPayloadMerges(t *testing.T) {
	m := envelope.New("r1", "default")
	m.Payload["file_path"] = "/tmp/a.pdf"

	out := m.WithPayload("ocr", map[string]any{"ocr_text": "FACTURA"})

	assert.Equal(t, "ocr", out.SourceComponent)
	assert.Equal(t, "/tmp/a.pdf", out.Payload["file_path"])
	assert.Equal(t, "FACTURA", out.Payload["ocr_text"])
	assert.Empty(t, m.SourceComponent)
}

func TestNew_GeneratesIdentity(t *testing.T) {
	m := envelope.New("r1", "default")
	assert.NotEmpty(t, m.TraceID)
	assert.False(t, m.CreatedAt.IsZero())
	assert.NoError(t, m.Validate())
}
