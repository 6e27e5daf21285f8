package uid_test

import (
	"testing"

	"github.com/SergioST90/document-processing-system/internal/pkg/uid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	a := uid.NewUUID()
	b := uid.NewUUID()

	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
