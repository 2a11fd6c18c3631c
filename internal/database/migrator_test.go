package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"repurpose-backend/internal/database"
)

func TestPending_EmbeddedSchema(t *testing.T) {
	names, err := database.Pending()
	require.NoError(t, err)

	require.NotEmpty(t, names)
	assert.Equal(t, "001_initial_schema.sql", names[0])
}
