package regions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	provtest "github.com/meridianbank/provisiond/internal/testing"
)

func TestListRegionsSeeded(t *testing.T) {
	db := provtest.CreateTestDB(t)
	store := NewStore(db)

	regions, err := store.ListRegions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"SIT1", "SIT2", "UAT1"}, regions)
}

func TestListRegionsSkipsInactive(t *testing.T) {
	db := provtest.CreateTestDB(t)
	store := NewStore(db)

	_, err := db.Exec("UPDATE regions SET active = 0 WHERE code = 'SIT2'")
	require.NoError(t, err)

	regions, err := store.ListRegions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"SIT1", "UAT1"}, regions)
}
