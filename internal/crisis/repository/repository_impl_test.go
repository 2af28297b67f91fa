package repository

import (
	"context"
	"testing"
	"time"

	crisisdomain "github.com/smallbiznis/sathi/internal/crisis/domain"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
	"github.com/smallbiznis/sathi/internal/testutil/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestFindByIDForUpdateOnSQLite(t *testing.T) {
	db := testdb.Open(t)
	repo := Provide()
	ctx := context.Background()
	now := time.Date(2026, 7, 26, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, db, &crisisdomain.CrisisRequest{
		ID:              42,
		RawText:         "Need drinking water for 40 families in Kurla",
		NeedType:        resourcedomain.TypeWater,
		Extraction:      datatypes.JSON(`{}`),
		UrgencyScore:    70,
		UrgencyLevel:    "U2 - High",
		UrgencyAnalysis: datatypes.JSON(`{}`),
		Status:          crisisdomain.StatusNew,
		CreatedAt:       now,
		UpdatedAt:       now,
	}))

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.FindByIDForUpdate(ctx, tx, 42)
		require.NoError(t, err)
		require.NotNil(t, locked)
		assert.Equal(t, crisisdomain.StatusNew, locked.Status)
		return repo.UpdateStatus(ctx, tx, 42, crisisdomain.StatusInProgress, now.Add(time.Minute))
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, db, 42)
	require.NoError(t, err)
	assert.Equal(t, crisisdomain.StatusInProgress, got.Status)

	missing, err := repo.FindByIDForUpdate(ctx, db, 43)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
