package services

import (
	"testing"
	"time"

	"github.com/lanzy-lanzy/blackcobra/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewBeltService(db)

	require.NoError(t, svc.SeedDefaults())
	require.NoError(t, svc.SeedDefaults())

	var count int64
	require.NoError(t, db.Model(&models.Belt{}).Count(&count).Error)
	assert.EqualValues(t, 7, count)

	var first, last models.Belt
	require.NoError(t, db.Order("sort_order ASC").First(&first).Error)
	require.NoError(t, db.Order("sort_order DESC").First(&last).Error)
	assert.Equal(t, "White", first.Name)
	assert.Equal(t, "Black", last.Name)
}

func TestNextBelt(t *testing.T) {
	db := newTestDB(t)
	belts := seedBelts(t, db)
	svc := NewBeltService(db)
	now := time.Now()

	white := createTrainee(t, db, &belts[0], now)
	next, err := svc.NextBelt(white)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "Yellow", next.Name)

	black := createTrainee(t, db, &belts[6], now)
	next, err = svc.NextBelt(black)
	require.NoError(t, err)
	assert.Nil(t, next, "top of the ladder has no next step")

	unranked := createTrainee(t, db, nil, now)
	next, err = svc.NextBelt(unranked)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "White", next.Name)
}

func TestBeltCandidatesAreStrictlyHigher(t *testing.T) {
	db := newTestDB(t)
	belts := seedBelts(t, db)
	svc := NewBeltService(db)

	green := createTrainee(t, db, &belts[3], time.Now())
	candidates, err := svc.Candidates(green)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "Blue", candidates[0].Name, "lowest step first")
	for _, b := range candidates {
		assert.Greater(t, b.Order, belts[3].Order)
	}
}
