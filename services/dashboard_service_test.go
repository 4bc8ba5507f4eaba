package services

import (
	"testing"
	"time"

	"github.com/lanzy-lanzy/blackcobra/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardRecompute(t *testing.T) {
	db := newTestDB(t)
	belts := seedBelts(t, db)
	svc := NewDashboardService(db)
	payments := NewPaymentService(db)
	now := time.Now()

	active := createTrainee(t, db, &belts[0], now)
	createTrainee(t, db, &belts[1], now)
	inactive := createTrainee(t, db, &belts[0], now)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	createEvent(t, db, now.Add(48*time.Hour))
	past := createEvent(t, db, now.AddDate(0, 0, -10))
	require.NoError(t, db.Model(past).Update("end_date", now.AddDate(0, 0, -9)).Error)

	_, err := payments.Create(PaymentCreateRequest{
		TraineeID: active.ID, Amount: 120, DueDate: "2026-09-10", Description: "Dues",
	})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Promotion{
		ID:        uuid.NewString(),
		TraineeID: active.ID,
		BeltToID:  &belts[1].ID,
		Date:      now.AddDate(0, 0, -5),
	}).Error)
	require.NoError(t, db.Create(&models.Promotion{
		ID:        uuid.NewString(),
		TraineeID: active.ID,
		BeltToID:  &belts[2].ID,
		Date:      now.AddDate(0, 0, -45),
	}).Error)

	summary, err := svc.Recompute(now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.TotalTrainees, "inactive trainees are not counted")
	assert.EqualValues(t, 1, summary.UpcomingEvents)
	assert.EqualValues(t, 1, summary.PendingPayments)
	assert.Equal(t, 120.0, summary.PendingPaymentsAmount)
	assert.EqualValues(t, 1, summary.RecentPromotions, "only the last 30 days count")
}

func TestDashboardSummaryServesCache(t *testing.T) {
	db := newTestDB(t)
	belts := seedBelts(t, db)
	svc := NewDashboardService(db)
	now := time.Now()

	createTrainee(t, db, &belts[0], now)

	// Cold cache: the first read recomputes.
	summary, _, err := svc.Summary(now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.TotalTrainees)

	// The cache does not notice new data until the next recompute.
	createTrainee(t, db, &belts[0], now)
	summary, _, err = svc.Summary(now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.TotalTrainees, "cache only refreshes on recompute")

	_, err = svc.Recompute(now)
	require.NoError(t, err)
	summary, _, err = svc.Summary(now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.TotalTrainees)

	// Recompute overwrites the single row rather than stacking copies.
	var rows int64
	require.NoError(t, db.Model(&models.DashboardStat{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestChartSeries(t *testing.T) {
	db := newTestDB(t)
	belts := seedBelts(t, db)
	svc := NewDashboardService(db)
	payments := NewPaymentService(db)
	now := time.Now()

	old := createTrainee(t, db, &belts[0], now.AddDate(0, 0, -160))
	createTrainee(t, db, &belts[1], now.AddDate(0, 0, -10))

	growth, err := svc.TraineeGrowth(now)
	require.NoError(t, err)
	require.Len(t, growth, 6)
	assert.Equal(t, 1.0, growth[0].Value, "only the older trainee existed five months back")
	assert.Equal(t, 2.0, growth[5].Value)

	dist, err := svc.BeltDistribution()
	require.NoError(t, err)
	require.Len(t, dist, 7)
	assert.Equal(t, "White", dist[0].Label)
	assert.Equal(t, 1.0, dist[0].Value)
	assert.Equal(t, "#FFFFFF", dist[0].Color)
	assert.Equal(t, 1.0, dist[1].Value)
	assert.Zero(t, dist[6].Value)

	p, err := payments.Create(PaymentCreateRequest{
		TraineeID: old.ID, Amount: 50, DueDate: "2026-09-01", Description: "Dues",
	})
	require.NoError(t, err)
	_, err = payments.MarkPaid(p.ID)
	require.NoError(t, err)
	_, err = payments.Create(PaymentCreateRequest{
		TraineeID: old.ID, Amount: 50, DueDate: "2026-10-01", Description: "Dues",
	})
	require.NoError(t, err)

	status, err := svc.PaymentStatus()
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.Equal(t, "Paid", status[0].Label)
	assert.Equal(t, 1.0, status[0].Value)
	assert.Equal(t, "Pending", status[1].Label)
	assert.Equal(t, 1.0, status[1].Value)
}
