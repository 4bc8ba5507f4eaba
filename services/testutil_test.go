package services

import (
	"testing"
	"time"

	"github.com/lanzy-lanzy/blackcobra/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database with the full schema. A single
// connection keeps the memory database alive for the whole test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Belt{},
		&models.Trainee{},
		&models.Event{},
		&models.EventRegistration{},
		&models.Match{},
		&models.Payment{},
		&models.Promotion{},
		&models.Notification{},
		&models.DashboardStat{},
	))
	return db
}

// seedBelts installs the default ladder and returns it lowest-order first.
func seedBelts(t *testing.T, db *gorm.DB) []models.Belt {
	t.Helper()
	require.NoError(t, NewBeltService(db).SeedDefaults())
	var belts []models.Belt
	require.NoError(t, db.Order("sort_order ASC").Find(&belts).Error)
	require.Len(t, belts, 7)
	return belts
}

func createUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     role + "_" + suffix,
		Email:        role + "_" + suffix + "@example.com",
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     role,
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTrainee makes an approved, active trainee on the given belt who
// joined at joinDate.
func createTrainee(t *testing.T, db *gorm.DB, belt *models.Belt, joinDate time.Time) *models.Trainee {
	t.Helper()
	user := createUser(t, db, models.RoleTrainee)
	trainee := &models.Trainee{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		DateOfBirth:   time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		ContactNumber: "09171234567",
		JoinDate:      joinDate,
		IsActive:      true,
		IsApproved:    true,
	}
	if belt != nil {
		trainee.BeltID = &belt.ID
	}
	require.NoError(t, db.Create(trainee).Error)
	trainee.User = *user
	trainee.Belt = belt
	return trainee
}

func createEvent(t *testing.T, db *gorm.DB, start time.Time) *models.Event {
	t.Helper()
	event := &models.Event{
		ID:          uuid.NewString(),
		Name:        "Spring Tournament " + uuid.NewString()[:8],
		Slug:        "spring-tournament",
		StartDate:   start,
		EndDate:     start.Add(4 * time.Hour),
		Location:    "Main Dojo",
		EventType:   models.EventTypeTournament,
		IsPublished: true,
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func createMatch(t *testing.T, db *gorm.DB, event *models.Event, t1, t2 *models.Trainee, judge *models.User, matchTime time.Time) *models.Match {
	t.Helper()
	match := &models.Match{
		ID:         uuid.NewString(),
		EventID:    event.ID,
		Trainee1ID: t1.ID,
		Trainee2ID: t2.ID,
		JudgeID:    &judge.ID,
		MatchTime:  matchTime,
		Version:    1,
	}
	require.NoError(t, db.Create(match).Error)
	return match
}

// decideMatch records a finished match with the given winner, bypassing the
// scoring flow. For eligibility and stats fixtures.
func decideMatch(t *testing.T, db *gorm.DB, event *models.Event, t1, t2 *models.Trainee, judge *models.User, winnerID string) {
	t.Helper()
	match := createMatch(t, db, event, t1, t2, judge, time.Now().Add(-24*time.Hour))
	require.NoError(t, db.Model(match).Update("winner_id", winnerID).Error)
}

func countNotifications(t *testing.T, db *gorm.DB, userID, notificationType string) int64 {
	t.Helper()
	var count int64
	query := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if notificationType != "" {
		query = query.Where("notification_type = ?", notificationType)
	}
	require.NoError(t, query.Count(&count).Error)
	return count
}
