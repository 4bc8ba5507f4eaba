package services

import (
	"testing"
	"time"

	"github.com/lanzy-lanzy/blackcobra/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventReq(start, end time.Time) EventRequest {
	return EventRequest{
		Name:        "Winter Grading",
		StartDate:   start.Format(time.RFC3339),
		EndDate:     end.Format(time.RFC3339),
		Location:    "Main Dojo",
		EventType:   models.EventTypeGrading,
		IsPublished: true,
	}
}

func TestEventCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	start := time.Now().Add(48 * time.Hour)

	_, err := svc.Create(eventReq(start, start.Add(-time.Hour)))
	assert.True(t, IsKind(err, KindValidation), "end must follow start")

	req := eventReq(start, start.Add(4*time.Hour))
	req.RegistrationDeadline = start.Add(time.Hour).Format(time.RFC3339)
	_, err = svc.Create(req)
	assert.True(t, IsKind(err, KindValidation), "deadline must precede start")

	bad := 0
	req = eventReq(start, start.Add(4*time.Hour))
	req.MaxParticipants = &bad
	_, err = svc.Create(req)
	assert.True(t, IsKind(err, KindValidation))

	event, err := svc.Create(eventReq(start, start.Add(4*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "winter-grading", event.Slug)
	assert.True(t, event.IsUpcoming(time.Now()))
}

func TestEventUpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	belts := seedBelts(t, db)
	svc := NewEventService(db)
	start := time.Now().Add(48 * time.Hour)

	event, err := svc.Create(eventReq(start, start.Add(4*time.Hour)))
	require.NoError(t, err)

	req := eventReq(start, start.Add(6*time.Hour))
	req.Name = "Winter Grading Finals"
	updated, err := svc.Update(event.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Winter Grading Finals", updated.Name)
	assert.Equal(t, "winter-grading-finals", updated.Slug, "slug follows the name")

	_, err = svc.Update("no-such-event", req)
	assert.True(t, IsKind(err, KindNotFound))

	// Deleting the event takes its matches with it.
	t1 := createTrainee(t, db, &belts[0], time.Now())
	t2 := createTrainee(t, db, &belts[0], time.Now())
	judge := createUser(t, db, models.RoleJudge)
	createMatch(t, db, updated, t1, t2, judge, start)

	require.NoError(t, svc.Delete(event.ID))
	var matchCount int64
	require.NoError(t, db.Model(&models.Match{}).Where("event_id = ?", event.ID).Count(&matchCount).Error)
	assert.Zero(t, matchCount)

	assert.True(t, IsKind(svc.Delete(event.ID), KindNotFound))
}

func TestEventRegistration(t *testing.T) {
	db := newTestDB(t)
	belts := seedBelts(t, db)
	svc := NewEventService(db)
	now := time.Now()

	trainee := createTrainee(t, db, &belts[0], now)
	other := createTrainee(t, db, &belts[0], now)
	start := now.Add(72 * time.Hour)

	one := 1
	req := eventReq(start, start.Add(4*time.Hour))
	req.MaxParticipants = &one
	req.RegistrationDeadline = start.Add(-24 * time.Hour).Format(time.RFC3339)
	event, err := svc.Create(req)
	require.NoError(t, err)

	_, err = svc.Register("no-such-event", trainee.UserID, now)
	assert.True(t, IsKind(err, KindNotFound))

	reg, err := svc.Register(event.ID, trainee.UserID, now)
	require.NoError(t, err)
	assert.Equal(t, trainee.ID, reg.TraineeID)
	assert.EqualValues(t, 1, countNotifications(t, db, trainee.UserID, models.NotificationTypeEvent))

	_, err = svc.Register(event.ID, trainee.UserID, now)
	assert.True(t, IsKind(err, KindValidation), "double registration rejected")

	_, err = svc.Register(event.ID, other.UserID, now)
	assert.True(t, IsKind(err, KindInvalidState), "capacity of one is exhausted")

	// Past the deadline nobody gets in, even with room.
	_, err = svc.Register(event.ID, other.UserID, start.Add(-time.Hour))
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestRegisterUnpublishedEventHidden(t *testing.T) {
	db := newTestDB(t)
	belts := seedBelts(t, db)
	svc := NewEventService(db)
	now := time.Now()

	trainee := createTrainee(t, db, &belts[0], now)
	req := eventReq(now.Add(48*time.Hour), now.Add(52*time.Hour))
	req.IsPublished = false
	event, err := svc.Create(req)
	require.NoError(t, err)

	// A draft event reads as absent to trainees, not as forbidden.
	_, err = svc.Register(event.ID, trainee.UserID, now)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestUnregister(t *testing.T) {
	db := newTestDB(t)
	belts := seedBelts(t, db)
	svc := NewEventService(db)
	now := time.Now()

	trainee := createTrainee(t, db, &belts[0], now)
	start := now.Add(48 * time.Hour)
	event, err := svc.Create(eventReq(start, start.Add(4*time.Hour)))
	require.NoError(t, err)

	assert.True(t, IsKind(svc.Unregister(event.ID, trainee.UserID, now), KindNotFound))

	_, err = svc.Register(event.ID, trainee.UserID, now)
	require.NoError(t, err)

	// Too late to back out once the event is underway.
	err = svc.Unregister(event.ID, trainee.UserID, start.Add(time.Minute))
	assert.True(t, IsKind(err, KindInvalidState))

	require.NoError(t, svc.Unregister(event.ID, trainee.UserID, now))
	var count int64
	require.NoError(t, db.Model(&models.EventRegistration{}).Where("event_id = ?", event.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEventDetailParticipants(t *testing.T) {
	db := newTestDB(t)
	belts := seedBelts(t, db)
	svc := NewEventService(db)
	now := time.Now()

	t1 := createTrainee(t, db, &belts[0], now)
	t2 := createTrainee(t, db, &belts[0], now)
	t3 := createTrainee(t, db, &belts[0], now)
	judge := createUser(t, db, models.RoleJudge)
	event := createEvent(t, db, now.Add(24*time.Hour))

	createMatch(t, db, event, t1, t2, judge, now.Add(24*time.Hour))
	createMatch(t, db, event, t1, t3, judge, now.Add(25*time.Hour))

	detail, participants, err := svc.Detail(event.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Matches, 2)
	assert.Len(t, participants, 3, "participants are deduplicated across matches")
}
