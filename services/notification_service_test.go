package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/lanzy-lanzy/blackcobra/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, models.RoleTrainee)
	svc := NewNotificationService(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		require.NoError(t, Emit(db, user.ID, fmt.Sprintf("Note %d", i), "", models.NotificationTypeEvent, ""))
		// Spread created_at so ordering is deterministic.
		require.NoError(t, db.Model(&models.Notification{}).
			Where("title = ?", fmt.Sprintf("Note %d", i)).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	notifications, unread, err := svc.List(user.ID, 10)
	require.NoError(t, err)
	assert.Len(t, notifications, 10, "listing caps at the requested limit")
	assert.EqualValues(t, 12, unread, "unread count covers the whole set, not the page")
	assert.Equal(t, "Note 11", notifications[0].Title)
}

func TestMarkReadOwnership(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, models.RoleTrainee)
	stranger := createUser(t, db, models.RoleTrainee)
	svc := NewNotificationService(db)

	require.NoError(t, Emit(db, owner.ID, "Hello", "", models.NotificationTypeEvent, ""))
	var note models.Notification
	require.NoError(t, db.Where("user_id = ?", owner.ID).First(&note).Error)

	// Someone else's notification reads as absent, not as forbidden.
	_, err := svc.MarkRead(note.ID, stranger.ID)
	assert.True(t, IsKind(err, KindNotFound))

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", note.ID).Error)
	assert.False(t, stored.IsRead, "a rejected request changes nothing")

	unread, err := svc.MarkRead(note.ID, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	// Marking an already-read row again is a no-op.
	unread, err = svc.MarkRead(note.ID, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)
}

func TestMarkAllRead(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, models.RoleTrainee)
	other := createUser(t, db, models.RoleTrainee)
	svc := NewNotificationService(db)

	for i := 0; i < 3; i++ {
		require.NoError(t, Emit(db, user.ID, "Note", "", models.NotificationTypeEvent, ""))
	}
	require.NoError(t, Emit(db, other.ID, "Other", "", models.NotificationTypeEvent, ""))

	unread, err := svc.MarkAllRead(user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	_, stillUnread, err := svc.List(user.ID, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stillUnread)

	_, otherUnread, err := svc.List(other.ID, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, otherUnread, "bulk read never crosses user boundaries")
}
