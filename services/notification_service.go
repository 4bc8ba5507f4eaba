package services

import (
	"errors"

	"github.com/lanzy-lanzy/blackcobra/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// Emit appends a notification inside tx. Pure append: succeeds or the caller's
// transaction fails as a whole.
func Emit(tx *gorm.DB, userID, title, message, notificationType, link string) error {
	n := models.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notificationType,
		Link:    link,
	}
	return tx.Create(&n).Error
}

// List returns the newest notifications for the user plus the unread count.
func (s *NotificationService) List(userID string, limit int) ([]models.Notification, int64, error) {
	if limit <= 0 {
		limit = 10
	}
	var notifications []models.Notification
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	var unread int64
	if err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread).Error; err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

// MarkRead sets the read flag on a notification owned by requesterID.
// A notification belonging to someone else is reported as absent rather than
// leaking its existence. Idempotent for already-read rows.
func (s *NotificationService) MarkRead(notificationID, requesterID string) (int64, error) {
	var n models.Notification
	err := s.DB.Where("id = ? AND user_id = ?", notificationID, requesterID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, notFound("notification not found")
	}
	if err != nil {
		return 0, err
	}
	if !n.IsRead {
		if err := s.DB.Model(&n).Update("is_read", true).Error; err != nil {
			return 0, err
		}
	}
	var unread int64
	if err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", requesterID, false).
		Count(&unread).Error; err != nil {
		return 0, err
	}
	return unread, nil
}

// MarkAllRead bulk-marks every unread notification for the requester.
// The new unread count is always zero.
func (s *NotificationService) MarkAllRead(requesterID string) (int64, error) {
	err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", requesterID, false).
		Update("is_read", true).Error
	if err != nil {
		return 0, err
	}
	return 0, nil
}

// --- HTTP handlers ---

func (s *NotificationService) ListHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	notifications, unread, err := s.List(userID, 10)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch notifications"})
	}
	return c.JSON(fiber.Map{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (s *NotificationService) MarkReadHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	unread, err := s.MarkRead(c.Params("id"), userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": unread})
}

func (s *NotificationService) MarkAllReadHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	unread, err := s.MarkAllRead(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update notifications"})
	}
	return c.JSON(fiber.Map{"unread_count": unread})
}
