package services

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/lanzy-lanzy/blackcobra/models"
	"github.com/lanzy-lanzy/blackcobra/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type TraineeService struct {
	DB *gorm.DB
}

func NewTraineeService(db *gorm.DB) *TraineeService {
	return &TraineeService{DB: db}
}

// List returns active trainees, optionally filtered by a substring search
// over name, username, email, belt name and contact number. Newest joins first.
func (s *TraineeService) List(search string) ([]models.Trainee, error) {
	query := s.DB.Preload("User").Preload("Belt").
		Joins("JOIN users ON users.id = trainees.user_id").
		Joins("LEFT JOIN belts ON belts.id = trainees.belt_id").
		Where("trainees.is_active = ?", true)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"users.first_name LIKE ? OR users.last_name LIKE ? OR users.username LIKE ? OR users.email LIKE ? OR belts.name LIKE ? OR trainees.contact_number LIKE ?",
			like, like, like, like, like, like,
		)
	}
	var trainees []models.Trainee
	if err := query.Order("trainees.join_date DESC").Find(&trainees).Error; err != nil {
		return nil, err
	}
	return trainees, nil
}

type TraineeCreateRequest struct {
	Username         string `json:"username" validate:"required,min=3,max=150"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	FirstName        string `json:"first_name" validate:"required"`
	LastName         string `json:"last_name" validate:"required"`
	DateOfBirth      string `json:"date_of_birth" validate:"required"`
	BeltID           string `json:"belt_id,omitempty"`
	ContactNumber    string `json:"contact_number" validate:"required"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergency_contact"`
	EmergencyPhone   string `json:"emergency_phone"`
}

// Create makes a trainee on behalf of an admin. Unlike self registration the
// result is active and approved immediately.
func (s *TraineeService) Create(req TraineeCreateRequest) (*models.Trainee, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationErr(err.Error())
	}
	if !isPhoneNumber(req.ContactNumber) {
		return nil, validationErr("please enter a valid phone number")
	}
	if req.EmergencyPhone != "" && !isPhoneNumber(req.EmergencyPhone) {
		return nil, validationErr("please enter a valid emergency phone number")
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, validationErr("invalid date_of_birth (use YYYY-MM-DD)")
	}

	var count int64
	if err := s.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, validationErr("this username is already taken")
	}
	if err := s.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, validationErr("this email is already in use")
	}

	var beltID *string
	if req.BeltID != "" {
		var belt models.Belt
		if err := s.DB.First(&belt, "id = ?", req.BeltID).Error; err != nil {
			return nil, invalidInput("belt not found")
		}
		beltID = &belt.ID
	} else {
		var firstBelt models.Belt
		if err := s.DB.Order("sort_order ASC").First(&firstBelt).Error; err == nil {
			beltID = &firstBelt.ID
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	trainee := &models.Trainee{
		ID:               uuid.NewString(),
		DateOfBirth:      dob,
		BeltID:           beltID,
		ContactNumber:    req.ContactNumber,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
		IsActive:         true,
		IsApproved:       true,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		user := &models.User{
			ID:           uuid.NewString(),
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: string(hash),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         models.RoleTrainee,
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		trainee.UserID = user.ID
		return tx.Create(trainee).Error
	})
	if err != nil {
		return nil, err
	}
	s.DB.Preload("User").Preload("Belt").First(trainee, "id = ?", trainee.ID)
	return trainee, nil
}

type TraineeUpdateRequest struct {
	Email            *string `json:"email,omitempty"`
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	ContactNumber    *string `json:"contact_number,omitempty"`
	Address          *string `json:"address,omitempty"`
	EmergencyContact *string `json:"emergency_contact,omitempty"`
	EmergencyPhone   *string `json:"emergency_phone,omitempty"`
	BeltID           *string `json:"belt_id,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

// Update applies a partial edit to a trainee and its linked user.
func (s *TraineeService) Update(traineeID string, req TraineeUpdateRequest) (*models.Trainee, error) {
	var trainee models.Trainee
	err := s.DB.Preload("User").First(&trainee, "id = ?", traineeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("trainee not found")
	}
	if err != nil {
		return nil, err
	}

	if req.ContactNumber != nil && !isPhoneNumber(*req.ContactNumber) {
		return nil, validationErr("please enter a valid phone number")
	}
	if req.EmergencyPhone != nil && *req.EmergencyPhone != "" && !isPhoneNumber(*req.EmergencyPhone) {
		return nil, validationErr("please enter a valid emergency phone number")
	}
	if req.Email != nil {
		var count int64
		if err := s.DB.Model(&models.User{}).
			Where("email = ? AND id <> ?", *req.Email, trainee.UserID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, validationErr("this email is already in use")
		}
	}
	if req.BeltID != nil && *req.BeltID != "" {
		var belt models.Belt
		if err := s.DB.First(&belt, "id = ?", *req.BeltID).Error; err != nil {
			return nil, invalidInput("belt not found")
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		userUpdates := map[string]interface{}{}
		if req.Email != nil {
			userUpdates["email"] = *req.Email
		}
		if req.FirstName != nil {
			userUpdates["first_name"] = *req.FirstName
		}
		if req.LastName != nil {
			userUpdates["last_name"] = *req.LastName
		}
		if len(userUpdates) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", trainee.UserID).Updates(userUpdates).Error; err != nil {
				return err
			}
		}

		traineeUpdates := map[string]interface{}{}
		if req.ContactNumber != nil {
			traineeUpdates["contact_number"] = *req.ContactNumber
		}
		if req.Address != nil {
			traineeUpdates["address"] = *req.Address
		}
		if req.EmergencyContact != nil {
			traineeUpdates["emergency_contact"] = *req.EmergencyContact
		}
		if req.EmergencyPhone != nil {
			traineeUpdates["emergency_phone"] = *req.EmergencyPhone
		}
		if req.BeltID != nil && *req.BeltID != "" {
			traineeUpdates["belt_id"] = *req.BeltID
		}
		if req.IsActive != nil {
			traineeUpdates["is_active"] = *req.IsActive
		}
		if len(traineeUpdates) > 0 {
			if err := tx.Model(&models.Trainee{}).Where("id = ?", traineeID).Updates(traineeUpdates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.DB.Preload("User").Preload("Belt").First(&trainee, "id = ?", traineeID)
	return &trainee, nil
}

// Deactivate soft-deletes: the active flag drops but matches, payments and
// promotions stay attached.
func (s *TraineeService) Deactivate(traineeID string) error {
	var trainee models.Trainee
	err := s.DB.First(&trainee, "id = ?", traineeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("trainee not found")
	}
	if err != nil {
		return err
	}
	return s.DB.Model(&trainee).Update("is_active", false).Error
}

// Pending lists trainees awaiting approval, newest first.
func (s *TraineeService) Pending() ([]models.Trainee, error) {
	var trainees []models.Trainee
	err := s.DB.Preload("User").Preload("Belt").
		Where("is_approved = ?", false).
		Order("join_date DESC").
		Find(&trainees).Error
	return trainees, err
}

// Approve marks the trainee approved and active, letting them log in, and
// tells them so.
func (s *TraineeService) Approve(traineeID string) (*models.Trainee, error) {
	var trainee models.Trainee
	err := s.DB.Preload("User").First(&trainee, "id = ?", traineeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("trainee not found")
	}
	if err != nil {
		return nil, err
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&trainee).Updates(map[string]interface{}{
			"is_approved": true,
			"is_active":   true,
		}).Error; err != nil {
			return err
		}
		return Emit(tx, trainee.UserID,
			"Account Approved",
			"Your account has been approved. You can now access the trainee dashboard.",
			models.NotificationTypeEvent, "")
	})
	if err != nil {
		return nil, err
	}
	trainee.IsApproved = true
	trainee.IsActive = true
	return &trainee, nil
}

// Stats builds the computed trainee read model: decided-match record plus
// outstanding payments. Zero decided matches means a zero win rate.
func (s *TraineeService) Stats(traineeID string) (*models.TraineeStats, error) {
	var stats models.TraineeStats

	var decided int64
	if err := s.DB.Model(&models.Match{}).
		Where("(trainee1_id = ? OR trainee2_id = ?) AND winner_id IS NOT NULL", traineeID, traineeID).
		Count(&decided).Error; err != nil {
		return nil, err
	}
	var wins int64
	if err := s.DB.Model(&models.Match{}).
		Where("winner_id = ?", traineeID).
		Count(&wins).Error; err != nil {
		return nil, err
	}
	stats.TotalMatches = decided
	stats.Wins = wins
	stats.Losses = decided - wins
	if decided > 0 {
		stats.WinRate = float64(wins) / float64(decided) * 100
	}

	if err := s.DB.Model(&models.Payment{}).
		Where("trainee_id = ? AND paid = ?", traineeID, false).
		Count(&stats.PendingPayments).Error; err != nil {
		return nil, err
	}
	var balance *float64
	if err := s.DB.Model(&models.Payment{}).
		Where("trainee_id = ? AND paid = ?", traineeID, false).
		Select("SUM(amount)").Scan(&balance).Error; err != nil {
		return nil, err
	}
	if balance != nil {
		stats.OutstandingBalance = *balance
	}
	return &stats, nil
}

// byUser resolves the trainee profile owned by a user id.
func (s *TraineeService) byUser(userID string) (*models.Trainee, error) {
	var trainee models.Trainee
	err := s.DB.Preload("User").Preload("Belt").Where("user_id = ?", userID).First(&trainee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("trainee profile not found")
	}
	if err != nil {
		return nil, err
	}
	return &trainee, nil
}

// --- HTTP handlers ---

func (s *TraineeService) ListHandler(c *fiber.Ctx) error {
	trainees, err := s.List(c.Query("search"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch trainees"})
	}
	return c.JSON(trainees)
}

func (s *TraineeService) CreateHandler(c *fiber.Ctx) error {
	var req TraineeCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	trainee, err := s.Create(req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(trainee)
}

func (s *TraineeService) UpdateHandler(c *fiber.Ctx) error {
	var req TraineeUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	trainee, err := s.Update(c.Params("id"), req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(trainee)
}

func (s *TraineeService) DeleteHandler(c *fiber.Ctx) error {
	if err := s.Deactivate(c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "trainee deactivated"})
}

func (s *TraineeService) PendingHandler(c *fiber.Ctx) error {
	trainees, err := s.Pending()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch pending trainees"})
	}
	return c.JSON(trainees)
}

func (s *TraineeService) ApproveHandler(c *fiber.Ctx) error {
	trainee, err := s.Approve(c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "trainee approved",
		"trainee": trainee,
	})
}

// UploadProfileImageHandler stores a profile photo in object storage and
// records its public URL on the trainee.
func (s *TraineeService) UploadProfileImageHandler(c *fiber.Ctx) error {
	traineeID := c.Params("id")
	var trainee models.Trainee
	if err := s.DB.First(&trainee, "id = ?", traineeID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "trainee not found"})
	}

	file, err := c.FormFile("profile_image")
	if err != nil || file.Size == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "profile_image file is required"})
	}
	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := "profiles/" + uuid.NewString() + ext
	url, err := utils.UploadFile(file, key)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to upload profile image"})
	}
	if err := s.DB.Model(&trainee).Update("profile_image_url", url).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to save profile image"})
	}
	return c.JSON(fiber.Map{"profile_image_url": url})
}

// ProfileHandler returns the requester's own trainee profile with stats.
func (s *TraineeService) ProfileHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	trainee, err := s.byUser(userID)
	if err != nil {
		return respondErr(c, err)
	}
	stats, err := s.Stats(trainee.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute stats"})
	}
	return c.JSON(fiber.Map{
		"trainee": trainee,
		"stats":   stats,
	})
}

// MyMatchesHandler lists the requester's matches, newest first.
func (s *TraineeService) MyMatchesHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	trainee, err := s.byUser(userID)
	if err != nil {
		return respondErr(c, err)
	}
	var matches []models.Match
	err = s.DB.Preload("Event").Preload("Trainee1.User").Preload("Trainee2.User").Preload("Winner.User").
		Where("trainee1_id = ? OR trainee2_id = ?", trainee.ID, trainee.ID).
		Order("match_time DESC").
		Find(&matches).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch matches"})
	}
	return c.JSON(matches)
}

// MyPaymentsHandler lists the requester's payments, newest due first, with
// the derived overdue flag per row.
func (s *TraineeService) MyPaymentsHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	trainee, err := s.byUser(userID)
	if err != nil {
		return respondErr(c, err)
	}
	var payments []models.Payment
	if err := s.DB.Where("trainee_id = ?", trainee.ID).Order("due_date DESC").Find(&payments).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch payments"})
	}
	now := time.Now()
	out := make([]fiber.Map, 0, len(payments))
	for _, p := range payments {
		out = append(out, fiber.Map{
			"payment":    p,
			"is_overdue": p.IsOverdue(now),
		})
	}
	return c.JSON(out)
}
