package services

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/lanzy-lanzy/blackcobra/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var validate = validator.New()

type AuthService struct {
	DB *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=150"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	DateOfBirth     string `json:"date_of_birth" validate:"required"`
	ContactNumber   string `json:"contact_number" validate:"required"`
	Address         string `json:"address"`
}

// isPhoneNumber accepts digits with optional +, -, space separators.
func isPhoneNumber(s string) bool {
	cleaned := strings.NewReplacer("+", "", "-", "", " ", "").Replace(s)
	if cleaned == "" {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Register creates a user plus trainee profile awaiting admin approval.
// New trainees start on the lowest-order belt, inactive and unapproved.
func (s *AuthService) Register(req RegisterRequest) (*models.Trainee, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationErr(err.Error())
	}
	if req.Password != req.PasswordConfirm {
		return nil, validationErr("passwords do not match")
	}
	if !isPhoneNumber(req.ContactNumber) {
		return nil, validationErr("please enter a valid phone number")
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
		return nil, validationErr("username already exists")
	}
	if err := s.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, validationErr("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var firstBelt models.Belt
	var beltID *string
	if err := s.DB.Order("sort_order ASC").First(&firstBelt).Error; err == nil {
		beltID = &firstBelt.ID
	}

	trainee := &models.Trainee{
		ID:            uuid.NewString(),
		DateOfBirth:   dob,
		BeltID:        beltID,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
		IsActive:      false,
		IsApproved:    false,
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

// Login verifies credentials and issues a signed token. An unapproved trainee
// is told the account is pending approval, which is deliberately distinct
// from the invalid-credentials message.
func (s *AuthService) Login(username, password string) (string, *models.User, error) {
	var user models.User
	err := s.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, forbidden("invalid username or password")
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, forbidden("invalid username or password")
	}

	if user.Role == models.RoleTrainee {
		var trainee models.Trainee
		if err := s.DB.Where("user_id = ?", user.ID).First(&trainee).Error; err == nil && !trainee.IsApproved {
			return "", nil, forbidden("your account is pending approval, please wait for administrator confirmation")
		}
	}

	token, err := issueToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func issueToken(user *models.User) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "blackcobra-dev-secret"
	}
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// --- HTTP handlers ---

func (s *AuthService) RegisterHandler(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	trainee, err := s.Register(req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"message": "registration successful, your account is pending approval from an administrator",
		"trainee": trainee,
	})
}

func (s *AuthService) LoginHandler(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	token, user, err := s.Login(req.Username, req.Password)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":        user.ID,
			"username":  user.Username,
			"full_name": user.FullName(),
			"role":      user.Role,
		},
	})
}

// MeHandler returns the authenticated principal.
func (s *AuthService) MeHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}
	return c.JSON(fiber.Map{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"full_name": user.FullName(),
		"role":      user.Role,
	})
}
