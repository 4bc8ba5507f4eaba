package services

import (
	"errors"

	"github.com/lanzy-lanzy/blackcobra/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BeltService struct {
	DB *gorm.DB
}

func NewBeltService(db *gorm.DB) *BeltService {
	return &BeltService{DB: db}
}

// defaultLadder seeds an empty belt table on first boot.
var defaultLadder = []models.Belt{
	{Name: "White", Color: "#FFFFFF", Order: 1},
	{Name: "Yellow", Color: "#FFD700", Order: 2},
	{Name: "Orange", Color: "#FF8C00", Order: 3},
	{Name: "Green", Color: "#228B22", Order: 4},
	{Name: "Blue", Color: "#1E90FF", Order: 5},
	{Name: "Brown", Color: "#8B4513", Order: 6},
	{Name: "Black", Color: "#000000", Order: 7},
}

// SeedDefaults inserts the standard ladder if no belts exist yet.
func (s *BeltService) SeedDefaults() error {
	var count int64
	if err := s.DB.Model(&models.Belt{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	belts := make([]models.Belt, len(defaultLadder))
	copy(belts, defaultLadder)
	for i := range belts {
		belts[i].ID = uuid.NewString()
	}
	return s.DB.Create(&belts).Error
}

// NextBelt returns the lowest-order belt strictly above the trainee's current
// one, or nil at the top of the ladder. A trainee with no belt gets the
// lowest belt overall.
func (s *BeltService) NextBelt(trainee *models.Trainee) (*models.Belt, error) {
	return nextBelt(s.DB, trainee)
}

func nextBelt(db *gorm.DB, trainee *models.Trainee) (*models.Belt, error) {
	query := db.Order("sort_order ASC")
	if trainee.BeltID != nil {
		var current models.Belt
		if err := db.First(&current, "id = ?", *trainee.BeltID).Error; err != nil {
			return nil, err
		}
		query = query.Where("sort_order > ?", current.Order)
	}
	var next models.Belt
	err := query.First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// Candidates lists belts strictly above the trainee's current order, lowest
// first. Promotions are never lateral or downward.
func (s *BeltService) Candidates(trainee *models.Trainee) ([]models.Belt, error) {
	query := s.DB.Order("sort_order ASC")
	if trainee.BeltID != nil {
		var current models.Belt
		if err := s.DB.First(&current, "id = ?", *trainee.BeltID).Error; err != nil {
			return nil, err
		}
		query = query.Where("sort_order > ?", current.Order)
	}
	var belts []models.Belt
	if err := query.Find(&belts).Error; err != nil {
		return nil, err
	}
	return belts, nil
}

// --- HTTP handlers ---

func (s *BeltService) ListHandler(c *fiber.Ctx) error {
	var belts []models.Belt
	if err := s.DB.Order("sort_order ASC").Find(&belts).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch belts"})
	}
	return c.JSON(belts)
}
