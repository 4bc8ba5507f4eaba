package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lanzy-lanzy/blackcobra/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Promotion criteria. Time alone gates overall eligibility; the performance
// flag is computed and surfaced independently.
const (
	minDaysBetweenPromotions = 180
	minDecidedMatches        = 5
	minWinRatePercent        = 40.0
)

type PromotionService struct {
	DB    *gorm.DB
	Belts *BeltService
}

func NewPromotionService(db *gorm.DB) *PromotionService {
	return &PromotionService{DB: db, Belts: NewBeltService(db)}
}

// Eligibility computes the two independent promotion flags for a trainee.
// Nothing here is stored; every call derives from promotions and matches.
func (s *PromotionService) Eligibility(trainee *models.Trainee, now time.Time) (*models.PromotionCandidate, error) {
	cand := &models.PromotionCandidate{Trainee: *trainee}

	var last models.Promotion
	lastDate := trainee.JoinDate
	err := s.DB.Where("trainee_id = ?", trainee.ID).Order("date DESC").First(&last).Error
	if err == nil {
		lastDate = last.Date
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cand.DaysSincePromotion = int(now.Sub(lastDate).Hours() / 24)
	cand.TimeEligible = cand.DaysSincePromotion >= minDaysBetweenPromotions

	var decided int64
	if err := s.DB.Model(&models.Match{}).
		Where("(trainee1_id = ? OR trainee2_id = ?) AND winner_id IS NOT NULL", trainee.ID, trainee.ID).
		Count(&decided).Error; err != nil {
		return nil, err
	}
	var wins int64
	if err := s.DB.Model(&models.Match{}).
		Where("winner_id = ?", trainee.ID).
		Count(&wins).Error; err != nil {
		return nil, err
	}
	winRate := 0.0
	if decided > 0 {
		winRate = float64(wins) / float64(decided) * 100
	}
	cand.MatchCount = decided
	cand.WinRate = math.Round(winRate*10) / 10
	cand.PerformanceEligible = decided >= minDecidedMatches && winRate >= minWinRatePercent

	cand.IsEligible = cand.TimeEligible

	next, err := nextBelt(s.DB, trainee)
	if err != nil {
		return nil, err
	}
	cand.NextBelt = next
	return cand, nil
}

// Candidates builds the admin promotion list over all active trainees.
func (s *PromotionService) Candidates(now time.Time) ([]models.PromotionCandidate, error) {
	var trainees []models.Trainee
	if err := s.DB.Preload("User").Preload("Belt").
		Where("is_active = ?", true).
		Find(&trainees).Error; err != nil {
		return nil, err
	}
	out := make([]models.PromotionCandidate, 0, len(trainees))
	for i := range trainees {
		cand, err := s.Eligibility(&trainees[i], now)
		if err != nil {
			return nil, err
		}
		out = append(out, *cand)
	}
	return out, nil
}

// Promote moves the trainee to newBelt. The target order must be strictly
// above the current one, re-validated here regardless of what the caller
// pre-filtered. The promotion row, the belt update and the notification are
// a single transaction.
func (s *PromotionService) Promote(traineeID, newBeltID string) (*models.Promotion, error) {
	var trainee models.Trainee
	err := s.DB.Preload("User").Preload("Belt").First(&trainee, "id = ?", traineeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("trainee not found")
	}
	if err != nil {
		return nil, err
	}
	var newBelt models.Belt
	err = s.DB.First(&newBelt, "id = ?", newBeltID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalidInput("belt not found")
	}
	if err != nil {
		return nil, err
	}
	if trainee.Belt != nil && newBelt.Order <= trainee.Belt.Order {
		return nil, invalidInput("target belt must rank above the current belt")
	}

	promotion := &models.Promotion{
		ID:        uuid.NewString(),
		TraineeID: trainee.ID,
		BeltToID:  &newBelt.ID,
		Date:      time.Now(),
	}
	if trainee.BeltID != nil {
		promotion.BeltFromID = trainee.BeltID
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(promotion).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Trainee{}).Where("id = ?", trainee.ID).
			Update("belt_id", newBelt.ID).Error; err != nil {
			return err
		}
		return Emit(tx, trainee.UserID,
			"Belt Promotion!",
			fmt.Sprintf("Congratulations! You have been promoted to %s.", newBelt.Name),
			models.NotificationTypePromotion, "/trainee/profile")
	})
	if err != nil {
		return nil, err
	}
	s.DB.Preload("Trainee.User").Preload("BeltFrom").Preload("BeltTo").First(promotion, "id = ?", promotion.ID)
	return promotion, nil
}

// History lists all promotions, newest first.
func (s *PromotionService) History() ([]models.Promotion, error) {
	var promotions []models.Promotion
	err := s.DB.Preload("Trainee.User").Preload("BeltFrom").Preload("BeltTo").
		Order("date DESC").
		Find(&promotions).Error
	return promotions, err
}

// --- HTTP handlers ---

func (s *PromotionService) CandidatesHandler(c *fiber.Ctx) error {
	candidates, err := s.Candidates(time.Now())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute eligibility"})
	}
	return c.JSON(candidates)
}

func (s *PromotionService) PromoteHandler(c *fiber.Ctx) error {
	var req struct {
		BeltID string `json:"belt_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.BeltID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "belt_id is required"})
	}
	promotion, err := s.Promote(c.Params("trainee_id"), req.BeltID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(promotion)
}

func (s *PromotionService) HistoryHandler(c *fiber.Ctx) error {
	promotions, err := s.History()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch promotion history"})
	}
	return c.JSON(promotions)
}
