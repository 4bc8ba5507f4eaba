package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lanzy-lanzy/blackcobra/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DashboardService struct {
	DB *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{DB: db}
}

// Recompute rebuilds the admin summary from the source tables and overwrites
// the single cached row. There is no incremental path: every call is a full
// recompute, and the cache row carries no correctness obligation of its own.
func (s *DashboardService) Recompute(now time.Time) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{}

	if err := s.DB.Model(&models.Trainee{}).
		Where("is_active = ?", true).
		Count(&summary.TotalTrainees).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Event{}).
		Where("is_published = ? AND end_date >= ?", true, now).
		Count(&summary.UpcomingEvents).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Payment{}).
		Where("paid = ?", false).
		Count(&summary.PendingPayments).Error; err != nil {
		return nil, err
	}
	var pendingAmount *float64
	if err := s.DB.Model(&models.Payment{}).
		Where("paid = ?", false).
		Select("SUM(amount)").Scan(&pendingAmount).Error; err != nil {
		return nil, err
	}
	if pendingAmount != nil {
		summary.PendingPaymentsAmount = *pendingAmount
	}
	if err := s.DB.Model(&models.Promotion{}).
		Where("date >= ?", now.AddDate(0, 0, -30)).
		Count(&summary.RecentPromotions).Error; err != nil {
		return nil, err
	}

	value, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	stat := models.DashboardStat{
		ID:       uuid.NewString(),
		StatType: models.StatTypeAdminDashboard,
		Value:    value,
	}
	err = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stat_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&stat).Error
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Summary serves the cached row when one exists and recomputes on a miss.
// Staleness is acceptable: the scheduler refreshes the cache periodically and
// admins can force a recompute.
func (s *DashboardService) Summary(now time.Time) (*models.DashboardSummary, time.Time, error) {
	var stat models.DashboardStat
	err := s.DB.Where("stat_type = ?", models.StatTypeAdminDashboard).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		summary, err := s.Recompute(now)
		if err != nil {
			return nil, time.Time{}, err
		}
		return summary, now, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	var summary models.DashboardSummary
	if err := json.Unmarshal(stat.Value, &summary); err != nil {
		return nil, time.Time{}, err
	}
	return &summary, stat.UpdatedAt, nil
}

// ChartPoint is one labelled value of a chart series.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// TraineeGrowth returns the cumulative trainee count sampled monthly over
// the trailing six months.
func (s *DashboardService) TraineeGrowth(now time.Time) ([]ChartPoint, error) {
	points := make([]ChartPoint, 0, 6)
	for i := 5; i >= 0; i-- {
		cutoff := now.AddDate(0, 0, -i*30)
		var count int64
		if err := s.DB.Model(&models.Trainee{}).
			Where("join_date <= ?", cutoff).
			Count(&count).Error; err != nil {
			return nil, err
		}
		points = append(points, ChartPoint{
			Label: cutoff.Format("January"),
			Value: float64(count),
		})
	}
	return points, nil
}

// BeltDistribution counts trainees per belt, ladder order.
func (s *DashboardService) BeltDistribution() ([]ChartPoint, error) {
	var belts []models.Belt
	if err := s.DB.Order("sort_order ASC").Find(&belts).Error; err != nil {
		return nil, err
	}
	points := make([]ChartPoint, 0, len(belts))
	for _, belt := range belts {
		var count int64
		if err := s.DB.Model(&models.Trainee{}).
			Where("belt_id = ?", belt.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		points = append(points, ChartPoint{
			Label: belt.Name,
			Value: float64(count),
			Color: belt.Color,
		})
	}
	return points, nil
}

// PaymentStatus splits payment counts into paid and pending.
func (s *DashboardService) PaymentStatus() ([]ChartPoint, error) {
	var paid, pending int64
	if err := s.DB.Model(&models.Payment{}).Where("paid = ?", true).Count(&paid).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Payment{}).Where("paid = ?", false).Count(&pending).Error; err != nil {
		return nil, err
	}
	return []ChartPoint{
		{Label: "Paid", Value: float64(paid)},
		{Label: "Pending", Value: float64(pending)},
	}, nil
}

// --- HTTP handlers ---

func (s *DashboardService) StatisticsHandler(c *fiber.Ctx) error {
	summary, updatedAt, err := s.Summary(time.Now())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load dashboard statistics"})
	}
	return c.JSON(fiber.Map{
		"stats":      summary,
		"updated_at": updatedAt,
	})
}

func (s *DashboardService) RecomputeHandler(c *fiber.Ctx) error {
	summary, err := s.Recompute(time.Now())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to recompute dashboard statistics"})
	}
	return c.JSON(fiber.Map{"stats": summary})
}

func (s *DashboardService) ChartDataHandler(c *fiber.Ctx) error {
	var (
		points []ChartPoint
		err    error
	)
	chartType := c.Query("type")
	switch chartType {
	case "trainee_growth":
		points, err = s.TraineeGrowth(time.Now())
	case "belt_distribution":
		points, err = s.BeltDistribution()
	case "payment_status":
		points, err = s.PaymentStatus()
	default:
		return c.Status(400).JSON(fiber.Map{"error": "invalid chart type"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": fmt.Sprintf("failed to build %s chart", chartType)})
	}
	return c.JSON(fiber.Map{
		"type":   chartType,
		"points": points,
	})
}
