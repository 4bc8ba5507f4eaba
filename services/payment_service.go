package services

import (
	"errors"
	"time"

	"github.com/lanzy-lanzy/blackcobra/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

// currency renders dollar amounts with grouping for user-facing messages.
var currency = message.NewPrinter(language.English)

func formatAmount(amount float64) string {
	return currency.Sprintf("$%.2f", amount)
}

type PaymentService struct {
	DB *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{DB: db}
}

type PaymentCreateRequest struct {
	TraineeID   string  `json:"trainee_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required"`
	DueDate     string  `json:"due_date" validate:"required"`
	Description string  `json:"description" validate:"required"`
}

// Create opens a new unpaid ledger row and tells the trainee a payment is due.
func (s *PaymentService) Create(req PaymentCreateRequest) (*models.Payment, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationErr(err.Error())
	}
	if req.Amount <= 0 {
		return nil, invalidInput("amount must be greater than zero")
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, validationErr("invalid due_date (use YYYY-MM-DD)")
	}
	var trainee models.Trainee
	err = s.DB.First(&trainee, "id = ?", req.TraineeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("trainee not found")
	}
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:          uuid.NewString(),
		TraineeID:   trainee.ID,
		Amount:      req.Amount,
		DueDate:     dueDate,
		Description: req.Description,
		Paid:        false,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		return Emit(tx, trainee.UserID,
			"New Payment Due",
			currency.Sprintf("A new payment of $%.2f for %s is due on %s.",
				payment.Amount, payment.Description, payment.DueDate.Format("Jan 2, 2006")),
			models.NotificationTypePayment, "/trainee/payments")
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// MarkPaid flags a payment as settled and notifies the trainee. The
// notification is emitted on every call, including repeats on an already-paid
// row: receipt delivery is at-least-once rather than exactly-once.
func (s *PaymentService) MarkPaid(paymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.DB.Preload("Trainee").First(&payment, "id = ?", paymentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("payment not found")
	}
	if err != nil {
		return nil, err
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&payment).Update("paid", true).Error; err != nil {
			return err
		}
		return Emit(tx, payment.Trainee.UserID,
			"Payment Received",
			currency.Sprintf("Your payment of $%.2f for %s has been received.",
				payment.Amount, payment.Description),
			models.NotificationTypePayment, "/trainee/payments")
	})
	if err != nil {
		return nil, err
	}
	payment.Paid = true
	return &payment, nil
}

// List filters the ledger by status: all, pending, paid or overdue.
func (s *PaymentService) List(statusFilter string, now time.Time) ([]models.Payment, error) {
	query := s.DB.Preload("Trainee.User").Order("due_date DESC")
	switch statusFilter {
	case "pending":
		query = query.Where("paid = ?", false)
	case "paid":
		query = query.Where("paid = ?", true)
	case "overdue":
		query = query.Where("paid = ? AND due_date < ?", false, now)
	}
	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Totals aggregates the ledger. Empty slices of rows sum to zero, never null.
func (s *PaymentService) Totals(now time.Time) (*models.PaymentTotals, error) {
	sum := func(query *gorm.DB) (float64, error) {
		var total *float64
		if err := query.Select("SUM(amount)").Scan(&total).Error; err != nil {
			return 0, err
		}
		if total == nil {
			return 0, nil
		}
		return *total, nil
	}

	totals := &models.PaymentTotals{}
	var err error
	if totals.TotalCollected, err = sum(s.DB.Model(&models.Payment{}).Where("paid = ?", true)); err != nil {
		return nil, err
	}
	if totals.TotalPending, err = sum(s.DB.Model(&models.Payment{}).Where("paid = ?", false)); err != nil {
		return nil, err
	}
	if totals.TotalOverdue, err = sum(s.DB.Model(&models.Payment{}).
		Where("paid = ? AND due_date < ?", false, now)); err != nil {
		return nil, err
	}
	return totals, nil
}

// RemindOverdue emits a reminder notification for every overdue payment.
// Called by the scheduler; returns how many reminders went out.
func (s *PaymentService) RemindOverdue(now time.Time) (int, error) {
	var payments []models.Payment
	if err := s.DB.Preload("Trainee").
		Where("paid = ? AND due_date < ?", false, now).
		Find(&payments).Error; err != nil {
		return 0, err
	}
	sent := 0
	for _, p := range payments {
		err := Emit(s.DB, p.Trainee.UserID,
			"Payment Overdue",
			currency.Sprintf("Your payment of $%.2f for %s was due on %s and is now overdue.",
				p.Amount, p.Description, p.DueDate.Format("Jan 2, 2006")),
			models.NotificationTypePayment, "/trainee/payments")
		if err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// --- HTTP handlers ---

func (s *PaymentService) ListHandler(c *fiber.Ctx) error {
	now := time.Now()
	payments, err := s.List(c.Query("status", "all"), now)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch payments"})
	}
	totals, err := s.Totals(now)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute totals"})
	}
	rows := make([]fiber.Map, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, fiber.Map{
			"payment":    p,
			"is_overdue": p.IsOverdue(now),
		})
	}
	return c.JSON(fiber.Map{
		"payments":        rows,
		"total_collected": totals.TotalCollected,
		"total_pending":   totals.TotalPending,
	})
}

func (s *PaymentService) CreateHandler(c *fiber.Ctx) error {
	var req PaymentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	payment, err := s.Create(req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(payment)
}

func (s *PaymentService) MarkPaidHandler(c *fiber.Ctx) error {
	payment, err := s.MarkPaid(c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "payment of " + formatAmount(payment.Amount) + " marked as paid",
		"payment": payment,
	})
}

func (s *PaymentService) ReportsHandler(c *fiber.Ctx) error {
	totals, err := s.Totals(time.Now())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute totals"})
	}
	return c.JSON(totals)
}
