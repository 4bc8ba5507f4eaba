package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/lanzy-lanzy/blackcobra/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

type EventRequest struct {
	Name                 string `json:"name" validate:"required,max=200"`
	Description          string `json:"description"`
	StartDate            string `json:"start_date" validate:"required"`
	EndDate              string `json:"end_date" validate:"required"`
	Location             string `json:"location" validate:"required"`
	EventType            string `json:"event_type" validate:"omitempty,oneof=tournament training seminar grading"`
	MaxParticipants      *int   `json:"max_participants,omitempty"`
	RegistrationDeadline string `json:"registration_deadline,omitempty"`
	IsPublished          bool   `json:"is_published"`
}

func (r *EventRequest) parse() (start, end time.Time, deadline *time.Time, err error) {
	start, err = time.Parse(time.RFC3339, r.StartDate)
	if err != nil {
		return start, end, nil, validationErr("invalid start_date (use RFC3339)")
	}
	end, err = time.Parse(time.RFC3339, r.EndDate)
	if err != nil {
		return start, end, nil, validationErr("invalid end_date (use RFC3339)")
	}
	if !end.After(start) {
		return start, end, nil, validationErr("end date must be after the start date")
	}
	if r.RegistrationDeadline != "" {
		d, err := time.Parse(time.RFC3339, r.RegistrationDeadline)
		if err != nil {
			return start, end, nil, validationErr("invalid registration_deadline (use RFC3339)")
		}
		if !d.Before(start) {
			return start, end, nil, validationErr("registration deadline must be before the event start date")
		}
		deadline = &d
	}
	if r.MaxParticipants != nil && *r.MaxParticipants < 1 {
		return start, end, nil, validationErr("max_participants must be at least 1")
	}
	return start, end, deadline, nil
}

// Create adds an event. End must follow start; an optional registration
// deadline must precede the start.
func (s *EventService) Create(req EventRequest) (*models.Event, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationErr(err.Error())
	}
	start, end, deadline, err := req.parse()
	if err != nil {
		return nil, err
	}
	eventType := req.EventType
	if eventType == "" {
		eventType = models.EventTypeTraining
	}
	event := &models.Event{
		ID:                   uuid.NewString(),
		Name:                 req.Name,
		Slug:                 slug.Make(req.Name),
		Description:          req.Description,
		StartDate:            start,
		EndDate:              end,
		Location:             req.Location,
		EventType:            eventType,
		MaxParticipants:      req.MaxParticipants,
		RegistrationDeadline: deadline,
		IsPublished:          req.IsPublished,
	}
	if err := s.DB.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// Update replaces the mutable fields of an event with the request values.
func (s *EventService) Update(eventID string, req EventRequest) (*models.Event, error) {
	var event models.Event
	err := s.DB.First(&event, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("event not found")
	}
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, validationErr(err.Error())
	}
	start, end, deadline, err := req.parse()
	if err != nil {
		return nil, err
	}
	event.Name = req.Name
	event.Slug = slug.Make(req.Name)
	event.Description = req.Description
	event.StartDate = start
	event.EndDate = end
	event.Location = req.Location
	if req.EventType != "" {
		event.EventType = req.EventType
	}
	event.MaxParticipants = req.MaxParticipants
	event.RegistrationDeadline = deadline
	event.IsPublished = req.IsPublished
	if err := s.DB.Save(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// Delete removes an event and, through the cascade, its matches.
func (s *EventService) Delete(eventID string) error {
	var event models.Event
	err := s.DB.First(&event, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("event not found")
	}
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).Delete(&models.Match{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.EventRegistration{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
}

// Detail returns an event with its matches and the distinct set of
// participating trainees.
func (s *EventService) Detail(eventID string) (*models.Event, []models.Trainee, error) {
	var event models.Event
	err := s.DB.Preload("Matches.Trainee1.User").Preload("Matches.Trainee2.User").
		Preload("Matches.Winner.User").
		First(&event, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, notFound("event not found")
	}
	if err != nil {
		return nil, nil, err
	}

	seen := map[string]bool{}
	ids := []string{}
	for _, m := range event.Matches {
		for _, tid := range []string{m.Trainee1ID, m.Trainee2ID} {
			if !seen[tid] {
				seen[tid] = true
				ids = append(ids, tid)
			}
		}
	}
	var participants []models.Trainee
	if len(ids) > 0 {
		if err := s.DB.Preload("User").Preload("Belt").Where("id IN ?", ids).Find(&participants).Error; err != nil {
			return nil, nil, err
		}
	}
	return &event, participants, nil
}

// Register signs a trainee up for a published event, enforcing the deadline
// and the participant cap.
func (s *EventService) Register(eventID, userID string, now time.Time) (*models.EventRegistration, error) {
	var event models.Event
	err := s.DB.First(&event, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("event not found")
	}
	if err != nil {
		return nil, err
	}
	if !event.IsPublished {
		return nil, notFound("event not found")
	}
	var trainee models.Trainee
	if err := s.DB.Where("user_id = ?", userID).First(&trainee).Error; err != nil {
		return nil, notFound("trainee profile not found")
	}
	if event.RegistrationDeadline != nil && now.After(*event.RegistrationDeadline) {
		return nil, invalidState("registration deadline has passed")
	}
	if !event.StartDate.After(now) {
		return nil, invalidState("event has already started")
	}

	var existing int64
	if err := s.DB.Model(&models.EventRegistration{}).
		Where("event_id = ? AND trainee_id = ?", eventID, trainee.ID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, validationErr("already registered for this event")
	}
	if event.MaxParticipants != nil {
		var count int64
		if err := s.DB.Model(&models.EventRegistration{}).
			Where("event_id = ?", eventID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count >= int64(*event.MaxParticipants) {
			return nil, invalidState("event is full")
		}
	}

	reg := &models.EventRegistration{
		ID:        uuid.NewString(),
		EventID:   eventID,
		TraineeID: trainee.ID,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reg).Error; err != nil {
			return err
		}
		return Emit(tx, userID,
			"Event Registration Confirmed",
			fmt.Sprintf("You are registered for %s on %s at %s.",
				event.Name, event.StartDate.Format("Jan 2, 2006"), event.Location),
			models.NotificationTypeEvent, "/trainee/events/"+event.ID)
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Unregister withdraws the trainee's registration before the event starts.
func (s *EventService) Unregister(eventID, userID string, now time.Time) error {
	var trainee models.Trainee
	if err := s.DB.Where("user_id = ?", userID).First(&trainee).Error; err != nil {
		return notFound("trainee profile not found")
	}
	var reg models.EventRegistration
	err := s.DB.Preload("Event").
		Where("event_id = ? AND trainee_id = ?", eventID, trainee.ID).
		First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("registration not found")
	}
	if err != nil {
		return err
	}
	if !reg.Event.StartDate.After(now) {
		return invalidState("event has already started")
	}
	return s.DB.Delete(&reg).Error
}

// --- HTTP handlers ---

func (s *EventService) ListHandler(c *fiber.Ctx) error {
	var events []models.Event
	if err := s.DB.Order("start_date ASC").Find(&events).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch events"})
	}
	return c.JSON(events)
}

// CalendarHandler filters events by year/month for the calendar view.
func (s *EventService) CalendarHandler(c *fiber.Ctx) error {
	now := time.Now()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if month < 1 || month > 12 {
		return c.Status(400).JSON(fiber.Map{"error": "month must be between 1 and 12"})
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var events []models.Event
	if err := s.DB.Where("start_date >= ? AND start_date < ?", from, to).
		Order("start_date ASC").
		Find(&events).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch events"})
	}
	return c.JSON(events)
}

func (s *EventService) CreateHandler(c *fiber.Ctx) error {
	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	event, err := s.Create(req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(event)
}

func (s *EventService) UpdateHandler(c *fiber.Ctx) error {
	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	event, err := s.Update(c.Params("id"), req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(event)
}

func (s *EventService) DeleteHandler(c *fiber.Ctx) error {
	if err := s.Delete(c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "event deleted"})
}

func (s *EventService) DetailHandler(c *fiber.Ctx) error {
	event, participants, err := s.Detail(c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"event":        event,
		"matches":      event.Matches,
		"participants": participants,
	})
}

// PublishedHandler lists published events that have not yet ended, for
// trainee browsing.
func (s *EventService) PublishedHandler(c *fiber.Ctx) error {
	var events []models.Event
	if err := s.DB.Where("is_published = ? AND end_date >= ?", true, time.Now()).
		Order("start_date ASC").
		Find(&events).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch events"})
	}
	return c.JSON(events)
}

// PublishedDetailHandler is the trainee view of a single event. Draft events
// read as absent. Includes whether the requester is registered.
func (s *EventService) PublishedDetailHandler(c *fiber.Ctx) error {
	event, participants, err := s.Detail(c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	if !event.IsPublished {
		return c.Status(404).JSON(fiber.Map{"error": "event not found"})
	}

	registered := false
	userID, _ := c.Locals("user_id").(string)
	var trainee models.Trainee
	if err := s.DB.Where("user_id = ?", userID).First(&trainee).Error; err == nil {
		var count int64
		s.DB.Model(&models.EventRegistration{}).
			Where("event_id = ? AND trainee_id = ?", event.ID, trainee.ID).
			Count(&count)
		registered = count > 0
	}
	return c.JSON(fiber.Map{
		"event":         event,
		"participants":  participants,
		"is_registered": registered,
		"is_upcoming":   event.IsUpcoming(time.Now()),
	})
}

func (s *EventService) RegisterHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	reg, err := s.Register(c.Params("id"), userID, time.Now())
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(reg)
}

func (s *EventService) UnregisterHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := s.Unregister(c.Params("id"), userID, time.Now()); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "registration withdrawn"})
}
