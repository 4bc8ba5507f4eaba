package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/lanzy-lanzy/blackcobra/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Score sides and actions accepted by UpdateScore.
const (
	SideTrainee1 = "trainee1"
	SideTrainee2 = "trainee2"

	ActionIncrement = "increment"
	ActionDecrement = "decrement"
)

const imminentWindow = 15 * time.Minute

type MatchService struct {
	DB *gorm.DB
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db}
}

type MatchCreateRequest struct {
	EventID    string `json:"event_id" validate:"required"`
	Trainee1ID string `json:"trainee1_id" validate:"required"`
	Trainee2ID string `json:"trainee2_id" validate:"required"`
	JudgeID    string `json:"judge_id" validate:"required"`
	MatchTime  string `json:"match_time" validate:"required"`
}

// Create schedules a match between two distinct trainees under an event,
// assigned to a judge.
func (s *MatchService) Create(req MatchCreateRequest) (*models.Match, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationErr(err.Error())
	}
	if req.Trainee1ID == req.Trainee2ID {
		return nil, invalidInput("a trainee cannot be matched against themselves")
	}
	matchTime, err := time.Parse(time.RFC3339, req.MatchTime)
	if err != nil {
		return nil, validationErr("invalid match_time (use RFC3339)")
	}
	var event models.Event
	if err := s.DB.First(&event, "id = ?", req.EventID).Error; err != nil {
		return nil, invalidInput("event not found")
	}
	for _, tid := range []string{req.Trainee1ID, req.Trainee2ID} {
		var trainee models.Trainee
		if err := s.DB.First(&trainee, "id = ?", tid).Error; err != nil {
			return nil, invalidInput("trainee not found: " + tid)
		}
	}
	var judge models.User
	if err := s.DB.First(&judge, "id = ?", req.JudgeID).Error; err != nil {
		return nil, invalidInput("judge not found")
	}
	if judge.Role != models.RoleJudge {
		return nil, invalidInput("assigned judge must hold the judge role")
	}

	match := &models.Match{
		ID:         uuid.NewString(),
		EventID:    req.EventID,
		Trainee1ID: req.Trainee1ID,
		Trainee2ID: req.Trainee2ID,
		JudgeID:    &req.JudgeID,
		MatchTime:  matchTime,
		Version:    1,
	}
	if err := s.DB.Create(match).Error; err != nil {
		return nil, err
	}
	s.preloadAll().First(match, "id = ?", match.ID)
	return match, nil
}

// getForJudge loads a match if and only if it is assigned to judgeID. An
// admin is deliberately not authorized here: scoring is judge-scoped.
func (s *MatchService) getForJudge(matchID, judgeID string) (*models.Match, error) {
	var match models.Match
	err := s.preloadAll().First(&match, "id = ?", matchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("match not found")
	}
	if err != nil {
		return nil, err
	}
	if match.JudgeID == nil || *match.JudgeID != judgeID {
		return nil, forbidden("match is not assigned to this judge")
	}
	return &match, nil
}

// applyGuarded writes updates to the match row only if the stored version
// still equals the one loaded into match, bumping it in the same statement.
// The in-memory check above it is advisory; this is the guard that holds
// when two writers race past it with the same fresh version.
func applyGuarded(db *gorm.DB, match *models.Match, updates map[string]interface{}) error {
	updates["version"] = match.Version + 1
	res := db.Model(&models.Match{}).
		Where("id = ? AND version = ?", match.ID, match.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return conflict("match was modified by another request")
	}
	return nil
}

// UpdateScore moves one side's score by one point. A decrement at zero is a
// no-op, not an error. Completed matches reject any further scoring.
// expectedVersion, when non-zero, must match the stored version.
func (s *MatchService) UpdateScore(matchID, judgeID, side, action string, expectedVersion int) (*models.Match, error) {
	if action != ActionIncrement && action != ActionDecrement {
		return nil, invalidInput("action must be increment or decrement")
	}
	if side != SideTrainee1 && side != SideTrainee2 {
		return nil, invalidInput("side must be trainee1 or trainee2")
	}
	match, err := s.getForJudge(matchID, judgeID)
	if err != nil {
		return nil, err
	}
	if match.IsCompleted() {
		return nil, invalidState("match already completed")
	}
	if expectedVersion != 0 && expectedVersion != match.Version {
		return nil, conflict("match was modified by another request")
	}

	score1, score2 := match.Score1, match.Score2
	switch side {
	case SideTrainee1:
		if action == ActionIncrement {
			score1++
		} else if score1 > 0 {
			score1--
		}
	case SideTrainee2:
		if action == ActionIncrement {
			score2++
		} else if score2 > 0 {
			score2--
		}
	}

	if err := applyGuarded(s.DB, match, map[string]interface{}{
		"score1": score1,
		"score2": score2,
	}); err != nil {
		return nil, err
	}
	match.Score1, match.Score2 = score1, score2
	match.Version++
	return match, nil
}

// Complete declares the winner and ends the match. The winner assignment and
// the two result notifications commit together or not at all.
func (s *MatchService) Complete(matchID, judgeID, winnerID string, expectedVersion int) (*models.Match, error) {
	match, err := s.getForJudge(matchID, judgeID)
	if err != nil {
		return nil, err
	}
	if match.IsCompleted() {
		return nil, invalidState("match already completed")
	}
	if winnerID == "" {
		return nil, invalidInput("winner must be selected")
	}
	if winnerID != match.Trainee1ID && winnerID != match.Trainee2ID {
		return nil, invalidInput("winner must be one of the match participants")
	}
	if expectedVersion != 0 && expectedVersion != match.Version {
		return nil, conflict("match was modified by another request")
	}

	winner, loser := match.Trainee1, match.Trainee2
	if winnerID == match.Trainee2ID {
		winner, loser = match.Trainee2, match.Trainee1
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := applyGuarded(tx, match, map[string]interface{}{
			"winner_id": winnerID,
		}); err != nil {
			return err
		}
		if err := Emit(tx, winner.UserID,
			"Match Victory!",
			fmt.Sprintf("Congratulations! You won your match against %s at %s.", loser.User.FullName(), match.Event.Name),
			models.NotificationTypeMatch, "/trainee/matches"); err != nil {
			return err
		}
		return Emit(tx, loser.UserID,
			"Match Result",
			fmt.Sprintf("Your match against %s at %s has been completed.", winner.User.FullName(), match.Event.Name),
			models.NotificationTypeMatch, "/trainee/matches")
	})
	if err != nil {
		return nil, err
	}
	match.WinnerID = &winnerID
	match.Winner = &winner
	match.Version++
	return match, nil
}

// Upcoming lists the judge's future matches soonest-first, with countdown
// info and the imminent flag for matches starting within 15 minutes.
func (s *MatchService) Upcoming(judgeID string, now time.Time) ([]models.UpcomingMatch, error) {
	var matches []models.Match
	err := s.preloadAll().
		Where("judge_id = ? AND match_time >= ?", judgeID, now).
		Order("match_time ASC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.UpcomingMatch, 0, len(matches))
	for _, m := range matches {
		until := m.MatchTime.Sub(now)
		out = append(out, models.UpcomingMatch{
			Match:      m,
			TimeUntil:  until,
			IsImminent: until <= imminentWindow,
		})
	}
	return out, nil
}

// Recent lists the judge's past matches, newest first, capped at 10.
func (s *MatchService) Recent(judgeID string, now time.Time) ([]models.Match, error) {
	var matches []models.Match
	err := s.preloadAll().
		Where("judge_id = ? AND match_time < ?", judgeID, now).
		Order("match_time DESC").
		Limit(10).
		Find(&matches).Error
	return matches, err
}

func (s *MatchService) preloadAll() *gorm.DB {
	return s.DB.Preload("Event").
		Preload("Trainee1.User").Preload("Trainee1.Belt").
		Preload("Trainee2.User").Preload("Trainee2.Belt").
		Preload("Winner.User")
}

// --- HTTP handlers ---

func (s *MatchService) CreateHandler(c *fiber.Ctx) error {
	var req MatchCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	match, err := s.Create(req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(match)
}

// ScoringHandler shows the judge the current scoring state of their match.
func (s *MatchService) ScoringHandler(c *fiber.Ctx) error {
	judgeID, _ := c.Locals("user_id").(string)
	match, err := s.getForJudge(c.Params("id"), judgeID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"match":        match,
		"is_future":    match.MatchTime.After(time.Now()),
		"is_completed": match.IsCompleted(),
	})
}

func (s *MatchService) UpdateScoreHandler(c *fiber.Ctx) error {
	judgeID, _ := c.Locals("user_id").(string)
	var req struct {
		Side    string `json:"trainee"`
		Action  string `json:"action"`
		Version int    `json:"version,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	match, err := s.UpdateScore(c.Params("id"), judgeID, req.Side, req.Action, req.Version)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(match)
}

func (s *MatchService) CompleteHandler(c *fiber.Ctx) error {
	judgeID, _ := c.Locals("user_id").(string)
	var req struct {
		WinnerID string `json:"winner_id"`
		Version  int    `json:"version,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	match, err := s.Complete(c.Params("id"), judgeID, req.WinnerID, req.Version)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "match completed, winner: " + match.Winner.User.FullName(),
		"match":   match,
	})
}

func (s *MatchService) UpcomingHandler(c *fiber.Ctx) error {
	judgeID, _ := c.Locals("user_id").(string)
	matches, err := s.Upcoming(judgeID, time.Now())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch upcoming matches"})
	}
	return c.JSON(matches)
}

func (s *MatchService) RecentHandler(c *fiber.Ctx) error {
	judgeID, _ := c.Locals("user_id").(string)
	matches, err := s.Recent(judgeID, time.Now())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch recent matches"})
	}
	return c.JSON(matches)
}
