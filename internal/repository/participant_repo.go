package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"EmaQuest/internal/game"
	"EmaQuest/internal/model"
	pkgerrors "EmaQuest/pkg/errors"
	"EmaQuest/storage/database"
)

// ParticipantRepo is the gorm-backed implementation of game.Store plus the
// enrollment-side participant queries. Participants are addressed by their
// snowflake public ID everywhere above this layer.
type ParticipantRepo struct {
	db *gorm.DB
}

var (
	participantRepo *ParticipantRepo
	participantOnce sync.Once
)

func Participants() *ParticipantRepo {
	participantOnce.Do(func() {
		participantRepo = NewParticipantRepo(database.DB())
	})
	return participantRepo
}

func NewParticipantRepo(db *gorm.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

// Create inserts the enrollment row. A nickname collision surfaces as
// NicknameTaken.
func (r *ParticipantRepo) Create(ctx context.Context, p *model.Participant) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.NicknameTaken
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *ParticipantRepo) GetByPublicID(ctx context.Context, publicID int64) (*model.Participant, error) {
	var p model.Participant
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ParticipantNotFound
		}
		return nil, fmt.Errorf("failed to query participant: %w", err)
	}
	return &p, nil
}

func (r *ParticipantRepo) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Participant{}).
		Where("nickname = ?", nickname).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check nickname: %w", err)
	}
	return count > 0, nil
}

// ListActive returns the participants the scheduler fans out to.
func (r *ParticipantRepo) ListActive(ctx context.Context) ([]model.Participant, error) {
	var out []model.Participant
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ParticipantStatusActive).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active participants: %w", err)
	}
	return out, nil
}

func (r *ParticipantRepo) ListAll(ctx context.Context) ([]model.Participant, error) {
	var out []model.Participant
	if err := r.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return out, nil
}

// Get implements game.Store: the participant row plus its response rows,
// assembled into one GameState.
func (r *ParticipantRepo) Get(ctx context.Context, participantID int64) (game.GameState, error) {
	p, err := r.GetByPublicID(ctx, participantID)
	if err != nil {
		if errors.Is(err, pkgerrors.ParticipantNotFound) {
			return game.GameState{}, game.ErrStateNotFound
		}
		return game.GameState{}, err
	}

	rows, err := r.responsesFor(ctx, participantID)
	if err != nil {
		return game.GameState{}, err
	}

	return assembleState(p, rows), nil
}

// Put implements game.Store: one transaction updating the participant row
// and inserting any responses not yet stored. The slot unique index plus
// ON CONFLICT DO NOTHING makes the write idempotent under retries.
func (r *ParticipantRepo) Put(ctx context.Context, participantID int64, gs game.GameState) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"avatar":           gs.Avatar,
			"points":           gs.Points,
			"level":            gs.Level,
			"current_streak":   gs.CurrentStreak,
			"completed_days":   gs.CompletedDays,
			"response_rate":    gs.ResponseRate,
			"badges":           model.StringList(gs.Badges),
			"pings":            gs.Pings,
			"sociodemographic": model.StringMap(gs.Sociodemographic),
			"has_onboarded":    gs.HasOnboarded,
			"status":           string(statusFor(gs)),
		}
		if !gs.StudyStartDate.IsZero() {
			updates["study_start_date"] = gs.StudyStartDate
		}

		res := tx.Model(&model.Participant{}).
			Where("public_id = ?", participantID).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update participant state: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return game.ErrStateNotFound
		}

		for _, resp := range gs.Responses {
			row := model.FromInstrumentResponse(participantID, resp)
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("failed to insert response %s: %w", resp.ID, err)
			}
		}

		return nil
	})
}

// List implements game.Store for researcher aggregation and export.
func (r *ParticipantRepo) List(ctx context.Context) (map[int64]game.GameState, error) {
	participants, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Response
	err = r.db.WithContext(ctx).
		Order("participant_id, ping_day, ping_index").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	byParticipant := make(map[int64][]model.Response)
	for _, row := range rows {
		byParticipant[row.ParticipantID] = append(byParticipant[row.ParticipantID], row)
	}

	out := make(map[int64]game.GameState, len(participants))
	for i := range participants {
		p := &participants[i]
		out[p.PublicID] = assembleState(p, byParticipant[p.PublicID])
	}
	return out, nil
}

func (r *ParticipantRepo) responsesFor(ctx context.Context, participantID int64) ([]model.Response, error) {
	var rows []model.Response
	err := r.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("ping_day, ping_index").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	return rows, nil
}

func assembleState(p *model.Participant, rows []model.Response) game.GameState {
	gs := game.GameState{
		Nickname:         p.Nickname,
		Avatar:           p.Avatar,
		Points:           p.Points,
		Level:            p.Level,
		CurrentStreak:    p.CurrentStreak,
		CompletedDays:    p.CompletedDays,
		ResponseRate:     p.ResponseRate,
		Badges:           []string(p.Badges),
		Pings:            p.Pings,
		Sociodemographic: map[string]string(p.Sociodemographic),
		HasOnboarded:     p.HasOnboarded,
	}
	if p.StudyStartDate != nil {
		gs.StudyStartDate = *p.StudyStartDate
	}
	gs.Responses = make([]game.InstrumentResponse, 0, len(rows))
	for _, row := range rows {
		gs.Responses = append(gs.Responses, row.ToInstrumentResponse())
	}
	return gs
}

func statusFor(gs game.GameState) model.ParticipantStatus {
	switch {
	case gs.Pings.Resolved():
		return model.ParticipantStatusFinished
	case gs.HasOnboarded:
		return model.ParticipantStatusActive
	default:
		return model.ParticipantStatusEnrolled
	}
}
