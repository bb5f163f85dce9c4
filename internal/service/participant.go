package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"EmaQuest/config"
	"EmaQuest/internal/cache"
	"EmaQuest/internal/game"
	"EmaQuest/internal/model"
	"EmaQuest/internal/model/dto"
	"EmaQuest/internal/repository"
	pkgerrors "EmaQuest/pkg/errors"
	"EmaQuest/pkg/logger"
	"EmaQuest/pkg/snowflake"
	"EmaQuest/pkg/token"
	"EmaQuest/utils"
)

// ParticipantService covers enrollment, onboarding and state reads. All
// mutations of game state go through the Store port so the service can be
// tested against game.MemoryStore.
type ParticipantService struct {
	store    game.Store
	repo     *repository.ParticipantRepo
	useCache bool
	now      func() time.Time
}

var (
	participantService *ParticipantService
	participantSvcOnce sync.Once
)

func Participant() *ParticipantService {
	participantSvcOnce.Do(func() {
		repo := repository.Participants()
		participantService = &ParticipantService{
			store:    repo,
			repo:     repo,
			useCache: true,
			now:      time.Now,
		}
	})
	return participantService
}

// NewParticipantService builds a service around an injected store; the
// enrollment path needs the gorm repo and is unavailable when repo is nil.
func NewParticipantService(store game.Store, now func() time.Time) *ParticipantService {
	if now == nil {
		now = time.Now
	}
	return &ParticipantService{store: store, now: now}
}

// Enroll creates the participant account: study-code gate, nickname
// reservation, snowflake ID, all 49 slots pending, level 1.
func (s *ParticipantService) Enroll(ctx context.Context, req dto.EnrollRequest) (*dto.EnrollResponse, error) {
	if req.StudyCode != config.Cfg.StudyCode {
		return nil, pkgerrors.StudyCodeInvalid
	}
	if !utils.ValidateNickname(req.Nickname) {
		return nil, pkgerrors.NicknameInvalid
	}

	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate participant ID: %w", err)
	}

	p := &model.Participant{
		PublicID: publicID,
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
		Status:   model.ParticipantStatusEnrolled,
		Level:    1,
		Badges:   model.StringList{},
		Pings:    game.NewScheduleGrid(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	identity := strconv.FormatInt(publicID, 10)
	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(identity, false)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	logger.Logger.Info("Participant enrolled",
		zap.Int64("participant_id", publicID),
		zap.String("nickname", req.Nickname),
	)

	gs := game.NewGameState(req.Nickname)
	gs.Avatar = req.Avatar
	snapshot := snapshotFor(identity, gs)

	return &dto.EnrollResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		Participant:  snapshot,
	}, nil
}

// RefreshTokens rotates a token pair.
func (s *ParticipantService) RefreshTokens(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error) {
	identity, admin, err := token.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, pkgerrors.Unauthorized
	}

	accessToken, newRefresh, expiresIn, err := token.GenerateTokenPair(identity, admin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresIn:    expiresIn,
	}, nil
}

// CompleteOnboarding stores the sociodemographic answers and starts the study
// clock. Day 0 is the calendar day of onboarding in the study timezone.
func (s *ParticipantService) CompleteOnboarding(ctx context.Context, participantID int64, socio map[string]string) (*dto.ParticipantSnapshot, error) {
	gs, err := s.loadState(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if gs.HasOnboarded {
		return nil, pkgerrors.OnboardingAlreadyDone
	}

	loc, err := time.LoadLocation(config.Cfg.StudyTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid study timezone: %w", err)
	}
	now := s.now().In(loc)

	gs.HasOnboarded = true
	gs.Sociodemographic = socio
	gs.StudyStartDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if err := s.store.Put(ctx, participantID, gs); err != nil {
		logger.Logger.Error("Failed to persist onboarding",
			zap.Int64("participant_id", participantID),
			zap.Error(err),
		)
		return nil, pkgerrors.PersistenceFailure
	}
	s.invalidateCache(ctx, participantID)

	snapshot := snapshotFor(strconv.FormatInt(participantID, 10), gs)
	return &snapshot, nil
}

// GetState returns the dashboard snapshot, cache first.
func (s *ParticipantService) GetState(ctx context.Context, participantID int64) (*dto.ParticipantSnapshot, error) {
	if s.useCache {
		if gs, hit, err := cache.GetGameState(ctx, participantID); err == nil && hit {
			snapshot := snapshotFor(strconv.FormatInt(participantID, 10), gs)
			return &snapshot, nil
		}
	}

	gs, err := s.loadState(ctx, participantID)
	if err != nil {
		return nil, err
	}

	if s.useCache {
		if err := cache.SetGameState(ctx, participantID, gs); err != nil {
			logger.Logger.Warn("Failed to cache game state",
				zap.Int64("participant_id", participantID),
				zap.Error(err),
			)
		}
	}

	snapshot := snapshotFor(strconv.FormatInt(participantID, 10), gs)
	return &snapshot, nil
}

func (s *ParticipantService) loadState(ctx context.Context, participantID int64) (game.GameState, error) {
	gs, err := s.store.Get(ctx, participantID)
	if err != nil {
		if errors.Is(err, game.ErrStateNotFound) {
			return game.GameState{}, pkgerrors.ParticipantNotFound
		}
		return game.GameState{}, fmt.Errorf("failed to load game state: %w", err)
	}
	return gs, nil
}

func (s *ParticipantService) invalidateCache(ctx context.Context, participantID int64) {
	if !s.useCache {
		return
	}
	if err := cache.InvalidateGameState(ctx, participantID); err != nil {
		logger.Logger.Warn("Failed to invalidate game state cache",
			zap.Int64("participant_id", participantID),
			zap.Error(err),
		)
	}
}

func formatID(participantID int64) string {
	return strconv.FormatInt(participantID, 10)
}

func snapshotFor(id string, gs game.GameState) dto.ParticipantSnapshot {
	snapshot := dto.ParticipantSnapshot{
		ID:            id,
		Nickname:      gs.Nickname,
		Avatar:        gs.Avatar,
		Status:        statusString(gs),
		HasOnboarded:  gs.HasOnboarded,
		Points:        gs.Points,
		Level:         gs.Level,
		CurrentStreak: gs.CurrentStreak,
		CompletedDays: gs.CompletedDays,
		ResponseRate:  gs.ResponseRate,
		Badges:        gs.Badges,
		CurrentDay:    gs.Pings.CurrentDay(),
		Pings:         gs.Pings,
	}
	if !gs.StudyStartDate.IsZero() {
		start := gs.StudyStartDate
		snapshot.StudyStartDate = &start
	}
	if snapshot.Badges == nil {
		snapshot.Badges = []string{}
	}
	return snapshot
}

func statusString(gs game.GameState) string {
	switch {
	case gs.Pings.Resolved():
		return string(model.ParticipantStatusFinished)
	case gs.HasOnboarded:
		return string(model.ParticipantStatusActive)
	default:
		return string(model.ParticipantStatusEnrolled)
	}
}
