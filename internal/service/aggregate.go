package service

import (
	"context"
	"sort"
	"sync"

	"EmaQuest/internal/game"
	"EmaQuest/internal/model/dto"
	"EmaQuest/internal/repository"
)

// AggregateService computes the researcher dashboard views over the whole
// cohort. Reads go through Store.List so they hit the replica when one is
// configured.
type AggregateService struct {
	store game.Store
}

var (
	aggregateService *AggregateService
	aggregateSvcOnce sync.Once
)

func Aggregate() *AggregateService {
	aggregateSvcOnce.Do(func() {
		aggregateService = NewAggregateService(repository.Participants())
	})
	return aggregateService
}

func NewAggregateService(store game.Store) *AggregateService {
	return &AggregateService{store: store}
}

// ListParticipants returns one dashboard row per participant, sorted by ID
// for stable pagination.
func (s *AggregateService) ListParticipants(ctx context.Context) ([]dto.AdminParticipantRow, error) {
	states, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]dto.AdminParticipantRow, 0, len(ids))
	for _, id := range ids {
		gs := states[id]
		row := dto.AdminParticipantRow{
			ID:             formatID(id),
			Nickname:       gs.Nickname,
			Status:         statusString(gs),
			CurrentDay:     gs.Pings.CurrentDay(),
			Points:         gs.Points,
			Level:          gs.Level,
			CompletedCount: gs.Pings.CompletedCount(),
			MissedCount:    gs.Pings.MissedCount(),
			ResponseRate:   gs.ResponseRate,
		}
		if !gs.StudyStartDate.IsZero() {
			start := gs.StudyStartDate
			row.StudyStartDate = &start
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Stats aggregates compliance across the cohort.
func (s *AggregateService) Stats(ctx context.Context) (*dto.StudyStatsData, error) {
	states, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.StudyStatsData{
		Participants:    len(states),
		ResponsesByDay:  make([]int, game.StudyDays),
		CompletedBySlot: make([]int, game.SlotsPerDay),
	}

	var (
		rateSum  float64
		samCount int
		samSums  dto.SAMMeans
	)
	for _, gs := range states {
		switch statusString(gs) {
		case "finished":
			stats.Finished++
		case "active":
			stats.ActiveToday++
		}

		stats.TotalResponses += gs.Pings.CompletedCount()
		stats.TotalMissed += gs.Pings.MissedCount()
		rateSum += gs.ResponseRate

		for _, resp := range gs.Responses {
			if resp.PingDay >= 0 && resp.PingDay < game.StudyDays {
				stats.ResponsesByDay[resp.PingDay]++
			}
			if resp.PingIndex >= 0 && resp.PingIndex < game.SlotsPerDay {
				stats.CompletedBySlot[resp.PingIndex]++
			}
			if resp.SAM != nil {
				samCount++
				samSums.Pleasure += float64(resp.SAM.Pleasure)
				samSums.Arousal += float64(resp.SAM.Arousal)
				samSums.Dominance += float64(resp.SAM.Dominance)
			}
		}
	}

	if len(states) > 0 {
		stats.MeanResponseRate = rateSum / float64(len(states))
	}
	if samCount > 0 {
		stats.MeanSAM = &dto.SAMMeans{
			Pleasure:  samSums.Pleasure / float64(samCount),
			Arousal:   samSums.Arousal / float64(samCount),
			Dominance: samSums.Dominance / float64(samCount),
		}
	}
	return stats, nil
}
