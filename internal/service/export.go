package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"EmaQuest/internal/game"
	"EmaQuest/internal/repository"
	pkgerrors "EmaQuest/pkg/errors"
)

// ExportService writes the analysis datasets as CSV. Files start with a
// UTF-8 BOM so the Portuguese adjective columns open correctly in Excel.
type ExportService struct {
	store game.Store
}

var (
	exportService *ExportService
	exportSvcOnce sync.Once
)

func Export() *ExportService {
	exportSvcOnce.Do(func() {
		exportService = NewExportService(repository.Participants())
	})
	return exportService
}

func NewExportService(store game.Store) *ExportService {
	return &ExportService{store: store}
}

// ExportTables lists the valid table arguments of ExportCSV.
var ExportTables = []string{"participants", "responses", "screen_time"}

func (s *ExportService) ExportCSV(ctx context.Context, table string, w io.Writer) error {
	states, err := s.store.List(ctx)
	if err != nil {
		return err
	}

	ids := make([]int64, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}
	cw := csv.NewWriter(w)

	switch table {
	case "participants":
		err = writeParticipants(cw, ids, states)
	case "responses":
		err = writeResponses(cw, ids, states)
	case "screen_time":
		err = writeScreenTime(cw, ids, states)
	default:
		return pkgerrors.ExportTableUnknown
	}
	if err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

func writeParticipants(cw *csv.Writer, ids []int64, states map[int64]game.GameState) error {
	// Sociodemographic keys vary by questionnaire version; the union of keys
	// becomes a stable sorted column block.
	socioKeys := map[string]bool{}
	for _, gs := range states {
		for k := range gs.Sociodemographic {
			socioKeys[k] = true
		}
	}
	sortedSocio := make([]string, 0, len(socioKeys))
	for k := range socioKeys {
		sortedSocio = append(sortedSocio, k)
	}
	sort.Strings(sortedSocio)

	header := []string{
		"participant_id", "nickname", "status", "study_start_date",
		"points", "level", "current_streak", "completed_days",
		"completed_count", "missed_count", "response_rate",
	}
	for _, k := range sortedSocio {
		header = append(header, "socio_"+k)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, id := range ids {
		gs := states[id]
		start := ""
		if !gs.StudyStartDate.IsZero() {
			start = gs.StudyStartDate.Format("2006-01-02")
		}
		record := []string{
			strconv.FormatInt(id, 10),
			gs.Nickname,
			statusString(gs),
			start,
			strconv.Itoa(gs.Points),
			strconv.Itoa(gs.Level),
			strconv.Itoa(gs.CurrentStreak),
			strconv.Itoa(gs.CompletedDays),
			strconv.Itoa(gs.Pings.CompletedCount()),
			strconv.Itoa(gs.Pings.MissedCount()),
			strconv.FormatFloat(gs.ResponseRate, 'f', 4, 64),
		}
		for _, k := range sortedSocio {
			record = append(record, gs.Sociodemographic[k])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeResponses(cw *csv.Writer, ids []int64, states map[int64]game.GameState) error {
	header := []string{
		"participant_id", "response_id", "ping_day", "ping_index", "ping_type",
		"answered_at", "sam_pleasure", "sam_arousal", "sam_dominance",
		"was_watching_feed",
	}
	// One column per PANAS adjective, in checklist order.
	for _, adjective := range game.PANASAdjectives {
		header = append(header, "panas_"+adjective)
	}
	header = append(header, "sleep_quality", "stressful_events")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, id := range ids {
		gs := states[id]
		for _, resp := range gs.Responses {
			record := []string{
				strconv.FormatInt(id, 10),
				resp.ID,
				strconv.Itoa(resp.PingDay),
				strconv.Itoa(resp.PingIndex),
				string(resp.Type),
				resp.Timestamp.Format(time.RFC3339),
			}
			if resp.SAM != nil {
				record = append(record,
					strconv.Itoa(resp.SAM.Pleasure),
					strconv.Itoa(resp.SAM.Arousal),
					strconv.Itoa(resp.SAM.Dominance),
				)
			} else {
				record = append(record, "", "", "")
			}
			if resp.WasWatchingFeed != nil {
				record = append(record, strconv.FormatBool(*resp.WasWatchingFeed))
			} else {
				record = append(record, "")
			}
			for _, adjective := range game.PANASAdjectives {
				if score, ok := resp.PANAS[adjective]; ok {
					record = append(record, strconv.Itoa(score))
				} else {
					record = append(record, "")
				}
			}
			if resp.Type == game.PingEndOfDay {
				record = append(record, strconv.Itoa(resp.SleepQuality), resp.StressfulEvents)
			} else {
				record = append(record, "", "")
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeScreenTime(cw *csv.Writer, ids []int64, states map[int64]game.GameState) error {
	header := []string{
		"participant_id", "response_id", "ping_day",
		"platform", "other_platform_detail", "duration_minutes",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, id := range ids {
		gs := states[id]
		for _, resp := range gs.Responses {
			for _, entry := range resp.ScreenTimeLog {
				record := []string{
					strconv.FormatInt(id, 10),
					resp.ID,
					strconv.Itoa(resp.PingDay),
					entry.Platform,
					entry.OtherPlatformDetail,
					strconv.Itoa(entry.DurationMinutes),
				}
				if err := cw.Write(record); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
