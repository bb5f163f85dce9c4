package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"EmaQuest/internal/game"
	pkgerrors "EmaQuest/pkg/errors"
)

func seedExportStore(t *testing.T) *game.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := game.NewMemoryStore()

	watching := true
	gsA := game.NewGameState("ana")
	gsA.HasOnboarded = true
	gsA.StudyStartDate = time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	gsA.Sociodemographic = map[string]string{"age": "24", "gender": "female"}
	if err := gsA.Pings.SetStatus(0, 0, game.SlotCompleted); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := gsA.Pings.SetStatus(0, game.EndOfDayIndex, game.SlotCompleted); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	gsA.Responses = []game.InstrumentResponse{
		{
			ID:              "resp-1",
			Timestamp:       time.Date(2026, 8, 3, 9, 2, 0, 0, time.UTC),
			PingDay:         0,
			PingIndex:       0,
			Type:            game.PingRegular,
			SAM:             &game.SAMRating{Pleasure: 6, Arousal: 4, Dominance: 5},
			WasWatchingFeed: &watching,
			PANAS:           map[string]int{"Interessado": 4, "Nervoso": 2},
		},
		{
			ID:              "resp-2",
			Timestamp:       time.Date(2026, 8, 3, 21, 35, 0, 0, time.UTC),
			PingDay:         0,
			PingIndex:       game.EndOfDayIndex,
			Type:            game.PingEndOfDay,
			PANAS:           map[string]int{"Ativo": 3},
			SleepQuality:    4,
			StressfulEvents: "prova de estatística",
			ScreenTimeLog: []game.ScreenTimeEntry{
				{Platform: "tiktok", DurationMinutes: 95},
				{Platform: "other", OtherPlatformDetail: "kwai", DurationMinutes: 20},
			},
		},
	}
	gsA.Points = game.PointsFromGrid(&gsA.Pings)
	gsA.Level = game.LevelFor(gsA.Points)

	gsB := game.NewGameState("bruno")
	gsB.Sociodemographic = map[string]string{"age": "31", "occupation": "student"}

	if err := store.Put(ctx, 2, gsB); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, 1, gsA); err != nil {
		t.Fatalf("Put: %v", err)
	}
	return store
}

func exportTable(t *testing.T, svc *ExportService, table string) ([]byte, [][]string) {
	t.Helper()

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), table, &buf); err != nil {
		t.Fatalf("ExportCSV(%s): %v", table, err)
	}

	raw := buf.Bytes()
	if len(raw) < 3 || raw[0] != 0xEF || raw[1] != 0xBB || raw[2] != 0xBF {
		t.Fatalf("%s export does not start with a UTF-8 BOM", table)
	}

	records, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	if err != nil {
		t.Fatalf("parse %s CSV: %v", table, err)
	}
	return raw, records
}

func TestExportParticipants(t *testing.T) {
	svc := NewExportService(seedExportStore(t))

	_, records := exportTable(t, svc, "participants")
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}

	header := records[0]
	// socio columns are the sorted union of both participants' keys
	wantTail := []string{"socio_age", "socio_gender", "socio_occupation"}
	tail := header[len(header)-3:]
	for i, want := range wantTail {
		if tail[i] != want {
			t.Fatalf("socio column %d = %q, want %q", i, tail[i], want)
		}
	}

	// rows sorted by participant ID
	if records[1][0] != "1" || records[2][0] != "2" {
		t.Fatalf("rows not sorted by ID: %q, %q", records[1][0], records[2][0])
	}
	if records[1][3] != "2026-08-03" {
		t.Fatalf("study_start_date = %q, want 2026-08-03", records[1][3])
	}
	// bruno has no gender answer, the cell stays empty
	if records[2][len(header)-2] != "" {
		t.Fatalf("missing socio answer should be empty, got %q", records[2][len(header)-2])
	}
	if records[2][len(header)-1] != "student" {
		t.Fatalf("socio_occupation = %q, want student", records[2][len(header)-1])
	}
}

func TestExportResponses(t *testing.T) {
	svc := NewExportService(seedExportStore(t))

	_, records := exportTable(t, svc, "responses")
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}

	header := records[0]
	// one PANAS column per adjective, in checklist order
	first := -1
	for i, col := range header {
		if strings.HasPrefix(col, "panas_") {
			first = i
			break
		}
	}
	if first < 0 {
		t.Fatal("no PANAS columns in the responses export")
	}
	for i, adjective := range game.PANASAdjectives {
		if header[first+i] != "panas_"+adjective {
			t.Fatalf("PANAS column %d = %q, want panas_%s", i, header[first+i], adjective)
		}
	}

	regular, endOfDay := records[1], records[2]
	if regular[4] != "regular" || endOfDay[4] != "end_of_day" {
		t.Fatalf("ping types = %q, %q", regular[4], endOfDay[4])
	}
	if regular[6] != "6" || regular[7] != "4" || regular[8] != "5" {
		t.Fatalf("SAM columns = %v", regular[6:9])
	}
	if regular[9] != "true" {
		t.Fatalf("was_watching_feed = %q, want true", regular[9])
	}
	// regular pings have no sleep columns
	if regular[len(header)-2] != "" || regular[len(header)-1] != "" {
		t.Fatalf("regular row has end-of-day columns filled: %v", regular[len(header)-2:])
	}
	if endOfDay[len(header)-2] != "4" {
		t.Fatalf("sleep_quality = %q, want 4", endOfDay[len(header)-2])
	}
	if endOfDay[len(header)-1] != "prova de estatística" {
		t.Fatalf("stressful_events = %q", endOfDay[len(header)-1])
	}
}

func TestExportScreenTime(t *testing.T) {
	svc := NewExportService(seedExportStore(t))

	_, records := exportTable(t, svc, "screen_time")
	if len(records) != 3 {
		t.Fatalf("expected header + 2 entries, got %d records", len(records))
	}
	if records[1][3] != "tiktok" || records[1][5] != "95" {
		t.Fatalf("first entry = %v", records[1])
	}
	if records[2][3] != "other" || records[2][4] != "kwai" || records[2][5] != "20" {
		t.Fatalf("second entry = %v", records[2])
	}
}

func TestExportUnknownTable(t *testing.T) {
	svc := NewExportService(seedExportStore(t))

	var buf bytes.Buffer
	err := svc.ExportCSV(context.Background(), "secrets", &buf)
	if !errors.Is(err, pkgerrors.ExportTableUnknown) {
		t.Fatalf("expected ExportTableUnknown, got %v", err)
	}
}
