package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"EmaQuest/internal/model/dto"
	"EmaQuest/internal/schedule"
	"EmaQuest/internal/service"
	"EmaQuest/pkg/response"
)

// ListParticipants returns the researcher dashboard rows.
// GET /v1/admin/participants
func ListParticipants(ctx context.Context, c *app.RequestContext) {
	result, err := service.Aggregate().ListParticipants(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, result, map[string]interface{}{
		"count": len(result),
	})
}

// GetStudyStats returns cohort-level compliance aggregates.
// GET /v1/admin/stats
func GetStudyStats(ctx context.Context, c *app.RequestContext) {
	result, err := service.Aggregate().Stats(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ExportCSV streams one of the export tables as a CSV attachment.
// GET /v1/admin/export/:table
func ExportCSV(ctx context.Context, c *app.RequestContext) {
	table := c.Param("table")

	c.Response.Header.SetContentType("text/csv; charset=utf-8")
	c.Response.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, table))

	var buf bytes.Buffer
	if err := service.Export().ExportCSV(ctx, table, &buf); err != nil {
		c.Response.Header.SetContentType("application/json; charset=utf-8")
		c.Response.Header.Del("Content-Disposition")
		response.Error(ctx, c, err)
		return
	}

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Broadcast enqueues an announcement push to participant devices.
// POST /v1/admin/broadcast
func Broadcast(ctx context.Context, c *app.RequestContext) {
	var req dto.BroadcastRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Notification().Broadcast(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// TriggerScheduling runs the ping scheduling scan on demand (automation and
// smoke tests; the scheduler binary runs it daily).
// POST /v1/admin/schedule/run
func TriggerScheduling(ctx context.Context, c *app.RequestContext) {
	scheduler := schedule.GetScheduler()
	if err := scheduler.SchedulePings(ctx); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"last_run": scheduler.LastRun(),
	})
}
