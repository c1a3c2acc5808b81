package ingest

import (
	"errors"
	"fmt"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/config"

	"github.com/gofiber/fiber/v2"
)

type IngestController struct {
	Service IngestService
}

func NewIngestController(service IngestService) *IngestController {
	return &IngestController{
		Service: service,
	}
}

func parseOptions(c *fiber.Ctx) (Options, error) {
	var opts Options
	if len(c.Body()) == 0 {
		return opts, nil
	}
	if err := c.BodyParser(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

func syncErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrSyncInProgress):
		return fiber.StatusConflict
	case errors.Is(err, config.ErrMissingAccessToken), errors.Is(err, config.ErrMissingAdAccounts):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// SyncCampaigns runs a campaign sync and returns its summary
func (ctrl *IngestController) SyncCampaigns(c *fiber.Ctx) error {
	opts, err := parseOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	summary, err := ctrl.Service.SyncCampaigns(c.UserContext(), opts)
	if err != nil {
		return c.Status(syncErrorStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": summary,
	})
}

// SyncLeads runs a lead sync and returns its summary
func (ctrl *IngestController) SyncLeads(c *fiber.Ctx) error {
	opts, err := parseOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	summary, err := ctrl.Service.SyncLeads(c.UserContext(), opts)
	if err != nil {
		return c.Status(syncErrorStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": summary,
	})
}

func kindParam(c *fiber.Ctx) (Kind, bool) {
	switch k := Kind(c.Query("kind", string(KindLeads))); k {
	case KindLeads, KindCampaigns:
		return k, true
	default:
		return "", false
	}
}

// GetLastRun returns the latest summary of ?kind=leads|campaigns
func (ctrl *IngestController) GetLastRun(c *fiber.Ctx) error {
	kind, ok := kindParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "kind must be leads or campaigns",
		})
	}

	summary := ctrl.Service.LastSummary(kind)
	if summary == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No sync has run yet",
		})
	}

	return c.JSON(fiber.Map{
		"data": summary,
	})
}

// ExportLastRun downloads the latest summary as a workbook
func (ctrl *IngestController) ExportLastRun(c *fiber.Ctx) error {
	kind, ok := kindParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "kind must be leads or campaigns",
		})
	}

	summary := ctrl.Service.LastSummary(kind)
	if summary == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No sync has run yet",
		})
	}

	data, err := ExportSummaryXLSX(summary)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=sync_%s_%s.xlsx", summary.Kind, summary.RunID))
	return c.Send(data)
}
