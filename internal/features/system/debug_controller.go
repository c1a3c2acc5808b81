package system

import (
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/scheduler"
	"github.com/tndevelopers2024/medagg-crm-sub002/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type DebugController struct {
	scheduler scheduler.SchedulerService
}

func NewDebugController(scheduler scheduler.SchedulerService) *DebugController {
	return &DebugController{scheduler: scheduler}
}

// GetCurrentUser returns the claims of the calling token
func (c *DebugController) GetCurrentUser(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	return ctx.JSON(fiber.Map{
		"user_id": claims.UserID,
		"roles":   claims.Roles,
	})
}

// GetSchedule lists the registered sync schedules with their next run
func (c *DebugController) GetSchedule(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"data": c.scheduler.Entries(),
	})
}
