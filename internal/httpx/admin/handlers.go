// Package admin serves operator endpoints guarded by the admin role.
package admin

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"planeat-api/internal/httpx/kit"
	"planeat-api/internal/planner"
)

// Role is the JWT role operator endpoints require.
const Role = "admin"

// AuditHandler runs the agenda integrity audit on demand.
//
//	@Summary      Run integrity audit
//	@Description  Check every schedule entry for missing recipes or days and report duplicate calendar days
//	@Tags         admin
//	@Produce      json
//	@Security     BearerAuth
//	@Success      200  {object}  agenda.Report
//	@Failure      401  {object}  map[string]interface{}  "unauthorized"
//	@Failure      403  {object}  map[string]interface{}  "forbidden"
//	@Router       /api/v1/admin/audit [post]
func AuditHandler(svc *planner.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()
		rep, err := svc.Audit(ctx)
		if err != nil {
			return kit.InternalError("audit failed", err.Error())
		}
		return kit.OK(c, rep)
	}
}
