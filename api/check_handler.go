package api

import (
	"net/http"

	"github.com/xraph/forge"
)

func (a *API) registerCheckRoutes(router forge.Router) error {
	g := router.Group("/v1/access", forge.WithGroupTags("access"))

	return g.POST("/check", a.check,
		forge.WithSummary("Access check"),
		forge.WithDescription("Reports whether a user holds a permission on a module, directly or through their role."),
		forge.WithOperationID("accessCheck"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) check(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	if req.UserID <= 0 {
		return nil, forge.BadRequest("user_id is required")
	}

	allowed, err := a.svc.HasAccess(ctx.Context(), req.UserID, req.Module, req.Permission)
	if err != nil {
		return nil, mapError(err)
	}

	return &CheckResponse{Allowed: allowed}, nil
}
