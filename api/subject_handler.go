package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/accessmatrix"
	"github.com/xraph/accessmatrix/rule"
)

func (a *API) registerSubjectRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("subjects"))

	if err := g.GET("/subjects/resolve", a.resolveSubject,
		forge.WithSummary("Resolve subject"),
		forge.WithDescription("Resolves a role name or user email to the subject a grant would store."),
		forge.WithOperationID("resolveSubject"),
		forge.WithRequestSchema(ResolveSubjectRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Resolved subject", accessmatrix.Subject{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/permissions", a.listPermissions,
		forge.WithSummary("List permissions"),
		forge.WithOperationID("listPermissions"),
		forge.WithResponseSchema(http.StatusOK, "Permissions", PermissionsResponse{}),
	)
}

func (a *API) resolveSubject(ctx forge.Context, req *ResolveSubjectRequest) (*accessmatrix.Subject, error) {
	subj, err := a.svc.ResolveSubject(ctx.Context(), req.SubjectType, req.Subject)
	if err != nil {
		return nil, mapError(err)
	}
	return subj, nil
}

func (a *API) listPermissions(ctx forge.Context, _ *ListPermissionsRequest) (*PermissionsResponse, error) {
	return &PermissionsResponse{Permissions: rule.Permissions}, nil
}
