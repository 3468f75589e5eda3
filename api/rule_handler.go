package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/accessmatrix"
	"github.com/xraph/accessmatrix/rule"
)

func (a *API) registerRuleRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("access-rules"))

	if err := g.POST("/access-rules", a.grantRule,
		forge.WithSummary("Grant access rule"),
		forge.WithDescription("Grants a permission on a module to a role or user. Returns the existing rule if already granted."),
		forge.WithOperationID("grantAccessRule"),
		forge.WithRequestSchema(GrantRuleRequest{}),
		forge.WithCreatedResponse(&rule.Rule{}),
		forge.WithResponseSchema(http.StatusOK, "Rule already granted", &rule.Rule{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/access-rules", a.listRules,
		forge.WithSummary("List access rules"),
		forge.WithDescription("Returns a filtered, paginated page of access rules."),
		forge.WithOperationID("listAccessRules"),
		forge.WithRequestSchema(ListRulesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Rule page", RuleListResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/access-rules/:ruleId", a.revokeRule,
		forge.WithSummary("Revoke access rule"),
		forge.WithDescription("Deletes an access rule. Revoking an unknown rule succeeds."),
		forge.WithOperationID("revokeAccessRule"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) grantRule(ctx forge.Context, req *GrantRuleRequest) (*rule.Rule, error) {
	r, created, err := a.svc.Grant(ctx.Context(), accessmatrix.GrantRequest{
		SubjectType: req.SubjectType,
		Subject:     req.Subject,
		Module:      req.Module,
		Permission:  req.Permission,
	})
	if err != nil {
		return nil, mapError(err)
	}

	if created {
		return nil, ctx.JSON(http.StatusCreated, r)
	}
	return r, nil
}

func (a *API) listRules(ctx forge.Context, req *ListRulesRequest) (*RuleListResponse, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	cfg := a.svc.Config()

	p, err := a.svc.List(ctx.Context(), accessmatrix.ListFilter{
		SubjectType: req.SubjectType,
		Module:      req.Module,
		Permission:  req.Permission,
		Search:      req.Search,
	}, page, cfg.PageSize(req.PageSize))
	if err != nil {
		return nil, mapError(err)
	}

	resp := &RuleListResponse{
		Items:      p.Items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(),
	}
	return resp, nil
}

func (a *API) revokeRule(ctx forge.Context, _ *RevokeRuleRequest) (*struct{}, error) {
	ruleID, err := parseRuleID(ctx.Param("ruleId"))
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}

	if err := a.svc.Revoke(ctx.Context(), ruleID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}
