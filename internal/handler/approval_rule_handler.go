package handler

import (
	"io"
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxCatalogSize = 1 << 20

type ApprovalRuleHandler struct {
	ruleService service.ApprovalRuleService
	auth        *middleware.Auth
}

func NewApprovalRuleHandler(ruleService service.ApprovalRuleService, auth *middleware.Auth) *ApprovalRuleHandler {
	return &ApprovalRuleHandler{ruleService: ruleService, auth: auth}
}

func (h *ApprovalRuleHandler) RegisterRoutes(router *gin.RouterGroup) {
	rules := router.Group("/api/approval-rules")
	{
		rules.GET("", h.auth.Authenticate(), h.ListRules)
		rules.POST("", h.auth.RequireRole(middleware.RoleAdmin), h.CreateRule)
		rules.POST("/import", h.auth.RequireRole(middleware.RoleAdmin), h.ImportRules)
		rules.PUT("/:id", h.auth.RequireRole(middleware.RoleAdmin), h.UpdateRule)
		rules.DELETE("/:id", h.auth.RequireRole(middleware.RoleAdmin), h.DeactivateRule)
	}
}

// ListRules
// @Summary      List approval rules
// @Tags         approval-rules
// @Security     BearerAuth
// @Produce      json
// @Param        active  query     bool  false  "Only active rules"
// @Success      200     {object}  response.Response{data=[]service.ApprovalRuleResponse}
// @Router       /api/approval-rules [get]
func (h *ApprovalRuleHandler) ListRules(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	rules, err := h.ruleService.ListRules(c.Request.Context(), activeOnly)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rules))
}

// CreateRule
// @Summary      Create approval rule
// @Description  At most one active rule per job level.
// @Tags         approval-rules
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      service.CreateApprovalRuleRequest  true  "Rule"
// @Success      201   {object}  response.Response{data=service.ApprovalRuleResponse}
// @Failure      422   {object}  response.Response
// @Router       /api/approval-rules [post]
func (h *ApprovalRuleHandler) CreateRule(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	var req service.CreateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.ruleService.CreateRule(c.Request.Context(), req, &identity.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// UpdateRule
// @Summary      Update approval rule
// @Description  Proposals already in approval keep the tiers computed at submission.
// @Tags         approval-rules
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                             true  "Rule ID"
// @Param        body  body      service.UpdateApprovalRuleRequest  true  "Rule"
// @Success      200   {object}  response.Response{data=service.ApprovalRuleResponse}
// @Router       /api/approval-rules/{id} [put]
func (h *ApprovalRuleHandler) UpdateRule(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.UpdateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.ruleService.UpdateRule(c.Request.Context(), id, req, &identity.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// DeactivateRule
// @Summary      Deactivate approval rule
// @Tags         approval-rules
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  response.Response
// @Router       /api/approval-rules/{id} [delete]
func (h *ApprovalRuleHandler) DeactivateRule(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.ruleService.DeactivateRule(c.Request.Context(), id, &identity.UserID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id.String(), "is_active": false}))
}

// ImportRules loads a YAML rule catalog from the request body
// @Summary      Import approval rules
// @Tags         approval-rules
// @Security     BearerAuth
// @Accept       application/x-yaml
// @Produce      json
// @Success      200  {object}  response.Response{data=service.ImportResult}
// @Failure      422  {object}  response.Response
// @Router       /api/approval-rules/import [post]
func (h *ApprovalRuleHandler) ImportRules(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCatalogSize))
	if err != nil {
		badRequest(c, "Failed to read request body")
		return
	}

	result, err := h.ruleService.ImportRules(c.Request.Context(), data, &identity.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
