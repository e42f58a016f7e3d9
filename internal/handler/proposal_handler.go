package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type DecideRequest struct {
	TierLevel int    `json:"tier_level" binding:"required,min=1"`
	Outcome   string `json:"outcome" binding:"required,oneof=APPROVED REJECTED"`
	Comment   string `json:"comment"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type SubmitResponse struct {
	Proposal      service.ProposalResponse `json:"proposal"`
	RequiredTiers []int                    `json:"required_tiers"`
}

type DecideResponse struct {
	Proposal   service.ProposalResponse    `json:"proposal"`
	Decision   service.DecisionResponse    `json:"decision"`
	Completed  bool                        `json:"completed"`
	SalesOrder *service.SalesOrderResponse `json:"sales_order,omitempty"`
}

type ConvertResponse struct {
	Proposal   service.ProposalResponse    `json:"proposal"`
	SalesOrder *service.SalesOrderResponse `json:"sales_order"`
}

type StatusResponse struct {
	ProposalID string `json:"proposal_id"`
	Status     string `json:"status"`
	Terminal   bool   `json:"terminal"`
}

type ProposalHandler struct {
	proposalService service.ProposalService
	approvalService service.ApprovalService
	auth            *middleware.Auth
}

func NewProposalHandler(proposalService service.ProposalService, approvalService service.ApprovalService, auth *middleware.Auth) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService, approvalService: approvalService, auth: auth}
}

func (h *ProposalHandler) RegisterRoutes(router *gin.RouterGroup) {
	proposals := router.Group("/api/proposals")
	proposals.Use(h.auth.Authenticate())
	{
		writers := h.auth.RequireRole(middleware.RoleAdmin, middleware.RoleManager, middleware.RoleSeller)

		proposals.GET("", h.ListProposals)
		proposals.POST("", writers, h.CreateProposal)
		proposals.GET("/:id", h.GetProposal)
		proposals.PUT("/:id", writers, h.UpdateProposal)

		proposals.POST("/:id/submit", writers, h.Submit)
		proposals.POST("/:id/decisions", h.Decide)
		proposals.POST("/:id/cancel", writers, h.Cancel)
		proposals.POST("/:id/convert", h.auth.RequireRole(middleware.RoleAdmin, middleware.RoleManager), h.Convert)

		proposals.GET("/:id/status", h.GetStatus)
		proposals.GET("/:id/history", h.GetHistory)
		proposals.GET("/:id/pending-tiers", h.GetPendingTiers)
		proposals.GET("/:id/decisions", h.GetDecisions)
	}
}

// CreateProposal creates a DRAFT proposal owned by the caller
// @Summary      Create proposal
// @Tags         proposals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      service.CreateProposalRequest  true  "Proposal"
// @Success      201   {object}  response.Response{data=service.ProposalResponse}
// @Failure      422   {object}  response.Response
// @Router       /api/proposals [post]
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	var req service.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.proposalService.CreateProposal(c.Request.Context(), req, identity.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListProposals returns proposals newest first, optionally filtered by status
// @Summary      List proposals
// @Tags         proposals
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "DRAFT, PENDING_APPROVAL, APPROVED, REJECTED, CANCELLED or CONVERTED"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=pagination.Page}
// @Router       /api/proposals [get]
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	p := pagination.Parse(c)

	proposals, total, err := h.proposalService.ListProposals(c.Request.Context(), service.ProposalFilter{
		Status: c.Query("status"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(proposals, total, p)))
}

// GetProposal
// @Summary      Get proposal
// @Tags         proposals
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response{data=service.ProposalResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/proposals/{id} [get]
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.proposalService.GetProposal(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// UpdateProposal edits a DRAFT proposal
// @Summary      Update proposal
// @Tags         proposals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                         true  "Proposal ID"
// @Param        body  body      service.UpdateProposalRequest  true  "Proposal"
// @Success      200   {object}  response.Response{data=service.ProposalResponse}
// @Failure      409   {object}  response.Response
// @Router       /api/proposals/{id} [put]
func (h *ProposalHandler) UpdateProposal(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.proposalService.UpdateProposal(c.Request.Context(), id, req, identity.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Submit sends a DRAFT proposal into approval and returns the required tiers
// @Summary      Submit proposal for approval
// @Tags         approval
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response{data=SubmitResponse}
// @Failure      409  {object}  response.Response  "Not a DRAFT proposal"
// @Failure      500  {object}  response.Response  "Rule catalog missing"
// @Router       /api/proposals/{id}/submit [post]
func (h *ProposalHandler) Submit(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.approvalService.Submit(c.Request.Context(), id, identity.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, SubmitResponse{
		Proposal:      service.ToProposalResponse(*result.Proposal),
		RequiredTiers: result.RequiredTiers,
	}))
}

// Decide records the caller's decision for one tier
// @Summary      Decide an approval tier
// @Description  The caller's job_level claim must be at least tier_level. A rejection ends the approval immediately.
// @Tags         approval
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Proposal ID"
// @Param        body  body      DecideRequest  true  "Decision"
// @Success      200   {object}  response.Response{data=DecideResponse}
// @Failure      403   {object}  response.Response  "Job level below tier"
// @Failure      409   {object}  response.Response  "Wrong state or tier already decided"
// @Failure      422   {object}  response.Response  "Tier not required"
// @Router       /api/proposals/{id}/decisions [post]
func (h *ProposalHandler) Decide(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.approvalService.Decide(c.Request.Context(), service.DecideInput{
		ProposalID: id,
		Approver:   service.Approver{ID: identity.UserID, JobLevel: identity.JobLevel},
		TierLevel:  req.TierLevel,
		Outcome:    model.DecisionOutcome(req.Outcome),
		Comment:    req.Comment,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, DecideResponse{
		Proposal:   service.ToProposalResponse(*result.Proposal),
		Decision:   service.ToDecisionResponse(result.Decision),
		Completed:  result.Completed,
		SalesOrder: service.ToSalesOrderResponse(result.SalesOrder),
	}))
}

// Cancel withdraws a DRAFT or PENDING_APPROVAL proposal
// @Summary      Cancel proposal
// @Tags         approval
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string         true   "Proposal ID"
// @Param        body  body      CancelRequest  false  "Reason"
// @Success      200   {object}  response.Response{data=service.ProposalResponse}
// @Failure      409   {object}  response.Response
// @Router       /api/proposals/{id}/cancel [post]
func (h *ProposalHandler) Cancel(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Body is optional
		req.Reason = ""
	}

	proposal, err := h.approvalService.Cancel(c.Request.Context(), id, identity.UserID, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, service.ToProposalResponse(*proposal)))
}

// Convert hands an APPROVED proposal to fulfilment
// @Summary      Convert proposal
// @Tags         approval
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response{data=ConvertResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/proposals/{id}/convert [post]
func (h *ProposalHandler) Convert(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.approvalService.Convert(c.Request.Context(), id, identity.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ConvertResponse{
		Proposal:   service.ToProposalResponse(*result.Proposal),
		SalesOrder: service.ToSalesOrderResponse(result.SalesOrder),
	}))
}

// GetStatus
// @Summary      Get proposal status
// @Tags         approval
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response{data=StatusResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/proposals/{id}/status [get]
func (h *ProposalHandler) GetStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	status, found, err := h.approvalService.GetStatus(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, response.ErrorWithCode(http.StatusNotFound, string(service.KindNotFound), "proposal not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, StatusResponse{
		ProposalID: id.String(),
		Status:     string(status),
		Terminal:   status.IsTerminal(),
	}))
}

// GetHistory returns the status trail in order
// @Summary      Get proposal history
// @Tags         approval
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response{data=[]service.HistoryEntryResponse}
// @Router       /api/proposals/{id}/history [get]
func (h *ProposalHandler) GetHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	entries, err := h.approvalService.GetHistory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	res := make([]service.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, service.ToHistoryResponse(e))
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// GetPendingTiers
// @Summary      Get tiers awaiting a decision
// @Tags         approval
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response{data=[]int}
// @Router       /api/proposals/{id}/pending-tiers [get]
func (h *ProposalHandler) GetPendingTiers(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tiers, err := h.approvalService.GetPendingTiers(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tiers))
}

// GetDecisions lists every tier slot of the proposal, decided or not
// @Summary      Get tier decisions
// @Tags         approval
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response{data=[]service.DecisionResponse}
// @Router       /api/proposals/{id}/decisions [get]
func (h *ProposalHandler) GetDecisions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	decisions, err := h.approvalService.GetDecisions(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	res := make([]service.DecisionResponse, 0, len(decisions))
	for _, d := range decisions {
		res = append(res, service.ToDecisionResponse(d))
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
