package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/Khalil2008k/guild-contracts/middleware"
	"github.com/Khalil2008k/guild-contracts/model"
	"github.com/Khalil2008k/guild-contracts/pkg/logger"
	"github.com/Khalil2008k/guild-contracts/service"
	"github.com/gin-gonic/gin"
)

type ContractHandler struct {
	controller *service.LifecycleController
	store      service.ContractStore
	renderer   *service.DocumentRenderer
	export     *service.ExportService
}

func NewContractHandler(controller *service.LifecycleController, store service.ContractStore, renderer *service.DocumentRenderer, export *service.ExportService) *ContractHandler {
	return &ContractHandler{
		controller: controller,
		store:      store,
		renderer:   renderer,
		export:     export,
	}
}

type PartyRequest struct {
	UserID string `json:"user_id" binding:"required"`
	GID    string `json:"gid" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
}

type CreateContractRequest struct {
	JobID             string                `json:"job_id" binding:"required"`
	JobTitle          string                `json:"job_title" binding:"required"`
	JobDescription    string                `json:"job_description"`
	Doer              PartyRequest          `json:"doer" binding:"required"`
	PosterEmail       string                `json:"poster_email"`
	PosterPhone       string                `json:"poster_phone"`
	BudgetMinor       int64                 `json:"budget_minor" binding:"required"`
	Currency          string                `json:"currency" binding:"required"`
	PaymentTerms      model.BilingualText   `json:"payment_terms"`
	StartDate         string                `json:"start_date" binding:"required"`
	EndDate           string                `json:"end_date" binding:"required"`
	EstimatedDuration string                `json:"estimated_duration"`
	Deliverables      []model.BilingualText `json:"deliverables" binding:"required"`
	PosterRules       []model.BilingualText `json:"poster_rules"`
	Language          string                `json:"language"`
}

// Create builds a draft contract with the authenticated user as poster.
func (h *ContractHandler) Create(c *gin.Context) {
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected YYYY-MM-DD"})
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date, expected YYYY-MM-DD"})
		return
	}

	contract := &model.Contract{
		JobID:          req.JobID,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		Poster: model.Party{
			UserID: middleware.GetUserID(c),
			GID:    middleware.GetGID(c),
			Name:   middleware.GetUsername(c),
			Email:  req.PosterEmail,
			Phone:  req.PosterPhone,
		},
		Doer: model.Party{
			UserID: req.Doer.UserID,
			GID:    req.Doer.GID,
			Name:   req.Doer.Name,
			Email:  req.Doer.Email,
			Phone:  req.Doer.Phone,
		},
		BudgetMinor:       req.BudgetMinor,
		Currency:          req.Currency,
		PaymentTerms:      req.PaymentTerms,
		StartDate:         startDate,
		EndDate:           endDate,
		EstimatedDuration: req.EstimatedDuration,
		Deliverables:      req.Deliverables,
		PosterRules:       req.PosterRules,
		Language:          req.Language,
	}

	created, err := h.controller.CreateDraft(c.Request.Context(), contract, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info(c.Request.Context(), "contract created",
		"contract_id", created.ID,
		"job_id", created.JobID,
	)
	c.JSON(http.StatusCreated, created)
}

// List returns all contracts where the current user is poster or doer
func (h *ContractHandler) List(c *gin.Context) {
	contracts, err := h.store.ListByUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	// Summary view without the full rule sets
	result := make([]gin.H, len(contracts))
	for i, contract := range contracts {
		result[i] = gin.H{
			"id":         contract.ID,
			"job_id":     contract.JobID,
			"job_title":  contract.JobTitle,
			"status":     contract.Status,
			"poster":     gin.H{"user_id": contract.Poster.UserID, "name": contract.Poster.Name, "signed": contract.Poster.Signed()},
			"doer":       gin.H{"user_id": contract.Doer.UserID, "name": contract.Doer.Name, "signed": contract.Doer.Signed()},
			"currency":   contract.Currency,
			"created_at": contract.CreatedAt.Format(time.RFC3339),
			"updated_at": contract.UpdatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, gin.H{"contracts": result})
}

// Get returns a single contract. Only the parties and admins may read it.
func (h *ContractHandler) Get(c *gin.Context) {
	contract, ok := h.loadAuthorized(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, contract)
}

// GetByJob returns the most recent contract for a job.
func (h *ContractHandler) GetByJob(c *gin.Context) {
	contract, err := h.store.GetByJob(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !contract.IsParty(middleware.GetUserID(c)) && !middleware.IsAdmin(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}
	c.JSON(http.StatusOK, contract)
}

// RequestSignatures moves a draft into pending_signatures.
func (h *ContractHandler) RequestSignatures(c *gin.Context) {
	contract, err := h.controller.RequestSignatures(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// Sign applies the caller's signature; when the counterparty has already
// signed, the response carries the activated contract.
func (h *ContractHandler) Sign(c *gin.Context) {
	contract, err := h.controller.Sign(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info(c.Request.Context(), "contract signed",
		"contract_id", contract.ID,
		"status", contract.Status,
	)
	c.JSON(http.StatusOK, contract)
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus performs a direct status change (complete, terminate, dispute).
func (h *ContractHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	contract, err := h.controller.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, middleware.GetUserID(c), middleware.IsAdmin(c))
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info(c.Request.Context(), "contract status updated",
		"contract_id", contract.ID,
		"status", contract.Status,
	)
	c.JSON(http.StatusOK, contract)
}

// Document returns the structured bilingual view model for in-app display.
func (h *ContractHandler) Document(c *gin.Context) {
	contract, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	page, err := h.renderer.RenderView(contract, h.docLang(c, contract))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// DocumentHTML returns the standalone HTML document used for PDF export.
func (h *ContractHandler) DocumentHTML(c *gin.Context) {
	contract, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	html, err := h.renderer.RenderHTML(contract, h.docLang(c, contract))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Export converts the document to PDF, stores it, and returns a share URL.
func (h *ContractHandler) Export(c *gin.Context) {
	contract, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	result, err := h.export.ExportPDF(c.Request.Context(), contract, h.docLang(c, contract))
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info(c.Request.Context(), "contract exported",
		"contract_id", contract.ID,
		"object_name", result.ObjectName,
		"size", result.Size,
	)
	c.JSON(http.StatusOK, result)
}

// Signatures reports whether each party's stored signature token verifies.
func (h *ContractHandler) Signatures(c *gin.Context) {
	if _, ok := h.loadAuthorized(c); !ok {
		return
	}

	verified, err := h.controller.VerifySignatures(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": verified})
}

// loadAuthorized fetches the contract and enforces that the caller is a party
// or an admin. Unauthorized callers get a 404 rather than a 403 so contract
// ids cannot be enumerated.
func (h *ContractHandler) loadAuthorized(c *gin.Context) (*model.Contract, bool) {
	contract, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !contract.IsParty(middleware.GetUserID(c)) && !middleware.IsAdmin(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return nil, false
	}
	return contract, true
}

func (h *ContractHandler) docLang(c *gin.Context, contract *model.Contract) string {
	lang := c.Query("lang")
	if lang != "" {
		return lang
	}
	if contract.Language != "" {
		return contract.Language
	}
	return model.LangEnglish
}

// respondError maps the error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, model.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrRender):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrExport):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
