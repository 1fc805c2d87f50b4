// Package handlers exposes the contract service over HTTP (gin), translating
// between JSON payloads and the domain, and mapping the core error kinds to
// status codes at the boundary. No business rules live here.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gartstein/contracto/internal/contract/auth"
	"github.com/gartstein/contracto/internal/contract/controller"
	"github.com/gartstein/contracto/internal/contract/db"
	"github.com/gartstein/contracto/internal/contract/domain"
	e "github.com/gartstein/contracto/internal/contract/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContractController defines the business logic interface the HTTP handlers invoke.
type ContractController interface {
	CreateContract(ctx context.Context, in controller.CreateInput) (*domain.Contract, error)
	GetContract(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	ListContracts(ctx context.Context, f db.Filter, page, size int) (*db.Page, error)
	SetContractValue(ctx context.Context, id uuid.UUID, amount float64, currency string) (*domain.Contract, error)
	SetDateRange(ctx context.Context, id uuid.UUID, start, end time.Time) (*domain.Contract, error)
	AttachGeneratedContent(ctx context.Context, id uuid.UUID, content string, meta domain.AIMetadata) (*domain.Contract, error)
	FinalizeContent(ctx context.Context, id uuid.UUID, content, userID string) (*domain.Contract, error)
	RecordComplianceAnalysis(ctx context.Context, id uuid.UUID, in controller.AnalysisInput) (*domain.Contract, error)
	SubmitForReview(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	ActivateContract(ctx context.Context, id uuid.UUID, userID string) (*domain.Contract, error)
	CompleteContract(ctx context.Context, id uuid.UUID, userID, reason string) (*domain.Contract, error)
	TerminateContract(ctx context.Context, id uuid.UUID, userID, reason string) (*domain.Contract, error)
	CreateRevision(ctx context.Context, id uuid.UUID, content, changeSummary, userID string) (*domain.Contract, error)
	DeleteContract(ctx context.Context, id uuid.UUID) error
	ExpiringContracts(ctx context.Context, daysAhead int) ([]*domain.Contract, error)
	ComplianceReviewQueue(ctx context.Context, companyID uuid.UUID) ([]*domain.Contract, error)
}

// ContractHandler wires the controller into gin routes.
type ContractHandler struct {
	svc    ContractController
	logger *zap.Logger
}

// NewContractHandler constructs a ContractHandler.
func NewContractHandler(svc ContractController, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{svc: svc, logger: logger.Named("contract_handler")}
}

// Register mounts all contract routes under /v1, guarded by the JWT middleware.
func (h *ContractHandler) Register(r *gin.Engine, jwtSecret string) {
	v1 := r.Group("/v1", auth.Middleware(jwtSecret))

	v1.POST("/contracts", h.create)
	v1.GET("/contracts", h.list)
	v1.GET("/contracts/expiring", h.expiring)
	v1.GET("/contracts/compliance-review", h.complianceReview)
	v1.GET("/contracts/:id", h.get)
	v1.DELETE("/contracts/:id", h.delete)
	v1.POST("/contracts/:id/value", h.setValue)
	v1.POST("/contracts/:id/dates", h.setDates)
	v1.POST("/contracts/:id/content", h.attachContent)
	v1.POST("/contracts/:id/finalize", h.finalize)
	v1.POST("/contracts/:id/analysis", h.recordAnalysis)
	v1.POST("/contracts/:id/submit-review", h.submitReview)
	v1.POST("/contracts/:id/activate", h.activate)
	v1.POST("/contracts/:id/complete", h.complete)
	v1.POST("/contracts/:id/terminate", h.terminate)
	v1.POST("/contracts/:id/revisions", h.createRevision)
}

type partyRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email"`
	LegalName string `json:"legal_name"`
}

type createContractRequest struct {
	Title             string        `json:"title" binding:"required"`
	ContractType      string        `json:"contract_type" binding:"required"`
	PlainEnglishInput string        `json:"plain_english_input"`
	Client            partyRequest  `json:"client" binding:"required"`
	Supplier          *partyRequest `json:"supplier"`
	CompanyID         uuid.UUID     `json:"company_id" binding:"required"`
}

func (h *ContractHandler) create(c *gin.Context) {
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := controller.CreateInput{
		Title:             req.Title,
		ContractType:      req.ContractType,
		PlainEnglishInput: req.PlainEnglishInput,
		ClientName:        req.Client.Name,
		ClientEmail:       req.Client.Email,
		ClientLegalName:   req.Client.LegalName,
		CreatedBy:         auth.UserID(c),
		CompanyID:         req.CompanyID,
	}
	if req.Supplier != nil {
		in.SupplierName = req.Supplier.Name
		in.SupplierEmail = req.Supplier.Email
		in.SupplierLegalName = req.Supplier.LegalName
	}

	contract, err := h.svc.CreateContract(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toContractResponse(contract))
}

func (h *ContractHandler) get(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}
	contract, err := h.svc.GetContract(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

func (h *ContractHandler) list(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 20)

	result, err := h.svc.ListContracts(c.Request.Context(), f, page, size)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResponse{
		Items: toContractList(result.Items),
		Total: result.Total,
		Page:  result.Num,
		Size:  result.Size,
	})
}

func (h *ContractHandler) delete(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteContract(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type setValueRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func (h *ContractHandler) setValue(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}
	var req setValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.svc.SetContractValue(c.Request.Context(), id, req.Amount, req.Currency)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

type setDatesRequest struct {
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

func (h *ContractHandler) setDates(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}
	var req setDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.svc.SetDateRange(c.Request.Context(), id, req.StartDate, req.EndDate)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

type attachContentRequest struct {
	Content          string  `json:"content" binding:"required"`
	AIModel          string  `json:"ai_model"`
	ProcessingTimeMS int64   `json:"processing_time_ms"`
	ConfidenceScore  float64 `json:"confidence_score"`
}

func (h *ContractHandler) attachContent(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}
	var req attachContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.svc.AttachGeneratedContent(c.Request.Context(), id, req.Content, domain.AIMetadata{
		Model:            req.AIModel,
		ProcessingTimeMS: req.ProcessingTimeMS,
		ConfidenceScore:  req.ConfidenceScore,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

type finalizeRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *ContractHandler) finalize(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.svc.FinalizeContent(c.Request.Context(), id, req.Content, auth.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

type analysisRequest struct {
	Overall         float64  `json:"overall"`
	GDPR            *float64 `json:"gdpr"`
	Employment      *float64 `json:"employment"`
	Consumer        *float64 `json:"consumer"`
	Commercial      *float64 `json:"commercial"`
	RiskScore       int      `json:"risk_score"`
	RiskFactors     []string `json:"risk_factors"`
	Recommendations []string `json:"recommendations"`
}

func (h *ContractHandler) recordAnalysis(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.svc.RecordComplianceAnalysis(c.Request.Context(), id, controller.AnalysisInput{
		Overall:         req.Overall,
		GDPR:            req.GDPR,
		Employment:      req.Employment,
		Consumer:        req.Consumer,
		Commercial:      req.Commercial,
		RiskScore:       req.RiskScore,
		RiskFactors:     req.RiskFactors,
		Recommendations: req.Recommendations,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

func (h *ContractHandler) submitReview(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}
	contract, err := h.svc.SubmitForReview(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

func (h *ContractHandler) activate(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}
	contract, err := h.svc.ActivateContract(c.Request.Context(), id, auth.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *ContractHandler) complete(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}
	// Reason is optional; an empty or missing body is fine.
	var req reasonRequest
	_ = c.ShouldBindJSON(&req)
	contract, err := h.svc.CompleteContract(c.Request.Context(), id, auth.UserID(c), req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

type terminateRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *ContractHandler) terminate(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}
	var req terminateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.svc.TerminateContract(c.Request.Context(), id, auth.UserID(c), req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

type revisionRequest struct {
	Content       string `json:"content" binding:"required"`
	ChangeSummary string `json:"change_summary"`
}

func (h *ContractHandler) createRevision(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}
	var req revisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.svc.CreateRevision(c.Request.Context(), id, req.Content, req.ChangeSummary, auth.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

func (h *ContractHandler) expiring(c *gin.Context) {
	days := queryInt(c, "days", 30)
	contracts, err := h.svc.ExpiringContracts(c.Request.Context(), days)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toContractList(contracts)})
}

func (h *ContractHandler) complianceReview(c *gin.Context) {
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company_id"})
		return
	}
	contracts, err := h.svc.ComplianceReviewQueue(c.Request.Context(), companyID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toContractList(contracts)})
}

// contractID parses the :id path parameter, writing a 400 on failure.
func (h *ContractHandler) contractID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps the core error kinds to HTTP status codes. This is the only
// place transport learns about them.
func (h *ContractHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, e.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
	case e.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case e.IsRuleViolation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case e.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseFilter(c *gin.Context) (db.Filter, error) {
	var f db.Filter
	if v := c.Query("company_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, errors.New("invalid company_id")
		}
		f.CompanyID = &id
	}
	if v := c.Query("type"); v != "" {
		ct, err := domain.ParseContractType(v)
		if err != nil {
			return f, err
		}
		f.ContractType = &ct
	}
	if v := c.Query("status"); v != "" {
		st := domain.ContractStatus(v)
		f.Status = &st
	}
	if v := c.Query("created_by"); v != "" {
		f.CreatedBy = &v
	}
	if v := c.Query("party"); v != "" {
		f.PartyName = &v
	}
	if v := c.Query("title"); v != "" {
		f.Title = &v
	}
	if v := c.Query("min_value"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, errors.New("invalid min_value")
		}
		f.MinValue = &n
	}
	if v := c.Query("max_value"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, errors.New("invalid max_value")
		}
		f.MaxValue = &n
	}
	return f, nil
}

func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
