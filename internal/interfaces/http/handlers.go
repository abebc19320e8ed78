package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/service"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	statistics *service.StatisticsService
	reports    *service.ReportService
	notifier   *service.NotifierService
	criteria   entity.Criteria
	logger     Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	statistics *service.StatisticsService,
	reports *service.ReportService,
	notifier *service.NotifierService,
	criteria entity.Criteria,
	logger Logger,
) *Handlers {
	return &Handlers{
		statistics: statistics,
		reports:    reports,
		notifier:   notifier,
		criteria:   criteria,
		logger:     logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// statisticsResponse mirrors the dashboard snapshot.
type statisticsResponse struct {
	TotalCompaniesPending int                      `json:"total_empresas_pendientes"`
	TotalInvoicesPending  int                      `json:"total_facturas_pendientes"`
	TotalAmountOwed       string                   `json:"monto_total_adeudado"`
	TopCompanies          []topCompanyResponse     `json:"empresas"`
	MostOverdue           []overdueInvoiceResponse `json:"facturas_mas_vencidas"`
}

type topCompanyResponse struct {
	Tercero string `json:"idcliente"`
	Name    string `json:"nombre"`
	Amount  string `json:"monto"`
}

type overdueInvoiceResponse struct {
	Tercero string `json:"tercero"`
	Type    string `json:"tipo"`
	Entry   string `json:"asiento"`
	Company string `json:"sociedad"`
	DueDate string `json:"vencimiento"`
	Amount  string `json:"importe"`
	Status  string `json:"estado"`
}

type clientSummariesResponse struct {
	Degraded bool                    `json:"degradado"`
	Clients  []clientSummaryResponse `json:"clientes"`
}

type clientSummaryResponse struct {
	Tercero  string `json:"idcliente"`
	Name     string `json:"nombre_cliente"`
	CIF      string `json:"cif_cliente"`
	Invoices int    `json:"numero_facturas"`
	Amount   string `json:"monto_debe"`
	Status   string `json:"estado"`
}

type reportResponse struct {
	GeneratedAt string                  `json:"generado_en"`
	Filter      string                  `json:"saldo"`
	Sections    []reportSectionResponse `json:"sociedades"`
	GrandTotal  reportTotalResponse     `json:"total_general"`
	FilePath    string                  `json:"archivo,omitempty"`
}

type reportSectionResponse struct {
	Company     string                  `json:"sociedad"`
	CompanyName string                  `json:"nombre_sociedad"`
	Clients     []clientSummaryResponse `json:"clientes"`
	Total       string                  `json:"total_sociedad"`
}

type reportTotalResponse struct {
	UniqueClients int    `json:"clientes_unicos"`
	TotalAmount   string `json:"monto_total"`
}

type notifierRunResponse struct {
	Attempted int `json:"intentadas"`
	Sent      int `json:"enviadas"`
	Failed    int `json:"fallidas"`
	Skipped   int `json:"omitidas"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// GetStatistics handles GET /api/facturas/estadisticas
func (h *Handlers) GetStatistics(c *gin.Context) {
	criteria, ok := h.criteriaFromQuery(c)
	if !ok {
		return
	}

	snapshot, err := h.statistics.Snapshot(c.Request.Context(), criteria, time.Now())
	if err != nil {
		h.fail(c, err, "failed to assemble statistics")
		return
	}

	resp := statisticsResponse{
		TotalCompaniesPending: snapshot.TotalCompaniesPending,
		TotalInvoicesPending:  snapshot.TotalInvoicesPending,
		TotalAmountOwed:       snapshot.TotalAmountOwed.StringFixed(2),
		TopCompanies:          make([]topCompanyResponse, 0, len(snapshot.TopCompanies)),
		MostOverdue:           make([]overdueInvoiceResponse, 0, len(snapshot.MostOverdue)),
	}
	for _, tc := range snapshot.TopCompanies {
		resp.TopCompanies = append(resp.TopCompanies, topCompanyResponse{
			Tercero: tc.Tercero,
			Name:    tc.ClientName,
			Amount:  tc.Amount.StringFixed(2),
		})
	}
	for _, inv := range snapshot.MostOverdue {
		resp.MostOverdue = append(resp.MostOverdue, overdueInvoiceResponse{
			Tercero: inv.Tercero,
			Type:    inv.Type,
			Entry:   inv.Entry,
			Company: inv.Company,
			DueDate: inv.DueDate.Format("2006-01-02"),
			Amount:  inv.Amount.StringFixed(2),
			Status:  string(inv.Status),
		})
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// GetClientSummaries handles GET /api/facturas/clientes-con-resumen
func (h *Handlers) GetClientSummaries(c *gin.Context) {
	criteria, ok := h.criteriaFromQuery(c)
	if !ok {
		return
	}

	result, err := h.statistics.ClientSummaries(c.Request.Context(), criteria, time.Now())
	if err != nil {
		h.fail(c, err, "failed to list client summaries")
		return
	}

	resp := clientSummariesResponse{
		Degraded: result.Degraded,
		Clients:  make([]clientSummaryResponse, 0, len(result.Clients)),
	}
	for _, cs := range result.Clients {
		resp.Clients = append(resp.Clients, clientSummaryResponse{
			Tercero:  cs.Tercero,
			Name:     cs.ClientName,
			CIF:      cs.ClientCIF,
			Invoices: cs.Invoices,
			Amount:   cs.Amount.StringFixed(2),
			Status:   string(cs.Status),
		})
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// GetReport handles GET /api/facturas/informe
func (h *Handlers) GetReport(c *gin.Context) {
	criteria, ok := h.criteriaFromQuery(c)
	if !ok {
		return
	}

	filter, err := entity.ParseBalanceFilter(c.Query("saldo"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	report, err := h.reports.Build(c.Request.Context(), criteria, filter, time.Now())
	if err != nil {
		h.fail(c, err, "failed to build report")
		return
	}

	path, err := h.reports.Export(c.Request.Context(), report)
	if err != nil {
		if errors.Is(err, service.ErrExportUnavailable) {
			c.JSON(http.StatusServiceUnavailable, Response{Success: false, Error: err.Error()})
			return
		}
		h.fail(c, err, "failed to export report")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toReportResponse(report, path)})
}

// RunNotifier handles POST /api/notificador/ejecutar
func (h *Handlers) RunNotifier(c *gin.Context) {
	summary, err := h.notifier.RunOnce(c.Request.Context(), time.Now())
	if err != nil {
		h.fail(c, err, "notifier run failed")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: notifierRunResponse{
		Attempted: summary.Attempted,
		Sent:      summary.Sent,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
	}})
}

// criteriaFromQuery extends the configured default criteria with the optional
// query-parameter filters. Returns false after writing the error response.
func (h *Handlers) criteriaFromQuery(c *gin.Context) (entity.Criteria, bool) {
	criteria := h.criteria

	if sociedad := c.Query("sociedad"); sociedad != "" {
		criteria = criteria.WithCompanies(sociedad)
	}
	if tercero := c.Query("tercero"); tercero != "" {
		criteria = criteria.WithTercero(tercero)
	}

	var from, to *time.Time
	if v := c.Query("fecha_desde"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid fecha_desde, expected YYYY-MM-DD"})
			return entity.Criteria{}, false
		}
		from = &t
	}
	if v := c.Query("fecha_hasta"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid fecha_hasta, expected YYYY-MM-DD"})
			return entity.Criteria{}, false
		}
		to = &t
	}
	if from != nil || to != nil {
		criteria = criteria.WithDueRange(from, to)
	}

	if v := c.Query("nivel_reclamacion"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid nivel_reclamacion, expected integer"})
			return entity.Criteria{}, false
		}
		criteria = criteria.WithReclamationLevel(level)
	}
	if v := c.Query("solo_vencidas"); v == "true" || v == "1" {
		criteria = criteria.WithOverdueOnly()
	}

	if err := criteria.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return entity.Criteria{}, false
	}

	return criteria, true
}

// fail maps service errors to HTTP responses: validation to 400, everything
// else to an explicit 500. Partial results are never returned.
func (h *Handlers) fail(c *gin.Context, err error, msg string) {
	var validation *entity.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: validation.Error()})
		return
	}
	h.logger.Errorw(msg, "error", err)
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: msg})
}

func toReportResponse(report *entity.Report, path string) reportResponse {
	resp := reportResponse{
		GeneratedAt: report.GeneratedAt.UTC().Format(time.RFC3339),
		Filter:      string(report.Filter),
		Sections:    make([]reportSectionResponse, 0, len(report.Sections)),
		GrandTotal: reportTotalResponse{
			UniqueClients: report.GrandTotal.UniqueClients,
			TotalAmount:   report.GrandTotal.TotalAmount.StringFixed(2),
		},
		FilePath: path,
	}
	for _, section := range report.Sections {
		sr := reportSectionResponse{
			Company:     section.Company,
			CompanyName: section.CompanyName,
			Clients:     make([]clientSummaryResponse, 0, len(section.Clients)),
			Total:       section.Total.StringFixed(2),
		}
		for _, line := range section.Clients {
			sr.Clients = append(sr.Clients, clientSummaryResponse{
				Tercero:  line.Tercero,
				Name:     line.ClientName,
				CIF:      line.ClientCIF,
				Invoices: line.Invoices,
				Amount:   line.Amount.StringFixed(2),
				Status:   string(line.Status),
			})
		}
		resp.Sections = append(resp.Sections, sr)
	}
	return resp
}
