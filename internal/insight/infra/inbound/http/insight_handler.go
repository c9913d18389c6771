package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/insightdash/internal/insight/application"
	insightDomain "github.com/davicafu/insightdash/internal/insight/domain"
	"github.com/davicafu/insightdash/pkg/utils"
)

const (
	pageParam  = "page"
	limitParam = "limit"
)

// InsightHandler encapsula el endpoint HTTP de consulta.
type InsightHandler struct {
	service *application.QueryService
	log     *zap.Logger
}

// NewInsightHandler crea un nuevo InsightHandler.
func NewInsightHandler(service *application.QueryService, log *zap.Logger) *InsightHandler {
	return &InsightHandler{service: service, log: log}
}

// InsightResponse es la proyección pública de un registro.
type InsightResponse struct {
	EndYear    *int     `json:"end_year"`
	Intensity  *float64 `json:"intensity"`
	Sector     string   `json:"sector"`
	Topic      string   `json:"topic"`
	Insight    string   `json:"insight"`
	URL        string   `json:"url"`
	Region     string   `json:"region"`
	StartYear  *int     `json:"start_year"`
	Impact     string   `json:"impact"`
	Added      string   `json:"added"`
	Published  string   `json:"published"`
	Country    string   `json:"country"`
	Relevance  *float64 `json:"relevance"`
	Pestle     string   `json:"pestle"`
	Source     string   `json:"source"`
	Title      string   `json:"title"`
	Likelihood *float64 `json:"likelihood"`
}

// PageResponse es el cuerpo de GET /api/data.
type PageResponse struct {
	Data       []InsightResponse `json:"data"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

func toInsightResponse(in *insightDomain.Insight) InsightResponse {
	return InsightResponse{
		EndYear:    in.EndYear,
		Intensity:  in.Intensity,
		Sector:     in.Sector,
		Topic:      in.Topic,
		Insight:    in.Insight,
		URL:        in.URL,
		Region:     in.Region,
		StartYear:  in.StartYear,
		Impact:     in.Impact,
		Added:      in.Added,
		Published:  in.Published,
		Country:    in.Country,
		Relevance:  in.Relevance,
		Pestle:     in.Pestle,
		Source:     in.Source,
		Title:      in.Title,
		Likelihood: in.Likelihood,
	}
}

func toPageResponse(p *insightDomain.Page) PageResponse {
	data := make([]InsightResponse, 0, len(p.Records))
	for _, in := range p.Records {
		data = append(data, toInsightResponse(in))
	}
	return PageResponse{Data: data, Total: p.Total, Page: p.Page, TotalPages: p.TotalPages}
}

// GetData endpoint GET /api/data
func (h *InsightHandler) GetData(c *gin.Context) {
	limits := h.service.Limits()

	page, err := insightDomain.ParsePageParam(pageParam, c.Query(pageParam), insightDomain.DefaultPage)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	limit, err := insightDomain.ParsePageParam(limitParam, c.Query(limitParam), limits.Default)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	// El resto de parámetros son filtros; si una clave se repite manda la primera.
	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if key == pageParam || key == limitParam || len(values) == 0 {
			continue
		}
		filters[key] = values[0]
	}

	result, err := h.service.FetchPage(c.Request.Context(), filters, page, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, toPageResponse(result))
}

func (h *InsightHandler) writeError(c *gin.Context, err error) {
	if insightDomain.IsClientError(err) {
		utils.SendBadRequest(c, err.Error())
		return
	}

	var unavailable *insightDomain.StoreUnavailableError
	if errors.As(err, &unavailable) {
		h.log.Error("Insight store unavailable", zap.String("path", c.Request.URL.Path), zap.Error(err))
		utils.SendInternalServerError(c, "data store unavailable")
		return
	}

	h.log.Error("Unexpected error serving insights", zap.Error(err))
	utils.SendInternalServerError(c, "internal server error")
}
