package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"

	sharedDomain "github.com/davicafu/insightdash/internal/shared/domain"
	sharedQuery "github.com/davicafu/insightdash/internal/shared/infra/platform/query"
)

// Claves de filtro aceptadas por la consulta.
const (
	FilterRegion  = "region"
	FilterCountry = "country"
	FilterEndYear = "endYear"
	FilterTopics  = "topics"
	FilterSector  = "sector"
	FilterPest    = "pest"
	FilterSource  = "source"
	FilterSwot    = "swot"
)

var allowedFilters = map[string]struct{}{
	FilterRegion: {}, FilterCountry: {}, FilterEndYear: {}, FilterTopics: {},
	FilterSector: {}, FilterPest: {}, FilterSource: {}, FilterSwot: {},
}

// Filter es la versión tipada de los filtros de la consulta. nil = sin restricción.
type Filter struct {
	Region  *string
	Country *string
	EndYear *int
	Topics  []string
	Sector  *string
	Pest    *string
	Source  *string
	Swot    *string
}

// ValidateFilterKeys falla con InvalidFilterError ante la primera clave
// desconocida (en orden alfabético).
func ValidateFilterKeys(raw map[string]string) error {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := allowedFilters[k]; !ok {
			return &InvalidFilterError{Key: k}
		}
	}
	return nil
}

// ParseFilter valida claves y valores. Un valor vacío equivale a no filtrar.
func ParseFilter(raw map[string]string) (Filter, error) {
	var f Filter
	if err := ValidateFilterKeys(raw); err != nil {
		return f, err
	}

	text := func(key string) *string {
		v := strings.TrimSpace(raw[key])
		if v == "" {
			return nil
		}
		return &v
	}

	f.Region = text(FilterRegion)
	f.Country = text(FilterCountry)
	f.Sector = text(FilterSector)
	f.Pest = text(FilterPest)
	f.Source = text(FilterSource)
	f.Swot = text(FilterSwot)
	f.Topics = SplitTopics(raw[FilterTopics])

	if v := strings.TrimSpace(raw[FilterEndYear]); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return f, &ValidationError{Field: FilterEndYear, Value: raw[FilterEndYear], Reason: "must be an integer"}
		}
		if year < 0 {
			return f, &ValidationError{Field: FilterEndYear, Value: raw[FilterEndYear], Reason: "must be >= 0"}
		}
		f.EndYear = &year
	}
	return f, nil
}

// Criteria traduce el filtro a criterios neutrales combinados con AND.
func (f Filter) Criteria() sharedDomain.Criteria {
	var criterias []sharedDomain.Criteria

	exact := func(field string, v *string) {
		if v != nil {
			criterias = append(criterias, FieldEqualsCriteria{Field: field, Value: *v})
		}
	}
	exact(FieldRegion, f.Region)
	exact(FieldCountry, f.Country)
	if f.EndYear != nil {
		criterias = append(criterias, EndYearFromCriteria{Year: *f.EndYear})
	}
	if len(f.Topics) > 0 {
		criterias = append(criterias, TopicsAnyCriteria{Topics: f.Topics})
	}
	exact(FieldSector, f.Sector)
	exact(FieldPestle, f.Pest)
	exact(FieldSource, f.Source)
	exact(FieldSwot, f.Swot)

	return sharedDomain.And(criterias...)
}

// ---------- Paginación ----------

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageLimits acota el tamaño de página aceptado.
type PageLimits struct {
	Default int
	Max     int
}

// PageRequest es una página 1-based ya validada.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest valida page >= 1, 1 <= limit <= limits.Max (si Max > 0) y que
// el offset resultante no desborde.
func NewPageRequest(page, limit int, limits PageLimits) (PageRequest, error) {
	if page < 1 {
		return PageRequest{}, &ValidationError{Field: "page", Value: strconv.Itoa(page), Reason: "must be >= 1"}
	}
	if limit < 1 {
		return PageRequest{}, &ValidationError{Field: "limit", Value: strconv.Itoa(limit), Reason: "must be >= 1"}
	}
	if limits.Max > 0 && limit > limits.Max {
		return PageRequest{}, &ValidationError{Field: "limit", Value: strconv.Itoa(limit), Reason: "must be <= " + strconv.Itoa(limits.Max)}
	}
	// El offset (page-1)*limit tiene que caber en un int.
	if page-1 > math.MaxInt/limit {
		return PageRequest{}, &ValidationError{Field: "page", Value: strconv.Itoa(page), Reason: "too large for limit " + strconv.Itoa(limit)}
	}
	return PageRequest{Page: page, Limit: limit}, nil
}

// ParsePageParam convierte un parámetro numérico; vacío devuelve fallback.
func ParsePageParam(name, raw string, fallback int) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ValidationError{Field: name, Value: raw, Reason: "must be an integer"}
	}
	return n, nil
}

// Pagination devuelve el skip/limit equivalente.
func (p PageRequest) Pagination() sharedQuery.OffsetPagination {
	return sharedQuery.FromPage(p.Page, p.Limit)
}

// Page es una página de resultados con sus metadatos.
type Page struct {
	Records    []*Insight
	Total      int
	Page       int
	TotalPages int
}

// NewPage calcula TotalPages a partir del total sin paginar.
func NewPage(records []*Insight, total int, req PageRequest) *Page {
	if records == nil {
		records = []*Insight{}
	}
	return &Page{
		Records:    records,
		Total:      total,
		Page:       req.Page,
		TotalPages: sharedQuery.TotalPages(total, req.Limit),
	}
}
