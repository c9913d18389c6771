package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Nombres de campo del almacén. Coinciden con las claves del volcado JSON original.
const (
	FieldCountry    = "country"
	FieldRegion     = "region"
	FieldCity       = "city"
	FieldSector     = "sector"
	FieldSource     = "source"
	FieldPestle     = "pestle"
	FieldSwot       = "swot"
	FieldTopic      = "topic"
	FieldTopics     = "topics"
	FieldEndYear    = "end_year"
	FieldStartYear  = "start_year"
	FieldPublished  = "published"
	FieldIntensity  = "intensity"
	FieldLikelihood = "likelihood"
	FieldRelevance  = "relevance"
	FieldTitle      = "title"
	FieldInsight    = "insight"
	FieldURL        = "url"
	FieldImpact     = "impact"
	FieldAdded      = "added"
)

// ProjectedFields son los campos que expone el endpoint de consulta, en orden.
var ProjectedFields = []string{
	FieldEndYear, FieldIntensity, FieldSector, FieldTopic, FieldInsight, FieldURL,
	FieldRegion, FieldStartYear, FieldImpact, FieldAdded, FieldPublished, FieldCountry,
	FieldRelevance, FieldPestle, FieldSource, FieldTitle, FieldLikelihood,
}

// Insight representa un registro del dashboard. Es inmutable una vez importado.
type Insight struct {
	Country    string   `json:"country"`
	Region     string   `json:"region"`
	City       string   `json:"city"`
	Sector     string   `json:"sector"`
	Source     string   `json:"source"`
	Pestle     string   `json:"pestle"`
	Swot       string   `json:"swot"`
	Topic      string   `json:"topic"`
	Topics     []string `json:"topics"`
	EndYear    *int     `json:"end_year"`
	StartYear  *int     `json:"start_year"`
	Published  string   `json:"published"`
	Intensity  *float64 `json:"intensity"`
	Likelihood *float64 `json:"likelihood"`
	Relevance  *float64 `json:"relevance"`
	Title      string   `json:"title"`
	Insight    string   `json:"insight"`
	URL        string   `json:"url"`
	Impact     string   `json:"impact"`
	Added      string   `json:"added"`

	CreatedAt time.Time `json:"-"`
}

// Validate comprueba los invariantes del registro.
func (i *Insight) Validate() error {
	if strings.TrimSpace(i.Country) == "" {
		return fmt.Errorf("%w: country is required", ErrInvalidInsight)
	}
	if i.EndYear != nil && *i.EndYear < 0 {
		return fmt.Errorf("%w: end_year must be >= 0", ErrInvalidInsight)
	}
	for name, v := range map[string]*float64{
		FieldIntensity:  i.Intensity,
		FieldLikelihood: i.Likelihood,
		FieldRelevance:  i.Relevance,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: %s must be >= 0", ErrInvalidInsight, name)
		}
	}
	return nil
}

// Projected devuelve una copia con sólo los campos de ProjectedFields.
func (i *Insight) Projected() *Insight {
	p := *i
	p.City = ""
	p.Swot = ""
	p.Topics = nil
	p.CreatedAt = time.Time{}
	return &p
}

// HasCountry indica si un objeto crudo del volcado trae un país no vacío.
func HasCountry(raw map[string]interface{}) bool {
	s, _ := raw[FieldCountry].(string)
	return strings.TrimSpace(s) != ""
}

// NewInsightFromRaw construye un Insight a partir de un objeto del volcado JSON.
// Los textos se recortan; "" en campos numéricos significa ausente.
// Devuelve ErrInvalidInsight si algún valor no encaja con su tipo o rompe un invariante.
func NewInsightFromRaw(raw map[string]interface{}) (*Insight, error) {
	var (
		in  Insight
		err error
	)

	strField := func(key string) string {
		if err != nil {
			return ""
		}
		var s string
		s, err = rawString(raw, key)
		return s
	}
	intField := func(key string) *int {
		if err != nil {
			return nil
		}
		var n *float64
		n, err = rawNumber(raw, key)
		if err != nil || n == nil {
			return nil
		}
		if *n != math.Trunc(*n) {
			err = fmt.Errorf("%w: %s must be an integer", ErrInvalidInsight, key)
			return nil
		}
		// float64(math.MaxInt) redondea a 2^63, que ya no cabe en un int.
		if *n >= float64(math.MaxInt) || *n < float64(math.MinInt) {
			err = fmt.Errorf("%w: %s out of range", ErrInvalidInsight, key)
			return nil
		}
		v := int(*n)
		return &v
	}
	floatField := func(key string) *float64 {
		if err != nil {
			return nil
		}
		var n *float64
		n, err = rawNumber(raw, key)
		return n
	}

	in.Country = strField(FieldCountry)
	in.Region = strField(FieldRegion)
	in.City = strField(FieldCity)
	in.Sector = strField(FieldSector)
	in.Source = strField(FieldSource)
	in.Pestle = strField(FieldPestle)
	in.Swot = strField(FieldSwot)
	in.Topic = strField(FieldTopic)
	in.Published = strField(FieldPublished)
	in.Title = strField(FieldTitle)
	in.Insight = strField(FieldInsight)
	in.URL = strField(FieldURL)
	in.Impact = strField(FieldImpact)
	in.Added = strField(FieldAdded)
	in.EndYear = intField(FieldEndYear)
	in.StartYear = intField(FieldStartYear)
	in.Intensity = floatField(FieldIntensity)
	in.Likelihood = floatField(FieldLikelihood)
	in.Relevance = floatField(FieldRelevance)
	if err != nil {
		return nil, err
	}

	if in.Topics, err = rawTopics(raw); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

// ---------- Helpers de conversión ----------

func rawString(raw map[string]interface{}, key string) (string, error) {
	switch v := raw[key].(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(v), nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidInsight, key)
	}
}

func rawNumber(raw map[string]interface{}, key string) (*float64, error) {
	var text string
	switch v := raw[key].(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	case int:
		f := float64(v)
		return &f, nil
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidInsight, key)
	}
	if text == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number, got %q", ErrInvalidInsight, key, text)
	}
	return &f, nil
}

func rawTopics(raw map[string]interface{}) ([]string, error) {
	switch v := raw[FieldTopics].(type) {
	case nil:
		return nil, nil
	case string:
		return SplitTopics(v), nil
	case []string:
		return cleanTopics(v), nil
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: topics must be a list of strings", ErrInvalidInsight)
			}
			items = append(items, s)
		}
		return cleanTopics(items), nil
	default:
		return nil, fmt.Errorf("%w: topics must be a list of strings", ErrInvalidInsight)
	}
}

// SplitTopics separa una lista por comas, recortando y descartando vacíos.
func SplitTopics(s string) []string {
	return cleanTopics(strings.Split(s, ","))
}

func cleanTopics(items []string) []string {
	var out []string
	for _, item := range items {
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}
