package domain

import (
	shared "github.com/davicafu/insightdash/internal/shared/domain"
)

// --- Criterios Específicos para el Dominio Insight ---

// FieldEqualsCriteria busca registros cuyo campo coincide exactamente con un texto.
type FieldEqualsCriteria struct {
	Field string
	Value string
}

// ToConditions implementa la interfaz shared.Criteria.
func (c FieldEqualsCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{
		{Field: c.Field, Op: shared.OpEq, Value: c.Value},
	}
}

// -----------------------------------------------------------

// EndYearFromCriteria busca registros con end_year >= Year.
// Los registros sin end_year no coinciden.
type EndYearFromCriteria struct {
	Year int
}

// ToConditions implementa la interfaz shared.Criteria.
func (c EndYearFromCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{
		{Field: FieldEndYear, Op: shared.OpGte, Value: c.Year},
	}
}

// -----------------------------------------------------------

// FieldInCriteria busca registros cuyo campo de texto está en la lista.
type FieldInCriteria struct {
	Field  string
	Values []string
}

// ToConditions implementa la interfaz shared.Criteria.
func (c FieldInCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{
		{Field: c.Field, Op: shared.OpIn, Value: c.Values},
	}
}

// -----------------------------------------------------------

// ListContainsAnyCriteria busca registros cuyo campo lista contiene alguno de los valores.
type ListContainsAnyCriteria struct {
	Field  string
	Values []string
}

// ToConditions implementa la interfaz shared.Criteria.
func (c ListContainsAnyCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{
		{Field: c.Field, Op: shared.OpContainsAny, Value: c.Values},
	}
}

// -----------------------------------------------------------

// TopicsAnyCriteria busca registros cuyo topic, o alguno de sus topics,
// está en la lista.
type TopicsAnyCriteria struct {
	Topics []string
}

// ToConditions implementa la interfaz shared.Criteria.
func (c TopicsAnyCriteria) ToConditions() []shared.Criterion {
	return shared.Or(
		FieldInCriteria{Field: FieldTopic, Values: c.Topics},
		ListContainsAnyCriteria{Field: FieldTopics, Values: c.Topics},
	).ToConditions()
}
