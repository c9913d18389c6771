package domain

// ---------------- Operadores ----------------

type Operator string

const (
	OpEq  Operator = "="
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpLt  Operator = "<"
	OpLte Operator = "<="

	// OpIn compara un campo escalar contra una lista de valores ([]string).
	OpIn Operator = "IN"
	// OpContainsAny exige que un campo lista contenga al menos uno de los valores ([]string).
	OpContainsAny Operator = "CONTAINS_ANY"
	// OpAny agrupa condiciones alternativas en Criterion.Any (OR).
	OpAny Operator = "ANY"
)

type LogicalOperator string

const (
	OpAnd LogicalOperator = "AND"
	OpOr  LogicalOperator = "OR"
)

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado.
// Cuando Op es OpAny, Field y Value se ignoran y se evalúa Any.
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
	Any   []Criterion
}

// ---------------- Criteria interface ----------------

// Criteria permite transformar filtros a condiciones neutrales.
// Las condiciones devueltas se combinan siempre con AND.
type Criteria interface {
	ToConditions() []Criterion
}

// ---------------- Composite Criteria ----------------

type CompositeCriteria struct {
	Operator  LogicalOperator
	Criterias []Criteria
}

// ToConditions aplana los criterios hijos. Con OpOr el resultado es una única
// condición OpAny; cada hijo debe producir entonces una sola condición.
func (c CompositeCriteria) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range c.Criterias {
		if crit == nil {
			continue
		}
		all = append(all, crit.ToConditions()...)
	}
	if c.Operator == OpOr && len(all) > 1 {
		return []Criterion{{Op: OpAny, Any: all}}
	}
	return all
}

// ---------------- Helpers ----------------

// And crea un CompositeCriteria con operador AND
func And(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpAnd, Criterias: criterias}
}

// Or crea un CompositeCriteria con operador OR
func Or(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpOr, Criterias: criterias}
}

// Conditions devuelve las condiciones de un Criteria que puede ser nil.
func Conditions(criteria Criteria) []Criterion {
	if criteria == nil {
		return nil
	}
	return criteria.ToConditions()
}
