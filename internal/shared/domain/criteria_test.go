package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fieldCriteria struct {
	field string
	value string
}

func (c fieldCriteria) ToConditions() []Criterion {
	return []Criterion{{Field: c.field, Op: OpEq, Value: c.value}}
}

func TestAnd_FlattensChildren(t *testing.T) {
	crit := And(fieldCriteria{"region", "Asia"}, fieldCriteria{"country", "India"})

	conds := crit.ToConditions()

	assert.Len(t, conds, 2)
	assert.Equal(t, "region", conds[0].Field)
	assert.Equal(t, "country", conds[1].Field)
}

func TestOr_WrapsChildrenInAny(t *testing.T) {
	crit := Or(fieldCriteria{"topic", "oil"}, fieldCriteria{"topic", "gas"})

	conds := crit.ToConditions()

	assert.Len(t, conds, 1)
	assert.Equal(t, OpAny, conds[0].Op)
	assert.Len(t, conds[0].Any, 2)
}

func TestOr_SingleChildIsNotWrapped(t *testing.T) {
	conds := Or(fieldCriteria{"topic", "oil"}).ToConditions()

	assert.Len(t, conds, 1)
	assert.Equal(t, OpEq, conds[0].Op)
}

func TestConditions_NilCriteria(t *testing.T) {
	assert.Empty(t, Conditions(nil))
	assert.Empty(t, Conditions(And()))
}

func TestAnd_SkipsNilChildren(t *testing.T) {
	conds := And(nil, fieldCriteria{"sector", "Energy"}).ToConditions()

	assert.Len(t, conds, 1)
}
