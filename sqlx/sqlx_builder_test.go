package sqlx

import (
	"testing"

	"github.com/kcmvp/crm/entity"
	"github.com/stretchr/testify/require"
)

// This file is organized into 2 test categories:
//  1. Operator tests: Where predicates and boolean composition.
//  2. Full SQL script tests: SQL string generation for Select/Insert/Update/Delete.

type testEntity struct{}

func (testEntity) Table() string { return "test" }

type relatedEntity struct{}

func (relatedEntity) Table() string { return "related" }

var (
	testID      = entity.Field[testEntity]("id")
	testName    = entity.Field[testEntity]("name")
	testAge     = entity.Field[testEntity]("age")
	relatedID   = entity.Field[relatedEntity]("id")
	relatedTest = entity.Field[relatedEntity]("test_id")
	relatedTag  = entity.Field[relatedEntity]("tag")
)

// -----------------------------
// 1) Operator tests
// -----------------------------

func TestOperator_Eq(t *testing.T) {
	w := Eq[testEntity](testID, int64(10))
	clause, args := w.Build()
	require.Equal(t, "test.id = ?", clause)
	require.Equal(t, []any{int64(10)}, args)
}

func TestOperator_And_FilterEmptyAndNil(t *testing.T) {
	empty := whereFunc[testEntity](func() (string, []any) { return "", nil })
	var nilWhere Where[testEntity]

	w := And[testEntity](nilWhere, empty, Eq[testEntity](testName, "a"))
	clause, args := w.Build()
	require.Equal(t, "(test.name = ?)", clause)
	require.Equal(t, []any{"a"}, args)

	w2 := And[testEntity](Eq[testEntity](testName, "a"), Gte[testEntity](testAge, 3))
	clause2, args2 := w2.Build()
	require.Equal(t, "(test.name = ? AND test.age >= ?)", clause2)
	require.Equal(t, []any{"a", 3}, args2)
}

func TestOperator_And_AllEmpty(t *testing.T) {
	empty := whereFunc[testEntity](func() (string, []any) { return "", nil })

	clause, args := And[testEntity](empty).Build()
	require.Equal(t, "", clause)
	require.Nil(t, args)

	clause, args = And[testEntity]().Build()
	require.Equal(t, "", clause)
	require.Nil(t, args)
}

func TestOperator_Operators(t *testing.T) {
	cases := []struct {
		name     string
		w        Where[testEntity]
		expected string
		args     []any
	}{
		{"gte", Gte[testEntity](testAge, int64(3)), "test.age >= ?", []any{int64(3)}},
		{"lt", Lt[testEntity](testAge, int64(4)), "test.age < ?", []any{int64(4)}},
		{"lte", Lte[testEntity](testAge, int64(5)), "test.age <= ?", []any{int64(5)}},
		{"all", All[testEntity](), "1=1", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clause, args := tc.w.Build()
			require.Equal(t, tc.expected, clause)
			require.Equal(t, tc.args, args)
		})
	}
}

func TestOperator_ContainsFold(t *testing.T) {
	clause, args := ContainsFold[testEntity](testName, "AlIce").Build()
	require.Equal(t, "LOWER(test.name) LIKE ? ESCAPE '!'", clause)
	require.Equal(t, []any{"%alice%"}, args)
}

func TestOperator_LikeEscapesWildcards(t *testing.T) {
	cases := []struct {
		name    string
		w       Where[testEntity]
		pattern string
	}{
		{"percent", ContainsFold[testEntity](testName, "50%"), "%50!%%"},
		{"underscore", ContainsFold[testEntity](testName, "a_b"), "%a!_b%"},
		{"escape char", HasPrefix[testEntity](testName, "!x"), "!!x%"},
		{"prefix", HasPrefix[testEntity](testName, "+1"), "+1%"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, args := tc.w.Build()
			require.Equal(t, []any{tc.pattern}, args)
		})
	}
}

func TestOperator_Exists(t *testing.T) {
	j := Join[testEntity, relatedEntity](testID, relatedTest)
	require.Equal(t, "(test.id = related.test_id)", j.On())

	clause, args := Exists[testEntity, relatedEntity](j, Eq[relatedEntity](relatedTag, "x")).Build()
	require.Equal(t, "EXISTS (SELECT 1 FROM related WHERE (test.id = related.test_id) AND related.tag = ?)", clause)
	require.Equal(t, []any{"x"}, args)

	clause, args = Exists[testEntity, relatedEntity](j, nil).Build()
	require.Equal(t, "EXISTS (SELECT 1 FROM related WHERE (test.id = related.test_id))", clause)
	require.Nil(t, args)
}

func TestOperator_ExistsComposesWithAnd(t *testing.T) {
	j := Join[testEntity, relatedEntity](testID, relatedTest)
	w := And[testEntity](
		Gte[testEntity](testAge, 18),
		Exists[testEntity, relatedEntity](j, ContainsFold[relatedEntity](relatedTag, "vip")),
	)
	clause, args := w.Build()
	require.Equal(t, "(test.age >= ? AND EXISTS (SELECT 1 FROM related WHERE (test.id = related.test_id) AND LOWER(related.tag) LIKE ? ESCAPE '!'))", clause)
	require.Equal(t, []any{18, "%vip%"}, args)
}

func TestJoin_SelfJoinPanics(t *testing.T) {
	require.Panics(t, func() { Join[testEntity, testEntity](testID, testAge) })
}

// -----------------------------
// 2) Full SQL script tests
// -----------------------------

func TestSelectSQL(t *testing.T) {
	sql, args, err := SelectSQL[testEntity]([]entity.FieldProvider[testEntity]{testID, testName}, Gte[testEntity](testAge, 1), Desc[testEntity](testName), Asc[testEntity](testID))
	require.NoError(t, err)
	require.Equal(t, "SELECT test.id, test.name FROM test WHERE test.age >= ? ORDER BY test.name DESC, test.id ASC", sql)
	require.Equal(t, []any{1}, args)

	sql, args, err = SelectSQL[testEntity]([]entity.FieldProvider[testEntity]{testID}, nil)
	require.NoError(t, err)
	require.Equal(t, "SELECT test.id FROM test", sql)
	require.Nil(t, args)

	_, _, err = SelectSQL[testEntity](nil, nil)
	require.Error(t, err)
}

func TestInsertSQL(t *testing.T) {
	sql, args, err := InsertSQL[testEntity](Set[testEntity](testName, "a"), Set[testEntity](testAge, 3))
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO test (name, age) VALUES (?,?)", sql)
	require.Equal(t, []any{"a", 3}, args)

	_, _, err = InsertSQL[testEntity]()
	require.Error(t, err)
}

func TestUpdateSQL(t *testing.T) {
	sql, args, err := UpdateSQL[testEntity](Eq[testEntity](testID, 7), Set[testEntity](testAge, 4))
	require.NoError(t, err)
	require.Equal(t, "UPDATE test SET age = ? WHERE test.id = ?", sql)
	require.Equal(t, []any{4, 7}, args)

	_, _, err = UpdateSQL[testEntity](nil, Set[testEntity](testAge, 4))
	require.Error(t, err)
	_, _, err = UpdateSQL[testEntity](Eq[testEntity](testID, 7))
	require.Error(t, err)
}

func TestDeleteSQL(t *testing.T) {
	sql, args, err := DeleteSQL[testEntity](Lt[testEntity](testAge, 2))
	require.NoError(t, err)
	require.Equal(t, "DELETE FROM test WHERE test.age < ?", sql)
	require.Equal(t, []any{2}, args)

	sql, _, err = DeleteSQL[testEntity](All[testEntity]())
	require.NoError(t, err)
	require.Equal(t, "DELETE FROM test WHERE 1=1", sql)

	_, _, err = DeleteSQL[testEntity](nil)
	require.Error(t, err)
}
