package sex_test

import (
	"testing"

	"github.com/go-recdb/recdb/sex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecord is a minimal sex.Record for testing, independent of recfmt.
type fakeRecord map[string][]string

func (r fakeRecord) GetAll(name string) []string { return r[name] }

func TestCompileTrueFalseSucceed(t *testing.T) {
	_, err := sex.Compile("true")
	require.NoError(t, err)
	_, err = sex.Compile("false")
	require.NoError(t, err)
}

func TestCompileEmptyAndBarePlusFail(t *testing.T) {
	_, err := sex.Compile("")
	assert.Error(t, err)
	_, err = sex.Compile("+")
	assert.Error(t, err)
}

func TestEvalArithmeticAndCount(t *testing.T) {
	rec := fakeRecord{"x": {"3"}, "y": {"4"}}

	e, err := sex.Compile("x + y = 7")
	require.NoError(t, err)
	matched, err := sex.Matched(e, rec)
	require.NoError(t, err)
	assert.True(t, matched)

	e, err = sex.Compile("#z = 0")
	require.NoError(t, err)
	matched, err = sex.Matched(e, rec)
	require.NoError(t, err)
	assert.True(t, matched)

	e, err = sex.Compile("x / 0")
	require.NoError(t, err)
	_, err = sex.Eval(e, rec)
	assert.Error(t, err)
}

func TestEvalIndexedNameRefs(t *testing.T) {
	rec := fakeRecord{"t": {"1", "2"}}

	e, err := sex.Compile("t[1] = 2")
	require.NoError(t, err)
	matched, err := sex.Matched(e, rec)
	require.NoError(t, err)
	assert.True(t, matched)

	e, err = sex.Compile("t = 1")
	require.NoError(t, err)
	matched, err = sex.Matched(e, rec)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestEvalHexIntegerCoercion(t *testing.T) {
	rec := fakeRecord{"x": {"0xff"}}
	e, err := sex.Compile("x = 255")
	require.NoError(t, err)
	matched, err := sex.Matched(e, rec)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestEvalRegexMatch(t *testing.T) {
	rec := fakeRecord{"name": {"Alice"}}
	e, err := sex.Compile(`name ~ "^A"`)
	require.NoError(t, err)
	matched, err := sex.Matched(e, rec)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestEvalShortCircuitAnd(t *testing.T) {
	rec := fakeRecord{"x": {"0"}}
	// If && evaluated its right operand, dividing by zero would error.
	e, err := sex.Compile("x && (1 / 0 = 1)")
	require.NoError(t, err)
	matched, err := sex.Matched(e, rec)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestEvalTernary(t *testing.T) {
	rec := fakeRecord{"x": {"5"}}
	e, err := sex.Compile(`x > 3 ? "big" : "small"`)
	require.NoError(t, err)
	v, err := sex.Eval(e, rec)
	require.NoError(t, err)
	assert.Equal(t, "big", v.String())
}

func TestEvalImplicationShortCircuits(t *testing.T) {
	rec := fakeRecord{"x": {"0"}}
	e, err := sex.Compile("x => (1 / 0 = 1)")
	require.NoError(t, err)
	matched, err := sex.Matched(e, rec)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestEvalDisparateKindComparisonIsFalseNotError(t *testing.T) {
	rec := fakeRecord{"name": {"Alice"}, "age": {"30"}}
	e, err := sex.Compile("name = age")
	require.NoError(t, err)
	v, err := sex.Eval(e, rec)
	require.NoError(t, err)
	assert.False(t, v.Truthy())
}

func TestFixOverridesRecordValue(t *testing.T) {
	rec := fakeRecord{"x": {"1"}}
	e, err := sex.Compile("x = 42")
	require.NoError(t, err)
	e.Fix("x", "42")
	matched, err := sex.Matched(e, rec)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestEvalDateOperators(t *testing.T) {
	rec := fakeRecord{"a": {"2020-01-01"}, "b": {"2021-01-01"}}
	e, err := sex.Compile("a << b")
	require.NoError(t, err)
	matched, err := sex.Matched(e, rec)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestEvalStringConcatenation(t *testing.T) {
	rec := fakeRecord{}
	e, err := sex.Compile(`"foo" + "bar"`)
	require.NoError(t, err)
	v, err := sex.Eval(e, rec)
	require.NoError(t, err)
	assert.Equal(t, "foobar", v.String())
}

func TestEvalUnaryMinusAndNot(t *testing.T) {
	rec := fakeRecord{"x": {"5"}}
	e, err := sex.Compile("-x = -5")
	require.NoError(t, err)
	matched, err := sex.Matched(e, rec)
	require.NoError(t, err)
	assert.True(t, matched)

	e, err = sex.Compile("!(x = 5)")
	require.NoError(t, err)
	matched, err = sex.Matched(e, rec)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestEvalCaseInsensitiveOption(t *testing.T) {
	rec := fakeRecord{"name": {"Alice"}}
	e, err := sex.Compile(`name = "alice"`, sex.CaseInsensitive())
	require.NoError(t, err)
	matched, err := sex.Matched(e, rec)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestEvalMissingFieldIsFalseNotError(t *testing.T) {
	rec := fakeRecord{}
	e, err := sex.Compile("z = 1")
	require.NoError(t, err)
	v, err := sex.Eval(e, rec)
	require.NoError(t, err)
	assert.False(t, v.Truthy())
}

func TestEvalUnparseableDateIsFalseNotError(t *testing.T) {
	rec := fakeRecord{"a": {"not a date"}, "b": {"2021-01-01"}}
	e, err := sex.Compile("a << b")
	require.NoError(t, err)
	v, err := sex.Eval(e, rec)
	require.NoError(t, err)
	assert.False(t, v.Truthy())
}
