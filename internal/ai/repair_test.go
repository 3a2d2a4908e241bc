package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON_Clean(t *testing.T) {
	t.Parallel()

	out, err := RepairJSON(`{"intent":"log","amount":100}`)
	require.NoError(t, err)
	assert.Equal(t, `{"intent":"log","amount":100}`, out)
}

func TestRepairJSON_MarkdownFences(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"intent\":\"summary\"}\n```"
	out, err := RepairJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"intent":"summary"}`, out)
}

func TestRepairJSON_SurroundingProse(t *testing.T) {
	t.Parallel()

	raw := `Sure! Here is the result: {"intent":"log","amount":50,"note":"tea"} Hope that helps.`
	out, err := RepairJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"intent":"log","amount":50,"note":"tea"}`, out)
}

func TestRepairJSON_NestedBraces(t *testing.T) {
	t.Parallel()

	raw := `noise {"a":{"b":1},"c":"x{y}z"} trailing`
	out, err := RepairJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"b":1},"c":"x{y}z"}`, out)
}

func TestRepairJSON_EscapedQuotes(t *testing.T) {
	t.Parallel()

	raw := `{"note":"he said \"hi\" {not a brace}"}`
	out, err := RepairJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestRepairJSON_NoObject(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "no json here", "[1,2,3]", "{broken"} {
		_, err := RepairJSON(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestRepairJSON_Idempotent(t *testing.T) {
	t.Parallel()

	raw := "prefix {\"intent\":\"help\"} suffix"
	once, err := RepairJSON(raw)
	require.NoError(t, err)
	twice, err := RepairJSON(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}
