package recovery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverCleanJSONIsIdempotent(t *testing.T) {
	raw := `{"a": 1, "b": ["x", "y"], "c": {"nested": true}}`

	var direct any
	require.NoError(t, json.Unmarshal([]byte(raw), &direct))

	got, err := Recover(raw)
	require.NoError(t, err)
	assert.Equal(t, direct, got)
}

func TestRecoverFencedJSON(t *testing.T) {
	inner := `{"title": "Petrol Crypto", "tags": ["satire"]}`
	fenced := "```json\n" + inner + "\n```"

	want, err := Recover(inner)
	require.NoError(t, err)
	got, err := Recover(fenced)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRecoverProsePrefixAndTrailingComma(t *testing.T) {
	got, err := Recover(`Here is it: {"a":1,}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, got)
}

func TestRecoverStripsReasoningTags(t *testing.T) {
	raw := "<think>\nI should produce an object.\n</think>\n{\"ok\": true}"
	got, err := Recover(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, got)
}

func TestRecoverPrefersLargerValidArray(t *testing.T) {
	raw := `[1, 2, 3, 4, 5] as discussed, plus {"a":1}`
	got, err := Recover(raw)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2), float64(3), float64(4), float64(5)}, got)
}

func TestRecoverTruncatedTrailingContent(t *testing.T) {
	got, err := Recover(`{"a": 1} and then the model kept talking }`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, got)
}

func TestRecoverSingleQuotedObject(t *testing.T) {
	got, err := Recover(`{'title': 'Budget Day', 'score': 8,}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Budget Day", "score": float64(8)}, got)
}

func TestRecoverUnwrapsDoubleEncodedValue(t *testing.T) {
	// A value encoded as a string, twice over: "\"123\"" -> "123" -> 123.
	got, err := Recover(`"\"123\""`)
	require.NoError(t, err)
	assert.Equal(t, float64(123), got)
}

func TestRecoverSingleQuotedStringPayload(t *testing.T) {
	// A payload quoted into a string with single-quoted keys still comes
	// back as a structure via the textual repair pass.
	got, err := Recover(`"{'a': 1}"`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, got)
}

func TestRecoverPlainStringStaysString(t *testing.T) {
	got, err := Recover(`"just a sentence, not a payload"`)
	require.NoError(t, err)
	assert.Equal(t, "just a sentence, not a payload", got)
}

func TestRecoverFailsOnHopelessText(t *testing.T) {
	_, err := Recover("nothing structured here at all")
	var rerr *RecoveryError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, len("nothing structured here at all"), rerr.RawLen)
}

func TestRepairTextSeparatesAdjacentObjects(t *testing.T) {
	assert.Equal(t, `{"a":1},{"b":2}`, repairText(`{"a":1} {"b":2}`))
	assert.Equal(t, `{"x": 1}`, repairText(`{'x': 1,}`))
}
