package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/vigia/internal/types"
)

func TestJSONLFormatterWriteReport(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONLFormatter{}

	require.NoError(t, f.WriteReport(&buf, newTestReport()))

	scanner := bufio.NewScanner(&buf)
	var lines []map[string]any
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())

	// Header + 8 components + 2 problems.
	require.Len(t, lines, 1+len(types.ComponentNames)+2)

	assert.Equal(t, "header", lines[0]["type"])
	assert.Equal(t, "diag-abcd1234", lines[0]["id"])
	assert.Equal(t, float64(74), lines[0]["score"])

	// Components follow in canonical order.
	for i, name := range types.ComponentNames {
		line := lines[1+i]
		assert.Equal(t, "component", line["type"])
		assert.Equal(t, name, line["component"])
	}

	last := lines[len(lines)-1]
	assert.Equal(t, "problem", last["type"])
}

func TestJSONLFormatterWriteSummaries(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONLFormatter{}

	require.NoError(t, f.WriteSummaries(&buf, newTestSummaries()))

	scanner := bufio.NewScanner(&buf)
	count := 0
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		assert.Equal(t, "summary", line["type"])
		count++
	}
	assert.Equal(t, 2, count)
}
