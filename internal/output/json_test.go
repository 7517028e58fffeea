package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/vigia/internal/types"
)

func TestJSONFormatterWriteReport(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}

	require.NoError(t, f.WriteReport(&buf, newTestReport()))

	var decoded types.DiagnosticReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "diag-abcd1234", decoded.ID)
	assert.Equal(t, 74, decoded.Score)
	assert.Equal(t, types.StatusRegular, decoded.SystemStatus)
	assert.Len(t, decoded.Components, len(types.ComponentNames))
	assert.Len(t, decoded.Problems, 2)

	// Pretty-printed, HTML escaping off.
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  "))
	assert.NotContains(t, buf.String(), `>`)
}

func TestJSONFormatterWriteSummaries(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}

	require.NoError(t, f.WriteSummaries(&buf, newTestSummaries()))

	var decoded []types.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "diag-abcd1234", decoded[0].ID)
	assert.Equal(t, 2, decoded[0].ProblemsCount)
}

func TestJSONFormatterWriteMetrics(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}

	metrics := &types.Metrics{
		TotalReports:  2,
		AverageScore:  84.5,
		LastScore:     74,
		LastStatus:    types.StatusRegular,
		LastRunAt:     testTimestamp,
		ProblemsTotal: 2,
	}
	require.NoError(t, f.WriteMetrics(&buf, metrics))

	var decoded types.Metrics
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 84.5, decoded.AverageScore)
	assert.Equal(t, types.StatusRegular, decoded.LastStatus)
}
