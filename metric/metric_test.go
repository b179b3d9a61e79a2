package metric

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semonto/ontology"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, StatusOK},
		{ontology.NewParseError("x.owl", errors.New("boom")), StatusParseError},
		{ontology.NewNotFoundError("Class", "X", nil), StatusNotFound},
		{ontology.Invalidf("bad"), StatusInvalid},
		{errors.New("other"), StatusError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err))
	}
}

func TestObserveOperation(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.ObserveOperation("browse", time.Now(), nil)
	m.ObserveOperation("browse", time.Now(), nil)
	m.ObserveOperation("browse", time.Now(), ontology.Invalidf("no mode"))
	m.RecordWarnings("map_crystal", 2)
	m.RecordWarnings("map_crystal", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("browse", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("browse", StatusInvalid)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.warnings.WithLabelValues("map_crystal")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestRecordSummaryAndTextfile(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.RecordSummary("cmso", &ontology.Summary{Statistics: ontology.Statistics{
		NumClasses: 7, NumObjectProperties: 2, NumDataProperties: 3,
	}})
	assert.Equal(t, 7.0, testutil.ToFloat64(m.entities.WithLabelValues("cmso", "class")))

	path := filepath.Join(t.TempDir(), "semonto.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `semonto_ontology_entities{kind="data_property",ontology="cmso"} 3`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("browse", time.Now(), nil)
	m.RecordWarnings("browse", 1)
	m.RecordSummary("x", &ontology.Summary{})
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "none.prom")))
}
