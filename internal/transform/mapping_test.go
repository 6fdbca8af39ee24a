package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/logging"
	"github.com/prepline/prepline/internal/testutil"
)

// captureWarnings routes data-quality warnings into an observer for the
// duration of the test.
func captureWarnings(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.WarnLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(nil) })
	return logs
}

func TestMappingTransform(t *testing.T) {
	mem := testutil.SetupAllocator(t)
	df := testutil.CreatePassengerFrame(mem)
	defer df.Release()

	m := NewMapping("Joined", map[string]string{"S": "Southampton", "C": "Cherbourg", "Q": "Queenstown"})
	out, err := m.FitTransform(df, nil)
	require.NoError(t, err)
	defer out.Release()

	testutil.AssertStringColumn(t, out, "Joined",
		[]string{"Southampton", "Cherbourg", "Southampton", "Southampton", "Queenstown", "Cherbourg"})

	// Input frame untouched.
	testutil.AssertStringColumn(t, df, "Joined", []string{"S", "C", "S", "S", "Q", "C"})
}

func TestMappingUnmappedValuesPassThrough(t *testing.T) {
	mem := testutil.SetupAllocator(t)
	df := testutil.CreatePassengerFrame(mem)
	defer df.Release()
	logs := captureWarnings(t)

	m := NewMapping("Joined", map[string]string{"S": "Southampton", "X": "Nowhere"})
	out, err := m.FitTransform(df, nil)
	require.NoError(t, err)
	defer out.Release()

	// "C" and "Q" have no mapping and survive; "X" never occurs.
	testutil.AssertStringColumn(t, out, "Joined",
		[]string{"Southampton", "C", "Southampton", "Southampton", "Q", "C"})

	require.Equal(t, 2, logs.Len())
	messages := []string{logs.All()[0].Message, logs.All()[1].Message}
	assert.Contains(t, messages, "mapping keys never appear in the column")
	assert.Contains(t, messages, "column values have no mapping and pass through unchanged")
}

func TestMappingRoundTrip(t *testing.T) {
	mem := testutil.SetupAllocator(t)
	df := testutil.CreatePassengerFrame(mem)
	defer df.Release()

	forward := NewMapping("Gender", map[string]string{"Male": "M", "Female": "F"})
	backward := NewMapping("Gender", map[string]string{"M": "Male", "F": "Female"})

	mid, err := forward.FitTransform(df, nil)
	require.NoError(t, err)
	defer mid.Release()
	back, err := backward.FitTransform(mid, nil)
	require.NoError(t, err)
	defer back.Release()

	testutil.AssertStringColumn(t, back, "Gender",
		[]string{"Male", "Female", "Male", "Female", "Male", "Female"})
}

func TestMappingErrors(t *testing.T) {
	mem := testutil.SetupAllocator(t)
	df := testutil.CreatePassengerFrame(mem)
	defer df.Release()

	_, err := NewMapping("Nope", map[string]string{"a": "b"}).FitTransform(df, nil)
	assert.ErrorIs(t, err, errors.ErrColumnNotFound)

	_, err = NewMapping("Age", map[string]string{"a": "b"}).FitTransform(df, nil)
	assert.Error(t, err)

	err = NewMapping("Joined", nil).Fit(df, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestNumericMappingTransform(t *testing.T) {
	mem := testutil.SetupAllocator(t)
	df := testutil.CreatePassengerFrame(mem)
	defer df.Release()

	m := NewNumericMapping("Gender", map[string]float64{"Male": 0, "Female": 1})
	out, err := m.FitTransform(df, nil)
	require.NoError(t, err)
	defer out.Release()

	testutil.AssertFloatColumn(t, out, "Gender", []float64{0, 1, 0, 1, 0, 1})
	// Column order preserved.
	testutil.AssertFrameHasColumns(t, out, []string{"Gender", "Joined", "Age", "Fare"})
}

func TestNumericMappingUnmappedBecomesMissing(t *testing.T) {
	mem := testutil.SetupAllocator(t)
	df := testutil.CreatePassengerFrame(mem)
	defer df.Release()
	logs := captureWarnings(t)

	m := NewNumericMapping("Joined", map[string]float64{"S": 0, "C": 1})
	out, err := m.FitTransform(df, nil)
	require.NoError(t, err)
	defer out.Release()

	nan := math.NaN()
	testutil.AssertFloatColumn(t, out, "Joined", []float64{0, 1, 0, 0, nan, 1})
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "column values have no mapping and become missing", logs.All()[0].Message)
}
