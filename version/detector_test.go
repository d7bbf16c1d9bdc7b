package version

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectorMemoizes(t *testing.T) {
	var calls atomic.Int32
	d := NewDetector(func() (string, error) {
		calls.Add(1)
		return "1.20.4-R0.1-SNAPSHOT", nil
	})

	for i := 0; i < 3; i++ {
		v, err := d.Version()
		require.NoError(t, err)
		assert.Equal(t, 1204, v)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "1.20.4-R0.1-SNAPSHOT", d.Raw())
	assert.True(t, d.Detected())
}

func TestDetectorConcurrentFirstUse(t *testing.T) {
	var calls atomic.Int32
	d := NewDetector(func() (string, error) {
		calls.Add(1)
		return "1.12.2", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := d.Version()
			assert.NoError(t, err)
			assert.Equal(t, 1122, v)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestDetectorFailureNotStored(t *testing.T) {
	fail := true
	d := NewDetector(func() (string, error) {
		if fail {
			return "", errors.New("server not ready")
		}
		return "1.8.8", nil
	})

	_, err := d.Version()
	require.Error(t, err)
	assert.False(t, d.Detected())

	fail = false
	v, err := d.Version()
	require.NoError(t, err)
	assert.Equal(t, 1088, v)
}

func TestDetectorParseError(t *testing.T) {
	d := Fixed("git-Spigot-db6de12")
	_, err := d.Version()
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestDetectorSetSource(t *testing.T) {
	d := &Detector{}
	_, err := d.Version()
	assert.ErrorIs(t, err, ErrNoSource)
	assert.False(t, d.HasSource())

	require.True(t, d.SetSource(func() (string, error) { return "1.16.5", nil }))
	v, err := d.Version()
	require.NoError(t, err)
	assert.Equal(t, 1165, v)
	assert.True(t, d.HasSource())

	assert.False(t, d.SetSource(func() (string, error) { return "1.8", nil }))
	v, _ = d.Version()
	assert.Equal(t, 1165, v)
}
