package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptpack/promptpack/pkg/types"
)

func limits(maxFiles, maxFileKB, maxTotalMB int) types.Limits {
	l := types.DefaultLimits()
	l.MaxFiles = maxFiles
	l.MaxFileSizeKB = maxFileKB
	l.MaxTotalSizeMB = maxTotalMB
	return l
}

func TestTryAccept_WithinLimits(t *testing.T) {
	l := New(limits(10, 1024, 10))

	require.NoError(t, l.TryAccept(500))
	require.NoError(t, l.TryAccept(1500))
	assert.Equal(t, 2, l.FilesAccepted())
	assert.Equal(t, int64(2000), l.BytesAccepted())
}

func TestTryAccept_PerFileSizeSkips(t *testing.T) {
	l := New(limits(10, 1, 10)) // 1KB per file

	err := l.TryAccept(2048)

	var tooLarge *FileTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(2048), tooLarge.SizeBytes)
	// A skipped file must not consume the budget.
	assert.Equal(t, 0, l.FilesAccepted())
	assert.Equal(t, int64(0), l.BytesAccepted())
}

func TestTryAccept_FileCountAborts(t *testing.T) {
	l := New(limits(2, 1024, 10))

	require.NoError(t, l.TryAccept(10))
	require.NoError(t, l.TryAccept(10))
	err := l.TryAccept(10)

	var limit *LimitError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, types.FailTooManyFiles, limit.Code)
	assert.Equal(t, 2, limit.FilesAccepted)
	assert.Contains(t, limit.Hint(), "narrow")
}

func TestTryAccept_AggregateSizeAborts(t *testing.T) {
	l := New(limits(100, 2048, 1)) // 1MB total

	require.NoError(t, l.TryAccept(600*1024))
	err := l.TryAccept(600 * 1024)

	var limit *LimitError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, types.FailSizeLimitExceeded, limit.Code)
	assert.Equal(t, int64(600*1024), limit.BytesAccepted)
}

func TestTryAccept_NeverExceedsTotal(t *testing.T) {
	maxTotal := int64(1) * 1024 * 1024
	l := New(limits(0, 0, 1))

	for i := 0; i < 100; i++ {
		_ = l.TryAccept(100 * 1024)
	}
	assert.LessOrEqual(t, l.BytesAccepted(), maxTotal)
}

func TestTryAccept_ZeroDisablesCeiling(t *testing.T) {
	l := New(limits(0, 0, 0))

	for i := 0; i < 1000; i++ {
		require.NoError(t, l.TryAccept(10*1024*1024))
	}
	assert.Equal(t, 1000, l.FilesAccepted())
}
