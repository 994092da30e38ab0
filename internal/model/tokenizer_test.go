package model

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPadID = 0
	testCLSID = 2
	testSEPID = 3
	testSlot  = 5
)

func newTestTokenizer(t *testing.T, maxLength int) *HFTokenizer {
	t.Helper()

	tok, err := NewHFTokenizer(filepath.Join("testdata", "tokenizer.json"), maxLength)
	require.NoError(t, err)
	return tok
}

func ones(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func TestHFTokenizer_Encode(t *testing.T) {
	const maxLength = 16
	tok := newTestTokenizer(t, maxLength)

	t.Run("empty text is only special tokens and padding", func(t *testing.T) {
		ids, mask, err := tok.Encode("")

		require.NoError(t, err)
		require.Len(t, ids, maxLength)
		require.Len(t, mask, maxLength)
		assert.Equal(t, []int64{testCLSID, testSEPID}, ids[:2])
		assert.Equal(t, make([]int64, maxLength-2), ids[2:])
		assert.Equal(t, []int64{1, 1}, mask[:2])
		assert.Equal(t, make([]int64, maxLength-2), mask[2:])
	})

	t.Run("short text is padded", func(t *testing.T) {
		ids, mask, err := tok.Encode("Slot GACOR hari ini")

		require.NoError(t, err)
		require.Len(t, ids, maxLength)
		assert.Equal(t, []int64{testCLSID, testSlot, 6, 8, 9, testSEPID, testPadID}, ids[:7])
		assert.Equal(t, ones(6), mask[:6])
		assert.Equal(t, make([]int64, maxLength-6), mask[6:])
	})

	t.Run("long text is truncated and ends in SEP", func(t *testing.T) {
		ids, mask, err := tok.Encode(strings.Repeat("slot ", 200))

		require.NoError(t, err)
		require.Len(t, ids, maxLength)
		assert.Equal(t, int64(testCLSID), ids[0])
		for i := 1; i < maxLength-1; i++ {
			assert.Equal(t, int64(testSlot), ids[i], "position %d", i)
		}
		assert.Equal(t, int64(testSEPID), ids[maxLength-1])
		assert.Equal(t, ones(maxLength), mask)
	})

	t.Run("encodes again after a long input", func(t *testing.T) {
		_, _, err := tok.Encode(strings.Repeat("gacor ", 500))
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			_, _, err := tok.Encode("hello")
			done <- err
		}()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("encode blocked after a long input")
		}
	})

	t.Run("text exactly at the limit is untouched", func(t *testing.T) {
		ids, mask, err := tok.Encode(strings.Repeat("slot ", maxLength-2))

		require.NoError(t, err)
		assert.Equal(t, int64(testSlot), ids[maxLength-2])
		assert.Equal(t, int64(testSEPID), ids[maxLength-1])
		assert.Equal(t, ones(maxLength), mask)
	})
}

func TestNewHFTokenizer_Errors(t *testing.T) {
	_, err := NewHFTokenizer(filepath.Join("testdata", "tokenizer.json"), 0)
	assert.Error(t, err)

	_, err = NewHFTokenizer(filepath.Join(t.TempDir(), "missing.json"), 16)
	assert.Error(t, err)
}

func TestTruncateWithSep(t *testing.T) {
	assert.Equal(t, []int{101, 7, 102}, truncateWithSep([]int{101, 7, 102}, 5, 102))
	assert.Equal(t, []int{101, 7, 8, 102}, truncateWithSep([]int{101, 7, 8, 9, 10, 102}, 4, 102))
	assert.Equal(t, []int{102}, truncateWithSep([]int{101, 7}, 1, 102))
}

func TestFitLength(t *testing.T) {
	assert.Equal(t, []int64{101, 7, 102, 0, 0}, fitLength([]int{101, 7, 102}, 5, 0))
	assert.Equal(t, []int64{101, 7, 8}, fitLength([]int{101, 7, 8, 9, 102}, 3, 0))
	assert.Equal(t, []int64{9, 9}, fitLength(nil, 2, 9))
}
