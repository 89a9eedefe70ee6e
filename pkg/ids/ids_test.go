package ids_test

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/linkvault/pkg/ids"
)

var alnum = regexp.MustCompile(`^[A-Za-z0-9]*$`)

func TestNewTokenLengthAndAlphabet(t *testing.T) {
	for _, length := range []int{1, 6, 16, 64} {
		for i := 0; i < 100; i++ {
			token := ids.NewToken(length)
			assert.Len(t, token, length)
			assert.Regexp(t, alnum, token)
		}
	}
	assert.Equal(t, "", ids.NewToken(0))
	assert.Equal(t, "", ids.NewToken(-3))
}

func TestNewTokenVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[ids.NewToken(16)] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestNewNumericIDDigits(t *testing.T) {
	tests := []struct {
		digits int
		want   int
	}{
		{8, 8},
		{1, 1},
		{19, 19},
		{0, 1},
		{-5, 1},
		{25, 19},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.digits), func(t *testing.T) {
			for i := 0; i < 200; i++ {
				id := ids.NewNumericID(tt.digits)
				assert.Len(t, strconv.FormatUint(id, 10), tt.want)
			}
		})
	}
}

func TestNewNumericIDSingleDigitIsNeverZero(t *testing.T) {
	seen := map[uint64]bool{}
	for i := 0; i < 2000; i++ {
		id := ids.NewNumericID(1)
		require.GreaterOrEqual(t, id, uint64(1))
		require.LessOrEqual(t, id, uint64(9))
		seen[id] = true
	}
	assert.Len(t, seen, 9, "every digit 1..9 shows up")
}

func TestBatchName(t *testing.T) {
	assert.Equal(t, "dotfiles", ids.BatchName("  dotfiles \n"))

	generated := ids.BatchName("   ")
	assert.Regexp(t, `^[a-z]+-[a-z]+$`, generated)
	assert.NotEmpty(t, ids.BatchName(""))
}
