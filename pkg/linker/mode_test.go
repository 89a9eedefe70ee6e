package linker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/linker"
)

func TestModeLabels(t *testing.T) {
	want := []string{
		"single file",
		"multiple files",
		"single directory",
		"multiple directories",
		"all files",
		"top level",
		"single hard link",
		"multiple hard links",
		"all files (hard)",
	}
	modes := linker.Modes()
	require.Len(t, modes, len(want))
	for i, m := range modes {
		assert.Equal(t, want[i], m.String())
		assert.Equal(t, m, linker.ModeFromInt(i))
	}
}

func TestModeFromIntOutOfRange(t *testing.T) {
	assert.Equal(t, linker.ModeSingleFile, linker.ModeFromInt(9))
	assert.Equal(t, linker.ModeSingleFile, linker.ModeFromInt(255))
	assert.Equal(t, linker.ModeSingleFile, linker.ModeFromInt(-1))
	assert.Equal(t, "single file", linker.Mode(42).String())
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want linker.Mode
	}{
		{"top-level", linker.ModeTopLevel},
		{"ALL-FILES-HARD", linker.ModeAllFilesHard},
		{" single-dir ", linker.ModeSingleDir},
		{"5", linker.ModeTopLevel},
		{"99", linker.ModeSingleFile},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := linker.ParseMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := linker.ParseMode("sideways")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestSlugsRoundTrip(t *testing.T) {
	assert.Len(t, linker.Slugs(), 9)
	for _, m := range linker.Modes() {
		parsed, err := linker.ParseMode(m.Slug())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}
