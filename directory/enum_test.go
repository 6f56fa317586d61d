package directory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsift/directory"
)

func TestParseEnum(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		complete bool
		want     []string
		wantErr  bool
	}{
		{name: "ordered elements", in: "{top, person, organizationalPerson, user}", want: []string{"top", "person", "organizationalPerson", "user"}},
		{name: "single element", in: "{group}", want: []string{"group"}},
		{name: "empty braces", in: "{}", want: nil},
		{name: "whitespace only", in: "{   }", want: nil},
		{name: "bare truncation marker dropped", in: "{a, b, ...}", want: []string{"a", "b"}},
		{name: "marker glued to last element", in: "{a, b...}", want: []string{"a", "b"}},
		{name: "truncation fatal in complete mode", in: "{a, b, ...}", complete: true, wantErr: true},
		{name: "glued marker fatal in complete mode", in: "{a, b...}", complete: true, wantErr: true},
		{name: "complete mode passes full enums", in: "{top, group}", complete: true, want: []string{"top", "group"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := directory.ParseEnum(tt.in, tt.complete)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, directory.ErrTruncatedEnum)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsEnum(t *testing.T) {
	assert.True(t, directory.IsEnum("{top, group}"))
	assert.True(t, directory.IsEnum("{}"))
	assert.False(t, directory.IsEnum("plain value"))
	assert.False(t, directory.IsEnum("S-1-5-21-1-2-3-500"))
}
