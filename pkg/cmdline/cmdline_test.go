package cmdline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/tally/pkg/errors"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want []string
	}{
		{
			name: "quoted program with spaces",
			cmd:  `"C:\Program Files\Tool\uninst.exe" /S`,
			want: []string{`C:\Program Files\Tool\uninst.exe`, "/S"},
		},
		{
			name: "bare program",
			cmd:  `C:\Tool\uninst.exe`,
			want: []string{`C:\Tool\uninst.exe`},
		},
		{
			name: "msiexec",
			cmd:  `MsiExec.exe /X{11111111-2222-3333-4444-555555555555}`,
			want: []string{"MsiExec.exe", "/X{11111111-2222-3333-4444-555555555555}"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplit_Empty(t *testing.T) {
	_, err := Split("   ")
	assert.True(t, errors.Is(err, errors.ErrParse))
}

func TestFirst(t *testing.T) {
	got, err := First(`"C:\A B\x.exe" --quiet`)
	require.NoError(t, err)
	assert.Equal(t, `C:\A B\x.exe`, got)
}
