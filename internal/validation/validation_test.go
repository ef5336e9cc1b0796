package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/tweetgen-bot/internal/errs"
)

func TestTopic(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   \t\n", wantErr: true},
		{name: "too short", input: "ab", wantErr: true},
		{name: "too short after trim", input: "  ab  ", wantErr: true},
		{name: "minimum length", input: "abc", want: "abc"},
		{name: "trims surrounding whitespace", input: "  remote work trends  ", want: "remote work trends"},
		{name: "interior whitespace untouched", input: "AI  in   healthcare", want: "AI  in   healthcare"},
		{name: "maximum length", input: strings.Repeat("a", 100), want: strings.Repeat("a", 100)},
		{name: "too long", input: strings.Repeat("a", 101), wantErr: true},
		{name: "long but trims into bounds", input: "  " + strings.Repeat("a", 100) + "  ", want: strings.Repeat("a", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Topic(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errs.KindValidation, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
