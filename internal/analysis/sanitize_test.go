package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFuncName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "main.foo", "main.foo"},
		{"embedded space", "type..eq.[9]string", "type..eq.[9]string"},
		{"spaces stripped", "main.(*T). Method", "main.(*T).Method"},
		{"only spaces", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SanitizeFuncName(tt.in))
		})
	}
}

func TestSanitizeFuncNameIdempotent(t *testing.T) {
	inputs := []string{"main. foo", "a b c", " x ", "no.spaces"}
	for _, in := range inputs {
		once := SanitizeFuncName(in)
		require.Equal(t, once, SanitizeFuncName(once))
	}
}

func TestSanitizeVarName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"run of mixed junk", "a  --b", "a_b"},
		{"run of underscores", "a___b", "a_b"},
		{"dots kept", "go.main.foo", "go.main.foo"},
		{"parens collapsed", "main.(*T).run", "main._T_.run"},
		{"clean", "abc123", "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SanitizeVarName(tt.in))
		})
	}
}

func TestSanitizeVarNameIdempotent(t *testing.T) {
	inputs := []string{"a  --b", "a___b", "main.(*T).run"}
	for _, in := range inputs {
		once := SanitizeVarName(in)
		require.Equal(t, once, SanitizeVarName(once))
	}
}
