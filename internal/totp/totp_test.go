package totp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSharedSecret   = "AAECAwQFBgcICQoLDA0ODxAREhM="
	testIdentitySecret = "aWRlbnRpdHktc2VjcmV0LTAxMjM0NTY3ODlhYmNkZWY="
)

func TestGenerateCode(t *testing.T) {
	tests := []struct {
		name      string
		timestamp int64
		want      string
	}{
		{name: "window start", timestamp: 1700000010, want: "MQV58"},
		{name: "window end", timestamp: 1700000039, want: "MQV58"},
		{name: "next window", timestamp: 1700000040, want: "25J7P"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := GenerateCode(testSharedSecret, tt.timestamp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestGenerateCode_SameWindowSameCode(t *testing.T) {
	first, err := GenerateCode(testSharedSecret, 1700000010)
	require.NoError(t, err)
	second, err := GenerateCode(testSharedSecret, 1700000025)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateCode_InvalidSecret(t *testing.T) {
	_, err := GenerateCode("not base64 %%%", 1700000010)
	assert.Error(t, err)
}

func TestGenerateCode_Alphabet(t *testing.T) {
	code, err := GenerateCode(testSharedSecret, 1700000010)
	require.NoError(t, err)
	require.Len(t, code, 5)
	for _, ch := range code {
		assert.Contains(t, codeAlphabet, string(ch))
	}
}

func TestGenerateConfirmationKey(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{tag: "list", want: "A4IIi62P1MTo1bGAzAjh6GA4MS8="},
		{tag: "accept", want: "isaSDRLf7Dk2bojm1LLS4Vs1cGU="},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			key, err := GenerateConfirmationKey(testIdentitySecret, tt.tag, 1700000000)
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestGenerateConfirmationKey_TagChangesSignature(t *testing.T) {
	listKey, err := GenerateConfirmationKey(testIdentitySecret, "list", 1700000000)
	require.NoError(t, err)
	acceptKey, err := GenerateConfirmationKey(testIdentitySecret, "accept", 1700000000)
	require.NoError(t, err)
	assert.NotEqual(t, listKey, acceptKey)
}

func TestGenerateConfirmationKey_InvalidSecret(t *testing.T) {
	_, err := GenerateConfirmationKey("%%%", "list", 1700000000)
	assert.Error(t, err)
}

func TestProgress(t *testing.T) {
	assert.InDelta(t, 100, Progress(1700000010), 0.001, "full at window start")
	assert.InDelta(t, 50, Progress(1700000025), 0.001)
	assert.InDelta(t, float64(1)/30*100, Progress(1700000039), 0.001, "almost empty at window end")
}
