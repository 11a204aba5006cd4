package crypto

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	AccountName  string `json:"account_name"`
	SharedSecret string `json:"shared_secret"`
}

func TestAccountCodec_EncodeDecode_RoundTrip(t *testing.T) {
	codec := NewAccountCodec()
	ctx := context.Background()
	original := testRecord{AccountName: "alice", SharedSecret: "c2VjcmV0"}

	encoded, err := codec.Encode(ctx, original, "hunter2")
	require.NoError(t, err)

	fields := strings.Split(encoded, "/")
	require.Len(t, fields, 4)
	iv, err := hex.DecodeString(fields[0])
	require.NoError(t, err)
	assert.Len(t, iv, 12)
	salt, err := hex.DecodeString(fields[1])
	require.NoError(t, err)
	assert.Len(t, salt, 16)
	tag, err := hex.DecodeString(fields[2])
	require.NoError(t, err)
	assert.Len(t, tag, 16)

	var decoded testRecord
	err = codec.Decode(ctx, []byte(encoded), "hunter2", &decoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestAccountCodec_Encode_FreshNonceAndSalt(t *testing.T) {
	codec := NewAccountCodec()
	ctx := context.Background()
	record := testRecord{AccountName: "alice"}

	first, err := codec.Encode(ctx, record, "hunter2")
	require.NoError(t, err)
	second, err := codec.Encode(ctx, record, "hunter2")
	require.NoError(t, err)

	firstFields := strings.Split(first, "/")
	secondFields := strings.Split(second, "/")
	assert.NotEqual(t, firstFields[0], secondFields[0], "iv must be fresh per write")
	assert.NotEqual(t, firstFields[1], secondFields[1], "salt must be fresh per write")
}

func TestAccountCodec_Encode_NoPasskeyIsPlainJSON(t *testing.T) {
	codec := NewAccountCodec()
	ctx := context.Background()

	encoded, err := codec.Encode(ctx, testRecord{AccountName: "bob"}, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"account_name":"bob","shared_secret":""}`, encoded)

	var decoded testRecord
	require.NoError(t, codec.Decode(ctx, []byte(encoded), "", &decoded))
	assert.Equal(t, "bob", decoded.AccountName)
}

func TestAccountCodec_Decode_WrongPasskey(t *testing.T) {
	codec := NewAccountCodec()
	ctx := context.Background()

	encoded, err := codec.Encode(ctx, testRecord{AccountName: "alice"}, "correct")
	require.NoError(t, err)

	var decoded testRecord
	err = codec.Decode(ctx, []byte(encoded), "wrong", &decoded)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestAccountCodec_Decode_TamperedContent(t *testing.T) {
	codec := NewAccountCodec()
	ctx := context.Background()

	encoded, err := codec.Encode(ctx, testRecord{AccountName: "alice"}, "hunter2")
	require.NoError(t, err)
	fields := strings.Split(encoded, "/")

	flipHexBit := func(s string) string {
		raw, err := hex.DecodeString(s)
		require.NoError(t, err)
		raw[0] ^= 0x01
		return hex.EncodeToString(raw)
	}

	t.Run("tampered ciphertext", func(t *testing.T) {
		tampered := strings.Join([]string{fields[0], fields[1], fields[2], flipHexBit(fields[3])}, "/")
		var decoded testRecord
		err := codec.Decode(ctx, []byte(tampered), "hunter2", &decoded)
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("tampered tag", func(t *testing.T) {
		tampered := strings.Join([]string{fields[0], fields[1], flipHexBit(fields[2]), fields[3]}, "/")
		var decoded testRecord
		err := codec.Decode(ctx, []byte(tampered), "hunter2", &decoded)
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})
}

func TestAccountCodec_Decode_EncryptedWithoutPasskey(t *testing.T) {
	codec := NewAccountCodec()
	ctx := context.Background()

	encoded, err := codec.Encode(ctx, testRecord{AccountName: "alice"}, "hunter2")
	require.NoError(t, err)

	var decoded testRecord
	err = codec.Decode(ctx, []byte(encoded), "", &decoded)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestAccountCodec_Decode_PlainJSONWithPasskey(t *testing.T) {
	// Records written before encryption was enabled stay readable.
	codec := NewAccountCodec()

	var decoded testRecord
	err := codec.Decode(context.Background(), []byte(`{"account_name":"carol"}`), "hunter2", &decoded)
	require.NoError(t, err)
	assert.Equal(t, "carol", decoded.AccountName)
}

func TestAccountCodec_Decode_MalformedContent(t *testing.T) {
	codec := NewAccountCodec()
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		passkey string
	}{
		{name: "garbage without passkey", content: "not json at all", passkey: ""},
		{name: "garbage with passkey", content: "not json at all", passkey: "hunter2"},
		{name: "four fields but not hex", content: "zz/zz/zz/zz", passkey: "hunter2"},
		{name: "short iv", content: "0000/00000000000000000000000000000000/00/00", passkey: "hunter2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decoded testRecord
			err := codec.Decode(ctx, []byte(tt.content), tt.passkey, &decoded)
			assert.ErrorIs(t, err, ErrMalformedData)
		})
	}
}

func TestAccountCodec_DecodeLegacy_KnownAnswer(t *testing.T) {
	codec := NewAccountCodec()

	var decoded testRecord
	err := codec.DecodeLegacy(
		context.Background(),
		"I/f548MxTYrYwaRYNQg/VWiP013LMzWEf6+VeHgRZvYV8rysEYUii23AWglO57nP2g3tgRt9kGKiBW/LbZUwuw==",
		"legacy-pass",
		"AAECAwQFBgcICQoLDA0ODw==",
		"EBESExQVFhcYGRobHB0eHw==",
		&decoded,
	)
	require.NoError(t, err)
	assert.Equal(t, "legacyuser", decoded.AccountName)
	assert.Equal(t, "c2VjcmV0", decoded.SharedSecret)
}

func TestAccountCodec_DecodeLegacy_WrongPassword(t *testing.T) {
	codec := NewAccountCodec()

	var decoded testRecord
	err := codec.DecodeLegacy(
		context.Background(),
		"I/f548MxTYrYwaRYNQg/VWiP013LMzWEf6+VeHgRZvYV8rysEYUii23AWglO57nP2g3tgRt9kGKiBW/LbZUwuw==",
		"not-the-password",
		"AAECAwQFBgcICQoLDA0ODw==",
		"EBESExQVFhcYGRobHB0eHw==",
		&decoded,
	)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestAccountCodec_DecodeLegacy_BadInputs(t *testing.T) {
	codec := NewAccountCodec()
	ctx := context.Background()

	var decoded testRecord
	err := codec.DecodeLegacy(ctx, "%%%", "pw", "AAECAwQFBgcICQoLDA0ODw==", "EBESExQVFhcYGRobHB0eHw==", &decoded)
	assert.ErrorIs(t, err, ErrMalformedData)

	err = codec.DecodeLegacy(ctx, "c2hvcnQ=", "pw", "AAECAwQFBgcICQoLDA0ODw==", "EBESExQVFhcYGRobHB0eHw==", &decoded)
	assert.ErrorIs(t, err, ErrMalformedData, "ciphertext must be a whole number of blocks")
}
