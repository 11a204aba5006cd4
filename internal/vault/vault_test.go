package vault

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/config"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/crypto"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/logger"
	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()

	dir := t.TempDir()
	store, err := config.NewStore(&config.Settings{
		MaFilesDir:   filepath.Join(dir, "maFiles"),
		SettingsPath: filepath.Join(dir, "settings.json"),
	})
	require.NoError(t, err)

	return NewVault(crypto.NewAccountCodec(), store, logger.Nop())
}

func testRecord(accountName string) *models.SteamAccount {
	return &models.SteamAccount{
		AccountName:    accountName,
		SteamID:        "76561199000000001",
		SharedSecret:   "AAECAwQFBgcICQoLDA0ODxAREhM=",
		IdentitySecret: "aWRlbnRpdHktc2VjcmV0LTAxMjM0NTY3ODlhYmNkZWY=",
		RevocationCode: "R12345",
		DeviceID:       "android:test-device",
		FullyEnrolled:  true,
	}
}

func TestVault_CreateThenGet_Encrypted(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.Create(ctx, testRecord("alice"), "pw1"))

	content, err := os.ReadFile(v.recordPath("alice"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(content), "/"), 4, "encrypted file has the four-field layout")

	got, err := v.Get(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, testRecord("alice"), got)
}

func TestVault_CreateThenGet_Plaintext(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.Create(ctx, testRecord("alice"), ""))

	content, err := os.ReadFile(v.recordPath("alice"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "{"), "no passkey means raw JSON on disk")

	got, err := v.Get(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.AccountName)
}

func TestVault_Create_AlreadyExists(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.Create(ctx, testRecord("alice"), ""))
	err := v.Create(ctx, testRecord("alice"), "")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestVault_Get_NotFound(t *testing.T) {
	v := newTestVault(t)

	_, err := v.Get(context.Background(), "nobody", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVault_Update_ReplacesSessionWholly(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	record := testRecord("alice")
	record.Session = &models.SteamSession{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		Cookies:      []string{"sessionid=old"},
	}
	require.NoError(t, v.Create(ctx, record, ""))

	updated := testRecord("alice")
	updated.Session = &models.SteamSession{AccessToken: "new-access"}
	require.NoError(t, v.Update(ctx, updated, ""))

	got, err := v.Get(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "new-access", got.Session.AccessToken)
	assert.Empty(t, got.Session.RefreshToken, "old session fields never leak into the new one")
	assert.Empty(t, got.Session.Cookies)
}

func TestVault_SetPasskey_ReencryptsInPlace(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.Create(ctx, testRecord("alice"), ""))
	require.NoError(t, v.SetPasskey(ctx, "alice", "", "pw1"))

	content, err := os.ReadFile(v.recordPath("alice"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(content), "/"), 4)

	got, err := v.Get(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.AccountName)

	v.Evict("alice")
	_, err = v.Get(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}

func TestVault_Remove(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.Create(ctx, testRecord("alice"), ""))
	require.NoError(t, v.Remove("alice"))

	_, err := v.Get(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, v.Accounts())

	assert.ErrorIs(t, v.Remove("alice"), ErrNotFound)
}

func TestVault_IndexFollowsRecords(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.Create(ctx, testRecord("alice"), ""))
	require.NoError(t, v.Create(ctx, testRecord("bob"), ""))

	assert.ElementsMatch(t, []string{"alice", "bob"}, v.Accounts())
	assert.NoError(t, v.Verify())

	require.NoError(t, os.Remove(v.recordPath("bob")))
	assert.ErrorIs(t, v.Verify(), ErrIndexMismatch)
}

func TestVault_ImportLegacy_Encrypted(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "legacyuser.maFile")
	ciphertext := "I/f548MxTYrYwaRYNQg/VWiP013LMzWEf6+VeHgRZvYV8rysEYUii23AWglO57nP2g3tgRt9kGKiBW/LbZUwuw=="
	require.NoError(t, os.WriteFile(path, []byte(ciphertext), 0o600))

	entry := models.ManifestEntry{
		AccountName:    "legacyuser",
		Filename:       "legacyuser.maFile",
		EncryptionIV:   "EBESExQVFhcYGRobHB0eHw==",
		EncryptionSalt: "AAECAwQFBgcICQoLDA0ODw==",
	}

	record, err := v.ImportLegacy(ctx, entry, path, "legacy-pass", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "legacyuser", record.AccountName)
	assert.Equal(t, "c2VjcmV0", record.SharedSecret)

	got, err := v.Get(ctx, "legacyuser", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "c2VjcmV0", got.SharedSecret)
}

func TestVault_ImportLegacy_Plaintext(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "plainuser.maFile")
	require.NoError(t, os.WriteFile(path, []byte(`{"account_name":"plainuser","shared_secret":"c2VjcmV0"}`), 0o600))

	record, err := v.ImportLegacy(ctx, models.ManifestEntry{AccountName: "plainuser", Filename: "plainuser.maFile"}, path, "", "")
	require.NoError(t, err)
	assert.Equal(t, "plainuser", record.AccountName)
}

func TestVault_Get_ReturnsIndependentCopies(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	record := testRecord("alice")
	record.Session = &models.SteamSession{AccessToken: "token"}
	require.NoError(t, v.Create(ctx, record, ""))

	first, err := v.Get(ctx, "alice", "")
	require.NoError(t, err)
	first.Session.AccessToken = "mutated"
	first.RevocationCode = "mutated"

	second, err := v.Get(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "token", second.Session.AccessToken)
	assert.Equal(t, "R12345", second.RevocationCode)
}

func TestVault_ConcurrentAccountsDoNotInterfere(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	names := []string{"alice", "bob", "carol", "dave"}
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, v.Create(ctx, testRecord(name), ""))
			_, err := v.Get(ctx, name, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, names, v.Accounts())
}
