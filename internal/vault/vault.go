// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 zhangpan-soft

// Package vault stores one encrypted record file per account under the
// configured maFiles directory and keeps the settings index in step
// with the files on disk.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/config"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/crypto"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/logger"
	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

const recordExtension = ".maFile"

// Vault is the process-wide registry of account record handles. Each
// account name owns one handle with its own lock, so operations on
// different accounts never block each other while all operations on one
// account are serialized.
type Vault struct {
	codec    crypto.SecretCodec
	settings *config.Store
	logger   *logger.Logger

	mu      sync.Mutex
	handles map[string]*handle
}

// handle caches the last successfully decoded record for one account.
// The cache is only trusted while the passkey it was decoded under
// stays the same.
type handle struct {
	mu      sync.Mutex
	record  *models.SteamAccount
	passkey string
	cached  bool
}

func NewVault(codec crypto.SecretCodec, settings *config.Store, log *logger.Logger) *Vault {
	return &Vault{
		codec:    codec,
		settings: settings,
		logger:   log,
		handles:  make(map[string]*handle),
	}
}

func (v *Vault) handleFor(accountName string) *handle {
	v.mu.Lock()
	defer v.mu.Unlock()
	h, ok := v.handles[accountName]
	if !ok {
		h = &handle{}
		v.handles[accountName] = h
	}
	return h
}

func (v *Vault) recordPath(accountName string) string {
	return filepath.Join(v.settings.Settings().MaFilesDir, accountName+recordExtension)
}

// Get returns the stored record for accountName. A missing file is the
// only condition reported as ErrNotFound; decode failures surface as
// the codec's own errors.
func (v *Vault) Get(ctx context.Context, accountName, passkey string) (*models.SteamAccount, error) {
	h := v.handleFor(accountName)
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cached && h.passkey == passkey {
		return h.record.Clone(), nil
	}

	record, err := v.readLocked(ctx, accountName, passkey)
	if err != nil {
		return nil, err
	}

	h.record = record
	h.passkey = passkey
	h.cached = true

	return record.Clone(), nil
}

// Create writes a fresh record for accountName and registers it in the
// settings index. An existing file wins over the caller.
func (v *Vault) Create(ctx context.Context, record *models.SteamAccount, passkey string) error {
	if record == nil || record.AccountName == "" {
		return fmt.Errorf("record must carry an account name")
	}

	h := v.handleFor(record.AccountName)
	h.mu.Lock()
	defer h.mu.Unlock()

	path := v.recordPath(record.AccountName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("account %q: %w", record.AccountName, ErrAlreadyExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat record file: %w", err)
	}

	if err := v.writeLocked(ctx, record, passkey); err != nil {
		return err
	}

	h.record = record.Clone()
	h.passkey = passkey
	h.cached = true

	v.logger.Info().Str("account", record.AccountName).Msg("vault record created")
	return nil
}

// Update rewrites accountName's record. The stored session sub-object
// is wholly replaced by whatever the record carries, never merged.
func (v *Vault) Update(ctx context.Context, record *models.SteamAccount, passkey string) error {
	if record == nil || record.AccountName == "" {
		return fmt.Errorf("record must carry an account name")
	}

	h := v.handleFor(record.AccountName)
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := v.writeLocked(ctx, record, passkey); err != nil {
		return err
	}

	h.record = record.Clone()
	h.passkey = passkey
	h.cached = true
	return nil
}

// SetPasskey re-encrypts accountName's record in place. The account's
// handle stays locked for the whole re-encryption, so no concurrent
// read can observe the half-switched state.
func (v *Vault) SetPasskey(ctx context.Context, accountName, oldPasskey, newPasskey string) error {
	h := v.handleFor(accountName)
	h.mu.Lock()
	defer h.mu.Unlock()

	record, err := v.readLocked(ctx, accountName, oldPasskey)
	if err != nil {
		return err
	}

	if err := v.writeLocked(ctx, record, newPasskey); err != nil {
		return err
	}

	h.record = record
	h.passkey = newPasskey
	h.cached = true

	v.logger.Info().Str("account", accountName).Msg("vault record re-encrypted")
	return nil
}

// Remove deletes accountName's record file, its index entry and its
// cached handle.
func (v *Vault) Remove(accountName string) error {
	h := v.handleFor(accountName)
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.Remove(v.recordPath(accountName)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("account %q: %w", accountName, ErrNotFound)
		}
		return fmt.Errorf("remove record file: %w", err)
	}

	if err := v.settings.RemoveEntry(accountName); err != nil {
		return fmt.Errorf("remove index entry: %w", err)
	}

	v.mu.Lock()
	delete(v.handles, accountName)
	v.mu.Unlock()

	v.logger.Info().Str("account", accountName).Msg("vault record removed")
	return nil
}

// ImportLegacy reads a record exported by the old desktop authenticator
// (encrypted with its CBC codec when the manifest entry carries iv and
// salt, plaintext otherwise) and re-writes it in the vault's own
// format under the current passkey.
func (v *Vault) ImportLegacy(ctx context.Context, entry models.ManifestEntry, path, password, passkey string) (*models.SteamAccount, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("import %q: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read legacy record: %w", err)
	}

	var record models.SteamAccount
	if entry.EncryptionIV != "" && entry.EncryptionSalt != "" {
		err = v.codec.DecodeLegacy(ctx, string(content), password, entry.EncryptionSalt, entry.EncryptionIV, &record)
	} else {
		err = v.codec.Decode(ctx, content, "", &record)
	}
	if err != nil {
		return nil, err
	}

	if record.AccountName == "" {
		record.AccountName = entry.AccountName
	}

	if err := v.Create(ctx, &record, passkey); err != nil {
		return nil, err
	}
	return &record, nil
}

// Accounts lists the account names present in the settings index.
func (v *Vault) Accounts() []string {
	entries := v.settings.Settings().Entries
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.AccountName)
	}
	return names
}

// Verify checks the index invariant: every entry references an
// existing, readable record file.
func (v *Vault) Verify() error {
	for _, entry := range v.settings.Settings().Entries {
		path := filepath.Join(v.settings.Settings().MaFilesDir, entry.Filename)
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("account %q, file %q: %w", entry.AccountName, entry.Filename, ErrIndexMismatch)
		}
		_ = file.Close()
	}
	return nil
}

// Evict drops accountName's cached handle. The record file stays.
func (v *Vault) Evict(accountName string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.handles, accountName)
}

// Clear drops every cached handle. Called on lock and exit so decoded
// secrets do not outlive the passkey.
func (v *Vault) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.handles = make(map[string]*handle)
}

func (v *Vault) readLocked(ctx context.Context, accountName, passkey string) (*models.SteamAccount, error) {
	content, err := os.ReadFile(v.recordPath(accountName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("account %q: %w", accountName, ErrNotFound)
		}
		return nil, fmt.Errorf("read record file: %w", err)
	}

	var record models.SteamAccount
	if err := v.codec.Decode(ctx, content, passkey, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (v *Vault) writeLocked(ctx context.Context, record *models.SteamAccount, passkey string) error {
	encoded, err := v.codec.Encode(ctx, record, passkey)
	if err != nil {
		return err
	}

	dir := v.settings.Settings().MaFilesDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create vault directory: %w", err)
	}

	path := v.recordPath(record.AccountName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("write record file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace record file: %w", err)
	}

	return v.settings.UpsertEntry(models.ManifestEntry{
		AccountName: record.AccountName,
		SteamID:     record.SteamID,
		Filename:    record.AccountName + recordExtension,
	})
}
