// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 zhangpan-soft

// Package twofactor drives authenticator enrollment and removal, and serves
// rotating guard codes for stored accounts.
package twofactor

import (
	"context"
	"errors"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/logger"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/steamapi"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/totp"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/vault"
	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// finalizeRetryLimit bounds the want_more loop: the server may demand
// several consecutive codes before it accepts the enrollment.
const finalizeRetryLimit = 30

type Service struct {
	api      TwoFactorAPI
	accounts AccountVault
	clock    Clock
	runtime  *models.RuntimeContext
	logger   *logger.Logger
}

func NewService(api TwoFactorAPI, accounts AccountVault, clock Clock, runtime *models.RuntimeContext, log *logger.Logger) *Service {
	return &Service{
		api:      api,
		accounts: accounts,
		clock:    clock,
		runtime:  runtime,
		logger:   log,
	}
}

// Code generates the current guard code for a stored account together with
// the remaining window percentage. The last code is mirrored into the
// runtime context.
func (s *Service) Code(ctx context.Context, accountName, passkey string) (models.GuardCode, error) {
	record, err := s.accounts.Get(ctx, accountName, passkey)
	if err != nil {
		return models.GuardCode{}, err
	}

	s.clock.EnsureFresh(ctx)
	now := s.clock.Now().Unix()

	code, err := totp.GenerateCode(record.SharedSecret, now)
	if err != nil {
		return models.GuardCode{}, err
	}

	guard := models.GuardCode{Code: code, Progress: totp.Progress(now)}
	if s.runtime != nil {
		s.runtime.SetLastCode(guard.Code, guard.Progress)
	}
	return guard, nil
}

// Enroll registers a fresh device id and attaches an authenticator to the
// logged-in account. The returned secret material is written to the vault
// before this call returns; losing the record orphans the account, so the
// write happens even though finalization is still pending.
func (s *Service) Enroll(ctx context.Context, accessToken, passkey string) models.Envelope[models.AddAuthenticatorResponse] {
	deviceID, meta, err := s.api.RegisterMobileDevice(ctx, accessToken)
	if err != nil {
		return steamapi.FailureEnvelope[models.AddAuthenticatorResponse](meta, err)
	}

	body, meta, err := s.api.AddAuthenticator(ctx, accessToken, deviceID)
	if err != nil {
		return steamapi.FailureEnvelope[models.AddAuthenticatorResponse](meta, err)
	}
	if body.Status != 1 {
		return models.Envelope[models.AddAuthenticatorResponse]{
			ResultCode: models.EResult(body.Status),
			HTTPStatus: meta.HTTPStatus,
			Message:    "authenticator could not be added",
			Payload:    body,
		}
	}

	record, err := s.newRecord(accessToken, deviceID, body)
	if err != nil {
		return models.Envelope[models.AddAuthenticatorResponse]{
			ResultCode: models.EResultFail,
			HTTPStatus: meta.HTTPStatus,
			Message:    err.Error(),
		}
	}

	if err := s.accounts.Create(ctx, record, passkey); err != nil {
		code := models.EResultFail
		if errors.Is(err, vault.ErrAlreadyExists) {
			code = models.EResultDuplicateName
		}
		return models.Envelope[models.AddAuthenticatorResponse]{
			ResultCode: code,
			HTTPStatus: meta.HTTPStatus,
			Message:    err.Error(),
		}
	}

	s.logger.Info().Str("account", record.AccountName).Msg("authenticator enrolled, awaiting activation code")
	return steamapi.SuccessEnvelope(meta, body)
}

// Finalize completes a pending enrollment with the SMS activation code. The
// server may answer want_more, asking for the next consecutive code; the
// loop advances the timestamp one window per attempt.
func (s *Service) Finalize(ctx context.Context, accountName, passkey, accessToken, activationCode string) models.Envelope[models.FinalizeAddAuthenticatorResponse] {
	record, err := s.accounts.Get(ctx, accountName, passkey)
	if err != nil {
		return models.Envelope[models.FinalizeAddAuthenticatorResponse]{
			ResultCode: models.EResultFail,
			Message:    err.Error(),
		}
	}

	s.clock.EnsureFresh(ctx)
	timestamp := s.clock.Now().Unix()

	var (
		body *models.FinalizeAddAuthenticatorResponse
		meta steamapi.CallMeta
	)
	for attempt := 0; attempt < finalizeRetryLimit; attempt++ {
		code, codeErr := totp.GenerateCode(record.SharedSecret, timestamp)
		if codeErr != nil {
			return models.Envelope[models.FinalizeAddAuthenticatorResponse]{
				ResultCode: models.EResultFail,
				Message:    codeErr.Error(),
			}
		}

		body, meta, err = s.api.FinalizeAddAuthenticator(ctx, accessToken, activationCode, code, timestamp)
		if err != nil {
			return steamapi.FailureEnvelope[models.FinalizeAddAuthenticatorResponse](meta, err)
		}

		if body.WantMore {
			timestamp += totp.Period
			continue
		}
		break
	}

	if body == nil || !body.Success {
		code := meta.Result
		if code == models.EResultInvalid || code.Succeeded() {
			code = models.EResultTwoFactorActivationCodeMismatch
		}
		return models.Envelope[models.FinalizeAddAuthenticatorResponse]{
			ResultCode: code,
			HTTPStatus: meta.HTTPStatus,
			Message:    "enrollment was not finalized",
			Payload:    body,
		}
	}

	record.FullyEnrolled = true
	record.Status = body.Status
	if err := s.accounts.Update(ctx, record, passkey); err != nil {
		return models.Envelope[models.FinalizeAddAuthenticatorResponse]{
			ResultCode: models.EResultFail,
			HTTPStatus: meta.HTTPStatus,
			Message:    err.Error(),
		}
	}

	s.logger.Info().Str("account", accountName).Msg("authenticator fully enrolled")
	return steamapi.SuccessEnvelope(meta, body)
}

// BeginRemoval asks the platform to send the removal challenge SMS.
func (s *Service) BeginRemoval(ctx context.Context, accessToken string) models.Envelope[models.RemoveAuthenticatorChallengeResponse] {
	body, meta, err := s.api.RemoveAuthenticatorViaChallengeStart(ctx, accessToken)
	if err != nil {
		return steamapi.FailureEnvelope[models.RemoveAuthenticatorChallengeResponse](meta, err)
	}
	return steamapi.SuccessEnvelope(meta, body)
}

// ConfirmRemoval submits the challenge SMS code. When the platform hands
// back a replacement token the record's secret material is swapped in place
// and the account stays enrolled; otherwise the record is removed from the
// vault.
func (s *Service) ConfirmRemoval(ctx context.Context, accountName, passkey, accessToken, smsCode string) models.Envelope[models.RemoveAuthenticatorChallengeResponse] {
	body, meta, err := s.api.RemoveAuthenticatorViaChallengeContinue(ctx, accessToken, smsCode)
	if err != nil {
		return steamapi.FailureEnvelope[models.RemoveAuthenticatorChallengeResponse](meta, err)
	}
	if !body.Success {
		code := meta.Result
		if code == models.EResultInvalid || code.Succeeded() {
			code = models.EResultTwoFactorCodeMismatch
		}
		return models.Envelope[models.RemoveAuthenticatorChallengeResponse]{
			ResultCode: code,
			HTTPStatus: meta.HTTPStatus,
			Message:    "removal challenge was not accepted",
			Payload:    body,
		}
	}

	if body.ReplacementToken != nil {
		if err := s.swapSecrets(ctx, accountName, passkey, body.ReplacementToken); err != nil {
			return models.Envelope[models.RemoveAuthenticatorChallengeResponse]{
				ResultCode: models.EResultFail,
				HTTPStatus: meta.HTTPStatus,
				Message:    err.Error(),
			}
		}
		s.logger.Info().Str("account", accountName).Msg("authenticator secrets replaced")
		return steamapi.SuccessEnvelope(meta, body)
	}

	if err := s.accounts.Remove(accountName); err != nil && !errors.Is(err, vault.ErrNotFound) {
		return models.Envelope[models.RemoveAuthenticatorChallengeResponse]{
			ResultCode: models.EResultFail,
			HTTPStatus: meta.HTTPStatus,
			Message:    err.Error(),
		}
	}
	s.logger.Info().Str("account", accountName).Msg("authenticator removed")
	return steamapi.SuccessEnvelope(meta, body)
}

// Status reports the enrollment state of the account's authenticator.
func (s *Service) Status(ctx context.Context, accessToken string) models.Envelope[models.AuthenticatorStatusResponse] {
	body, meta, err := s.api.QueryAuthenticatorStatus(ctx, accessToken)
	if err != nil {
		return steamapi.FailureEnvelope[models.AuthenticatorStatusResponse](meta, err)
	}
	return steamapi.SuccessEnvelope(meta, body)
}

func (s *Service) newRecord(accessToken, deviceID string, body *models.AddAuthenticatorResponse) (*models.SteamAccount, error) {
	steamID, err := models.SteamIDFromAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	return &models.SteamAccount{
		AccountName:    body.AccountName,
		SteamID:        steamID,
		SharedSecret:   body.SharedSecret,
		IdentitySecret: body.IdentitySecret,
		RevocationCode: body.RevocationCode,
		SerialNumber:   body.SerialNumber,
		TokenGID:       body.TokenGID,
		DeviceID:       deviceID,
		Status:         body.Status,
	}, nil
}

func (s *Service) swapSecrets(ctx context.Context, accountName, passkey string, replacement *models.AddAuthenticatorResponse) error {
	record, err := s.accounts.Get(ctx, accountName, passkey)
	if err != nil {
		return err
	}

	record.SharedSecret = replacement.SharedSecret
	record.IdentitySecret = replacement.IdentitySecret
	record.RevocationCode = replacement.RevocationCode
	record.SerialNumber = replacement.SerialNumber
	record.TokenGID = replacement.TokenGID
	record.Status = replacement.Status
	record.FullyEnrolled = true

	return s.accounts.Update(ctx, record, passkey)
}
