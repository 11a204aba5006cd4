// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 zhangpan-soft

// Package confirm lists, inspects and resolves pending mobile
// confirmations. Every outcome is a normalized envelope; transport and
// protocol failures never escape as raw errors.
package confirm

import (
	"context"
	"encoding/json"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/logger"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/steamapi"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/totp"
	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

const (
	tagList   = "list"
	tagDetail = "detail"
	tagAccept = "accept"
	tagReject = "reject"

	opAllow  = "allow"
	opCancel = "cancel"
)

// Service is the confirmation client. It owns session freshness: an
// expired refresh token fails immediately without touching the
// network, an expired access token triggers exactly one refresh login
// whose result is persisted before the call proceeds.
type Service struct {
	api       CommunityAPI
	accounts  AccountStore
	refresher SessionRefresher
	clock     Clock
	history   HistoryRecorder
	logger    *logger.Logger
}

func NewService(api CommunityAPI, accounts AccountStore, refresher SessionRefresher, clock Clock, history HistoryRecorder, log *logger.Logger) *Service {
	return &Service{
		api:       api,
		accounts:  accounts,
		refresher: refresher,
		clock:     clock,
		history:   history,
		logger:    log,
	}
}

// List fetches the account's pending confirmations.
func (s *Service) List(ctx context.Context, accountName, passkey string) models.Envelope[models.ConfirmationList] {
	record, failure := s.freshRecord(ctx, accountName, passkey)
	if failure != nil {
		return *envelopeFrom[models.ConfirmationList](failure)
	}

	list, meta, err := s.api.FetchConfirmations(ctx, s.signedQuery(ctx, record, tagList))
	if err != nil {
		return steamapi.FailureEnvelope[models.ConfirmationList](meta, err)
	}
	return steamapi.SuccessEnvelope(meta, list)
}

// Detail fetches the raw detail body of one confirmation.
func (s *Service) Detail(ctx context.Context, accountName, passkey, confirmationID string) models.Envelope[json.RawMessage] {
	record, failure := s.freshRecord(ctx, accountName, passkey)
	if failure != nil {
		return *envelopeFrom[json.RawMessage](failure)
	}

	raw, meta, err := s.api.FetchConfirmationDetail(ctx, s.signedQuery(ctx, record, tagDetail), confirmationID)
	if err != nil {
		return steamapi.FailureEnvelope[json.RawMessage](meta, err)
	}
	return steamapi.SuccessEnvelope(meta, &raw)
}

// Accept approves a pending confirmation.
func (s *Service) Accept(ctx context.Context, accountName, passkey string, confirmation models.Confirmation) models.Envelope[models.ConfirmationActionResult] {
	return s.act(ctx, accountName, passkey, confirmation, opAllow, tagAccept)
}

// Cancel rejects a pending confirmation.
func (s *Service) Cancel(ctx context.Context, accountName, passkey string, confirmation models.Confirmation) models.Envelope[models.ConfirmationActionResult] {
	return s.act(ctx, accountName, passkey, confirmation, opCancel, tagReject)
}

func (s *Service) act(ctx context.Context, accountName, passkey string, confirmation models.Confirmation, op, tag string) models.Envelope[models.ConfirmationActionResult] {
	record, failure := s.freshRecord(ctx, accountName, passkey)
	if failure != nil {
		return *envelopeFrom[models.ConfirmationActionResult](failure)
	}

	result, meta, err := s.api.SendConfirmationOp(ctx, s.signedQuery(ctx, record, tag), op, confirmation.ID, confirmation.Nonce)

	var envelope models.Envelope[models.ConfirmationActionResult]
	if err != nil {
		envelope = steamapi.FailureEnvelope[models.ConfirmationActionResult](meta, err)
	} else {
		envelope = steamapi.SuccessEnvelope(meta, result)
	}

	s.recordAction(ctx, accountName, confirmation, op, envelope.ResultCode)
	return envelope
}

// failure carries a pre-normalized refusal out of freshRecord.
type failure struct {
	code    models.EResult
	status  int
	message string
}

// freshRecord loads the account and enforces session freshness. The
// refresh-token check runs before any network call; only an elapsed
// access token triggers the single refresh login.
func (s *Service) freshRecord(ctx context.Context, accountName, passkey string) (*models.SteamAccount, *failure) {
	record, err := s.accounts.Get(ctx, accountName, passkey)
	if err != nil {
		return nil, &failure{code: models.EResultFail, message: err.Error()}
	}

	session := record.Session
	if session == nil || (session.AccessToken == "" && session.RefreshToken == "") {
		return nil, &failure{code: models.EResultAccessDenied, message: "Session not found"}
	}

	now := s.clock.Now().Unix()
	if session.RefreshExpiry < now {
		return nil, &failure{code: models.EResultExpired, message: "Session Expired"}
	}

	if session.AccessExpiry < now {
		event, err := s.refresher.RefreshLogin(ctx, accountName, session.RefreshToken)
		if err != nil {
			return nil, &failure{code: models.EResultNoConnection, message: err.Error()}
		}
		if event.Status != models.StatusLoginSuccess || !event.ResultCode.Succeeded() {
			code := event.ResultCode
			if code == models.EResultInvalid {
				code = models.EResultFail
			}
			return nil, &failure{code: code, message: event.ErrorMessage}
		}

		record.Session = models.NewSessionFromLoginData(event.Data)
		if err := s.accounts.Update(ctx, record, passkey); err != nil {
			return nil, &failure{code: models.EResultFail, message: err.Error()}
		}
		s.logger.Info().Str("account", accountName).Msg("session refreshed before confirmation call")
	}

	return record, nil
}

// signedQuery signs one confirmation request with a fresh key for tag
// at the synchronized timestamp.
func (s *Service) signedQuery(ctx context.Context, record *models.SteamAccount, tag string) steamapi.ConfirmationQuery {
	s.clock.EnsureFresh(ctx)
	timestamp := s.clock.Now().Unix()

	key, err := totp.GenerateConfirmationKey(record.IdentitySecret, tag, timestamp)
	if err != nil {
		// A malformed identity secret yields an unsigned request the
		// server will refuse with a normal failure envelope.
		s.logger.Warn().Err(err).Str("account", record.AccountName).Msg("confirmation key generation failed")
	}

	steamID := record.SteamID
	if record.Session != nil && record.Session.SteamID != "" {
		steamID = record.Session.SteamID
	}

	var cookies []string
	if record.Session != nil {
		cookies = record.Session.Cookies
	}

	return steamapi.ConfirmationQuery{
		DeviceID:  record.DeviceID,
		SteamID:   steamID,
		Key:       key,
		Timestamp: timestamp,
		Tag:       tag,
		Cookies:   cookies,
	}
}

func (s *Service) recordAction(ctx context.Context, accountName string, confirmation models.Confirmation, op string, code models.EResult) {
	if s.history == nil {
		return
	}
	err := s.history.RecordAction(ctx, models.ConfirmationHistoryEntry{
		AccountName:    accountName,
		ConfirmationID: confirmation.ID,
		Type:           confirmation.Type,
		Headline:       confirmation.Headline,
		Action:         op,
		ResultCode:     code,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("account", accountName).Msg("confirmation history write failed")
	}
}

func envelopeFrom[T any](f *failure) *models.Envelope[T] {
	return &models.Envelope[T]{
		ResultCode: f.code,
		HTTPStatus: f.status,
		Message:    f.message,
	}
}

