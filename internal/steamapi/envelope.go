package steamapi

import "github.com/zhangpan-soft/steam-desktop-authenticator/models"

// FailureEnvelope normalizes a failed call: the header result code when the
// server sent one, NoConnection when the request never reached the server,
// Fail otherwise.
func FailureEnvelope[T any](meta CallMeta, err error) models.Envelope[T] {
	code := meta.Result
	if code == models.EResultInvalid {
		code = models.EResultNoConnection
		if meta.HTTPStatus != 0 {
			code = models.EResultFail
		}
	}
	return models.Envelope[T]{
		ResultCode: code,
		HTTPStatus: meta.HTTPStatus,
		Message:    err.Error(),
	}
}

// SuccessEnvelope wraps a decoded payload, defaulting the result code to OK
// when the server sent no header.
func SuccessEnvelope[T any](meta CallMeta, payload *T) models.Envelope[T] {
	code := meta.Result
	if code == models.EResultInvalid {
		code = models.EResultOK
	}
	return models.Envelope[T]{
		ResultCode: code,
		HTTPStatus: meta.HTTPStatus,
		Payload:    payload,
	}
}
