package models

// EResult is the platform's integer status code convention. Only the values
// this client actually branches on are enumerated; everything else is carried
// through untouched.
type EResult int

const (
	EResultInvalid                         EResult = 0
	EResultOK                              EResult = 1
	EResultFail                            EResult = 2
	EResultNoConnection                    EResult = 3
	EResultInvalidPassword                 EResult = 5
	EResultInvalidParam                    EResult = 8
	EResultFileNotFound                    EResult = 9
	EResultBusy                            EResult = 10
	EResultAccessDenied                    EResult = 15
	EResultTimeout                         EResult = 16
	EResultDuplicateName                   EResult = 17
	EResultServiceUnavailable              EResult = 20
	EResultExpired                         EResult = 27
	EResultDuplicateRequest                EResult = 29
	EResultAccountLogonDenied              EResult = 63
	EResultRateLimitExceeded               EResult = 84
	EResultTwoFactorCodeMismatch           EResult = 85
	EResultTwoFactorActivationCodeMismatch EResult = 88
)

// Succeeded reports whether the code denotes a successful operation.
func (r EResult) Succeeded() bool { return r == EResultOK }
