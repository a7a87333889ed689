package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeExamNotFound  = "exam_not_found"
	ErrCodeNoOpenAttempt = "no_open_attempt"
	ErrCodeAlreadyExists = "already_exists"

	// Identity errors
	ErrCodeRegistrationFailed = "registration_failed"
	ErrCodeLoginFailed        = "login_failed"
	ErrCodeRefreshFailed      = "refresh_failed"

	// Exam flow errors
	ErrCodeSubmitFailed  = "submit_failed"
	ErrCodeAdvanceFailed = "advance_failed"
	ErrCodeResultFailed  = "result_failed"

	// Server errors
	ErrCodeInternalError = "internal_error"
	ErrCodeUpstreamError = "upstream_error"

	// OAuth errors
	ErrCodeOAuthNotConfigured  = "oauth_not_configured"
	ErrCodeOAuthStartFailed    = "oauth_start_failed"
	ErrCodeOAuthCallbackFailed = "oauth_callback_failed"
	ErrCodeOAuthMissingCode    = "missing_code"
	ErrCodeOAuthInvalidState   = "invalid_state"
	ErrCodeUserCreationFailed  = "user_creation_failed"

	// Leaderboard errors
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"
)
