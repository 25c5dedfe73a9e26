package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed      = errors.New("validation failed")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrPoolNameRequired      = errors.New("pool name is required")
	ErrUnknownGameType       = errors.New("unknown game type")
	ErrLockTimeRequired      = errors.New("pool lock time is required")
	ErrLockTimeInPast        = errors.New("pool lock time must be in the future")
	ErrInvalidScoring        = errors.New("invalid scoring settings")
	ErrEntriesLocked         = errors.New("entries are locked for this pool")
	ErrEntryEmpty            = errors.New("entry must contain at least one pick")
	ErrEntryPickInvalid      = errors.New("pick references an unknown matchup or team")
	ErrPoolNotOpen           = errors.New("pool is not open for entries")
	ErrPoolNotInSetup        = errors.New("bracket configuration is only editable while the pool is in setup")
	ErrResultUnknownMatchup  = errors.New("matchup does not exist in this bracket")
	ErrResultUnknownTeam     = errors.New("team does not belong to this matchup's bracket")
	ErrResultsNotAcceptable  = errors.New("results can only be recorded for locked pools")
	ErrInviteExpired         = errors.New("invite has expired")
	ErrAlreadyMember         = errors.New("user is already a member of this pool")
	ErrOwnerCannotLeave      = errors.New("pool owner cannot be removed from the pool")
	ErrFinalizeNotReady      = errors.New("pool cannot be finalized yet")

	// Ошибки конфликтов
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserNicknameConflict = errors.New("nickname is already in use")
	ErrPoolNameConflict     = errors.New("pool name already exists for this owner")
	ErrSeedConflict         = errors.New("duplicate seed within a region")
	ErrExceptionConflict    = errors.New("visibility exception already granted")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
	ErrOwnerActionForbidden = errors.New("only the pool owner can perform this action")

	// Ошибки, специфичные для сущностей (могут дублировать ErrNotFound, но дают больше контекста)
	ErrUserNotFound      = errors.New("user not found")
	ErrPoolNotFound      = errors.New("pool not found")
	ErrRegionNotFound    = errors.New("region not found")
	ErrTeamNotFound      = errors.New("team not found")
	ErrEntryNotFound     = errors.New("entry not found")
	ErrResultNotFound    = errors.New("result not found")
	ErrInviteNotFound    = errors.New("invite not found")
	ErrMemberNotFound    = errors.New("pool member not found")
	ErrExceptionNotFound = errors.New("visibility exception not found")

	// Ошибки жизненного цикла пула
	ErrPoolInvalidStatus           = errors.New("invalid pool status provided")
	ErrPoolInvalidStatusTransition = errors.New("invalid pool status transition")
	ErrPoolActivationBlocked       = errors.New("pool cannot be opened: bracket configuration has problems")
)
