package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	Unauthorized    = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidUserID   = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	InvalidRequest  = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, please retry later"}
)

// 资源查询错误。
var (
	WorkerNotFound      = Definition{Code: "WORKER_NOT_FOUND", Message: "Worker not found"}
	JobNotFound         = Definition{Code: "JOB_NOT_FOUND", Message: "Job not found"}
	ShiftNotFound       = Definition{Code: "SHIFT_NOT_FOUND", Message: "Shift not found"}
	OccurrenceNotFound  = Definition{Code: "OCCURRENCE_NOT_FOUND", Message: "Shift occurrence not found"}
	ApplicationNotFound = Definition{Code: "APPLICATION_NOT_FOUND", Message: "Application not found"}
)

// 报名模块错误。
var (
	ProfileIncomplete    = Definition{Code: "PROFILE_INCOMPLETE", Message: "Profile not completed"}
	DuplicateApplication = Definition{Code: "DUPLICATE_APPLICATION", Message: "Active application already exists for this shift"}
	NoVacancy            = Definition{Code: "NO_VACANCY", Message: "No vacancies available for this shift"}
	AlreadyTerminal      = Definition{Code: "ALREADY_TERMINAL", Message: "Application already completed, cancelled or marked no-show"}
	ShiftAlreadyStarted  = Definition{Code: "SHIFT_ALREADY_STARTED", Message: "Shift has already started"}
	ShiftAlreadyEnded    = Definition{Code: "SHIFT_ALREADY_ENDED", Message: "Shift has already ended"}
	NotUpcoming          = Definition{Code: "NOT_UPCOMING", Message: "Application is not in an upcoming state"}
	InvalidCancelReason  = Definition{Code: "INVALID_CANCEL_REASON", Message: "Invalid cancellation reason"}
)

// 考勤模块错误。
var (
	NotApplied        = Definition{Code: "NOT_APPLIED", Message: "No active application for this shift"}
	AlreadyClockedIn  = Definition{Code: "ALREADY_CLOCKED_IN", Message: "Already clocked in"}
	AlreadyClockedOut = Definition{Code: "ALREADY_CLOCKED_OUT", Message: "Already clocked out"}
	NotClockedIn      = Definition{Code: "NOT_CLOCKED_IN", Message: "Not clocked in yet"}
	OutsideGeofence   = Definition{Code: "OUTSIDE_GEOFENCE", Message: "Outside the job site geofence"}
	QRInvalid         = Definition{Code: "QR_INVALID", Message: "QR code invalid"}
	QRExpired         = Definition{Code: "QR_EXPIRED", Message: "QR code expired"}
	QRShiftMismatch   = Definition{Code: "QR_SHIFT_MISMATCH", Message: "QR code does not match this shift"}
)

// 并发与存储错误。
var (
	ConcurrencyConflict = Definition{Code: "CONCURRENCY_CONFLICT", Message: "Concurrent capacity update conflict, please retry"}
	CapacityCorrupted   = Definition{Code: "CAPACITY_CORRUPTED", Message: "Capacity counter would go out of range"}
	StorageFailure      = Definition{Code: "STORAGE_FAILURE", Message: "Unexpected storage failure"}
)

// SkipMessageError 消费者跳过消息（幂等命中），Ack 而不重投。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return e.Reason
}

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	Unauthorized.Code:         Unauthorized,
	InvalidUserID.Code:        InvalidUserID,
	InvalidRequest.Code:       InvalidRequest,
	TooManyRequests.Code:      TooManyRequests,
	WorkerNotFound.Code:       WorkerNotFound,
	JobNotFound.Code:          JobNotFound,
	ShiftNotFound.Code:        ShiftNotFound,
	OccurrenceNotFound.Code:   OccurrenceNotFound,
	ApplicationNotFound.Code:  ApplicationNotFound,
	ProfileIncomplete.Code:    ProfileIncomplete,
	DuplicateApplication.Code: DuplicateApplication,
	NoVacancy.Code:            NoVacancy,
	AlreadyTerminal.Code:      AlreadyTerminal,
	ShiftAlreadyStarted.Code:  ShiftAlreadyStarted,
	ShiftAlreadyEnded.Code:    ShiftAlreadyEnded,
	NotUpcoming.Code:          NotUpcoming,
	InvalidCancelReason.Code:  InvalidCancelReason,
	NotApplied.Code:           NotApplied,
	AlreadyClockedIn.Code:     AlreadyClockedIn,
	AlreadyClockedOut.Code:    AlreadyClockedOut,
	NotClockedIn.Code:         NotClockedIn,
	OutsideGeofence.Code:      OutsideGeofence,
	QRInvalid.Code:            QRInvalid,
	QRExpired.Code:            QRExpired,
	QRShiftMismatch.Code:      QRShiftMismatch,
	ConcurrencyConflict.Code:  ConcurrencyConflict,
	CapacityCorrupted.Code:    CapacityCorrupted,
	StorageFailure.Code:       StorageFailure,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
