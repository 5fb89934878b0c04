package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidConfiguration ErrorCode = 100
	ErrCodeMissingParameter     ErrorCode = 101
	ErrCodeInvalidParameter     ErrorCode = 102
	ErrCodeInvalidWindow        ErrorCode = 103
	ErrCodeInvalidGranularity   ErrorCode = 104

	// Data/Resource errors (200-299)
	ErrCodeDataUnavailable  ErrorCode = 200
	ErrCodeQueryFailed      ErrorCode = 201
	ErrCodeStoreUnavailable ErrorCode = 202
	ErrCodeScanFailed       ErrorCode = 203

	// Adjustment-factor errors (300-399)
	ErrCodeFactorMissing         ErrorCode = 300
	ErrCodeFactorBaseMissing     ErrorCode = 301
	ErrCodeFactorFetchFailed     ErrorCode = 302
	ErrCodeFactorPartialFallback ErrorCode = 303

	// Snapshot-write errors (400-499)
	ErrCodeWriteValidation      ErrorCode = 400
	ErrCodeSnapshotWriteFailed  ErrorCode = 401
	ErrCodeSnapshotReadFailed   ErrorCode = 402
	ErrCodeManifestIncompatible ErrorCode = 403

	// Checkpoint errors (500-599)
	ErrCodeCheckpointFailed ErrorCode = 500

	// Export errors (600-699)
	ErrCodeExportFailed       ErrorCode = 600
	ErrCodeUnsupportedDataset ErrorCode = 601
)
