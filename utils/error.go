package utils

import (
	"errors"
	"fmt"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

var ErrorRecordNotFound = errors.New("record not found")

// ValidationError reports invalid lifecycle inputs (e.g. penalty-free period
// not shorter than the contract duration). Surfaced to the create/edit flow,
// never coerced.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DataQualityError marks a contract whose stored dates are missing or
// unusable at classification time. The batch skips the contract and moves on.
type DataQualityError struct {
	ContractId int
	Reason     string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("contract %d: %s", e.ContractId, e.Reason)
}

// ChannelError wraps an outbound send failure (network, provider rejection,
// invalid recipient). Recorded as FAILED; a later cycle may re-attempt.
type ChannelError struct {
	Channel string
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel %s: %v", e.Channel, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed history lookup or record write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsDuplicateKeyErr reports MySQL error 1062 (duplicate entry). The
// notification dedup index relies on this to treat a concurrent insert for
// the same (contract, type, day) as "already handled".
func IsDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
