// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Ledger rejections
	CodeLedgerOutOfRange         Code = "LEDGER_OUT_OF_RANGE"
	CodeLedgerInsufficientBudget Code = "LEDGER_INSUFFICIENT_BUDGET"
	CodeLedgerPrerequisiteUnmet  Code = "LEDGER_PREREQUISITE_UNMET"
	CodeLedgerDependentsExist    Code = "LEDGER_DEPENDENTS_EXIST"
	CodeLedgerForbidden          Code = "LEDGER_FORBIDDEN"

	// Ledger input errors
	CodeLedgerInvalidLocation    Code = "LEDGER_INVALID_LOCATION"
	CodeLedgerUnknownAttribute   Code = "LEDGER_UNKNOWN_ATTRIBUTE"
	CodeLedgerUnknownSkill       Code = "LEDGER_UNKNOWN_SKILL"
	CodeLedgerOptionNotSelected  Code = "LEDGER_OPTION_NOT_SELECTED"
	CodeLedgerModuleNotAttached  Code = "LEDGER_MODULE_NOT_ATTACHED"
	CodeLedgerNotPersonality     Code = "LEDGER_NOT_PERSONALITY"
	CodeLedgerCharacterNameEmpty Code = "LEDGER_CHARACTER_NAME_EMPTY"

	// Ruleset errors
	CodeRulesetInvalid Code = "RULESET_INVALID"

	// Catalog errors
	CodeCatalogInvalidDefinition Code = "CATALOG_INVALID_DEFINITION"
	CodeCatalogInvalidFilter     Code = "CATALOG_INVALID_FILTER"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeSessionBusy   Code = "SESSION_BUSY"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// OutOfRange - value outside a closed bound
	case CodeLedgerOutOfRange:
		return codes.OutOfRange

	// InvalidArgument - validation failures, bad input
	case CodeLedgerInvalidLocation,
		CodeLedgerUnknownAttribute,
		CodeLedgerUnknownSkill,
		CodeLedgerNotPersonality,
		CodeLedgerCharacterNameEmpty,
		CodeRulesetInvalid,
		CodeCatalogInvalidDefinition,
		CodeCatalogInvalidFilter:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeLedgerInsufficientBudget,
		CodeLedgerPrerequisiteUnmet,
		CodeLedgerDependentsExist,
		CodeLedgerOptionNotSelected,
		CodeLedgerModuleNotAttached:
		return codes.FailedPrecondition

	// PermissionDenied - structural rule violation
	case CodeLedgerForbidden:
		return codes.PermissionDenied

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeAlreadyExists:
		return codes.AlreadyExists

	// Aborted - concurrent writer holds the character
	case CodeSessionBusy:
		return codes.Aborted

	default:
		return codes.Internal
	}
}
