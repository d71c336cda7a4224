package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                  = "UNKNOWN"
	CodeLedgerOutOfRange         = "LEDGER_OUT_OF_RANGE"
	CodeLedgerInsufficientBudget = "LEDGER_INSUFFICIENT_BUDGET"
	CodeLedgerPrerequisiteUnmet  = "LEDGER_PREREQUISITE_UNMET"
	CodeLedgerDependentsExist    = "LEDGER_DEPENDENTS_EXIST"
	CodeLedgerForbidden          = "LEDGER_FORBIDDEN"
	CodeLedgerInvalidLocation    = "LEDGER_INVALID_LOCATION"
	CodeLedgerUnknownAttribute   = "LEDGER_UNKNOWN_ATTRIBUTE"
	CodeLedgerUnknownSkill       = "LEDGER_UNKNOWN_SKILL"
	CodeLedgerOptionNotSelected  = "LEDGER_OPTION_NOT_SELECTED"
	CodeLedgerModuleNotAttached  = "LEDGER_MODULE_NOT_ATTACHED"
	CodeLedgerNotPersonality     = "LEDGER_NOT_PERSONALITY"
	CodeLedgerCharacterNameEmpty = "LEDGER_CHARACTER_NAME_EMPTY"
	CodeRulesetInvalid           = "RULESET_INVALID"
	CodeCatalogInvalidDefinition = "CATALOG_INVALID_DEFINITION"
	CodeCatalogInvalidFilter     = "CATALOG_INVALID_FILTER"
	CodeNotFound                 = "NOT_FOUND"
	CodeAlreadyExists            = "ALREADY_EXISTS"
	CodeSessionBusy              = "SESSION_BUSY"
)

// AllCodes lists every code that must carry a base-locale template.
var AllCodes = []Code{
	CodeUnknown,
	CodeLedgerOutOfRange,
	CodeLedgerInsufficientBudget,
	CodeLedgerPrerequisiteUnmet,
	CodeLedgerDependentsExist,
	CodeLedgerForbidden,
	CodeLedgerInvalidLocation,
	CodeLedgerUnknownAttribute,
	CodeLedgerUnknownSkill,
	CodeLedgerOptionNotSelected,
	CodeLedgerModuleNotAttached,
	CodeLedgerNotPersonality,
	CodeLedgerCharacterNameEmpty,
	CodeRulesetInvalid,
	CodeCatalogInvalidDefinition,
	CodeCatalogInvalidFilter,
	CodeNotFound,
	CodeAlreadyExists,
	CodeSessionBusy,
}
