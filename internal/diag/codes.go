package diag

import (
	"fmt"
)

// Code identifies one distinct rule violation. Codes are stable constants:
// downstream quick-fix consumers pattern-match on them, so values are never
// reused or generated dynamically.
type Code uint16

const (
	UnknownCode Code = 0

	// Manifest (template-info) rules.
	TplInfo                     Code = 1000
	TplRelPathValueMissing      Code = 1001
	TplRelPathInvalid           Code = 1002
	TplRelPathFileNotFound      Code = 1003
	TplRelPathNotAFile          Code = 1004
	TplRelPathDuplicate         Code = 1005
	TplMissingAppObjects        Code = 1006
	TplDashboardCount           Code = 1007
	TplMissingDataObjects       Code = 1008
	TplDeprecatedRuleDefinition Code = 1009
	TplDeprecatedAssetIcon      Code = 1010
	TplDeprecatedTemplateIcon   Code = 1011
	TplNameMismatch             Code = 1012
	TplCSVTooLarge              Code = 1013
	TplEmbeddedAppPages         Code = 1014

	// Variables file rules.
	VarInfo                Code = 2000
	VarInvalidName         Code = 2001
	VarDuplicateDefinition Code = 2002
	VarRegexMissingSlash   Code = 2003
	VarRegexBadFlags       Code = 2004
	VarRegexCompile        Code = 2005
	VarRegexMultiple       Code = 2006

	// UI file rules.
	UIInfo                    Code = 3000
	UIUnknownVariable         Code = 3001
	UIUnsupportedVariableType Code = 3002

	// Rules file rules.
	RulInfo              Code = 4000
	RulDuplicateConstant Code = 4001
	RulDuplicateRuleName Code = 4002
	RulDuplicateMacro    Code = 4003
	RulNoOpMacro         Code = 4004

	// Folder file rules.
	FldInfo              Code = 5000
	FldInvalidAccessType Code = 5001
	FldInvalidShareType  Code = 5002

	// Auto-install file rules.
	AinInfo            Code = 6000
	AinUnknownVariable Code = 6001

	// Layout file rules.
	LayInfo                    Code = 7000
	LayUnknownVariable         Code = 7001
	LayUnsupportedVariableType Code = 7002

	// Load and engine faults.
	IOLoadFileError Code = 8001
	IORuleFault     Code = 8002
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown issue",

	TplInfo:                     "Template manifest note",
	TplRelPathValueMissing:      "File reference has no value",
	TplRelPathInvalid:           "File reference is not a valid relative path",
	TplRelPathFileNotFound:      "Referenced file does not exist",
	TplRelPathNotAFile:          "Referenced path is not a file",
	TplRelPathDuplicate:         "Same file referenced more than once",
	TplMissingAppObjects:        "App template defines no objects",
	TplDashboardCount:           "Dashboard template must define exactly one dashboard",
	TplMissingDataObjects:       "Data template defines no data objects",
	TplDeprecatedRuleDefinition: "ruleDefinition is deprecated",
	TplDeprecatedAssetIcon:      "assetIcon is deprecated",
	TplDeprecatedTemplateIcon:   "templateIcon is deprecated",
	TplNameMismatch:             "Template name does not match its folder",
	TplCSVTooLarge:              "Referenced CSV file exceeds the size limit",
	TplEmbeddedAppPages:         "Embedded app template has non-visualforce pages",

	VarInfo:                "Variables note",
	VarInvalidName:         "Invalid variable name",
	VarDuplicateDefinition: "Duplicate variable definition",
	VarRegexMissingSlash:   "Regex exclude is missing its closing slash",
	VarRegexBadFlags:       "Regex exclude has invalid flags",
	VarRegexCompile:        "Regex exclude does not compile",
	VarRegexMultiple:       "Multiple regex excludes in one list",

	UIInfo:                    "UI note",
	UIUnknownVariable:         "Unknown variable referenced",
	UIUnsupportedVariableType: "Variable type not supported on UI pages",

	RulInfo:              "Rules note",
	RulDuplicateConstant: "Duplicate constant",
	RulDuplicateRuleName: "Duplicate rule name",
	RulDuplicateMacro:    "Duplicate macro",
	RulNoOpMacro:         "Macro has no returns and no actions",

	FldInfo:              "Folder note",
	FldInvalidAccessType: "Invalid share accessType",
	FldInvalidShareType:  "Invalid shareType",

	AinInfo:            "Auto-install note",
	AinUnknownVariable: "Unknown variable referenced",

	LayInfo:                    "Layout note",
	LayUnknownVariable:         "Unknown variable referenced",
	LayUnsupportedVariableType: "Variable type not supported in layouts",

	IOLoadFileError: "Failed to load file",
	IORuleFault:     "Rule evaluation failed",
}

// ID returns the short string form used in output and golden files, e.g.
// "TPL1003".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("TPL%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("VAR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("UI%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("RUL%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("FLD%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("AIN%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("LAY%04d", ic)
	case ic >= 8000 && ic < 9000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
