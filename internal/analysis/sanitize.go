package analysis

import (
	"regexp"
	"strings"
)

// GoFuncPrefix namespaces every symbol recovered from the function table.
const GoFuncPrefix = "go."

// nonIdentRun matches a maximal run of characters that are not safe in a
// data variable name.
var nonIdentRun = regexp.MustCompile(`[^a-zA-Z0-9.]+`)

// SanitizeFuncName strips embedded spaces. Table names never legitimately
// contain them; any that appear are parser noise.
func SanitizeFuncName(name string) string {
	return strings.ReplaceAll(name, " ", "")
}

// SanitizeVarName collapses every run of characters other than letters,
// digits and '.' into a single underscore.
func SanitizeVarName(name string) string {
	return nonIdentRun.ReplaceAllString(name, "_")
}
