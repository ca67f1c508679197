package matching

import (
	"regexp"
	"strings"
)

// registerTail matches the trailing weight/unit cluster printed by cash
// registers: "ARROZ 1800 G", "GALLETA 520 00 G", "LECHE 1 L 12".
var registerTail = regexp.MustCompile(`(?i)\s+(\d+)?(\s+00)?\s*(g|kg|ml|l|unid|oz|lb)(\s+\d+)?$`)

// SanitizeName removes register noise from a stored display name without any
// external call: the trailing unit cluster is dropped and whitespace is
// collapsed.
func SanitizeName(name string) string {
	cleaned := registerTail.ReplaceAllString(strings.TrimSpace(name), "")
	return strings.Join(strings.Fields(cleaned), " ")
}
