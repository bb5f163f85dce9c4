package utils

import (
	"regexp"
)

var nicknameRe = regexp.MustCompile(`^[\p{L}\p{N}_ ]{2,32}$`)

// ValidateNickname accepts 2-32 letters, digits, underscores and spaces.
func ValidateNickname(nickname string) bool {
	return nicknameRe.MatchString(nickname)
}
