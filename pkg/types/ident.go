package types

import "regexp"

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]{2,12}$`)

// ValidRefID reports whether id is an acceptable reference identifier:
// 2 to 12 characters among letters, digits and underscore.
func ValidRefID(id string) bool {
	return identPattern.MatchString(id)
}

// ValidAttributeID applies the reference rule and also rejects the
// reserved name "id".
func ValidAttributeID(id string) bool {
	return id != "id" && identPattern.MatchString(id)
}
