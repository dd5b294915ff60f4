package fleetctl

import "strings"

// ValidID reports whether id may be used for command execution.
// Ids are short opaque tokens: non-empty, at most MaxIDLength bytes and
// free of anything that could escape the instance directories.
func ValidID(id string) bool {
	if id == "" || len(id) > MaxIDLength {
		return false
	}
	if id == "." || id == ".." || id == AllInstances {
		return false
	}
	return !strings.ContainsAny(id, "/\\\x00")
}

// FilterIDs returns the ids that pass ValidID, preserving order
func FilterIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if ValidID(id) {
			valid = append(valid, id)
		}
	}
	return valid
}
