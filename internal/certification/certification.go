// Package certification decides whether a movie's age rating allows it into a tournament pool.
package certification

import "strings"

var allowed = map[string]bool{
	"ALL": true,
	"12":  true,
	"15":  true,
}

// denied names the known restricted ratings. Unlisted codes are rejected
// too, but these stay spelled out so the restricted set is explicit and
// covered by tests. Do not fold it into the fall-through.
var denied = map[string]bool{
	"19":                   true,
	"19+":                  true,
	"RESTRICTED SCREENING": true,
	"NULL":                 true,
	"21+":                  true,
	"NR":                   true,
	"R-18":                 true,
	"X":                    true,
}

// Admissible reports whether a rating code lets a movie into the pool.
//
// A missing or blank code is admissible: an unknown rating does not exclude a
// movie. A code that is present but not on the allow list is rejected, whether
// or not it appears on the deny list.
func Admissible(code string) bool {
	if strings.TrimSpace(code) == "" {
		return true
	}

	upper := strings.ToUpper(code)
	if allowed[upper] {
		return true
	}
	if denied[upper] {
		// Known restricted rating
		return false
	}
	// Present but unrecognised
	return false
}
