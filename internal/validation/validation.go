// Package validation holds the pure acceptance checks applied to customer
// identifying data before it reaches persistence. Every check returns a
// plain boolean: malformed, empty or otherwise unusable input is a
// rejection, never an error.
package validation

import "time"

// CPF reports whether s is a structurally valid Brazilian CPF number.
// Formatting characters are ignored; after stripping, the input must be
// exactly 11 digits, must not be a single repeated digit, and both
// check digits must match the weighted-sum-mod-11 recomputation.
func CPF(s string) bool {
	digits := digitsOf(s)
	if len(digits) != 11 {
		return false
	}
	if allSame(digits) {
		return false
	}
	if checkDigit(digits[:9]) != digits[9] {
		return false
	}
	return checkDigit(digits[:10]) == digits[10]
}

// checkDigit computes a CPF verifier digit over a 9- or 10-digit prefix.
// Digit i is weighted by (len+1-i); the digit is 0 when the mod-11
// remainder is below 2, otherwise 11 minus the remainder.
func checkDigit(prefix []int) int {
	sum := 0
	weight := len(prefix) + 1
	for _, d := range prefix {
		sum += d * weight
		weight--
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// Phone reports whether s is a valid mobile number without area code:
// exactly 9 digits after stripping, not all identical.
func Phone(s string) bool {
	digits := digitsOf(s)
	return len(digits) == 9 && !allSame(digits)
}

// Brazilian area codes in service. The set is closed; unassigned two-digit
// values are rejected.
var areaCodes = map[string]struct{}{
	"11": {}, "12": {}, "13": {}, "14": {}, "15": {}, "16": {}, "17": {}, "18": {}, "19": {},
	"21": {}, "22": {}, "24": {},
	"27": {}, "28": {},
	"31": {}, "32": {}, "33": {}, "34": {}, "35": {}, "37": {}, "38": {},
	"41": {}, "42": {}, "43": {}, "44": {}, "45": {}, "46": {},
	"47": {}, "48": {}, "49": {},
	"51": {}, "53": {}, "54": {}, "55": {},
	"61": {},
	"62": {}, "64": {},
	"63": {},
	"65": {}, "66": {},
	"67": {},
	"68": {},
	"69": {},
	"71": {}, "73": {}, "74": {}, "75": {}, "77": {},
	"79": {},
	"81": {}, "87": {},
	"82": {},
	"83": {},
	"84": {},
	"85": {}, "88": {},
	"86": {}, "89": {},
	"91": {}, "93": {}, "94": {},
	"92": {}, "97": {},
	"95": {},
	"96": {},
	"98": {}, "99": {},
}

// AreaCode reports whether s is an assigned two-digit Brazilian DDD.
func AreaCode(s string) bool {
	digits := digitsOf(s)
	if len(digits) != 2 {
		return false
	}
	code := string([]byte{'0' + byte(digits[0]), '0' + byte(digits[1])})
	_, ok := areaCodes[code]
	return ok
}

// FullPhone reports whether the (area code, number) pair is valid.
func FullPhone(ddd, tel string) bool {
	return AreaCode(ddd) && Phone(tel)
}

// birthDateLayout is the ISO date format the storefront submits.
const birthDateLayout = "2006-01-02"

// BirthDate reports whether s is a plausible birth date: parseable, not in
// the future and at most 110 years before today. Both bounds are inclusive
// and compared at day granularity.
func BirthDate(s string) bool {
	return birthDateAt(s, time.Now())
}

func birthDateAt(s string, now time.Time) bool {
	if s == "" {
		return false
	}
	parsed, err := time.Parse(birthDateLayout, s)
	if err != nil {
		return false
	}
	// Normalize everything to midnight UTC so time of day never skews the
	// comparison.
	birth := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	oldest := today.AddDate(-110, 0, 0)

	return !birth.After(today) && !birth.Before(oldest)
}

const passwordSpecials = "!@#$%^&*"

// Password reports whether s satisfies the account password policy:
// 6 to 20 characters with at least one uppercase letter, one digit and one
// of !@#$%^&*. The three character-class requirements apply to the whole
// password, not to anchored positions.
func Password(s string) bool {
	runes := []rune(s)
	if len(runes) < 6 || len(runes) > 20 {
		return false
	}
	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range runes {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			for _, sp := range passwordSpecials {
				if r == sp {
					hasSpecial = true
					break
				}
			}
		}
	}
	return hasUpper && hasDigit && hasSpecial
}

// PasswordsMatch reports whether the confirmation equals the password.
func PasswordsMatch(confirmation, password string) bool {
	return confirmation == password
}

// digitsOf strips every non-digit character and returns the remaining
// digits as ints.
func digitsOf(s string) []int {
	digits := make([]int, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	return digits
}

func allSame(digits []int) bool {
	for _, d := range digits[1:] {
		if d != digits[0] {
			return false
		}
	}
	return true
}
