package patients

import "strings"

// DeriveKey builds the stable identity key for a patient from their name and
// phone. There is no patient table; identity exists only through bookings, so
// the key has to survive spacing and formatting differences between entries.
func DeriveKey(name, phone string) string {
	return strings.ToLower(NormalizeName(name)) + "|" + NormalizePhone(phone)
}

// NormalizeName trims and collapses internal whitespace runs to single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NormalizePhone strips everything but digits, keeping a single leading '+'
// if present so international and local spellings stay distinct.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
