package roster

import (
	"regexp"
	"strings"
)

// GeneratedDomain is the domain of synthetic emails given to people who never
// appear next to an email address.
const GeneratedDomain = "generated.local"

var (
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	nonLocalPart    = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	nameHeaders     = setOf("name", "fullname", "studentname", "candidatename", "applicantname", "employeename", "personname")
	emailHeaders    = setOf("email", "emailaddress", "emailid", "mail", "mailid", "mailaddress")
	headerNoiseTerm = []string{
		"id", "no", "number", "roll", "prn", "reg", "date", "status",
		"branch", "department", "class", "division", "time", "reporting",
	}
)

func setOf(values ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

// NormalizeHeader lowercases s and keeps only ASCII letters and digits.
func NormalizeHeader(s string) string {
	return keep(strings.ToLower(s), func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
	})
}

// NormalizeName lowercases name and keeps only ASCII letters, so "José" becomes "jos".
// The result is the key under which names are matched across sheets.
func NormalizeName(name string) string {
	return keep(strings.ToLower(strings.TrimSpace(name)), func(r rune) bool {
		return r >= 'a' && r <= 'z'
	})
}

func keep(s string, ok func(rune) bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if ok(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsNameColumn reports whether a normalized header names a person column.
func IsNameColumn(key string) bool {
	if key == "" {
		return false
	}
	if _, ok := nameHeaders[key]; ok {
		return true
	}
	return strings.Contains(key, "nameof") || strings.HasSuffix(key, "name")
}

// IsEmailColumn reports whether a normalized header names an email column.
func IsEmailColumn(key string) bool {
	if key == "" {
		return false
	}
	if _, ok := emailHeaders[key]; ok {
		return true
	}
	return strings.Contains(key, "email") || strings.Contains(key, "mail")
}

// IsHeaderNoise reports whether a normalized header looks like one of the
// bookkeeping columns typical of attendance sheets (ids, dates, departments).
func IsHeaderNoise(key string) bool {
	if key == "" {
		return false
	}
	for _, term := range headerNoiseTerm {
		if strings.Contains(key, term) {
			return true
		}
	}
	return false
}

// IsValidEmail reports whether the trimmed value has the shape of an email.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && emailPattern.MatchString(s)
}

// SynthesizeEmail derives a stable placeholder email from a display name.
// "Dave Jones" becomes "dave.jones@generated.local".
func SynthesizeEmail(name string) string {
	local := strings.ToLower(strings.TrimSpace(name))
	local = nonLocalPart.ReplaceAllString(local, "")
	local = strings.Trim(whitespaceRun.ReplaceAllString(local, "."), ".")
	if local == "" {
		local = "unknown"
	}
	return local + "@" + GeneratedDomain
}
