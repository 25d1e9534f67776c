package youtube

import "regexp"

var reISODuration = regexp.MustCompile(
	`^P(?:\d+Y)?(?:\d+M)?(?:\d+W)?(?:\d+D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISO8601Duration converts contentDetails.duration ("PT1H2M3S") to
// seconds. Unparseable input maps to 0, which downstream treats as an
// invalid video rather than an error.
func ParseISO8601Duration(value string) int {
	m := reISODuration.FindStringSubmatch(value)
	if m == nil {
		return 0
	}
	return atoi(m[1])*3600 + atoi(m[2])*60 + atoi(m[3])
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
