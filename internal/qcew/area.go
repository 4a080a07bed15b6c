package qcew

import "strings"

// NormalizeAreaFIPS normalizes an area FIPS code to 5 digits with
// zero-padding. Float-formatted exports ("6001.0") lose the decimal tail
// before padding.
func NormalizeAreaFIPS(code string) string {
	code = trimQuotes(code)
	if code == "" {
		return ""
	}
	if i := strings.IndexByte(code, '.'); i >= 0 && allZeros(code[i+1:]) {
		code = code[:i]
	}
	for len(code) < 5 {
		code = "0" + code
	}
	return code
}
