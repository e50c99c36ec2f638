// Package classcode holds the static MRSL classification reference list.
package classcode

import "strings"

// Entry is one classification code with its human description
type Entry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Separator joins two codes when the coverage is ambiguous between them
const Separator = "/"

var entries = []Entry{
	{Code: "HM", Description: "Hull & Machinery"},
	{Code: "WR", Description: "War Risks"},
	{Code: "PI", Description: "Protection & Indemnity"},
	{Code: "CG", Description: "Cargo"},
	{Code: "LOH", Description: "Loss of Hire"},
	{Code: "BR", Description: "Builders' Risks"},
	{Code: "CL", Description: "Charterers' Liability"},
	{Code: "FDD", Description: "Freight, Demurrage & Defence"},
	{Code: "ML", Description: "Marine Liability"},
	{Code: "KR", Description: "Kidnap & Ransom"},
	{Code: "SP", Description: "Specie"},
	{Code: "ENG", Description: "Energy (Offshore)"},
	{Code: "YT", Description: "Yacht"},
	{Code: "MTL", Description: "Mortgagees' Interest"},
}

var byCode = func() map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.Code] = e
	}
	return m
}()

// All returns a copy of the reference list in display order
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Lookup finds an entry by exact code
func Lookup(code string) (Entry, bool) {
	e, ok := byCode[code]
	return e, ok
}

// IsKnown reports whether code is a single entry of the reference list
func IsKnown(code string) bool {
	_, ok := byCode[code]
	return ok
}

// Split breaks a slash-joined value such as "HM/WR" into trimmed parts.
// Empty parts are dropped.
func Split(value string) []string {
	var parts []string
	for _, p := range strings.Split(value, Separator) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// Describe renders a value for display, expanding every known code in it
func Describe(value string) string {
	parts := Split(value)
	if len(parts) == 0 {
		return ""
	}
	described := make([]string, 0, len(parts))
	for _, p := range parts {
		if e, ok := byCode[p]; ok {
			described = append(described, e.Code+" - "+e.Description)
		} else {
			described = append(described, p)
		}
	}
	return strings.Join(described, " / ")
}
