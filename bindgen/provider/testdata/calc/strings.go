package calc

import "strings"

// Strings manipulates text.
//
//hostbind:namespace text
type Strings struct{}

// Upper returns s in upper case.
func (Strings) Upper(s string) string { return strings.ToUpper(s) }

// Split splits s around sep.
func (Strings) Split(s, sep string) []string { return strings.Split(s, sep) }

// Concat joins parts. It is declared apart from Calculator.
//
//hostbind:permission auth.Role("writer")
func (c *Calculator) Concat(parts []string) string { return strings.Join(parts, "") }
