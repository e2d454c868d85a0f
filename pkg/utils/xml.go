package utils

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Text returns the trimmed text of the first child element with the given
// tag, or an empty string if the element is absent.
func Text(parent *etree.Element, tag string) string {
	if parent == nil {
		return ""
	}
	e := parent.SelectElement(tag)
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Text())
}

// Int returns the integer value of the first child element with the given
// tag. Absent, empty or non-numeric children yield the fallback value.
func Int(parent *etree.Element, tag string, fallback int) int {
	s := Text(parent, tag)
	if s == "" {
		return fallback
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return i
}

// Members normalizes the device's one-or-many member encoding to a slice.
// A container with <member> children yields one entry per member; a container
// holding bare text yields a single entry; an absent container yields nil.
func Members(parent *etree.Element, tag string) []string {
	if parent == nil {
		return nil
	}
	e := parent.SelectElement(tag)
	if e == nil {
		return nil
	}
	members := e.SelectElements("member")
	if len(members) == 0 {
		if s := strings.TrimSpace(e.Text()); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, strings.TrimSpace(m.Text()))
	}
	return out
}
