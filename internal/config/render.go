package config

import (
	"fmt"
	"strconv"
	"strings"
)

// splitSections groups options into top-level keys and [section] tables,
// preserving declaration order.
func splitSections(opts []ConfigOption) (top []ConfigOption, order []string, sections map[string][]ConfigOption) {
	sections = make(map[string][]ConfigOption)
	for _, o := range opts {
		section, key, ok := strings.Cut(o.Key, ".")
		if !ok {
			top = append(top, o)
			continue
		}
		if _, seen := sections[section]; !seen {
			order = append(order, section)
		}
		sections[section] = append(sections[section], ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	return top, order, sections
}

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	out := []string{"# Happy Art Town configuration (TOML)"}
	top, order, sections := splitSections(GetConfigOptions())
	for _, o := range top {
		out = append(out, optionLines(o)...)
	}
	for _, section := range order {
		out = append(out, "["+section+"]")
		for _, o := range sections[section] {
			out = append(out, optionLines(o)...)
		}
	}
	return strings.Join(out, "\n")
}

// UpdateTOML merges defaults into an existing TOML string and comments out
// unknown keys. Missing keys are inserted into their existing table when the
// file has one, so no table header is ever repeated.
func UpdateTOML(existing string) (string, bool) {
	lines := strings.Split(existing, "\n")
	opts := GetConfigOptions()

	known := make(map[string]bool, len(opts))
	for _, o := range opts {
		known[o.Key] = true
	}

	present := make(map[string]bool)
	// sectionEnd maps a table name ("" for the root) to the output index just
	// past its last key.
	sectionEnd := map[string]int{}
	firstHeader := -1
	currentSection := ""
	out := make([]string, 0, len(lines))
	changed := false

	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") || strings.HasPrefix(trim, ";") {
			out = append(out, line)
			continue
		}
		if strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]") {
			currentSection = strings.TrimSpace(trim[1 : len(trim)-1])
			if firstHeader < 0 {
				firstHeader = len(out)
			}
			out = append(out, line)
			sectionEnd[currentSection] = len(out)
			continue
		}
		key, ok := parseTOMLKey(line)
		if !ok {
			out = append(out, line)
			continue
		}
		fullKey := key
		if currentSection != "" {
			fullKey = currentSection + "." + key
		}
		present[fullKey] = true
		if !known[fullKey] {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out = append(out, indent+"# OUTDATED: option removed from config schema")
			out = append(out, indent+"# "+strings.TrimLeft(line, " \t"))
			sectionEnd[currentSection] = len(out)
			changed = true
			continue
		}
		out = append(out, line)
		sectionEnd[currentSection] = len(out)
	}

	var missing []ConfigOption
	for _, o := range opts {
		if !present[o.Key] {
			missing = append(missing, o)
		}
	}
	if len(missing) == 0 {
		return strings.Join(out, "\n"), changed
	}

	top, order, sections := splitSections(missing)
	inserts := map[int][]string{}
	if len(top) > 0 {
		at := len(out)
		if firstHeader >= 0 {
			at = firstHeader
		}
		for _, o := range top {
			inserts[at] = append(inserts[at], optionLines(o)...)
		}
	}
	var appended []string
	for _, section := range order {
		if at, ok := sectionEnd[section]; ok && section != "" {
			for _, o := range sections[section] {
				inserts[at] = append(inserts[at], optionLines(o)...)
			}
			continue
		}
		appended = append(appended, "["+section+"]")
		for _, o := range sections[section] {
			appended = append(appended, optionLines(o)...)
		}
	}

	merged := make([]string, 0, len(out)+len(missing)*3+2)
	for i := 0; i <= len(out); i++ {
		merged = append(merged, inserts[i]...)
		if i < len(out) {
			merged = append(merged, out[i])
		}
	}
	if len(appended) > 0 {
		merged = append(merged, "", "# Added by config update")
		merged = append(merged, appended...)
	}
	return strings.Join(merged, "\n"), true
}

func parseTOMLKey(line string) (string, bool) {
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" || strings.HasPrefix(key, "[") {
		return "", false
	}
	if strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return "", false
	}
	return key, true
}

// optionLines renders one option as comment, assignment and a blank line.
func optionLines(o ConfigOption) []string {
	var lines []string
	if o.Comment != "" {
		lines = append(lines, "# "+o.Comment)
	}
	return append(lines, o.Key+" = "+tomlValue(o.Default), "")
}

func tomlValue(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}
