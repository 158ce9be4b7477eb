package jsonsettings

import (
	"strings"
)

// tagConfig holds parsed directives from a struct field's `conf` tag.
type tagConfig struct {
	name     string   // Display key used by Dump (name:custom.key)
	min      string   // Minimum constraint (min:N)
	max      string   // Maximum constraint (max:M)
	oneof    []string // Allowed values (oneof:a,b,c)
	required bool     // Field must be non-zero (required or required:true)
	secret   bool     // Field is redacted by Dump (secret or secret:true)
}

// knownDirectives lists directive prefixes recognized inside a `conf` tag.
var knownDirectives = []string{"name:", "min:", "max:", "oneof:", "required", "secret"}

// parseTag parses a `conf` struct tag.
// Tag format: "directive1:value1,directive2:value2,..."
// Boolean directives can omit `:true` (e.g., "required" == "required:true").
func parseTag(tag string) tagConfig {
	cfg := tagConfig{}
	if tag == "" {
		return cfg
	}

	for _, directive := range splitDirectives(tag) {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}

		name, value, _ := strings.Cut(directive, ":")
		switch strings.TrimSpace(name) {
		case "name":
			cfg.name = value
		case "min":
			cfg.min = value
		case "max":
			cfg.max = value
		case "oneof":
			if value != "" {
				cfg.oneof = strings.Split(value, ",")
				for i := range cfg.oneof {
					cfg.oneof[i] = strings.TrimSpace(cfg.oneof[i])
				}
			}
		case "required":
			cfg.required = parseFlag(value)
		case "secret":
			cfg.secret = parseFlag(value)
		}
	}

	return cfg
}

// parseFlag treats anything but an explicit "false" as true.
func parseFlag(value string) bool {
	return value != "false"
}

// splitDirectives splits a tag into directives. Commas inside a oneof list
// belong to the list until the next known directive starts.
func splitDirectives(tag string) []string {
	var directives []string
	var current strings.Builder
	inOneof := false

	for i := 0; i < len(tag); i++ {
		if !inOneof && strings.HasPrefix(tag[i:], "oneof:") && current.Len() == 0 {
			inOneof = true
		}

		ch := tag[i]
		if ch == ',' && (!inOneof || startsWithDirective(tag[i+1:])) {
			directives = append(directives, current.String())
			current.Reset()
			inOneof = false
			continue
		}
		current.WriteByte(ch)
	}

	if current.Len() > 0 {
		directives = append(directives, current.String())
	}

	return directives
}

// startsWithDirective checks if a string starts with a known directive name.
func startsWithDirective(s string) bool {
	s = strings.TrimSpace(s)
	for _, d := range knownDirectives {
		if strings.HasPrefix(s, d) {
			return true
		}
	}
	return false
}
