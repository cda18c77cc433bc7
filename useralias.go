package goimportmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/albertocavalcante/go-importmap/alias"
)

// conditionDefault marks a target that applies unconditionally.
const conditionDefault = "default"

// ParseUserAliasesFile reads and parses an alias configuration file.
func ParseUserAliasesFile(filename string) ([]UserAlias, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read alias config: %w", err)
	}
	return ParseUserAliases(data)
}

// ParseUserAliases parses an alias configuration: a JSON object mapping
// each pattern to a target string, an ordered list of target strings,
// or an object of condition names to targets. The condition "default"
// applies unconditionally.
//
// Declaration order is preserved. A key ending in "/*" becomes a prefix
// pattern; a wildcard anywhere else is rejected.
func ParseUserAliases(data []byte) ([]UserAlias, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse alias config: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("alias config must be a JSON object, got %v", tok)
	}

	var aliases []UserAlias
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse alias config: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parse alias config: non-string key %v", keyTok)
		}

		pattern, err := parseAliasPattern(key)
		if err != nil {
			return nil, err
		}
		targets, err := parseAliasTargets(dec, key)
		if err != nil {
			return nil, err
		}
		aliases = append(aliases, UserAlias{Pattern: pattern, Targets: targets})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse alias config: %w", err)
	}
	return aliases, nil
}

func parseAliasPattern(key string) (alias.Pattern, error) {
	if strings.HasSuffix(key, "/*") {
		prefix := strings.TrimSuffix(key, "*")
		if strings.Contains(prefix, "*") {
			return alias.Pattern{}, &PatternError{Pattern: key, Reason: "wildcard allowed only at the end"}
		}
		p, err := alias.Prefix(prefix)
		if err != nil {
			return alias.Pattern{}, &PatternError{Pattern: key, Reason: err.Error()}
		}
		return p, nil
	}
	if strings.Contains(key, "*") {
		return alias.Pattern{}, &PatternError{Pattern: key, Reason: "wildcard allowed only at the end"}
	}
	p, err := alias.Exact(key)
	if err != nil {
		return alias.Pattern{}, &PatternError{Pattern: key, Reason: err.Error()}
	}
	return p, nil
}

func parseAliasTargets(dec *json.Decoder, key string) ([]ConditionedTarget, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("alias %q: %w", key, err)
	}

	switch v := tok.(type) {
	case string:
		return []ConditionedTarget{{Target: v}}, nil

	case json.Delim:
		switch v {
		case '[':
			var targets []ConditionedTarget
			for dec.More() {
				t, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("alias %q: %w", key, err)
				}
				s, ok := t.(string)
				if !ok {
					return nil, fmt.Errorf("alias %q: list targets must be strings, got %v", key, t)
				}
				targets = append(targets, ConditionedTarget{Target: s})
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("alias %q: %w", key, err)
			}
			if len(targets) == 0 {
				return nil, fmt.Errorf("alias %q: empty target list", key)
			}
			return targets, nil

		case '{':
			var targets []ConditionedTarget
			for dec.More() {
				condTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("alias %q: %w", key, err)
				}
				cond, ok := condTok.(string)
				if !ok {
					return nil, fmt.Errorf("alias %q: non-string condition %v", key, condTok)
				}
				valTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("alias %q: %w", key, err)
				}
				s, ok := valTok.(string)
				if !ok {
					return nil, fmt.Errorf("alias %q: target for condition %q must be a string, got %v", key, cond, valTok)
				}
				if cond == conditionDefault {
					cond = ""
				}
				targets = append(targets, ConditionedTarget{Condition: cond, Target: s})
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("alias %q: %w", key, err)
			}
			if len(targets) == 0 {
				return nil, fmt.Errorf("alias %q: empty condition object", key)
			}
			return targets, nil
		}
	}
	return nil, fmt.Errorf("alias %q: target must be a string, list, or condition object", key)
}
