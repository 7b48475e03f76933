// Package endpoint renders target-specific HTTP requests from a template.
//
// A Profile describes one inference target: a base URL template, a set of
// named path templates keyed by endpoint kind, an ordered set of header
// templates, and a nested request-body template. Rendering substitutes
// named placeholders (e.g. "{resource_name}") everywhere, plus the literal
// "{prompt}" token inside body string leaves.
package endpoint

import (
	"fmt"
	"sort"
	"strings"
)

// Profile is an immutable, per-session endpoint description.
type Profile struct {
	Name        string
	BaseURL     string
	Endpoints   map[string]string // endpoint kind -> path template
	Headers     []HeaderTemplate  // ordered: header name -> value template
	RequestBody any               // nested map[string]any / []any / string template
}

// HeaderTemplate preserves header ordering, which a plain map cannot.
type HeaderTemplate struct {
	Name  string
	Value string
}

// ConfigError reports a fatal, configuration-time failure: an unresolved
// placeholder or an unknown endpoint kind. It is never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("endpoint profile config error: %s", e.Reason)
}

// Rendered is the fully-substituted wire request produced by Render.
type Rendered struct {
	URL     string
	Headers []HeaderTemplate
	Body    any
}

// Render instantiates the profile's templates for one prompt/params pair.
//
// Substitution happens in two layers: named placeholders (from params) are
// expanded everywhere, and the literal "{prompt}" token is expanded inside
// body string leaves only, after named-placeholder expansion. The body
// template is deep-copied first so repeated calls never observe mutation
// from a previous call.
func (p *Profile) Render(prompt string, kind string, params map[string]string) (Rendered, error) {
	if p == nil {
		return Rendered{}, &ConfigError{Reason: "nil profile"}
	}

	pathTemplate, ok := p.Endpoints[kind]
	if !ok {
		return Rendered{}, &ConfigError{Reason: fmt.Sprintf("unknown endpoint kind %q", kind)}
	}

	baseURL, err := substitutePlaceholders(p.BaseURL, params)
	if err != nil {
		return Rendered{}, err
	}
	path, err := substitutePlaceholders(pathTemplate, params)
	if err != nil {
		return Rendered{}, err
	}

	headers := make([]HeaderTemplate, 0, len(p.Headers))
	for _, h := range p.Headers {
		value, err := substitutePlaceholders(h.Value, params)
		if err != nil {
			return Rendered{}, err
		}
		headers = append(headers, HeaderTemplate{Name: h.Name, Value: value})
	}

	body := deepCopy(p.RequestBody)
	body, err = substituteBody(body, prompt, params)
	if err != nil {
		return Rendered{}, err
	}

	return Rendered{
		URL:     baseURL + path,
		Headers: headers,
		Body:    body,
	}, nil
}

// substitutePlaceholders expands every "{name}" occurrence in s using
// params. An occurrence with no matching entry in params is a fatal
// ConfigError: unlike the body's "{prompt}" token, URL/header placeholders
// have no implicit default.
func substitutePlaceholders(s string, params map[string]string) (string, error) {
	var missing []string
	result := s
	for {
		start := strings.IndexByte(result, '{')
		if start < 0 {
			break
		}
		end := strings.IndexByte(result[start:], '}')
		if end < 0 {
			break
		}
		end += start
		name := result[start+1 : end]
		if name == "prompt" {
			// {prompt} is resolved only inside body string leaves, by substituteBody.
			// Leave it untouched here so callers that never reach the body (URL,
			// headers) surface it as a literal if misused; it's never expected there.
			// It is masked so the scan continues past it to later placeholders.
			result = result[:start] + "\x01" + result[end+1:]
			continue
		}
		value, ok := params[name]
		if !ok {
			missing = append(missing, name)
			// Skip past this placeholder so we can keep scanning for more issues.
			result = result[:start] + "\x00" + result[end+1:]
			continue
		}
		result = result[:start] + value + result[end+1:]
	}
	result = strings.ReplaceAll(result, "\x00", "")
	result = strings.ReplaceAll(result, "\x01", "{prompt}")
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", &ConfigError{Reason: fmt.Sprintf("unresolved placeholder(s): %s", strings.Join(missing, ", "))}
	}
	return result, nil
}

// substituteBody walks the deep-copied body template, expanding named
// placeholders in every string leaf, then replacing the literal "{prompt}"
// token with the prompt text verbatim (unescaped).
func substituteBody(node any, prompt string, params map[string]string) (any, error) {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			replaced, err := substituteBody(val, prompt, params)
			if err != nil {
				return nil, err
			}
			out[key] = replaced
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			replaced, err := substituteBody(val, prompt, params)
			if err != nil {
				return nil, err
			}
			out[i] = replaced
		}
		return out, nil
	case string:
		expanded, err := expandBodyLeaf(v, params)
		if err != nil {
			return nil, err
		}
		return strings.ReplaceAll(expanded, "{prompt}", prompt), nil
	default:
		return v, nil
	}
}

// expandBodyLeaf is substitutePlaceholders specialized for body leaves: it
// tolerates the literal "{prompt}" token (left untouched for the caller to
// expand) but still fails on any other unresolved placeholder.
//
// The "{prompt}" token is masked out before the named-placeholder scan runs,
// rather than skipped over mid-scan, so a leaf carrying both "{prompt}" and a
// "{named}" var (e.g. "{prompt}\n\nRespond in {language}") still terminates.
func expandBodyLeaf(s string, params map[string]string) (string, error) {
	masked := strings.ReplaceAll(s, "{prompt}", "\x01")

	var missing []string
	result := masked
	for {
		start := strings.IndexByte(result, '{')
		if start < 0 {
			break
		}
		end := strings.IndexByte(result[start:], '}')
		if end < 0 {
			break
		}
		end += start
		name := result[start+1 : end]
		value, ok := params[name]
		if !ok {
			missing = append(missing, name)
			result = result[:start] + "\x00" + result[end+1:]
			continue
		}
		result = result[:start] + value + result[end+1:]
	}
	result = strings.ReplaceAll(result, "\x00", "")
	result = strings.ReplaceAll(result, "\x01", "{prompt}")
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", &ConfigError{Reason: fmt.Sprintf("unresolved placeholder(s): %s", strings.Join(missing, ", "))}
	}
	return result, nil
}

// deepCopy clones a nested map/slice/scalar structure so the profile's
// stored template is never mutated by rendering.
func deepCopy(node any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
