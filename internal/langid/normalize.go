package langid

import "strings"

// ID canonicalizes a language display name into the stable lowercase
// identifier used as the first field of aggregate CSV rows.
func ID(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.Trim(normalized, "-")
	if normalized == "" {
		return ""
	}
	if canonical, ok := canonicalLanguageID(normalized); ok {
		return canonical
	}
	return normalized
}

// DisplayName maps a language name or id to the spelling used in the
// harness banner line. Unknown ids fall back to an initial capital.
func DisplayName(name string) string {
	id := ID(name)
	if display, ok := knownDisplayName(id); ok {
		return display
	}
	if id == "" {
		return ""
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

func canonicalLanguageID(normalized string) (string, bool) {
	switch normalized {
	case "go", "golang":
		return "go", true
	case "python", "python3", "py":
		return "python", true
	case "java":
		return "java", true
	case "c#", "csharp", "c-sharp", "cs":
		return "csharp", true
	case "f#", "fsharp", "f-sharp":
		return "fsharp", true
	case "c++", "cpp", "cplusplus", "c-plus-plus":
		return "cpp", true
	case "javascript", "js", "node", "nodejs", "node-js":
		return "javascript", true
	case "typescript", "ts":
		return "typescript", true
	case "swift":
		return "swift", true
	case "clojure", "clj":
		return "clojure", true
	case "julia", "jl":
		return "julia", true
	case "rust", "rs":
		return "rust", true
	default:
		return "", false
	}
}

func knownDisplayName(id string) (string, bool) {
	switch id {
	case "go":
		return "Go", true
	case "python":
		return "Python", true
	case "java":
		return "Java", true
	case "csharp":
		return "C#", true
	case "fsharp":
		return "F#", true
	case "cpp":
		return "C++", true
	case "javascript":
		return "JavaScript", true
	case "typescript":
		return "TypeScript", true
	case "swift":
		return "Swift", true
	case "clojure":
		return "Clojure", true
	case "julia":
		return "Julia", true
	case "rust":
		return "Rust", true
	default:
		return "", false
	}
}
