package workspace

import (
	"regexp"
	"strings"
)

// SplitScope separates "@scope/name" into its scope and bare name. Unscoped
// names return an empty scope.
func SplitScope(name string) (scope, bare string) {
	if strings.HasPrefix(name, "@") {
		if i := strings.Index(name, "/"); i > 0 {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}

// DomainSegments splits the bare part of a package name into the words used
// by the naming convention, e.g. "@acme/billing-api-client" gives
// billing, api, client.
func DomainSegments(name string) []string {
	_, bare := SplitScope(name)
	return strings.FieldsFunc(bare, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == '/'
	})
}

// MatchesDomain reports whether domain is one of the name's segments, or the
// scope itself when domain starts with "@". Comparison ignores case.
func MatchesDomain(name, domain string) bool {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return true
	}

	if strings.HasPrefix(domain, "@") {
		scope, _ := SplitScope(name)
		return strings.EqualFold(scope, strings.TrimSuffix(domain, "/"))
	}

	for _, segment := range DomainSegments(name) {
		if strings.EqualFold(segment, domain) {
			return true
		}
	}
	return false
}

func FilterByDomain(pkgs []PackageNode, domain string) []PackageNode {
	out := make([]PackageNode, 0, len(pkgs))
	for _, p := range pkgs {
		if p.IsPackage() && MatchesDomain(p.Name, domain) {
			out = append(out, p)
		}
	}
	return out
}

var importPattern = regexp.MustCompile(`(?:\bfrom\s+|\brequire\s*\(\s*|\bimport\s*\(\s*|^\s*import\s+)['"]((?:@[A-Za-z0-9_.-]+/)?[A-Za-z0-9_.-]+)(?:/[^'"]*)?['"]`)

// MatchImport extracts the package imported on a source line. When scope is
// set, only packages under that scope match.
func MatchImport(line, scope string) (string, bool) {
	for _, m := range importPattern.FindAllStringSubmatch(line, -1) {
		pkg := m[1]
		if strings.HasPrefix(pkg, ".") {
			continue
		}
		if scope == "" {
			return pkg, true
		}
		if s, _ := SplitScope(pkg); strings.EqualFold(s, strings.TrimSuffix(scope, "/")) {
			return pkg, true
		}
	}
	return "", false
}

// MissingImports lists imported workspace packages from lines that are not
// yet declared in deps.
func MissingImports(lines []string, scope string, deps map[string]string) []string {
	seen := make(map[string]bool)
	var missing []string
	for _, line := range lines {
		pkg, ok := MatchImport(line, scope)
		if !ok || seen[pkg] {
			continue
		}
		seen[pkg] = true
		if _, declared := deps[pkg]; !declared {
			missing = append(missing, pkg)
		}
	}
	return missing
}

// PackageNames is the set of package names found anywhere in nodes.
func PackageNames(nodes []PackageNode) map[string]bool {
	names := make(map[string]bool)
	for _, n := range Flatten(nodes) {
		names[n.Name] = true
	}
	return names
}

// WorkspaceImports drops self from missing and, when known is non-nil, every
// name that is not a workspace package.
func WorkspaceImports(missing []string, self string, known map[string]bool) []string {
	out := make([]string, 0, len(missing))
	for _, pkg := range missing {
		if pkg == self {
			continue
		}
		if known != nil && !known[pkg] {
			continue
		}
		out = append(out, pkg)
	}
	return out
}
