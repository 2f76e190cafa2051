package maker

import (
	"strings"

	"github.com/raphaelvigee/gmk/pattern"
)

func splitDir(name string) (string, string) {
	i := strings.LastIndex(name, "/")
	return name[:i+1], name[i+1:]
}

// Stem returns the part of target matched by the "%" of pat. A pattern
// without a slash is matched against the base name of target, and the
// directory is put back in front of the stem.
func Stem(pat, target string) (string, bool) {
	p, ok := pattern.Parse(pat)
	if !ok {
		return "", false
	}

	if strings.Contains(pat, "/") {
		return p.Stem(target)
	}

	dir, base := splitDir(target)
	s, ok := p.Stem(base)
	if !ok {
		return "", false
	}

	return dir + s, true
}

// prerequisite substitutes the stem of target into a prerequisite pattern.
func prerequisite(targetPat pattern.Pattern, dep, stem string) string {
	dp, ok := pattern.Parse(dep)
	if !ok {
		return dep
	}

	if strings.Contains(targetPat.String(), "/") {
		return dp.Subst(stem)
	}

	dir, base := splitDir(stem)
	return dir + dp.Subst(base)
}
