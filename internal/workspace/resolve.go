package workspace

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde expands a leading home-directory shorthand to an absolute
// path. Paths without the shorthand are returned unchanged.
func ExpandTilde(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}

	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		rest, ok = strings.CutPrefix(path, `~\`)
	}
	if ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}

	return path
}

// CanonicalizeRoot turns a raw workspace path into its canonical,
// symlink-resolved form. The result is computed fresh on every call and
// never cached.
func CanonicalizeRoot(raw string) (string, error) {
	if raw == "" {
		return "", pathError(KindInvalidArgument, raw, "workspace path is required")
	}

	abs, err := filepath.Abs(ExpandTilde(raw))
	if err != nil {
		return "", pathError(KindIO, raw, "failed to resolve workspace path")
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", pathError(KindNotFound, raw, "workspace path does not exist")
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return "", pathError(KindNotFound, raw, "workspace path does not exist")
	}
	if !info.IsDir() {
		return "", pathError(KindNotADirectory, raw, "workspace path is not a directory")
	}

	return canonical, nil
}

// ResolveScoped resolves raw against the workspace root and guarantees
// the canonical result stays inside it. Targets that do not exist yet are
// resolved through their parent directory so that files about to be
// created still get a canonical path. This is the security boundary for
// every read, write, list and exists operation; none of them bypass it.
func ResolveScoped(raw, workspaceRaw string) (string, error) {
	root, err := CanonicalizeRoot(workspaceRaw)
	if err != nil {
		return "", err
	}

	target := raw
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}

	var resolved string
	if _, statErr := os.Stat(target); statErr == nil {
		resolved, err = filepath.EvalSymlinks(target)
		if err != nil {
			return "", pathError(KindIO, raw, "failed to canonicalize target path")
		}
	} else {
		parent := filepath.Dir(target)
		canonicalParent, evalErr := filepath.EvalSymlinks(parent)
		if evalErr != nil {
			return "", pathError(KindNotFound, raw, "target parent directory does not exist")
		}
		resolved = filepath.Join(canonicalParent, filepath.Base(target))
	}

	if !containedIn(resolved, root) {
		return "", pathError(KindPathEscape, raw, "path is outside workspace root")
	}

	return resolved, nil
}

// containedIn checks the prefix on a path component boundary so that
// /ws-evil does not pass as inside /ws.
func containedIn(path, root string) bool {
	if path == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(path, root)
}
