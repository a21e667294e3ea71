package docs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	oerrors "github.com/weftci/weft/internal/errors"
)

// BrokenRef is one unresolvable cross reference.
type BrokenRef struct {
	// File is the referencing file.
	File string

	// Target is the reference as written.
	Target string
}

func (b BrokenRef) String() string {
	return fmt.Sprintf("%s: broken reference %q", b.File, b.Target)
}

// mdLink matches the target of an inline markdown link.
var mdLink = regexp.MustCompile(`\]\(([^)]+)\)`)

// ValidateLinks walks the documentation source tree and the generated output
// tree (if any) and verifies that every relative markdown and HTML reference
// resolves to an existing file. It never modifies either tree.
func ValidateLinks(dirs ...string) error {
	var broken []BrokenRef

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".md", ".markdown":
				refs, err := markdownRefs(path)
				if err != nil {
					return err
				}
				broken = append(broken, checkRefs(path, refs)...)
			case ".html", ".htm":
				refs, err := htmlRefs(path)
				if err != nil {
					return err
				}
				broken = append(broken, checkRefs(path, refs)...)
			}
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				return oerrors.NewNotFoundError("documentation directory not found", dir, "")
			}
			return fmt.Errorf("walking docs tree %s: %w", dir, err)
		}
	}

	if len(broken) > 0 {
		lines := make([]string, len(broken))
		for i, b := range broken {
			lines[i] = b.String()
		}
		return &oerrors.DetailError{
			Type:    "documentation validation failed",
			Message: strings.Join(lines, "\n  "),
			Hint:    "Fix the listed cross references or remove the dead targets",
		}
	}
	return nil
}

// markdownRefs extracts inline link targets from a markdown file.
func markdownRefs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var refs []string
	for _, m := range mdLink.FindAllStringSubmatch(string(data), -1) {
		target := strings.TrimSpace(m[1])
		// Drop a trailing title: [x](file "title")
		if i := strings.IndexAny(target, " \t"); i >= 0 {
			target = target[:i]
		}
		refs = append(refs, target)
	}
	return refs, nil
}

// htmlRefs extracts href/src targets from a generated HTML file.
func htmlRefs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	root, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var refs []string
	if err := visit(root, func(node *html.Node) error {
		if node.Type != html.ElementNode {
			return nil
		}
		for _, attr := range node.Attr {
			if attr.Namespace != "" {
				continue
			}
			switch {
			case node.Data == "a" && attr.Key == "href",
				node.Data == "link" && attr.Key == "href",
				node.Data == "img" && attr.Key == "src",
				node.Data == "script" && attr.Key == "src":
				refs = append(refs, attr.Val)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return refs, nil
}

// visit walks the HTML node tree depth-first.
func visit(node *html.Node, fn func(*html.Node) error) error {
	if err := fn(node); err != nil {
		return err
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := visit(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// checkRefs resolves relative references against the referencing file's
// directory and reports the ones that do not exist.
func checkRefs(file string, refs []string) []BrokenRef {
	var broken []BrokenRef
	for _, ref := range refs {
		target, ok := localTarget(ref)
		if !ok {
			continue
		}
		resolved := target
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(filepath.Dir(file), target)
		}
		if _, err := os.Stat(resolved); err != nil {
			broken = append(broken, BrokenRef{File: file, Target: ref})
		}
	}
	return broken
}

// localTarget strips fragments and query strings and reports whether the
// reference points at a local file at all.
func localTarget(ref string) (string, bool) {
	if ref == "" || strings.Contains(ref, "://") {
		return "", false
	}
	if strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "mailto:") || strings.HasPrefix(ref, "data:") {
		return "", false
	}
	if i := strings.IndexAny(ref, "#?"); i >= 0 {
		ref = ref[:i]
	}
	if ref == "" {
		return "", false
	}
	return ref, true
}
