// Package analyze evaluates the convention rules against a workspace: it
// walks the tree, parses every supported source file, and runs each enabled
// rule over the extracted declarations.
package analyze

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"ichthus/internal/config"
	"ichthus/internal/logging"
	"ichthus/internal/rule"
	"ichthus/internal/source"
)

// parseConcurrency caps the parser worker pool.
const parseConcurrency = 8

// Analyzer evaluates rules over source files.
type Analyzer struct {
	cfg     *config.Config
	reg     *rule.Registry
	factory *source.Factory
}

// New creates an Analyzer for a configuration.
func New(cfg *config.Config) *Analyzer {
	return &Analyzer{
		cfg:     cfg,
		reg:     rule.NewRegistry(),
		factory: source.NewFactory(),
	}
}

// Close releases parser resources.
func (a *Analyzer) Close() {
	a.factory.Close()
}

// Registry exposes the rule registry for renderers.
func (a *Analyzer) Registry() *rule.Registry {
	return a.reg
}

// finding builds a Finding with the effective severity, or reports the rule
// disabled. Severity overrides never alter message or subject.
func (a *Analyzer) finding(id, file string, line, col int, subject, msg string) (rule.Finding, bool) {
	if a.cfg.RuleDisabled(id) {
		return rule.Finding{}, false
	}
	return rule.Finding{
		RuleID:   id,
		Severity: a.reg.Severity(id, a.cfg.Rules.Severity),
		File:     file,
		Line:     line,
		Column:   col,
		Subject:  subject,
		Message:  msg,
	}, true
}

// hidden directories that still hold checkable sources
var allowedHiddenDirs = map[string]bool{
	".github":  true,
	".vscode":  true,
	".config":  true,
	".ichthus": false, // internal, always skip
	".git":     false, // always skip
}

// CollectSources walks root and returns every supported, non-generated
// source path, relative to root.
func CollectSources(root string) ([]string, error) {
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if strings.HasPrefix(name, ".") && name != "." {
				if allow, exists := allowedHiddenDirs[name]; exists && allow {
					return nil
				}
				return filepath.SkipDir
			}
			return nil
		}
		if source.LanguageFor(path) == "" || source.IsGenerated(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return paths, nil
}

// LintWorkspace lints every supported file under root.
func (a *Analyzer) LintWorkspace(ctx context.Context, root string) ([]rule.Finding, error) {
	timer := logging.StartTimer(logging.CategoryScan, "LintWorkspace")
	defer timer.Stop()

	paths, err := CollectSources(root)
	if err != nil {
		return nil, err
	}
	logging.Scan("Linting %d files under %s", len(paths), root)
	return a.LintFiles(ctx, root, paths)
}

// LintFiles lints the given paths (relative to root). Parse failures become
// findings, not errors; only I/O on the root itself aborts the run.
func (a *Analyzer) LintFiles(ctx context.Context, root string, paths []string) ([]rule.Finding, error) {
	var (
		mu       sync.Mutex
		files    []*source.File
		findings []rule.Finding
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parseConcurrency)

	for _, rel := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			parser := a.factory.ParserFor(rel)
			if parser == nil {
				return nil
			}
			content, err := os.ReadFile(filepath.Join(root, rel))
			if err != nil {
				return fmt.Errorf("read %s: %w", rel, err)
			}
			file, err := parser.Parse(ctx, rel, content)
			if err != nil {
				if f, ok := a.finding("ICH001", rel, 1, 1, rel, fmt.Sprintf("file could not be parsed: %v", err)); ok {
					mu.Lock()
					findings = append(findings, f)
					mu.Unlock()
				}
				return nil
			}
			mu.Lock()
			files = append(files, file)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, f := range files {
		findings = append(findings, a.checkFile(f)...)
	}

	nsFindings, err := a.checkCorePolicy(files)
	if err != nil {
		return nil, err
	}
	findings = append(findings, nsFindings...)

	rule.Sort(findings)
	logging.Rules("Evaluation produced %d findings across %d files", len(findings), len(files))
	return findings, nil
}

// checkFile runs every per-file rule.
func (a *Analyzer) checkFile(f *source.File) []rule.Finding {
	var findings []rule.Finding
	findings = append(findings, a.checkNamespaceShape(f)...)
	for _, d := range f.Decls {
		findings = append(findings, a.checkDeclaration(f, d)...)
	}
	findings = append(findings, a.checkSuppression(f)...)
	findings = append(findings, a.checkSQLLiterals(f)...)
	return findings
}

// checkSuppression flags suppression attributes and raw pragmas.
func (a *Analyzer) checkSuppression(f *source.File) []rule.Finding {
	var findings []rule.Finding
	nth := 0
	for _, attr := range f.Attributes {
		name := attr.Name
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
		if name == "SuppressMessage" || name == "SuppressMessageAttribute" {
			// Ordinal subject keeps the fingerprint stable across line drift.
			if fd, ok := a.finding("ICH301", f.Path, attr.Line, attr.Column,
				fmt.Sprintf("attr:%s#%d", name, nth),
				"analysis suppression attribute is forbidden; fix the finding or record a deviation"); ok {
				findings = append(findings, fd)
			}
			nth++
		}
	}
	for i, p := range f.Pragmas {
		if fd, ok := a.finding("ICH302", f.Path, p.Line, 1,
			fmt.Sprintf("pragma#%d", i),
			fmt.Sprintf("warning suppression directive is forbidden: %s", p.Text)); ok {
			findings = append(findings, fd)
		}
	}
	return findings
}
