package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"ichthus/internal/logging"
	"ichthus/internal/rule"
	"ichthus/internal/source"
)

// corePolicyProgram derives Core-namespace dependency violations from the
// import graph. Transitivity matters: Core -> Core -> App is still a leak.
const corePolicyProgram = `
# Namespace dependency policy over the import graph.
Decl imports(Src, Dst) bound [/string, /string].
Decl core_ns(Ns) bound [/string].
Decl app_ns(Ns) bound [/string].

Decl depends(Src, Dst) bound [/string, /string].
depends(X, Y) :- imports(X, Y).
depends(X, Z) :- imports(X, Y), depends(Y, Z).

Decl core_violation(Src, Dst) bound [/string, /string].
core_violation(X, Y) :- core_ns(X), depends(X, Y), app_ns(Y).
`

// isCoreNamespace reports whether a namespace sits under the Core segment of
// the configured root (Ichthus.Core, Ichthus.Core.Abstractions, ...).
func (a *Analyzer) isCoreNamespace(ns string) bool {
	segs := strings.Split(ns, ".")
	return len(segs) >= 2 &&
		segs[0] == a.cfg.Namespaces.RootSegment &&
		segs[1] == a.cfg.Namespaces.CoreSegment
}

// isAppNamespace reports whether a namespace belongs to the organization
// root but outside Core.
func (a *Analyzer) isAppNamespace(ns string) bool {
	segs := strings.Split(ns, ".")
	return len(segs) >= 1 &&
		segs[0] == a.cfg.Namespaces.RootSegment &&
		!a.isCoreNamespace(ns)
}

// importSite locates the file and line of an import edge for reporting.
type importSite struct {
	file string
	line int
}

// checkCorePolicy evaluates the Core dependency rule over every file's
// using directives with the Datalog engine.
func (a *Analyzer) checkCorePolicy(files []*source.File) ([]rule.Finding, error) {
	if a.cfg.RuleDisabled("ICH104") {
		return nil, nil
	}

	timer := logging.StartTimer(logging.CategoryRules, "checkCorePolicy")
	defer timer.Stop()

	// Collect edges and the namespaces seen anywhere in the tree.
	namespaces := make(map[string]bool)
	edges := make(map[[2]string]importSite)
	for _, f := range files {
		for _, ns := range f.Namespaces {
			full := ns.Name
			if ns.Namespace != "" {
				full = ns.Namespace + "." + ns.Name
			}
			namespaces[full] = true
		}
		for _, u := range f.Usings {
			if u.Namespace == "" {
				// File-top import: attribute it to every namespace the
				// file declares.
				for _, ns := range f.Namespaces {
					full := ns.Name
					if ns.Namespace != "" {
						full = ns.Namespace + "." + ns.Name
					}
					key := [2]string{full, u.Target}
					if _, dup := edges[key]; !dup {
						edges[key] = importSite{file: f.Path, line: u.Line}
					}
					namespaces[u.Target] = true
				}
				continue
			}
			key := [2]string{u.Namespace, u.Target}
			if _, dup := edges[key]; !dup {
				edges[key] = importSite{file: f.Path, line: u.Line}
			}
			namespaces[u.Target] = true
		}
	}
	if len(edges) == 0 {
		return nil, nil
	}

	unit, err := parse.Unit(strings.NewReader(corePolicyProgram))
	if err != nil {
		return nil, fmt.Errorf("failed to parse namespace policy: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze namespace policy: %w", err)
	}

	store := factstore.NewSimpleInMemoryStore()
	for key := range edges {
		store.Add(ast.NewAtom("imports", ast.String(key[0]), ast.String(key[1])))
	}
	for ns := range namespaces {
		if a.isCoreNamespace(ns) {
			store.Add(ast.NewAtom("core_ns", ast.String(ns)))
		} else if a.isAppNamespace(ns) {
			store.Add(ast.NewAtom("app_ns", ast.String(ns)))
		}
	}

	if _, err := mengine.EvalProgramWithStats(programInfo, store); err != nil {
		return nil, fmt.Errorf("failed to evaluate namespace policy: %w", err)
	}

	type violation struct{ src, dst string }
	var violations []violation
	sym := ast.PredicateSym{Symbol: "core_violation", Arity: 2}
	err = store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		src, okSrc := atom.Args[0].(ast.Constant)
		dst, okDst := atom.Args[1].(ast.Constant)
		if okSrc && okDst {
			violations = append(violations, violation{src: src.Symbol, dst: dst.Symbol})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read policy results: %w", err)
	}

	// Deterministic output regardless of store iteration order.
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].src != violations[j].src {
			return violations[i].src < violations[j].src
		}
		return violations[i].dst < violations[j].dst
	})

	var findings []rule.Finding
	for _, v := range violations {
		site, direct := edges[[2]string{v.src, v.dst}]
		msg := fmt.Sprintf("Core namespace %q depends on non-Core namespace %q", v.src, v.dst)
		if !direct {
			// Transitive edge: report at the first outgoing import of src.
			site = a.firstEdgeFrom(edges, v.src)
			msg += " (transitively)"
		}
		if fd, ok := a.finding("ICH104", site.file, site.line, 1,
			fmt.Sprintf("core:%s->%s", v.src, v.dst), msg); ok {
			findings = append(findings, fd)
		}
	}

	logging.RulesDebug("Core policy: %d edges, %d violations", len(edges), len(violations))
	return findings, nil
}

// firstEdgeFrom picks a stable reporting site for transitive violations.
func (a *Analyzer) firstEdgeFrom(edges map[[2]string]importSite, src string) importSite {
	best := importSite{}
	for key, site := range edges {
		if key[0] != src {
			continue
		}
		if best.file == "" || site.file < best.file || (site.file == best.file && site.line < best.line) {
			best = site
		}
	}
	return best
}
