package rule

import "fmt"

// builtins enumerates every rule the analyzers know how to evaluate.
// IDs are stable: ICH0xx naming, ICH1xx namespaces, ICH2xx documentation
// comments, ICH3xx suppression, ICH4xx embedded SQL, DOC0xx guide documents.
var builtins = []Rule{
	{
		ID: "ICH001", Category: CategoryNaming, Severity: SeverityError,
		Summary:   "Source file could not be parsed",
		Rationale: "A file the parser cannot read cannot be checked. The failure is reported as a finding so a single broken file never aborts a run.",
	},
	{
		ID: "ICH002", Category: CategoryNaming, Severity: SeverityWarning,
		Summary:   "Type names use PascalCase",
		Rationale: "Classes, structs, enums, and delegates are PascalCase: `EdiParser` is wrong only when `EDI` is a registered acronym; `ediParser` and `edi_parser` are always wrong.",
	},
	{
		ID: "ICH003", Category: CategoryNaming, Severity: SeverityWarning,
		Summary:   "Interface names carry the I prefix",
		Rationale: "Interfaces are named `I` followed by a PascalCase noun: `IMessageParser`. A bare `MessageParser` interface is indistinguishable from its implementation at use sites.",
	},
	{
		ID: "ICH004", Category: CategoryNaming, Severity: SeverityWarning,
		Summary:   "Method names use PascalCase",
		Rationale: "Methods, subs, and functions are PascalCase regardless of visibility.",
	},
	{
		ID: "ICH005", Category: CategoryNaming, Severity: SeverityWarning,
		Summary:   "Properties and events use PascalCase",
		Rationale: "Properties and events are PascalCase; a camelCase property reads as a field at call sites.",
	},
	{
		ID: "ICH006", Category: CategoryNaming, Severity: SeverityWarning,
		Summary:   "Parameter names use camelCase",
		Rationale: "Parameters are camelCase with no type prefix.",
	},
	{
		ID: "ICH007", Category: CategoryNaming, Severity: SeverityInfo,
		Summary:   "Local variables use camelCase",
		Rationale: "Locals are camelCase. Single-letter loop variables are exempt.",
	},
	{
		ID: "ICH008", Category: CategoryNaming, Severity: SeverityWarning,
		Summary:   "Constants use PascalCase, never SCREAMING_SNAKE",
		Rationale: "Constants follow the same PascalCase rule as other members. `MAX_RETRIES` imports a C convention the guide explicitly rejects.",
	},
	{
		ID: "ICH009", Category: CategoryNaming, Severity: SeverityWarning,
		Summary:   "Registered acronyms keep full capitalization",
		Rationale: "Acronyms on the accepted list stay fully capitalized inside identifiers: `EDIParser`, not `EdiParser`; `ParseXMLDocument`, not `ParseXmlDocument`.",
	},
	{
		ID: "ICH010", Category: CategoryNaming, Severity: SeverityWarning,
		Summary:   "Hungarian prefixes are forbidden",
		Rationale: "Type-encoding prefixes (`strName`, `intCount`, `m_total`) restate what the compiler already knows and rot when types change.",
	},
	{
		ID: "ICH011", Category: CategoryNaming, Severity: SeverityInfo,
		Summary:   "WinForms control fields use the control prefix table",
		Rationale: "The one sanctioned prefix family: fields holding WinForms controls use the three-letter prefix for their control type (`btnSave`, `txtCustomerName`), Pascal after the prefix.",
	},
	{
		ID: "ICH012", Category: CategoryNaming, Severity: SeverityInfo,
		Summary:   "Private fields use camelCase",
		Rationale: "Private fields are camelCase without `m_` or `_` sigils; visibility is declared, not spelled into the name.",
	},

	{
		ID: "ICH101", Category: CategoryNamespaces, Severity: SeverityWarning,
		Summary:   "Namespace segments use PascalCase",
		Rationale: "Every dot-separated segment is PascalCase, acronym rules included.",
	},
	{
		ID: "ICH102", Category: CategoryNamespaces, Severity: SeverityWarning,
		Summary:   "Namespace depth is bounded",
		Rationale: "Deep trees fragment small codebases. The default bound is four segments.",
	},
	{
		ID: "ICH103", Category: CategoryNamespaces, Severity: SeverityWarning,
		Summary:   "Namespaces start with the organization root segment",
		Rationale: "All namespaces are rooted at the organization segment so types sort together in every tooling view.",
	},
	{
		ID: "ICH104", Category: CategoryNamespaces, Severity: SeverityError,
		Summary:   "Core namespaces are dependency-free",
		Rationale: "A namespace under the Core segment holds stable abstractions and may depend only on the BCL and other Core namespaces. Any import path from Core into a non-Core sibling, direct or transitive, is a violation.",
	},

	{
		ID: "ICH201", Category: CategoryDocComments, Severity: SeverityWarning,
		Summary:   "Public types carry XML documentation comments",
		Rationale: "Every public type has a `/// <summary>` block. Omitted documentation on public surface area is treated as missing API contract.",
	},
	{
		ID: "ICH202", Category: CategoryDocComments, Severity: SeverityInfo,
		Summary:   "Public members carry XML documentation comments",
		Rationale: "Public methods and properties document behavior, not implementation.",
	},

	{
		ID: "ICH301", Category: CategorySuppression, Severity: SeverityError,
		Summary:   "Analysis suppression attributes are forbidden",
		Rationale: "`[SuppressMessage]` silences the analyzers the conventions rely on. Fix the finding or record a deviation in the guide; never suppress.",
	},
	{
		ID: "ICH302", Category: CategorySuppression, Severity: SeverityError,
		Summary:   "#pragma warning disable is forbidden",
		Rationale: "Pragma-level suppression hides findings from every future reader of the file.",
	},

	{
		ID: "ICH401", Category: CategorySQL, Severity: SeverityInfo,
		Summary:   "SQL keywords in string literals are uppercase",
		Rationale: "Inline SQL capitalizes keywords (`SELECT`, `FROM`, `WHERE`) so the statement shape is scannable inside host-language code.",
	},

	{
		ID: "DOC001", Category: CategoryGuideDocs, Severity: SeverityError,
		Summary:   "Guide revision is readable Markdown with headings",
		Rationale: "A revision that yields no heading structure cannot be checked for numbering or contradictions.",
	},
	{
		ID: "DOC002", Category: CategoryGuideDocs, Severity: SeverityWarning,
		Summary:   "Section numbers are monotonic without gaps",
		Rationale: "Sibling sections number 1, 2, 3... A gap or repeat means sections were moved without renumbering.",
	},
	{
		ID: "DOC003", Category: CategoryGuideDocs, Severity: SeverityWarning,
		Summary:   "Subsection numbers extend their parent",
		Rationale: "Section 3.2 must sit under section 3. A 4.x heading under section 3 indicates a copy-paste from another draft.",
	},
	{
		ID: "DOC004", Category: CategoryGuideDocs, Severity: SeverityInfo,
		Summary:   "Heading levels never skip",
		Rationale: "An h4 directly under an h2 breaks generated tables of contents.",
	},
	{
		ID: "DOC005", Category: CategoryGuideDocs, Severity: SeverityError,
		Summary:   "Revisions contradict earlier revisions only with a recorded deviation",
		Rationale: "When a later draft reverses an earlier rule, the section must carry a deviation rationale. An unmarked reversal leaves readers unable to tell which revision is canonical.",
	},
}

// Registry resolves rule IDs and enumerates known rules.
type Registry struct {
	byID  map[string]Rule
	order []string
}

// NewRegistry builds a registry over the built-in rule set.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]Rule, len(builtins))}
	for _, rl := range builtins {
		r.byID[rl.ID] = rl
		r.order = append(r.order, rl.ID)
	}
	return r
}

// Get returns the rule for an ID.
func (r *Registry) Get(id string) (Rule, error) {
	rl, ok := r.byID[FormatID(id)]
	if !ok {
		return Rule{}, fmt.Errorf("unknown rule %q", id)
	}
	return rl, nil
}

// All returns rules in registration order.
func (r *Registry) All() []Rule {
	out := make([]Rule, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Severity resolves the effective severity for a rule, honoring overrides.
// Overrides change severity only; unknown overrides fall back to the default.
func (r *Registry) Severity(id string, overrides map[string]string) Severity {
	rl, ok := r.byID[FormatID(id)]
	if !ok {
		return SeverityWarning
	}
	if ov, exists := overrides[rl.ID]; exists {
		if sev, err := ParseSeverity(ov); err == nil {
			return sev
		}
	}
	return rl.Severity
}
