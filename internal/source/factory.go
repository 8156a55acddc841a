package source

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"ichthus/internal/logging"
)

// Parser is the contract for language-specific declaration extractors.
type Parser interface {
	// Parse extracts declarations from source content. The path is used for
	// positions and error messages; content is the raw file bytes.
	Parse(ctx context.Context, path string, content []byte) (*File, error)

	// SupportedExtensions returns the extensions this parser handles,
	// leading dot included.
	SupportedExtensions() []string

	// Language returns the language identifier.
	Language() Language

	// Close releases parser resources.
	Close()
}

// Factory routes parse requests to the parser registered for a file's
// extension.
type Factory struct {
	mu      sync.RWMutex
	parsers map[string]Parser
}

// NewFactory creates a factory with the default C# and VB.NET parsers
// registered.
func NewFactory() *Factory {
	f := &Factory{parsers: make(map[string]Parser)}
	f.Register(NewCSharpParser())
	f.Register(NewVBNetParser())
	return f
}

// Register adds a parser for its supported extensions, replacing any
// previous registration.
func (f *Factory) Register(p Parser) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ext := range p.SupportedExtensions() {
		logging.ScanDebug("Factory: registering %s parser for extension %s", p.Language(), ext)
		f.parsers[strings.ToLower(ext)] = p
	}
}

// ParserFor returns the parser for a path, or nil when the extension is
// unsupported or the file is generated output.
func (f *Factory) ParserFor(path string) Parser {
	if IsGenerated(path) {
		return nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.parsers[strings.ToLower(filepath.Ext(path))]
}

// Close releases all registered parsers.
func (f *Factory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[Parser]bool)
	for _, p := range f.parsers {
		if !seen[p] {
			p.Close()
			seen[p] = true
		}
	}
	f.parsers = make(map[string]Parser)
}
