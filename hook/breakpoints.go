package hook

import (
	"sort"

	"github.com/deepnoodle-ai/grld/errz"
)

// LineSet is the set of lines of one source that hold a breakpoint.
//
// A LineSet is shared by reference between the breakpoint table and the
// engine, so lines set after a source was first resolved are seen
// without any resync.
type LineSet map[int]bool

// Has reports whether line holds a breakpoint. Has is safe on a nil set.
func (ls LineSet) Has(line int) bool {
	return ls[line]
}

// Lines returns the breakpoint lines in ascending order.
func (ls LineSet) Lines() []int {
	lines := make([]int, 0, len(ls))
	for line, set := range ls {
		if set {
			lines = append(lines, line)
		}
	}
	sort.Ints(lines)
	return lines
}

// AliasTable maps the source ids reported by the VM to breakpoint lines.
// It is owned by the collaborator.
type AliasTable interface {
	// Resolve returns the breakpoint lines for a VM source id.
	Resolve(source string) (LineSet, bool)

	// Generation changes whenever a source id is mapped to a different
	// LineSet, which invalidates the engine's resolved-file cache.
	Generation() uint64
}

// Breakpoints is an AliasTable keyed by canonical source ids, with
// aliases for the raw ids the VM reports for the same source.
type Breakpoints struct {
	tables  map[string]LineSet
	aliases map[string]string
	gen     uint64
}

// NewBreakpoints creates an empty breakpoint table.
func NewBreakpoints() *Breakpoints {
	return &Breakpoints{
		tables:  map[string]LineSet{},
		aliases: map[string]string{},
	}
}

// Set adds a breakpoint.
func (b *Breakpoints) Set(source string, line int) {
	b.lines(source)[line] = true
}

// Clear removes a breakpoint.
func (b *Breakpoints) Clear(source string, line int) {
	if ls, ok := b.tables[source]; ok {
		delete(ls, line)
	}
}

// Register makes source known without adding a breakpoint and returns
// its lines. Registered sources resolve to an empty set instead of
// triggering lazy registration.
func (b *Breakpoints) Register(source string) LineSet {
	return b.lines(source)
}

// Alias makes the raw source id resolve to the lines of canonical.
func (b *Breakpoints) Alias(raw, canonical string) {
	if b.aliases[raw] == canonical {
		return
	}
	b.aliases[raw] = canonical
	b.lines(canonical)
	b.gen++
}

// Lines returns the lines of a canonical source id.
func (b *Breakpoints) Lines(source string) LineSet {
	return b.tables[source]
}

// Sources returns the canonical source ids in ascending order.
func (b *Breakpoints) Sources() []string {
	sources := make([]string, 0, len(b.tables))
	for source := range b.tables {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}

// Resolve implements AliasTable. Aliases take precedence over canonical
// ids.
func (b *Breakpoints) Resolve(source string) (LineSet, bool) {
	if canonical, ok := b.aliases[source]; ok {
		source = canonical
	}
	ls, ok := b.tables[source]
	return ls, ok
}

// Generation implements AliasTable.
func (b *Breakpoints) Generation() uint64 {
	return b.gen
}

func (b *Breakpoints) lines(source string) LineSet {
	ls, ok := b.tables[source]
	if !ok {
		ls = LineSet{}
		b.tables[source] = ls
		b.gen++
	}
	return ls
}

// fileCache remembers the resolution of the last source looked up.
type fileCache struct {
	valid  bool
	source string
	lines  LineSet
	gen    uint64
}

func (c *fileCache) reset() {
	*c = fileCache{}
}

// isBreakpointSet reports whether line of source holds a breakpoint.
//
// Execution tends to stay in one source for long stretches, so the last
// resolution is kept and reused while the source and the table
// generation are unchanged.
func (s *Session) isBreakpointSet(source string, line int) bool {
	if s.aliases == nil {
		return false
	}
	gen := s.aliases.Generation()
	if s.cache.valid && s.cache.source == source && s.cache.gen == gen {
		s.stats.CacheHits++
		return s.cache.lines.Has(line)
	}
	s.stats.CacheMisses++

	lines, ok := s.aliases.Resolve(source)
	if !ok && s.isFileSource(source) {
		var err error
		lines, err = s.registerSource(source)
		if err != nil {
			s.report(wrap(errz.CallbackRegisterSource, err).At(source, line))
			return false
		}
		// Registration may have changed the table.
		gen = s.aliases.Generation()
	}
	s.cache = fileCache{valid: true, source: source, lines: lines, gen: gen}
	return lines.Has(line)
}

func (s *Session) registerSource(source string) (lines LineSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines, err = nil, errz.FromPanic(errz.CallbackRegisterSource, r)
		}
	}()
	s.stats.Registrations++
	return s.collab.RegisterSource(source)
}
