package interpreter

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"

	"github.com/example/fnscript/ast"
	"github.com/example/fnscript/parser"
)

// DefaultCacheSize is the number of parsed programs kept per interpreter
// unless WithParseCache overrides it.
const DefaultCacheSize = 128

// ParseCache maps source text to its parsed program. Programs are never
// mutated after parsing, so one cache may be shared by many interpreters.
type ParseCache struct {
	programs *lru.ARCCache
	hits     uint64
	misses   uint64
}

func NewParseCache(size int) (*ParseCache, error) {
	programs, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &ParseCache{programs: programs}, nil
}

// Parse returns the cached program for source, parsing and storing it on a
// miss. Failed parses are not cached.
func (c *ParseCache) Parse(source string) (*ast.Program, bool, error) {
	if cached, ok := c.programs.Get(source); ok {
		atomic.AddUint64(&c.hits, 1)
		return cached.(*ast.Program), true, nil
	}
	atomic.AddUint64(&c.misses, 1)
	program, err := parser.Parse(source)
	if err != nil {
		return nil, false, err
	}
	c.programs.Add(source, program)
	return program, false, nil
}

// Stats returns the hit and miss counters.
func (c *ParseCache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

func (c *ParseCache) Len() int {
	return c.programs.Len()
}
