//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package engine_test

import (
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/file-modifier/internal/engine"
)

func TestGlobFilterInvalidPattern(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	filter := engine.NewGlobFilter("[invalid")

	g.Expect(filter.Valid()).To(BeFalse())
	g.Expect(filter.Excludes("test.txt")).To(BeFalse())
}

func TestGlobFilterExcludes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pattern  string
		path     string
		excluded bool
	}{
		{name: "empty pattern excludes nothing", pattern: "", path: "any/file.txt", excluded: false},
		{name: "extension at top level", pattern: "*.tmp", path: "scratch.tmp", excluded: true},
		{name: "extension matches base name at depth", pattern: "*.tmp", path: "a/b/scratch.tmp", excluded: true},
		{name: "other extension kept", pattern: "*.tmp", path: "a/notes.txt", excluded: false},
		{name: "case insensitive", pattern: "*.MOV", path: "clips/Video.mov", excluded: true},
		{name: "leading separator ignored", pattern: "*.log", path: "/logs/app.log", excluded: true},
		{name: "doublestar across directories", pattern: "build/**/*.o", path: "build/x/y/main.o", excluded: true},
		{name: "anchored pattern does not match base", pattern: "build/*.o", path: "src/build/main.o", excluded: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			g.Expect(engine.NewGlobFilter(tt.pattern).Excludes(tt.path)).To(Equal(tt.excluded))
		})
	}
}

func TestGlobFilterExcludesPathChecksParents(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	filter := engine.NewGlobFilter("node_modules")

	g.Expect(filter.ExcludesPath("/node_modules")).To(BeTrue())
	g.Expect(filter.ExcludesPath("/web/node_modules/pkg/index.js")).To(BeTrue())
	g.Expect(filter.ExcludesPath("/web/src/index.js")).To(BeFalse())
}
