package petadmin_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func TestModuleDependencies_Present(t *testing.T) {
	goMod, err := os.ReadFile("go.mod")
	if err != nil {
		t.Fatalf("read go.mod: %v", err)
	}
	for _, module := range []string{
		"github.com/gin-gonic/gin",
		"github.com/golang-jwt/jwt/v5",
		"github.com/knadh/koanf/v2",
		"github.com/peterh/liner",
		"github.com/simp-lee/jwt",
		"github.com/simp-lee/logger",
		"github.com/tailscale/hujson",
		"golang.org/x/crypto",
		"golang.org/x/time",
		"gorm.io/gorm",
	} {
		if !moduleRequired(string(goMod), module) {
			t.Errorf("expected module %q to be present in go.mod", module)
		}
	}
}

func TestModuleRequired_Fixture(t *testing.T) {
	fixture := `module example.com/demo

go 1.25.0

require (
	github.com/gin-gonic/gin v1.11.0
)`
	if !moduleRequired(fixture, "github.com/gin-gonic/gin") {
		t.Error("gin should be detected")
	}
	if moduleRequired(fixture, "gorm.io/gorm") {
		t.Error("gorm should not be detected")
	}
}

// Client-side packages must not import gin or GORM directly.
func TestClientPackages_NoServerImports(t *testing.T) {
	clientDirs := []string{
		"internal/domain",
		"internal/listing",
		"internal/session",
		"internal/console",
		"internal/upstream",
	}
	forbidden := []string{"github.com/gin-gonic/gin", "gorm.io/"}

	for _, dir := range clientDirs {
		imports, err := packageImports(dir)
		if err != nil {
			t.Fatalf("scan %s: %v", dir, err)
		}
		for file, paths := range imports {
			for _, p := range paths {
				for _, f := range forbidden {
					if strings.HasPrefix(p, f) {
						t.Errorf("%s imports %s", file, p)
					}
				}
			}
		}
	}
}

func moduleRequired(goModContent, module string) bool {
	re := regexp.MustCompile(`(?m)^\s*(require\s+)?` + regexp.QuoteMeta(module) + `\s+v\S+`)
	return re.MatchString(goModContent)
}

// packageImports returns the imports of every non-test Go file in dir.
func packageImports(dir string) (map[string][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	out := make(map[string][]string)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
			continue
		}
		path := filepath.Join(dir, name)
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range f.Imports {
			p, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				return nil, err
			}
			out[path] = append(out[path], p)
		}
	}
	return out, nil
}
