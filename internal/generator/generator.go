// Package generator emits the two generated source artifacts that wire
// discovered features into the host application's module graph: a registry
// artifact (a typed snapshot of all admissible records plus the computed
// navigation) and an aggregator artifact (one compilation unit importing
// every admissible feature's module entry point).
//
// Both artifacts are rendered fully in memory before anything touches disk,
// so an aborted pass never leaves a partially written file. Write failures
// are fatal to the build step and propagate as *errors.GenerateError.
package generator

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"os"
	"path"
	"path/filepath"
	"text/template"

	"golang.org/x/mod/modfile"

	ferrors "github.com/featforge/featforge/internal/errors"
	"github.com/featforge/featforge/internal/logging"
	"github.com/featforge/featforge/internal/types"
)

const (
	// RegistryFile is the generated registry artifact name.
	RegistryFile = "registry.gen.go"
	// ModulesFile is the generated aggregator artifact name.
	ModulesFile = "modules.gen.go"
)

// Generator renders and writes the generated artifacts.
type Generator struct {
	root       string // absolute scan root
	outputDir  string // absolute artifact directory
	moduleDir  string // directory containing the host's go.mod
	modulePath string // module path declared by the host's go.mod
	pkg        string // package name of the generated artifacts
	logger     logging.Logger
}

// New creates a generator for the given scan root and output directory. The
// host module's go.mod is located by walking upward from the scan root; its
// module path anchors every generated import path.
func New(root, outputDir string, logger logging.Logger) (*Generator, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving scan root: %w", err)
	}
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output dir: %w", err)
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}

	moduleDir, modulePath, err := resolveModule(absRoot)
	if err != nil {
		return nil, err
	}

	return &Generator{
		root:       absRoot,
		outputDir:  absOut,
		moduleDir:  moduleDir,
		modulePath: modulePath,
		pkg:        packageName(filepath.Base(absOut)),
		logger:     logger,
	}, nil
}

// OutputDir returns the absolute artifact directory.
func (g *Generator) OutputDir() string {
	return g.outputDir
}

// resolveModule walks upward from dir until it finds a go.mod and returns its
// directory and declared module path.
func resolveModule(dir string) (string, string, error) {
	for current := dir; ; current = filepath.Dir(current) {
		candidate := filepath.Join(current, "go.mod")
		data, err := os.ReadFile(candidate)
		if err == nil {
			modulePath := modfile.ModulePath(data)
			if modulePath == "" {
				return "", "", fmt.Errorf("%s declares no module path", candidate)
			}
			return current, modulePath, nil
		}
		if !os.IsNotExist(err) {
			return "", "", fmt.Errorf("reading %s: %w", candidate, err)
		}
		if filepath.Dir(current) == current {
			return "", "", fmt.Errorf("no go.mod found above %s", dir)
		}
	}
}

// ImportPath computes the import path of a feature's module package from the
// host module path and the feature folder's location, with separators
// normalized for portability.
func (g *Generator) ImportPath(sourcePath string) (string, error) {
	rel, err := filepath.Rel(g.moduleDir, sourcePath)
	if err != nil {
		return "", fmt.Errorf("computing import path for %s: %w", sourcePath, err)
	}
	if rel == "." {
		return g.modulePath, nil
	}
	return path.Join(g.modulePath, filepath.ToSlash(rel)), nil
}

// Generate renders both artifacts and writes them to the output directory.
func (g *Generator) Generate(ctx context.Context, features []*types.FeatureRecord, navigation []types.NavigationEntry) error {
	registrySrc, err := g.renderRegistry(features, navigation)
	if err != nil {
		return err
	}
	modulesSrc, err := g.renderModules(features)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return &ferrors.GenerateError{Path: g.outputDir, Err: err}
	}
	if err := g.writeArtifact(RegistryFile, registrySrc); err != nil {
		return err
	}
	if err := g.writeArtifact(ModulesFile, modulesSrc); err != nil {
		return err
	}

	g.logger.Info(ctx, "generated artifacts written",
		"dir", g.outputDir, "features", len(features), "navigation", len(navigation))
	return nil
}

func (g *Generator) writeArtifact(name string, src []byte) error {
	target := filepath.Join(g.outputDir, name)
	if err := os.WriteFile(target, src, 0644); err != nil {
		return &ferrors.GenerateError{Path: target, Err: err}
	}
	return nil
}

type registryData struct {
	Package    string
	Features   []registryFeature
	Navigation []types.NavigationEntry
}

type registryFeature struct {
	*types.FeatureRecord
	// RelPath is the feature folder relative to the scan root, slash
	// normalized so the artifact is byte-identical across platforms.
	RelPath string
}

func (g *Generator) renderRegistry(features []*types.FeatureRecord, navigation []types.NavigationEntry) ([]byte, error) {
	data := registryData{
		Package:    g.pkg,
		Navigation: navigation,
	}
	for _, feature := range features {
		rel, err := filepath.Rel(g.root, feature.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("relativizing %s: %w", feature.SourcePath, err)
		}
		data.Features = append(data.Features, registryFeature{
			FeatureRecord: feature,
			RelPath:       filepath.ToSlash(rel),
		})
	}
	return renderTemplate("registry", registryTemplate, data)
}

type moduleImport struct {
	Alias      string
	Symbol     string
	ImportPath string
}

type modulesData struct {
	Package string
	Modules []moduleImport
}

func (g *Generator) renderModules(features []*types.FeatureRecord) ([]byte, error) {
	data := modulesData{Package: g.pkg}
	// Ids like "user-profile" and "user_profile" are distinct to the
	// validator but collapse to one symbol, which would not compile.
	symbolOwners := make(map[string]string, len(features))
	for _, feature := range features {
		importPath, err := g.ImportPath(feature.SourcePath)
		if err != nil {
			return nil, err
		}
		symbol := SymbolName(feature.ID)
		if owner, taken := symbolOwners[symbol]; taken {
			return nil, &ferrors.GenerateError{
				Path: filepath.Join(g.outputDir, ModulesFile),
				Err: fmt.Errorf("feature ids '%s' and '%s' both map to generated symbol %s",
					owner, feature.ID, symbol),
			}
		}
		symbolOwners[symbol] = feature.ID
		data.Modules = append(data.Modules, moduleImport{
			Alias:      importAlias(feature.ID),
			Symbol:     symbol,
			ImportPath: importPath,
		})
	}
	return renderTemplate("modules", modulesTemplate, data)
}

var templateFuncs = template.FuncMap{
	"deref": func(p *int) int { return *p },
}

func renderTemplate(name, text string, data interface{}) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(templateFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering %s artifact: %w", name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting %s artifact: %w", name, err)
	}
	return src, nil
}

const registryTemplate = `// Code generated by featforge; DO NOT EDIT.

package {{ .Package }}

// Feature is the registry view of one discovered feature.
type Feature struct {
	ID          string
	Title       string
	Description string
	Routes      []Route
	SourcePath  string
}

// Route is the registry view of one declared route.
type Route struct {
	Path    string
	Title   string
	Primary bool
}

// NavigationEntry is one item of the derived navigation, already sorted.
type NavigationEntry struct {
	Label string
	Path  string
	Order *int
}

func ptr(v int) *int { return &v }

// Features lists every admissible feature in discovery order.
var Features = []Feature{
{{- range .Features }}
	{
		ID:    {{ printf "%q" .ID }},
		Title: {{ printf "%q" .Title }},
{{- if .Description }}
		Description: {{ printf "%q" .Description }},
{{- end }}
		Routes: []Route{
{{- range .Routes }}
			{Path: {{ printf "%q" .Path }}, Title: {{ printf "%q" .Title }}{{ if .Primary }}, Primary: true{{ end }}},
{{- end }}
		},
		SourcePath: {{ printf "%q" .RelPath }},
	},
{{- end }}
}

// Navigation lists the derived navigation entries in display order.
var Navigation = []NavigationEntry{
{{- range .Navigation }}
	{Label: {{ printf "%q" .Label }}, Path: {{ printf "%q" .Path }}{{ if .Order }}, Order: ptr({{ deref .Order }}){{ end }}},
{{- end }}
}
`

const modulesTemplate = `// Code generated by featforge; DO NOT EDIT.

package {{ .Package }}
{{ if .Modules }}
import (
{{- range .Modules }}
	{{ .Alias }} {{ printf "%q" .ImportPath }}
{{- end }}
)
{{ end }}
// Container composes the module entry points of every discovered feature.
// The host instantiates it once to register all features at startup.
type Container struct {
{{- range .Modules }}
	{{ .Symbol }} {{ .Alias }}.Module
{{- end }}
}

// NewContainer constructs every feature module in discovery order.
func NewContainer() *Container {
	return &Container{
{{- range .Modules }}
		{{ .Symbol }}: {{ .Alias }}.NewModule(),
{{- end }}
	}
}

// All returns the composed modules in discovery order.
func (c *Container) All() []any {
	return []any{
{{- range .Modules }}
		c.{{ .Symbol }},
{{- end }}
	}
}
`
