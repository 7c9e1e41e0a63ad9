package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/featforge/featforge/internal/errors"
	"github.com/featforge/featforge/internal/types"
)

func setupModule(t *testing.T) (root string, features []*types.FeatureRecord) {
	t.Helper()
	moduleDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(moduleDir, "go.mod"),
		[]byte("module example.com/shop\n\ngo 1.24\n"), 0644))

	root = filepath.Join(moduleDir, "features")
	for _, id := range []string{"checkout", "user-profile"} {
		dir := filepath.Join(root, id)
		require.NoError(t, os.MkdirAll(dir, 0755))
	}

	order := 3
	features = []*types.FeatureRecord{
		{
			ID:         "checkout",
			Title:      "Checkout",
			Routes:     []types.RouteDescriptor{{Path: "/checkout", Title: "Checkout", Primary: true}},
			Nav:        &types.NavDescriptor{Label: "Checkout", Order: &order},
			SourcePath: filepath.Join(root, "checkout"),
		},
		{
			ID:          "user-profile",
			Title:       "User Profile",
			Description: "Account management",
			Routes: []types.RouteDescriptor{
				{Path: "/profile", Title: "Profile"},
				{Path: "/profile/settings", Title: "Settings"},
			},
			SourcePath: filepath.Join(root, "user-profile"),
		},
	}
	return root, features
}

func TestNewResolvesModulePath(t *testing.T) {
	root, _ := setupModule(t)
	g, err := New(root, filepath.Join(filepath.Dir(root), "featforge"), nil)
	require.NoError(t, err)

	importPath, err := g.ImportPath(filepath.Join(root, "checkout"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop/features/checkout", importPath)
}

func TestNewFailsWithoutGoMod(t *testing.T) {
	root := t.TempDir()
	_, err := New(root, filepath.Join(root, "out"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no go.mod")
}

func TestGenerateArtifacts(t *testing.T) {
	root, features := setupModule(t)
	outputDir := filepath.Join(filepath.Dir(root), "featforge")

	g, err := New(root, outputDir, nil)
	require.NoError(t, err)

	navigation := []types.NavigationEntry{
		{Label: "Checkout", Path: "/checkout", Order: features[0].Nav.Order},
	}
	require.NoError(t, g.Generate(context.Background(), features, navigation))

	registry, err := os.ReadFile(filepath.Join(outputDir, RegistryFile))
	require.NoError(t, err)
	content := string(registry)
	assert.Contains(t, content, "// Code generated by featforge; DO NOT EDIT.")
	assert.Contains(t, content, "package featforge")
	assert.Contains(t, content, `ID:    "checkout"`)
	assert.Contains(t, content, `Description: "Account management"`)
	assert.Contains(t, content, `{Path: "/checkout", Title: "Checkout", Primary: true}`)
	assert.Contains(t, content, `SourcePath: "user-profile"`)
	assert.Contains(t, content, `{Label: "Checkout", Path: "/checkout", Order: ptr(3)}`)

	modules, err := os.ReadFile(filepath.Join(outputDir, ModulesFile))
	require.NoError(t, err)
	content = string(modules)
	assert.Contains(t, content, `feat_checkout "example.com/shop/features/checkout"`)
	assert.Contains(t, content, `feat_user_profile "example.com/shop/features/user-profile"`)
	assert.Contains(t, content, "CheckoutModule feat_checkout.Module")
	assert.Contains(t, content, "UserProfileModule: feat_user_profile.NewModule()")
	assert.Contains(t, content, "func NewContainer() *Container")
}

func TestGenerateIsIdempotent(t *testing.T) {
	root, features := setupModule(t)
	outputDir := filepath.Join(filepath.Dir(root), "featforge")

	g, err := New(root, outputDir, nil)
	require.NoError(t, err)

	require.NoError(t, g.Generate(context.Background(), features, nil))
	first, err := os.ReadFile(filepath.Join(outputDir, RegistryFile))
	require.NoError(t, err)
	firstModules, err := os.ReadFile(filepath.Join(outputDir, ModulesFile))
	require.NoError(t, err)

	require.NoError(t, g.Generate(context.Background(), features, nil))
	second, err := os.ReadFile(filepath.Join(outputDir, RegistryFile))
	require.NoError(t, err)
	secondModules, err := os.ReadFile(filepath.Join(outputDir, ModulesFile))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstModules, secondModules)
}

func TestGenerateEmptyBatch(t *testing.T) {
	root, _ := setupModule(t)
	outputDir := filepath.Join(filepath.Dir(root), "featforge")

	g, err := New(root, outputDir, nil)
	require.NoError(t, err)
	require.NoError(t, g.Generate(context.Background(), nil, nil))

	// Both artifacts exist and are valid Go even with nothing discovered
	for _, name := range []string{RegistryFile, ModulesFile} {
		data, err := os.ReadFile(filepath.Join(outputDir, name))
		require.NoError(t, err)
		assert.Contains(t, string(data), "package featforge")
	}
}

func TestGenerateRejectsCollidingSymbols(t *testing.T) {
	root, _ := setupModule(t)
	outputDir := filepath.Join(filepath.Dir(root), "featforge")

	g, err := New(root, outputDir, nil)
	require.NoError(t, err)

	// Distinct ids that collapse to one generated symbol
	features := []*types.FeatureRecord{
		{
			ID:         "user-profile",
			Title:      "User Profile",
			Routes:     []types.RouteDescriptor{{Path: "/profile", Title: "Profile"}},
			SourcePath: filepath.Join(root, "user-profile"),
		},
		{
			ID:         "user_profile",
			Title:      "User Profile Again",
			Routes:     []types.RouteDescriptor{{Path: "/profile2", Title: "Profile"}},
			SourcePath: filepath.Join(root, "user_profile"),
		},
	}

	err = g.Generate(context.Background(), features, nil)
	require.Error(t, err)
	var generr *ferrors.GenerateError
	require.ErrorAs(t, err, &generr)
	assert.Contains(t, err.Error(), "'user-profile'")
	assert.Contains(t, err.Error(), "'user_profile'")
	assert.Contains(t, err.Error(), "UserProfileModule")

	// Nothing may be written when rendering fails
	_, statErr := os.Stat(filepath.Join(outputDir, ModulesFile))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateWriteFailureIsFatal(t *testing.T) {
	root, features := setupModule(t)

	// Output path collides with an existing file: MkdirAll must fail
	blocked := filepath.Join(filepath.Dir(root), "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("in the way"), 0644))

	g, err := New(root, blocked, nil)
	require.NoError(t, err)

	err = g.Generate(context.Background(), features, nil)
	require.Error(t, err)
	var generr *ferrors.GenerateError
	assert.ErrorAs(t, err, &generr)
}
