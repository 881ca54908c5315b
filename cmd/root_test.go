package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yttitle/internal/app"
	"yttitle/internal/models"
)

const testCorpus = `title,cleaned_title,category_title
Funny Cat Compilation,funny cat compilation,Pets
Cat &amp; Dog Friends,cat dog friends,Pets
Dog Tricks,dog tricks,Pets
Minecraft Cat Build,minecraft cat build,Gaming
`

const testPetsModel = `4 2
cat 1 0
kitten 0.9 0.1
dog 0 1
puppy 0.1 0.9
`

// writeFixture lays out a dataset, one category model and a config file
// pointing at both, and returns the config path.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	modelDir := filepath.Join(dir, "model")
	require.NoError(t, os.MkdirAll(modelDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte(testCorpus), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "Pets.txt"), []byte(testPetsModel), 0o644))

	cfg := fmt.Sprintf(`data:
  corpus_path: %q
  categories_path: ""
embedding:
  model_dir: %q
openai:
  api_key: ""
log:
  level: error
`, filepath.Join(dir, "data.csv"), modelDir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := writeFixture(t)

	out, err := runCLI(t, "--config", cfg, "-k", "cat", "-c", "Pets", "titles")
	require.NoError(t, err)
	assert.Equal(t, "Funny Cat Compilation\nCat & Dog Friends\n", out)

	out, err = runCLI(t, "--config", cfg, "-k", "cat", "-c", "Pets", "keyword-category")
	require.NoError(t, err)
	assert.Equal(t, "Pets\n", out)

	out, err = runCLI(t, "--config", cfg, "-k", "cat", "-c", "Pets", "keywords", "Pets")
	require.NoError(t, err)
	assert.Equal(t, "cat\nkitten\ndog\npuppy\n", out)

	out, err = runCLI(t, "--config", cfg, "-k", "cat", "-c", "Pets", "similar", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "kitten")
	assert.NotContains(t, out, "puppy")

	out, err = runCLI(t, "--config", cfg, "-k", "cat", "-c", "Pets", "categories")
	require.NoError(t, err)
	assert.Equal(t, "Pets\n", out)

	_, err = runCLI(t, "--config", cfg, "-k", "cat", "-c", "Gaming", "titles")
	assert.ErrorIs(t, err, models.ErrInvalidCategory)

	_, err = runCLI(t, "--config", cfg, "-k", "cat", "-c", "Pets", "suggest")
	assert.ErrorIs(t, err, models.ErrNoAPIKey)

	out, err = runCLI(t, "--config", cfg, "-k", "cat", "-c", "Pets", "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "1 categories, 4 keywords")
	assert.Contains(t, out, "History store:   not configured.")
	assert.Contains(t, out, "  - ChatGPT  disabled")
}

func TestDoctor_EngineStatus(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	cfg := writeFixture(t)

	out, err := runCLI(t, "--config", cfg, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "Engines (default ChatGPT):")
	assert.Contains(t, out, "  - ChatGPT  active")
	assert.Contains(t, out, "  - DaVinci  active")
	assert.Contains(t, out, "  - Gemini   disabled")
}

func TestFailingCommandClosesApp(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("YTTITLE_HISTORY_DSN", filepath.Join(t.TempDir(), "history.db"))
	cfg := writeFixture(t)

	var seen *app.App
	failing := &cobra.Command{
		Use: "fail-after-init",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := GetAppFromContext(cmd.Context())
			require.NoError(t, err)
			seen = a
			return errors.New("command failed")
		},
	}
	rootCmd.AddCommand(failing)
	t.Cleanup(func() { rootCmd.RemoveCommand(failing) })

	_, err := runCLI(t, "--config", cfg, "fail-after-init")
	require.EqualError(t, err, "command failed")
	require.NotNil(t, seen)
	require.NotNil(t, seen.HistoryStore)

	assert.Nil(t, activeApp)
	assert.Error(t, seen.HistoryStore.Ping(context.Background()), "history store is closed")
}
