package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planeat-api/internal/agenda"
	"planeat-api/internal/config"
	"planeat-api/internal/httpx/auth"
	"planeat-api/internal/seed"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"migrate", "seed", "reindex", "audit", "agenda", "token"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

const seedFile = `
users:
  - {username: ana, password: tortilla-2024}
recipes:
  - title: Chilaquiles
    owner: ana
    ingredients: [{name: totopos, quantity: 1 bolsa}]
schedule:
  - {user: ana, recipe: Chilaquiles, date: 2024-06-02, meal_type: Desayuno}
`

func TestMigrateSeedAgendaAudit(t *testing.T) {
	t.Setenv("JWT_ALGO", "HS256")
	t.Setenv("JWT_HS_SECRET", "planeatctl-test-secret")
	dir := t.TempDir()
	dbURL := "file:" + filepath.Join(dir, "planeat.db")
	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(seedFile), 0o600))

	out, err := run(t, "--db", dbURL, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")

	out, err = run(t, "--db", dbURL, "seed", "--file", seedPath)
	require.NoError(t, err)
	var res seed.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, seed.Result{Users: 1, Recipes: 1, Scheduled: 1}, res)

	out, err = run(t, "--db", dbURL, "agenda", "--user", "ana", "--date", "2024-06-02")
	require.NoError(t, err)
	var items []agenda.Scheduled
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Chilaquiles", items[0].Recipe.Title)
	assert.Equal(t, agenda.Breakfast, items[0].MealType)

	out, err = run(t, "--db", dbURL, "audit")
	require.NoError(t, err)
	var rep agenda.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.True(t, rep.Clean())
	assert.Equal(t, 1, rep.Entries)

	out, err = run(t, "--db", dbURL, "token", "--user", "ana", "--role", "admin")
	require.NoError(t, err)
	claims, err := auth.ParseAndValidate(config.FromEnv(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, claims.Roles)
	assert.True(t, strings.HasPrefix(claims.Subject, "user:"))
}

func TestAgenda_UnknownUser(t *testing.T) {
	dbURL := "file:" + filepath.Join(t.TempDir(), "planeat.db")
	_, err := run(t, "--db", dbURL, "migrate")
	require.NoError(t, err)
	_, err = run(t, "--db", dbURL, "agenda", "--user", "nadie", "--date", "2024-06-02")
	require.ErrorContains(t, err, `user "nadie"`)
}

func TestReindex_RequiresSearch(t *testing.T) {
	t.Setenv("ES_ADDRS", "")
	_, err := run(t, "--db", "file:"+filepath.Join(t.TempDir(), "planeat.db"), "reindex")
	require.ErrorContains(t, err, "ES_ADDRS")
}
