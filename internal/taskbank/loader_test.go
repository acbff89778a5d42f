package taskbank

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument_Forms(t *testing.T) {
	wrapped := `{"tasks":[{"id":"a","skillId":"S1","difficulty":2,"content":"1+1","answer":"2"}]}`
	bare := `[{"id":"a","skillId":"S1","difficulty":2,"content":"1+1","answer":"2"}]`
	yml := "tasks:\n  - id: a\n    skillId: S1\n    difficulty: 2\n    content: \"1+1\"\n    answer: \"2\"\n"

	for name, tc := range map[string]struct {
		data string
		yaml bool
	}{
		"wrapped json": {wrapped, false},
		"bare json":    {bare, false},
		"yaml":         {yml, true},
	} {
		t.Run(name, func(t *testing.T) {
			tasks, err := ParseDocument([]byte(tc.data), tc.yaml)
			require.NoError(t, err)
			require.Len(t, tasks, 1)
			assert.Equal(t, Task{ID: "a", SkillID: "S1", Difficulty: 2, Content: "1+1", Answer: "2"}, tasks[0])
		})
	}
}

func TestParseDocument_SchemaFailure(t *testing.T) {
	_, err := ParseDocument([]byte(`{"tasks":[{"id":"a","skillId":"S1","difficulty":9,"content":"x","answer":"y"}]}`), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestLoadDir_ConcatenatesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("b.json", `[{"id":"b1","skillId":"S1","difficulty":1,"content":"","answer":""}]`)
	write("a.yaml", "- id: a1\n  skillId: S1\n  difficulty: 1\n  content: ''\n  answer: ''\n")
	write("notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	bank, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 2, bank.Len())
	assert.Equal(t, "a1", bank.Tasks()[0].ID)
	assert.Equal(t, "b1", bank.Tasks()[1].ID)
}

func TestLoadDir_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	body := `[{"id":"x","skillId":"S1","difficulty":1,"content":"","answer":""}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.json"), []byte(body), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.json"), []byte(body), 0o644))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
