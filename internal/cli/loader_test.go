package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tokentest/token"
)

func TestLoadFixture_Formats(t *testing.T) {
	tests := []struct {
		file     string
		name     string
		readable bool
		tokens   []token.Token
	}{
		{
			file: "point.yaml",
			name: "point",
			tokens: []token.Token{
				token.Struct{Name: "Point", Len: 2},
				token.Field("x"), token.I32(1),
				token.Field("y"), token.I32(2),
				token.StructEnd{},
			},
		},
		{
			file:   "numbers.jsonc",
			name:   "numbers",
			tokens: []token.Token{token.Seq{}, token.U8(1), token.U8(2), token.SeqEnd{}},
		},
		{
			file:     "maybe.cue",
			name:     "maybe",
			readable: true,
			tokens:   []token.Token{token.Some{}, token.Str("1.0")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			f, err := LoadFixture(filepath.Join("testdata", "fixtures", tt.file))
			require.NoError(t, err)

			assert.Equal(t, tt.name, f.Name)
			assert.Equal(t, tt.name, f.Scenario.Name)
			assert.Equal(t, tt.readable, f.Scenario.Readable)
			assert.NotEmpty(t, f.Data)
			assert.True(t, token.EqualSeq(tt.tokens, f.Scenario.Tokens), "got:\n%s", token.Format(f.Scenario.Tokens))
		})
	}
}

func TestLoadFixture_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "unsupported extension",
			file:     "point.toml",
			content:  "name = 'x'",
			wantCode: ErrCodeBadExt,
			wantMsg:  `unsupported fixture extension ".toml"`,
		},
		{
			name:     "malformed token",
			file:     "bad_token.yaml",
			content:  "name: a\ndescription: b\ntokens:\n  - i8: 300\n",
			wantCode: ErrCodeParse,
			wantMsg:  "i8 payload",
		},
		{
			name:     "unknown field",
			file:     "unknown.yaml",
			content:  "name: a\ndescription: b\ntokens: [unit]\nextra: 1\n",
			wantCode: ErrCodeParse,
			wantMsg:  "field extra not found",
		},
		{
			name:     "missing description",
			file:     "nodesc.json",
			content:  `{"name": "a", "tokens": ["unit"]}`,
			wantCode: ErrCodeInvalid,
			wantMsg:  "description is required",
		},
		{
			name:     "incomplete cue",
			file:     "open.cue",
			content:  "name: \"a\"\ndescription: string\ntokens: [\"unit\"]\n",
			wantCode: ErrCodeBuildFailed,
			wantMsg:  "validating CUE",
		},
		{
			name:     "cue syntax",
			file:     "syntax.cue",
			content:  "name: \"a\"\ntokens: [\n",
			wantCode: ErrCodeBuildFailed,
			wantMsg:  "compiling CUE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)

			_, err := LoadFixture(path)
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "got %T: %v", err, err)
			assert.Equal(t, tt.wantCode, loadErr.Code)
			assert.Contains(t, loadErr.Message, tt.wantMsg)
			assert.Equal(t, path, loadErr.Path)
		})
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	_, err := LoadFixture(filepath.Join(t.TempDir(), "gone.yaml"))

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadError_Error(t *testing.T) {
	assert.Equal(t, "E001: boom", (&LoadError{Code: "E001", Message: "boom"}).Error())
	assert.Equal(t, "a.yaml: E101: bad", (&LoadError{Code: "E101", Path: "a.yaml", Message: "bad"}).Error())
}

func TestFindFixtureFiles(t *testing.T) {
	files, err := FindFixtureFiles(filepath.Join("testdata", "fixtures"), "")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	// Lexical order, golden directory skipped.
	assert.Equal(t, []string{"maybe.cue", "numbers.jsonc", "point.yaml", "stray_close.yaml"}, names)
}

func TestFindFixtureFiles_FilterAndSubdirs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "enums")
	require.NoError(t, os.MkdirAll(sub, 0755))

	writeFile(t, dir, "enum-unit.yaml", "")
	writeFile(t, sub, "enum-tuple.yml", "")
	writeFile(t, dir, "struct.yaml", "")
	writeFile(t, dir, "notes.txt", "")

	files, err := FindFixtureFiles(dir, "enum-*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = FindFixtureFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	_, err = FindFixtureFiles(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestLoadFixtures(t *testing.T) {
	fixtures, errs := LoadFixtures(filepath.Join("testdata", "fixtures"), "", LoadModeCollectAll)
	require.Empty(t, errs)
	require.Len(t, fixtures, 4)
	assert.Equal(t, "maybe", fixtures[0].Name)
}

func TestLoadFixtures_CollectVersusFailFast(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "name: a\n")
	writeFile(t, dir, "b.yaml", "name: b\ndescription: d\ntokens: [unit]\n")
	writeFile(t, dir, "c.yaml", "tokens: [\n")

	fixtures, errs := LoadFixtures(dir, "", LoadModeCollectAll)
	assert.Len(t, fixtures, 1)
	assert.Len(t, errs, 2)

	fixtures, errs = LoadFixtures(dir, "", LoadModeFailFast)
	assert.Empty(t, fixtures)
	assert.Len(t, errs, 1)
}

func TestLoadFixtures_DuplicateName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "name: a\ndescription: d\ntokens: [unit]\n")
	writeFile(t, dir, "a.json", `{"name": "a", "description": "d", "tokens": ["unit"]}`)

	fixtures, errs := LoadFixtures(dir, "", LoadModeCollectAll)
	assert.Len(t, fixtures, 1)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Equal(t, ErrCodeDupeName, loadErr.Code)
}

func TestLoadFixtures_DirectoryErrors(t *testing.T) {
	fixtures, errs := LoadFixtures("/nonexistent/fixtures", "", LoadModeCollectAll)
	assert.Nil(t, fixtures)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "fixtures directory not found")

	file := writeFile(t, t.TempDir(), "point.yaml", "")
	fixtures, errs = LoadFixtures(file, "", LoadModeCollectAll)
	assert.Nil(t, fixtures)
	assert.Contains(t, errs[0].Error(), "not a directory")
}

func TestGoldenFilePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/path/to/point.yaml", "/path/to/golden/point.golden"},
		{"/path/to/point.cue", "/path/to/golden/point.golden"},
		{"fixtures/numbers.jsonc", "fixtures/golden/numbers.golden"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, goldenFilePath(tt.input))
	}
}
