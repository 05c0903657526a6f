package logging

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lineRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3} - (INFO|ERROR) - (.*)$`)

func TestOpen_FormatAndAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "translation.log")

	logger, closeFn, err := Open(path)
	require.NoError(t, err)
	logger.Sugar().Infof("Successfully loaded JSON file: %s", "in.json")
	closeFn()

	logger, closeFn, err = Open(path)
	require.NoError(t, err)
	logger.Sugar().Errorf("Error saving JSON file: %s - %s", "out.json", "boom")
	logger.Debug("dropped below INFO")
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2, "second open must append, not truncate")

	m := lineRe.FindStringSubmatch(lines[0])
	require.NotNil(t, m, "unexpected line %q", lines[0])
	assert.Equal(t, "INFO", m[1])
	assert.Equal(t, "Successfully loaded JSON file: in.json", m[2])

	m = lineRe.FindStringSubmatch(lines[1])
	require.NotNil(t, m, "unexpected line %q", lines[1])
	assert.Equal(t, "ERROR", m[1])
	assert.Equal(t, "Error saving JSON file: out.json - boom", m[2])
}

func TestOpen_DirectoryInTheWay(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "logs")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, _, err := Open(filepath.Join(blocker, "translation.log"))
	assert.Error(t, err)
}
