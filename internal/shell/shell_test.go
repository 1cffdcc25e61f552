package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sectorfs/internal/disk"
	"sectorfs/internal/fs"
)

func newTestShellFS(t *testing.T) *fs.FileSystem {
	t.Helper()

	device, err := disk.Create(filepath.Join(t.TempDir(), "test.img"))
	if err != nil {
		t.Fatalf("Failed to create disk: %v", err)
	}
	t.Cleanup(func() { device.Close() })

	filesys, err := fs.New(device, true)
	if err != nil {
		t.Fatalf("Failed to format volume: %v", err)
	}
	return filesys
}

// runSession feeds a scripted command sequence through a shell and
// returns everything it printed.
func runSession(t *testing.T, filesys *fs.FileSystem, commands ...string) string {
	t.Helper()

	var out bytes.Buffer
	s := New(filesys, strings.NewReader(strings.Join(commands, "\n")+"\n"), &out)
	if err := s.Run(); err != nil {
		t.Fatalf("Shell run failed: %v", err)
	}
	return out.String()
}

func TestShellCreateOpenWriteRead(t *testing.T) {
	out := runSession(t, newTestShellFS(t),
		"create foo 64",
		"open foo",
		"write 0 hello there",
		"readat 0 11 0",
		"close 0",
		"exit",
	)

	assert.Contains(t, out, `created "foo" (64 bytes)`)
	assert.Contains(t, out, `opened "foo" as handle 0`)
	assert.Contains(t, out, "wrote 11 bytes")
	assert.Contains(t, out, `read 11 bytes: "hello there"`)
}

func TestShellListAndRemove(t *testing.T) {
	out := runSession(t, newTestShellFS(t),
		"create foo 10",
		"ls",
		"rm foo",
		"rm foo",
		"exit",
	)

	assert.Contains(t, out, "foo")
	assert.Contains(t, out, `removed "foo"`)
	assert.Contains(t, out, `rm "foo" failed`)
}

func TestShellDirectoryCommands(t *testing.T) {
	filesys := newTestShellFS(t)
	out := runSession(t, filesys,
		"mkdir sub",
		"cd sub",
		"pwd",
		"cd ..",
		"cd missing",
		"exit",
	)

	assert.Contains(t, out, `created directory "sub"`)
	assert.Contains(t, out, `cd "missing" failed`)
	assert.Equal(t, fs.DirectorySector, filesys.GetCurrentDirectory())
}

func TestShellBadInput(t *testing.T) {
	out := runSession(t, newTestShellFS(t),
		"frobnicate",
		"create foo",
		"create foo many",
		"open",
		"read x 4",
		"",
		"exit",
	)

	assert.Contains(t, out, `unknown command "frobnicate"`)
	assert.Contains(t, out, "usage: create <name> <size>")
	assert.Contains(t, out, `bad size "many"`)
	assert.Contains(t, out, "usage: open <name>")
	assert.Contains(t, out, `bad handle "x"`)
}

func TestShellImportExport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	content := []byte("payload for the round trip")
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatalf("Failed to write host file: %v", err)
	}

	out := runSession(t, newTestShellFS(t),
		"import "+src+" inner",
		"export inner "+dst,
		"exit",
	)

	assert.Contains(t, out, `as "inner"`)
	assert.Contains(t, out, `exported "inner"`)

	got, err := os.ReadFile(dst)
	assert.Nil(t, err)
	assert.Equal(t, content, got)
}

func TestShellFreeAndHelp(t *testing.T) {
	out := runSession(t, newTestShellFS(t),
		"free",
		"help",
		"quit",
	)

	assert.Contains(t, out, "sectors free")
	assert.Contains(t, out, "commands:")
}
