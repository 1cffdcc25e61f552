// Package shell implements the interactive command interpreter that
// drives a mounted volume: create, open, read, write, remove,
// directory navigation and the import/export transfers between the
// host file system and the volume.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"sectorfs/internal/fs"
	"sectorfs/internal/logging"
)

var shellLogger = logging.GetLogger().WithPrefix("shell")

const prompt = "sectorfs> "

// Shell reads commands line by line and dispatches them against a
// file system. Command failures are reported and the loop continues;
// only input exhaustion or an explicit exit ends Run.
type Shell struct {
	fs  *fs.FileSystem
	in  io.Reader
	out io.Writer
}

// New creates a shell reading commands from in and writing results to
// out.
func New(filesys *fs.FileSystem, in io.Reader, out io.Writer) *Shell {
	filesys.SetOutput(out)
	return &Shell{fs: filesys, in: in, out: out}
}

// Run processes commands until EOF or "exit".
func (s *Shell) Run() error {
	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if strings.ToLower(args[0]) == "exit" || strings.ToLower(args[0]) == "quit" {
			break
		}
		s.dispatch(args[0], args[1:])
	}
	return scanner.Err()
}

func (s *Shell) dispatch(command string, args []string) {
	shellLogger.Debug("Dispatching %q %v", command, args)

	switch strings.ToLower(command) {
	case "create":
		s.create(args)
	case "open":
		s.open(args)
	case "close":
		s.close(args)
	case "closeall":
		s.fs.CloseAll()
	case "read":
		s.read(args)
	case "readat":
		s.readAt(args)
	case "write":
		s.write(args)
	case "writeat":
		s.writeAt(args)
	case "rm":
		s.remove(args)
	case "mkdir":
		s.mkdir(args)
	case "cd":
		s.chdir(args)
	case "ls":
		s.fs.List()
	case "print":
		s.fs.Print()
	case "pwd":
		fmt.Fprintf(s.out, "current directory: sector %d\n", s.fs.GetCurrentDirectory())
	case "free":
		fmt.Fprintf(s.out, "%d sectors free\n", s.fs.FreeSectors())
	case "touch":
		tag := "shell"
		if len(args) > 0 {
			tag = args[0]
		}
		s.fs.TouchOpenedFiles(tag)
	case "import":
		s.importFile(args)
	case "export":
		s.exportFile(args)
	case "help":
		s.help()
	default:
		fmt.Fprintf(s.out, "unknown command %q; try help\n", command)
	}
}

func (s *Shell) create(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "usage: create <name> <size>")
		return
	}
	size, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "bad size %q\n", args[1])
		return
	}
	if !s.fs.Create(args[0], size) {
		fmt.Fprintf(s.out, "create %q failed\n", args[0])
		return
	}
	fmt.Fprintf(s.out, "created %q (%d bytes)\n", args[0], size)
}

func (s *Shell) open(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: open <name>")
		return
	}
	handle := s.fs.Open(args[0])
	if handle == fs.InvalidHandle {
		fmt.Fprintf(s.out, "open %q failed\n", args[0])
		return
	}
	fmt.Fprintf(s.out, "opened %q as handle %d\n", args[0], handle)
}

func (s *Shell) parseHandle(arg string) (fs.Handle, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintf(s.out, "bad handle %q\n", arg)
		return fs.InvalidHandle, false
	}
	return fs.Handle(n), true
}

func (s *Shell) close(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: close <handle>")
		return
	}
	if handle, ok := s.parseHandle(args[0]); ok {
		s.fs.Close(handle)
	}
}

func (s *Shell) read(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "usage: read <handle> <n>")
		return
	}
	handle, ok := s.parseHandle(args[0])
	if !ok {
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		fmt.Fprintf(s.out, "bad count %q\n", args[1])
		return
	}
	buf := make([]byte, n)
	got := s.fs.Read(handle, buf)
	fmt.Fprintf(s.out, "read %d bytes: %q\n", got, buf[:got])
}

func (s *Shell) readAt(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(s.out, "usage: readat <handle> <n> <position>")
		return
	}
	handle, ok := s.parseHandle(args[0])
	if !ok {
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		fmt.Fprintf(s.out, "bad count %q\n", args[1])
		return
	}
	position, err := strconv.Atoi(args[2])
	if err != nil {
		fmt.Fprintf(s.out, "bad position %q\n", args[2])
		return
	}
	buf := make([]byte, n)
	got := s.fs.ReadAt(handle, buf, position)
	fmt.Fprintf(s.out, "read %d bytes: %q\n", got, buf[:got])
}

func (s *Shell) write(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "usage: write <handle> <text>")
		return
	}
	handle, ok := s.parseHandle(args[0])
	if !ok {
		return
	}
	data := []byte(strings.Join(args[1:], " "))
	n := s.fs.Write(handle, data)
	fmt.Fprintf(s.out, "wrote %d bytes\n", n)
}

func (s *Shell) writeAt(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(s.out, "usage: writeat <handle> <position> <text>")
		return
	}
	handle, ok := s.parseHandle(args[0])
	if !ok {
		return
	}
	position, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "bad position %q\n", args[1])
		return
	}
	data := []byte(strings.Join(args[2:], " "))
	n := s.fs.WriteAt(handle, data, position)
	fmt.Fprintf(s.out, "wrote %d bytes\n", n)
}

func (s *Shell) remove(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: rm <name>")
		return
	}
	if !s.fs.Remove(args[0]) {
		fmt.Fprintf(s.out, "rm %q failed\n", args[0])
		return
	}
	fmt.Fprintf(s.out, "removed %q\n", args[0])
}

func (s *Shell) mkdir(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: mkdir <name>")
		return
	}
	if !s.fs.CreateDirectory(args[0]) {
		fmt.Fprintf(s.out, "mkdir %q failed\n", args[0])
		return
	}
	fmt.Fprintf(s.out, "created directory %q\n", args[0])
}

func (s *Shell) chdir(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: cd <path>")
		return
	}
	if !s.fs.ChangeDirectory(args[0]) {
		fmt.Fprintf(s.out, "cd %q failed\n", args[0])
	}
}

// importFile copies a host file into the volume as a new file sized to
// its contents.
func (s *Shell) importFile(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "usage: import <host-path> <name>")
		return
	}
	hostPath, name := args[0], args[1]

	data, err := os.ReadFile(hostPath)
	if err != nil {
		fmt.Fprintf(s.out, "import: %v\n", err)
		return
	}
	if !s.fs.Create(name, len(data)) {
		fmt.Fprintf(s.out, "import: create %q failed\n", name)
		return
	}
	handle := s.fs.Open(name)
	if handle == fs.InvalidHandle {
		fmt.Fprintf(s.out, "import: open %q failed\n", name)
		return
	}
	defer s.fs.Close(handle)

	if n := s.fs.Write(handle, data); n != len(data) {
		fmt.Fprintf(s.out, "import: short write (%d of %d bytes)\n", n, len(data))
		return
	}
	fmt.Fprintf(s.out, "imported %s as %q (%d bytes)\n", hostPath, name, len(data))
}

// exportFile copies a file out of the volume to the host file system.
func (s *Shell) exportFile(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "usage: export <name> <host-path>")
		return
	}
	name, hostPath := args[0], args[1]

	handle := s.fs.Open(name)
	if handle == fs.InvalidHandle {
		fmt.Fprintf(s.out, "export: open %q failed\n", name)
		return
	}
	defer s.fs.Close(handle)

	length, err := s.fs.FileLength(s.fs.HandleSector(handle))
	if err != nil {
		fmt.Fprintf(s.out, "export: %v\n", err)
		return
	}
	buf := make([]byte, length)
	if n := s.fs.ReadAt(handle, buf, 0); n != length {
		fmt.Fprintf(s.out, "export: short read (%d of %d bytes)\n", n, length)
		return
	}
	if err := os.WriteFile(hostPath, buf, 0644); err != nil {
		fmt.Fprintf(s.out, "export: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "exported %q to %s (%d bytes)\n", name, hostPath, length)
}

func (s *Shell) help() {
	fmt.Fprint(s.out, `commands:
  create <name> <size>           create a fixed-size file
  open <name>                    open a file, prints its handle
  close <handle>                 close a handle
  closeall                       close every open handle
  read <handle> <n>              read n bytes at the cursor
  readat <handle> <n> <pos>      read n bytes at a position
  write <handle> <text>          write text at the cursor
  writeat <handle> <pos> <text>  write text at a position
  rm <name>                      remove a file
  mkdir <name>                   create a directory
  cd <path>                      change directory (multi-level paths allowed)
  ls                             list the current directory
  print                          dump map and directory state
  pwd                            show the current directory sector
  free                           show free sector count
  touch [tag]                    log open files
  import <host-path> <name>      copy a host file into the volume
  export <name> <host-path>      copy a file out to the host
  exit                           leave the shell
`)
}
