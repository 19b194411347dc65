package builtins

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aisha-shell/aish/core/interp"
	"github.com/spf13/afero"
)

// previous directory for `cd -`.
var previousDir string

// Cd changes the working directory. With no argument it goes home;
// `-` returns to the previous directory; `~` prefixes expand.
func Cd(p *interp.Proc) int {
	target := ""
	switch len(p.Args) {
	case 1:
		target, _ = os.UserHomeDir()
	case 2:
		target = p.Args[1]
	default:
		printError(p, "%s: too many arguments\n", p.Args[0])
		return 1
	}

	if target == "-" {
		if previousDir == "" {
			printError(p, "%s: no previous directory\n", p.Args[0])
			return 1
		}
		target = previousDir
		fmt.Fprintln(p.Stdout, target)
	}
	if strings.HasPrefix(target, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			if target == "~" {
				target = home
			} else if strings.HasPrefix(target, "~/") {
				target = home + target[1:]
			}
		}
	}

	if p.InPipeline {
		// A pipeline stage leaves the shell's working directory alone.
		if info, err := os.Stat(target); err != nil || !info.IsDir() {
			printError(p, "%s: %s: No such directory\n", p.Args[0], target)
			return 1
		}
		return 0
	}

	before, _ := os.Getwd()
	if err := os.Chdir(target); err != nil {
		printError(p, "%s: %s: No such directory\n", p.Args[0], target)
		return 1
	}
	previousDir = before

	if wd, err := os.Getwd(); err == nil {
		_ = p.Interp.Vars.Set("OLDPWD", before, 0)
		_ = p.Interp.Vars.Set("PWD", wd, 0)
	}
	return 0
}

// Ls lists directory contents. -a includes hidden entries, -l adds a
// long format with mode and size.
func Ls(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "ls [-al] [PATH...]",
		Short: "List directory contents.",
	}
	opt := cmd.Flags()
	all := opt.Bool('a', "do not ignore hidden entries")
	long := opt.Bool('l', "use a long listing format")

	return cmd.Run(p, func() int {
		dirs := opt.Args()
		if len(dirs) == 0 {
			wd, err := os.Getwd()
			if err != nil {
				printError(p, "%s: %v\n", p.Args[0], err)
				return 1
			}
			dirs = []string{wd}
		}

		status := 0
		for i, dir := range dirs {
			if len(dirs) > 1 {
				if i > 0 {
					fmt.Fprintln(p.Stdout)
				}
				fmt.Fprintf(p.Stdout, "%s:\n", dir)
			}
			if err := listDir(p, dir, *all, *long); err != nil {
				printError(p, "%s: %s: %v\n", p.Args[0], dir, err)
				status = 1
			}
		}
		return status
	})
}

func listDir(p *interp.Proc, dir string, all, long bool) error {
	infos, err := afero.ReadDir(p.Interp.FS, dir)
	if err != nil {
		return err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	for _, info := range infos {
		name := info.Name()
		if !all && strings.HasPrefix(name, ".") {
			continue
		}
		if info.IsDir() {
			name = colorBoldCyan.Sprint(name) + "/"
		}
		if long {
			fmt.Fprintf(p.Stdout, "%s %8d %s %s\n",
				info.Mode().String(), info.Size(),
				info.ModTime().Format("Jan _2 15:04"), name)
		} else {
			fmt.Fprintln(p.Stdout, name)
		}
	}
	return nil
}

// Source executes commands from a file in the current shell.
func Source(p *interp.Proc) int {
	if len(p.Args) < 2 {
		printError(p, "source: usage: source FILENAME\n")
		return 1
	}

	f, err := p.Interp.FS.Open(p.Args[1])
	if err != nil {
		printError(p, "source: %s: %v\n", p.Args[1], err)
		return 1
	}
	defer f.Close()

	status := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		status = p.Interp.Run(line)
		if p.Interp.ExitRequested {
			break
		}
	}
	return status
}

func init() {
	interp.RegisterBuiltin("Change directory", Cd, "cd", "hop")
	interp.RegisterBuiltin("List directory contents", Ls, "ls", "reveal")
	interp.RegisterBuiltin("Execute commands from a file", Source, "source", ".")
}
