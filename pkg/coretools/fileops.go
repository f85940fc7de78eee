package coretools

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/harun/maestro/pkg/tool"
)

const maxSearchResults = 200

func readFileSpec() tool.Spec {
	return tool.Spec{
		ID:          "read_file",
		Name:        "read_file",
		Description: "Read the contents of a file at the given path.",
		Parameters: []tool.Parameter{
			{Name: "path", Required: true, Instruction: "Path of the file to read, relative to the working directory", Usage: "src/main.go"},
		},
	}
}

func readFileHandler(opts Options) tool.HandlerFactory {
	return func(workdir string) tool.Handler {
		root := workdirOr(workdir, opts)
		return tool.HandlerFunc(func(ctx context.Context, args map[string]string) tool.Result {
			path, err := resolvePath(root, args["path"])
			if err != nil {
				return tool.Errf("%v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return tool.Errf("failed to read %s: %v", args["path"], err)
			}
			return tool.OK(string(data))
		})
	}
}

func writeFileSpec() tool.Spec {
	return tool.Spec{
		ID:          "write_to_file",
		Name:        "write_to_file",
		Description: "Write content to a file, creating parent directories and overwriting any existing content.",
		Parameters: []tool.Parameter{
			{Name: "path", Required: true, Instruction: "Path of the file to write, relative to the working directory", Usage: "output.txt"},
			{Name: "content", Required: true, Instruction: "Full content to write to the file", Usage: "file content here"},
		},
	}
}

func writeFileHandler(opts Options) tool.HandlerFactory {
	return func(workdir string) tool.Handler {
		root := workdirOr(workdir, opts)
		return tool.HandlerFunc(func(ctx context.Context, args map[string]string) tool.Result {
			path, err := resolvePath(root, args["path"])
			if err != nil {
				return tool.Errf("%v", err)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return tool.Errf("failed to create directory for %s: %v", args["path"], err)
			}
			content := args["content"]
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return tool.Errf("failed to write %s: %v", args["path"], err)
			}
			return tool.OK(fmt.Sprintf("Wrote %d bytes to %s", len(content), args["path"]))
		})
	}
}

func listFilesSpec() tool.Spec {
	return tool.Spec{
		ID:          "list_files",
		Name:        "list_files",
		Description: "List files and directories under a path.",
		Parameters: []tool.Parameter{
			{Name: "path", Required: false, Instruction: "Directory to list; defaults to the working directory", Usage: "src"},
			{Name: "recursive", Required: false, Instruction: "Set to 'true' to list recursively", Usage: "true"},
		},
	}
}

func listFilesHandler(opts Options) tool.HandlerFactory {
	return func(workdir string) tool.Handler {
		root := workdirOr(workdir, opts)
		return tool.HandlerFunc(func(ctx context.Context, args map[string]string) tool.Result {
			dir := args["path"]
			if dir == "" {
				dir = "."
			}
			path, err := resolvePath(root, dir)
			if err != nil {
				return tool.Errf("%v", err)
			}

			var names []string
			if args["recursive"] == "true" {
				err = filepath.WalkDir(path, func(p string, d os.DirEntry, walkErr error) error {
					if walkErr != nil {
						return walkErr
					}
					if ctx.Err() != nil {
						return ctx.Err()
					}
					rel, relErr := filepath.Rel(path, p)
					if relErr != nil || rel == "." {
						return nil
					}
					if d.IsDir() {
						rel += string(os.PathSeparator)
					}
					names = append(names, rel)
					return nil
				})
			} else {
				var entries []os.DirEntry
				entries, err = os.ReadDir(path)
				for _, e := range entries {
					name := e.Name()
					if e.IsDir() {
						name += string(os.PathSeparator)
					}
					names = append(names, name)
				}
			}
			if err != nil {
				return tool.Errf("failed to list %s: %v", dir, err)
			}

			sort.Strings(names)
			if len(names) == 0 {
				return tool.OK("(empty)")
			}
			return tool.OK(strings.Join(names, "\n"))
		})
	}
}

func searchFilesSpec() tool.Spec {
	return tool.Spec{
		ID:          "search_files",
		Name:        "search_files",
		Description: "Search file contents under a path with a regular expression, returning matching lines with file and line number.",
		Parameters: []tool.Parameter{
			{Name: "pattern", Required: true, Instruction: "Regular expression to search for", Usage: "func main"},
			{Name: "path", Required: false, Instruction: "Directory to search; defaults to the working directory", Usage: "src"},
		},
	}
}

func searchFilesHandler(opts Options) tool.HandlerFactory {
	return func(workdir string) tool.Handler {
		root := workdirOr(workdir, opts)
		return tool.HandlerFunc(func(ctx context.Context, args map[string]string) tool.Result {
			re, err := regexp.Compile(args["pattern"])
			if err != nil {
				return tool.Errf("invalid pattern: %v", err)
			}

			dir := args["path"]
			if dir == "" {
				dir = "."
			}
			path, err := resolvePath(root, dir)
			if err != nil {
				return tool.Errf("%v", err)
			}

			var matches []string
			err = filepath.WalkDir(path, func(p string, d os.DirEntry, walkErr error) error {
				if walkErr != nil || d.IsDir() {
					return walkErr
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if len(matches) >= maxSearchResults {
					return filepath.SkipAll
				}

				f, openErr := os.Open(p)
				if openErr != nil {
					return nil // unreadable files are skipped, not fatal
				}
				defer f.Close()

				rel, _ := filepath.Rel(path, p)
				scanner := bufio.NewScanner(f)
				line := 0
				for scanner.Scan() {
					line++
					if re.MatchString(scanner.Text()) {
						matches = append(matches, fmt.Sprintf("%s:%d: %s", rel, line, scanner.Text()))
						if len(matches) >= maxSearchResults {
							break
						}
					}
				}
				return nil
			})
			if err != nil {
				return tool.Errf("search failed: %v", err)
			}

			if len(matches) == 0 {
				return tool.OK("No matches found.")
			}
			return tool.OK(strings.Join(matches, "\n"))
		})
	}
}
