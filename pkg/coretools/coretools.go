// Package coretools registers the baseline filesystem, command, and
// workflow tools an agent run needs, including the completion signal.
package coretools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harun/maestro/pkg/tool"
)

// Options configures core tool registration.
type Options struct {
	// WorkspaceRoot is the default root for relative paths when a run
	// does not pin its own working directory.
	WorkspaceRoot string
}

// Register adds the core tools to a registry: read_file, write_to_file,
// list_files, search_files, execute_command, ask_followup_question, and
// attempt_completion.
func Register(reg *tool.Registry, opts Options) error {
	if reg == nil {
		return fmt.Errorf("registry is required")
	}

	tools := []struct {
		spec    tool.Spec
		factory tool.HandlerFactory
	}{
		{readFileSpec(), readFileHandler(opts)},
		{writeFileSpec(), writeFileHandler(opts)},
		{listFilesSpec(), listFilesHandler(opts)},
		{searchFilesSpec(), searchFilesHandler(opts)},
		{executeCommandSpec(), executeCommandHandler(opts)},
		{askFollowupSpec(), askFollowupHandler()},
		{attemptCompletionSpec(), attemptCompletionHandler()},
	}

	for _, t := range tools {
		if err := reg.Register(t.spec, t.factory); err != nil {
			return fmt.Errorf("failed to register tool %s: %w", t.spec.ID, err)
		}
	}
	return nil
}

// resolvePath resolves a possibly relative path against the working
// directory and rejects paths that escape it.
func resolvePath(workdir, path string) (string, error) {
	if workdir == "" {
		workdir = "."
	}
	abs, err := filepath.Abs(workdir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}

	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(abs, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(abs, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes the working directory: %s", path)
	}
	return target, nil
}

// workdirOr picks the handler's bound working directory, falling back to
// the registration-time workspace root.
func workdirOr(workdir string, opts Options) string {
	if workdir != "" {
		return workdir
	}
	return opts.WorkspaceRoot
}
