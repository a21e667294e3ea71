// Package shell runs configured command lines through the system shell.
package shell

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/datawire/dlib/dexec"
)

// Run executes a command line via "sh -c" in the given directory with extra
// environment variables appended to the inherited environment. Output goes to
// the process log via dexec.
func Run(ctx context.Context, dir, cmdline string, extraEnv []string) error {
	cmd := dexec.CommandContext(ctx, "sh", "-c", cmdline)
	cmd.Dir = dir
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}
	return cmd.Run()
}

// Output executes a command line via "sh -c" and returns its trimmed stdout.
func Output(ctx context.Context, dir, cmdline string) (string, error) {
	cmd := dexec.CommandContext(ctx, "sh", "-c", cmdline)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// Expand substitutes {placeholder} occurrences in a command template.
func Expand(template string, vars map[string]string) string {
	out := template
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}
