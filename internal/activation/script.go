package activation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alessio/shellescape"
)

// StartupScript renders the restart script: stop whatever renderer is running,
// then start inv detached with its output discarded.
func StartupScript(processName string, inv Invocation) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# Written by wallpaper-select. Re-applies the last activated wallpaper.\n")
	fmt.Fprintf(&b, "pids=$(pidof %s) && kill $pids 2>/dev/null\n", shellescape.Quote(processName))
	fmt.Fprintf(&b, "nohup %s >/dev/null 2>&1 &\n", inv)
	return b.String()
}

func writeScript(path string, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	// rename so a crash never leaves a half-written script behind
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
