package activation

import (
	"strings"

	"github.com/alessio/shellescape"
)

// Invocation is one renderer command line.
type Invocation struct {
	Bin         string
	ContentPath string
	Target      string
	Scaling     string
	// AssetsDir is passed as --assets-dir when set.
	AssetsDir string
}

// Args returns the renderer arguments, without the binary.
func (inv Invocation) Args() []string {
	args := []string{"--screen-root", inv.Target, "--bg", inv.ContentPath, "--scaling", inv.Scaling}
	if inv.AssetsDir != "" {
		args = append(args, "--assets-dir", inv.AssetsDir)
	}
	return args
}

// String is the invocation as a single shell-safe command line.
func (inv Invocation) String() string {
	argv := append([]string{inv.Bin}, inv.Args()...)
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = shellescape.Quote(arg)
	}
	return strings.Join(quoted, " ")
}
