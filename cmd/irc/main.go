// Command irc is a thin external driver over the IR engine: it is
// explicitly not a surface-language frontend (there is no lexer or
// parser in this module). It builds IR graphs directly through the
// constructor API, the way the teacher's cmd/typecheck/demo_ast.go builds
// ast nodes by hand to exercise the type checker without a real parser,
// and runs the end-to-end scenarios named in spec.md §8.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
