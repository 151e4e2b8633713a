// Command deflopt re-encodes a single DEFLATE dynamic-Huffman block to
// minimize its bit length, via three subcommands: optimize (the
// coordinator alone; it reads no variable file and renames nothing),
// split (the two-block
// splitter), and ga (the evolutionary outer search).
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
