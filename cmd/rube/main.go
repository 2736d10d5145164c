// rube recovers a short hidden string from the digests of its n-grams.
// It searches for each n-gram by random draws, then stitches the matches
// back together by their overlaps.
package main

import (
	"os"

	"github.com/corey/rube/cmd/rube/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
