/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package main

import (
	"os"

	"github.com/acronis/taskgate/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
