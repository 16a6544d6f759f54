// Splash - A splash screen lifecycle controller
//
// Splash resolves splash screen settings from layered configuration and drives
// a host through show, auto-hide, hide and delegated animation.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/splash/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
