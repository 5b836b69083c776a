// Package main is the single-binary entrypoint for deukgeun.
package main

import "github.com/deukgeun/deukgeun/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
