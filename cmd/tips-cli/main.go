package main

import (
	"github.com/turtacn/tips/cmd/cli"
)

// main is the entry point for the tips-cli command-line tool.
// main 是 tips-cli 命令行工具的入口点。
func main() {
	cli.Execute()
}
