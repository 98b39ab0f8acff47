package main

import "github.com/clipmod/toxcut/internal/cli"

func main() { cli.Main() }
