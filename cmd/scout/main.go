package main

import "github.com/mvp-joe/project-scout/internal/cli"

func main() {
	cli.Execute()
}
