package main

import "github.com/anonto42/userdir/backend/internal/cli"

func main() {
	cli.Execute()
}
