package main

import "github.com/rvallade/maha/internal/cli"

func main() {
	cli.Execute()
}
