package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mithrel/arttown/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "arttown:", err)
		os.Exit(1)
	}
}
