package main

import (
	"context"
	"fmt"
	"os"

	"MarketFeed/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "marketfeed: %v\n", err)
		os.Exit(1)
	}
}
