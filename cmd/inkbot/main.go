package main

import (
	"context"
	"fmt"
	"os"

	"github.com/zurustar/inkbot/pkg/app"
)

func main() {
	application := app.New(os.Stdout)
	if err := application.Run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
