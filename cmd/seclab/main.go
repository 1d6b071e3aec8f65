package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/secbyexample/seclab/internal/seclab/app"
	"github.com/secbyexample/seclab/internal/seclab/demo"
	"github.com/secbyexample/seclab/pkg/slogx"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: seclab <module>\n\nmodules:\n  all\n  %s\n",
		strings.Join(demo.Names(), "\n  "))
	os.Exit(2)
}

func main() {
	if len(os.Args) != 2 {
		usage()
	}
	name := os.Args[1]

	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer application.Close()

	ctx := slogx.WithContext(context.Background(), application.Logger)

	if name == "all" {
		if err := demo.RunAll(ctx, os.Stdout, application); err != nil {
			log.Fatalf("demo error: %v", err)
		}
		return
	}

	runner, ok := demo.Lookup(name)
	if !ok {
		usage()
	}
	if err := runner(slogx.WithModule(ctx, name), os.Stdout, application); err != nil {
		log.Fatalf("demo %s error: %v", name, err)
	}
}
