package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"MiniCatalog/internal/catalog"
)

const defaultAPIURL = "http://localhost:8000"

const usage = "usage: catalogctl [create|get|health] [options]"

func main() {
	if len(os.Args) < 2 {
		fail(usage)
	}

	var err error
	switch os.Args[1] {
	case "create":
		err = runCreate(os.Args[2:])
	case "get":
		err = runGet(os.Args[2:])
	case "health":
		err = runHealth(os.Args[2:])
	default:
		fail(usage)
	}
	if err != nil {
		fail(describe(err))
	}
}

func newFlags(name string) (*flag.FlagSet, *string) {
	flags := flag.NewFlagSet(name, flag.ExitOnError)
	addr := flags.String("addr", apiURL(), "catalog API base URL (env CATALOG_API_URL)")
	return flags, addr
}

func runCreate(args []string) error {
	flags, addr := newFlags("create")
	name := flags.String("name", "", "product name")
	price := flags.Float64("price", 0, "product price, must be positive")
	_ = flags.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := catalog.NewClient(*addr).Create(ctx, *name, *price)
	if err != nil {
		return err
	}
	return printJSON(p)
}

func runGet(args []string) error {
	flags, addr := newFlags("get")
	id := flags.Int64("id", 0, "product id")
	_ = flags.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, ok, err := catalog.NewClient(*addr).Get(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("product %d not found", *id)
	}
	return printJSON(p)
}

func runHealth(args []string) error {
	flags, addr := newFlags("health")
	_ = flags.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := catalog.NewClient(*addr).Health(ctx); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func apiURL() string {
	if v := os.Getenv("CATALOG_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func describe(err error) string {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		msg := "invalid input:"
		for _, f := range ve.Fields {
			field := "request"
			if len(f.Loc) > 0 {
				field = f.Loc[len(f.Loc)-1]
			}
			msg += fmt.Sprintf("\n  %s: %s", field, f.Msg)
		}
		return msg
	case errors.Is(err, catalog.ErrUnavailable):
		return fmt.Sprintf("cannot reach the catalog API: %v", err)
	default:
		return err.Error()
	}
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
