package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/openapi"
	"github.com/goliatone/go-formstate/pkg/registration"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/validation"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	schemaPath := flag.String("schema", cfg.SchemaPath, "YAML or JSON rule file (built-in registration form if empty)")
	uniform := flag.Bool("uniform-clear", cfg.UniformClear, "clear all errors on every edit, including password fields")
	output := flag.String("output", cfg.Output, "output format: json or pretty")
	attempts := flag.Int("attempts", cfg.MaxAttempts, "rejected submissions allowed before giving up")
	export := flag.String("export", cfg.Export, "print the schema in another format instead of prompting (openapi)")
	flag.Parse()

	cfg.SchemaPath = *schemaPath
	cfg.UniformClear = *uniform
	cfg.Output = *output
	cfg.MaxAttempts = *attempts
	cfg.Export = *export
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	schema, err := loadSchema(cfg.SchemaPath)
	if err != nil {
		log.Fatalf("Failed to load schema: %v", err)
	}

	if cfg.Export == "openapi" {
		data, err := openapi.MarshalJSON(schema)
		if err != nil {
			log.Fatalf("Failed to export schema: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	engine, err := validation.New(schema)
	if err != nil {
		log.Fatalf("Failed to build validator: %v", err)
	}

	policy := form.ClearPolicyLegacy
	if cfg.UniformClear {
		policy = form.ClearPolicyUniform
	}
	state := form.New(engine, form.WithClearPolicy(policy))

	session, err := tui.NewSession(state,
		tui.WithOutputFormat(tui.OutputFormat(cfg.Output)),
		tui.WithMaxAttempts(cfg.MaxAttempts),
	)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := session.Run(ctx)
	if errors.Is(err, tui.ErrAborted) {
		log.Printf("Aborted")
		return
	}
	if err != nil {
		log.Fatalf("Form was not submitted: %v", err)
	}
	fmt.Println(string(out))
}

func loadSchema(path string) (rules.Schema, error) {
	if path == "" {
		return registration.Schema(), nil
	}
	return rules.LoadFile(path)
}
