package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/trezcool/darasa/storage/database"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db database.Store
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  initschema [-timeout DURATION] - create missing containers, constraints and indexes")
	fmt.Println("  ping [-timeout DURATION]       - check that the configured database is reachable")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	initSchemaCmd := flag.NewFlagSet("initschema", flag.ExitOnError)
	initSchemaTimeout := initSchemaCmd.Duration("timeout", 30*time.Second, "How long to wait for the schema to be applied.")

	pingCmd := flag.NewFlagSet("ping", flag.ExitOnError)
	pingTimeout := pingCmd.Duration("timeout", 5*time.Second, "How long to wait for the database to answer.")

	switch args[1] {
	case "initschema":
		if err := initSchemaCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.initSchema(*initSchemaTimeout)
	case "ping":
		if err := pingCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.ping(*pingTimeout)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) ping(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := cli.db.Ping(ctx); err != nil {
		return err
	}
	fmt.Println("pong")
	return nil
}

func (cli *commandLine) initSchema(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := cli.db.EnsureSchema(ctx); err != nil {
		return err
	}
	fmt.Println("schema is up to date")
	return nil
}
