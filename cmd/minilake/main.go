package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional, used for local overrides like MINILAKE_CONTACT
	_ = godotenv.Load()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&extractCmd{}, "pipeline")
	commander.Register(&transformCmd{}, "pipeline")
	commander.Register(&pricesCmd{}, "query")
	commander.Register(&fundamentalsCmd{}, "query")
	commander.Register(&versionCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
