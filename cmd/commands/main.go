package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"twitchchat/internal/app/domain/commands"
)

const usage = `usage:
  commands [-data dir] add [-every minutes] <name> <message...>
  commands [-data dir] remove <name>
  commands [-data dir] list`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("commands", flag.ContinueOnError)
	dataDir := fs.String("data", "data", "data directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store := commands.NewStore(*dataDir)
	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New(usage)
	}

	switch rest[0] {
	case "add":
		addFs := flag.NewFlagSet("add", flag.ContinueOnError)
		every := addFs.Int("every", 0, "post as an announcement every N minutes")
		if err := addFs.Parse(rest[1:]); err != nil {
			return err
		}
		if addFs.NArg() < 2 {
			return errors.New(usage)
		}

		name, message := addFs.Arg(0), strings.Join(addFs.Args()[1:], " ")
		if *every > 0 {
			if err := store.AddAnnouncement(name, time.Duration(*every)*time.Minute, message); err != nil {
				return err
			}
			_, err := fmt.Fprintf(out, "announcement %s added (every %d min)\n", name, *every)
			return err
		}

		if err := store.AddCommand(name, message); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "command !%s added\n", name)
		return err

	case "remove":
		if len(rest) != 2 {
			return errors.New(usage)
		}
		if err := store.Remove(rest[1]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "%s removed\n", rest[1])
		return err

	case "list":
		cmds, err := store.Commands()
		if err != nil {
			return err
		}
		for _, c := range cmds {
			fmt.Fprintf(out, "!%s\t%s\n", c.Name, c.Message)
		}

		anns, err := store.Announcements()
		if err != nil {
			return err
		}
		for _, a := range anns {
			fmt.Fprintf(out, "%s\tevery %s\t%s\n", a.Name, a.Every, a.Message)
		}
		return nil
	}

	return errors.New(usage)
}
