package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/admissions/core/admission"
)

var errHelp = errors.New("help provided")

type statusResolver interface {
	GetStatus(ctx context.Context, q admission.Query) (admission.StatusResult, error)
}

type commandLine struct {
	db  *sqlx.DB
	svc statusResolver
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  status -application NUMBER -mobile MOBILE - print an application's status payload")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	statusCmd := flag.NewFlagSet("status", flag.ContinueOnError)
	statusCmd.SetOutput(cli.out)
	statusAppNo := statusCmd.String("application", "", "The application number.")
	statusMobile := statusCmd.String("mobile", "", "The mobile number used on the application form.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "status":
		if err := statusCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.status(context.Background(), *statusAppNo, *statusMobile)
	default:
		cli.printUsage()
		return errHelp
	}
}
