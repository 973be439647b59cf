package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-circulation-go/app/features/command/processtransaction"
	"github.com/AntonStoeckl/library-circulation-go/app/features/command/removelibrarian"
	"github.com/AntonStoeckl/library-circulation-go/app/features/command/removeloaner"
	"github.com/AntonStoeckl/library-circulation-go/app/features/query/openloans"
	"github.com/AntonStoeckl/library-circulation-go/app/features/query/overdueloans"
	"github.com/AntonStoeckl/library-circulation-go/app/features/query/transactionhistory"
	"github.com/AntonStoeckl/library-circulation-go/app/shared/shell"
	"github.com/AntonStoeckl/library-circulation-go/app/shared/shell/config"
	"github.com/AntonStoeckl/library-circulation-go/app/shared/shell/observable"
	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

var errUsage = errors.New("usage: circulation <borrow|return|extend|remove-loaner|remove-librarian|open-loans|history|overdue> [flags]")

// logger is what the application logs through, config.ZapLogger in production.
type logger interface {
	shell.Logger
	shell.ContextualLogger
}

type application struct {
	processTransaction *observable.CommandWrapper[processtransaction.Command, processtransaction.Result]
	removeLoaner       *observable.CommandWrapper[removeloaner.Command, shell.HandlerResult]
	removeLibrarian    *observable.CommandWrapper[removelibrarian.Command, shell.HandlerResult]
	openLoans          *observable.QueryWrapper[openloans.Query, openloans.OpenLoans]
	transactionHistory *observable.QueryWrapper[transactionhistory.Query, transactionhistory.TransactionHistory]
	overdueLoans       *observable.QueryWrapper[overdueloans.Query, overdueloans.OverdueLoans]
	clock              func() time.Time
}

func newApplication(
	store circulation.Store,
	log logger,
	telemetry config.Telemetry,
	retryOptions ...shell.RetryOption,
) (*application, error) {

	app := &application{clock: time.Now}
	var err error

	app.processTransaction, err = observable.NewCommandWrapper(
		shell.CommandHandler[processtransaction.Command, processtransaction.Result](
			processtransaction.NewCommandHandler(store, processtransaction.WithRetryOptions(retryOptions...)),
		),
		observable.WithCommandContextualLogging[processtransaction.Command, processtransaction.Result](log),
		observable.WithCommandMetrics[processtransaction.Command, processtransaction.Result](telemetry.Metrics),
		observable.WithCommandTracing[processtransaction.Command, processtransaction.Result](telemetry.Tracing),
	)
	if err != nil {
		return nil, err
	}

	app.removeLoaner, err = observable.NewCommandWrapper(
		shell.CommandHandler[removeloaner.Command, shell.HandlerResult](
			removeloaner.NewCommandHandler(store, removeloaner.WithRetryOptions(retryOptions...)),
		),
		observable.WithCommandContextualLogging[removeloaner.Command, shell.HandlerResult](log),
		observable.WithCommandMetrics[removeloaner.Command, shell.HandlerResult](telemetry.Metrics),
		observable.WithCommandTracing[removeloaner.Command, shell.HandlerResult](telemetry.Tracing),
	)
	if err != nil {
		return nil, err
	}

	app.removeLibrarian, err = observable.NewCommandWrapper(
		shell.CommandHandler[removelibrarian.Command, shell.HandlerResult](
			removelibrarian.NewCommandHandler(store, removelibrarian.WithRetryOptions(retryOptions...)),
		),
		observable.WithCommandContextualLogging[removelibrarian.Command, shell.HandlerResult](log),
		observable.WithCommandMetrics[removelibrarian.Command, shell.HandlerResult](telemetry.Metrics),
		observable.WithCommandTracing[removelibrarian.Command, shell.HandlerResult](telemetry.Tracing),
	)
	if err != nil {
		return nil, err
	}

	app.openLoans, err = observable.NewQueryWrapper(
		shell.QueryHandler[openloans.Query, openloans.OpenLoans](openloans.NewQueryHandler(store, nil)),
		observable.WithQueryContextualLogging[openloans.Query, openloans.OpenLoans](log),
		observable.WithQueryMetrics[openloans.Query, openloans.OpenLoans](telemetry.Metrics),
		observable.WithQueryTracing[openloans.Query, openloans.OpenLoans](telemetry.Tracing),
	)
	if err != nil {
		return nil, err
	}

	app.transactionHistory, err = observable.NewQueryWrapper(
		shell.QueryHandler[transactionhistory.Query, transactionhistory.TransactionHistory](
			transactionhistory.NewQueryHandler(store),
		),
		observable.WithQueryContextualLogging[transactionhistory.Query, transactionhistory.TransactionHistory](log),
		observable.WithQueryMetrics[transactionhistory.Query, transactionhistory.TransactionHistory](telemetry.Metrics),
		observable.WithQueryTracing[transactionhistory.Query, transactionhistory.TransactionHistory](telemetry.Tracing),
	)
	if err != nil {
		return nil, err
	}

	app.overdueLoans, err = observable.NewQueryWrapper(
		shell.QueryHandler[overdueloans.Query, overdueloans.OverdueLoans](overdueloans.NewQueryHandler(store)),
		observable.WithQueryContextualLogging[overdueloans.Query, overdueloans.OverdueLoans](log),
		observable.WithQueryMetrics[overdueloans.Query, overdueloans.OverdueLoans](telemetry.Metrics),
		observable.WithQueryTracing[overdueloans.Query, overdueloans.OverdueLoans](telemetry.Tracing),
	)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// run executes the operation named by args[0] and writes its result to out.
func (a *application) run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	operation, flags := args[0], flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	loanerID := flags.String("loaner", "", "loaner id")
	librarianID := flags.String("librarian", "", "librarian id")
	transactionID := flags.String("transaction", "", "transaction id")
	borrowDate := flags.String("borrow-date", "", "borrow date, yyyyMMdd")
	dueDate := flags.String("due-date", "", "due date, yyyyMMdd")
	asOf := flags.String("as-of", "", "day to report overdue loans for, yyyyMMdd, default today")
	books := bookCopiesFlag{}
	flags.Var(&books, "book", "book id and copies as ID:COPIES, repeatable")

	if err := flags.Parse(args[1:]); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	var result any
	var err error

	switch operation {
	case "borrow", "return", "extend":
		result, err = a.processTransaction.Handle(ctx, processtransaction.BuildCommand(
			transactionTypes[operation],
			parseID(*loanerID),
			parseID(*librarianID),
			books,
			*borrowDate,
			*dueDate,
		))
		if err == nil {
			result = result.(processtransaction.Result).Transaction
		}

	case "remove-loaner":
		_, err = a.removeLoaner.Handle(ctx, removeloaner.BuildCommand(parseID(*loanerID)))
		result = map[string]string{"removedLoaner": *loanerID}

	case "remove-librarian":
		_, err = a.removeLibrarian.Handle(ctx, removelibrarian.BuildCommand(parseID(*librarianID)))
		result = map[string]string{"removedLibrarian": *librarianID}

	case "open-loans":
		result, err = a.openLoans.Handle(ctx, openloans.BuildQuery(parseID(*loanerID)))

	case "history":
		query := transactionhistory.BuildQueryByLoaner(parseID(*loanerID))
		if *transactionID != "" {
			query = transactionhistory.Query{LoanerID: query.LoanerID, TransactionID: parseID(*transactionID)}
		}

		result, err = a.transactionHistory.Handle(ctx, query)

	case "overdue":
		day := a.clock()
		if *asOf != "" {
			if day, err = circulation.ParseDate(*asOf); err != nil {
				return err
			}
		}

		result, err = a.overdueLoans.Handle(ctx, overdueloans.BuildQuery(day))

	default:
		return errUsage
	}

	if err != nil {
		return err
	}

	return writeJSON(out, result)
}

var transactionTypes = map[string]circulation.TransactionType{
	"borrow": circulation.Borrow,
	"return": circulation.Return,
	"extend": circulation.Extend,
}

// parseID maps anything that is not a UUID to uuid.Nil, which the handlers reject as missing.
func parseID(value string) uuid.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}

	return id
}

func writeJSON(out io.Writer, value any) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, string(data))

	return err
}
