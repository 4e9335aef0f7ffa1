package main

import (
	"fmt"

	"github.com/fwojciec/doclens"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	domain := doclens.NormalizeDomain(c.Domain)
	session, err := deps.Ingester.Status(deps.Ctx, domain)
	switch {
	case doclens.ErrorCode(err) == doclens.ENOTFOUND:
		fmt.Fprintf(deps.Stdout, "%s has not been crawled\n", domain)
		return nil
	case err != nil:
		fmt.Fprintf(deps.Stderr, "error: %s\n", doclens.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s: %s (%d/%d pages)\n", domain, session.Status, session.ProcessedPages, session.TotalPages)
	fmt.Fprintf(deps.Stdout, "  started:   %s\n", session.StartedAt.Format("2006-01-02 15:04:05"))
	if session.CompletedAt != nil {
		fmt.Fprintf(deps.Stdout, "  completed: %s\n", session.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if session.Error != "" {
		fmt.Fprintf(deps.Stdout, "  error:     %s\n", session.Error)
	}
	return nil
}

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return doclens.Errorf(doclens.EINVALID, "use --force to confirm deletion")
	}

	domain := doclens.NormalizeDomain(c.Domain)
	if err := deps.Ingester.DeleteDomain(deps.Ctx, domain); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doclens.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %s\n", domain)
	return nil
}
