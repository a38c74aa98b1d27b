package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/validation"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Check an event set against the issuance rules",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	set, err := readEventSet(cmd, args[0])
	if err != nil {
		return err
	}
	if len(set.Events) == 0 {
		return errors.New("event set has no events")
	}

	w := cmd.OutOrStdout()
	invalid := 0
	for _, ev := range set.Events {
		var ve *domain.ValidationError
		if err := validation.Event(ev); errors.As(err, &ve) {
			invalid++
			fmt.Fprintf(w, "FAIL %s: %s\n", ev.EventID, ve.Message)
			continue
		}
		fmt.Fprintf(w, "ok   %s\n", ev.EventID)
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d events invalid", invalid, len(set.Events))
	}
	return nil
}
