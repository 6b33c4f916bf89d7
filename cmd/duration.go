package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/traxyt/internal/shared"
	"github.com/urfave/cli/v3"
)

// DurationParse prints the seconds in a time text such as "5:30".
func (r *Runner) DurationParse(ctx context.Context, cmd *cli.Command) error {
	value := cmd.StringArg("value")
	if value == "" {
		return fmt.Errorf("%w: value", shared.ErrMissingArgument)
	}
	return r.writePlain("%d\n", shared.ParseDuration(value))
}

// DurationFormat prints a number of seconds as "m:ss".
func (r *Runner) DurationFormat(ctx context.Context, cmd *cli.Command) error {
	value := strings.TrimSpace(cmd.StringArg("value"))
	if value == "" {
		return fmt.Errorf("%w: value", shared.ErrMissingArgument)
	}

	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return fmt.Errorf("%w: %q is not a number of seconds", shared.ErrInvalidArgument, value)
	}
	return r.writePlain("%s\n", shared.FormatDuration(seconds))
}
