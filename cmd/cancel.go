package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/grabtube/grabtube/cmd/common"
	"github.com/grabtube/grabtube/pkg/gtclient"
)

func cancel(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no download id provided"),
		)
	} else if id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := gtclient.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "cancel", "new_client", err)
		return nil
	}
	defer client.Close()

	if _, err := client.Cancel(id); err != nil {
		common.PrintRuntimeErr(ctx, "cancel", "cancel", err)
		return nil
	}
	fmt.Printf("Canceled download %s\n", id)
	return nil
}

func clear(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := gtclient.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "clear", "new_client", err)
		return nil
	}
	defer client.Close()

	resp, err := client.ClearCompleted()
	if err != nil {
		common.PrintRuntimeErr(ctx, "clear", "clear_completed", err)
		return nil
	}
	fmt.Printf("Removed %d finished download(s)\n", resp.Removed)
	return nil
}
