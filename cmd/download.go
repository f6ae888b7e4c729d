package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli"

	"github.com/grabtube/grabtube/cmd/common"
	"github.com/grabtube/grabtube/pkg/gtclient"
)

var (
	addQuality string
	addFormat  string
	addFolder  string
	addPaused  bool

	addFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "quality, q",
			Usage:       "preferred quality, e.g. best, 1080p, 720p (default: best)",
			Destination: &addQuality,
		},
		cli.StringFlag{
			Name:        "format, f",
			Usage:       "preferred container format, e.g. mp4, mkv (default: any)",
			Destination: &addFormat,
		},
		cli.StringFlag{
			Name:        "folder, d",
			Usage:       "server-side folder to save the download into",
			Destination: &addFolder,
		},
		cli.BoolFlag{
			Name:        "paused, p",
			Usage:       "queue the download without starting it",
			Destination: &addPaused,
		},
	}
)

func add(ctx *cli.Context) error {
	url := ctx.Args().First()
	if url == "" {
		if ctx.Command.Name == "" {
			return common.Help(ctx)
		}
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no url provided"),
		)
	} else if url == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := gtclient.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "add", "new_client", err)
		return nil
	}
	defer client.Close()
	client.CheckVersionMismatch(currentBuildArgs.Version)

	resp, err := client.Download(strings.TrimSpace(url), &gtclient.DownloadOpts{
		Quality: addQuality,
		Format:  addFormat,
		Folder:  addFolder,
		Paused:  addPaused,
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "add", "download", err)
		return nil
	}
	fmt.Printf("Submitted download %s\n", resp.DownloadId)
	return nil
}
