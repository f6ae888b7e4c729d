package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"

	cmdCommon "github.com/grabtube/grabtube/cmd/common"
	"github.com/grabtube/grabtube/common"
	"github.com/grabtube/grabtube/pkg/gtclient"
	"github.com/grabtube/grabtube/pkg/gtlib"
)

func attach(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := gtclient.NewClient()
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "attach", "new_client", err)
		return nil
	}
	defer client.Close()
	client.CheckVersionMismatch(currentBuildArgs.Version)

	snapshot, err := client.Attach()
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "attach", "attach", err)
		return nil
	}

	fmt.Println(">> Watching downloads, press Ctrl-C to stop <<")
	p := mpb.New(mpb.WithWidth(64), mpb.WithRefreshRate(120*time.Millisecond))
	bars := make(map[string]*mpb.Bar)
	titles := make(map[string]string)

	for _, d := range snapshot.Downloads {
		titles[d.Id] = displayTitle(d)
		if d.Status.IsActive() || d.Status == gtlib.StatusPending {
			bar := cmdCommon.InitBar(p, titles[d.Id])
			bar.SetCurrent(int64(d.Progress))
			bars[d.Id] = bar
		}
	}

	client.AddHandler(common.UPDATE_DOWNLOADING, gtclient.NewDownloadingHandler("",
		func(dr *common.DownloadingResponse) error {
			bar, ok := bars[dr.DownloadId]
			if !ok {
				name := titles[dr.DownloadId]
				if name == "" {
					name = dr.DownloadId
				}
				bar = cmdCommon.InitBar(p, name)
				bars[dr.DownloadId] = bar
			}
			switch dr.Action {
			case common.DownloadComplete:
				bar.SetCurrent(100)
			case common.DownloadFailed, common.DownloadCanceled:
				bar.Abort(false)
				if dr.Error != "" {
					fmt.Printf("\n%s: %s\n", dr.DownloadId, dr.Error)
				}
			default:
				bar.SetCurrent(int64(dr.Progress))
			}
			return nil
		}))
	client.AddHandler(common.UPDATE_RUN_SCHEDULE, gtclient.NewScheduleExecutedHandler(
		func(sr *common.ScheduleExecutedResponse) error {
			if sr.Success {
				fmt.Printf("\nschedule %s fired, download %s\n", sr.ScheduleId, sr.DownloadId)
			} else {
				fmt.Printf("\nschedule %s failed: %s\n", sr.ScheduleId, sr.Error)
			}
			return nil
		}))

	err = client.Listen()
	p.Wait()
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "attach", "listen", err)
	}
	return nil
}

func displayTitle(d *gtlib.Download) string {
	if d.Title != "" {
		return d.Title
	}
	return d.Url
}
