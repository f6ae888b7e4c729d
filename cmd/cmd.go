package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"

	"github.com/grabtube/grabtube/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var currentBuildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "grabtube",
		HelpName:              "grabtube",
		Usage:                 "A video download client with scheduling.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "grabtube <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:        "daemon",
				Usage:       "run the grabtube daemon in the foreground",
				Description: DaemonDescription,
				Action:      daemonCmd,
			},
			{
				Name:                   "add",
				Aliases:                []string{"a"},
				Usage:                  "submit a video url for download",
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           common.UsageErrorCallback,
				Action:                 add,
				Flags:                  addFlags,
				UseShortOptionHandling: true,
				Description:            AddDescription,
			},
			{
				Name:                   "list",
				Aliases:                []string{"l"},
				Usage:                  "display the download queue",
				Action:                 list,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            ListDescription,
				UseShortOptionHandling: true,
				Flags:                  lsFlags,
			},
			{
				Name:               "cancel",
				Usage:              "cancel a queued or running download",
				Description:        CancelDescription,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             cancel,
			},
			{
				Name:               "clear",
				Aliases:            []string{"c"},
				Usage:              "remove finished downloads from the queue",
				Description:        ClearDescription,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             clear,
			},
			{
				Name:               "attach",
				Usage:              "watch live progress of all downloads",
				Description:        AttachDescription,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             attach,
			},
			{
				Name:               "schedule",
				Aliases:            []string{"s"},
				Usage:              "manage recurring download schedules",
				Description:        ScheduleDescription,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Subcommands: []cli.Command{
					{
						Name:                   "add",
						Usage:                  "create a new schedule",
						OnUsageError:           common.UsageErrorCallback,
						CustomHelpTemplate:     CMD_HELP_TEMPL,
						Action:                 scheduleAdd,
						Flags:                  schedAddFlags,
						UseShortOptionHandling: true,
					},
					{
						Name:                   "list",
						Aliases:                []string{"ls"},
						Usage:                  "list schedules",
						OnUsageError:           common.UsageErrorCallback,
						CustomHelpTemplate:     CMD_HELP_TEMPL,
						Action:                 scheduleList,
						Flags:                  schedListFlags,
						UseShortOptionHandling: true,
					},
					{
						Name:    "info",
						Usage:   "show one schedule in detail",
						Action:  scheduleInfo,
						Aliases: []string{"i"},
					},
					{
						Name:    "rm",
						Usage:   "delete a schedule",
						Action:  scheduleRm,
						Aliases: []string{"delete"},
					},
					{
						Name:   "pause",
						Usage:  "deactivate a schedule",
						Action: scheduleToggle(false),
					},
					{
						Name:   "resume",
						Usage:  "reactivate a schedule",
						Action: scheduleToggle(true),
					},
					{
						Name:   "run",
						Usage:  "fire a schedule immediately",
						Action: scheduleRun,
					},
					{
						Name:   "history",
						Usage:  "show the execution history of a schedule",
						Action: scheduleHistory,
					},
					{
						Name:   "stats",
						Usage:  "show execution statistics",
						Action: scheduleStats,
					},
				},
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of grabtube",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:                 add,
		Flags:                  addFlags,
		UseShortOptionHandling: true,
		HideHelp:               true,
		HideVersion:            true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
