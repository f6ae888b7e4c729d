package cmd

const DESCRIPTION = `
GrabTube is a scheduling client for a self-hosted video download
server. It keeps recurring download schedules, fires them on time
through a background daemon, and mirrors the server's download list
locally so you can watch progress from the terminal.
`

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCategories}}{{if .Name}}

{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{end}}{{end}}{{if .VisibleFlags}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`

const (
	AddDescription = `The add command submits a one-off download to the
configured download server and prints the created job id.

Example:
        grabtube add https://example.com/watch?v=xyz
        grabtube add -q 720p -f mp4 https://example.com/watch?v=xyz

`
	ListDescription = `The list command displays the locally cached download
list, including each job's id, status and progress.

Example:
        grabtube list
        grabtube list --active

`
	CancelDescription = `The cancel command asks the download server to stop
an active download by its job id.

Example:
        grabtube cancel <download id>

`
	ClearDescription = `The clear command removes finished downloads from the
server and from the local cache.

Example:
        grabtube clear

`
	AttachDescription = `The attach command follows live progress of the
daemon's downloads with progress bars, until interrupted.

Example:
        grabtube attach

`
	DaemonDescription = `The daemon command runs the GrabTube daemon in the
foreground: the schedule execution loop, the download server event
listener and the control socket.

Example:
        grabtube daemon

`
	ScheduleDescription = `The schedule command manages recurring download
schedules. See the subcommands for details.

Example:
        grabtube schedule add --daily 09:00 --name "morning show" <url>
        grabtube schedule list

`
)
