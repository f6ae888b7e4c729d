package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/grabtube/grabtube/cmd/common"
	"github.com/grabtube/grabtube/pkg/gtclient"
	"github.com/grabtube/grabtube/pkg/gtlib"
)

const (
	atLayout      = "2006-01-02 15:04"
	dateLayout    = "2006-01-02"
	timeLayout    = "15:04"
	yearDayLayout = "01-02"
)

var (
	schedName        string
	schedDescription string
	schedAt          string
	schedDaily       string
	schedWeekly      string
	schedMonthly     int
	schedYearly      string
	schedEvery       string
	schedTime        string
	schedCollection  bool
	schedEndDate     string
	schedMaxExec     int
	schedQuality     string
	schedFormat      string
	schedFolder      string
	schedPaused      bool
	schedActiveOnly  bool

	schedAddFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "name, n",
			Usage:       "display name of the schedule (required)",
			Destination: &schedName,
		},
		cli.StringFlag{
			Name:        "description",
			Usage:       "free-text note attached to the schedule",
			Destination: &schedDescription,
		},
		cli.StringFlag{
			Name:        "at",
			Usage:       "fire once at \"YYYY-MM-DD HH:MM\"",
			Destination: &schedAt,
		},
		cli.StringFlag{
			Name:        "daily",
			Usage:       "fire every day at HH:MM",
			Destination: &schedDaily,
		},
		cli.StringFlag{
			Name:        "weekly",
			Usage:       "fire on the given weekdays, e.g. mon,wed,fri (use with --time)",
			Destination: &schedWeekly,
		},
		cli.IntFlag{
			Name:        "monthly",
			Usage:       "fire on the given day of the month, 1-31 (use with --time)",
			Destination: &schedMonthly,
		},
		cli.StringFlag{
			Name:        "yearly",
			Usage:       "fire once a year on MM-DD (use with --time)",
			Destination: &schedYearly,
		},
		cli.StringFlag{
			Name:        "every",
			Usage:       "fire periodically, e.g. 30m, 12h, 3d, 2w, 1mo",
			Destination: &schedEvery,
		},
		cli.StringFlag{
			Name:        "time, t",
			Usage:       "time of day HH:MM for --weekly, --monthly and --yearly (default: 00:00)",
			Destination: &schedTime,
		},
		cli.BoolFlag{
			Name:        "collection",
			Usage:       "treat the url as a video collection to re-fetch (use with --every)",
			Destination: &schedCollection,
		},
		cli.StringFlag{
			Name:        "end-date",
			Usage:       "stop firing after YYYY-MM-DD",
			Destination: &schedEndDate,
		},
		cli.IntFlag{
			Name:        "max-executions",
			Usage:       "stop firing after this many executions (default: unlimited)",
			Destination: &schedMaxExec,
		},
		cli.StringFlag{
			Name:        "quality, q",
			Usage:       "preferred quality for scheduled jobs (default: best)",
			Destination: &schedQuality,
		},
		cli.StringFlag{
			Name:        "format, f",
			Usage:       "preferred container format (default: mp4)",
			Destination: &schedFormat,
		},
		cli.StringFlag{
			Name:        "folder, d",
			Usage:       "server-side folder for scheduled jobs",
			Destination: &schedFolder,
		},
		cli.BoolFlag{
			Name:        "paused, p",
			Usage:       "create the schedule in paused state",
			Destination: &schedPaused,
		},
	}

	schedListFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "active, a",
			Usage:       "only list active schedules",
			Destination: &schedActiveOnly,
		},
	}
)

// parseTimeOfDay parses an HH:MM value.
func parseTimeOfDay(value string) (gtlib.TimeOfDay, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return gtlib.TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	return gtlib.MakeTimeOfDay(t), nil
}

// parseWeekdays parses a comma-separated weekday list like mon,wed,fri.
// Full names and three-letter abbreviations are accepted in any case.
func parseWeekdays(value string) ([]gtlib.Weekday, error) {
	var days []gtlib.Weekday
	for _, part := range strings.Split(value, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		d, ok := gtlib.ParseWeekday(part)
		if !ok {
			for w := gtlib.Monday; w <= gtlib.Sunday; w++ {
				if strings.HasPrefix(w.String(), part) && len(part) >= 3 {
					d, ok = w, true
					break
				}
			}
		}
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, errors.New("no weekdays given")
	}
	return days, nil
}

// parseEvery parses an interval like 30m, 12h, 3d, 2w or 1mo.
func parseEvery(value string) (int, gtlib.TimeUnit, error) {
	units := []struct {
		suffix string
		unit   gtlib.TimeUnit
	}{
		// Longest suffix first so "1mo" is not read as minutes.
		{"mo", gtlib.UnitMonths},
		{"m", gtlib.UnitMinutes},
		{"h", gtlib.UnitHours},
		{"d", gtlib.UnitDays},
		{"w", gtlib.UnitWeeks},
	}
	for _, u := range units {
		if !strings.HasSuffix(value, u.suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(value, u.suffix))
		if err != nil || n < 1 {
			return 0, "", fmt.Errorf("invalid interval %q, expected a positive count like 30m", value)
		}
		return n, u.unit, nil
	}
	return 0, "", fmt.Errorf("invalid interval %q, expected a unit suffix m, h, d, w or mo", value)
}

// buildRecurrence resolves the timing flags into a recurrence. Exactly
// one of --at, --daily, --weekly, --monthly, --yearly and --every must
// be set.
func buildRecurrence() (gtlib.Recurrence, error) {
	var set int
	for _, on := range []bool{
		schedAt != "", schedDaily != "", schedWeekly != "",
		schedMonthly != 0, schedYearly != "", schedEvery != "",
	} {
		if on {
			set++
		}
	}
	if set == 0 {
		return nil, errors.New("no timing given: use one of --at, --daily, --weekly, --monthly, --yearly, --every")
	}
	if set > 1 {
		return nil, errors.New("flags --at, --daily, --weekly, --monthly, --yearly and --every are mutually exclusive")
	}
	if schedCollection && schedEvery == "" {
		return nil, errors.New("--collection requires --every")
	}

	td := gtlib.TimeOfDay{}
	if schedTime != "" {
		var err error
		if td, err = parseTimeOfDay(schedTime); err != nil {
			return nil, err
		}
	}

	switch {
	case schedAt != "":
		at, err := time.ParseInLocation(atLayout, schedAt, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid --at value %q, expected YYYY-MM-DD HH:MM", schedAt)
		}
		if at.Before(time.Now()) {
			return nil, fmt.Errorf("--at time %q is in the past", schedAt)
		}
		return gtlib.NewOneTime(at), nil

	case schedDaily != "":
		dtd, err := parseTimeOfDay(schedDaily)
		if err != nil {
			return nil, err
		}
		return gtlib.NewDaily(dtd)

	case schedWeekly != "":
		days, err := parseWeekdays(schedWeekly)
		if err != nil {
			return nil, err
		}
		return gtlib.NewWeekly(td, days)

	case schedMonthly != 0:
		return gtlib.NewMonthly(td, schedMonthly)

	case schedYearly != "":
		d, err := time.Parse(yearDayLayout, schedYearly)
		if err != nil {
			return nil, fmt.Errorf("invalid --yearly value %q, expected MM-DD", schedYearly)
		}
		return gtlib.NewYearly(d.Month(), d.Day(), td)

	default:
		n, unit, err := parseEvery(schedEvery)
		if err != nil {
			return nil, err
		}
		if schedCollection {
			return gtlib.NewCollection(n, unit)
		}
		return gtlib.NewEvery(n, unit)
	}
}

func buildSchedule(url string) (*gtlib.Schedule, error) {
	if schedName == "" {
		return nil, errors.New("--name is required")
	}
	rec, err := buildRecurrence()
	if err != nil {
		return nil, err
	}
	sched := &gtlib.Schedule{
		Name:          schedName,
		Description:   schedDescription,
		Recurrence:    rec,
		MaxExecutions: schedMaxExec,
		IsActive:      !schedPaused,
		Metadata:      map[string]string{},
	}
	urlKey := gtlib.MetaURL
	if schedCollection {
		urlKey = gtlib.MetaCollectionURL
	}
	sched.Metadata[urlKey] = url
	if schedQuality != "" {
		sched.Metadata[gtlib.MetaQuality] = schedQuality
	}
	if schedFormat != "" {
		sched.Metadata[gtlib.MetaFormat] = schedFormat
	}
	if schedFolder != "" {
		sched.Metadata[gtlib.MetaFolder] = schedFolder
	}
	if schedEndDate != "" {
		end, err := time.ParseInLocation(dateLayout, schedEndDate, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid --end-date value %q, expected YYYY-MM-DD", schedEndDate)
		}
		// The schedule stays valid through the whole end day.
		sched.EndDate = end.AddDate(0, 0, 1).Add(-time.Second)
	}
	if schedMaxExec < 0 {
		return nil, errors.New("--max-executions cannot be negative")
	}
	return sched, nil
}

func scheduleAdd(ctx *cli.Context) error {
	url := ctx.Args().First()
	if url == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no url provided"))
	} else if url == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	sched, err := buildSchedule(strings.TrimSpace(url))
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	client, err := gtclient.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "new_client", err)
		return nil
	}
	defer client.Close()

	resp, err := client.AddSchedule(sched)
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "add", err)
		return nil
	}
	fmt.Printf("Created schedule %s (%s)\n", resp.Schedule.Id, resp.Schedule.Name)
	if !resp.Schedule.NextExecutionAt.IsZero() {
		fmt.Printf("Next execution: %s\n", resp.Schedule.NextExecutionAt.Format(atLayout))
	}
	return nil
}

func scheduleList(ctx *cli.Context) error {
	client, err := gtclient.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "new_client", err)
		return nil
	}
	defer client.Close()

	resp, err := client.ListSchedules(schedActiveOnly)
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "list", err)
		return nil
	}
	if len(resp.Schedules) == 0 {
		fmt.Println("grabtube: no schedules found")
		return nil
	}
	for _, s := range resp.Schedules {
		state := "active"
		if !s.IsActive {
			state = "paused"
		}
		next := "-"
		if !s.NextExecutionAt.IsZero() {
			next = s.NextExecutionAt.Format(atLayout)
		}
		fmt.Printf("%s  %-24s %-10s runs=%-4d next=%s\n",
			s.Id, s.Name, state, s.ExecutionCount, next)
	}
	return nil
}

func scheduleInfo(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no schedule id provided"))
	}
	client, err := gtclient.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "new_client", err)
		return nil
	}
	defer client.Close()

	resp, err := client.GetSchedule(id)
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "get", err)
		return nil
	}
	s := resp.Schedule
	fmt.Printf("Id:          %s\n", s.Id)
	fmt.Printf("Name:        %s\n", s.Name)
	if s.Description != "" {
		fmt.Printf("Description: %s\n", s.Description)
	}
	fmt.Printf("Type:        %s\n", s.Type())
	fmt.Printf("Active:      %v\n", s.IsActive)
	fmt.Printf("Executions:  %d\n", s.ExecutionCount)
	if s.MaxExecutions > 0 {
		fmt.Printf("Max runs:    %d\n", s.MaxExecutions)
	}
	if !s.EndDate.IsZero() {
		fmt.Printf("End date:    %s\n", s.EndDate.Format(dateLayout))
	}
	if !s.LastExecutedAt.IsZero() {
		fmt.Printf("Last run:    %s\n", s.LastExecutedAt.Format(atLayout))
	}
	if !s.NextExecutionAt.IsZero() {
		fmt.Printf("Next run:    %s\n", s.NextExecutionAt.Format(atLayout))
	}
	for k, v := range s.Metadata {
		fmt.Printf("%-12s %s\n", k+":", v)
	}
	return nil
}

func scheduleRm(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no schedule id provided"))
	}
	client, err := gtclient.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "new_client", err)
		return nil
	}
	defer client.Close()

	if err := client.DeleteSchedule(id); err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "delete", err)
		return nil
	}
	fmt.Printf("Deleted schedule %s\n", id)
	return nil
}

func scheduleToggle(active bool) cli.ActionFunc {
	verb := "Paused"
	if active {
		verb = "Resumed"
	}
	return func(ctx *cli.Context) error {
		id := ctx.Args().First()
		if id == "" {
			return common.PrintErrWithCmdHelp(ctx, errors.New("no schedule id provided"))
		}
		client, err := gtclient.NewClient()
		if err != nil {
			common.PrintRuntimeErr(ctx, "schedule", "new_client", err)
			return nil
		}
		defer client.Close()

		if _, err := client.ToggleSchedule(id, active); err != nil {
			common.PrintRuntimeErr(ctx, "schedule", "toggle", err)
			return nil
		}
		fmt.Printf("%s schedule %s\n", verb, id)
		return nil
	}
}

func scheduleRun(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no schedule id provided"))
	}
	client, err := gtclient.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "new_client", err)
		return nil
	}
	defer client.Close()

	resp, err := client.RunSchedule(id)
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "run", err)
		return nil
	}
	if resp.Error != "" {
		fmt.Printf("Execution recorded (%s) but submission failed: %s\n", resp.RecordId, resp.Error)
		return nil
	}
	fmt.Printf("Fired schedule %s, download %s\n", id, resp.DownloadId)
	return nil
}

func scheduleHistory(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no schedule id provided"))
	}
	client, err := gtclient.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "new_client", err)
		return nil
	}
	defer client.Close()

	resp, err := client.ScheduleHistory(id)
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "history", err)
		return nil
	}
	if len(resp.Records) == 0 {
		fmt.Println("grabtube: no executions recorded")
		return nil
	}
	for _, r := range resp.Records {
		outcome := "ok     " + r.DownloadId
		if !r.IsSuccessful {
			outcome = "failed " + r.ErrorMessage
		}
		fmt.Printf("%s  %s  %s\n", r.ExecutedAt.Format(atLayout), r.Id, outcome)
	}
	return nil
}

func scheduleStats(ctx *cli.Context) error {
	client, err := gtclient.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "new_client", err)
		return nil
	}
	defer client.Close()

	resp, err := client.ScheduleStats(ctx.Args().First())
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "stats", err)
		return nil
	}
	s := resp.Stats
	fmt.Printf("Schedules:   %d (%d active)\n", s.TotalSchedules, s.ActiveSchedules)
	fmt.Printf("Executions:  %d (%d successful)\n", s.TotalExecutions, s.SuccessfulExecutions)
	return nil
}
