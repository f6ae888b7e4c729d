package cmd

import (
	"fmt"
	"sort"

	"github.com/urfave/cli"

	"github.com/grabtube/grabtube/cmd/common"
	"github.com/grabtube/grabtube/pkg/gtclient"
	"github.com/grabtube/grabtube/pkg/gtlib"
)

var (
	listActive bool

	lsFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "active, a",
			Usage:       "only list downloads the server is still working on",
			Destination: &listActive,
		},
	}
)

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := gtclient.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "new_client", err)
		return nil
	}
	defer client.Close()

	l, err := client.List(listActive)
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "get_list", err)
		return nil
	}
	if len(l.Downloads) == 0 {
		fmt.Println("grabtube: no downloads found")
		return nil
	}

	sort.Slice(l.Downloads, func(i, j int) bool {
		return l.Downloads[i].AddedAt.After(l.Downloads[j].AddedAt)
	})

	txt := "Here are your downloads:"
	txt += "\n\n--------------------------------------------------------------------"
	txt += "\n|Num|          Title          |      Id      |    Status    | Done |"
	txt += "\n|---|-------------------------|--------------|--------------|------|"
	for i, d := range l.Downloads {
		title := d.Title
		if title == "" {
			title = d.Url
		}
		n := len(title)
		switch {
		case n > 23:
			title = title[:20] + "..."
		case n < 23:
			title = common.Beaut(title, 23)
		}
		perc := fmt.Sprintf("%.0f%%", d.Progress)
		if d.Status == gtlib.StatusCompleted {
			perc = "100%"
		}
		txt += fmt.Sprintf("\n| %d | %s | %s | %s | %s |",
			i+1, title,
			common.Beaut(shortId(d.Id), 12),
			common.Beaut(string(d.Status), 12),
			common.Beaut(perc, 4),
		)
	}
	txt += "\n--------------------------------------------------------------------"
	fmt.Println(txt)
	return nil
}

// shortId truncates long ids for the table. The full id still works
// with cancel.
func shortId(id string) string {
	if len(id) > 12 {
		return id[:9] + "..."
	}
	return id
}
