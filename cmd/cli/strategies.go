package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"signal-backtest/internal/strategy"
)

var strategiesCommand = &cli.Command{
	Name:  "strategies",
	Usage: "list strategies and their parameters",
	Action: func(c *cli.Context) error {
		for _, info := range strategy.Catalog() {
			fmt.Printf("%s (%s)\n  %s\n", info.Kind, info.DisplayName, info.Description)
			for _, p := range info.Parameters {
				fmt.Printf("  - %s %s, default %g: %s\n", p.Name, p.Type, p.Default, p.Description)
			}
		}
		return nil
	},
}
