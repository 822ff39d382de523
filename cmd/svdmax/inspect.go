package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/svdmax/internal/safetensors"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "List the tensors of a safetensors file",
		ArgsUsage: "<file.safetensors>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("error: expected exactly one safetensors path", 1)
			}
			path := cmd.Args().First()

			st, err := safetensors.Open(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open %q: %v", path, err), 1)
			}

			fmt.Printf("%-40s %-6s %s\n", "Name", "DType", "Shape")
			for _, name := range st.Names() {
				info, _ := st.Tensor(name)
				dims := make([]string, len(info.Shape))
				for i, d := range info.Shape {
					dims[i] = fmt.Sprint(d)
				}
				fmt.Printf("%-40s %-6s [%s]\n", name, info.DType, strings.Join(dims, ", "))
			}
			fmt.Printf("\n%d tensors\n", len(st.Tensors))
			return nil
		},
	}
}
