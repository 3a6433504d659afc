package commands

import (
	"fmt"
	"sort"
)

func init() {
	Register(&Command{
		Name:        "/help",
		Description: "Show available commands",
		Hidden:      true,
		Handler: func(args []string) bool {
			if len(args) > 0 {
				printCommandHelp(args[0])
				return false
			}

			fmt.Println("Available commands:")

			cmds := List()
			sort.Slice(cmds, func(i, j int) bool {
				return cmds[i].Name < cmds[j].Name
			})

			for _, cmd := range cmds {
				if cmd.Hidden {
					continue
				}
				fmt.Printf("  %-10s - %s\n", cmd.Name, cmd.Description)
			}
			fmt.Println("\nUse /help <command> for parameter details.")
			return false
		},
	})
}

func printCommandHelp(name string) {
	cmd := GetByName(name)
	if cmd == nil {
		fmt.Printf("Unknown command: %s\n", name)
		return
	}

	fmt.Printf("%s - %s\n", cmd.Name, cmd.Description)
	if len(cmd.Params) == 0 {
		return
	}
	fmt.Println("Parameters:")
	for _, p := range cmd.Params {
		required := "optional"
		if p.Required {
			required = "required"
		}
		fmt.Printf("  %-12s (%s) %s\n", p.Name, required, p.Description)
	}
}
