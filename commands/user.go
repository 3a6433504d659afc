package commands

import (
	"fmt"
)

func init() {
	Register(&Command{
		Name:        "/login",
		Description: "Select the user to act as",
		Params: []Param{
			{Name: "name", Description: "The name of a registered user", Required: true},
		},
		Handler: func(args []string) bool {
			if len(args) == 0 {
				fmt.Println("Usage: /login <name>")
				return false
			}

			user, err := GetStore().GetUser(args[0])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			SetSessionUser(user.Name)
			fmt.Printf("Logged in as %s\n", user.Name)
			return false
		},
	})

	Register(&Command{
		Name:        "/logout",
		Description: "Clear the session user",
		Handler: func(args []string) bool {
			if SessionUser() == "" {
				fmt.Println("Error: no user logged in")
				return false
			}
			fmt.Printf("Logged out from %s\n", SessionUser())
			SetSessionUser("")
			return false
		},
	})

	Register(&Command{
		Name:        "/whoami",
		Description: "Show the session user",
		Hidden:      true,
		Handler: func(args []string) bool {
			if SessionUser() == "" {
				fmt.Println("Not logged in")
				return false
			}
			fmt.Println(SessionUser())
			return false
		},
	})

	Register(&Command{
		Name:        "/users",
		Description: "List registered users",
		Handler: func(args []string) bool {
			users, err := GetStore().ListUsers()
			if err != nil {
				fmt.Printf("Error listing users: %v\n", err)
				return false
			}

			if len(users) == 0 {
				fmt.Println("No users yet. Add one with /adduser <name>")
				return false
			}

			fmt.Println("Users:")
			for _, u := range users {
				stats, _ := GetStore().Stats(u.Name)
				line := fmt.Sprintf("  %s (%d/%d tasks complete)", u.Name, stats.Completed, stats.Total)
				if u.Email != "" {
					line += " <" + u.Email + ">"
				}
				fmt.Println(line)
			}
			return false
		},
	})

	Register(&Command{
		Name:        "/adduser",
		Description: "Register a new user",
		Params: []Param{
			{Name: "name", Description: "The name of the user to register", Required: true},
			{Name: "email", Description: "Optional email address", Required: false},
		},
		Handler: func(args []string) bool {
			if len(args) == 0 {
				fmt.Println("Usage: /adduser <name> [email]")
				return false
			}

			name := args[0]
			var email string
			if len(args) > 1 {
				email = args[1]
			}

			user, err := GetStore().AddUser(name, email)
			if err = persistWarning(err, user != nil); err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			fmt.Printf("Added user: %s\n", user.Name)
			return false
		},
	})
}
