// Command browser is the terminal client for the registry: it browses
// documents and contracts served by the backend API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/elisa-rivadeneira/gestor-documentario/browse"
	"github.com/elisa-rivadeneira/gestor-documentario/tui"
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "backend base URL")
		username = flag.String("user", "", "username to log in with (token taken from GESTOR_TOKEN otherwise)")
		password = flag.String("password", "", "password for -user")
	)
	flag.Parse()

	client := browse.NewClient(*baseURL, os.Getenv("GESTOR_TOKEN"))
	if *username != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := client.Login(ctx, *username, *password); err != nil {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			os.Exit(1)
		}
	}

	ctrl := browse.NewController(client)
	p := tea.NewProgram(tui.NewModel(ctrl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
