package main

import (
	"fmt"

	"github.com/oser-cs/apiview"
)

// Run executes the endpoints command.
func (c *EndpointsCmd) Run(deps *Dependencies) error {
	for _, e := range apiview.Endpoints {
		u, err := apiview.ResolveEndpoint(deps.BaseURL, e.Path)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", apiview.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "%-24s %s\n", e.Name, u)
	}
	return nil
}
