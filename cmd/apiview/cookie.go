package main

import (
	"fmt"

	"github.com/oser-cs/apiview"
)

// Run executes the cookie get command.
func (c *CookieGetCmd) Run(deps *Dependencies) error {
	value, err := apiview.ReadCookie(deps.Ctx, deps.Cookies(deps.host(c.Host)), c.Name)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", apiview.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, value)
	return nil
}

// Run executes the cookie set command.
func (c *CookieSetCmd) Run(deps *Dependencies) error {
	cookie := &apiview.Cookie{
		Host:  deps.host(c.Host),
		Path:  c.Path,
		Name:  c.Name,
		Value: c.Value,
	}
	if err := deps.Jar.SetCookie(deps.Ctx, cookie); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", apiview.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Set cookie %s for %s%s\n", cookie.Name, cookie.Host, cookie.Path)
	return nil
}

// Run executes the cookie delete command.
func (c *CookieDeleteCmd) Run(deps *Dependencies) error {
	host := deps.host(c.Host)
	if err := deps.Jar.DeleteCookie(deps.Ctx, host, c.Path, c.Name); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", apiview.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Deleted cookie %s for %s%s\n", c.Name, host, c.Path)
	return nil
}

// Run executes the cookie list command.
func (c *CookieListCmd) Run(deps *Dependencies) error {
	host := deps.host(c.Host)
	cookies, err := deps.Jar.FindCookies(deps.Ctx, apiview.CookieFilter{Host: &host})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", apiview.ErrorMessage(err))
		return err
	}

	if len(cookies) == 0 {
		fmt.Fprintf(deps.Stdout, "No cookies for %s. Use 'apiview cookie set' to add one.\n", host)
		return nil
	}

	for _, cookie := range cookies {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", cookie.Path, cookie.Name, cookie.Value)
	}
	return nil
}
