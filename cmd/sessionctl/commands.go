package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jrsteele09/go-session-guard/internal/i18n"
	"github.com/jrsteele09/go-session-guard/internal/utils"
	"github.com/jrsteele09/go-session-guard/roles"
	"github.com/jrsteele09/go-session-guard/session"
)

const usage = `commands:
  login [email]                        sign in
  register <email> [employee code]     create an account
  logout                               sign out and clear local state
  status                               show the current session
  refresh                              exchange the session for a fresh token
  reset-password <email>               email a password reset link
  update-password                      change the signed-in user's password
  can <capability>                     check a capability for the current role
  open <page> [role]                   visit a page, optionally restricted to a role
  roles                                print the role-capability table
  help                                 show this text
  exit                                 leave the shell`

// execute runs one command. Operation failures are printed, not returned; the
// error result is reserved for input problems such as a closed stdin.
func (a *app) execute(ctx context.Context, in prompter, args []string) error {
	if len(args) == 0 {
		return nil
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "login":
		return a.login(ctx, in, rest)
	case "register":
		return a.register(ctx, in, rest)
	case "logout":
		a.printResult(a.coordinator.Logout(ctx))
	case "status":
		a.status(ctx)
	case "refresh":
		if a.coordinator.RefreshSession(ctx) {
			a.println(a.coordinator.Messages().T(i18n.SessionRefreshed))
		} else {
			a.println(a.coordinator.Messages().T(i18n.SessionExpired))
		}
	case "reset-password":
		email, err := argOrPrompt(in, rest, 0, "email: ")
		if err != nil {
			return err
		}
		a.printResult(a.coordinator.RequestPasswordReset(ctx, email))
	case "update-password":
		password, err := in.PasswordPrompt("new password: ")
		if err != nil {
			return err
		}
		a.printResult(a.coordinator.UpdatePassword(ctx, password))
	case "can":
		if len(rest) == 0 {
			return fmt.Errorf("usage: can <capability>")
		}
		a.can(roles.Capability(rest[0]))
	case "open":
		if len(rest) == 0 {
			return fmt.Errorf("usage: open <page> [role]")
		}
		a.open(ctx, rest)
	case "roles":
		a.printTable()
	case "help":
		a.println(usage)
	default:
		return fmt.Errorf("unknown command %q, try help", args[0])
	}
	return nil
}

func (a *app) login(ctx context.Context, in prompter, args []string) error {
	email, err := argOrPrompt(in, args, 0, "email: ")
	if err != nil {
		return err
	}
	password, err := in.PasswordPrompt("password: ")
	if err != nil {
		return err
	}

	result := a.coordinator.Login(ctx, email, password)
	a.printResult(result.Result)
	if result.Success {
		a.navigator.Redirect(result.RedirectTo)
	}
	return nil
}

func (a *app) register(ctx context.Context, in prompter, args []string) error {
	email, err := argOrPrompt(in, args, 0, "email: ")
	if err != nil {
		return err
	}
	fullName, err := in.Prompt("full name: ")
	if err != nil {
		return err
	}
	var code *string
	if len(args) > 1 && args[1] != "" {
		code = utils.Ptr(args[1])
	}
	password, err := in.PasswordPrompt("password: ")
	if err != nil {
		return err
	}

	result := a.coordinator.Register(ctx, session.RegisterInput{
		Email:        email,
		Password:     password,
		FullName:     fullName,
		EmployeeCode: code,
	})
	a.printResult(result.Result)
	if result.Success {
		a.println("id: " + result.UserID)
	}
	return nil
}

func (a *app) status(ctx context.Context) {
	if !a.coordinator.IsAuthenticated(ctx) {
		a.println(a.coordinator.Messages().T(i18n.NotAuthenticated))
		return
	}
	user := a.coordinator.CurrentUser()
	if user == nil {
		a.println("signed in (no cached profile)")
		return
	}
	a.println(fmt.Sprintf("signed in as %s <%s>, role %s", user.FullName, user.Email, user.Role))
	a.println("employee code: " + utils.ValueOr(user.EmployeeCode, "-"))
}

func (a *app) can(capability roles.Capability) {
	messages := a.coordinator.Messages()
	if a.guard.Can(capability) {
		a.println(messages.T(i18n.PermissionGranted, string(capability)))
		return
	}
	a.println(messages.T(i18n.PermissionNotGranted, string(capability)))
}

func (a *app) open(ctx context.Context, args []string) {
	a.navigator.visit(args[0])
	var required roles.Role
	if len(args) > 1 {
		required = roles.Role(strings.ToLower(args[1]))
	}
	if a.guard.ProtectPage(ctx, required) {
		a.println("ok " + args[0])
	}
}

func (a *app) printTable() {
	table := roles.DefaultTable()
	all := roles.All()
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	for _, role := range all {
		var granted []string
		for _, capability := range roles.Capabilities {
			if table.HasPermission(role, capability) {
				granted = append(granted, string(capability))
			}
		}
		a.println(fmt.Sprintf("%-12s %s", role, strings.Join(granted, ", ")))
	}
}

func (a *app) printResult(r session.Result) {
	if r.Success {
		a.println(r.Message)
		return
	}
	a.println("! " + r.Error)
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}

func argOrPrompt(in prompter, args []string, i int, prompt string) (string, error) {
	if len(args) > i && args[i] != "" {
		return args[i], nil
	}
	return in.Prompt(prompt)
}
