// ABOUTME: Session CLI commands
// ABOUTME: Handles login, logout, register and whoami against the backend's cookie session
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/harperreed/crmtui/api"
)

// LoginCommand signs in with email and password and caches the user.
func LoginCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password (prompted when omitted)")
	_ = fs.Parse(args)

	if *email == "" {
		fmt.Print("Email: ")
		if _, err := fmt.Scanln(email); err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		*email = strings.TrimSpace(*email)
	}
	if *password == "" {
		pw, err := readPassword()
		if err != nil {
			return err
		}
		*password = pw
	}

	user, err := env.Client.Login(ctx, *email, *password)
	if err != nil {
		return fmt.Errorf("login failed: %s", api.Message(err))
	}
	if user == nil {
		return fmt.Errorf("login failed: backend did not return a session")
	}
	if err := env.Session().SaveUser(*user); err != nil {
		env.Logger.Warn("failed to cache user", "err", err)
	}

	fmt.Fprintf(env.Out, "✓ Logged in as %s (%s)\n", user.Name, user.Email)
	return nil
}

// RegisterCommand creates an account.
func RegisterCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "Your name (required)")
	company := fs.String("company", "", "Company name")
	email := fs.String("email", "", "Account email (required)")
	password := fs.String("password", "", "Account password (prompted when omitted)")
	_ = fs.Parse(args)

	if *password == "" && *name != "" && *email != "" {
		pw, err := readPassword()
		if err != nil {
			return err
		}
		*password = pw
	}

	in := api.RegisterInput{Name: *name, Company: *company, Email: *email, Password: *password}
	if err := env.Client.Register(ctx, in); err != nil {
		return fmt.Errorf("registration failed: %s", api.Message(err))
	}

	fmt.Fprintf(env.Out, "✓ Account created for %s\n", *email)
	fmt.Fprintln(env.Out, "\nNext step: Run 'crmtui login' to sign in")
	return nil
}

// LogoutCommand ends the session server-side and forgets it locally. The local state is cleared
// even when the backend cannot be reached.
func LogoutCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := env.Client.Logout(ctx); err != nil && !api.IsUnauthorized(err) {
		env.Logger.Warn("server logout failed", "err", api.Message(err))
	}
	if err := env.Jar.Clear(); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	if err := env.Session().ClearUser(); err != nil {
		return fmt.Errorf("failed to clear cached user: %w", err)
	}

	fmt.Fprintln(env.Out, "✓ Logged out")
	return nil
}

// WhoamiCommand prints the signed-in user. When the backend is unreachable it falls back to the
// cached user and says so.
func WhoamiCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	_ = fs.Parse(args)

	session := env.Session()
	status, err := env.Client.Me(ctx)
	if err != nil {
		if !api.IsNetwork(err) {
			return fmt.Errorf("session check failed: %s", api.Message(err))
		}
		cached, cerr := session.User()
		if cerr != nil || cached == nil {
			return fmt.Errorf("session check failed: %s", api.Message(err))
		}
		fmt.Fprintf(env.Out, "%s <%s> (cached, %s unreachable)\n", cached.Name, cached.Email, env.BaseURL)
		return nil
	}

	if !status.Authenticated {
		if err := session.ClearUser(); err != nil {
			env.Logger.Warn("failed to clear cached user", "err", err)
		}
		fmt.Fprintf(env.Out, "Not logged in to %s\n", env.BaseURL)
		return nil
	}

	if err := session.SaveUser(*status.User); err != nil {
		env.Logger.Warn("failed to cache user", "err", err)
	}
	fmt.Fprintf(env.Out, "%s <%s>\n", status.User.Name, status.User.Email)
	if status.User.Role != "" {
		fmt.Fprintf(env.Out, "Role:    %s\n", status.User.Role)
	}
	fmt.Fprintf(env.Out, "Backend: %s\n", env.BaseURL)
	return nil
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--password is required when stdin is not a terminal")
	}
	fmt.Print("Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}
