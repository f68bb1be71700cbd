package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/tradercopilot/swingdash/internal/app"
	"github.com/tradercopilot/swingdash/internal/backend"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account and its access",
	RunE:  runWhoami,
}

var (
	loginEmail    string
	loginPassword string
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when empty)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	return withState(cmd, false, func(ctx context.Context, a *app.App, st *app.State) error {
		in := bufio.NewReader(cmd.InOrStdin())
		email, err := promptIfEmpty(cmd, in, loginEmail, "Email: ")
		if err != nil {
			return err
		}
		password, err := promptIfEmpty(cmd, in, loginPassword, "Password: ")
		if err != nil {
			return err
		}

		tok, err := a.Client(backend.StaticToken("")).Login(ctx, email, password)
		if err != nil {
			return fmt.Errorf("login failed: %s", backend.Message(err))
		}
		if err := st.LoginWithToken(ctx, tok.AccessToken); err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		if msg := st.Error(); msg != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Signed in, but the profile could not be loaded: %s\n", msg)
			return nil
		}

		u := st.User()
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s plan)\n", u.Email, st.Resolver().Tier())
		return nil
	})
}

func promptIfEmpty(cmd *cobra.Command, in *bufio.Reader, value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withState(cmd, false, func(ctx context.Context, a *app.App, st *app.State) error {
		if err := st.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	return withState(cmd, true, func(ctx context.Context, a *app.App, st *app.State) error {
		u := st.User()
		res := st.Resolver()
		access := res.Snapshot()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Name:\t%s\n", u.Name)
		fmt.Fprintf(w, "Email:\t%s\n", u.Email)
		fmt.Fprintf(w, "Plan:\t%s\n", access.Tier)
		if access.ExpiresAt != "" {
			fmt.Fprintf(w, "Plan expires:\t%s\n", access.ExpiresAt)
		}
		fmt.Fprintf(w, "Tokens:\t%s\n", strings.Join(access.AllowedTokens, ", "))
		fmt.Fprintf(w, "Timeframes:\t%s\n", strings.Join(access.AllowedTimeframes, ", "))
		fmt.Fprintf(w, "History:\t%d days\n", res.HistoryDays())
		fmt.Fprintf(w, "Advisor:\t%s\n", res.AdvisorMode())
		fmt.Fprintf(w, "Telegram:\t%s\n", res.TelegramMode())
		if res.IsOwner(a.OwnerEmails()) {
			fmt.Fprintf(w, "Role:\towner\n")
		}
		if exp, ok := tokenExpiry(st.Session().Token(ctx)); ok {
			fmt.Fprintf(w, "Session expires:\t%s\n", exp.Local().Format(time.RFC1123))
		}
		return w.Flush()
	})
}

// tokenExpiry reads the exp claim of the backend token. The signature is
// not checked: the backend is the only party that trusts the token.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
