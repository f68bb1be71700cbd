package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/tradercopilot/swingdash/internal/app"
	"github.com/tradercopilot/swingdash/internal/core"
)

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Plan and payment operations",
}

var billingCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Print a checkout link for a paid plan",
	RunE:  runBillingCheckout,
}

var billingPortalCmd = &cobra.Command{
	Use:   "portal",
	Short: "Print a link to the billing portal",
	RunE:  runBillingPortal,
}

var billingSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the plan after a completed checkout",
	RunE:  runBillingSync,
}

var checkoutPlan string

func init() {
	rootCmd.AddCommand(billingCmd)
	billingCmd.AddCommand(billingCheckoutCmd)
	billingCmd.AddCommand(billingPortalCmd)
	billingCmd.AddCommand(billingSyncCmd)

	billingCheckoutCmd.Flags().StringVar(&checkoutPlan, "plan", string(core.TierTrader), "plan to buy (TRADER or PRO)")
}

// Billing works during an expired trial, so the profile is not required
// to load cleanly.
func withBilling(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, st *app.State) error) error {
	return withState(cmd, false, func(ctx context.Context, a *app.App, st *app.State) error {
		if !st.Session().Exists(ctx) {
			return errNotSignedIn
		}
		return fn(ctx, a, st)
	})
}

func runBillingCheckout(cmd *cobra.Command, args []string) error {
	plan := strings.ToUpper(strings.TrimSpace(checkoutPlan))
	if err := validator.New().Var(plan, "required,oneof=TRADER PRO"); err != nil {
		return fmt.Errorf("plan must be TRADER or PRO, got %q", checkoutPlan)
	}
	return withBilling(cmd, func(ctx context.Context, a *app.App, st *app.State) error {
		link, err := a.Client(st.Session()).CreateCheckoutSession(ctx, core.Tier(plan))
		if err != nil {
			return expire(ctx, st, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Complete your %s checkout at:\n%s\n", plan, link)
		return nil
	})
}

func runBillingPortal(cmd *cobra.Command, args []string) error {
	return withBilling(cmd, func(ctx context.Context, a *app.App, st *app.State) error {
		link, err := a.Client(st.Session()).CreatePortalSession(ctx)
		if err != nil {
			return expire(ctx, st, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Manage your subscription at:\n%s\n", link)
		return nil
	})
}

func runBillingSync(cmd *cobra.Command, args []string) error {
	return withBilling(cmd, func(ctx context.Context, a *app.App, st *app.State) error {
		res, err := a.Client(st.Session()).SyncBilling(ctx)
		if err != nil {
			return expire(ctx, st, err)
		}
		if err := st.Refresh(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Billing status: %s\n", res.Status)
		fmt.Fprintf(cmd.OutOrStdout(), "Plan: %s\n", st.Resolver().Tier())
		if st.Resolver().IsTrialExpired() {
			fmt.Fprintln(cmd.OutOrStdout(), "The plan is still inactive. Run `swingdash billing checkout` to upgrade.")
		}
		return nil
	})
}
