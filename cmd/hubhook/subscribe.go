package main

import (
	"fmt"
	"os"

	"hubhook/internal/subscribe"

	"github.com/spf13/cobra"
)

var (
	subAppID         string
	subObject        string
	subCallbackURL   string
	subFields        []string
	subAccessToken   string
	subGraphURL      string
	subAPIVersion    string
	subIncludeValues bool
	subList          bool
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Register the gateway with the Graph API",
	Long: `Register this gateway's callback URL for an object type so the platform
starts delivering webhooks. The platform immediately performs the GET
verification handshake against the callback, so the gateway must already be
running and reachable with the same verify token.

Without --access-token the app access token "{app-id}|{app-secret}" is used.`,
	Example: `  hubhook subscribe --app-id 1234 --object page \
    --callback-url https://hooks.example.com/facebook --fields feed,messages
  hubhook subscribe --app-id 1234 --list`,
	Args: cobra.NoArgs,
	RunE: runSubscribe,
}

func init() {
	f := subscribeCmd.Flags()
	f.StringVar(&subAppID, "app-id", os.Getenv("HUBHOOK_APP_ID"), "App ID owning the subscription")
	f.StringVar(&subObject, "object", "page", "Object type: page, instagram, user, ...")
	f.StringVar(&subCallbackURL, "callback-url", "", "Public https URL of the channel endpoint")
	f.StringSliceVar(&subFields, "fields", nil, "Fields to subscribe to")
	f.StringVar(&subAccessToken, "access-token", os.Getenv("HUBHOOK_ACCESS_TOKEN"), "Access token (default: app access token)")
	f.StringVar(&subGraphURL, "graph-url", subscribe.DefaultBaseURL, "Graph API base URL")
	f.StringVar(&subAPIVersion, "api-version", subscribe.DefaultAPIVersion, "Graph API version")
	f.BoolVar(&subIncludeValues, "include-values", false, "Include changed values in deliveries")
	f.BoolVar(&subList, "list", false, "List current subscriptions instead of subscribing")

	// Credentials also come from the config file or environment
	f.String("app-secret", "", "App secret (for the app access token)")
	f.String("verify-token", "", "Verify token the gateway expects")
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if subAppID == "" {
		return fmt.Errorf("--app-id is required")
	}

	token := subAccessToken
	if token == "" {
		if cfg.AppSecret == "" {
			return fmt.Errorf("no access token: pass --access-token or configure the app secret")
		}
		token = subscribe.AppAccessToken(subAppID, cfg.AppSecret)
	}

	client, err := subscribe.NewClient(cmd.Context(), token,
		subscribe.WithBaseURL(subGraphURL),
		subscribe.WithAPIVersion(subAPIVersion))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if subList {
		subs, err := client.List(cmd.Context(), subAppID)
		if err != nil {
			return fmt.Errorf("listing subscriptions: %w", err)
		}
		if len(subs) == 0 {
			fmt.Fprintln(out, "No subscriptions")
			return nil
		}
		for _, s := range subs {
			state := "inactive"
			if s.Active {
				state = "active"
			}
			fmt.Fprintf(out, "%-12s %-8s %s\n", s.Object, state, s.CallbackURL)
			for _, field := range s.Fields {
				fmt.Fprintf(out, "    %s (%s)\n", field.Name, field.Version)
			}
		}
		return nil
	}

	sub := subscribe.Subscription{
		Object:        subObject,
		CallbackURL:   subCallbackURL,
		Fields:        subFields,
		VerifyToken:   cfg.VerifyToken,
		IncludeValues: subIncludeValues,
	}
	if err := client.Subscribe(cmd.Context(), subAppID, sub); err != nil {
		return fmt.Errorf("subscribing: %w", err)
	}

	fmt.Fprintf(out, "Subscribed %s to %s\n", subObject, subCallbackURL)
	return nil
}
