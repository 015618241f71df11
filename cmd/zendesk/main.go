package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jmerrifield20/zendesk/pkg/api"
	"github.com/jmerrifield20/zendesk/pkg/config"
	"github.com/jmerrifield20/zendesk/pkg/zendesk"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile      string
	outputFormat string
	verbose      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "zendesk",
	Short: "Zendesk API command-line client",
	Long: `zendesk calls the Zendesk REST API from the command line.

Account settings are read from ~/.zendesk/config.yaml, ZENDESK_* environment
variables and flags, in increasing order of precedence:

  zendesk:
    subdomain: acme
    username: agent@acme.com
    token: <api token>

Every API operation can be called by name:

  zendesk call current_user
  zendesk list tickets --per-page 25
  zendesk search "type:ticket status:open"`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ~/.zendesk/config.yaml)")
	pf.StringVar(&outputFormat, "format", "text", "Output format: text or json")
	pf.BoolVar(&verbose, "verbose", false, "Log requests to stderr")
	pf.String("url", "", "API base URL (e.g. https://acme.zendesk.com/api/v2)")
	pf.String("subdomain", "", "Account subdomain; used when --url is empty")
	pf.String("username", "", "Agent email address")
	pf.String("token", "", "API token")
	pf.String("access-token", "", "OAuth access token")
	pf.Bool("retry", false, "Retry rate-limited and unavailable responses")
	pf.Bool("allow-http", false, "Accept a plain-text --url (local stubs and proxies)")

	for _, key := range []string{"url", "subdomain", "username", "token", "retry"} {
		_ = viper.BindPFlag("zendesk."+key, pf.Lookup(key))
	}
	_ = viper.BindPFlag("zendesk.access_token", pf.Lookup("access-token"))
	_ = viper.BindPFlag("zendesk.allow_http", pf.Lookup("allow-http"))

	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(supportsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(operationsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig feeds the config file, environment and flags into the
// process-wide options used by the zendesk namespace.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, _ := os.UserHomeDir()
		viper.AddConfigPath(home + "/.zendesk")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var cfgNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgNotFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	logger := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
	}
	zendesk.SetLogger(logger)

	config.Global().LoadViper(viper.GetViper())
	zendesk.Configure(config.Options{"logger": logger})
	return nil
}

// ── call ─────────────────────────────────────────────────────────────────────

var callAll bool

var callCmd = &cobra.Command{
	Use:   "call <operation> [json-arg...]",
	Short: "Invoke an API operation by name",
	Long: `call forwards an operation to the default client.

Arguments are parsed as JSON when possible and passed as strings otherwise.
JSON objects become query parameters for collection operations:

  zendesk call tickets '{"sort_by":"updated_at"}'
  zendesk call search "type:user role:admin"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		result, err := zendesk.Invoke(ctx, args[0], parseArgs(args[1:])...)
		if err != nil {
			return err
		}
		return printResult(ctx, cmd.OutOrStdout(), result, callAll)
	},
}

func init() {
	callCmd.Flags().BoolVar(&callAll, "all", false, "Follow pagination when the result is a collection")
}

// parseArgs decodes each argument as JSON, falling back to the raw string.
// Objects are flattened to map[string]string, the shape collection
// operations take as query parameters.
func parseArgs(raw []string) []any {
	out := make([]any, 0, len(raw))
	for _, s := range raw {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			out = append(out, s)
			continue
		}
		if obj, ok := v.(map[string]any); ok {
			params := make(map[string]string, len(obj))
			for k, val := range obj {
				params[k] = fmt.Sprint(val)
			}
			out = append(out, params)
			continue
		}
		out = append(out, v)
	}
	return out
}

// ── supports ─────────────────────────────────────────────────────────────────

var supportsPrivate bool

var supportsCmd = &cobra.Command{
	Use:   "supports <operation>",
	Short: "Report whether an operation can be called",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := zendesk.Supports(args[0], supportsPrivate)
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(cmd.OutOrStdout(), map[string]any{"operation": args[0], "supported": ok})
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		return nil
	},
}

func init() {
	supportsCmd.Flags().BoolVar(&supportsPrivate, "private", false, "Include non-public operations")
}

// ── list ─────────────────────────────────────────────────────────────────────

var (
	listPerPage int
	listAll     bool
)

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List a resource collection (tickets, users, organizations, ...)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		result, err := zendesk.Invoke(ctx, args[0])
		if err != nil {
			return err
		}
		coll, ok := result.(*api.Collection)
		if !ok {
			return fmt.Errorf("%s is not a collection", args[0])
		}
		if listPerPage > 0 {
			coll = coll.PerPage(listPerPage)
		}
		return printResult(ctx, cmd.OutOrStdout(), coll, listAll)
	},
}

func init() {
	listCmd.Flags().IntVar(&listPerPage, "per-page", 0, "Page size (default: server default)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Follow pagination")
}

// ── search ───────────────────────────────────────────────────────────────────

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a Zendesk search query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := zendesk.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), records)
	},
}

// ── operations ───────────────────────────────────────────────────────────────

var operationsPrivate bool

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List the operations the default client supports",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := zendesk.Default().DefaultClient()
		if err != nil {
			return err
		}
		names := c.Operations(operationsPrivate)
		if outputFormat == "json" {
			return printJSON(cmd.OutOrStdout(), names)
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	operationsCmd.Flags().BoolVar(&operationsPrivate, "private", false, "Include non-public operations")
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the zendesk CLI version",
	// Skip loading account configuration.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "zendesk %s (sdk %s)\n", version, config.Version)
	},
}

func printResult(ctx context.Context, w io.Writer, result any, all bool) error {
	switch v := result.(type) {
	case nil:
		return nil
	case *api.Collection:
		var (
			records []api.Record
			err     error
		)
		if all {
			records, err = v.All(ctx)
		} else {
			records, err = v.Fetch(ctx)
		}
		if err != nil {
			return err
		}
		return printRecords(w, records)
	case api.Record:
		return printRecords(w, []api.Record{v})
	case []api.Record:
		return printRecords(w, v)
	default:
		return printJSON(w, v)
	}
}
