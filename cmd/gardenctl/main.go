// Command gardenctl inspects the catalogs and edits notifier preferences
// against the configured store, without running the service.
//
// Usage:
//
//	gardenctl catalog items --type Seed --rarity rare
//	gardenctl catalog resolve "amber moon"
//	gardenctl prefs set Seed:Carrot --popup
//	gardenctl rules set Weather:Rain --sound bell --mode loop
//	gardenctl weather odds
//	gardenctl feeds publish weather_changed '"Rain"'
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/catalog"
	"github.com/albapepper/gardenwatch/internal/config"
	"github.com/albapepper/gardenwatch/internal/db"
	"github.com/albapepper/gardenwatch/internal/engine"
	"github.com/albapepper/gardenwatch/internal/kv"
	"github.com/albapepper/gardenwatch/internal/listener"
	"github.com/albapepper/gardenwatch/internal/maintenance"
	"github.com/albapepper/gardenwatch/internal/prefs"
	"github.com/albapepper/gardenwatch/internal/weather"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "gardenctl",
		Short:        "Gardenwatch catalog and preference CLI",
		SilenceUsage: true,
	}

	root.AddCommand(catalogCmd())
	root.AddCommand(prefsCmd())
	root.AddCommand(rulesCmd())
	root.AddCommand(weatherCmd())
	root.AddCommand(defaultsCmd())
	root.AddCommand(feedsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// catalog command
// --------------------------------------------------------------------------

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the item and weather catalogs",
	}
	cmd.AddCommand(catalogItemsCmd())
	cmd.AddCommand(catalogWeatherCmd())
	cmd.AddCommand(catalogResolveCmd())
	return cmd
}

func catalogItemsCmd() *cobra.Command {
	var section, rarity string
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List catalog items",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			var want catalog.Section
			if section != "" {
				s, ok := catalog.ParseSection(section)
				if !ok {
					return fmt.Errorf("unknown section %q", section)
				}
				want = s
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tRARITY")
			for _, it := range cat.Items() {
				if want != "" && it.Type != want {
					continue
				}
				if rarity != "" && !strings.EqualFold(it.Rarity, rarity) {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Name, it.Rarity)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&section, "type", "", "Filter by section (Seed, Egg, Tool, Decor)")
	cmd.Flags().StringVar(&rarity, "rarity", "", "Filter by rarity")
	return cmd
}

func catalogWeatherCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weather",
		Short: "List weather definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tATOM\tCYCLE\tMUTATIONS")
			for _, d := range cat.Weather() {
				cycle := catalog.CycleUnknown.String()
				if d.Cycle != nil {
					cycle = d.Cycle.Kind.String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Atom, cycle, strings.Join(d.Mutations, ","))
			}
			return tw.Flush()
		},
	}
}

func catalogResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <raw>",
		Short: "Resolve a raw weather value, suggesting a name when it fails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			if def, ok := cat.ResolveWeather(args[0]); ok {
				return printJSON(cmd.OutOrStdout(), def)
			}
			if s, ok := cat.SuggestWeather(args[0]); ok {
				return fmt.Errorf("no weather matches %q (did you mean %s?)", args[0], s)
			}
			return fmt.Errorf("no weather matches %q", args[0])
		},
	}
}

// --------------------------------------------------------------------------
// prefs command
// --------------------------------------------------------------------------

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Read and edit item alert preferences",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show the effective preference of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, env *env) error {
				return printJSON(cmd.OutOrStdout(), env.eng.Pref(args[0]))
			})
		},
	})

	var popup bool
	set := &cobra.Command{
		Use:   "set <id>",
		Short: "Enable or disable the popup alert of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, ok := catalog.SplitID(args[0]); !ok {
				return fmt.Errorf("%q is not an item id (want Section:rawId)", args[0])
			}
			return withEngine(func(ctx context.Context, env *env) error {
				if _, ok := env.cat.Item(args[0]); !ok {
					return fmt.Errorf("%q is not in the item catalog", args[0])
				}
				env.eng.SetPopup(args[0], popup)
				return printJSON(cmd.OutOrStdout(), env.eng.Pref(args[0]))
			})
		},
	}
	set.Flags().BoolVar(&popup, "popup", false, "Popup alert enabled")
	cmd.AddCommand(set)

	var all bool
	clearCmd := &cobra.Command{
		Use:   "clear [id]",
		Short: "Remove every stored flag of an item, or of every item with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("pass either an item id or --all")
			}
			return withEngine(func(ctx context.Context, env *env) error {
				if all {
					env.eng.ClearAllPrefs()
					return nil
				}
				env.eng.ClearPrefs(args[0])
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&all, "all", false, "Clear the flags of every item")
	cmd.AddCommand(clearCmd)
	return cmd
}

// --------------------------------------------------------------------------
// rules command
// --------------------------------------------------------------------------

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Read and edit audio rules",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every stored rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, env *env) error {
				return printJSON(cmd.OutOrStdout(), env.eng.AllRules())
			})
		},
	})
	cmd.AddCommand(rulesSetCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "clear <id>",
		Short: "Remove the rule of an id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, env *env) error {
				env.eng.ClearRule(args[0])
				return nil
			})
		},
	})
	return cmd
}

func rulesSetCmd() *cobra.Command {
	var (
		sound, mode, stop string
		interval          float64
	)
	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Merge fields into a rule. An empty value removes the field.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := prefs.RulePatch{
				Sound:          stringField(cmd, "sound", sound),
				PlaybackMode:   stringField(cmd, "mode", mode),
				StopMode:       stringField(cmd, "stop", stop),
				LoopIntervalMs: prefs.Keep[float64](),
			}
			if cmd.Flags().Changed("interval") {
				patch.LoopIntervalMs = prefs.To(interval)
				if interval == 0 {
					patch.LoopIntervalMs = prefs.Remove[float64]()
				}
			}
			return withEngine(func(ctx context.Context, env *env) error {
				id, ok := env.eng.RuleID(args[0])
				if !ok {
					return fmt.Errorf("%q is neither an item id nor a known weather", args[0])
				}
				env.eng.SetRule(id, patch)
				rule, _ := env.eng.Rule(id)
				return printJSON(cmd.OutOrStdout(), map[string]prefs.Rule{id: rule})
			})
		},
	}
	cmd.Flags().StringVar(&sound, "sound", "", "Alert sound")
	cmd.Flags().StringVar(&mode, "mode", "", "Playback mode (oneshot, loop)")
	cmd.Flags().StringVar(&stop, "stop", "", "Stop mode (purchase); empty falls back to the context default")
	cmd.Flags().Float64Var(&interval, "interval", 0, "Loop interval in milliseconds (min 150)")
	return cmd
}

func stringField(cmd *cobra.Command, flag, value string) prefs.Field[string] {
	if !cmd.Flags().Changed(flag) {
		return prefs.Keep[string]()
	}
	if value == "" {
		return prefs.Remove[string]()
	}
	return prefs.To(value)
}

// --------------------------------------------------------------------------
// weather command
// --------------------------------------------------------------------------

func weatherCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Weather alerts and odds",
	}

	var at string
	odds := &cobra.Command{
		Use:   "odds",
		Short: "Estimate how likely each weather is to be next",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
				now = t
			}
			return withEngine(func(ctx context.Context, env *env) error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNOTIFY\tESTIMATE\tDETAIL")
				for _, row := range env.eng.WeatherState().Rows {
					d := weather.ComputeProbabilityDisplay(row, now)
					fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", row.ID, row.NotifyEnabled, d.Label, d.Tooltip)
				}
				return tw.Flush()
			})
		},
	}
	odds.Flags().StringVar(&at, "at", "", "Evaluate at this RFC3339 time instead of now")
	cmd.AddCommand(odds)

	var enabled bool
	notify := &cobra.Command{
		Use:   "notify <id>",
		Short: "Enable or disable alerts for a weather",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, env *env) error {
				def, ok := env.cat.WeatherByID(args[0])
				if !ok {
					return fmt.Errorf("unknown weather %q", args[0])
				}
				env.eng.SetWeatherNotify(def.ID, enabled)
				fmt.Fprintf(cmd.OutOrStdout(), "%s notify=%t\n", def.ID, env.eng.WeatherNotify(def.ID))
				return nil
			})
		},
	}
	notify.Flags().BoolVar(&enabled, "enabled", true, "Alerts enabled")
	cmd.AddCommand(notify)
	return cmd
}

// --------------------------------------------------------------------------
// defaults command
// --------------------------------------------------------------------------

func defaultsCmd() *cobra.Command {
	var (
		stop     string
		interval int
	)
	cmd := &cobra.Command{
		Use:   "defaults <shops|weather>",
		Short: "Show or set the playback defaults of an alert context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := audio.Context(args[0])
			if !c.Valid() {
				return fmt.Errorf("unknown context %q (want shops or weather)", args[0])
			}
			return withEngine(func(ctx context.Context, env *env) error {
				if cmd.Flags().Changed("stop") || cmd.Flags().Changed("interval") {
					d := env.store.StoredDefaults(c)
					if cmd.Flags().Changed("stop") {
						d.StopMode = audio.StopMode(stop)
					}
					if cmd.Flags().Changed("interval") {
						d.LoopIntervalMs = interval
					}
					env.eng.SetContextStopDefaults(c, d)
				}
				return printJSON(cmd.OutOrStdout(), env.eng.ContextStopDefaults(c))
			})
		},
	}
	cmd.Flags().StringVar(&stop, "stop", "", "Stop mode (manual, purchase)")
	cmd.Flags().IntVar(&interval, "interval", 0, "Loop interval in milliseconds; 0 clears")
	return cmd
}

// --------------------------------------------------------------------------
// feeds command
// --------------------------------------------------------------------------

func feedsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Publish and maintain live feed payloads",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "publish <channel> [payload]",
		Short: "Store a payload and notify listeners. Reads stdin when payload is omitted or -",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := "-"
			if len(args) == 2 {
				payload = args[1]
			}
			if payload == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read payload: %w", err)
				}
				payload = string(data)
			}
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if err := listener.Publish(ctx, pool.Pool, args[0], payload); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "published %d bytes on %s\n", len(payload), args[0])
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete stored payloads of retired channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				return maintenance.PurgeFeedState(ctx, pool.Pool, listener.Channels, logger)
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

type env struct {
	cfg   *config.Config
	cat   *catalog.Catalog
	store *prefs.Store
	eng   *engine.Engine
}

func loadCatalog() (*catalog.Catalog, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return catalog.Load(cfg.CatalogItemsFile, cfg.CatalogWeatherFile)
}

// withPool handles config loading, DB connection, and context cancellation.
func withPool(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}

// withEngine opens the configured preference store and wraps it in an engine
// that is never started: reads and writes go straight to the store.
func withEngine(fn func(ctx context.Context, env *env) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cat, err := catalog.Load(cfg.CatalogItemsFile, cfg.CatalogWeatherFile)
	if err != nil {
		return fmt.Errorf("load catalogs: %w", err)
	}

	var pgPool *pgxpool.Pool
	if cfg.StoreDriver == config.StorePostgres {
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		pgPool = pool.Pool
	}
	backend, err := kv.Open(ctx, cfg, pgPool)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer backend.Close()

	store := prefs.New(backend, logger)
	player := audio.NewPlayer(audio.Options{
		Sounds:       cfg.AudioSounds,
		DefaultSound: cfg.AudioDefaultSound,
		Defaults: map[audio.Context]audio.Settings{
			audio.ContextShops:   {StopMode: audio.StopMode(cfg.AudioStopMode), LoopIntervalMs: cfg.AudioLoopIntervalMS},
			audio.ContextWeather: {StopMode: audio.StopManual, LoopIntervalMs: cfg.AudioLoopIntervalMS},
		},
	}, logger)
	eng := engine.New(engine.Options{
		Catalog: cat,
		Prefs:   store,
		Audio:   player,
		Logger:  logger,
	})
	return fn(ctx, &env{cfg: cfg, cat: cat, store: store, eng: eng})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
