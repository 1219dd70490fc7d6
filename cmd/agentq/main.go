package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/agentsched/agentq/internal/services"
	"github.com/agentsched/agentq/pkg/app"
	"github.com/agentsched/agentq/pkg/config"
	"github.com/agentsched/agentq/pkg/domain"
	"github.com/agentsched/agentq/pkg/persistence"
)

type ui struct {
	title func(a ...any) string
	ok    func(a ...any) string
	info  func(a ...any) string
	warn  func(a ...any) string
	err   func(a ...any) string
	dim   func(a ...any) string
}

func newUI() *ui {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
	return &ui{
		title: color.New(color.FgHiCyan, color.Bold).SprintFunc(),
		ok:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		info:  color.New(color.FgCyan).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		err:   color.New(color.FgRed, color.Bold).SprintFunc(),
		dim:   color.New(color.FgHiBlack).SprintFunc(),
	}
}

func newSpinner(suffix string) *spinner.Spinner {
	spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
	spin.Suffix = " " + suffix
	if term.IsTerminal(int(os.Stdout.Fd())) {
		spin.Start()
	}
	return spin
}

// dial loads config, applies CLI overrides and opens the backend directly.
// The CLI operates on the same store the scheduler does; there is no
// intermediate API.
func dial(cfgPath, backendFlag, redisAddr, postgresDSN string) (services.DispatchService, persistence.Backend, error) {
	cfg, err := config.LoadConfigOptional(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if redisAddr != "" {
		cfg.RedisAddr = redisAddr
	}
	if postgresDSN != "" {
		cfg.PostgresDSN = postgresDSN
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	providerConfig, err := app.ProviderConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	backend, err := persistence.NewBackend(providerConfig, persistence.BackendConfig{
		DequeueInspectLimit: cfg.DequeueInspectLimit,
	})
	if err != nil {
		return nil, nil, err
	}
	return services.NewDispatchService(backend, nil, time.Now), backend, nil
}

func main() {
	cfgPath := getenv("AGENTQ_CONFIG_PATH", "")
	backendFlag := ""
	redisAddr := ""
	postgresDSN := ""
	ui := newUI()

	root := &cobra.Command{
		Use:   "agentq",
		Short: "agentQ CLI",
		Long:  "agentQ CLI for task scheduling and agent registry operations.",
	}
	root.SetHelpTemplate(helpTemplate(ui))
	root.SilenceUsage = true

	root.PersistentFlags().StringVar(&cfgPath, "config", cfgPath, "Config file path")
	root.PersistentFlags().StringVar(&backendFlag, "backend", "", "Backend override: memory|postgres|redis")
	root.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "Redis address override")
	root.PersistentFlags().StringVar(&postgresDSN, "postgres-dsn", "", "Postgres DSN override")

	root.AddCommand(enqueueCmd(&cfgPath, &backendFlag, &redisAddr, &postgresDSN, ui))
	root.AddCommand(taskCmd(&cfgPath, &backendFlag, &redisAddr, &postgresDSN, ui))
	root.AddCommand(agentsCmd(&cfgPath, &backendFlag, &redisAddr, &postgresDSN, ui))
	root.AddCommand(statsCmd(&cfgPath, &backendFlag, &redisAddr, &postgresDSN, ui))
	root.AddCommand(seedCmd(&cfgPath, &backendFlag, &redisAddr, &postgresDSN, ui))
	root.AddCommand(watchCmd(&cfgPath, &backendFlag, &redisAddr, &postgresDSN, ui))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.err("[ERROR]"), err.Error())
		os.Exit(1)
	}
}

func enqueueCmd(cfgPath, backendFlag, redisAddr, postgresDSN *string, ui *ui) *cobra.Command {
	var (
		taskType    string
		input       string
		priority    int
		capability  string
		preferAgent string
		timeoutSec  int
	)
	cmd := &cobra.Command{
		Use:     "enqueue",
		Short:   "Submit a task",
		Example: `agentq enqueue --type analysis --priority 5 --input '{"query":"status report"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(taskType) == "" {
				return errors.New("type is required")
			}
			var inputObj map[string]any
			if strings.TrimSpace(input) != "" {
				if err := json.Unmarshal([]byte(input), &inputObj); err != nil {
					return fmt.Errorf("invalid input JSON: %w", err)
				}
			}
			dispatch, backend, err := dial(*cfgPath, *backendFlag, *redisAddr, *postgresDSN)
			if err != nil {
				return err
			}
			defer backend.Close()

			spin := newSpinner("Submitting task...")
			task, err := dispatch.Submit(cmd.Context(), &domain.WorkerTask{
				Type:               taskType,
				Input:              inputObj,
				Priority:           priority,
				RequiredCapability: capability,
				PreferredAgentID:   preferAgent,
				Timeout:            time.Duration(timeoutSec) * time.Second,
			})
			spin.Stop()
			if err != nil {
				return err
			}
			fmt.Printf("%s Task submitted: %s\n", ui.ok("[OK]"), task.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&taskType, "type", "", "Task type")
	cmd.Flags().StringVar(&input, "input", "", "JSON input")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority (higher first)")
	cmd.Flags().StringVar(&capability, "capability", "", "Required capability")
	cmd.Flags().StringVar(&preferAgent, "prefer-agent", "", "Preferred agent id")
	cmd.Flags().IntVar(&timeoutSec, "timeout", 0, "Timeout seconds")
	return cmd
}

func taskCmd(cfgPath, backendFlag, redisAddr, postgresDSN *string, ui *ui) *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "Task operations",
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dispatch, backend, err := dial(*cfgPath, *backendFlag, *redisAddr, *postgresDSN)
			if err != nil {
				return err
			}
			defer backend.Close()

			spin := newSpinner("Fetching task...")
			out, err := dispatch.GetTask(cmd.Context(), args[0])
			spin.Stop()
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}

	result := &cobra.Command{
		Use:   "result <id>",
		Short: "Get a task result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dispatch, backend, err := dial(*cfgPath, *backendFlag, *redisAddr, *postgresDSN)
			if err != nil {
				return err
			}
			defer backend.Close()

			spin := newSpinner("Fetching result...")
			out, err := dispatch.GetResult(cmd.Context(), args[0])
			spin.Stop()
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}

	status := &cobra.Command{
		Use:   "status <id>",
		Short: "Get a task status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dispatch, backend, err := dial(*cfgPath, *backendFlag, *redisAddr, *postgresDSN)
			if err != nil {
				return err
			}
			defer backend.Close()

			st, err := dispatch.GetStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(statusColored(st, ui))
			return nil
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dispatch, backend, err := dial(*cfgPath, *backendFlag, *redisAddr, *postgresDSN)
			if err != nil {
				return err
			}
			defer backend.Close()

			if err := dispatch.Cancel(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("%s Task cancelled: %s\n", ui.ok("[OK]"), args[0])
			return nil
		},
	}

	task.AddCommand(get, result, status, cancel)
	return task
}

func agentsCmd(cfgPath, backendFlag, redisAddr, postgresDSN *string, ui *ui) *cobra.Command {
	agents := &cobra.Command{
		Use:   "agents",
		Short: "Agent registry operations",
	}

	var (
		capability string
		agentType  string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List registered agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			dispatch, backend, err := dial(*cfgPath, *backendFlag, *redisAddr, *postgresDSN)
			if err != nil {
				return err
			}
			defer backend.Close()

			var infos []*domain.AgentInfo
			switch {
			case capability != "":
				infos, err = dispatch.AgentsByCapability(cmd.Context(), capability)
			case agentType != "":
				infos, err = dispatch.AgentsByType(cmd.Context(), agentType)
			default:
				infos, err = dispatch.Agents(cmd.Context())
			}
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Println(ui.dim("no agents registered"))
				return nil
			}
			for _, a := range infos {
				caps := append(append([]string{}, a.Capabilities.Tools...), a.Capabilities.Intents...)
				fmt.Printf("%s %s %s tasks=%d caps=[%s] seen=%s\n",
					ui.info(a.AgentID),
					ui.dim(a.AgentType),
					agentStatusColored(a.Status, ui),
					a.CurrentTaskCount,
					strings.Join(caps, ","),
					a.LastHeartbeat.Format(time.RFC3339),
				)
			}
			return nil
		},
	}
	list.Flags().StringVar(&capability, "capability", "", "Filter by capability")
	list.Flags().StringVar(&agentType, "type", "", "Filter by agent type")

	var (
		agentID string
		regType string
		tools   string
		intents string
		maxTask int
	)
	register := &cobra.Command{
		Use:     "register",
		Short:   "Register an agent",
		Example: `agentq agents register --id researcher-1 --type researcher --tools search,fetch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(agentID) == "" {
				return errors.New("id is required")
			}
			dispatch, backend, err := dial(*cfgPath, *backendFlag, *redisAddr, *postgresDSN)
			if err != nil {
				return err
			}
			defer backend.Close()

			err = dispatch.RegisterAgent(cmd.Context(), &domain.AgentCapabilities{
				AgentID:            agentID,
				AgentType:          regType,
				Tools:              splitList(tools),
				Intents:            splitList(intents),
				MaxConcurrentTasks: maxTask,
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s Agent registered: %s\n", ui.ok("[OK]"), agentID)
			return nil
		},
	}
	register.Flags().StringVar(&agentID, "id", "", "Agent id")
	register.Flags().StringVar(&regType, "type", "", "Agent type")
	register.Flags().StringVar(&tools, "tools", "", "Comma-separated tool list")
	register.Flags().StringVar(&intents, "intents", "", "Comma-separated intent list")
	register.Flags().IntVar(&maxTask, "max-concurrent", 0, "Max concurrent tasks")

	unregister := &cobra.Command{
		Use:   "unregister <id>",
		Short: "Unregister an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dispatch, backend, err := dial(*cfgPath, *backendFlag, *redisAddr, *postgresDSN)
			if err != nil {
				return err
			}
			defer backend.Close()

			if err := dispatch.UnregisterAgent(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("%s Agent unregistered: %s\n", ui.ok("[OK]"), args[0])
			return nil
		},
	}

	agents.AddCommand(list, register, unregister)
	return agents
}

func statsCmd(cfgPath, backendFlag, redisAddr, postgresDSN *string, ui *ui) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show queue and registry stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			dispatch, backend, err := dial(*cfgPath, *backendFlag, *redisAddr, *postgresDSN)
			if err != nil {
				return err
			}
			defer backend.Close()

			depth, err := dispatch.QueueDepth(cmd.Context())
			if err != nil {
				return err
			}
			infos, err := dispatch.Agents(cmd.Context())
			if err != nil {
				return err
			}
			available, busy, offline := 0, 0, 0
			for _, a := range infos {
				switch a.Status {
				case domain.AgentAvailable:
					available++
				case domain.AgentBusy:
					busy++
				case domain.AgentOffline:
					offline++
				}
			}
			fmt.Printf("%s: %d | %s: %d | %s: %d | %s: %d\n",
				ui.title("PENDING"), depth,
				ui.ok("AVAILABLE"), available,
				ui.warn("BUSY"), busy,
				ui.err("OFFLINE"), offline,
			)
			return nil
		},
	}
}

func seedCmd(cfgPath, backendFlag, redisAddr, postgresDSN *string, ui *ui) *cobra.Command {
	var (
		count    int
		taskType string
		priority int
	)
	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Submit a batch of synthetic tasks",
		Example: "agentq seed --count 100 --type analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				count = 10
			}
			dispatch, backend, err := dial(*cfgPath, *backendFlag, *redisAddr, *postgresDSN)
			if err != nil {
				return err
			}
			defer backend.Close()

			bar := progressbar.NewOptions(count,
				progressbar.OptionSetDescription("Seeding tasks"),
				progressbar.OptionSetWidth(18),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			for i := 0; i < count; i++ {
				_, err := dispatch.Submit(cmd.Context(), &domain.WorkerTask{
					Type:     taskType,
					Priority: priority,
					Input:    map[string]any{"seq": i},
				})
				if err != nil {
					return err
				}
				_ = bar.Add(1)
			}
			fmt.Printf("%s Seeded %d tasks\n", ui.ok("[OK]"), count)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "Number of tasks")
	cmd.Flags().StringVar(&taskType, "type", "analysis", "Task type")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority")
	return cmd
}

func watchCmd(cfgPath, backendFlag, redisAddr, postgresDSN *string, ui *ui) *cobra.Command {
	var interval int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll queue depth until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			dispatch, backend, err := dial(*cfgPath, *backendFlag, *redisAddr, *postgresDSN)
			if err != nil {
				return err
			}
			defer backend.Close()

			if interval <= 0 {
				interval = 2
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			ticker := time.NewTicker(time.Duration(interval) * time.Second)
			defer ticker.Stop()
			for {
				depth, err := dispatch.QueueDepth(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				fmt.Printf("%s pending=%d\n", ui.dim(time.Now().Format("15:04:05")), depth)
				select {
				case <-ctx.Done():
					fmt.Println(ui.warn("[WARN]"), "Stopping...")
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	cmd.Flags().IntVar(&interval, "interval", 2, "Poll interval seconds")
	return cmd
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func statusColored(s domain.TaskStatus, ui *ui) string {
	switch s {
	case domain.StatusCompleted:
		return ui.ok(s.String())
	case domain.StatusFailed:
		return ui.err(s.String())
	case domain.StatusCancelled:
		return ui.warn(s.String())
	default:
		return ui.info(s.String())
	}
}

func agentStatusColored(s domain.AgentStatus, ui *ui) string {
	switch s {
	case domain.AgentAvailable:
		return ui.ok(s.String())
	case domain.AgentBusy:
		return ui.warn(s.String())
	default:
		return ui.err(s.String())
	}
}

func splitList(s string) []string {
	var out []string
	for _, e := range strings.Split(s, ",") {
		e = strings.TrimSpace(e)
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func helpTemplate(ui *ui) string {
	title := ui.title("agentq")
	return fmt.Sprintf(`%s — CLI for agentQ

Usage:
  {{.UseLine}}

Commands:
{{range .Commands}}{{if (or .IsAvailableCommand .IsAdditionalHelpTopicCommand)}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

Flags:
  {{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

Global Flags:
  {{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

Examples:
  agentq enqueue --type analysis --priority 5 --input '{"query":"status report"}'
  agentq agents register --id researcher-1 --type researcher --tools search,fetch
  agentq task status <id>
  agentq stats
  agentq seed --count 100

`, title)
}
